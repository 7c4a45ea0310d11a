// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var (
	replayInput  string
	replayReport bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Analyze a capture file offline",
	Long: `Feed a recorded capture through the frame decoder, offline.

Received records are replayed byte by byte, so frames split across reads
reassemble exactly as they did on the live line. Each decoded frame is
summarized with the timestamp it was originally recorded at; checksum
failures and anomalous sensor values are reported the same way the
monitor command reports them live. Sent records are listed so the poll
cadence of the session stays visible.

With --report every status frame is expanded into the full sensor panel
with validation findings and the inferred operating decision.

The final statistics are computed over the capture's own timeline, not
the replay wall time.

Exit codes:
  0 - Replay completed
  1 - Capture file unreadable or corrupt`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVarP(&replayInput, "input", "i", "", "Capture file to read (required)")
	replayCmd.Flags().BoolVar(&replayReport, "report", false, "Print a full sensor panel per status frame")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replayInput == "" {
		return fmt.Errorf("--input is required")
	}

	f, err := os.Open(replayInput)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %v", err)
	}
	defer f.Close()

	r, err := givre.NewCaptureReader(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CORRUPT: %v\n", err)
		os.Exit(1)
	}
	header := r.Header()

	fmt.Printf("Manifold - Replay\n")
	fmt.Printf("Capture: %s\n", replayInput)
	fmt.Printf("Session: %s\n", header.SessionID)
	fmt.Printf("Source: %s\n", header.Source)
	fmt.Printf("Created: %s\n\n", header.CreatedAt.Format(time.RFC3339))

	decoder := givre.NewDecoder()
	stats := givre.NewStatistics()
	var lastTime time.Time
	corrupt := false

	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "CORRUPT: %v\n", err)
			corrupt = true
			break
		}
		if rec.Time.After(lastTime) {
			lastTime = rec.Time
		}

		if rec.Direction == givre.DirectionTx {
			fmt.Printf("[%s] >> sent %d bytes\n", rec.Time.Format("15:04:05.000"), len(rec.Raw))
			continue
		}

		for _, b := range rec.Raw {
			frame, decodeErr := decoder.DecodeByte(b)
			if decodeErr != nil {
				stats.Update(nil, decodeErr, nil)
				fmt.Printf("[%s] DECODE ERROR: %v\n", rec.Time.Format("15:04:05.000"), decodeErr)
				continue
			}
			if frame != nil {
				replayFrame(rec.Time, frame, stats)
			}
		}
	}

	// Rebase so rates cover the recorded span rather than the replay run
	if lastTime.After(header.CreatedAt) {
		stats.StartTime = time.Now().Add(-lastTime.Sub(header.CreatedAt))
	}
	fmt.Println()
	fmt.Print(stats.String())

	if corrupt {
		os.Exit(1)
	}
	return nil
}

// replayFrame prints one decoded frame with its original record timestamp
func replayFrame(at time.Time, frame *givre.RawFrame, stats *givre.Statistics) {
	ts := at.Format("15:04:05.000")

	if frame.Type() != givre.FrameStatus {
		stats.Update(frame, nil, nil)
		fmt.Printf("[%s] %s\n", ts, frameBody(frame))
		if frame.Type() == givre.FrameControl {
			if c, err := givre.DecodeControl(frame); err == nil {
				fmt.Printf("  Intent: %s\n", intentLine(c))
			} else {
				fmt.Printf("  Intent rejected: %v\n", err)
			}
		}
		return
	}

	status, err := givre.DecodeStatus(frame)
	if err != nil {
		stats.Update(frame, nil, nil)
		fmt.Printf("[%s] DECODE ERROR: %v\n", ts, err)
		return
	}
	report, err := status.Report()
	if err != nil {
		stats.Update(frame, nil, nil)
		fmt.Printf("[%s] DECODE ERROR: %v\n", ts, err)
		return
	}

	anomalies, _ := givre.ValidateStatus(status)
	stats.Update(frame, nil, anomalies)

	if replayReport {
		fmt.Printf("[%s] %s\n", ts, frameBody(frame))
		fmt.Print(givre.FormatReport(report))
		fmt.Print(givre.FormatValidation(anomalies))
		if temps, err := status.RefrigerantTemps(); err == nil {
			fmt.Print(givre.FormatDecision(givre.Infer(temps)))
		}
		return
	}

	fmt.Printf("[%s] %s\n", ts, summaryBody(report))
	for _, a := range anomalies {
		fmt.Printf("  Anomaly: %s\n", a.Error())
	}
}

func frameBody(f *givre.RawFrame) string {
	return fmt.Sprintf("%s (0x%02X/0x%02X) len=%d checksum=0x%02X",
		givre.FormatFrameType(f.Type()), f.TypeByte(), f.SubTypeByte(), f.Len(), f.Checksum())
}
