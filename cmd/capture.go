// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var (
	captureOutput   string
	captureHex      bool
	captureDuration int
	captureInterval int
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record raw bytes to a capture file",
	Long: `Record every byte on the line to a timestamped capture file.

Both directions are recorded: received chunks exactly as they arrive, and
the query frames this tool sends to keep the unit talking. The file is a
CBOR stream with a session header (id, source, creation time) followed by
one record per chunk, replayable offline with the replay command.

Polling can be disabled with --interval 0 to capture a bus passively,
for example when a wall thermostat is already driving the unit.

Exit codes:
  0 - Capture completed
  1 - Capture file write failure
  2 - Connection error`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Capture file to write (required)")
	captureCmd.Flags().BoolVar(&captureHex, "hex", false, "Trace received bytes as hex while recording")
	captureCmd.Flags().IntVar(&captureDuration, "duration", 0, "Stop after N seconds (0 = run until interrupted)")
	captureCmd.Flags().IntVar(&captureInterval, "interval", 2, "Query poll interval in seconds (0 = passive)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	if captureOutput == "" {
		return fmt.Errorf("--output is required")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	f, err := os.Create(captureOutput)
	if err != nil {
		return fmt.Errorf("failed to create capture file: %v", err)
	}
	defer f.Close()

	w, err := givre.NewCaptureWriter(f, connInfo)
	if err != nil {
		return err
	}

	fmt.Printf("Manifold - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Recording to %s (session %s)\n", captureOutput, w.SessionID())
	if captureInterval > 0 {
		fmt.Printf("Poll interval: %d seconds\n", captureInterval)
	} else {
		fmt.Printf("Passive capture (no polling)\n")
	}
	if captureDuration > 0 {
		fmt.Printf("Duration: %d seconds\n\n", captureDuration)
	} else {
		fmt.Printf("Press Ctrl+C to stop\n\n")
	}

	// Frame counter only; the replay command does the real analysis
	decoder := givre.NewDecoder()
	bytesTotal := 0
	framesSeen := 0

	readChan := make(chan []byte, 100)
	errChan := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					errChan <- err
					return
				}
				log.Printf("Read error: %v", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			readChan <- data
		}
	}()

	sendQuery := func() {
		q := givre.NewStatusQuery()
		if _, err := conn.Write(q); err != nil {
			log.Printf("Query send failed: %v", err)
			return
		}
		if err := w.Write(givre.DirectionTx, q, time.Now()); err != nil {
			log.Printf("Capture write failed: %v", err)
		}
	}

	var pollC <-chan time.Time
	if captureInterval > 0 {
		pollTicker := time.NewTicker(time.Duration(captureInterval) * time.Second)
		defer pollTicker.Stop()
		pollC = pollTicker.C
		sendQuery()
	}

	heartbeat := time.NewTicker(5 * time.Second)
	defer heartbeat.Stop()

	var deadline <-chan time.Time
	if captureDuration > 0 {
		deadline = time.After(time.Duration(captureDuration) * time.Second)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

loop:
	for {
		select {
		case data := <-readChan:
			if err := w.Write(givre.DirectionRx, data, time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "WRITE FAILED: %v\n", err)
				os.Exit(1)
			}
			bytesTotal += len(data)
			for _, b := range data {
				if frame, decodeErr := decoder.DecodeByte(b); decodeErr == nil && frame != nil {
					framesSeen++
				}
			}
			if captureHex {
				fmt.Print(givre.HexDump(data))
			}

		case err := <-errChan:
			fmt.Fprintf(os.Stderr, "\nConnection lost: %v\n", err)
			printCaptureSummary(w, bytesTotal, framesSeen)
			os.Exit(2)

		case <-pollC:
			sendQuery()

		case <-heartbeat.C:
			if !captureHex {
				fmt.Printf("[%s] %d records, %d bytes, %d frames\n",
					time.Now().Format("15:04:05.000"), w.Count(), bytesTotal, framesSeen)
			}

		case <-deadline:
			break loop

		case <-sigChan:
			fmt.Println()
			break loop
		}
	}

	printCaptureSummary(w, bytesTotal, framesSeen)
	return nil
}

func printCaptureSummary(w *givre.CaptureWriter, bytesTotal, framesSeen int) {
	fmt.Printf("\n--- Capture summary ---\n")
	fmt.Printf("Session: %s\n", w.SessionID())
	fmt.Printf("Records: %d\n", w.Count())
	fmt.Printf("Bytes received: %d\n", bytesTotal)
	fmt.Printf("Frames decoded: %d\n", framesSeen)
}
