// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var (
	statusTimeout int
	statusJSON    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the unit once and print a full status report",
	Long: `Send a single query frame and wait for the unit's 255-byte status response.

The decoded report shows power, mode, fan speed, setpoint and auxiliary
flags alongside the refrigerant readings: vapor line temperature and
pressure, liquid line temperature and pressure, coil temperatures and the
operational indicator. Sensor values outside plausible ranges are flagged,
and the operating mode inferred from the line temperatures is shown with
the safety gate state.

With --json the report struct is printed as JSON on stdout and nothing
else, for scripting.

Exit codes:
  0 - Status received and decoded
  1 - Timeout or decode failure
  2 - Connection error`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusTimeout, "timeout", 5, "Timeout in seconds to wait for a status frame")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the report as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	if !statusJSON {
		fmt.Printf("Manifold - Status\n")
		fmt.Printf("Connection: %s\n\n", connInfo)
	}

	frame, err := awaitStatusFrame(conn, statusTimeout, statusJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if frame == nil {
		fmt.Fprintf(os.Stderr, "TIMEOUT: No status frame received within %d seconds\n", statusTimeout)
		os.Exit(1)
	}

	status, err := givre.DecodeStatus(frame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}
	report, err := status.Report()
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}

	if statusJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %v", err)
		}
		fmt.Println(string(out))
		return nil
	}

	anomalies, _ := givre.ValidateStatus(status)
	temps, err := status.RefrigerantTemps()
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}
	decision := givre.Infer(temps)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	fmt.Print(givre.FormatFrame(frame))
	fmt.Println(boxStyle.Render(strings.TrimRight(givre.FormatReport(report), "\n")))
	printValidation(anomalies)
	fmt.Print(givre.FormatDecision(decision))

	return nil
}

// awaitStatusFrame sends one query and decodes the byte stream until a
// status frame arrives or the timeout elapses. Returns (nil, nil) on
// timeout; connection failures come back as errors.
func awaitStatusFrame(conn Connection, timeoutSeconds int, quiet bool) (*givre.RawFrame, error) {
	decoder := givre.NewDecoder()
	frameChan := make(chan *givre.RawFrame, 1)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- fmt.Errorf("read error: %v", err)
				return
			}

			for i := 0; i < n; i++ {
				frame, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					// Mid-stream garbage before sync; the decoder resyncs itself
					continue
				}
				if frame != nil && frame.Type() == givre.FrameStatus {
					if !quiet && decoder.Discarded() > 0 {
						fmt.Printf("(skipped %d stray bytes before sync)\n", decoder.Discarded())
					}
					frameChan <- frame
					return
				}
			}
		}
	}()

	if _, err := conn.Write(givre.NewStatusQuery()); err != nil {
		return nil, fmt.Errorf("send failed: %v", err)
	}

	select {
	case frame := <-frameChan:
		return frame, nil
	case err := <-errChan:
		return nil, err
	case <-time.After(time.Duration(timeoutSeconds) * time.Second):
		return nil, nil
	}
}

// printValidation renders validation findings with anomalies highlighted
func printValidation(errs []givre.ValidationError) {
	if len(errs) == 0 {
		fmt.Print(givre.FormatValidation(nil))
		return
	}
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	for _, e := range errs {
		fmt.Printf("  %s\n", warnStyle.Render("Anomaly: "+e.Error()))
	}
}
