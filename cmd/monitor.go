// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var (
	monitorInterval      int
	monitorDuration      int
	monitorStatsInterval int
	monitorCSV           string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously poll the unit and log status frames",
	Long: `Poll the unit on a fixed interval and print one summary line per frame.

Each status response is checksum-verified, decoded and range-validated;
anomalous sensor values are flagged inline. Other traffic on the line
(a wall thermostat's queries, control frames) is shown as one-line frame
summaries. Statistics are printed periodically and again on exit.

With --csv the decoded reports are appended to a session log, one row per
status frame, with a header row written when the file is new.

Exit codes:
  0 - Clean run
  1 - Checksum errors were observed
  2 - Connection error`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorInterval, "interval", 2, "Query poll interval (seconds)")
	monitorCmd.Flags().IntVar(&monitorDuration, "duration", 0, "Stop after N seconds (0 = run until interrupted)")
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 30, "Statistics update interval (seconds)")
	monitorCmd.Flags().StringVar(&monitorCSV, "csv", "", "Append decoded reports to a CSV session log")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	var csvw *csv.Writer
	if monitorCSV != "" {
		w, f, err := openSessionLog(monitorCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		csvw = w
	}

	fmt.Printf("Manifold - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Poll interval: %d seconds\n", monitorInterval)
	if monitorDuration > 0 {
		fmt.Printf("Duration: %d seconds\n\n", monitorDuration)
	} else {
		fmt.Printf("Press Ctrl+C to exit\n\n")
	}

	decoder := givre.NewDecoder()
	stats := givre.NewStatistics()

	// Sync tracking - ignore decode errors until the first valid frame
	synchronized := false
	invalidBytesBeforeSync := 0

	// Channel for non-blocking reads
	serialBuf := make(chan []byte, 10)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					readErr <- err
					return
				}
				log.Printf("Read error: %v", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			serialBuf <- data
		}
	}()

	pollTicker := time.NewTicker(time.Duration(monitorInterval) * time.Second)
	defer pollTicker.Stop()
	statsTicker := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
	defer statsTicker.Stop()

	var deadline <-chan time.Time
	if monitorDuration > 0 {
		deadline = time.After(time.Duration(monitorDuration) * time.Second)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if _, err := conn.Write(givre.NewStatusQuery()); err != nil {
		fmt.Fprintf(os.Stderr, "SEND FAILED: %v\n", err)
		os.Exit(2)
	}

loop:
	for {
		select {
		case data := <-serialBuf:
			for _, b := range data {
				frame, decodeErr := decoder.DecodeByte(b)

				if decodeErr != nil {
					if synchronized {
						stats.Update(nil, decodeErr, nil)
						printMonitorError(decodeErr)
					} else {
						invalidBytesBeforeSync++
					}
				} else if frame != nil {
					if !synchronized {
						synchronized = true
						if invalidBytesBeforeSync > 0 {
							fmt.Printf("[SYNC] Synchronized after %d decode errors\n\n", invalidBytesBeforeSync)
						} else {
							fmt.Printf("[SYNC] Synchronized\n\n")
						}
					}
					handleMonitorFrame(frame, stats, csvw)
				}
			}

		case err := <-readErr:
			fmt.Fprintf(os.Stderr, "\nConnection lost: %v\n", err)
			finishMonitor(stats, csvw)
			os.Exit(2)

		case <-pollTicker.C:
			if _, err := conn.Write(givre.NewStatusQuery()); err != nil {
				log.Printf("Query send failed: %v", err)
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()

		case <-deadline:
			break loop

		case <-sigChan:
			fmt.Println()
			break loop
		}
	}

	finishMonitor(stats, csvw)
	if stats.ChecksumErrors > 0 {
		os.Exit(1)
	}
	return nil
}

// handleMonitorFrame prints, validates and logs one decoded frame
func handleMonitorFrame(frame *givre.RawFrame, stats *givre.Statistics, csvw *csv.Writer) {
	if frame.Type() != givre.FrameStatus {
		stats.Update(frame, nil, nil)
		fmt.Print(givre.FormatFrame(frame))
		return
	}

	status, err := givre.DecodeStatus(frame)
	if err != nil {
		stats.Update(frame, nil, nil)
		printMonitorError(err)
		return
	}
	report, err := status.Report()
	if err != nil {
		stats.Update(frame, nil, nil)
		printMonitorError(err)
		return
	}

	anomalies, _ := givre.ValidateStatus(status)
	stats.Update(frame, nil, anomalies)

	fmt.Println(summaryLine(report))
	if len(anomalies) > 0 {
		warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		for _, a := range anomalies {
			fmt.Printf("  %s\n", warnStyle.Render("Anomaly: "+a.Error()))
		}
	}

	if csvw != nil {
		writeSessionRow(csvw, report)
	}
}

// summaryLine condenses a status report into a single monitor line
func summaryLine(r *givre.StatusReport) string {
	return fmt.Sprintf("[%s] %s", r.Timestamp.Format("15:04:05.000"), summaryBody(r))
}

func summaryBody(r *givre.StatusReport) string {
	flags := ""
	if r.Turbo {
		flags += " turbo"
	}
	if r.XFan {
		flags += " xfan"
	}
	if r.Swing {
		flags += " swing"
	}
	if r.Display {
		flags += " display"
	}
	if flags != "" {
		flags = " [" + flags[1:] + "]"
	}

	power := "Off"
	if r.Power {
		power = "On"
	}

	return fmt.Sprintf("%s %s fan=%s set=%.1f°C | vapor %.1f°F %.1fbar | liquid %.1f°F %.0fkPa | coils %.1f/%.1f°C op=%.0f%s",
		power, r.Mode, fanLabel(r.FanSpeed), r.SetpointC,
		r.VaporLineTempF, r.VaporPressureBar,
		r.LiquidLineTempF, r.LiquidPressureKPa,
		r.OutdoorCoilTempC, r.IndoorCoilTempC, r.Operational, flags)
}

func fanLabel(speed uint8) string {
	if speed == 0 {
		return "auto"
	}
	return strconv.Itoa(int(speed))
}

func printMonitorError(err error) {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	fmt.Printf("[%s] %s %v\n", time.Now().Format("15:04:05.000"), errStyle.Render("DECODE ERROR:"), err)
}

func finishMonitor(stats *givre.Statistics, csvw *csv.Writer) {
	if csvw != nil {
		csvw.Flush()
	}
	fmt.Println()
	fmt.Print(stats.String())
}

var sessionLogHeader = []string{
	"timestamp", "power", "mode", "fan", "setpoint_c",
	"vapor_pressure_bar", "vapor_line_f", "outdoor_coil_c",
	"liquid_line_f", "liquid_pressure_kpa", "indoor_coil_c",
	"operational", "turbo", "xfan", "swing", "display",
}

// openSessionLog opens a CSV session log for appending, writing the
// header row only when the file is new or empty.
func openSessionLog(path string) (*csv.Writer, *os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session log %s: %v", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat session log %s: %v", path, err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(sessionLogHeader); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to write session log header: %v", err)
		}
		w.Flush()
	}

	return w, f, nil
}

func writeSessionRow(w *csv.Writer, r *givre.StatusReport) {
	row := []string{
		r.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		strconv.FormatBool(r.Power),
		r.Mode.String(),
		strconv.Itoa(int(r.FanSpeed)),
		strconv.FormatFloat(r.SetpointC, 'f', 1, 64),
		strconv.FormatFloat(r.VaporPressureBar, 'f', 1, 64),
		strconv.FormatFloat(r.VaporLineTempF, 'f', 1, 64),
		strconv.FormatFloat(r.OutdoorCoilTempC, 'f', 1, 64),
		strconv.FormatFloat(r.LiquidLineTempF, 'f', 1, 64),
		strconv.FormatFloat(r.LiquidPressureKPa, 'f', 0, 64),
		strconv.FormatFloat(r.IndoorCoilTempC, 'f', 1, 64),
		strconv.FormatFloat(r.Operational, 'f', 0, 64),
		strconv.FormatBool(r.Turbo),
		strconv.FormatBool(r.XFan),
		strconv.FormatBool(r.Swing),
		strconv.FormatBool(r.Display),
	}
	if err := w.Write(row); err != nil {
		log.Printf("Session log write failed: %v", err)
		return
	}
	w.Flush()
}
