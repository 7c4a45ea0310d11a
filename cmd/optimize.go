// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var (
	optimizeDryRun  bool
	optimizeTimeout int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Infer the active mode and command maximum output",
	Long: `Query the unit, infer the operating mode from the refrigerant line
temperatures, and send a max-performance command for that mode.

The liquid/vapor line differential decides the mode: a liquid line much
hotter than the vapor line means heating, a liquid line colder than the
vapor line means cooling. The command pushes the inferred mode to full
output: power on, turbo, fan speed 5, mode-appropriate setpoint (18°C
cooling, 30°C heating), compressor capacity and refrigerant flow at
maximum modulation.

Nothing is sent when the differential is ambiguous, or when the safety
gate is closed because a line temperature is outside its operating
bounds. Use --dry-run to see the decision and the exact frame without
transmitting.

Exit codes:
  0 - Command sent (or dry run completed)
  1 - Refused: uncertain inference, closed safety gate, or timeout
  2 - Connection error`,
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().BoolVar(&optimizeDryRun, "dry-run", false, "Print the decision and frame without sending")
	optimizeCmd.Flags().IntVar(&optimizeTimeout, "timeout", 5, "Timeout in seconds to wait for a status frame")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Manifold - Optimize\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	frame, err := awaitStatusFrame(conn, optimizeTimeout, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if frame == nil {
		fmt.Fprintf(os.Stderr, "TIMEOUT: No status frame received within %d seconds\n", optimizeTimeout)
		os.Exit(1)
	}

	status, err := givre.DecodeStatus(frame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}
	temps, err := status.RefrigerantTemps()
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Line temperatures: vapor %.1f°C, liquid %.1f°C (differential %.1f°C)\n\n",
		temps.VaporC, temps.LiquidC, temps.DifferentialC())

	decision := givre.Infer(temps)
	fmt.Print(givre.FormatDecision(decision))

	if !decision.SafetyGate {
		fmt.Fprintf(os.Stderr, "\nREFUSED: safety gate closed (%s)\n", decision.SafetyReason)
		os.Exit(1)
	}
	mode, ok := decision.Mode.ControlMode()
	if !ok {
		fmt.Fprintf(os.Stderr, "\nREFUSED: %s\n", decision.Reason)
		os.Exit(1)
	}

	command, err := givre.NewMaxPerformanceCommand(mode)
	if err != nil {
		return fmt.Errorf("failed to build command: %v", err)
	}
	wire := command.Encode()

	fmt.Printf("\nMax performance command (%s):\n%s", mode, givre.HexDump(wire))

	if optimizeDryRun {
		fmt.Printf("Dry run - not sent.\n")
		return nil
	}

	if _, err := conn.Write(wire); err != nil {
		fmt.Fprintf(os.Stderr, "SEND FAILED: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("Sent.\n")

	return nil
}
