// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/subcoolabs/manifold/pkg/givre"
)

var (
	setPower    string
	setMode     string
	setFan      int
	setTemp     int
	setTurbo    bool
	setXFan     bool
	setSwing    bool
	setDisplay  bool
	setCapacity int
	setFlow     int
	setConfirm  bool
	setTimeout  int
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Send a one-shot control frame",
	Long: `Build and send a 40-byte control frame from the given flags.

The intent is validated before any bytes are produced: mode must be one of
auto/cool/dry/fan/heat, fan speed 0-5 (0 = auto), setpoint 16-31 °C.
Compressor capacity and refrigerant flow are raw modulation bytes; zero
leaves them unasserted, nonzero values must meet the hardware floor
(capacity >= 0x20, flow >= 0x10, 0x80 = full output). Nothing is clamped -
out-of-range requests are refused.

With --confirm, a fresh query is sent after the control frame and the
next status response is printed so the resulting unit state can be
checked.

Examples:
  # 24°C cooling, fan speed 3
  manifold set --power on --mode cool --temp 24 --fan 3

  # Power off
  manifold set --power off --temp 24

  # Full-output heating with confirmation
  manifold set --power on --mode heat --temp 30 --fan 5 --turbo --capacity 0x80 --confirm

Exit codes:
  0 - Frame sent
  1 - Invalid request or confirmation timeout
  2 - Connection error`,
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().StringVar(&setPower, "power", "", "Power state: on or off (required)")
	setCmd.Flags().StringVar(&setMode, "mode", "auto", "Operating mode: auto, cool, dry, fan or heat")
	setCmd.Flags().IntVar(&setFan, "fan", 0, "Fan speed 0-5 (0 = auto)")
	setCmd.Flags().IntVar(&setTemp, "temp", 0, "Setpoint in °C, 16-31 (required)")
	setCmd.Flags().BoolVar(&setTurbo, "turbo", false, "Enable turbo")
	setCmd.Flags().BoolVar(&setXFan, "xfan", false, "Enable x-fan (fan purge after cooling)")
	setCmd.Flags().BoolVar(&setSwing, "swing", false, "Enable louver swing")
	setCmd.Flags().BoolVar(&setDisplay, "display", false, "Enable the unit display")
	setCmd.Flags().IntVar(&setCapacity, "capacity", 0, "Compressor capacity byte (0 = unasserted)")
	setCmd.Flags().IntVar(&setFlow, "flow", 0, "Refrigerant flow byte (0 = unasserted)")
	setCmd.Flags().BoolVar(&setConfirm, "confirm", false, "Wait for the next status frame and print it")
	setCmd.Flags().IntVar(&setTimeout, "timeout", 5, "Confirmation timeout in seconds")
}

func runSet(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("power") {
		return fmt.Errorf("--power is required (on or off)")
	}
	if !cmd.Flags().Changed("temp") {
		return fmt.Errorf("--temp is required (16-31 °C)")
	}

	power, err := parsePower(setPower)
	if err != nil {
		return err
	}
	mode, err := parseMode(setMode)
	if err != nil {
		return err
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"fan", setFan},
		{"temp", setTemp},
		{"capacity", setCapacity},
		{"flow", setFlow},
	} {
		if f.value < 0 || f.value > 255 {
			return fmt.Errorf("--%s must be between 0 and 255", f.name)
		}
	}

	intent := givre.ControlIntent{
		Power:     power,
		Mode:      mode,
		FanSpeed:  uint8(setFan),
		SetpointC: uint8(setTemp),
		Turbo:     setTurbo,
		XFan:      setXFan,
		Swing:     setSwing,
		Display:   setDisplay,
		Capacity:  uint8(setCapacity),
		Flow:      uint8(setFlow),
	}

	frame, err := givre.BuildControl(intent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
		os.Exit(1)
	}
	wire := frame.Encode()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Manifold - Set\n")
	fmt.Printf("Connection: %s\n\n", connInfo)
	fmt.Printf("Intent: %s\n", intentLine(frame))
	fmt.Printf("Control frame (%d bytes):\n%s", len(wire), givre.HexDump(wire))

	if _, err := conn.Write(wire); err != nil {
		fmt.Fprintf(os.Stderr, "SEND FAILED: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("Sent.\n")

	if !setConfirm {
		return nil
	}

	fmt.Printf("\nWaiting for status...\n")
	status, err := awaitStatusFrame(conn, setTimeout, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if status == nil {
		fmt.Fprintf(os.Stderr, "CONFIRM TIMEOUT: No status frame received within %d seconds\n", setTimeout)
		os.Exit(1)
	}

	sf, err := givre.DecodeStatus(status)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}
	report, err := sf.Report()
	if err != nil {
		fmt.Fprintf(os.Stderr, "DECODE FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(givre.FormatReport(report))

	return nil
}

func parsePower(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("--power must be on or off, got %q", s)
	}
}

func parseMode(s string) (givre.Mode, error) {
	switch strings.ToLower(s) {
	case "auto":
		return givre.ModeAuto, nil
	case "cool":
		return givre.ModeCool, nil
	case "dry":
		return givre.ModeDry, nil
	case "fan":
		return givre.ModeFan, nil
	case "heat":
		return givre.ModeHeat, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (use auto, cool, dry, fan or heat)", s)
	}
}

// intentLine condenses a built control frame into one line
func intentLine(f *givre.ControlFrame) string {
	power := "off"
	if f.Power() {
		power = "on"
	}
	s := fmt.Sprintf("power %s, mode %s, fan %s, setpoint %d°C", power, f.Mode(), fanLabel(f.FanSpeed()), f.SetpointC())
	if f.Turbo() {
		s += ", turbo"
	}
	if f.XFan() {
		s += ", x-fan"
	}
	if f.Swing() {
		s += ", swing"
	}
	if f.Display() {
		s += ", display"
	}
	if f.Capacity() != 0 {
		s += fmt.Sprintf(", capacity 0x%02X", f.Capacity())
	}
	if f.Flow() != 0 {
		s += fmt.Sprintf(", flow 0x%02X", f.Flow())
	}
	return s
}
