// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import (
	"fmt"
	"strings"
)

// FormatFrameType returns the human-readable name for a frame type
func FormatFrameType(t FrameType) string {
	switch t {
	case FrameQuery:
		return "QUERY"
	case FrameStatus:
		return "STATUS"
	case FrameControl:
		return "CONTROL"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame formats a frame header into a one-line summary
func FormatFrame(f *RawFrame) string {
	timestamp := f.Timestamp().Format("15:04:05.000")
	return fmt.Sprintf("[%s] %s (0x%02X/0x%02X) len=%d checksum=0x%02X\n",
		timestamp, FormatFrameType(f.Type()), f.TypeByte(), f.SubTypeByte(), f.Len(), f.Checksum())
}

// FormatReport formats a decoded status report into a human-readable block
func FormatReport(r *StatusReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  Power: %s, Mode: %s, Fan: %s, Setpoint: %.1f°C\n",
		onOff(r.Power), r.Mode, formatFan(r.FanSpeed), r.SetpointC)
	fmt.Fprintf(&b, "  Turbo: %s, X-Fan: %s, Swing: %s, Display: %s\n",
		onOff(r.Turbo), onOff(r.XFan), onOff(r.Swing), onOff(r.Display))
	fmt.Fprintf(&b, "  Vapor line: %.1f°F at %.1f bar\n", r.VaporLineTempF, r.VaporPressureBar)
	fmt.Fprintf(&b, "  Liquid line: %.1f°F at %.0f kPa\n", r.LiquidLineTempF, r.LiquidPressureKPa)
	fmt.Fprintf(&b, "  Coils: outdoor %.1f°C, indoor %.1f°C\n", r.OutdoorCoilTempC, r.IndoorCoilTempC)
	fmt.Fprintf(&b, "  Operational: %.0f\n", r.Operational)

	return b.String()
}

// FormatDecision formats an operating decision into a human-readable block
func FormatDecision(d OperatingDecision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  Inferred mode: %s (%s)\n", d.Mode, d.Reason)
	fmt.Fprintf(&b, "  Recommended setpoint: %d°C\n", d.SetpointC)
	if d.SafetyGate {
		b.WriteString("  Safety gate: open\n")
	} else {
		fmt.Fprintf(&b, "  Safety gate: CLOSED (%s)\n", d.SafetyReason)
	}

	return b.String()
}

// FormatValidation formats validation findings, one per line
func FormatValidation(errs []ValidationError) string {
	if len(errs) == 0 {
		return "  Validation: clean\n"
	}
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "  Anomaly: %s\n", e.Error())
	}
	return b.String()
}

// HexDump formats raw bytes as offset-prefixed rows of sixteen
func HexDump(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&b, "  %04X:", i)
		for _, v := range data[i:end] {
			fmt.Fprintf(&b, " %02X", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatFan(speed uint8) string {
	if speed == 0 {
		return "AUTO"
	}
	return fmt.Sprintf("%d", speed)
}

func onOff(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}
