// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import "fmt"

// RefrigerantTemps carries the two line temperatures, in °C, that the
// inference engine works from.
type RefrigerantTemps struct {
	VaporC  float64
	LiquidC float64
}

// DifferentialC returns liquid minus vapor.
func (t RefrigerantTemps) DifferentialC() float64 {
	return t.LiquidC - t.VaporC
}

// InferredMode is the engine's judgement of what the refrigerant circuit
// is actually doing, independent of what the flag bytes claim.
type InferredMode int

const (
	InferredUncertain InferredMode = iota
	InferredCool
	InferredHeat
)

func (m InferredMode) String() string {
	switch m {
	case InferredCool:
		return "COOL"
	case InferredHeat:
		return "HEAT"
	default:
		return "UNCERTAIN"
	}
}

// ControlMode maps an inference onto a commandable mode. The second
// return is false when the inference is too uncertain to act on.
func (m InferredMode) ControlMode() (Mode, bool) {
	switch m {
	case InferredCool:
		return ModeCool, true
	case InferredHeat:
		return ModeHeat, true
	default:
		return ModeAuto, false
	}
}

// OperatingDecision is the engine's full output: the inferred mode, the
// setpoint that matches it, and whether the readings are inside the
// safety envelope. A closed gate is advice, not an error; callers that
// send commands must honor it.
type OperatingDecision struct {
	Mode         InferredMode
	SetpointC    uint8
	SafetyGate   bool
	Reason       string
	SafetyReason string
}

// Infer derives the operating decision from a pair of line temperatures.
// A differential above 20°C means the liquid line is hot relative to the
// vapor line, which only happens when the unit is heating; a negative
// differential means it is cooling. Everything in between is uncertain.
// The safety gate is evaluated on every call regardless of mode.
func Infer(t RefrigerantTemps) OperatingDecision {
	diff := t.DifferentialC()

	var d OperatingDecision
	switch {
	case diff > heatDifferentialC:
		d.Mode = InferredHeat
		d.SetpointC = heatSetpointC
		d.Reason = fmt.Sprintf("differential %.1f°C exceeds %.1f°C heating threshold", diff, float64(heatDifferentialC))
	case diff < 0:
		d.Mode = InferredCool
		d.SetpointC = coolSetpointC
		d.Reason = fmt.Sprintf("differential %.1f°C is negative, circuit is rejecting heat indoors", diff)
	default:
		d.Mode = InferredUncertain
		d.SetpointC = fallbackSetpointC
		d.Reason = fmt.Sprintf("differential %.1f°C is inside the ambiguous band", diff)
	}

	d.SafetyGate = true
	switch {
	case t.LiquidC > SafetyLiquidMaxC:
		d.SafetyGate = false
		d.SafetyReason = fmt.Sprintf("liquid line %.1f°C above %.1f°C limit", t.LiquidC, SafetyLiquidMaxC)
	case t.VaporC < SafetyVaporMinC:
		d.SafetyGate = false
		d.SafetyReason = fmt.Sprintf("vapor line %.1f°C below %.1f°C limit", t.VaporC, SafetyVaporMinC)
	case diff > SafetyDiffMaxC:
		d.SafetyGate = false
		d.SafetyReason = fmt.Sprintf("differential %.1f°C above %.1f°C limit", diff, SafetyDiffMaxC)
	}

	return d
}
