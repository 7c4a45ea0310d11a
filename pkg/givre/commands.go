// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

// ControlIntent describes a desired unit state as supplied by a caller.
// BuildControl validates every field before any wire bytes exist; nothing
// is clamped.
type ControlIntent struct {
	Power     bool
	Mode      Mode
	FanSpeed  uint8 // 0 (auto) through FanSpeedMax
	SetpointC uint8 // SetpointMinC through SetpointMaxC
	Turbo     bool
	XFan      bool
	Swing     bool
	Display   bool

	// Capacity and Flow are raw modulation bytes for the compressor and
	// the expansion valve. Zero leaves the field unasserted; nonzero
	// values below the modulation floor are rejected.
	Capacity uint8
	Flow     uint8
}

// ControlFrame is a validated control command ready for encoding. It is
// constructed fresh for each command and has no identity beyond the single
// transmission.
type ControlFrame struct {
	power     bool
	mode      Mode
	fan       uint8
	setpointC uint8
	turbo     bool
	xfan      bool
	swing     bool
	display   bool
	capacity  uint8
	flow      uint8
}

// BuildControl validates an intent and produces a control frame.
// Validation failures are IntentError values; no partial frame is ever
// returned.
func BuildControl(in ControlIntent) (*ControlFrame, error) {
	if in.Mode < ModeAuto || in.Mode > ModeHeat {
		return nil, intentErrorf(IntentInvalidMode, "mode %d is not one of AUTO/COOL/DRY/FAN/HEAT", in.Mode)
	}
	if in.FanSpeed > FanSpeedMax {
		return nil, intentErrorf(IntentInvalidFanSpeed, "fan speed %d exceeds maximum %d", in.FanSpeed, FanSpeedMax)
	}
	if in.SetpointC < SetpointMinC || in.SetpointC > SetpointMaxC {
		return nil, intentErrorf(IntentSetpointOutOfRange, "setpoint %d°C outside %d-%d°C", in.SetpointC, SetpointMinC, SetpointMaxC)
	}
	if in.Capacity != 0 && in.Capacity < CapacityFloor {
		return nil, intentErrorf(IntentInvalidCapacity, "capacity 0x%02X below modulation floor 0x%02X", in.Capacity, CapacityFloor)
	}
	if in.Flow != 0 && in.Flow < FlowFloor {
		return nil, intentErrorf(IntentInvalidCapacity, "flow 0x%02X below modulation floor 0x%02X", in.Flow, FlowFloor)
	}

	return &ControlFrame{
		power:     in.Power,
		mode:      in.Mode,
		fan:       in.FanSpeed,
		setpointC: in.SetpointC,
		turbo:     in.Turbo,
		xfan:      in.XFan,
		swing:     in.Swing,
		display:   in.Display,
		capacity:  in.Capacity,
		flow:      in.Flow,
	}, nil
}

// Intent returns the frame's fields as an intent value, which is the
// comparable form used for round-trip verification.
func (c *ControlFrame) Intent() ControlIntent {
	return ControlIntent{
		Power:     c.power,
		Mode:      c.mode,
		FanSpeed:  c.fan,
		SetpointC: c.setpointC,
		Turbo:     c.turbo,
		XFan:      c.xfan,
		Swing:     c.swing,
		Display:   c.display,
		Capacity:  c.capacity,
		Flow:      c.flow,
	}
}

// Power reports whether the frame commands the unit on.
func (c *ControlFrame) Power() bool { return c.power }

// Mode returns the commanded operating mode.
func (c *ControlFrame) Mode() Mode { return c.mode }

// FanSpeed returns the commanded fan speed.
func (c *ControlFrame) FanSpeed() uint8 { return c.fan }

// SetpointC returns the commanded setpoint in whole degrees Celsius.
func (c *ControlFrame) SetpointC() uint8 { return c.setpointC }

// Turbo reports the turbo flag.
func (c *ControlFrame) Turbo() bool { return c.turbo }

// XFan reports the x-fan (post-run fan purge) flag.
func (c *ControlFrame) XFan() bool { return c.xfan }

// Swing reports the louver swing flag.
func (c *ControlFrame) Swing() bool { return c.swing }

// Display reports the front-panel display flag.
func (c *ControlFrame) Display() bool { return c.display }

// Capacity returns the compressor modulation byte (0 = unasserted).
func (c *ControlFrame) Capacity() uint8 { return c.capacity }

// Flow returns the expansion valve modulation byte (0 = unasserted).
func (c *ControlFrame) Flow() uint8 { return c.flow }

// Encode serializes the frame to its 40-byte wire form.
func (c *ControlFrame) Encode() []byte {
	return EncodeControl(c)
}

// Convenience constructors. These wrap BuildControl with the intents the
// line tool sends most often.

// NewStatusQuery returns the wire bytes that poll the unit for a status
// frame.
func NewStatusQuery() []byte {
	return EncodeQuery()
}

// NewPowerCommand builds a bare power on/off command. The setpoint rides
// along at the moderate default since the wire format always carries one.
func NewPowerCommand(on bool) (*ControlFrame, error) {
	return BuildControl(ControlIntent{
		Power:     on,
		Mode:      ModeAuto,
		SetpointC: fallbackSetpointC,
	})
}

// NewMaxPerformanceCommand builds the full-output command for the given
// mode: power on, turbo, maximum fan, maximum compressor and flow
// modulation, and the mode's aggressive setpoint (18°C cooling, 30°C
// heating, 24°C otherwise).
func NewMaxPerformanceCommand(mode Mode) (*ControlFrame, error) {
	var setpoint uint8
	switch mode {
	case ModeCool:
		setpoint = coolSetpointC
	case ModeHeat:
		setpoint = heatSetpointC
	default:
		setpoint = fallbackSetpointC
	}

	return BuildControl(ControlIntent{
		Power:     true,
		Mode:      mode,
		FanSpeed:  FanSpeedMax,
		SetpointC: setpoint,
		Turbo:     true,
		Capacity:  MaxModulation,
		Flow:      MaxModulation,
	})
}
