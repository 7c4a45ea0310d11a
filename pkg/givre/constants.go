// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

// Package givre implements the GREE/Mr Cool UART wire protocol spoken by
// MDUO-series heat pumps on their indoor-outdoor communication line.
//
// The protocol is a fixed-layout binary format: every frame opens with a
// two-byte marker, carries a type and sub-type byte, and closes with an
// additive checksum. This package provides frame encoding/decoding, the
// status field-layout table, checksum validation, heat/cool mode inference
// from refrigerant line temperatures, and safety-bounded control frame
// construction.
package givre

// Protocol framing
const (
	// MarkerByte opens every frame; it appears twice in a row.
	MarkerByte = 0x7E
)

// Frame type bytes (third byte on the wire) and their sub-type bytes
// (fourth byte). The pair identifies the frame shape.
const (
	TypeQuery   = 0x02
	TypeStatus  = 0xFF
	TypeControl = 0x25

	SubTypeQuery   = 0x02
	SubTypeStatus  = 0xE0
	SubTypeControl = 0x01
)

// Frame shapes: total wire length, marker through checksum. These are the
// only three shapes the device emits or accepts.
const (
	QuerySize   = 5
	StatusSize  = 255
	ControlSize = 40

	// MaxFrameSize bounds decoder buffers.
	MaxFrameSize = StatusSize

	// headerSize covers marker (2) + type + sub-type.
	headerSize = 4
)

// FrameType is the decoded classification of a RawFrame.
type FrameType int

const (
	FrameUnknown FrameType = iota
	FrameQuery
	FrameStatus
	FrameControl
)

// Control frame payload positions (frame-absolute offsets).
const (
	ctrlOffUpdate   = 4  // update flag, always 0x01
	ctrlOffPower    = 5  // 0x80 = on, 0x00 = off
	ctrlOffCapacity = 6  // compressor capacity modulation
	ctrlOffFlow     = 7  // refrigerant flow / expansion valve
	ctrlOffMode     = 8  // operating mode, bits 4-6
	ctrlOffSetpoint = 9  // setpoint nibble, upper 4 bits
	ctrlOffFlags    = 10 // turbo/display/swing/x-fan bits
	ctrlOffFan      = 19 // fan speed, bits 0-2
	ctrlOffChecksum = 39
)

const (
	ctrlUpdateFlag = 0x01
	ctrlPowerOn    = 0x80
)

// Status frame flag byte positions (frame-absolute offsets). Sensor field
// offsets live in the field-layout table in fields.go.
const (
	statusOffFlags    = 8  // power bit 7, mode bits 4-6, fan bits 0-2
	statusOffSetpoint = 9  // setpoint nibble, upper 4 bits
	statusOffAux      = 10 // turbo/display/swing/x-fan bits
	statusOffHalfDeg  = 13 // half-degree increment, bit 3
)

// Flag bit masks shared by the status and control directions (Bekmansurov
// byte layout).
const (
	flagPowerBit  = 0x80
	flagModeMask  = 0x70
	flagModeShift = 4
	flagFanMask   = 0x07

	auxXFanBit    = 0x01
	auxDisplayBit = 0x08
	auxTurboBit   = 0x10
	auxSwingBit   = 0x20

	halfDegreeBit = 0x08
)

// Mode represents the unit's operating mode, encoded in bits 4-6 of the
// mode byte in both directions.
type Mode int

const (
	ModeAuto Mode = 0
	ModeCool Mode = 1
	ModeDry  Mode = 2
	ModeFan  Mode = 3
	ModeHeat Mode = 4
)

// String returns the mode's display name.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "AUTO"
	case ModeCool:
		return "COOL"
	case ModeDry:
		return "DRY"
	case ModeFan:
		return "FAN"
	case ModeHeat:
		return "HEAT"
	default:
		return "UNKNOWN"
	}
}

// Intent limits. Setpoint bounds follow from the nibble encoding: the
// stored value is setpoint minus 16 and must fit in four bits.
const (
	FanSpeedMax  = 5
	SetpointMinC = 16
	SetpointMaxC = 31

	// Capacity and flow are raw modulation bytes. Zero leaves the field
	// unasserted; nonzero requests below the device's modulation floor are
	// rejected rather than clamped.
	CapacityFloor = 0x20
	FlowFloor     = 0x10

	// MaxModulation is the full-capacity request used by the performance
	// sequence.
	MaxModulation = 0x80
)

// Safety bounds for outgoing control recommendations. A decision violating
// any one of these closes the safety gate.
const (
	SafetyLiquidMaxC = 65.0
	SafetyVaporMinC  = -10.0
	SafetyDiffMaxC   = 60.0
)

// Mode inference thresholds and recommended setpoints.
const (
	heatDifferentialC = 20.0

	coolSetpointC     = 18
	heatSetpointC     = 30
	fallbackSetpointC = 24
)

// operationalFloor is the lowest operational-indicator value seen while
// the compressor is actually running; powered-on readings below it are
// flagged by the validator.
const operationalFloor = 10

// Decoder states (internal)
const (
	stateMarker1 = iota // hunting for the first marker byte
	stateMarker2        // saw one marker byte, expecting the second
	stateType           // expecting the frame type byte
	stateBody           // accumulating sub-type, payload, and checksum
)
