// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

// DecodeFrame decodes a complete frame from a byte slice in one shot.
// The input must be exactly one frame: marker, type, sub-type, payload,
// checksum. Use Decoder for byte streams with interleaved noise.
func DecodeFrame(data []byte) (*RawFrame, error) {
	if len(data) < 2 || data[0] != MarkerByte || data[1] != MarkerByte {
		return nil, frameErrorf(FrameBadMarker, "frame does not open with 0x%02X 0x%02X", MarkerByte, MarkerByte)
	}
	if len(data) < 3 {
		return nil, frameErrorf(FrameBadLength, "frame truncated before type byte")
	}

	frameType, size := classifyFrame(data[2])
	if frameType == FrameUnknown {
		return nil, frameErrorf(FrameBadLength, "no frame shape for type byte 0x%02X", data[2])
	}
	if len(data) != size {
		return nil, frameErrorf(FrameBadLength, "type 0x%02X frame must be %d bytes, have %d", data[2], size, len(data))
	}

	if !VerifyFrame(data) {
		return nil, frameErrorf(FrameChecksumMismatch, "computed 0x%02X, frame carries 0x%02X",
			Checksum(data[:len(data)-1]), data[len(data)-1])
	}

	wire := make([]byte, len(data))
	copy(wire, data)
	return newRawFrame(wire, frameType), nil
}

// EncodeQuery produces the 5-byte status poll the unit answers with a
// status frame: 7E 7E 02 02 04.
func EncodeQuery() []byte {
	frame := []byte{MarkerByte, MarkerByte, TypeQuery, SubTypeQuery, 0}
	frame[QuerySize-1] = Checksum(frame[:QuerySize-1])
	return frame
}

// EncodeControl serializes a validated control frame to its 40-byte wire
// form. Pure function; transmission is the caller's responsibility.
func EncodeControl(c *ControlFrame) []byte {
	frame := make([]byte, ControlSize)
	frame[0] = MarkerByte
	frame[1] = MarkerByte
	frame[2] = TypeControl
	frame[3] = SubTypeControl
	frame[ctrlOffUpdate] = ctrlUpdateFlag

	if c.power {
		frame[ctrlOffPower] = ctrlPowerOn
	}
	frame[ctrlOffCapacity] = c.capacity
	frame[ctrlOffFlow] = c.flow
	frame[ctrlOffMode] = byte(c.mode) << flagModeShift & flagModeMask
	frame[ctrlOffSetpoint] = byte(c.setpointC-SetpointMinC) << 4
	frame[ctrlOffFan] = c.fan & flagFanMask

	var aux byte
	if c.turbo {
		aux |= auxTurboBit
	}
	if c.xfan {
		aux |= auxXFanBit
	}
	if c.swing {
		aux |= auxSwingBit
	}
	if c.display {
		aux |= auxDisplayBit
	}
	frame[ctrlOffFlags] = aux

	frame[ctrlOffChecksum] = Checksum(frame[:ControlSize-1])
	return frame
}

// DecodeControl rebuilds a ControlFrame from a decoded control wire frame.
// It runs the same intent validation as BuildControl, so a frame carrying
// out-of-range values (for example a mode the unit does not define) is
// rejected rather than passed through.
func DecodeControl(f *RawFrame) (*ControlFrame, error) {
	if f.Type() != FrameControl || f.SubTypeByte() != SubTypeControl {
		return nil, frameErrorf(FrameWrongType, "type 0x%02X sub-type 0x%02X is not a control frame",
			f.TypeByte(), f.SubTypeByte())
	}

	raw := f.Bytes()
	intent := ControlIntent{
		Power:     raw[ctrlOffPower]&ctrlPowerOn != 0,
		Mode:      Mode(raw[ctrlOffMode] & flagModeMask >> flagModeShift),
		FanSpeed:  raw[ctrlOffFan] & flagFanMask,
		SetpointC: raw[ctrlOffSetpoint]>>4 + SetpointMinC,
		Turbo:     raw[ctrlOffFlags]&auxTurboBit != 0,
		XFan:      raw[ctrlOffFlags]&auxXFanBit != 0,
		Swing:     raw[ctrlOffFlags]&auxSwingBit != 0,
		Display:   raw[ctrlOffFlags]&auxDisplayBit != 0,
		Capacity:  raw[ctrlOffCapacity],
		Flow:      raw[ctrlOffFlow],
	}
	return BuildControl(intent)
}
