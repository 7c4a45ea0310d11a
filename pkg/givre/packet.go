// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import "time"

// RawFrame represents one validated wire frame: marker, type byte,
// sub-type byte, payload, trailing checksum. Frames are immutable once
// constructed; the decoder hands out a fresh copy of the wire bytes.
type RawFrame struct {
	raw       []byte
	frameType FrameType
	timestamp time.Time
}

// classifyFrame maps a type byte to the frame classification and its
// expected total wire length. Returns FrameUnknown and 0 for type bytes
// the device never emits.
func classifyFrame(typeByte byte) (FrameType, int) {
	switch typeByte {
	case TypeQuery:
		return FrameQuery, QuerySize
	case TypeStatus:
		return FrameStatus, StatusSize
	case TypeControl:
		return FrameControl, ControlSize
	default:
		return FrameUnknown, 0
	}
}

// newRawFrame wraps already-validated wire bytes. The caller keeps
// ownership discipline: the slice must not be mutated afterwards.
func newRawFrame(raw []byte, t FrameType) *RawFrame {
	return &RawFrame{raw: raw, frameType: t, timestamp: time.Now()}
}

// Type returns the frame classification.
func (f *RawFrame) Type() FrameType {
	return f.frameType
}

// TypeByte returns the wire type byte (third byte).
func (f *RawFrame) TypeByte() byte {
	return f.raw[2]
}

// SubTypeByte returns the wire sub-type byte (fourth byte).
func (f *RawFrame) SubTypeByte() byte {
	return f.raw[3]
}

// Len returns the total wire length including marker and checksum.
func (f *RawFrame) Len() int {
	return len(f.raw)
}

// Bytes returns the complete wire bytes. The slice is owned by the frame
// and must not be mutated.
func (f *RawFrame) Bytes() []byte {
	return f.raw
}

// Payload returns the bytes between the sub-type byte and the checksum.
func (f *RawFrame) Payload() []byte {
	return f.raw[headerSize : len(f.raw)-1]
}

// Checksum returns the trailing checksum byte as carried on the wire.
func (f *RawFrame) Checksum() byte {
	return f.raw[len(f.raw)-1]
}

// Timestamp returns the frame's decode timestamp.
func (f *RawFrame) Timestamp() time.Time {
	return f.timestamp
}
