// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

// Decoder implements the streaming frame decoder state machine. Feed it
// one byte at a time from the serial link; it hunts for the double marker,
// derives the frame shape from the type byte, and emits a validated
// RawFrame once the checksum clears.
//
// The marker byte can legitimately occur inside payloads (the protocol has
// no byte stuffing), so the decoder only trusts a frame after its checksum
// verifies and resynchronizes by returning to the marker hunt on any
// failure.
type Decoder struct {
	state     int
	expected  int
	frameType FrameType
	buf       []byte
	discarded uint64
}

// NewDecoder creates a new streaming decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		state: stateMarker1,
		buf:   make([]byte, 0, MaxFrameSize),
	}
}

// Reset abandons any in-progress frame and returns to the marker hunt.
// The discarded-byte counter persists across resets.
func (d *Decoder) Reset() {
	d.scrap()
}

// RawBytes returns the bytes of the frame currently being accumulated.
func (d *Decoder) RawBytes() []byte {
	return d.buf
}

// Discarded returns the total count of bytes scrapped while hunting for
// frame markers or recovering from decode failures.
func (d *Decoder) Discarded() uint64 {
	return d.discarded
}

// scrap counts the buffered bytes as lost and restarts the marker hunt.
func (d *Decoder) scrap() {
	d.discarded += uint64(len(d.buf))
	d.buf = d.buf[:0]
	d.state = stateMarker1
	d.expected = 0
	d.frameType = FrameUnknown
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil if the frame is incomplete.
// Returns an error when a candidate frame fails validation; the decoder
// has already resynchronized when the error is returned.
func (d *Decoder) DecodeByte(b byte) (*RawFrame, error) {
	switch d.state {
	case stateMarker1:
		if b != MarkerByte {
			d.discarded++
			return nil, nil
		}
		d.buf = append(d.buf[:0], b)
		d.state = stateMarker2
		return nil, nil

	case stateMarker2:
		if b != MarkerByte {
			// Lone marker byte followed by noise; neither belongs to a frame.
			d.buf = append(d.buf, b)
			d.scrap()
			return nil, nil
		}
		d.buf = append(d.buf, b)
		d.state = stateType
		return nil, nil

	case stateType:
		if b == MarkerByte {
			// Still inside a run of marker bytes: the oldest one was noise,
			// the latest two may open the real frame.
			d.discarded++
			return nil, nil
		}
		frameType, size := classifyFrame(b)
		if frameType == FrameUnknown {
			d.buf = append(d.buf, b)
			err := frameErrorf(FrameBadLength, "no frame shape for type byte 0x%02X", b)
			d.scrap()
			return nil, err
		}
		d.buf = append(d.buf, b)
		d.frameType = frameType
		d.expected = size
		d.state = stateBody
		return nil, nil

	case stateBody:
		d.buf = append(d.buf, b)
		if len(d.buf) < d.expected {
			return nil, nil
		}

		// Frame complete: the last byte is the wire checksum.
		if !VerifyFrame(d.buf) {
			err := frameErrorf(FrameChecksumMismatch, "computed 0x%02X, frame carries 0x%02X",
				Checksum(d.buf[:len(d.buf)-1]), d.buf[len(d.buf)-1])
			d.scrap()
			return nil, err
		}

		wire := make([]byte, len(d.buf))
		copy(wire, d.buf)
		frame := newRawFrame(wire, d.frameType)

		d.buf = d.buf[:0]
		d.state = stateMarker1
		d.expected = 0
		d.frameType = FrameUnknown
		return frame, nil

	default:
		d.scrap()
		return nil, frameErrorf(FrameBadLength, "decoder in invalid state")
	}
}
