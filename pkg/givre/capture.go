// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// captureVersion is bumped when the record layout changes.
const captureVersion = 1

// Direction marks which side of the line a captured chunk came from.
type Direction uint8

const (
	// DirectionRx is device to host.
	DirectionRx Direction = 0
	// DirectionTx is host to device.
	DirectionTx Direction = 1
)

func (d Direction) String() string {
	if d == DirectionTx {
		return "tx"
	}
	return "rx"
}

// CaptureHeader describes a capture session. It is the first CBOR value
// in a capture file.
type CaptureHeader struct {
	Version   uint8
	SessionID uuid.UUID
	CreatedAt time.Time
	Source    string
}

// CaptureRecord is one timestamped chunk of line bytes. Records carry raw
// bytes rather than parsed frames so a capture preserves garbage, partial
// frames, and checksum failures exactly as they arrived.
type CaptureRecord struct {
	Time      time.Time
	Direction Direction
	Raw       []byte
}

// Wire forms. Integer keys keep records small; timestamps travel as Unix
// microseconds.
type captureHeaderWire struct {
	Version   uint8     `cbor:"1,keyasint"`
	SessionID uuid.UUID `cbor:"2,keyasint"`
	CreatedAt int64     `cbor:"3,keyasint"`
	Source    string    `cbor:"4,keyasint"`
}

type captureRecordWire struct {
	Timestamp int64  `cbor:"1,keyasint"`
	Direction uint8  `cbor:"2,keyasint"`
	Raw       []byte `cbor:"3,keyasint"`
}

// CaptureWriter streams capture records to a file or socket as CBOR.
type CaptureWriter struct {
	enc     *cbor.Encoder
	session uuid.UUID
	count   uint64
}

// NewCaptureWriter writes a session header and returns a writer for its
// records. Source names where the bytes come from, such as the serial
// port path or WebSocket URL.
func NewCaptureWriter(w io.Writer, source string) (*CaptureWriter, error) {
	session := uuid.New()
	enc := cbor.NewEncoder(w)
	err := enc.Encode(captureHeaderWire{
		Version:   captureVersion,
		SessionID: session,
		CreatedAt: time.Now().UnixMicro(),
		Source:    source,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write capture header: %w", err)
	}
	return &CaptureWriter{enc: enc, session: session}, nil
}

// SessionID returns the generated session identifier.
func (w *CaptureWriter) SessionID() uuid.UUID { return w.session }

// Count returns the number of records written so far.
func (w *CaptureWriter) Count() uint64 { return w.count }

// Write appends one chunk of line bytes to the capture.
func (w *CaptureWriter) Write(dir Direction, raw []byte, at time.Time) error {
	err := w.enc.Encode(captureRecordWire{
		Timestamp: at.UnixMicro(),
		Direction: uint8(dir),
		Raw:       raw,
	})
	if err != nil {
		return fmt.Errorf("failed to write capture record: %w", err)
	}
	w.count++
	return nil
}

// CaptureReader streams capture records back out of a CBOR capture.
type CaptureReader struct {
	dec    *cbor.Decoder
	header CaptureHeader
}

// NewCaptureReader reads the session header and returns a reader for the
// records that follow.
func NewCaptureReader(r io.Reader) (*CaptureReader, error) {
	dec := cbor.NewDecoder(r)
	var hw captureHeaderWire
	if err := dec.Decode(&hw); err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if hw.Version != captureVersion {
		return nil, fmt.Errorf("unsupported capture version %d", hw.Version)
	}
	return &CaptureReader{
		dec: dec,
		header: CaptureHeader{
			Version:   hw.Version,
			SessionID: hw.SessionID,
			CreatedAt: time.UnixMicro(hw.CreatedAt),
			Source:    hw.Source,
		},
	}, nil
}

// Header returns the session header.
func (r *CaptureReader) Header() CaptureHeader { return r.header }

// Next returns the next record, or io.EOF when the capture is exhausted.
func (r *CaptureReader) Next() (CaptureRecord, error) {
	var rw captureRecordWire
	if err := r.dec.Decode(&rw); err != nil {
		if err == io.EOF {
			return CaptureRecord{}, io.EOF
		}
		return CaptureRecord{}, fmt.Errorf("failed to read capture record: %w", err)
	}
	return CaptureRecord{
		Time:      time.UnixMicro(rw.Timestamp),
		Direction: Direction(rw.Direction),
		Raw:       rw.Raw,
	}, nil
}
