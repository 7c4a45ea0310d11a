// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestCapture_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewCaptureWriter(&buf, "/dev/serial0")
	if err != nil {
		t.Fatalf("NewCaptureWriter failed: %v", err)
	}

	t0 := time.UnixMicro(1724600000000000)
	t1 := t0.Add(250 * time.Millisecond)
	status := buildStatusFrame(nil)

	if err := w.Write(DirectionRx, status, t0); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Write(DirectionTx, EncodeQuery(), t1); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if w.Count() != 2 {
		t.Errorf("Count should be 2, got %d", w.Count())
	}

	r, err := NewCaptureReader(&buf)
	if err != nil {
		t.Fatalf("NewCaptureReader failed: %v", err)
	}

	header := r.Header()
	if header.Version != captureVersion {
		t.Errorf("Header version mismatch: got %d", header.Version)
	}
	if header.Source != "/dev/serial0" {
		t.Errorf("Header source mismatch: got %s", header.Source)
	}
	if header.SessionID != w.SessionID() {
		t.Error("Header session ID should match the writer's")
	}
	if header.CreatedAt.IsZero() {
		t.Error("Header timestamp should be set")
	}

	rec0, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if rec0.Direction != DirectionRx {
		t.Errorf("First record direction: expected rx, got %s", rec0.Direction)
	}
	if !rec0.Time.Equal(t0) {
		t.Errorf("First record time mismatch: got %v, want %v", rec0.Time, t0)
	}
	if !bytes.Equal(rec0.Raw, status) {
		t.Error("First record bytes should round-trip unchanged")
	}

	rec1, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if rec1.Direction != DirectionTx || !bytes.Equal(rec1.Raw, EncodeQuery()) {
		t.Error("Second record should carry the query bytes")
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Exhausted capture should return io.EOF, got %v", err)
	}
}

func TestCapture_ReplayThroughDecoder(t *testing.T) {
	// A capture preserves the line verbatim, so replaying its records
	// through the streaming decoder recovers the same frames, garbage
	// included.
	var buf bytes.Buffer
	w, err := NewCaptureWriter(&buf, "bench rig")
	if err != nil {
		t.Fatalf("NewCaptureWriter failed: %v", err)
	}

	status := buildStatusFrame(func(f []byte) {
		f[8] = 0x91
		f[16] = 82
	})

	now := time.Now()
	w.Write(DirectionRx, []byte{0x00, 0x13}, now)    // line noise
	w.Write(DirectionRx, status[:100], now)          // frame split across
	w.Write(DirectionRx, status[100:], now)          // two reads
	w.Write(DirectionTx, EncodeQuery(), now)         // our own poll
	w.Write(DirectionRx, buildStatusFrame(nil), now) // second response

	r, err := NewCaptureReader(&buf)
	if err != nil {
		t.Fatalf("NewCaptureReader failed: %v", err)
	}

	d := NewDecoder()
	var frames []*RawFrame
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if rec.Direction != DirectionRx {
			continue
		}
		fs, errs := feedAll(d, rec.Raw)
		if len(errs) != 0 {
			t.Fatalf("Replay decode errors: %v", errs)
		}
		frames = append(frames, fs...)
	}

	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames from replay, got %d", len(frames))
	}
	if !bytes.Equal(frames[0].Bytes(), status) {
		t.Error("Split frame should reassemble byte-for-byte")
	}
	if d.Discarded() != 2 {
		t.Errorf("Expected 2 discarded noise bytes, got %d", d.Discarded())
	}
}

func TestCaptureReader_TruncatedHeader(t *testing.T) {
	_, err := NewCaptureReader(bytes.NewReader([]byte{0x01, 0x02}))
	if err == nil {
		t.Error("Expected error for garbage header")
	}

	_, err = NewCaptureReader(bytes.NewReader(nil))
	if err == nil {
		t.Error("Expected error for empty capture")
	}
}

func TestCaptureReader_UnsupportedVersion(t *testing.T) {
	raw, err := cbor.Marshal(captureHeaderWire{
		Version:   99,
		CreatedAt: time.Now().UnixMicro(),
		Source:    "future",
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	_, err = NewCaptureReader(bytes.NewReader(raw))
	if err == nil {
		t.Error("Expected error for unsupported capture version")
	}
}

func TestDirection_String(t *testing.T) {
	if DirectionRx.String() != "rx" || DirectionTx.String() != "tx" {
		t.Error("Direction names should be rx/tx")
	}
}
