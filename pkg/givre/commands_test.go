// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildControl_Valid(t *testing.T) {
	frame, err := BuildControl(ControlIntent{
		Power:     true,
		Mode:      ModeCool,
		FanSpeed:  4,
		SetpointC: 22,
		Turbo:     true,
		Capacity:  0x60,
		Flow:      0x40,
	})
	if err != nil {
		t.Fatalf("BuildControl failed: %v", err)
	}

	if !frame.Power() {
		t.Error("Power accessor should report on")
	}
	if frame.Mode() != ModeCool {
		t.Errorf("Mode accessor: expected COOL, got %v", frame.Mode())
	}
	if frame.FanSpeed() != 4 {
		t.Errorf("FanSpeed accessor: expected 4, got %d", frame.FanSpeed())
	}
	if frame.SetpointC() != 22 {
		t.Errorf("SetpointC accessor: expected 22, got %d", frame.SetpointC())
	}
	if !frame.Turbo() || frame.XFan() || frame.Swing() || frame.Display() {
		t.Error("Aux accessors should match the intent")
	}
	if frame.Capacity() != 0x60 || frame.Flow() != 0x40 {
		t.Error("Modulation accessors should match the intent")
	}
}

func TestBuildControl_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		intent   ControlIntent
		wantKind IntentErrorKind
	}{
		{
			name:     "mode above enum",
			intent:   ControlIntent{Mode: Mode(5), SetpointC: 24},
			wantKind: IntentInvalidMode,
		},
		{
			name:     "mode negative",
			intent:   ControlIntent{Mode: Mode(-1), SetpointC: 24},
			wantKind: IntentInvalidMode,
		},
		{
			name:     "fan speed six",
			intent:   ControlIntent{Mode: ModeCool, FanSpeed: 6, SetpointC: 24},
			wantKind: IntentInvalidFanSpeed,
		},
		{
			name:     "fan speed seven",
			intent:   ControlIntent{Mode: ModeCool, FanSpeed: 7, SetpointC: 24},
			wantKind: IntentInvalidFanSpeed,
		},
		{
			name:     "setpoint below range",
			intent:   ControlIntent{Mode: ModeCool, SetpointC: 15},
			wantKind: IntentSetpointOutOfRange,
		},
		{
			name:     "setpoint above range",
			intent:   ControlIntent{Mode: ModeHeat, SetpointC: 32},
			wantKind: IntentSetpointOutOfRange,
		},
		{
			name:     "setpoint omitted",
			intent:   ControlIntent{Mode: ModeCool},
			wantKind: IntentSetpointOutOfRange,
		},
		{
			name:     "capacity below floor",
			intent:   ControlIntent{Mode: ModeCool, SetpointC: 24, Capacity: 0x1F},
			wantKind: IntentInvalidCapacity,
		},
		{
			name:     "flow below floor",
			intent:   ControlIntent{Mode: ModeCool, SetpointC: 24, Flow: 0x0F},
			wantKind: IntentInvalidCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildControl(tt.intent)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if frame != nil {
				t.Error("Rejected intent should not produce a frame")
			}
			var ie *IntentError
			if !errors.As(err, &ie) {
				t.Fatalf("Expected *IntentError, got %T", err)
			}
			if ie.Kind != tt.wantKind {
				t.Errorf("Expected kind %v, got %v (%v)", tt.wantKind, ie.Kind, err)
			}
		})
	}
}

func TestBuildControl_ModulationEdges(t *testing.T) {
	// Zero is unasserted, the floor itself is the lowest valid request.
	edges := []struct {
		capacity uint8
		flow     uint8
		wantOK   bool
	}{
		{0x00, 0x00, true},
		{CapacityFloor, FlowFloor, true},
		{CapacityFloor - 1, 0x00, false},
		{0x00, FlowFloor - 1, false},
		{0xFF, 0xFF, true},
	}

	for _, e := range edges {
		_, err := BuildControl(ControlIntent{
			Power: true, Mode: ModeCool, SetpointC: 20,
			Capacity: e.capacity, Flow: e.flow,
		})
		if (err == nil) != e.wantOK {
			t.Errorf("capacity 0x%02X flow 0x%02X: wantOK=%v, err=%v", e.capacity, e.flow, e.wantOK, err)
		}
	}
}

func TestBuildControl_NoClamping(t *testing.T) {
	// An out-of-range setpoint must be refused outright, never pulled to
	// the nearest bound.
	frame, err := BuildControl(ControlIntent{Power: true, Mode: ModeHeat, SetpointC: 35})
	if err == nil {
		t.Fatal("Expected rejection of out-of-range setpoint")
	}
	if frame != nil {
		t.Error("No frame should exist for a rejected intent")
	}
}

func TestNewStatusQuery(t *testing.T) {
	q := NewStatusQuery()
	if !bytes.Equal(q, EncodeQuery()) {
		t.Errorf("NewStatusQuery() = % X, want % X", q, EncodeQuery())
	}
	if !VerifyFrame(q) {
		t.Error("Status query should carry a valid checksum")
	}
}

func TestNewPowerCommand(t *testing.T) {
	on, err := NewPowerCommand(true)
	if err != nil {
		t.Fatalf("NewPowerCommand(true) failed: %v", err)
	}
	if !on.Power() {
		t.Error("Expected power on")
	}
	if on.Mode() != ModeAuto {
		t.Errorf("Expected AUTO mode, got %v", on.Mode())
	}
	if on.SetpointC() != 24 {
		t.Errorf("Expected default setpoint 24, got %d", on.SetpointC())
	}

	off, err := NewPowerCommand(false)
	if err != nil {
		t.Fatalf("NewPowerCommand(false) failed: %v", err)
	}
	if off.Power() {
		t.Error("Expected power off")
	}
}

func TestNewMaxPerformanceCommand(t *testing.T) {
	tests := []struct {
		name         string
		mode         Mode
		wantSetpoint uint8
	}{
		{"cooling", ModeCool, 18},
		{"heating", ModeHeat, 30},
		{"auto", ModeAuto, 24},
		{"fan only", ModeFan, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := NewMaxPerformanceCommand(tt.mode)
			if err != nil {
				t.Fatalf("NewMaxPerformanceCommand failed: %v", err)
			}
			if !frame.Power() {
				t.Error("Max performance should power the unit on")
			}
			if frame.Mode() != tt.mode {
				t.Errorf("Expected mode %v, got %v", tt.mode, frame.Mode())
			}
			if frame.SetpointC() != tt.wantSetpoint {
				t.Errorf("Expected setpoint %d, got %d", tt.wantSetpoint, frame.SetpointC())
			}
			if !frame.Turbo() {
				t.Error("Max performance should set turbo")
			}
			if frame.FanSpeed() != FanSpeedMax {
				t.Errorf("Expected fan %d, got %d", FanSpeedMax, frame.FanSpeed())
			}
			if frame.Capacity() != MaxModulation || frame.Flow() != MaxModulation {
				t.Error("Max performance should request full modulation")
			}
		})
	}
}

func TestNewMaxPerformanceCommand_InvalidMode(t *testing.T) {
	_, err := NewMaxPerformanceCommand(Mode(9))
	if err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestIntentErrorKind_String(t *testing.T) {
	tests := []struct {
		kind     IntentErrorKind
		expected string
	}{
		{IntentInvalidMode, "invalid mode"},
		{IntentInvalidFanSpeed, "invalid fan speed"},
		{IntentSetpointOutOfRange, "setpoint out of range"},
		{IntentInvalidCapacity, "invalid capacity"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("IntentErrorKind(%d).String() = %s, expected %s", tt.kind, got, tt.expected)
		}
	}
}
