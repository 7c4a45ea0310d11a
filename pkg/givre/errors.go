// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import "fmt"

// FrameErrorKind classifies frame-level decode failures.
type FrameErrorKind int

const (
	FrameBadMarker FrameErrorKind = iota
	FrameBadLength
	FrameChecksumMismatch
	FrameWrongType
)

// String returns the kind's display name.
func (k FrameErrorKind) String() string {
	switch k {
	case FrameBadMarker:
		return "bad marker"
	case FrameBadLength:
		return "bad length"
	case FrameChecksumMismatch:
		return "checksum mismatch"
	case FrameWrongType:
		return "wrong frame type"
	default:
		return "unknown frame error"
	}
}

// FrameError reports a malformed, truncated, or checksum-invalid frame.
// Frame errors are always recoverable: discard the frame and wait for the
// next read.
type FrameError struct {
	Kind    FrameErrorKind
	Message string
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func frameErrorf(kind FrameErrorKind, format string, args ...interface{}) *FrameError {
	return &FrameError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FieldErrorKind classifies field extraction failures.
type FieldErrorKind int

const (
	FieldOutOfRange FieldErrorKind = iota
)

// String returns the kind's display name.
func (k FieldErrorKind) String() string {
	switch k {
	case FieldOutOfRange:
		return "offset out of range"
	default:
		return "unknown field error"
	}
}

// FieldError reports a status field whose offset lies beyond the available
// frame bytes. It indicates a truncated capture or a protocol-version
// mismatch; there is no silent zero-fill.
type FieldError struct {
	Kind   FieldErrorKind
	Field  string
	Offset int
	Have   int
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s (needs offset %d, frame has %d bytes)",
		e.Field, e.Kind, e.Offset, e.Have)
}

func fieldRangeError(field string, offset, have int) *FieldError {
	return &FieldError{Kind: FieldOutOfRange, Field: field, Offset: offset, Have: have}
}

// IntentErrorKind classifies control intent rejections.
type IntentErrorKind int

const (
	IntentInvalidMode IntentErrorKind = iota
	IntentInvalidFanSpeed
	IntentSetpointOutOfRange
	IntentInvalidCapacity
)

// String returns the kind's display name.
func (k IntentErrorKind) String() string {
	switch k {
	case IntentInvalidMode:
		return "invalid mode"
	case IntentInvalidFanSpeed:
		return "invalid fan speed"
	case IntentSetpointOutOfRange:
		return "setpoint out of range"
	case IntentInvalidCapacity:
		return "invalid capacity"
	default:
		return "unknown intent error"
	}
}

// IntentError reports an invalid control intent. The intent is rejected
// before any bytes are built; nothing is partially encoded and nothing is
// clamped.
type IntentError struct {
	Kind    IntentErrorKind
	Message string
}

// Error implements the error interface.
func (e *IntentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func intentErrorf(kind IntentErrorKind, format string, args ...interface{}) *IntentError {
	return &IntentError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
