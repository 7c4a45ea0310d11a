// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

// FieldID identifies a scalar telemetry field inside a status frame.
type FieldID int

const (
	FieldVaporPressure FieldID = iota
	FieldVaporLineTemp
	FieldOutdoorCoilTemp
	FieldLiquidLineTemp
	FieldLiquidPressure
	FieldIndoorCoilTemp
	FieldOperational
)

// Encoding names how a field's raw bytes map to an engineering value.
type Encoding int

const (
	// EncDirect reads one byte and applies the scale factor.
	EncDirect Encoding = iota
	// EncOffset16 reads one byte and subtracts 16 (the usual GREE
	// temperature bias).
	EncOffset16
	// EncLE16 reads two bytes little-endian and applies the scale factor.
	EncLE16
)

// FieldSpec describes one scalar field: where it lives in the frame and
// how to turn its bytes into a value. Offsets are frame-absolute, counted
// from the first marker byte.
type FieldSpec struct {
	ID     FieldID
	Name   string
	Unit   string
	Offset int
	Width  int
	Enc    Encoding
	Scale  float64
}

var statusFields = [...]FieldSpec{
	{FieldVaporPressure, "vapor pressure", "bar", 16, 1, EncDirect, 0.1},
	{FieldVaporLineTemp, "vapor line temp", "°F", 22, 1, EncDirect, 1},
	{FieldOutdoorCoilTemp, "outdoor coil temp", "°C", 25, 1, EncOffset16, 1},
	{FieldLiquidLineTemp, "liquid line temp", "°F", 56, 1, EncDirect, 0.43},
	{FieldLiquidPressure, "liquid pressure", "kPa", 60, 2, EncLE16, 1},
	{FieldIndoorCoilTemp, "indoor coil temp", "°C", 64, 1, EncDirect, 1},
	{FieldOperational, "operational value", "", 31, 1, EncDirect, 1},
}

// StatusFields returns the scalar field layout of a status frame.
func StatusFields() []FieldSpec {
	out := make([]FieldSpec, len(statusFields))
	copy(out, statusFields[:])
	return out
}

func fieldSpec(id FieldID) (FieldSpec, bool) {
	for _, fs := range statusFields {
		if fs.ID == id {
			return fs, true
		}
	}
	return FieldSpec{}, false
}

// decodeField extracts one scalar from raw frame bytes. Each extraction
// bounds-checks independently so a short frame yields values for every
// field it does cover and a FieldError for each one it does not.
func decodeField(raw []byte, fs FieldSpec) (float64, error) {
	if fs.Offset+fs.Width > len(raw) {
		return 0, fieldRangeError(fs.Name, fs.Offset+fs.Width-1, len(raw))
	}
	switch fs.Enc {
	case EncOffset16:
		return float64(raw[fs.Offset]) - 16, nil
	case EncLE16:
		v := uint16(raw[fs.Offset+1])<<8 | uint16(raw[fs.Offset])
		return float64(v) * fs.Scale, nil
	default:
		return float64(raw[fs.Offset]) * fs.Scale, nil
	}
}

// FahrenheitToCelsius converts a line temperature reading for use with
// the Celsius-based decision engine.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
