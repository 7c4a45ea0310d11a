// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import "time"

// StatusFrame is a view over the bytes of a 255-byte status frame.
// Construction checks the signature only; every field accessor
// bounds-checks its own offsets, so a truncated capture still yields the
// fields it covers and a FieldError for each one it does not.
type StatusFrame struct {
	raw       []byte
	timestamp time.Time
}

// NewStatusFrame wraps raw bytes carrying a status signature. The input
// may be shorter than the full frame; only the marker, type, and subtype
// bytes are required.
func NewStatusFrame(raw []byte) (*StatusFrame, error) {
	if len(raw) < 2 || raw[0] != MarkerByte || raw[1] != MarkerByte {
		return nil, frameErrorf(FrameBadMarker, "status frame must begin with 0x%02X 0x%02X", MarkerByte, MarkerByte)
	}
	if len(raw) < headerSize {
		return nil, frameErrorf(FrameBadLength, "%d bytes is too short to carry a type byte", len(raw))
	}
	if raw[2] != TypeStatus || raw[3] != SubTypeStatus {
		return nil, frameErrorf(FrameWrongType, "type 0x%02X/0x%02X is not a status frame", raw[2], raw[3])
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &StatusFrame{raw: buf, timestamp: time.Now()}, nil
}

// DecodeStatus narrows a validated frame to a status view. The frame must
// have arrived through the decoder as a status frame.
func DecodeStatus(f *RawFrame) (*StatusFrame, error) {
	if f.Type() != FrameStatus {
		return nil, frameErrorf(FrameWrongType, "cannot decode %s frame as status", FormatFrameType(f.Type()))
	}
	return &StatusFrame{raw: f.Bytes(), timestamp: f.Timestamp()}, nil
}

// Bytes returns a copy of the underlying frame bytes.
func (s *StatusFrame) Bytes() []byte {
	out := make([]byte, len(s.raw))
	copy(out, s.raw)
	return out
}

// Len returns the number of bytes backing the view.
func (s *StatusFrame) Len() int { return len(s.raw) }

// Timestamp returns when the frame was received or wrapped.
func (s *StatusFrame) Timestamp() time.Time { return s.timestamp }

// Field extracts any scalar field by ID.
func (s *StatusFrame) Field(id FieldID) (float64, error) {
	fs, ok := fieldSpec(id)
	if !ok {
		return 0, fieldRangeError("unknown field", 0, len(s.raw))
	}
	return decodeField(s.raw, fs)
}

// VaporPressureBar returns the vapor (suction) line pressure in bar.
func (s *StatusFrame) VaporPressureBar() (float64, error) {
	return s.Field(FieldVaporPressure)
}

// VaporLineTempF returns the vapor line temperature in °F.
func (s *StatusFrame) VaporLineTempF() (float64, error) {
	return s.Field(FieldVaporLineTemp)
}

// OutdoorCoilTempC returns the outdoor coil temperature in °C.
func (s *StatusFrame) OutdoorCoilTempC() (float64, error) {
	return s.Field(FieldOutdoorCoilTemp)
}

// LiquidLineTempF returns the liquid line temperature in °F.
func (s *StatusFrame) LiquidLineTempF() (float64, error) {
	return s.Field(FieldLiquidLineTemp)
}

// LiquidPressureKPa returns the liquid line pressure in kPa.
func (s *StatusFrame) LiquidPressureKPa() (float64, error) {
	return s.Field(FieldLiquidPressure)
}

// IndoorCoilTempC returns the indoor heat exchanger temperature in °C.
func (s *StatusFrame) IndoorCoilTempC() (float64, error) {
	return s.Field(FieldIndoorCoilTemp)
}

// Operational returns the unit's operational indicator value. Readings
// below 10 suggest the compressor has not spun up.
func (s *StatusFrame) Operational() (float64, error) {
	return s.Field(FieldOperational)
}

func (s *StatusFrame) flagByte(name string, offset int) (byte, error) {
	if offset >= len(s.raw) {
		return 0, fieldRangeError(name, offset, len(s.raw))
	}
	return s.raw[offset], nil
}

// Power reports whether the unit is on.
func (s *StatusFrame) Power() (bool, error) {
	b, err := s.flagByte("power flags", statusOffFlags)
	if err != nil {
		return false, err
	}
	return b&flagPowerBit != 0, nil
}

// Mode returns the reported operating mode. Values outside the known
// enum decode to a Mode whose String() is UNKNOWN.
func (s *StatusFrame) Mode() (Mode, error) {
	b, err := s.flagByte("power flags", statusOffFlags)
	if err != nil {
		return ModeAuto, err
	}
	return Mode((b & flagModeMask) >> flagModeShift), nil
}

// FanSpeed returns the reported fan speed (0 = auto).
func (s *StatusFrame) FanSpeed() (uint8, error) {
	b, err := s.flagByte("power flags", statusOffFlags)
	if err != nil {
		return 0, err
	}
	return b & flagFanMask, nil
}

// SetpointC returns the target temperature in °C, including the
// half-degree flag.
func (s *StatusFrame) SetpointC() (float64, error) {
	b, err := s.flagByte("setpoint", statusOffSetpoint)
	if err != nil {
		return 0, err
	}
	setpoint := float64(b>>4) + SetpointMinC
	half, err := s.flagByte("half degree flags", statusOffHalfDeg)
	if err != nil {
		return 0, err
	}
	if half&halfDegreeBit != 0 {
		setpoint += 0.5
	}
	return setpoint, nil
}

// Turbo reports the turbo flag.
func (s *StatusFrame) Turbo() (bool, error) {
	b, err := s.flagByte("aux flags", statusOffAux)
	if err != nil {
		return false, err
	}
	return b&auxTurboBit != 0, nil
}

// XFan reports the x-fan flag.
func (s *StatusFrame) XFan() (bool, error) {
	b, err := s.flagByte("aux flags", statusOffAux)
	if err != nil {
		return false, err
	}
	return b&auxXFanBit != 0, nil
}

// Swing reports the louver swing flag. The bit position is the best
// current guess from line captures.
func (s *StatusFrame) Swing() (bool, error) {
	b, err := s.flagByte("aux flags", statusOffAux)
	if err != nil {
		return false, err
	}
	return b&auxSwingBit != 0, nil
}

// Display reports the front-panel display flag.
func (s *StatusFrame) Display() (bool, error) {
	b, err := s.flagByte("aux flags", statusOffAux)
	if err != nil {
		return false, err
	}
	return b&auxDisplayBit != 0, nil
}

// RefrigerantTemps converts the two line temperatures to °C for the
// decision engine.
func (s *StatusFrame) RefrigerantTemps() (RefrigerantTemps, error) {
	vaporF, err := s.VaporLineTempF()
	if err != nil {
		return RefrigerantTemps{}, err
	}
	liquidF, err := s.LiquidLineTempF()
	if err != nil {
		return RefrigerantTemps{}, err
	}
	return RefrigerantTemps{
		VaporC:  FahrenheitToCelsius(vaporF),
		LiquidC: FahrenheitToCelsius(liquidF),
	}, nil
}

// StatusReport is the fully decoded form of a status frame.
type StatusReport struct {
	Timestamp time.Time

	Power     bool
	Mode      Mode
	FanSpeed  uint8
	SetpointC float64
	Turbo     bool
	XFan      bool
	Swing     bool
	Display   bool

	VaporPressureBar  float64
	VaporLineTempF    float64
	OutdoorCoilTempC  float64
	LiquidLineTempF   float64
	LiquidPressureKPa float64
	IndoorCoilTempC   float64
	Operational       float64
}

// Report decodes every field at once. It fails on the first field the
// frame is too short to carry, so it is meant for full-length frames;
// partial captures should use the per-field accessors.
func (s *StatusFrame) Report() (*StatusReport, error) {
	r := &StatusReport{Timestamp: s.timestamp}

	var err error
	if r.Power, err = s.Power(); err != nil {
		return nil, err
	}
	if r.Mode, err = s.Mode(); err != nil {
		return nil, err
	}
	if r.FanSpeed, err = s.FanSpeed(); err != nil {
		return nil, err
	}
	if r.SetpointC, err = s.SetpointC(); err != nil {
		return nil, err
	}
	if r.Turbo, err = s.Turbo(); err != nil {
		return nil, err
	}
	if r.XFan, err = s.XFan(); err != nil {
		return nil, err
	}
	if r.Swing, err = s.Swing(); err != nil {
		return nil, err
	}
	if r.Display, err = s.Display(); err != nil {
		return nil, err
	}
	if r.VaporPressureBar, err = s.VaporPressureBar(); err != nil {
		return nil, err
	}
	if r.VaporLineTempF, err = s.VaporLineTempF(); err != nil {
		return nil, err
	}
	if r.OutdoorCoilTempC, err = s.OutdoorCoilTempC(); err != nil {
		return nil, err
	}
	if r.LiquidLineTempF, err = s.LiquidLineTempF(); err != nil {
		return nil, err
	}
	if r.LiquidPressureKPa, err = s.LiquidPressureKPa(); err != nil {
		return nil, err
	}
	if r.IndoorCoilTempC, err = s.IndoorCoilTempC(); err != nil {
		return nil, err
	}
	if r.Operational, err = s.Operational(); err != nil {
		return nil, err
	}
	return r, nil
}
