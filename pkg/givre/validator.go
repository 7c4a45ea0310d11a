// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import "fmt"

// AnomalyType classifies a telemetry validation finding.
type AnomalyType int

const (
	AnomalyPressure AnomalyType = iota
	AnomalyTemperature
	AnomalySetpoint
	AnomalyFan
	AnomalyMode
	AnomalyOperational
)

func (a AnomalyType) String() string {
	switch a {
	case AnomalyPressure:
		return "pressure out of range"
	case AnomalyTemperature:
		return "temperature out of range"
	case AnomalySetpoint:
		return "setpoint out of range"
	case AnomalyFan:
		return "fan speed out of range"
	case AnomalyMode:
		return "unknown mode"
	case AnomalyOperational:
		return "not operational"
	default:
		return "unknown anomaly"
	}
}

// ValidationError describes one implausible reading. Validation is
// advisory: a frame with anomalies still decoded correctly at the wire
// level, its numbers just fail a sanity check.
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func rangeAnomaly(t AnomalyType, name string, value, min, max float64) ValidationError {
	return ValidationError{
		Type:    t,
		Message: fmt.Sprintf("%s %.2f outside %.2f..%.2f", name, value, min, max),
		Details: map[string]interface{}{
			"field": name,
			"value": value,
			"min":   min,
			"max":   max,
		},
	}
}

func checkRange(errs []ValidationError, t AnomalyType, name string, value, min, max float64) []ValidationError {
	if value < min || value > max {
		errs = append(errs, rangeAnomaly(t, name, value, min, max))
	}
	return errs
}

// ValidateReport sanity-checks a decoded report against physically
// plausible ranges for an R-410A split system. An empty slice means the
// report passed.
func ValidateReport(r *StatusReport) []ValidationError {
	var errs []ValidationError

	errs = checkRange(errs, AnomalyPressure, "vapor pressure bar", r.VaporPressureBar, 0, 50)
	errs = checkRange(errs, AnomalyPressure, "liquid pressure kPa", r.LiquidPressureKPa, 0, 5000)
	errs = checkRange(errs, AnomalyTemperature, "vapor line °F", r.VaporLineTempF, -40, 200)
	errs = checkRange(errs, AnomalyTemperature, "liquid line °F", r.LiquidLineTempF, -40, 200)
	errs = checkRange(errs, AnomalyTemperature, "outdoor coil °C", r.OutdoorCoilTempC, -40, 80)
	errs = checkRange(errs, AnomalyTemperature, "indoor coil °C", r.IndoorCoilTempC, -40, 80)
	errs = checkRange(errs, AnomalySetpoint, "setpoint °C", r.SetpointC, SetpointMinC, SetpointMaxC+0.5)

	if r.FanSpeed > FanSpeedMax {
		errs = append(errs, ValidationError{
			Type:    AnomalyFan,
			Message: fmt.Sprintf("fan speed %d exceeds maximum %d", r.FanSpeed, FanSpeedMax),
			Details: map[string]interface{}{"value": r.FanSpeed, "max": FanSpeedMax},
		})
	}
	if r.Mode > ModeHeat {
		errs = append(errs, ValidationError{
			Type:    AnomalyMode,
			Message: fmt.Sprintf("mode bits decode to %d, outside the known enum", r.Mode),
			Details: map[string]interface{}{"value": int(r.Mode)},
		})
	}
	if r.Power && r.Operational < operationalFloor {
		errs = append(errs, ValidationError{
			Type:    AnomalyOperational,
			Message: fmt.Sprintf("powered on but operational value %.0f is below %d", r.Operational, operationalFloor),
			Details: map[string]interface{}{"value": r.Operational, "min": operationalFloor},
		})
	}

	return errs
}

// ValidateStatus decodes a frame and sanity-checks it in one step. The
// error return covers decode failures; the slice covers plausibility.
func ValidateStatus(s *StatusFrame) ([]ValidationError, error) {
	r, err := s.Report()
	if err != nil {
		return nil, err
	}
	return ValidateReport(r), nil
}
