// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame counts and error rates on a line
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	ChecksumErrors  uint64
	FramingErrors   uint64
	AnomalousValues uint64

	StatusFrames  uint64
	QueryFrames   uint64
	ControlFrames uint64

	PressureAnomalies    uint64
	TemperatureAnomalies uint64
	SetpointAnomalies    uint64
	FanAnomalies         uint64
	ModeAnomalies        uint64
	NotOperational       uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics from one decode attempt. The frame may be nil
// when decodeErr is set; validation findings only apply to status frames.
func (s *Statistics) Update(frame *RawFrame, decodeErr error, validationErrors []ValidationError) {
	s.TotalFrames++

	if decodeErr != nil {
		var fe *FrameError
		if errors.As(decodeErr, &fe) && fe.Kind == FrameChecksumMismatch {
			s.ChecksumErrors++
		} else {
			s.FramingErrors++
		}
		return
	}

	if frame != nil {
		switch frame.Type() {
		case FrameStatus:
			s.StatusFrames++
		case FrameQuery:
			s.QueryFrames++
		case FrameControl:
			s.ControlFrames++
		}
	}

	if len(validationErrors) > 0 {
		for _, err := range validationErrors {
			switch err.Type {
			case AnomalyPressure:
				s.PressureAnomalies++
			case AnomalyTemperature:
				s.TemperatureAnomalies++
			case AnomalySetpoint:
				s.SetpointAnomalies++
			case AnomalyFan:
				s.FanAnomalies++
			case AnomalyMode:
				s.ModeAnomalies++
			case AnomalyOperational:
				s.NotOperational++
			}
			s.AnomalousValues++
		}
	} else {
		s.ValidFrames++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		errorCount := s.ChecksumErrors + s.FramingErrors + s.AnomalousValues
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, checksumPercent, framingPercent, anomalousPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		checksumPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.TotalFrames)
		framingPercent = float64(s.FramingErrors) * 100.0 / float64(s.TotalFrames)
		anomalousPercent = float64(s.AnomalousValues) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.StatusFrames > 0 || s.QueryFrames > 0 || s.ControlFrames > 0 {
		result += fmt.Sprintf("  Status:           %5d\n", s.StatusFrames)
		if s.QueryFrames > 0 {
			result += fmt.Sprintf("  Query:            %5d\n", s.QueryFrames)
		}
		if s.ControlFrames > 0 {
			result += fmt.Sprintf("  Control:          %5d\n", s.ControlFrames)
		}
	}
	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, checksumPercent)
	}
	if s.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d (%.1f%%)\n", s.FramingErrors, framingPercent)
	}
	if s.AnomalousValues > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, anomalousPercent)
		if s.PressureAnomalies > 0 {
			result += fmt.Sprintf("  Pressure:         %5d\n", s.PressureAnomalies)
		}
		if s.TemperatureAnomalies > 0 {
			result += fmt.Sprintf("  Temperature:      %5d\n", s.TemperatureAnomalies)
		}
		if s.SetpointAnomalies > 0 {
			result += fmt.Sprintf("  Setpoint:         %5d\n", s.SetpointAnomalies)
		}
		if s.FanAnomalies > 0 {
			result += fmt.Sprintf("  Fan Speed:        %5d\n", s.FanAnomalies)
		}
		if s.ModeAnomalies > 0 {
			result += fmt.Sprintf("  Mode:             %5d\n", s.ModeAnomalies)
		}
		if s.NotOperational > 0 {
			result += fmt.Sprintf("  Not Operational:  %5d\n", s.NotOperational)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}
