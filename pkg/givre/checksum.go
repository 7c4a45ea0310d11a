// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package givre

// Checksum computes the additive frame checksum: the sum of every byte
// after the two marker bytes, modulo 256. The input is the frame without
// its trailing checksum byte. For the 5-byte query this yields
// Checksum([7E 7E 02 02]) = 0x04, matching the device's own framing.
func Checksum(frame []byte) byte {
	if len(frame) <= 2 {
		return 0
	}
	var sum byte
	for _, b := range frame[2:] {
		sum += b
	}
	return sum
}

// VerifyFrame recomputes the checksum over a complete frame and compares
// it against the trailing byte.
func VerifyFrame(frame []byte) bool {
	if len(frame) < headerSize {
		return false
	}
	return Checksum(frame[:len(frame)-1]) == frame[len(frame)-1]
}
