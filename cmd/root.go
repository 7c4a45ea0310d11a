// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "manifold",
	Short: "Mr Cool / GREE UART monitor and control",
	Long: `Manifold - a CLI tool for monitoring and controlling Mr Cool Universal
(GREE-style) air handlers over the indoor unit's UART service header.

Polls the unit with query frames, decodes the 255-byte status responses
(refrigerant pressures, line and coil temperatures, setpoint and flags),
validates checksums and sensor ranges, infers the active refrigerant mode
from line temperatures, and builds 40-byte control frames for power,
setpoint and fan changes.

Connection modes:
  Serial:    --port /dev/serial0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the MANIFOLD_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "0.4.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "/dev/serial0", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
