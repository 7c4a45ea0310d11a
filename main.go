// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Rio Marsh, Subcool Labs
//
// Manifold - Mr Cool / GREE UART protocol tool
//
// A CLI tool for monitoring, decoding and controlling GREE-style air
// handlers over their outdoor-unit UART link.

package main

import (
	"os"

	"github.com/subcoolabs/manifold/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
