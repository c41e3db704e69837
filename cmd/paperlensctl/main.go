// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Command paperlensctl inspects and maintains the profiles stored by a
// PaperLens server. It reads the same config.yaml and environment.
//
//	paperlensctl users
//	paperlensctl profile alice
//	paperlensctl similar alice --limit 5
//	paperlensctl erase alice --yes
package main

import (
	"fmt"
	"os"

	"github.com/tomtom215/paperlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "paperlensctl: %v\n", err)
		os.Exit(1)
	}
}
