// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command linksym is a CLI driver that exercises the symbol
// resolution core (internal/symtab) against real ELF
// relocatable/shared objects on disk. The core itself owns no CLI, no
// I/O, and no process state (spec §6); everything here is the driver
// that feeds it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errorHandled marks that a subcommand already printed its own error
// (e.g. deferred link diagnostics), so main shouldn't print the
// generic "Error: …" line on top of it.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "linksym",
	Short:         "Exercise the ELF symbol resolution core",
	Long:          "linksym links the global symbol tables of a set of ELF relocatable and shared objects, reporting the resolution decisions the way a linker's symbol resolution pass would.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(statsCmd)
}
