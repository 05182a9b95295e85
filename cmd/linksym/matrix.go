// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/aclements/linksym/internal/symtab"
	"github.com/spf13/cobra"
)

var allFingerprints = [...]symtab.Fingerprint{
	symtab.DEF, symtab.WEAK_DEF, symtab.DYN_DEF, symtab.DYN_WEAK_DEF,
	symtab.UNDEF, symtab.WEAK_UNDEF, symtab.DYN_UNDEF, symtab.DYN_WEAK_UNDEF,
	symtab.COMMON, symtab.WEAK_COMMON, symtab.DYN_COMMON, symtab.DYN_WEAK_COMMON,
}

var (
	flagMatrixCurrent  string
	flagMatrixIncoming string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the 12x12 symbol resolution decision matrix",
	Long:  "Prints the decision matrix from spec §4.2, or with --current/--incoming, the decision for a single cell. A debugging aid for the matrix itself, not for any particular link.",
	RunE:  runMatrix,
}

func init() {
	matrixCmd.Flags().StringVar(&flagMatrixCurrent, "current", "", "only print the row for this fingerprint (e.g. WEAK_DEF)")
	matrixCmd.Flags().StringVar(&flagMatrixIncoming, "incoming", "", "only print the column for this fingerprint; requires --current")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	if flagMatrixIncoming != "" && flagMatrixCurrent == "" {
		return fmt.Errorf("--incoming requires --current")
	}

	w := cmd.OutOrStdout()

	if flagMatrixCurrent != "" {
		cur, err := parseFingerprint(flagMatrixCurrent)
		if err != nil {
			return err
		}
		if flagMatrixIncoming != "" {
			inc, err := parseFingerprint(flagMatrixIncoming)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, formatDecision(symtab.Decide(cur, inc)))
			return nil
		}
		printMatrixRow(w, cur)
		return nil
	}

	fmt.Fprintf(w, "%-16s", "")
	for _, inc := range allFingerprints {
		fmt.Fprintf(w, "%-16s", inc)
	}
	fmt.Fprintln(w)
	for _, cur := range allFingerprints {
		fmt.Fprintf(w, "%-16s", cur)
		printMatrixRow(w, cur)
	}
	return nil
}

func printMatrixRow(w io.Writer, cur symtab.Fingerprint) {
	for _, inc := range allFingerprints {
		fmt.Fprintf(w, "%-16s", formatDecision(symtab.Decide(cur, inc)))
	}
	fmt.Fprintln(w)
}

func formatDecision(d symtab.Decision) string {
	switch {
	case d.MultipleDefinition:
		return "E"
	case d.Override && d.AdjustCommonSize:
		return "CO"
	case d.Override:
		return "O"
	case d.AdjustCommonSize:
		return "C."
	default:
		return "."
	}
}

func parseFingerprint(s string) (symtab.Fingerprint, error) {
	for _, f := range allFingerprints {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown fingerprint %q", s)
}
