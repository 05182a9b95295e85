// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/linksym/internal/diag"
	"github.com/spf13/cobra"
)

var flagStatsArch string

var statsCmd = &cobra.Command{
	Use:   "stats OBJECT...",
	Short: "Summarize the size distribution of the final resolved symbol table",
	Long:  "Links the given objects and reports mean/stddev/percentile statistics over the winning definitions' sizes, the size-command analogue a linker driver would offer.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&flagStatsArch, "arch", "amd64", "target architecture: amd64 or mips")
}

func runStats(cmd *cobra.Command, args []string) error {
	tgt, err := targetByName(flagStatsArch)
	if err != nil {
		return err
	}

	sink := &diag.RecordingSink{}
	res, err := linkObjects(args, tgt, sink)
	if err != nil {
		return err
	}
	defer res.Close()

	var sizes []float64
	for _, r := range res.table.Records() {
		if r.Size == 0 {
			continue
		}
		sizes = append(sizes, float64(r.Size))
	}
	if len(sizes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no sized symbols in the final table")
		return nil
	}

	sample := stats.Sample{Xs: sizes}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "symbols (sized): %d\n", len(sizes))
	fmt.Fprintf(w, "mean size:       %.1f bytes\n", sample.Mean())
	fmt.Fprintf(w, "stddev:          %.1f bytes\n", sample.StdDev())
	fmt.Fprintf(w, "median (p50):    %.1f bytes\n", sample.Percentile(0.5))
	fmt.Fprintf(w, "p90:             %.1f bytes\n", sample.Percentile(0.9))
	fmt.Fprintf(w, "max:             %.1f bytes\n", sample.Percentile(1.0))
	return nil
}
