// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"

	"github.com/aclements/linksym/internal/diag"
	"github.com/aclements/linksym/internal/symtab"
	"github.com/spf13/cobra"
	"golang.org/x/arch/x86/x86asm"
)

var (
	flagArch    string
	flagList    bool
	flagDisasm  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve OBJECT...",
	Short: "Link the global symbol tables of a set of ELF objects",
	Long:  "Resolves every external symbol across the given ELF relocatable and shared objects, printing deferred diagnostics (multiple definitions, invalid bindings) the way a linker's symbol resolution pass would.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&flagArch, "arch", "amd64", "target architecture: amd64 or mips")
	resolveCmd.Flags().BoolVar(&flagList, "list", false, "print the final symbol table after resolution")
	resolveCmd.Flags().StringVar(&flagDisasm, "disasm", "", "decode the first instruction at the winning definition of this symbol (amd64 only)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	tgt, err := targetByName(flagArch)
	if err != nil {
		return err
	}

	sink := &diag.RecordingSink{}
	res, err := linkObjects(args, tgt, sink)
	if err != nil {
		return err
	}
	defer res.Close()

	for _, d := range sink.Diagnostics {
		fmt.Fprintln(cmd.OutOrStdout(), d.String())
	}
	if sink.HasErrors() {
		errorHandled = true
	}

	if flagList {
		printTable(cmd, res)
	}

	if flagDisasm != "" {
		if err := disasmSymbol(cmd, res, flagDisasm); err != nil {
			return err
		}
	}

	if sink.HasErrors() {
		return fmt.Errorf("symbol resolution failed")
	}
	return nil
}

func printTable(cmd *cobra.Command, res *linkResult) {
	records := res.table.Records()
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name.String() < records[j].Name.String()
	})
	w := cmd.OutOrStdout()
	for _, r := range records {
		origin := "command line"
		if r.Source.Object != nil {
			origin = r.Source.Object.Name()
		}
		fmt.Fprintf(w, "%-32s %#08x %8d %-8s %-6s %s\n",
			r.Name.String(), r.Value, r.Size, r.Binding, r.Type, origin)
	}
}

func disasmSymbol(cmd *cobra.Command, res *linkResult, name string) error {
	interned, ok := res.interns.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown symbol %q", name)
	}
	record, ok := res.table.Lookup(interned, nil)
	if !ok {
		return fmt.Errorf("unknown symbol %q", name)
	}
	if record.Source.Kind != symtab.SourceFromObject || record.Source.Object == nil {
		return fmt.Errorf("symbol %q has no object-backed definition to disassemble", name)
	}

	obj, ok := record.Source.Object.(interface {
		DataAt(addr uint64, size int) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("symbol %q's object does not support reading code bytes", name)
	}

	code, err := obj.DataAt(record.Value, 16)
	if err != nil {
		return err
	}

	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return fmt.Errorf("decoding instruction at %s+0: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, x86asm.GNUSyntax(inst, record.Value, nil))
	return nil
}
