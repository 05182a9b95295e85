// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/aclements/linksym/internal/diag"
	"github.com/aclements/linksym/internal/elfobj"
	"github.com/aclements/linksym/internal/intern"
	"github.com/aclements/linksym/internal/symtab"
	"github.com/aclements/linksym/internal/target"
)

// targetByName maps the --arch flag to a symtab.Target. Unlike a real
// linker, which infers the architecture from the first input object,
// this CLI takes it as an explicit flag so `resolve` and `stats` can
// be pointed at a hook-bearing target without needing a MIPS object
// file on hand.
func targetByName(name string) (*symtab.Target, error) {
	switch name {
	case "amd64", "":
		return target.AMD64, nil
	case "mips":
		return target.MIPS, nil
	default:
		return nil, fmt.Errorf("unknown --arch %q (want amd64 or mips)", name)
	}
}

// linkResult is the product of linking a set of objects: the final
// global table and the intern table that owns its names, so the
// driver can look symbols back up by name after the fact.
type linkResult struct {
	table   *symtab.Table
	interns *intern.Table
	objs    []*elfobj.Object
}

func (r *linkResult) Close() {
	for _, o := range r.objs {
		o.Close()
	}
}

// linkObjects opens each path in order and resolves its external
// symbols into a single global table, following the control flow of
// spec §2: lookup (here, Table.Lookup) -> if new, insert and stop;
// otherwise call Resolve.
func linkObjects(paths []string, tgt *symtab.Target, sink diag.Sink) (*linkResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input objects given")
	}

	res := &linkResult{
		table:   symtab.NewTable(),
		interns: &intern.Table{},
	}

	for _, path := range paths {
		obj, err := elfobj.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		res.objs = append(res.objs, obj)

		syms, err := obj.Symbols(sink)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}

		for _, s := range syms {
			name := res.interns.Intern(s.Name)
			var version *intern.Name
			if s.Version != "" {
				version = res.interns.Intern(s.Version)
			}

			if existing, ok := res.table.Lookup(name, version); ok {
				res.table.Resolve(tgt, existing, s.Raw, obj, version, sink)
			} else {
				res.table.Insert(name, version, s.Raw, obj, sink)
			}
		}
	}

	return res, nil
}
