// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"debug/elf"
	"sort"

	"github.com/aclements/linksym/internal/diag"
	"github.com/aclements/linksym/internal/intern"
)

// nameVersion is the lookup key for the global table: a (name,
// version) pair. version may be nil (no version).
type nameVersion struct {
	name    *intern.Name
	version *intern.Name
}

// Table is the global symbol table: one Record per unique (name,
// version) pair observed across all input objects, plus the
// weak-alias ring relation described in spec §3.
//
// Table is not safe for concurrent use. Spec §5 requires the caller
// to serialize access to a table across whatever parallelism it uses
// to process input objects; Table itself holds no locks.
type Table struct {
	records map[nameVersion]*Record
	order   []*Record // insertion order, for deterministic listing

	// aliases maps a ring member to the next member in its ring.
	// A record absent from this map is unaliased (a ring of one).
	aliases map[*Record]*Record
}

// NewTable returns an empty global symbol table.
func NewTable() *Table {
	return &Table{
		records: make(map[nameVersion]*Record),
		aliases: make(map[*Record]*Record),
	}
}

// Lookup returns the existing record for (name, version), if any.
// This is the external "lookup" step of the control flow in spec §2;
// Table does not decide on its own whether a name is "new".
func (t *Table) Lookup(name, version *intern.Name) (*Record, bool) {
	r, ok := t.records[nameVersion{name, version}]
	return r, ok
}

// Insert creates and registers a new record for (name, version),
// populated directly from sym — the first sighting of this name needs
// no decision, per spec §2 ("if new, insert and stop"). version may
// be nil (unversioned); object must not be nil, since Insert asks it
// whether it is shared.
//
// Insert reports and coerces an invalid (STB_LOCAL or unrecognized)
// binding the same way Resolve does, since a table record's binding
// must always be GLOBAL or WEAK (spec §3 "Binding well-formedness").
func (t *Table) Insert(name, version *intern.Name, sym RawSym, object Object, sink diag.Sink) *Record {
	binding := sym.Binding
	switch binding {
	case elf.STB_GLOBAL, elf.STB_WEAK:
		// Valid.
	case elf.STB_LOCAL:
		sink.Error(diag.InvalidLocalBinding, object.Name(), name.String())
		binding = elf.STB_GLOBAL
	default:
		sink.Error(diag.UnsupportedBinding, object.Name(), int(binding), name.String())
		binding = elf.STB_GLOBAL
	}

	r := &Record{
		Name:       name,
		Version:    version,
		Source:     Source{Kind: SourceFromObject, Object: object, SectionIndex: sym.Shndx},
		Binding:    binding,
		Type:       sym.Type,
		Visibility: sym.Visibility,
		Nonvis:     sym.Nonvis,
		Value:      sym.Value,
		Size:       sym.Size,
	}
	if object.Shared() {
		r.InDyn = true
	} else {
		r.InReg = true
	}

	t.records[nameVersion{name, version}] = r
	t.order = append(t.order, r)
	return r
}

// Alias establishes a weak-alias ring edge from a to b: walking the
// ring from a will visit b next. Rings are established externally
// during initial insertion (spec §3) and must form a single cycle
// through all aliased names; Table does not validate that here, only
// records the edge.
func (t *Table) Alias(a, b *Record) {
	t.aliases[a] = b
}

// walkRing applies fn to start and then to every other member of
// start's alias ring, stopping as soon as the walk returns to start.
// Each member is visited exactly once. If start is unaliased, fn runs
// once.
func (t *Table) walkRing(start *Record, fn func(*Record)) {
	fn(start)
	cur := start
	for {
		next, ok := t.aliases[cur]
		if !ok || next == start {
			return
		}
		fn(next)
		cur = next
	}
}

// Records returns every record currently in the table, in the order
// their names were first inserted. The caller must not modify the
// returned slice's Records concurrently with further resolution.
func (t *Table) Records() []*Record {
	out := make([]*Record, len(t.order))
	copy(out, t.order)
	return out
}

// ByAddr returns the defined record whose value/size range contains
// addr, for post-link address lookup. It adapts the teacher's
// Table.Addr heuristic
// (github.com/aclements/objbrowse/internal/symtab) from a static,
// pre-sorted symbol slice to the live, still-mutable global table:
// records with no meaningful address (undefined, common, absolute,
// or TLS) are excluded, the rest are sorted by Value, and ties prefer a
// record with a nonzero Size.
func (t *Table) ByAddr(addr uint64) (*Record, bool) {
	var addrable []*Record
	for _, r := range t.order {
		if !hasAddr(r) {
			continue
		}
		addrable = append(addrable, r)
	}
	sort.Slice(addrable, func(i, j int) bool {
		if addrable[i].Value != addrable[j].Value {
			return addrable[i].Value < addrable[j].Value
		}
		return addrable[i].Name.String() < addrable[j].Name.String()
	})

	i := sort.Search(len(addrable), func(i int) bool {
		return addr < addrable[i].Value
	}) - 1
	if i < 0 {
		return nil, false
	}
	for i > 0 && addrable[i-1].Value == addrable[i].Value {
		i--
	}

	// Multiple records can share an address (aliases, or distinct
	// names for the same offset); scan the run starting at i,
	// which is sorted by Value so it ends as soon as Value grows
	// past addr.
	best, bestZeroSize := -1, -1
	for j, r := range addrable[i:] {
		if r.Value > addr {
			break
		}
		if best == -1 && addr < r.Value+r.Size {
			best = i + j
		}
		if bestZeroSize == -1 && r.Size == 0 {
			bestZeroSize = i + j
		}
	}
	switch {
	case best != -1:
		return addrable[best], true
	case bestZeroSize != -1 && bestZeroSize != len(addrable)-1:
		return addrable[bestZeroSize], true
	}
	return nil, false
}

func hasAddr(r *Record) bool {
	if r.Type == elf.STT_TLS {
		return false
	}
	if r.Source.Kind == SourceFromObject {
		switch r.Source.SectionIndex {
		case elf.SHN_UNDEF, elf.SHN_COMMON, elf.SHN_ABS:
			return false
		}
	}
	return true
}
