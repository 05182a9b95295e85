// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symtab implements the global symbol table and the symbol
// resolution core of a static ELF linker: the decision of which
// definition of a duplicated global symbol wins when multiple input
// objects define the same name.
package symtab

import (
	"debug/elf"

	"github.com/aclements/linksym/internal/intern"
)

// Object is the minimal view the resolution core needs of an input
// ELF object: enough to attribute a definition and tell regular
// objects from shared ones. ELF parsing itself lives outside this
// package (internal/elfobj implements Object).
type Object interface {
	// Name identifies the object in diagnostics, e.g. a file path
	// or "libc.so.6".
	Name() string

	// Shared reports whether this object is a dynamic (ET_DYN)
	// input rather than a regular relocatable one.
	Shared() bool
}

// SourceKind tags the origin of a Record's definition.
type SourceKind uint8

const (
	// SourceNone is the zero value. Table.Insert never produces it
	// (inserted records are SourceFromObject), and fingerprint
	// classifies it as a regular definition.
	SourceNone SourceKind = iota
	// SourceFromObject means the definition comes from an input
	// object's symbol table entry.
	SourceFromObject
	// SourceInOutputData means the linker placed this symbol
	// directly in output data it synthesized.
	SourceInOutputData
	// SourceInOutputSegment means the symbol marks a point in an
	// output segment (e.g. a section-boundary symbol).
	SourceInOutputSegment
	// SourceConstant means the symbol's value is a linker-chosen
	// constant with no backing storage.
	SourceConstant
)

// Source records where a Record's current definition comes from.
type Source struct {
	Kind SourceKind

	// Object and SectionIndex are valid only when Kind ==
	// SourceFromObject.
	Object       Object
	SectionIndex elf.SectionIndex
}

// Record is the mutable per-(name, version) entry in the global
// symbol table. Its fields are rewritten only through Table.Resolve
// and Table.OverrideWithSpecial; see the package-level invariants
// documented on those functions.
type Record struct {
	Name *intern.Name

	// Version is nil until the first non-empty version is
	// observed, after which it is set-once: resolving a different
	// non-empty version against it is an internal invariant
	// violation.
	Version *intern.Name

	Source Source

	Binding    elf.SymBind
	Type       elf.SymType
	Visibility elf.SymVis
	Nonvis     uint8

	Value   uint64
	Size    uint64

	// InReg and InDyn are sticky: once true, Resolve never clears
	// them, even if a later definition comes from the other kind
	// of object.
	InReg bool
	InDyn bool

	// NeedsDynsymEntry and NeedsDynsymValue are sticky booleans set
	// by OverrideWithSpecial via logical OR.
	NeedsDynsymEntry bool
	NeedsDynsymValue bool

	// IsTargetSpecial marks a record as a linker-synthesized
	// special symbol (e.g. _GLOBAL_OFFSET_TABLE_).
	IsTargetSpecial bool
	// IsForwarder marks a record that forwards to another name
	// (e.g. a versioned alias).
	IsForwarder bool
	// HasGotOffset and HasPltOffset record whether the layout
	// phase has already assigned this symbol a GOT/PLT slot.
	HasGotOffset bool
	HasPltOffset bool
	// HasWarning marks a record that the driver should print a
	// user warning about when referenced (e.g. a deprecated libc
	// symbol).
	HasWarning bool
	// IsCopiedFromDynobj marks a symbol materialized by a copy
	// relocation from a shared object.
	IsCopiedFromDynobj bool
}

// originName returns the diagnostic-facing name for where r's current
// definition comes from: the defining object's name, or "command
// line" for linker-internal sources, per the stable wording in
// package diag.
func originName(r *Record) string {
	if r.Source.Kind == SourceFromObject && r.Source.Object != nil {
		return r.Source.Object.Name()
	}
	return "command line"
}

// fingerprint computes r's current decision-matrix fingerprint from
// its own fields. Unlike EncodeFingerprint, this never reports a
// diagnostic: a record already in the table has already had its
// binding validated (and, if necessary, coerced) on the resolution
// that put it there.
func (r *Record) fingerprint() Fingerprint {
	var weak uint8
	if r.Binding == elf.STB_WEAK {
		weak = 1
	}

	var origin, kind uint8
	if r.Source.Kind == SourceFromObject {
		if r.Source.Object != nil && r.Source.Object.Shared() {
			origin = 1
		}
		switch {
		case r.Source.SectionIndex == elf.SHN_UNDEF:
			kind = 1
		case r.Source.SectionIndex == elf.SHN_COMMON || r.Type == elf.STT_COMMON:
			kind = 2
		}
	}
	// SourceNone (the zero value) and the
	// special-symbol sources (SourceInOutputData,
	// SourceInOutputSegment, SourceConstant) are all regular,
	// non-common, non-undefined definitions for fingerprint
	// purposes: kind = 0, origin = 0.

	return Fingerprint(kind*4 + origin*2 + weak)
}
