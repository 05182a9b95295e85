// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"debug/elf"

	"github.com/aclements/linksym/internal/diag"
)

// Fingerprint is the 4-bit (binding x origin x kind) descriptor the
// decision matrix is indexed by. The low bit is the weakness bit, the
// next bit is the origin bit, and the top two bits are the kind.
type Fingerprint uint8

// The 12 legal fingerprints, in the same row/column order as the
// decision matrix.
const (
	DEF Fingerprint = iota
	WEAK_DEF
	DYN_DEF
	DYN_WEAK_DEF
	UNDEF
	WEAK_UNDEF
	DYN_UNDEF
	DYN_WEAK_UNDEF
	COMMON
	WEAK_COMMON
	DYN_COMMON
	DYN_WEAK_COMMON
)

var fingerprintNames = [...]string{
	DEF: "DEF", WEAK_DEF: "WEAK_DEF", DYN_DEF: "DYN_DEF", DYN_WEAK_DEF: "DYN_WEAK_DEF",
	UNDEF: "UNDEF", WEAK_UNDEF: "WEAK_UNDEF", DYN_UNDEF: "DYN_UNDEF", DYN_WEAK_UNDEF: "DYN_WEAK_UNDEF",
	COMMON: "COMMON", WEAK_COMMON: "WEAK_COMMON", DYN_COMMON: "DYN_COMMON", DYN_WEAK_COMMON: "DYN_WEAK_COMMON",
}

func (f Fingerprint) String() string {
	if int(f) < len(fingerprintNames) {
		return fingerprintNames[f]
	}
	return "INVALID"
}

// RawSym is the subset of an ELF Elf32_Sym/Elf64_Sym the fingerprint
// encoder and override engine consume, already decoded to Go types by
// the caller (internal/elfobj). It is bit-exact with the source ELF
// fields named in spec §6: st_info (Binding, Type), st_other
// (Visibility, Nonvis), st_shndx (Shndx), st_value (Value), st_size
// (Size).
type RawSym struct {
	Binding    elf.SymBind
	Type       elf.SymType
	Visibility elf.SymVis
	Nonvis     uint8
	Shndx      elf.SectionIndex
	Value      uint64
	Size       uint64
}

// EncodeFingerprint derives the 4-bit fingerprint of an incoming ELF
// symbol. objName and symName are used only to format diagnostics
// when the binding is invalid; sink receives those diagnostics.
//
// An STB_LOCAL or otherwise unrecognized binding is reported through
// sink and coerced to STB_GLOBAL (weak bit 0) so the caller can keep
// processing, per spec §4.1.
func EncodeFingerprint(sink diag.Sink, objName, symName string, binding elf.SymBind, shndx elf.SectionIndex, typ elf.SymType, dynamic bool) Fingerprint {
	var weak uint8
	switch binding {
	case elf.STB_GLOBAL:
		weak = 0
	case elf.STB_WEAK:
		weak = 1
	case elf.STB_LOCAL:
		sink.Error(diag.InvalidLocalBinding, objName, symName)
	default:
		sink.Error(diag.UnsupportedBinding, objName, int(binding), symName)
	}

	var origin uint8
	if dynamic {
		origin = 1
	}

	var kind uint8
	switch {
	case shndx == elf.SHN_UNDEF:
		kind = 1
	case shndx == elf.SHN_COMMON || typ == elf.STT_COMMON:
		kind = 2
	}

	return Fingerprint(kind*4 + origin*2 + weak)
}
