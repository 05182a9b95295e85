// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"debug/elf"
	"testing"

	"github.com/aclements/linksym/internal/diag"
	"github.com/aclements/linksym/internal/intern"
)

// testObj is a minimal Object for tests.
type testObj struct {
	name   string
	shared bool
}

func (o *testObj) Name() string { return o.name }
func (o *testObj) Shared() bool { return o.shared }

var (
	objA = &testObj{name: "a.o"}
	objB = &testObj{name: "b.o"}
	soC  = &testObj{name: "libc.so", shared: true}
)

func newTestTable() (*Table, *intern.Table) {
	return NewTable(), &intern.Table{}
}

func def(value, size uint64) RawSym {
	return RawSym{Binding: elf.STB_GLOBAL, Type: elf.STT_FUNC, Shndx: 1, Value: value, Size: size}
}

func weakDef(value, size uint64) RawSym {
	return RawSym{Binding: elf.STB_WEAK, Type: elf.STT_FUNC, Shndx: 1, Value: value, Size: size}
}

func undef() RawSym {
	return RawSym{Binding: elf.STB_GLOBAL, Type: elf.STT_NOTYPE, Shndx: elf.SHN_UNDEF}
}

func common(size uint64) RawSym {
	return RawSym{Binding: elf.STB_GLOBAL, Type: elf.STT_COMMON, Shndx: elf.SHN_COMMON, Size: size}
}

func tlsDef(value, size uint64) RawSym {
	return RawSym{Binding: elf.STB_GLOBAL, Type: elf.STT_TLS, Shndx: 1, Value: value, Size: size}
}

// Scenario 1: strong regular definition overrides a weak regular one.
func TestStrongOverridesWeak(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("foo")

	r := tab.Insert(name, nil, weakDef(0x100, 4), objA, sink)
	tab.ResolveGeneric(r, def(0x200, 8), objB, nil, sink)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
	if r.Source.Object != objB || r.Value != 0x200 || r.Size != 8 || r.Binding != elf.STB_GLOBAL {
		t.Fatalf("got %+v", r)
	}
}

// Scenario 2: two strong regular definitions is a multiple-definition
// error; the existing definition is kept.
func TestMultipleDefinitionError(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("bar")

	r := tab.Insert(name, nil, def(0x10, 4), objA, sink)
	tab.ResolveGeneric(r, def(0x20, 4), objB, nil, sink)

	if r.Source.Object != objA {
		t.Fatalf("existing definition should be kept, got source %v", r.Source.Object)
	}
	if len(sink.Diagnostics) != 2 {
		t.Fatalf("want 2 diagnostics, got %d: %v", len(sink.Diagnostics), sink.Diagnostics)
	}
	want0 := "error: b.o: multiple definition of bar"
	want1 := "error: a.o: previous definition here"
	if sink.Diagnostics[0].String() != want0 || sink.Diagnostics[1].String() != want1 {
		t.Fatalf("got %v", sink.Diagnostics)
	}
}

// Scenario 3: common-size reconciliation keeps the original carrier
// but bumps its size to the max of the two.
func TestCommonSizeReconciliation(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("buf")

	r := tab.Insert(name, nil, common(16), objA, sink)
	tab.ResolveGeneric(r, common(64), objB, nil, sink)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
	if r.Source.Object != objA {
		t.Fatalf("carrier should remain A, got %v", r.Source.Object)
	}
	if r.Size != 64 {
		t.Fatalf("want size 64, got %d", r.Size)
	}

	// Symmetric: a smaller incoming common never shrinks the size.
	tab.ResolveGeneric(r, common(8), objB, nil, sink)
	if r.Size != 64 {
		t.Fatalf("size should not shrink, got %d", r.Size)
	}
}

// Scenario 4: a regular strong definition shadows a dynamic one; both
// in_reg and in_dyn stick.
func TestRegularOverridesDynamic(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("printf")

	r := tab.Insert(name, nil, def(0, 0), soC, sink)
	if !r.InDyn || r.InReg {
		t.Fatalf("fresh dynamic insert: got InReg=%v InDyn=%v", r.InReg, r.InDyn)
	}

	tab.ResolveGeneric(r, def(0x1000, 32), objA, nil, sink)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
	if !r.InReg || !r.InDyn {
		t.Fatalf("want InReg and InDyn both true, got InReg=%v InDyn=%v", r.InReg, r.InDyn)
	}
	if r.Source.Object != objA {
		t.Fatalf("want source objA, got %v", r.Source.Object)
	}
}

// Scenario 5: overriding one member of a weak-alias ring propagates
// to every other member.
func TestAliasRingPropagation(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}

	x := tab.Insert(in.Intern("x"), nil, weakDef(0x10, 4), objA, sink)
	ux := tab.Insert(in.Intern("__x"), nil, weakDef(0x10, 4), objA, sink)
	tab.Alias(x, ux)
	tab.Alias(ux, x)

	tab.ResolveGeneric(x, def(0x40, 16), objB, nil, sink)

	for _, r := range []*Record{x, ux} {
		if r.Source.Object != objB || r.Value != 0x40 || r.Size != 16 || r.Type != elf.STT_FUNC {
			t.Fatalf("ring member %s not synchronized: %+v", r.Name.String(), r)
		}
	}
}

// Scenario 6: an undefined reference followed by a dynamic definition
// overrides, keeping in_reg sticky from the undef.
func TestUndefThenDynDef(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("sym")

	r := tab.Insert(name, nil, undef(), objA, sink)
	tab.ResolveGeneric(r, def(0x500, 4), soC, nil, sink)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
	if !r.InReg || !r.InDyn {
		t.Fatalf("want InReg and InDyn both true, got InReg=%v InDyn=%v", r.InReg, r.InDyn)
	}
	if r.Source.Object != soC {
		t.Fatalf("want source soC, got %v", r.Source.Object)
	}
}

func TestInvalidLocalBindingCoerced(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("local_leak")

	sym := def(0x10, 4)
	sym.Binding = elf.STB_LOCAL
	r := tab.Insert(name, nil, sym, objA, sink)

	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].Level != "error" {
		t.Fatalf("want one error diagnostic, got %v", sink.Diagnostics)
	}
	if r.Binding != elf.STB_GLOBAL {
		t.Fatalf("STB_LOCAL should be coerced to STB_GLOBAL, got %v", r.Binding)
	}
}

func TestResolveIdempotent(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("idem")

	// Two weak definitions never override one another (WEAK_DEF vs
	// WEAK_DEF is "keep"), so resolving the same pair repeatedly must
	// leave the record untouched and raise no diagnostics.
	r := tab.Insert(name, nil, weakDef(0x10, 4), objA, sink)
	tab.ResolveGeneric(r, weakDef(0x20, 8), objB, nil, sink)
	before := *r
	tab.ResolveGeneric(r, weakDef(0x20, 8), objB, nil, sink)
	if *r != before {
		t.Fatalf("re-resolving the same symbol changed the record: before=%+v after=%+v", before, *r)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}

func TestVersionSetOnce(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("versioned")
	v1 := in.Intern("GLIBC_2.2")
	v2 := in.Intern("GLIBC_2.3")

	// UNDEF -> DYN_DEF overrides, setting the version for the first time.
	r := tab.Insert(name, nil, undef(), objA, sink)
	tab.ResolveGeneric(r, def(0x10, 4), soC, v1, sink)
	if r.Version != v1 {
		t.Fatalf("version should be set to v1")
	}

	// DYN_DEF -> WEAK_DEF also overrides; re-resolving with the same
	// version is fine.
	tab.ResolveGeneric(r, weakDef(0x20, 4), objA, v1, sink)
	if r.Version != v1 {
		t.Fatalf("version should remain v1")
	}

	// WEAK_DEF -> DEF overrides again; a different non-nil version is
	// an internal invariant violation: RecordingSink.Unreachable panics.
	defer func() {
		if recover() == nil {
			t.Fatalf("want panic on conflicting version")
		}
	}()
	tab.ResolveGeneric(r, def(0x30, 4), objB, v2, sink)
}

func TestShouldOverrideWithSpecial(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}

	weak := tab.Insert(in.Intern("weak_sym"), nil, weakDef(0, 0), objA, sink)
	if !tab.ShouldOverrideWithSpecial(weak, sink) {
		t.Fatalf("a weak definition should be overridden by a special strong def")
	}

	strong := tab.Insert(in.Intern("strong_sym"), nil, def(0, 0), objA, sink)
	if tab.ShouldOverrideWithSpecial(strong, sink) {
		t.Fatalf("a strong definition should not be overridden by a special strong def")
	}
}

func TestOverrideWithSpecialPropagatesRing(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}

	got := tab.Insert(in.Intern("_GLOBAL_OFFSET_TABLE_"), nil, weakDef(0, 0), objA, sink)
	gotAlias := tab.Insert(in.Intern("_GOT_"), nil, weakDef(0, 0), objA, sink)
	tab.Alias(got, gotAlias)
	tab.Alias(gotAlias, got)

	special := &Record{
		Name:   in.Intern("_GLOBAL_OFFSET_TABLE_"),
		Source: Source{Kind: SourceInOutputData},
		Type:   elf.STT_OBJECT,
		Binding: elf.STB_GLOBAL,
		Value:  0x4000,
		Size:   8,
	}
	tab.OverrideWithSpecial(got, special, sink)

	for _, r := range []*Record{got, gotAlias} {
		if r.Source.Kind != SourceInOutputData || r.Value != 0x4000 || r.Size != 8 || !r.InReg {
			t.Fatalf("special override not propagated to %s: %+v", r.Name.String(), r)
		}
	}
}

func TestUnaliasedRingTouchesOneRecord(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}

	r := tab.Insert(in.Intern("solo"), nil, weakDef(0, 0), objA, sink)
	other := tab.Insert(in.Intern("other"), nil, weakDef(0, 0), objA, sink)

	tab.ResolveGeneric(r, def(0x10, 4), objB, nil, sink)

	if other.Source.Object != objA {
		t.Fatalf("override on an unaliased record should not touch unrelated records")
	}
}

// The TLS-mismatch warning (spec §9 FIXME, see SPEC_FULL.md §12) must
// name whichever side actually carries the TLS definition, not
// whichever side happens to be incoming.
func TestTLSMismatchWarningIncomingTLS(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("errno")

	r := tab.Insert(name, nil, def(0x10, 4), objA, sink)
	tab.ResolveGeneric(r, tlsDef(0x20, 4), objB, nil, sink)

	if len(sink.Diagnostics) == 0 || sink.Diagnostics[0].Level != "warning" {
		t.Fatalf("want a warning diagnostic first, got %v", sink.Diagnostics)
	}
	want := "warning: b.o: TLS definition of errno mismatches non-TLS definition in a.o"
	if sink.Diagnostics[0].String() != want {
		t.Fatalf("got %q, want %q", sink.Diagnostics[0].String(), want)
	}
}

func TestTLSMismatchWarningExistingTLS(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("errno")

	r := tab.Insert(name, nil, tlsDef(0x10, 4), objA, sink)
	tab.ResolveGeneric(r, def(0x20, 4), objB, nil, sink)

	if len(sink.Diagnostics) == 0 || sink.Diagnostics[0].Level != "warning" {
		t.Fatalf("want a warning diagnostic first, got %v", sink.Diagnostics)
	}
	want := "warning: a.o: TLS definition of errno mismatches non-TLS definition in b.o"
	if sink.Diagnostics[0].String() != want {
		t.Fatalf("got %q, want %q", sink.Diagnostics[0].String(), want)
	}
}

func TestNoTLSMismatchWarningWhenBothSidesAgree(t *testing.T) {
	tab, in := newTestTable()
	sink := &diag.RecordingSink{}
	name := in.Intern("both_tls")

	r := tab.Insert(name, nil, tlsDef(0x10, 4), objA, sink)
	tab.ResolveGeneric(r, tlsDef(0x20, 4), objB, nil, sink)

	for _, d := range sink.Diagnostics {
		if d.Level == "warning" {
			t.Fatalf("unexpected warning for agreeing TLS sides: %v", sink.Diagnostics)
		}
	}
}

func TestDecideIsTotalAndPure(t *testing.T) {
	for cur := Fingerprint(0); cur < 12; cur++ {
		for inc := Fingerprint(0); inc < 12; inc++ {
			d1 := decide(cur, inc)
			d2 := decide(cur, inc)
			if d1 != d2 {
				t.Fatalf("decide(%v, %v) is not pure: %+v != %+v", cur, inc, d1, d2)
			}
		}
	}
}
