// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"debug/elf"

	"github.com/aclements/linksym/internal/diag"
	"github.com/aclements/linksym/internal/intern"
)

// Hook is a target-defined resolution override (spec §4.5). When a
// Target provides one, Table.Resolve forwards the call unchanged and
// performs no further generic-path work: the hook owns the entire
// decision.
type Hook interface {
	Resolve(t *Table, existing *Record, sym RawSym, object Object, version *intern.Name, sink diag.Sink)
}

// Target names an architecture and, optionally, its custom resolution
// Hook. A nil Hook means the generic decision matrix handles every
// resolution for this target, as it does for most architectures.
type Target struct {
	Name string
	Hook Hook
}

// HasResolve reports whether t supplies a custom Hook. A nil *Target
// behaves as if it had none, so callers that haven't picked a target
// yet still get the generic path.
func (t *Target) HasResolve() bool {
	return t != nil && t.Hook != nil
}

// Resolve is the core entry point (spec §6): existing already has a
// definition (the "new symbol" case is handled by the caller via
// Table.Insert, never by Resolve). If target supplies a Hook, this
// delegates to it unchanged; otherwise it runs the generic decision
// matrix.
func (t *Table) Resolve(target *Target, existing *Record, sym RawSym, object Object, version *intern.Name, sink diag.Sink) {
	if target.HasResolve() {
		target.Hook.Resolve(t, existing, sym, object, version, sink)
		return
	}
	t.ResolveGeneric(existing, sym, object, version, sink)
}

// ResolveGeneric runs the generic (target-independent) resolution
// path: fingerprint both sides, consult the decision matrix, and
// apply its verdict. Target hooks that only special-case a few
// situations call back into this for everything else (spec §4.5's
// note that "the hot path is the 12x12 match, not the dispatch").
func (t *Table) ResolveGeneric(existing *Record, sym RawSym, object Object, version *intern.Name, sink diag.Sink) {
	incoming := EncodeFingerprint(sink, object.Name(), existing.Name.String(), sym.Binding, sym.Shndx, sym.Type, object.Shared())
	current := existing.fingerprint()
	d := decide(current, incoming)

	// Supplemented feature (spec §9 FIXME, see SPEC_FULL.md §12):
	// warn, but never change the decision, when exactly one side
	// is STT_TLS. The diagnostic names whichever side actually
	// carries the TLS definition, not always the incoming one.
	if (existing.Type == elf.STT_TLS) != (sym.Type == elf.STT_TLS) {
		tlsObj, nonTLSObj := object.Name(), originName(existing)
		if existing.Type == elf.STT_TLS {
			tlsObj, nonTLSObj = originName(existing), object.Name()
		}
		sink.Warning(diag.TLSMismatch, tlsObj, existing.Name.String(), nonTLSObj)
	}

	if d.MultipleDefinition {
		sink.Error(diag.MultipleDefinition, object.Name(), existing.Name.String())
		sink.Error(diag.PreviousDefinition, originName(existing))
		return
	}

	if d.Override {
		t.override(existing, sym, object, version, d.AdjustCommonSize, sink)
		return
	}
	if d.AdjustCommonSize && sym.Size > existing.Size {
		existing.Size = sym.Size
	}
}

// setVersion applies spec §3's set-once rule: version may transition
// None -> Some(v) exactly once. A later attempt to set a *different*
// non-nil version is an internal invariant violation — the identity
// of the interned name is what's being compared, not its contents.
func setVersion(r *Record, version *intern.Name, sink diag.Sink) {
	if version == nil {
		return
	}
	if r.Version != nil {
		if r.Version != version {
			sink.Unreachable("version of %s set twice to different values (%q then %q)", r.Name.String(), r.Version.String(), version.String())
		}
		return
	}
	r.Version = version
}

// override is the override engine of spec §4.3: it field-for-field
// replaces existing (and every member of its alias ring) from sym,
// then the target Hook dispatcher returns to the caller.
func (t *Table) override(existing *Record, sym RawSym, object Object, version *intern.Name, adjustCommonSize bool, sink diag.Sink) {
	if existing.Source.Kind != SourceFromObject && existing.Source.Kind != SourceNone {
		sink.Unreachable("override: existing record for %s is not object-provided (source kind %d)", existing.Name.String(), existing.Source.Kind)
		return
	}

	apply := func(r *Record) {
		preSize := r.Size

		r.Source = Source{Kind: SourceFromObject, Object: object, SectionIndex: sym.Shndx}
		r.Type = sym.Type
		r.Binding = sym.Binding
		r.Visibility = sym.Visibility
		r.Nonvis = sym.Nonvis
		setVersion(r, version, sink)

		if object.Shared() {
			r.InDyn = true
		} else {
			r.InReg = true
		}

		r.Value = sym.Value
		r.Size = sym.Size
		if adjustCommonSize && preSize > r.Size {
			// Common-size monotonicity (spec §3): the pre-
			// override size survives the override if it was
			// larger than the incoming size.
			r.Size = preSize
		}
	}

	t.walkRing(existing, apply)
}

// ShouldOverrideWithSpecial re-runs the decision matrix as if a
// regular strong definition (DEF) were incoming against existing, per
// spec §4.4. It asserts the matrix does not also request a
// common-size adjustment, since a special symbol install has no
// "incoming size" to reconcile against.
func (t *Table) ShouldOverrideWithSpecial(existing *Record, sink diag.Sink) bool {
	d := decide(existing.fingerprint(), DEF)
	if d.AdjustCommonSize {
		sink.Unreachable("should_override_with_special: matrix requested common-size adjustment for %s", existing.Name.String())
		return false
	}
	return d.Override
}

// OverrideWithSpecial installs source's definition onto target and
// every member of target's alias ring, preserving target's identity
// (name, ring membership) per spec §4.4. source is itself a Record —
// typically one never inserted into any table, built by the driver to
// describe a linker-synthesized symbol like _GLOBAL_OFFSET_TABLE_.
func (t *Table) OverrideWithSpecial(target, source *Record, sink diag.Sink) {
	if source.IsForwarder || source.HasGotOffset || source.HasPltOffset || source.HasWarning || source.IsCopiedFromDynobj {
		sink.Unreachable("override_with_special: source %s violates special-symbol preconditions", source.Name.String())
		return
	}
	if source.IsTargetSpecial && !target.IsTargetSpecial {
		sink.Unreachable("override_with_special: source %s is target-special but target %s is not yet marked special", source.Name.String(), target.Name.String())
		return
	}

	apply := func(r *Record) {
		r.Source = source.Source
		setVersion(r, source.Version, sink)
		r.Type = source.Type
		r.Binding = source.Binding
		r.Visibility = source.Visibility
		r.Nonvis = source.Nonvis
		r.Value = source.Value
		r.Size = source.Size
		r.NeedsDynsymEntry = r.NeedsDynsymEntry || source.NeedsDynsymEntry
		r.NeedsDynsymValue = r.NeedsDynsymValue || source.NeedsDynsymValue
		r.InReg = true
	}

	t.walkRing(target, apply)
}
