// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

// Decision is the outcome of the decision matrix for one (current,
// incoming) fingerprint pair.
type Decision struct {
	// Override indicates the incoming definition should replace
	// the current one.
	Override bool
	// AdjustCommonSize indicates the winning record's Size should
	// become max(current.Size, incoming.Size) regardless of which
	// side won.
	AdjustCommonSize bool
	// MultipleDefinition indicates both sides are strong regular
	// definitions: a user error. The current definition is kept.
	MultipleDefinition bool
}

// keep, override, adjustCommonSize and overrideAndAdjust spell out
// the matrix legend (·, O, C·, CO) so the table below reads the same
// shape as spec §4.2.
var (
	keep              = Decision{}
	override          = Decision{Override: true}
	adjustCommonSize  = Decision{AdjustCommonSize: true}
	overrideAndAdjust = Decision{Override: true, AdjustCommonSize: true}
	multipleDefErr    = Decision{MultipleDefinition: true}
)

// matrix[current][incoming] is the full 144-cell decision table from
// spec §4.2. Row and column order matches the Fingerprint const
// block: DEF, WEAK_DEF, DYN_DEF, DYN_WEAK_DEF, UNDEF, WEAK_UNDEF,
// DYN_UNDEF, DYN_WEAK_UNDEF, COMMON, WEAK_COMMON, DYN_COMMON,
// DYN_WEAK_COMMON.
var matrix = [12][12]Decision{
	DEF: {
		DEF: multipleDefErr, WEAK_DEF: keep, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: keep, WEAK_COMMON: keep, DYN_COMMON: keep, DYN_WEAK_COMMON: keep,
	},
	WEAK_DEF: {
		DEF: override, WEAK_DEF: keep, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: keep, DYN_COMMON: keep, DYN_WEAK_COMMON: keep,
	},
	DYN_DEF: {
		DEF: override, WEAK_DEF: override, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: keep, DYN_COMMON: keep, DYN_WEAK_COMMON: keep,
	},
	DYN_WEAK_DEF: {
		DEF: override, WEAK_DEF: override, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: keep, DYN_COMMON: keep, DYN_WEAK_COMMON: keep,
	},
	UNDEF: {
		DEF: override, WEAK_DEF: override, DYN_DEF: override, DYN_WEAK_DEF: override,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: override, DYN_COMMON: override, DYN_WEAK_COMMON: override,
	},
	WEAK_UNDEF: {
		DEF: override, WEAK_DEF: override, DYN_DEF: override, DYN_WEAK_DEF: override,
		UNDEF: override, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: override, DYN_COMMON: override, DYN_WEAK_COMMON: override,
	},
	DYN_UNDEF: {
		DEF: override, WEAK_DEF: override, DYN_DEF: override, DYN_WEAK_DEF: override,
		UNDEF: override, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: override, DYN_COMMON: override, DYN_WEAK_COMMON: override,
	},
	DYN_WEAK_UNDEF: {
		DEF: override, WEAK_DEF: override, DYN_DEF: override, DYN_WEAK_DEF: override,
		UNDEF: override, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: override, DYN_COMMON: override, DYN_WEAK_COMMON: override,
	},
	COMMON: {
		DEF: override, WEAK_DEF: keep, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: adjustCommonSize, WEAK_COMMON: keep, DYN_COMMON: adjustCommonSize, DYN_WEAK_COMMON: adjustCommonSize,
	},
	WEAK_COMMON: {
		DEF: override, WEAK_DEF: keep, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: override, WEAK_COMMON: adjustCommonSize, DYN_COMMON: adjustCommonSize, DYN_WEAK_COMMON: adjustCommonSize,
	},
	DYN_COMMON: {
		DEF: override, WEAK_DEF: override, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: overrideAndAdjust, WEAK_COMMON: keep, DYN_COMMON: adjustCommonSize, DYN_WEAK_COMMON: adjustCommonSize,
	},
	DYN_WEAK_COMMON: {
		DEF: override, WEAK_DEF: override, DYN_DEF: keep, DYN_WEAK_DEF: keep,
		UNDEF: keep, WEAK_UNDEF: keep, DYN_UNDEF: keep, DYN_WEAK_UNDEF: keep,
		COMMON: overrideAndAdjust, WEAK_COMMON: keep, DYN_COMMON: adjustCommonSize, DYN_WEAK_COMMON: adjustCommonSize,
	},
}

// decide is the pure decision function of spec §4.2: given the
// current and incoming fingerprints, it returns whether to override
// and whether to adjust the common size. It is total over all 144
// legal fingerprint pairs.
func decide(current, incoming Fingerprint) Decision {
	return matrix[current][incoming]
}

// Decide exports decide for diagnostic tooling (e.g. `linksym
// matrix`) that wants to query or print the decision matrix without
// driving an actual resolution.
func Decide(current, incoming Fingerprint) Decision {
	return decide(current, incoming)
}
