// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/aclements/linksym/internal/symtab"
	"github.com/aclements/linksym/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetByName(t *testing.T) {
	amd64, err := targetByName("amd64")
	require.NoError(t, err)
	assert.Same(t, target.AMD64, amd64)

	def, err := targetByName("")
	require.NoError(t, err)
	assert.Same(t, target.AMD64, def)

	mips, err := targetByName("mips")
	require.NoError(t, err)
	assert.Same(t, target.MIPS, mips)

	_, err = targetByName("sparc")
	assert.Error(t, err)
}

func TestParseFingerprintRoundTrip(t *testing.T) {
	for _, f := range allFingerprints {
		got, err := parseFingerprint(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := parseFingerprint("NOT_A_FINGERPRINT")
	assert.Error(t, err)
}

func TestFormatDecision(t *testing.T) {
	assert.Equal(t, "E", formatDecision(symtab.Decision{MultipleDefinition: true}))
	assert.Equal(t, "O", formatDecision(symtab.Decision{Override: true}))
	assert.Equal(t, "C.", formatDecision(symtab.Decision{AdjustCommonSize: true}))
	assert.Equal(t, "CO", formatDecision(symtab.Decision{Override: true, AdjustCommonSize: true}))
	assert.Equal(t, ".", formatDecision(symtab.Decision{}))
}

func TestMatrixMatchesKnownCells(t *testing.T) {
	// A couple of cells spelled out directly in spec §4.2, to catch
	// transcription mistakes in the matrix literal.
	assert.Equal(t, "E", formatDecision(symtab.Decide(symtab.DEF, symtab.DEF)))
	assert.Equal(t, "O", formatDecision(symtab.Decide(symtab.WEAK_DEF, symtab.DEF)))
	assert.Equal(t, "C.", formatDecision(symtab.Decide(symtab.COMMON, symtab.COMMON)))
	assert.Equal(t, "CO", formatDecision(symtab.Decide(symtab.DYN_COMMON, symtab.COMMON)))
	assert.Equal(t, ".", formatDecision(symtab.Decide(symtab.UNDEF, symtab.UNDEF)))
}
