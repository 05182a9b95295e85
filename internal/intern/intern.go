// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intern provides identity-comparable interned strings.
//
// The symbol table needs to compare names and versions cheaply and, in the
// case of a symbol's version, needs to detect whether two non-empty strings
// are the *same* string rather than merely equal. A *Name pointer gives us
// both: pointer equality is identity equality, and two Names are never
// distinct values with equal content.
package intern

import "sync"

// A Name is an interned string. The zero Name is not valid; obtain Names
// from Table.Intern (which also interns the empty string).
type Name struct {
	s string
}

// String returns the interned string's contents.
func (n *Name) String() string {
	if n == nil {
		return ""
	}
	return n.s
}

// Table interns strings to *Name values. The zero Table is ready to use.
// A Table is safe for concurrent use.
type Table struct {
	mu sync.RWMutex
	m  map[string]*Name
}

// Intern returns the canonical *Name for s. Two calls to Intern with equal
// strings return the identical *Name.
func (t *Table) Intern(s string) *Name {
	t.mu.RLock()
	n := t.m[s]
	t.mu.RUnlock()
	if n != nil {
		return n
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = make(map[string]*Name)
	}
	if n := t.m[s]; n != nil {
		return n
	}
	n = &Name{s}
	t.m[s] = n
	return n
}

// Lookup returns the existing interned *Name for s without creating a
// new one, for callers (like the CLI) that need to find a name a
// driver already interned rather than intern a fresh one.
func (t *Table) Lookup(s string) (*Name, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.m[s]
	return n, ok
}

// Same reports whether a and b are the same interned name (including both
// being nil).
func Same(a, b *Name) bool {
	return a == b
}
