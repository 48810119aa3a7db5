// Copyright © 2024 The ELPS authors

package elpstest

import (
	"testing"

	"github.com/luthersystems/daniel/lisp"
	"github.com/stretchr/testify/assert"
)

// AssertOrderedMap runs tests to ensure that m satisfies the constraints
// required of maps.  The following properties are tested by
// AssertOrderedMap:
//
//		m.Keys, m.Values and m.Entries produce slices with length m.Len()
//
//		Repeated calls to m.Entries() return equal entries in the same order
//
//		The slices returned by m.Keys(), m.Values() and m.Entries() have
//		consistent elements and order.
//
//		Calling m.Get() with a key from m.Entries() returns a value consistent
//		with that entry.
//
// When keys is not empty AssertOrderedMap also checks that m.Keys() returns
// exactly keys, in order.
func AssertOrderedMap(t *testing.T, m *lisp.MapData, keys ...*lisp.LVal) bool {
	t.Helper()
	ents := m.Entries()
	if !assert.Len(t, ents, m.Len(), "Entries has an invalid length") {
		return false
	}
	for i := 0; i < 3; i++ {
		again := m.Entries()
		if !assert.Equal(t, len(ents), len(again)) {
			return false
		}
		for j := range ents {
			if !assert.True(t, ents[j].Equal(again[j]), "Entries not fixed at index %d -- expected: %v got: %v", j, ents[j], again[j]) {
				return false
			}
		}
	}
	mkeys, mvals := m.Keys(), m.Values()
	if !assert.Len(t, mkeys, m.Len(), "Keys has an invalid length") {
		return false
	}
	if !assert.Len(t, mvals, m.Len(), "Values has an invalid length") {
		return false
	}
	for i, ent := range ents {
		if !assert.Equal(t, lisp.LCons, ent.Type, "Entries index %d is not a pair: %v", i, ent) {
			return false
		}
		key, val := ent.Cells[0], ent.Cells[1]
		if !assert.True(t, key.Equal(mkeys[i]), "Key order not consistent at index %d -- expected: %v got: %v", i, key, mkeys[i]) {
			return false
		}
		if !assert.True(t, val.Equal(mvals[i]), "Value order not consistent at index %d -- expected: %v got: %v", i, val, mvals[i]) {
			return false
		}
		v, ok := m.Get(key)
		if !assert.True(t, ok, "Entry for key %v missing at index %d", key, i) {
			return false
		}
		if !assert.True(t, val.Equal(v), "Entry for key %v not consistent at index %d -- expected: %v got: %v", key, i, val, v) {
			return false
		}
	}
	if len(keys) == 0 {
		return true
	}
	if !assert.Len(t, mkeys, len(keys)) {
		return false
	}
	for i := range keys {
		if !assert.True(t, keys[i].Equal(mkeys[i]), "Key %d -- expected: %v got: %v", i, keys[i], mkeys[i]) {
			return false
		}
	}
	return true
}
