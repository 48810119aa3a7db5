// Copyright © 2018 The ELPS authors

package lisp

import "fmt"

// MapData is an insertion ordered hash map.  Keys may be numbers, strings,
// booleans, nil, symbols or keywords.  Keys of different types never
// collide, so the string "a", the symbol a and the keyword :a are distinct
// keys.
type MapData struct {
	entries []mapEntry
	index   map[mapKey]int
}

type mapKey struct {
	typ LType
	str string
	num float64
}

type mapEntry struct {
	key *LVal
	val *LVal
}

// NewMap returns an empty map.
func NewMap() *MapData {
	return &MapData{index: make(map[mapKey]int)}
}

func toMapKey(k *LVal) (mapKey, error) {
	switch k.Type {
	case LNumber:
		return mapKey{typ: LNumber, num: k.Num}, nil
	case LString, LBool, LSymbol, LKeyword:
		return mapKey{typ: k.Type, str: k.Str}, nil
	case LNil:
		return mapKey{typ: LNil}, nil
	default:
		return mapKey{}, fmt.Errorf("unhashable type: %v", k.Type)
	}
}

// Len returns the number of entries in m.
func (m *MapData) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the value associated with k and true, or nil and false when k
// is not present.
func (m *MapData) Get(k *LVal) (*LVal, bool) {
	key, err := toMapKey(k)
	if err != nil || m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].val, true
}

// Has returns true if k is present in m.
func (m *MapData) Has(k *LVal) bool {
	_, ok := m.Get(k)
	return ok
}

// Set associates v with k.  A new key is ordered after all existing keys
// while updating an existing key keeps its position.
func (m *MapData) Set(k, v *LVal) error {
	key, err := toMapKey(k)
	if err != nil {
		return err
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].val = v
		return nil
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, mapEntry{key: k, val: v})
	return nil
}

// Delete removes k from m and returns true if k was present.
func (m *MapData) Delete(k *LVal) bool {
	key, err := toMapKey(k)
	if err != nil {
		return false
	}
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	for j := i; j < len(m.entries); j++ {
		jkey, _ := toMapKey(m.entries[j].key)
		m.index[jkey] = j
	}
	return true
}

// Keys returns the keys of m in insertion order.
func (m *MapData) Keys() []*LVal {
	keys := make([]*LVal, m.Len())
	for i := range keys {
		keys[i] = m.entries[i].key
	}
	return keys
}

// Values returns the values of m in key insertion order.
func (m *MapData) Values() []*LVal {
	vals := make([]*LVal, m.Len())
	for i := range vals {
		vals[i] = m.entries[i].val
	}
	return vals
}

// Entries returns a (key . value) pair for every entry in m.
func (m *MapData) Entries() []*LVal {
	pairs := make([]*LVal, m.Len())
	for i := range pairs {
		pairs[i] = Pair(m.entries[i].key, m.entries[i].val)
	}
	return pairs
}

// Each calls fn with every key and value in m, in order, until fn returns
// false.
func (m *MapData) Each(fn func(k, v *LVal) bool) {
	for i := 0; i < m.Len(); i++ {
		if !fn(m.entries[i].key, m.entries[i].val) {
			return
		}
	}
}

// Copy returns a new map with the same entries as m.
func (m *MapData) Copy() *MapData {
	cp := &MapData{
		entries: make([]mapEntry, m.Len()),
		index:   make(map[mapKey]int, m.Len()),
	}
	if m == nil {
		return cp
	}
	copy(cp.entries, m.entries)
	for k, i := range m.index {
		cp.index[k] = i
	}
	return cp
}

// Equal returns true if m and other contain equal values for the same keys,
// regardless of order.
func (m *MapData) Equal(other *MapData) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		v, ok := other.Get(m.entries[i].key)
		if !ok || !v.Equal(m.entries[i].val) {
			return false
		}
	}
	return true
}
