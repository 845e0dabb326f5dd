package types

import (
	"sort"
	"strings"
)

// MapEntry is one key/value pair of a map
type MapEntry struct {
	Key Value
	Val Value
}

// MapValue is a mapping ordered by key, so iteration and printing order
// are deterministic. Keys must satisfy IsHashable. Maps are shared by
// reference.
type MapValue struct {
	entries []MapEntry
}

// NewMap creates an empty map
func NewMap() *MapValue {
	return &MapValue{}
}

func (m *MapValue) Kind() Kind     { return KindMap }
func (m *MapValue) String() string { return m.Debug() }
func (m *MapValue) Len() int       { return len(m.entries) }

// Debug renders {k: v, ...} in key order
func (m *MapValue) Debug() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.Key.Debug() + ": " + e.Val.Debug()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *MapValue) Equal(other Value) bool {
	o, ok := other.(*MapValue)
	if !ok || len(o.entries) != len(m.entries) {
		return false
	}
	for i, e := range m.entries {
		if !e.Key.Equal(o.entries[i].Key) || !e.Val.Equal(o.entries[i].Val) {
			return false
		}
	}
	return true
}

func (m *MapValue) search(key Value) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return keyOrder(m.entries[i].Key, key) >= 0
	})
	return i, i < len(m.entries) && keyOrder(m.entries[i].Key, key) == 0
}

// Get looks up key
func (m *MapValue) Get(key Value) (Value, bool) {
	if i, found := m.search(key); found {
		return m.entries[i].Val, true
	}
	return nil, false
}

// Has reports whether key is present
func (m *MapValue) Has(key Value) bool {
	_, found := m.search(key)
	return found
}

// Set inserts or replaces key, returning the previous value if any
func (m *MapValue) Set(key, val Value) (Value, bool) {
	i, found := m.search(key)
	if found {
		old := m.entries[i].Val
		m.entries[i].Val = val
		return old, true
	}
	m.entries = append(m.entries, MapEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = MapEntry{Key: key, Val: val}
	return nil, false
}

// Delete removes key, returning its value if it was present
func (m *MapValue) Delete(key Value) (Value, bool) {
	i, found := m.search(key)
	if !found {
		return nil, false
	}
	old := m.entries[i].Val
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return old, true
}

// Clear removes every entry
func (m *MapValue) Clear() {
	m.entries = nil
}

// Entries returns a snapshot of the entries in key order
func (m *MapValue) Entries() []MapEntry {
	out := make([]MapEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Keys returns the keys in order
func (m *MapValue) Keys() []Value {
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

// Values returns the values in key order
func (m *MapValue) Values() []Value {
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Val
	}
	return out
}

// SetValue is an ordered set of hashable values, shared by reference
type SetValue struct {
	elems []Value
}

// NewSet creates a set holding vals
func NewSet(vals ...Value) *SetValue {
	s := &SetValue{}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func (s *SetValue) Kind() Kind     { return KindSet }
func (s *SetValue) String() string { return s.Debug() }
func (s *SetValue) Debug() string  { return "{" + debugJoin(s.elems) + "}" }
func (s *SetValue) Len() int       { return len(s.elems) }

func (s *SetValue) Equal(other Value) bool {
	o, ok := other.(*SetValue)
	return ok && equalSlices(s.elems, o.elems)
}

func (s *SetValue) search(v Value) (int, bool) {
	i := sort.Search(len(s.elems), func(i int) bool {
		return keyOrder(s.elems[i], v) >= 0
	})
	return i, i < len(s.elems) && keyOrder(s.elems[i], v) == 0
}

// Contains reports membership
func (s *SetValue) Contains(v Value) bool {
	_, found := s.search(v)
	return found
}

// Add inserts v and reports whether it was newly added
func (s *SetValue) Add(v Value) bool {
	i, found := s.search(v)
	if found {
		return false
	}
	s.elems = append(s.elems, nil)
	copy(s.elems[i+1:], s.elems[i:])
	s.elems[i] = v
	return true
}

// Remove deletes v and reports whether it was present
func (s *SetValue) Remove(v Value) bool {
	i, found := s.search(v)
	if !found {
		return false
	}
	s.elems = append(s.elems[:i], s.elems[i+1:]...)
	return true
}

// Clear removes every element
func (s *SetValue) Clear() {
	s.elems = nil
}

// Elements returns a snapshot of the elements in order
func (s *SetValue) Elements() []Value {
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}
