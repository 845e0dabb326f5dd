package types

// ListValue is a growable sequence. Lists are shared by reference: every
// alias of a *ListValue observes mutations made through any other.
type ListValue struct {
	elems []Value
}

// NewList creates a list owning elems
func NewList(elems []Value) *ListValue {
	if elems == nil {
		elems = []Value{}
	}
	return &ListValue{elems: elems}
}

// NewEmptyList creates a list with no elements
func NewEmptyList() *ListValue {
	return &ListValue{elems: []Value{}}
}

func (l *ListValue) Kind() Kind     { return KindList }
func (l *ListValue) String() string { return l.Debug() }
func (l *ListValue) Debug() string  { return "[" + debugJoin(l.elems) + "]" }
func (l *ListValue) Len() int       { return len(l.elems) }

// Equal compares element-wise
func (l *ListValue) Equal(other Value) bool {
	o, ok := other.(*ListValue)
	return ok && (o == l || equalSlices(l.elems, o.elems))
}

// Get returns the element at 0-based index i, or nil when out of range
func (l *ListValue) Get(i int) Value {
	if i < 0 || i >= len(l.elems) {
		return nil
	}
	return l.elems[i]
}

// Set replaces the element at index i; it reports false when out of range
func (l *ListValue) Set(i int, v Value) bool {
	if i < 0 || i >= len(l.elems) {
		return false
	}
	l.elems[i] = v
	return true
}

// Append adds v to the end
func (l *ListValue) Append(v ...Value) {
	l.elems = append(l.elems, v...)
}

// Insert places v before index i (0 <= i <= Len)
func (l *ListValue) Insert(i int, v Value) bool {
	if i < 0 || i > len(l.elems) {
		return false
	}
	l.elems = append(l.elems, nil)
	copy(l.elems[i+1:], l.elems[i:])
	l.elems[i] = v
	return true
}

// RemoveAt deletes and returns the element at index i
func (l *ListValue) RemoveAt(i int) (Value, bool) {
	if i < 0 || i >= len(l.elems) {
		return nil, false
	}
	v := l.elems[i]
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	return v, true
}

// Pop removes the last element
func (l *ListValue) Pop() (Value, bool) {
	if len(l.elems) == 0 {
		return nil, false
	}
	return l.RemoveAt(len(l.elems) - 1)
}

// Clear removes every element
func (l *ListValue) Clear() {
	l.elems = []Value{}
}

// Elements returns a snapshot of the elements; later mutations of the list
// do not affect it
func (l *ListValue) Elements() []Value {
	out := make([]Value, len(l.elems))
	copy(out, l.elems)
	return out
}

// Slice returns a new list holding elements [start, end)
func (l *ListValue) Slice(start, end int) *ListValue {
	out := make([]Value, end-start)
	copy(out, l.elems[start:end])
	return NewList(out)
}

// Reverse reverses the list in place
func (l *ListValue) Reverse() {
	for i, j := 0, len(l.elems)-1; i < j; i, j = i+1, j-1 {
		l.elems[i], l.elems[j] = l.elems[j], l.elems[i]
	}
}

// Replace swaps in a new backing slice, used by in-place sorting
func (l *ListValue) Replace(elems []Value) {
	l.elems = elems
}
