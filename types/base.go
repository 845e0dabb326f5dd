package types

import "strings"

// Value is the interface implemented by every runtime value.
// String renders the value the way Rust's Display does; Debug renders it
// the way {:?} does. Compound values have no Display form and render as
// Debug from String.
type Value interface {
	Kind() Kind
	String() string
	Debug() string
	Equal(other Value) bool
}

// Display renders v for print: Display for primitives, Debug otherwise
func Display(v Value) string {
	if v.Kind().IsPrimitive() {
		return v.String()
	}
	return v.Debug()
}

// debugJoin renders values with Debug, separated by ", "
func debugJoin(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.Debug()
	}
	return strings.Join(parts, ", ")
}

// equalSlices compares two value slices element-wise
func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IsHashable reports whether v may be used as a map key or set element
func IsHashable(v Value) bool {
	switch v := v.(type) {
	case IntValue, StrValue, CharValue, BoolValue:
		return true
	case TupleValue:
		for _, el := range v.Elems {
			if !IsHashable(el) {
				return false
			}
		}
		return true
	}
	return false
}
