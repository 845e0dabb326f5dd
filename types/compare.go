package types

import "strings"

// Compare orders two values of the same shape the way Rust's PartialOrd
// does. ok is false when the values are not comparable (different kinds,
// different struct types, or a NaN operand).
func Compare(a, b Value) (cmp int, ok bool) {
	switch a := a.(type) {
	case IntValue:
		if b, isInt := b.(IntValue); isInt {
			return cmp3(a.Val < b.Val, a.Val > b.Val), true
		}
	case FloatValue:
		if b, isFloat := b.(FloatValue); isFloat {
			if a.Val != a.Val || b.Val != b.Val {
				return 0, false
			}
			return cmp3(a.Val < b.Val, a.Val > b.Val), true
		}
	case StrValue:
		if b, isStr := b.(StrValue); isStr {
			return strings.Compare(a.Val, b.Val), true
		}
	case CharValue:
		if b, isChar := b.(CharValue); isChar {
			return cmp3(a.Val < b.Val, a.Val > b.Val), true
		}
	case BoolValue:
		if b, isBool := b.(BoolValue); isBool {
			return cmp3(!a.Val && b.Val, a.Val && !b.Val), true
		}
	case UnitValue:
		if _, isUnit := b.(UnitValue); isUnit {
			return 0, true
		}
	case TupleValue:
		if b, isTuple := b.(TupleValue); isTuple {
			return compareSlices(a.Elems, b.Elems)
		}
	case *ListValue:
		if b, isList := b.(*ListValue); isList {
			return compareSlices(a.elems, b.elems)
		}
	case EnumValue:
		if b, isEnum := b.(EnumValue); isEnum && a.Enum == b.Enum {
			if a.Index != b.Index {
				return cmp3(a.Index < b.Index, a.Index > b.Index), true
			}
			return compareSlices(a.Fields, b.Fields)
		}
	case *StructValue:
		if b, isStruct := b.(*StructValue); isStruct && a.TypeName == b.TypeName {
			return compareSlices(a.fields, b.fields)
		}
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func compareSlices(a, b []Value) (int, bool) {
	for i := 0; i < len(a) && i < len(b); i++ {
		c, ok := Compare(a[i], b[i])
		if !ok {
			return 0, false
		}
		if c != 0 {
			return c, true
		}
	}
	return cmp3(len(a) < len(b), len(a) > len(b)), true
}

// keyOrder is a total order over hashable values: first by kind, then by
// Compare within a kind
func keyOrder(a, b Value) int {
	if a.Kind() != b.Kind() {
		return cmp3(a.Kind() < b.Kind(), a.Kind() > b.Kind())
	}
	if ta, ok := a.(TupleValue); ok {
		tb := b.(TupleValue)
		for i := 0; i < len(ta.Elems) && i < len(tb.Elems); i++ {
			if c := keyOrder(ta.Elems[i], tb.Elems[i]); c != 0 {
				return c
			}
		}
		return cmp3(len(ta.Elems) < len(tb.Elems), len(ta.Elems) > len(tb.Elems))
	}
	c, _ := Compare(a, b)
	return c
}
