package types

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestDisplayAndDebug(t *testing.T) {
	point := NewStruct("Point", []string{"x", "y"}, []Value{NewInt(1), NewInt(2)})
	tests := []struct {
		name    string
		val     Value
		display string
		debug   string
	}{
		{"unit", Unit, "()", "()"},
		{"bool", NewBool(true), "true", "true"},
		{"int", NewInt(-42), "-42", "-42"},
		{"whole float", NewFloat(3), "3", "3.0"},
		{"fraction", NewFloat(0.1), "0.1", "0.1"},
		{"large float", NewFloat(1e20), "100000000000000000000", "1e20"},
		{"small float", NewFloat(1.5e-7), "0.00000015", "1.5e-7"},
		{"nan", NewFloat(math.NaN()), "NaN", "NaN"},
		{"negative inf", NewFloat(math.Inf(-1)), "-inf", "-inf"},
		{"char", NewChar('a'), "a", "'a'"},
		{"string", NewStr("hi \"there\""), "hi \"there\"", `"hi \"there\""`},
		{"list", NewList([]Value{NewInt(1), NewStr("a")}), `[1, "a"]`, `[1, "a"]`},
		{"empty list", NewEmptyList(), "[]", "[]"},
		{"tuple", NewTuple(NewInt(1), NewFloat(2)), "(1, 2.0)", "(1, 2.0)"},
		{"one tuple", NewTuple(NewInt(1)), "(1,)", "(1,)"},
		{"some", NewSome(NewFloat(3)), "Some(3.0)", "Some(3.0)"},
		{"none", None, "None", "None"},
		{"struct", point, "Point { x: 1, y: 2 }", "Point { x: 1, y: 2 }"},
		{"range", NewRange(0, 3, false), "0..3", "0..3"},
		{"char range", RangeValue{Start: 'a', End: 'c', HasStart: true, HasEnd: true, Inclusive: true, Char: true}, "'a'..='c'", "'a'..='c'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, Display(tt.val), tt.display)
			be.Equal(t, tt.val.Debug(), tt.debug)
		})
	}
}

func TestFloatFixed(t *testing.T) {
	be.Equal(t, NewFloat(3.14159).Fixed(2), "3.14")
	be.Equal(t, NewFloat(2).Fixed(1), "2.0")
}

func TestEquality(t *testing.T) {
	be.True(t, NewInt(1).Equal(NewInt(1)))
	be.True(t, !NewInt(1).Equal(NewFloat(1)))
	be.True(t, !NewFloat(math.NaN()).Equal(NewFloat(math.NaN())))
	be.True(t, NewList([]Value{NewInt(1)}).Equal(NewList([]Value{NewInt(1)})))
	be.True(t, NewTuple(NewStr("a"), NewInt(2)).Equal(NewTuple(NewStr("a"), NewInt(2))))
	be.True(t, !NewSome(NewInt(1)).Equal(None))
	be.True(t, NewOk(Unit).Equal(NewOk(Unit)))
}

func TestListSharing(t *testing.T) {
	a := NewList([]Value{NewInt(1)})
	var alias Value = a
	alias.(*ListValue).Append(NewInt(2))
	be.Equal(t, a.Debug(), "[1, 2]")

	snapshot := a.Elements()
	a.Append(NewInt(3))
	be.Equal(t, len(snapshot), 2)
}

func TestListOperations(t *testing.T) {
	l := NewList([]Value{NewInt(1), NewInt(2), NewInt(3)})
	be.True(t, l.Insert(1, NewInt(9)))
	be.Equal(t, l.Debug(), "[1, 9, 2, 3]")

	v, ok := l.RemoveAt(0)
	be.True(t, ok)
	be.Equal(t, v, Value(NewInt(1)))

	last, ok := l.Pop()
	be.True(t, ok)
	be.Equal(t, last, Value(NewInt(3)))

	l.Reverse()
	be.Equal(t, l.Debug(), "[2, 9]")
	be.Equal(t, l.Slice(1, 2).Debug(), "[9]")
	be.True(t, !l.Set(5, Unit))
	be.Equal(t, l.Get(7), nil)
}

func TestMapOrdering(t *testing.T) {
	m := NewMap()
	m.Set(NewStr("b"), NewInt(2))
	m.Set(NewStr("a"), NewInt(1))
	m.Set(NewStr("c"), NewInt(3))
	be.Equal(t, m.Debug(), `{"a": 1, "b": 2, "c": 3}`)

	old, existed := m.Set(NewStr("b"), NewInt(20))
	be.True(t, existed)
	be.Equal(t, old, Value(NewInt(2)))

	v, ok := m.Get(NewStr("b"))
	be.True(t, ok)
	be.Equal(t, v, Value(NewInt(20)))

	_, ok = m.Delete(NewStr("a"))
	be.True(t, ok)
	be.Equal(t, m.Len(), 2)
	be.True(t, !m.Has(NewStr("a")))
}

func TestMapTupleKeys(t *testing.T) {
	m := NewMap()
	m.Set(NewTuple(NewInt(1), NewInt(2)), NewStr("x"))
	m.Set(NewTuple(NewInt(0), NewInt(5)), NewStr("y"))
	be.Equal(t, m.Debug(), `{(0, 5): "y", (1, 2): "x"}`)
	_, ok := m.Get(NewTuple(NewInt(1), NewInt(2)))
	be.True(t, ok)
}

func TestSet(t *testing.T) {
	s := NewSet(NewInt(3), NewInt(1), NewInt(3))
	be.Equal(t, s.Debug(), "{1, 3}")
	be.True(t, s.Add(NewInt(2)))
	be.True(t, !s.Add(NewInt(2)))
	be.True(t, s.Remove(NewInt(1)))
	be.True(t, !s.Contains(NewInt(1)))
	be.Equal(t, s.Debug(), "{2, 3}")
}

func TestIsHashable(t *testing.T) {
	be.True(t, IsHashable(NewStr("k")))
	be.True(t, IsHashable(NewTuple(NewInt(1), NewChar('c'))))
	be.True(t, !IsHashable(NewFloat(1)))
	be.True(t, !IsHashable(NewEmptyList()))
	be.True(t, !IsHashable(NewTuple(NewInt(1), NewEmptyList())))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
		ok   bool
	}{
		{"ints", NewInt(1), NewInt(2), -1, true},
		{"strings", NewStr("b"), NewStr("a"), 1, true},
		{"tuples", NewTuple(NewInt(1), NewInt(2)), NewTuple(NewInt(1), NewInt(3)), -1, true},
		{"lists prefix", NewList([]Value{NewInt(1)}), NewList([]Value{NewInt(1), NewInt(0)}), -1, true},
		{"options", None, NewSome(NewInt(0)), -1, true},
		{"mixed kinds", NewInt(1), NewFloat(1), 0, false},
		{"nan", NewFloat(math.NaN()), NewFloat(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			be.Equal(t, ok, tt.ok)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestStructFields(t *testing.T) {
	p := NewStruct("P", []string{"x"}, []Value{NewInt(1)})
	be.True(t, p.SetField("x", NewInt(5)))
	be.True(t, !p.SetField("z", NewInt(5)))
	v, ok := p.Field("x")
	be.True(t, ok)
	be.Equal(t, v, Value(NewInt(5)))
	be.Equal(t, TypeName(p), "P")
	be.Equal(t, TypeName(NewInt(1)), "int")
}

func TestModuleMembers(t *testing.T) {
	m := NewModule("util")
	m.Define("helper", NewInt(1), false)
	m.Define("api", NewInt(2), true)

	_, exported, found := m.Member("helper")
	be.True(t, found)
	be.True(t, !exported)
	be.Equal(t, m.Exports(), []string{"api"})
	be.Equal(t, m.Debug(), "<module util>")
}

func TestRange(t *testing.T) {
	r := NewRange(1, 4, true)
	be.Equal(t, r.Len(), int64(4))
	be.True(t, r.Contains(4))
	be.True(t, !r.Contains(5))
	be.Equal(t, NewRange(5, 1, false).Len(), int64(0))
	open := RangeValue{End: 3, HasEnd: true}
	be.Equal(t, open.Debug(), "..3")
}

func TestDeepClone(t *testing.T) {
	inner := NewList([]Value{NewInt(1)})
	outer := NewList([]Value{inner})
	copied := DeepClone(outer).(*ListValue)
	inner.Append(NewInt(2))
	be.Equal(t, copied.Debug(), "[[1]]")
	be.Equal(t, outer.Debug(), "[[1, 2]]")
}

func TestCheckedArithmetic(t *testing.T) {
	_, ok := AddInt(math.MaxInt64, 1)
	be.True(t, !ok)
	_, ok = SubInt(0, math.MinInt64)
	be.True(t, !ok)
	d, ok := SubInt(-5, 3)
	be.True(t, ok)
	be.Equal(t, d, int64(-8))
	_, ok = MulInt(math.MinInt64, -1)
	be.True(t, !ok)
	p, ok := MulInt(-4, 5)
	be.True(t, ok)
	be.Equal(t, p, int64(-20))
	_, ok = NegInt(math.MinInt64)
	be.True(t, !ok)
	pw, ok := PowInt(2, 62)
	be.True(t, ok)
	be.Equal(t, pw, int64(1)<<62)
	_, ok = PowInt(2, 63)
	be.True(t, !ok)
	pw, ok = PowInt(-3, 3)
	be.True(t, ok)
	be.Equal(t, pw, int64(-27))
}
