package types

import (
	"strconv"
	"strings"
)

// TupleValue is an immutable fixed-size group of values
type TupleValue struct {
	Elems []Value
}

// NewTuple creates a tuple; a tuple of no elements is Unit
func NewTuple(elems ...Value) Value {
	if len(elems) == 0 {
		return Unit
	}
	return TupleValue{Elems: elems}
}

func (t TupleValue) Kind() Kind     { return KindTuple }
func (t TupleValue) String() string { return t.Debug() }

func (t TupleValue) Debug() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].Debug() + ",)"
	}
	return "(" + debugJoin(t.Elems) + ")"
}

func (t TupleValue) Equal(other Value) bool {
	o, ok := other.(TupleValue)
	return ok && equalSlices(t.Elems, o.Elems)
}

// RangeValue is an integer or character range. Open bounds are only
// produced by slicing syntax and prefix ranges such as ..=5.
type RangeValue struct {
	Start     int64
	End       int64
	HasStart  bool
	HasEnd    bool
	Inclusive bool
	Char      bool
}

// NewRange creates a bounded integer range
func NewRange(start, end int64, inclusive bool) RangeValue {
	return RangeValue{Start: start, End: end, HasStart: true, HasEnd: true, Inclusive: inclusive}
}

func (r RangeValue) Kind() Kind     { return KindRange }
func (r RangeValue) String() string { return r.Debug() }

func (r RangeValue) Debug() string {
	var b strings.Builder
	if r.HasStart {
		b.WriteString(r.bound(r.Start))
	}
	b.WriteString("..")
	if r.Inclusive {
		b.WriteString("=")
	}
	if r.HasEnd {
		b.WriteString(r.bound(r.End))
	}
	return b.String()
}

func (r RangeValue) bound(v int64) string {
	if r.Char {
		return NewChar(rune(v)).Debug()
	}
	return strconv.FormatInt(v, 10)
}

func (r RangeValue) Equal(other Value) bool {
	o, ok := other.(RangeValue)
	return ok && o == r
}

// Last returns the exclusive upper bound, widening inclusive ranges
func (r RangeValue) Last() int64 {
	if r.Inclusive {
		return r.End + 1
	}
	return r.End
}

// Len returns the number of elements of a bounded range
func (r RangeValue) Len() int64 {
	n := r.Last() - r.Start
	if n < 0 {
		return 0
	}
	return n
}

// Contains reports whether n lies within the range
func (r RangeValue) Contains(n int64) bool {
	if r.HasStart && n < r.Start {
		return false
	}
	if r.HasEnd && n >= r.Last() {
		return false
	}
	return true
}

// Elem converts a position in the range back to a value
func (r RangeValue) Elem(n int64) Value {
	if r.Char {
		return NewChar(rune(n))
	}
	return NewInt(n)
}
