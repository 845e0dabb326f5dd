package types

import (
	"math"
	"strconv"
	"strings"
)

// FloatValue represents a 64-bit float
type FloatValue struct {
	Val float64
}

// NewFloat creates a new FloatValue
func NewFloat(val float64) FloatValue {
	return FloatValue{Val: val}
}

// Kind returns KindFloat
func (f FloatValue) Kind() Kind {
	return KindFloat
}

// String renders the shortest decimal that round-trips, never in
// exponent form: 3.0 prints "3", 0.1 prints "0.1".
func (f FloatValue) String() string {
	if s, ok := nonFinite(f.Val); ok {
		return s
	}
	return strconv.FormatFloat(f.Val, 'f', -1, 64)
}

// Debug always shows a fractional part or an exponent: 3.0 prints "3.0",
// 1e20 prints "1e20".
func (f FloatValue) Debug() string {
	if s, ok := nonFinite(f.Val); ok {
		return s
	}
	abs := math.Abs(f.Val)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(f.Val, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		n, _ := strconv.Atoi(exp)
		return mant + "e" + strconv.Itoa(n)
	}
	s := strconv.FormatFloat(f.Val, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Fixed renders the value with exactly prec fractional digits ({:.N})
func (f FloatValue) Fixed(prec int) string {
	if s, ok := nonFinite(f.Val); ok {
		return s
	}
	return strconv.FormatFloat(f.Val, 'f', prec, 64)
}

// Equal compares by IEEE equality, so NaN is never equal to itself
func (f FloatValue) Equal(other Value) bool {
	o, ok := other.(FloatValue)
	return ok && o.Val == f.Val
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "inf", true
	case math.IsInf(v, -1):
		return "-inf", true
	}
	return "", false
}
