package types

import "strconv"

// IntValue represents a 64-bit signed integer
type IntValue struct {
	Val int64
}

// NewInt creates a new IntValue
func NewInt(val int64) IntValue {
	return IntValue{Val: val}
}

// Kind returns KindInt
func (i IntValue) Kind() Kind {
	return KindInt
}

// String returns the decimal representation
func (i IntValue) String() string {
	return strconv.FormatInt(i.Val, 10)
}

func (i IntValue) Debug() string {
	return i.String()
}

// Equal checks equality; integers never equal floats
func (i IntValue) Equal(other Value) bool {
	o, ok := other.(IntValue)
	return ok && o.Val == i.Val
}
