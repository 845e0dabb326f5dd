package types

import "ruchy/parser"

// StrValue represents an immutable UTF-8 string
type StrValue struct {
	Val string
}

// NewStr creates a new StrValue
func NewStr(s string) StrValue {
	return StrValue{Val: s}
}

func (s StrValue) Kind() Kind {
	return KindString
}

// String returns the raw contents
func (s StrValue) String() string {
	return s.Val
}

// Debug returns the quoted, escaped form: "a\"b"
func (s StrValue) Debug() string {
	return parser.QuoteString(s.Val)
}

func (s StrValue) Equal(other Value) bool {
	o, ok := other.(StrValue)
	return ok && o.Val == s.Val
}

// Len returns the length in bytes
func (s StrValue) Len() int {
	return len(s.Val)
}

// CharValue represents a single Unicode scalar value
type CharValue struct {
	Val rune
}

// NewChar creates a new CharValue
func NewChar(r rune) CharValue {
	return CharValue{Val: r}
}

func (c CharValue) Kind() Kind     { return KindChar }
func (c CharValue) String() string { return string(c.Val) }
func (c CharValue) Debug() string  { return parser.QuoteChar(c.Val) }

func (c CharValue) Equal(other Value) bool {
	o, ok := other.(CharValue)
	return ok && o.Val == c.Val
}
