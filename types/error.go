package types

import (
	"fmt"
	"strings"

	"ruchy/parser"
)

// ErrorCode classifies a runtime error
type ErrorCode int

const (
	E_NONE        ErrorCode = iota
	E_VARNF                 // UnboundName
	E_TYPE                  // TypeMismatch
	E_NOMATCH               // NoPatternMatched
	E_DIV                   // DivisionByZero
	E_RANGE                 // IndexOutOfRange
	E_KEY                   // KeyNotFound
	E_OVERFLOW              // IntegerOverflow
	E_INVARG                // InvalidArgument
	E_NOTCALLABLE           // NotCallable
	E_ARGS                  // ArityMismatch
	E_METHODNF              // UnknownMethod
	E_IMMUTABLE             // ImmutableAssignment
	E_MAXREC                // RecursionLimit
	E_STEPS                 // StepLimit
	E_CANCELLED             // Cancelled
	E_PANIC                 // Panic
	E_PERM                  // Visibility
)

var errorNames = [...]string{
	E_NONE:        "None",
	E_VARNF:       "UnboundName",
	E_TYPE:        "TypeMismatch",
	E_NOMATCH:     "NoPatternMatched",
	E_DIV:         "DivisionByZero",
	E_RANGE:       "IndexOutOfRange",
	E_KEY:         "KeyNotFound",
	E_OVERFLOW:    "IntegerOverflow",
	E_INVARG:      "InvalidArgument",
	E_NOTCALLABLE: "NotCallable",
	E_ARGS:        "ArityMismatch",
	E_METHODNF:    "UnknownMethod",
	E_IMMUTABLE:   "ImmutableAssignment",
	E_MAXREC:      "RecursionLimit",
	E_STEPS:       "StepLimit",
	E_CANCELLED:   "Cancelled",
	E_PANIC:       "Panic",
	E_PERM:        "Visibility",
}

// String returns the error's taxonomy name, e.g. "UnboundName"
func (e ErrorCode) String() string {
	if e >= 0 && int(e) < len(errorNames) {
		return errorNames[e]
	}
	return "Unknown"
}

// ParseErrorCode maps a taxonomy name back to its code
func ParseErrorCode(name string) (ErrorCode, bool) {
	for i, n := range errorNames {
		if n == name {
			return ErrorCode(i), true
		}
	}
	return E_NONE, false
}

// Frame is one entry of a runtime traceback
type Frame struct {
	Function string
	Pos      parser.Position
}

// RuntimeError is raised by evaluation. Pos is the failing node;
// Traceback lists the active calls, innermost first.
type RuntimeError struct {
	Code      ErrorCode
	Message   string
	Pos       parser.Position
	Traceback []Frame
}

// NewError creates a RuntimeError with a formatted message
func NewError(code ErrorCode, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Pos, e.Message)
}

// At sets the error position unless one is already recorded
func (e *RuntimeError) At(pos parser.Position) *RuntimeError {
	if e.Pos.Line == 0 {
		e.Pos = pos
	}
	return e
}

// Render formats the error with a caret under the failing position and
// the traceback below it
func (e *RuntimeError) Render(name, src string) string {
	d := &parser.Diagnostic{
		Message: fmt.Sprintf("%s: %s", e.Code, e.Message),
		Span:    parser.Span{Start: e.Pos, End: e.Pos},
	}
	out := d.Render(name, src)
	out = strings.Replace(out, d.Kind.String(), "runtime error", 1)
	if tb := e.FormatTraceback(); tb != "" {
		out += tb
	}
	return out
}

// FormatTraceback lists the call stack, most recent call first:
//
//	  in area at 4:12
//	  called from main at 9:1
func (e *RuntimeError) FormatTraceback() string {
	if len(e.Traceback) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range e.Traceback {
		if i == 0 {
			fmt.Fprintf(&b, "  in %s at %s\n", f.Function, f.Pos)
		} else {
			fmt.Fprintf(&b, "  called from %s at %s\n", f.Function, f.Pos)
		}
	}
	return b.String()
}
