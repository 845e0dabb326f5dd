package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DiagnosticKind classifies a front-end error
type DiagnosticKind int

const (
	LexError DiagnosticKind = iota
	ParseError
)

func (k DiagnosticKind) String() string {
	if k == LexError {
		return "lex error"
	}
	return "parse error"
}

// Diagnostic is a located front-end error
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Span    Span
	Hint    string // optional suggestion
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Span.Start, d.Message)
}

// Diagnostics collects every error found in one parse
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "no errors"
	case 1:
		return ds[0].Error()
	}
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return fmt.Sprintf("%d errors:\n%s", len(ds), strings.Join(msgs, "\n"))
}

// Err returns ds as an error, or nil when empty
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// Render formats the diagnostic with a numbered source excerpt and a caret
// line under the offending span:
//
//	parse error in main.ruchy at 3:12: expected ')', found '}'
//
//	   2 | let x = (1 + 2
//	   3 | let y = foo(}
//	     |             ^
func (d *Diagnostic) Render(name, src string) string {
	lines := strings.Split(src, "\n")
	line, col := d.Span.Start.Line, d.Span.Start.Column
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", d.Kind, name, line, col, d.Message)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", d.Kind, line, col, d.Message)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)

	width := 1
	if d.Span.End.Line == d.Span.Start.Line && d.Span.End.Column > col {
		width = d.Span.End.Column - col
	}
	if rest := utf8.RuneCountInString(lineTxt) - (col - 1); width > rest && rest > 0 {
		width = rest
	}
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	if d.Hint != "" {
		fmt.Fprintf(&b, "     = help: %s\n", d.Hint)
	}
	return b.String()
}

// RenderAll renders each diagnostic, separated by blank lines
func (ds Diagnostics) RenderAll(name, src string) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Render(name, src)
	}
	return strings.Join(parts, "\n")
}

// Incomplete reports whether every error in ds stems from src ending too
// early: an unclosed delimiter, string, or block comment. An interactive
// reader uses it to ask for another line instead of reporting the error.
func (ds Diagnostics) Incomplete(src string) bool {
	if len(ds) == 0 {
		return false
	}
	end := len(strings.TrimRight(src, " \t\r\n"))
	for _, d := range ds {
		switch {
		case d.Kind == LexError && strings.HasPrefix(d.Message, "unterminated") &&
			!strings.Contains(d.Message, "character"):
		case d.Kind == ParseError && d.Span.Start.Offset >= end:
		default:
			return false
		}
	}
	return true
}
