package parser

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestDiagnosticsIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"fun f() {", true},
		{"let xs = [1, 2,\n", true},
		{"if x {\n  print(1)\n", true},
		{`let s = "open`, true},
		{"/* comment", true},
		{"let = 1", false},
		{"let x = 1 +* 2", false},
		{"print(1))", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			be.True(t, err != nil)
			var ds Diagnostics
			be.True(t, errors.As(err, &ds))
			be.Equal(t, ds.Incomplete(tt.src), tt.want)
		})
	}
}

func TestDiagnosticRenderHint(t *testing.T) {
	d := &Diagnostic{
		Kind:    ParseError,
		Message: "expected expression",
		Span:    Span{Start: Position{Line: 1, Column: 5, Offset: 4}, End: Position{Line: 1, Column: 6, Offset: 5}},
		Hint:    "remove the stray operator",
	}
	want := "parse error in x.ruchy at 1:5: expected expression\n\n" +
		"   1 | let = 1\n" +
		"     |     ^\n" +
		"     = help: remove the stray operator\n"
	be.Equal(t, d.Render("x.ruchy", "let = 1"), want)
}
