package parser

import (
	"testing"

	"github.com/nalgeon/be"
)

func tokenTypes(input string) []TokenType {
	var types []TokenType
	for _, tok := range Tokenize(input) {
		types = append(types, tok.Type)
	}
	return types
}

func TestLexerOperatorsLongestMatch(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenType
	}{
		{"..=", []TokenType{TOKEN_RANGE_INCL, TOKEN_EOF}},
		{"..", []TokenType{TOKEN_RANGE, TOKEN_EOF}},
		{".", []TokenType{TOKEN_DOT, TOKEN_EOF}},
		{"**", []TokenType{TOKEN_POWER, TOKEN_EOF}},
		{"->", []TokenType{TOKEN_ARROW, TOKEN_EOF}},
		{"=>", []TokenType{TOKEN_FATARROW, TOKEN_EOF}},
		{"::", []TokenType{TOKEN_PATHSEP, TOKEN_EOF}},
		{"|>", []TokenType{TOKEN_PIPELINE, TOKEN_EOF}},
		{"&& ||", []TokenType{TOKEN_AND, TOKEN_OR, TOKEN_EOF}},
		{"+= -= *= /= %=", []TokenType{TOKEN_PLUS_ASSIGN, TOKEN_MINUS_ASSIGN, TOKEN_STAR_ASSIGN, TOKEN_SLASH_ASSIGN, TOKEN_PERCENT_ASSIGN, TOKEN_EOF}},
		{"<<=", []TokenType{TOKEN_LSHIFT, TOKEN_ASSIGN, TOKEN_EOF}},
		{"== != <= >=", []TokenType{TOKEN_EQ, TOKEN_NE, TOKEN_LE, TOKEN_GE, TOKEN_EOF}},
		{"1..10", []TokenType{TOKEN_INT, TOKEN_RANGE, TOKEN_INT, TOKEN_EOF}},
		{"1.max(2)", []TokenType{TOKEN_INT, TOKEN_DOT, TOKEN_IDENTIFIER, TOKEN_LPAREN, TOKEN_INT, TOKEN_RPAREN, TOKEN_EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, tokenTypes(tt.input), tt.want)
		})
	}
}

func TestLexerKeywords(t *testing.T) {
	toks := Tokenize("fn fun let mut import use as pub export matches")
	want := []TokenType{TOKEN_FUN, TOKEN_FUN, TOKEN_LET, TOKEN_MUT, TOKEN_IMPORT, TOKEN_IMPORT, TOKEN_AS, TOKEN_PUB, TOKEN_EXPORT, TOKEN_IDENTIFIER, TOKEN_EOF}
	for i, tok := range toks {
		be.Equal(t, tok.Type, want[i])
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
		suffix  string
	}{
		{"42", TOKEN_INT, "42", ""},
		{"1_000_000", TOKEN_INT, "1000000", ""},
		{"0xff", TOKEN_INT, "0xff", ""},
		{"0o17", TOKEN_INT, "0o17", ""},
		{"0b1010_1010", TOKEN_INT, "0b10101010", ""},
		{"7u8", TOKEN_INT, "7", "u8"},
		{"3.25", TOKEN_FLOAT, "3.25", ""},
		{"1e10", TOKEN_FLOAT, "1e10", ""},
		{"2.5E-3", TOKEN_FLOAT, "2.5e-3", ""},
		{"1f64", TOKEN_FLOAT, "1", "f64"},
		{"6.0f32", TOKEN_FLOAT, "6.0", "f32"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := Tokenize(tt.input)[0]
			be.Equal(t, tok.Type, tt.typ)
			be.Equal(t, tok.Literal, tt.literal)
			be.Equal(t, tok.Suffix, tt.suffix)
			be.Equal(t, tok.Value, tt.input)
		})
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		want  string
	}{
		{`"hello"`, TOKEN_STRING, "hello"},
		{`"a\nb\tc"`, TOKEN_STRING, "a\nb\tc"},
		{`"q\"q"`, TOKEN_STRING, `q"q`},
		{`"back\\slash"`, TOKEN_STRING, `back\slash`},
		{`"nul\0"`, TOKEN_STRING, "nul\x00"},
		{`"\u{1F600}"`, TOKEN_STRING, "\U0001F600"},
		{`"\x41"`, TOKEN_STRING, "A"},
		{`r"raw\n"`, TOKEN_STRING, `raw\n`},
		{`r#"say "hi""#`, TOKEN_STRING, `say "hi"`},
		{`f"x = {x}"`, TOKEN_FSTRING, "x = {x}"},
		{`f"\{literal\}"`, TOKEN_FSTRING, "{{literal}}"},
		{`'a'`, TOKEN_CHAR, "a"},
		{`'\n'`, TOKEN_CHAR, "\n"},
		{`'\''`, TOKEN_CHAR, "'"},
		{`'é'`, TOKEN_CHAR, "é"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := Tokenize(tt.input)[0]
			be.Equal(t, tok.Type, tt.typ)
			be.Equal(t, tok.Literal, tt.want)
		})
	}
}

func TestLexerErrorTokens(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`"open`, "unterminated string literal"},
		{`'ab'`, "character literal may only contain one character"},
		{`''`, "empty character literal"},
		{`"\q"`, "unknown escape sequence"},
		{"/* never closed", "unterminated block comment"},
		{"0x", "missing digits after integer base prefix"},
		{"0b102", "invalid digit for a base 2 literal"},
		{"12abc", "invalid suffix 'abc' for number literal"},
		{"1.5u8", "integer suffix 'u8' on a float literal"},
		{"$", "unexpected character $"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := Tokenize(tt.input)[0]
			be.Equal(t, tok.Type, TOKEN_ERROR)
			be.True(t, len(tok.Literal) >= len(tt.message))
			be.Equal(t, tok.Literal[:len(tt.message)], tt.message)
		})
	}
}

func TestLexerErrorDoesNotDropInput(t *testing.T) {
	toks := Tokenize("let x = $ 1")
	want := []TokenType{TOKEN_LET, TOKEN_IDENTIFIER, TOKEN_ASSIGN, TOKEN_ERROR, TOKEN_INT, TOKEN_EOF}
	be.Equal(t, len(toks), len(want))
	for i, tok := range toks {
		be.Equal(t, tok.Type, want[i])
	}
}

func TestLexerComments(t *testing.T) {
	input := "#!/usr/bin/env ruchy\n1 // line\n/* outer /* nested */ still */ 2"
	toks := Tokenize(input)
	be.Equal(t, len(toks), 3)
	be.Equal(t, toks[0].Value, "1")
	be.Equal(t, toks[1].Value, "2")
}

func TestLexerNewlineBefore(t *testing.T) {
	toks := Tokenize("a\nb c\n\n  // comment\nd")
	be.Equal(t, toks[0].NewlineBefore, false)
	be.Equal(t, toks[1].NewlineBefore, true)
	be.Equal(t, toks[2].NewlineBefore, false)
	be.Equal(t, toks[3].NewlineBefore, true)
}

func TestLexerPositions(t *testing.T) {
	toks := Tokenize("let x\n  = 10")
	be.Equal(t, toks[0].Pos, Position{Line: 1, Column: 1, Offset: 0})
	be.Equal(t, toks[1].Pos, Position{Line: 1, Column: 5, Offset: 4})
	be.Equal(t, toks[2].Pos, Position{Line: 2, Column: 3, Offset: 8})
	be.Equal(t, toks[3].Pos, Position{Line: 2, Column: 5, Offset: 10})
	be.Equal(t, toks[3].End, Position{Line: 2, Column: 7, Offset: 12})
}

func TestLexerEOFRepeats(t *testing.T) {
	l := NewLexer("x")
	be.Equal(t, l.NextToken().Type, TOKEN_IDENTIFIER)
	for i := 0; i < 3; i++ {
		be.Equal(t, l.NextToken().Type, TOKEN_EOF)
	}
}
