package parser

import "fmt"

// TokenType represents different types of lexical tokens
type TokenType int

const (
	// Special tokens
	TOKEN_EOF TokenType = iota
	TOKEN_ERROR

	// Literals
	TOKEN_INT     // 42, 0xff, 1_000i64
	TOKEN_FLOAT   // 3.14, 1e9, 2f32
	TOKEN_STRING  // "hello"
	TOKEN_FSTRING // f"hello {name}"
	TOKEN_CHAR    // 'a'

	// Keywords
	TOKEN_LET
	TOKEN_MUT
	TOKEN_FUN
	TOKEN_IF
	TOKEN_ELSE
	TOKEN_WHILE
	TOKEN_FOR
	TOKEN_IN
	TOKEN_LOOP
	TOKEN_MATCH
	TOKEN_BREAK
	TOKEN_CONTINUE
	TOKEN_RETURN
	TOKEN_STRUCT
	TOKEN_ENUM
	TOKEN_IMPL
	TOKEN_MOD
	TOKEN_IMPORT
	TOKEN_EXPORT
	TOKEN_PUB
	TOKEN_AS
	TOKEN_TRUE
	TOKEN_FALSE

	// Identifiers
	TOKEN_IDENTIFIER

	// Operators
	TOKEN_PLUS    // +
	TOKEN_MINUS   // -
	TOKEN_STAR    // *
	TOKEN_SLASH   // /
	TOKEN_PERCENT // %
	TOKEN_POWER   // **

	TOKEN_EQ // ==
	TOKEN_NE // !=
	TOKEN_LT // <
	TOKEN_GT // >
	TOKEN_LE // <=
	TOKEN_GE // >=

	TOKEN_AND // &&
	TOKEN_OR  // ||
	TOKEN_NOT // !

	TOKEN_AMP    // &
	TOKEN_PIPE   // |
	TOKEN_CARET  // ^
	TOKEN_LSHIFT // <<
	TOKEN_RSHIFT // >>

	TOKEN_ASSIGN         // =
	TOKEN_PLUS_ASSIGN    // +=
	TOKEN_MINUS_ASSIGN   // -=
	TOKEN_STAR_ASSIGN    // *=
	TOKEN_SLASH_ASSIGN   // /=
	TOKEN_PERCENT_ASSIGN // %=

	TOKEN_ARROW      // ->
	TOKEN_FATARROW   // =>
	TOKEN_RANGE      // ..
	TOKEN_RANGE_INCL // ..=
	TOKEN_PIPELINE   // |>
	TOKEN_AT         // @

	// Delimiters
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LBRACE    // {
	TOKEN_RBRACE    // }
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
	TOKEN_DOT       // .
	TOKEN_COLON     // :
	TOKEN_PATHSEP   // ::
)

// Position represents a position in the source code.
// Line and Column are 1-based, Offset is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return s.Start.String()
}

// To returns the span covering s through other.
func (s Span) To(other Span) Span {
	return Span{Start: s.Start, End: other.End}
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Value   string // Raw source text
	Literal string // Decoded value (strings, chars, cleaned numbers) or the message of an error token
	Suffix  string // Numeric type suffix (i64, f32, ...)
	Pos     Position
	End     Position

	// NewlineBefore is set when a line break separates this token from the previous one.
	NewlineBefore bool
}

// Span returns the source range of the token
func (t Token) Span() Span {
	return Span{Start: t.Pos, End: t.End}
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:            "end of input",
	TOKEN_ERROR:          "invalid token",
	TOKEN_INT:            "integer",
	TOKEN_FLOAT:          "float",
	TOKEN_STRING:         "string",
	TOKEN_FSTRING:        "f-string",
	TOKEN_CHAR:           "char",
	TOKEN_LET:            "'let'",
	TOKEN_MUT:            "'mut'",
	TOKEN_FUN:            "'fun'",
	TOKEN_IF:             "'if'",
	TOKEN_ELSE:           "'else'",
	TOKEN_WHILE:          "'while'",
	TOKEN_FOR:            "'for'",
	TOKEN_IN:             "'in'",
	TOKEN_LOOP:           "'loop'",
	TOKEN_MATCH:          "'match'",
	TOKEN_BREAK:          "'break'",
	TOKEN_CONTINUE:       "'continue'",
	TOKEN_RETURN:         "'return'",
	TOKEN_STRUCT:         "'struct'",
	TOKEN_ENUM:           "'enum'",
	TOKEN_IMPL:           "'impl'",
	TOKEN_MOD:            "'mod'",
	TOKEN_IMPORT:         "'import'",
	TOKEN_EXPORT:         "'export'",
	TOKEN_PUB:            "'pub'",
	TOKEN_AS:             "'as'",
	TOKEN_TRUE:           "'true'",
	TOKEN_FALSE:          "'false'",
	TOKEN_IDENTIFIER:     "identifier",
	TOKEN_PLUS:           "'+'",
	TOKEN_MINUS:          "'-'",
	TOKEN_STAR:           "'*'",
	TOKEN_SLASH:          "'/'",
	TOKEN_PERCENT:        "'%'",
	TOKEN_POWER:          "'**'",
	TOKEN_EQ:             "'=='",
	TOKEN_NE:             "'!='",
	TOKEN_LT:             "'<'",
	TOKEN_GT:             "'>'",
	TOKEN_LE:             "'<='",
	TOKEN_GE:             "'>='",
	TOKEN_AND:            "'&&'",
	TOKEN_OR:             "'||'",
	TOKEN_NOT:            "'!'",
	TOKEN_AMP:            "'&'",
	TOKEN_PIPE:           "'|'",
	TOKEN_CARET:          "'^'",
	TOKEN_LSHIFT:         "'<<'",
	TOKEN_RSHIFT:         "'>>'",
	TOKEN_ASSIGN:         "'='",
	TOKEN_PLUS_ASSIGN:    "'+='",
	TOKEN_MINUS_ASSIGN:   "'-='",
	TOKEN_STAR_ASSIGN:    "'*='",
	TOKEN_SLASH_ASSIGN:   "'/='",
	TOKEN_PERCENT_ASSIGN: "'%='",
	TOKEN_ARROW:          "'->'",
	TOKEN_FATARROW:       "'=>'",
	TOKEN_RANGE:          "'..'",
	TOKEN_RANGE_INCL:     "'..='",
	TOKEN_PIPELINE:       "'|>'",
	TOKEN_AT:             "'@'",
	TOKEN_LPAREN:         "'('",
	TOKEN_RPAREN:         "')'",
	TOKEN_LBRACE:         "'{'",
	TOKEN_RBRACE:         "'}'",
	TOKEN_LBRACKET:       "'['",
	TOKEN_RBRACKET:       "']'",
	TOKEN_COMMA:          "','",
	TOKEN_SEMICOLON:      "';'",
	TOKEN_DOT:            "'.'",
	TOKEN_COLON:          "':'",
	TOKEN_PATHSEP:        "'::'",
}

// String returns a human readable name of the token type, used in diagnostics
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Describe renders the token for an "expected X, found Y" message.
func (t Token) Describe() string {
	switch t.Type {
	case TOKEN_IDENTIFIER:
		return fmt.Sprintf("identifier '%s'", t.Value)
	case TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_CHAR, TOKEN_FSTRING:
		return fmt.Sprintf("%s %s", t.Type, t.Value)
	case TOKEN_ERROR:
		return fmt.Sprintf("invalid token %q", t.Value)
	default:
		return t.Type.String()
	}
}

// keywords maps keyword strings to their token types.
// fn/fun and use/import are accepted as synonyms.
var keywords = map[string]TokenType{
	"let":      TOKEN_LET,
	"mut":      TOKEN_MUT,
	"fun":      TOKEN_FUN,
	"fn":       TOKEN_FUN,
	"if":       TOKEN_IF,
	"else":     TOKEN_ELSE,
	"while":    TOKEN_WHILE,
	"for":      TOKEN_FOR,
	"in":       TOKEN_IN,
	"loop":     TOKEN_LOOP,
	"match":    TOKEN_MATCH,
	"break":    TOKEN_BREAK,
	"continue": TOKEN_CONTINUE,
	"return":   TOKEN_RETURN,
	"struct":   TOKEN_STRUCT,
	"enum":     TOKEN_ENUM,
	"impl":     TOKEN_IMPL,
	"mod":      TOKEN_MOD,
	"import":   TOKEN_IMPORT,
	"use":      TOKEN_IMPORT,
	"export":   TOKEN_EXPORT,
	"pub":      TOKEN_PUB,
	"as":       TOKEN_AS,
	"true":     TOKEN_TRUE,
	"false":    TOKEN_FALSE,
}

// LookupKeyword checks if an identifier is a keyword
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENTIFIER
}

// IsAssignOp reports whether t is '=' or a compound assignment operator.
func IsAssignOp(t TokenType) bool {
	switch t {
	case TOKEN_ASSIGN, TOKEN_PLUS_ASSIGN, TOKEN_MINUS_ASSIGN, TOKEN_STAR_ASSIGN, TOKEN_SLASH_ASSIGN, TOKEN_PERCENT_ASSIGN:
		return true
	}
	return false
}

// CompoundBase maps a compound assignment operator to its binary operator.
func CompoundBase(t TokenType) TokenType {
	switch t {
	case TOKEN_PLUS_ASSIGN:
		return TOKEN_PLUS
	case TOKEN_MINUS_ASSIGN:
		return TOKEN_MINUS
	case TOKEN_STAR_ASSIGN:
		return TOKEN_STAR
	case TOKEN_SLASH_ASSIGN:
		return TOKEN_SLASH
	case TOKEN_PERCENT_ASSIGN:
		return TOKEN_PERCENT
	}
	return t
}

// OperatorText returns the source spelling of an operator token.
func OperatorText(t TokenType) string {
	name := t.String()
	if len(name) >= 2 && name[0] == '\'' && name[len(name)-1] == '\'' {
		return name[1 : len(name)-1]
	}
	return name
}
