package parser

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes Ruchy source code. Tokens are produced on demand.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int

	sawNewline bool // a line break was skipped since the last token
}

// NewLexer creates a new Lexer instance
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	l.skipShebang()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	// Columns count characters, not UTF-8 continuation bytes
	if l.ch&0xC0 != 0x80 {
		l.column++
	}
}

// peekChar returns the next character without advancing
func (l *Lexer) peekChar() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) byte {
	if l.readPosition+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+n]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

// skipShebang drops a leading "#!" line so scripts can be executable
func (l *Lexer) skipShebang() {
	if l.ch == '#' && l.peekChar() == '!' {
		for l.ch != '\n' && !l.atEOF() {
			l.readChar()
		}
	}
}

// skipTrivia skips whitespace and comments, remembering line breaks.
// It returns an error token for an unterminated block comment.
func (l *Lexer) skipTrivia() *Token {
	for {
		switch {
		case l.ch == '\n':
			l.sawNewline = true
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			if tok := l.skipBlockComment(); tok != nil {
				return tok
			}
		default:
			return nil
		}
	}
}

// skipBlockComment skips a (nestable) block comment
func (l *Lexer) skipBlockComment() *Token {
	start := l.pos()
	depth := 0
	for !l.atEOF() {
		switch {
		case l.ch == '/' && l.peekChar() == '*':
			depth++
			l.readChar()
			l.readChar()
		case l.ch == '*' && l.peekChar() == '/':
			depth--
			l.readChar()
			l.readChar()
			if depth == 0 {
				return nil
			}
		default:
			if l.ch == '\n' {
				l.sawNewline = true
			}
			l.readChar()
		}
	}
	tok := l.errorToken(start, "unterminated block comment")
	return &tok
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	if errTok := l.skipTrivia(); errTok != nil {
		return l.finish(*errTok)
	}

	start := l.pos()
	if l.atEOF() {
		return l.finish(Token{Type: TOKEN_EOF, Pos: start, End: start})
	}

	switch {
	case l.ch == '"':
		return l.finish(l.readString(start, TOKEN_STRING))
	case l.ch == '\'':
		return l.finish(l.readCharLiteral(start))
	case l.ch == 'f' && l.peekChar() == '"':
		l.readChar()
		return l.finish(l.readString(start, TOKEN_FSTRING))
	case l.ch == 'r' && (l.peekChar() == '"' || (l.peekChar() == '#' && l.peekAt(1) == '"')):
		return l.finish(l.readRawString(start))
	case isDigit(l.ch):
		return l.finish(l.readNumber(start))
	case isIdentStart(l.ch) || l.ch >= utf8.RuneSelf:
		if l.ch >= utf8.RuneSelf {
			r, _ := utf8.DecodeRuneInString(l.input[l.position:])
			if !unicode.IsLetter(r) {
				return l.finish(l.readIllegal(start))
			}
		}
		ident := l.readIdentifier()
		return l.finish(Token{
			Type:  LookupKeyword(ident),
			Value: ident,
			Pos:   start,
			End:   l.pos(),
		})
	}

	tokType, width := l.operator()
	if tokType == TOKEN_ERROR {
		return l.finish(l.readIllegal(start))
	}
	for i := 0; i < width; i++ {
		l.readChar()
	}
	return l.finish(Token{
		Type:  tokType,
		Value: l.input[start.Offset:l.position],
		Pos:   start,
		End:   l.pos(),
	})
}

// finish stamps the newline flag on tok and resets it
func (l *Lexer) finish(tok Token) Token {
	tok.NewlineBefore = l.sawNewline
	l.sawNewline = false
	return tok
}

// operator matches the longest operator at the current position
func (l *Lexer) operator() (TokenType, int) {
	c0, c1, c2 := l.ch, l.peekAt(0), l.peekAt(1)
	switch c0 {
	case '+':
		if c1 == '=' {
			return TOKEN_PLUS_ASSIGN, 2
		}
		return TOKEN_PLUS, 1
	case '-':
		switch c1 {
		case '=':
			return TOKEN_MINUS_ASSIGN, 2
		case '>':
			return TOKEN_ARROW, 2
		}
		return TOKEN_MINUS, 1
	case '*':
		switch c1 {
		case '*':
			return TOKEN_POWER, 2
		case '=':
			return TOKEN_STAR_ASSIGN, 2
		}
		return TOKEN_STAR, 1
	case '/':
		if c1 == '=' {
			return TOKEN_SLASH_ASSIGN, 2
		}
		return TOKEN_SLASH, 1
	case '%':
		if c1 == '=' {
			return TOKEN_PERCENT_ASSIGN, 2
		}
		return TOKEN_PERCENT, 1
	case '=':
		switch c1 {
		case '=':
			return TOKEN_EQ, 2
		case '>':
			return TOKEN_FATARROW, 2
		}
		return TOKEN_ASSIGN, 1
	case '!':
		if c1 == '=' {
			return TOKEN_NE, 2
		}
		return TOKEN_NOT, 1
	case '<':
		switch c1 {
		case '=':
			return TOKEN_LE, 2
		case '<':
			return TOKEN_LSHIFT, 2
		}
		return TOKEN_LT, 1
	case '>':
		switch c1 {
		case '=':
			return TOKEN_GE, 2
		case '>':
			return TOKEN_RSHIFT, 2
		}
		return TOKEN_GT, 1
	case '&':
		if c1 == '&' {
			return TOKEN_AND, 2
		}
		return TOKEN_AMP, 1
	case '|':
		switch c1 {
		case '|':
			return TOKEN_OR, 2
		case '>':
			return TOKEN_PIPELINE, 2
		}
		return TOKEN_PIPE, 1
	case '^':
		return TOKEN_CARET, 1
	case '.':
		if c1 == '.' {
			if c2 == '=' {
				return TOKEN_RANGE_INCL, 3
			}
			return TOKEN_RANGE, 2
		}
		return TOKEN_DOT, 1
	case ':':
		if c1 == ':' {
			return TOKEN_PATHSEP, 2
		}
		return TOKEN_COLON, 1
	case '@':
		return TOKEN_AT, 1
	case '(':
		return TOKEN_LPAREN, 1
	case ')':
		return TOKEN_RPAREN, 1
	case '{':
		return TOKEN_LBRACE, 1
	case '}':
		return TOKEN_RBRACE, 1
	case '[':
		return TOKEN_LBRACKET, 1
	case ']':
		return TOKEN_RBRACKET, 1
	case ',':
		return TOKEN_COMMA, 1
	case ';':
		return TOKEN_SEMICOLON, 1
	}
	return TOKEN_ERROR, 0
}

// readIdentifier reads an identifier, accepting Unicode letters
func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEOF() {
		if l.ch < utf8.RuneSelf {
			if !isIdentStart(l.ch) && !isDigit(l.ch) {
				break
			}
			l.readChar()
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		for i := 0; i < size; i++ {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

// readIllegal consumes one (possibly multi-byte) character as an error token
func (l *Lexer) readIllegal(start Position) Token {
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	for i := 0; i < size; i++ {
		l.readChar()
	}
	tok := l.errorToken(start, "unexpected character")
	tok.Literal = "unexpected character " + tok.Value
	return tok
}

func (l *Lexer) errorToken(start Position, msg string) Token {
	return Token{
		Type:    TOKEN_ERROR,
		Value:   l.input[start.Offset:l.position],
		Literal: msg,
		Pos:     start,
		End:     l.pos(),
	}
}

// Tokenize lexes the whole input, including the final EOF token
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TOKEN_EOF {
			return toks
		}
	}
}

func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
