package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// readString reads a string literal with escape sequences.
// For f-strings the braces are kept verbatim; the parser splits them.
func (l *Lexer) readString(start Position, typ TokenType) Token {
	l.readChar() // skip opening "

	var result strings.Builder
	for l.ch != '"' {
		if l.atEOF() {
			return l.errorToken(start, "unterminated string literal")
		}
		if l.ch == '\\' {
			escStart := l.pos()
			r, ok := l.readEscape()
			if !ok {
				return l.badEscape(start, escStart, '"')
			}
			if typ == TOKEN_FSTRING && (r == '{' || r == '}') {
				// keep an escaped brace distinguishable from an interpolation
				result.WriteRune(r)
			}
			result.WriteRune(r)
			continue
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar() // skip closing "

	return Token{
		Type:    typ,
		Value:   l.input[start.Offset:l.position], // the full quoted string
		Literal: result.String(),                 // the decoded value
		Pos:     start,
		End:     l.pos(),
	}
}

// readRawString reads r"..." or r#"..."# without processing escapes
func (l *Lexer) readRawString(start Position) Token {
	l.readChar() // skip r
	hashes := 0
	for l.ch == '#' {
		hashes++
		l.readChar()
	}
	l.readChar() // skip opening "
	closing := "\"" + strings.Repeat("#", hashes)

	bodyStart := l.position
	for {
		if l.atEOF() {
			return l.errorToken(start, "unterminated raw string literal")
		}
		if strings.HasPrefix(l.input[l.position:], closing) {
			break
		}
		l.readChar()
	}
	body := l.input[bodyStart:l.position]
	for range closing {
		l.readChar()
	}
	return Token{
		Type:    TOKEN_STRING,
		Value:   l.input[start.Offset:l.position],
		Literal: body,
		Pos:     start,
		End:     l.pos(),
	}
}

// readCharLiteral reads 'c' including escapes
func (l *Lexer) readCharLiteral(start Position) Token {
	l.readChar() // skip opening '

	var r rune
	switch {
	case l.atEOF() || l.ch == '\n':
		return l.errorToken(start, "unterminated character literal")
	case l.ch == '\'':
		l.readChar()
		return l.errorToken(start, "empty character literal")
	case l.ch == '\\':
		escStart := l.pos()
		var ok bool
		if r, ok = l.readEscape(); !ok {
			return l.badEscape(start, escStart, '\'')
		}
	default:
		var size int
		r, size = utf8.DecodeRuneInString(l.input[l.position:])
		for i := 0; i < size; i++ {
			l.readChar()
		}
	}

	if l.ch != '\'' {
		for !l.atEOF() && l.ch != '\'' && l.ch != '\n' {
			l.readChar()
		}
		if l.ch == '\'' {
			l.readChar()
			return l.errorToken(start, "character literal may only contain one character")
		}
		return l.errorToken(start, "unterminated character literal")
	}
	l.readChar() // skip closing '

	return Token{
		Type:    TOKEN_CHAR,
		Value:   l.input[start.Offset:l.position],
		Literal: string(r),
		Pos:     start,
		End:     l.pos(),
	}
}

// readEscape decodes one escape sequence starting at the backslash
func (l *Lexer) readEscape() (rune, bool) {
	l.readChar() // skip backslash
	c := l.ch
	if l.atEOF() {
		return 0, false
	}
	l.readChar()
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case '{':
		return '{', true
	case '}':
		return '}', true
	case 'x':
		hex := l.takeWhile(isHexDigit, 2)
		if len(hex) != 2 {
			return 0, false
		}
		v, _ := strconv.ParseUint(hex, 16, 8)
		if v > 0x7f {
			return 0, false
		}
		return rune(v), true
	case 'u':
		if l.ch != '{' {
			return 0, false
		}
		l.readChar()
		hex := l.takeWhile(isHexDigit, 6)
		if l.ch != '}' || hex == "" {
			return 0, false
		}
		l.readChar()
		v, _ := strconv.ParseUint(hex, 16, 32)
		if !utf8.ValidRune(rune(v)) {
			return 0, false
		}
		return rune(v), true
	}
	return 0, false
}

// badEscape skips the rest of a literal after an invalid escape so lexing
// resumes after the closing quote
func (l *Lexer) badEscape(start, escStart Position, quote byte) Token {
	esc := l.input[escStart.Offset:l.position]
	for !l.atEOF() && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	}
	return l.errorToken(start, "unknown escape sequence "+strconv.Quote(esc))
}

func (l *Lexer) takeWhile(pred func(byte) bool, limit int) string {
	start := l.position
	for !l.atEOF() && pred(l.ch) && l.position-start < limit {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
