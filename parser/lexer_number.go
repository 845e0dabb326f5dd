package parser

import "strings"

var intSuffixes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
}

var floatSuffixes = map[string]bool{"f32": true, "f64": true}

// readNumber reads an integer or float literal. Underscore separators are
// dropped from Literal; a type suffix is split into Suffix.
func (l *Lexer) readNumber(start Position) Token {
	isFloat := false
	var digits strings.Builder

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'o' || l.peekChar() == 'b') {
		prefix := l.peekChar()
		digits.WriteByte('0')
		digits.WriteByte(prefix)
		l.readChar()
		l.readChar()
		valid := isHexDigit
		switch prefix {
		case 'o':
			valid = func(c byte) bool { return '0' <= c && c <= '7' }
		case 'b':
			valid = func(c byte) bool { return c == '0' || c == '1' }
		}
		n := l.readDigits(&digits, valid)
		if n == 0 {
			return l.errorToken(start, "missing digits after integer base prefix")
		}
		if isDigit(l.ch) {
			l.readDigits(&digits, isDigit)
			return l.errorToken(start, "invalid digit for a base "+baseName(prefix)+" literal")
		}
		return l.numberSuffix(start, digits.String(), false)
	}

	l.readDigits(&digits, isDigit)

	// A '.' only starts a fraction when a digit follows; "1..2" is a range
	// and "1.max(2)" is a method call.
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		digits.WriteByte('.')
		l.readChar()
		l.readDigits(&digits, isDigit)
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(1))) {
			isFloat = true
			digits.WriteByte('e')
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				digits.WriteByte(l.ch)
				l.readChar()
			}
			l.readDigits(&digits, isDigit)
		} else if next == '+' || next == '-' || !isIdentStart(next) {
			l.readChar()
			return l.errorToken(start, "missing digits in float exponent")
		}
	}

	return l.numberSuffix(start, digits.String(), isFloat)
}

// readDigits consumes digits accepted by valid, skipping '_' separators
func (l *Lexer) readDigits(b *strings.Builder, valid func(byte) bool) int {
	n := 0
	for !l.atEOF() {
		if l.ch == '_' {
			l.readChar()
			continue
		}
		if !valid(l.ch) {
			break
		}
		b.WriteByte(l.ch)
		l.readChar()
		n++
	}
	return n
}

func (l *Lexer) numberSuffix(start Position, digits string, isFloat bool) Token {
	suffix := ""
	if isIdentStart(l.ch) {
		suffix = l.readIdentifier()
		switch {
		case floatSuffixes[suffix]:
			if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0o") || strings.HasPrefix(digits, "0b") {
				return l.errorToken(start, "float suffix on a non-decimal literal")
			}
			isFloat = true
		case intSuffixes[suffix]:
			if isFloat {
				return l.errorToken(start, "integer suffix '"+suffix+"' on a float literal")
			}
		default:
			return l.errorToken(start, "invalid suffix '"+suffix+"' for number literal")
		}
	}

	tok := Token{
		Type:    TOKEN_INT,
		Value:   l.input[start.Offset:l.position],
		Literal: digits,
		Suffix:  suffix,
		Pos:     start,
		End:     l.pos(),
	}
	if isFloat {
		tok.Type = TOKEN_FLOAT
	}
	return tok
}

func baseName(prefix byte) string {
	switch prefix {
	case 'x':
		return "16"
	case 'o':
		return "8"
	}
	return "2"
}
