package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Operator precedence levels, lowest to highest
const (
	PREC_LOWEST = iota
	PREC_PIPELINE
	PREC_OR
	PREC_AND
	PREC_EQUALITY
	PREC_COMPARISON
	PREC_RANGE
	PREC_BITOR
	PREC_BITXOR
	PREC_BITAND
	PREC_SHIFT
	PREC_ADDITIVE
	PREC_MULTIPLICATIVE
	PREC_POWER
	PREC_CAST
	PREC_UNARY
	PREC_POSTFIX
)

// InfixPrecedence returns the binding power of an infix operator token,
// or PREC_LOWEST if t is not one
func InfixPrecedence(t TokenType) int {
	switch t {
	case TOKEN_PIPELINE:
		return PREC_PIPELINE
	case TOKEN_OR:
		return PREC_OR
	case TOKEN_AND:
		return PREC_AND
	case TOKEN_EQ, TOKEN_NE:
		return PREC_EQUALITY
	case TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE:
		return PREC_COMPARISON
	case TOKEN_RANGE, TOKEN_RANGE_INCL:
		return PREC_RANGE
	case TOKEN_PIPE:
		return PREC_BITOR
	case TOKEN_CARET:
		return PREC_BITXOR
	case TOKEN_AMP:
		return PREC_BITAND
	case TOKEN_LSHIFT, TOKEN_RSHIFT:
		return PREC_SHIFT
	case TOKEN_PLUS, TOKEN_MINUS:
		return PREC_ADDITIVE
	case TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT:
		return PREC_MULTIPLICATIVE
	case TOKEN_POWER:
		return PREC_POWER
	case TOKEN_AS:
		return PREC_CAST
	}
	return PREC_LOWEST
}

// parseExpr parses a full expression
func (p *Parser) parseExpr() Expr {
	return p.parseBinary(PREC_PIPELINE)
}

// parseBinary implements precedence climbing. An infix operator that starts
// a new line ends the expression, except '|>' which may lead a line.
func (p *Parser) parseBinary(minPrec int) Expr {
	p.enter()
	defer p.leave()

	left := p.parseUnary()
	for {
		tok := p.cur()
		if p.breaksLine(tok) && tok.Type != TOKEN_PIPELINE {
			return left
		}
		prec := InfixPrecedence(tok.Type)
		if prec == PREC_LOWEST || prec < minPrec {
			return left
		}
		p.next()

		switch tok.Type {
		case TOKEN_AS:
			left = &CastExpr{Pos: left.Position(), Expr: left, Type: p.parseType()}
		case TOKEN_RANGE, TOKEN_RANGE_INCL:
			var end Expr
			if p.canStartExpr() {
				end = p.parseBinary(prec + 1)
			} else if tok.Type == TOKEN_RANGE_INCL {
				p.failExpected("an upper bound for '..='")
			}
			left = &RangeExpr{Pos: left.Position(), Start: left, End: end, Inclusive: tok.Type == TOKEN_RANGE_INCL}
		case TOKEN_PIPELINE:
			left = &PipelineExpr{Pos: left.Position(), Left: left, Right: p.parseBinary(prec + 1)}
		default:
			nextMin := prec + 1
			if tok.Type == TOKEN_POWER {
				nextMin = prec // right-associative
			}
			right := p.parseBinary(nextMin)
			left = &BinaryExpr{Pos: left.Position(), Left: left, Operator: tok.Type, Right: right}
		}
	}
}

// canStartExpr reports whether the current token can begin an operand on
// the current line
func (p *Parser) canStartExpr() bool {
	tok := p.cur()
	if p.breaksLine(tok) {
		return false
	}
	switch tok.Type {
	case TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_FSTRING, TOKEN_CHAR,
		TOKEN_TRUE, TOKEN_FALSE, TOKEN_IDENTIFIER,
		TOKEN_LPAREN, TOKEN_LBRACKET,
		TOKEN_MINUS, TOKEN_NOT, TOKEN_AMP, TOKEN_PIPE, TOKEN_OR,
		TOKEN_IF, TOKEN_MATCH, TOKEN_LOOP:
		return true
	}
	return false
}

// parseUnary parses prefix operators
func (p *Parser) parseUnary() Expr {
	tok := p.cur()
	switch tok.Type {
	case TOKEN_MINUS:
		p.next()
		// i64::MIN cannot be written as a positive literal
		if lit := p.cur(); lit.Type == TOKEN_INT && !isRadixLiteral(lit.Literal) && lit.Literal == "9223372036854775808" {
			p.next()
			return p.parsePostfix(&IntLit{Pos: tok.Pos, Value: math.MinInt64, Raw: "-" + lit.Value, Suffix: lit.Suffix})
		}
		p.enter()
		defer p.leave()
		return &UnaryExpr{Pos: tok.Pos, Operator: TOKEN_MINUS, Operand: p.parseUnary()}
	case TOKEN_NOT:
		p.next()
		p.enter()
		defer p.leave()
		return &UnaryExpr{Pos: tok.Pos, Operator: TOKEN_NOT, Operand: p.parseUnary()}
	case TOKEN_AMP:
		p.next()
		mutable := p.accept(TOKEN_MUT)
		p.enter()
		defer p.leave()
		return &UnaryExpr{Pos: tok.Pos, Operator: TOKEN_AMP, Mutable: mutable, Operand: p.parseUnary()}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix parses calls, indexing, field access and method calls.
// '(' and '[' must be on the same line as the expression they apply to;
// '.' may start a continuation line.
func (p *Parser) parsePostfix(expr Expr) Expr {
	for {
		tok := p.cur()
		switch tok.Type {
		case TOKEN_LPAREN:
			if p.breaksLine(tok) {
				return expr
			}
			expr = &CallExpr{Pos: expr.Position(), Callee: expr, Args: p.parseArgs()}
		case TOKEN_LBRACKET:
			if p.breaksLine(tok) {
				return expr
			}
			expr = p.parseIndex(expr)
		case TOKEN_DOT:
			p.next()
			name := p.cur()
			switch name.Type {
			case TOKEN_IDENTIFIER:
				p.next()
				if call := p.cur(); call.Type == TOKEN_LPAREN && !p.breaksLine(call) {
					expr = &MethodCallExpr{Pos: expr.Position(), Receiver: expr, Method: name.Value, Args: p.parseArgs()}
				} else {
					expr = &FieldExpr{Pos: expr.Position(), Expr: expr, Field: name.Value}
				}
			case TOKEN_INT:
				p.next()
				expr = &FieldExpr{Pos: expr.Position(), Expr: expr, Field: name.Literal}
			case TOKEN_FLOAT:
				// t.0.1 lexes as t . 0.1
				parts := strings.Split(name.Literal, ".")
				if len(parts) != 2 || name.Suffix != "" || strings.ContainsAny(name.Literal, "eE") {
					p.failExpected("a field name")
				}
				p.next()
				expr = &FieldExpr{Pos: expr.Position(), Expr: expr, Field: parts[0]}
				expr = &FieldExpr{Pos: expr.Position(), Expr: expr, Field: parts[1]}
			default:
				p.failExpected("a field or method name after '.'")
			}
		default:
			return expr
		}
	}
}

// parseArgs parses ( expr, ... )
func (p *Parser) parseArgs() []Expr {
	open := p.next()
	var args []Expr
	p.withGroup(func() {
		for !p.at(TOKEN_RPAREN) {
			args = append(args, p.parseExpr())
			if !p.accept(TOKEN_COMMA) {
				break
			}
		}
		p.expectClose(TOKEN_RPAREN, open)
	})
	return args
}

// parseIndex parses [index] or [start..end] after expr
func (p *Parser) parseIndex(expr Expr) Expr {
	open := p.next()
	var result Expr
	p.withGroup(func() {
		var index Expr
		if p.at(TOKEN_RANGE) || p.at(TOKEN_RANGE_INCL) {
			index = p.parsePrefixRange()
		} else {
			index = p.parseExpr()
		}
		p.expectClose(TOKEN_RBRACKET, open)
		if r, ok := index.(*RangeExpr); ok {
			result = &SliceExpr{Pos: expr.Position(), Expr: expr, Start: r.Start, End: r.End, Inclusive: r.Inclusive}
			return
		}
		result = &IndexExpr{Pos: expr.Position(), Expr: expr, Index: index}
	})
	return result
}

// parsePrefixRange parses ..end, ..=end or a bare ..
func (p *Parser) parsePrefixRange() Expr {
	tok := p.next()
	r := &RangeExpr{Pos: tok.Pos, Inclusive: tok.Type == TOKEN_RANGE_INCL}
	if p.canStartExpr() {
		r.End = p.parseBinary(PREC_RANGE + 1)
	} else if r.Inclusive {
		p.failExpected("an upper bound for '..='")
	}
	return r
}

// parsePrimary parses literals, names, groupings and keyword expressions
func (p *Parser) parsePrimary() Expr {
	tok := p.cur()
	switch tok.Type {
	case TOKEN_INT:
		p.next()
		return p.intLiteral(tok)
	case TOKEN_FLOAT:
		p.next()
		return p.floatLiteral(tok)
	case TOKEN_STRING:
		p.next()
		return &StringLit{Pos: tok.Pos, Value: tok.Literal}
	case TOKEN_FSTRING:
		p.next()
		return p.parseFString(tok)
	case TOKEN_CHAR:
		p.next()
		return &CharLit{Pos: tok.Pos, Value: []rune(tok.Literal)[0]}
	case TOKEN_TRUE, TOKEN_FALSE:
		p.next()
		return &BoolLit{Pos: tok.Pos, Value: tok.Type == TOKEN_TRUE}
	case TOKEN_IDENTIFIER:
		return p.parseNameExpr()
	case TOKEN_LPAREN:
		return p.parseParenOrTuple()
	case TOKEN_LBRACKET:
		return p.parseList()
	case TOKEN_LBRACE:
		if p.isMapLiteral() {
			return p.parseMap()
		}
		return p.parseBlock()
	case TOKEN_PIPE, TOKEN_OR:
		return p.parseClosure()
	case TOKEN_IF:
		return p.parseIf()
	case TOKEN_MATCH:
		return p.parseMatch()
	case TOKEN_LOOP:
		kw := p.next()
		return &LoopExpr{Pos: kw.Pos, Body: p.parseBlock()}
	case TOKEN_BREAK:
		p.next()
		e := &BreakExpr{Pos: tok.Pos}
		if p.canStartExpr() {
			e.Value = p.parseExpr()
		}
		return e
	case TOKEN_CONTINUE:
		p.next()
		return &ContinueExpr{Pos: tok.Pos}
	case TOKEN_RETURN:
		p.next()
		e := &ReturnExpr{Pos: tok.Pos}
		if p.canStartExpr() {
			e.Value = p.parseExpr()
		}
		return e
	case TOKEN_RANGE, TOKEN_RANGE_INCL:
		return p.parsePrefixRange()
	case TOKEN_WHILE, TOKEN_FOR:
		p.fail(tok.Span(), "%s loop cannot be used as a value", tok.Value)
	}
	p.failExpected("an expression")
	return nil
}

func isRadixLiteral(lit string) bool {
	return strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0o") || strings.HasPrefix(lit, "0b")
}

func (p *Parser) intLiteral(tok Token) Expr {
	base := 10
	digits := tok.Literal
	if isRadixLiteral(digits) {
		base = 0
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		p.fail(tok.Span(), "integer literal %s is out of range for i64", tok.Value)
	}
	return &IntLit{Pos: tok.Pos, Value: v, Raw: tok.Value, Suffix: tok.Suffix}
}

func (p *Parser) floatLiteral(tok Token) Expr {
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil && !math.IsInf(v, 0) {
		p.fail(tok.Span(), "invalid float literal %s", tok.Value)
	}
	return &FloatLit{Pos: tok.Pos, Value: v, Raw: tok.Value, Suffix: tok.Suffix}
}

// parseNameExpr parses an identifier, a path a::b::c, or a struct literal
func (p *Parser) parseNameExpr() Expr {
	tok := p.next()
	if tok.Value == "_" {
		p.fail(tok.Span(), "'_' can only be used in patterns")
	}
	segments := []string{tok.Value}
	for sep := p.cur(); sep.Type == TOKEN_PATHSEP && !p.breaksLine(sep); sep = p.cur() {
		p.next()
		segments = append(segments, p.expectIdent("path segment").Value)
	}
	if brace := p.cur(); brace.Type == TOKEN_LBRACE && !p.noStruct && !brace.NewlineBefore &&
		isTypeName(segments[len(segments)-1]) {
		return p.parseStructLit(tok.Pos, segments)
	}
	if len(segments) == 1 {
		return &Ident{Pos: tok.Pos, Name: tok.Value}
	}
	return &PathExpr{Pos: tok.Pos, Segments: segments}
}

// isTypeName reports whether name follows the capitalized type naming convention
func isTypeName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// parseStructLit parses Name { field: value, shorthand, ... }
func (p *Parser) parseStructLit(pos Position, path []string) Expr {
	lit := &StructLit{Pos: pos, Path: path}
	open := p.next()
	seen := map[string]bool{}
	p.parseSeparated(open, func() {
		name := p.expectIdent("field name in " + describeNames(path) + " literal")
		if seen[name.Value] {
			p.fail(name.Span(), "field '%s' specified more than once", name.Value)
		}
		seen[name.Value] = true
		init := &FieldInit{Pos: name.Pos, Name: name.Value}
		if p.accept(TOKEN_COLON) {
			init.Value = p.parseExpr()
		} else {
			init.Value = &Ident{Pos: name.Pos, Name: name.Value}
		}
		lit.Fields = append(lit.Fields, init)
	})
	return lit
}

// parseParenOrTuple parses (), (expr) and (a, b, ...)
func (p *Parser) parseParenOrTuple() Expr {
	open := p.next()
	var result Expr
	p.withGroup(func() {
		if p.at(TOKEN_RPAREN) {
			p.next()
			result = &UnitLit{Pos: open.Pos}
			return
		}
		first := p.parseExpr()
		if p.at(TOKEN_RPAREN) {
			p.next()
			result = first
			return
		}
		tuple := &TupleLit{Pos: open.Pos, Elements: []Expr{first}}
		for p.accept(TOKEN_COMMA) && !p.at(TOKEN_RPAREN) {
			tuple.Elements = append(tuple.Elements, p.parseExpr())
		}
		p.expectClose(TOKEN_RPAREN, open)
		result = tuple
	})
	return result
}

// parseList parses [a, b, ...]
func (p *Parser) parseList() Expr {
	open := p.next()
	list := &ListLit{Pos: open.Pos}
	p.withGroup(func() {
		for !p.at(TOKEN_RBRACKET) {
			list.Elements = append(list.Elements, p.parseExpr())
			if !p.accept(TOKEN_COMMA) {
				break
			}
		}
		p.expectClose(TOKEN_RBRACKET, open)
	})
	return list
}

// isMapLiteral decides between a map literal and a block at '{'.
// A map starts with a literal or name key followed by ':'.
func (p *Parser) isMapLiteral() bool {
	key := p.peek(1)
	switch key.Type {
	case TOKEN_STRING, TOKEN_INT, TOKEN_CHAR, TOKEN_TRUE, TOKEN_FALSE, TOKEN_IDENTIFIER, TOKEN_FSTRING:
		return p.peek(2).Type == TOKEN_COLON
	case TOKEN_MINUS:
		return p.peek(2).Type == TOKEN_INT && p.peek(3).Type == TOKEN_COLON
	}
	return false
}

// parseMap parses {key: value, ...}; a bare name key is a string key
func (p *Parser) parseMap() Expr {
	open := p.next()
	m := &MapLit{Pos: open.Pos}
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()
	p.parseSeparated(open, func() {
		var key Expr
		if tok := p.cur(); tok.Type == TOKEN_IDENTIFIER && p.peek(1).Type == TOKEN_COLON {
			p.next()
			key = &StringLit{Pos: tok.Pos, Value: tok.Value}
		} else {
			key = p.parseExpr()
		}
		p.expect(TOKEN_COLON)
		m.Entries = append(m.Entries, &MapEntry{Key: key, Value: p.parseExpr()})
	})
	return m
}

// parseClosure parses |params| body or || body
func (p *Parser) parseClosure() Expr {
	open := p.next()
	c := &ClosureExpr{Pos: open.Pos}
	if open.Type == TOKEN_PIPE {
		p.withGroup(func() {
			for !p.at(TOKEN_PIPE) {
				c.Params = append(c.Params, p.parseParam())
				if !p.accept(TOKEN_COMMA) {
					break
				}
			}
			p.expectClose(TOKEN_PIPE, open)
		})
	}
	if p.accept(TOKEN_ARROW) {
		c.ReturnType = p.parseType()
		c.Body = p.parseBlock()
		return c
	}
	c.Body = p.parseExprOrAssign()
	return c
}

// parseExprOrAssign parses an expression where an assignment is also
// allowed (closure and match arm bodies). An assignment is wrapped in a
// block so the result is still an expression.
func (p *Parser) parseExprOrAssign() Expr {
	start := p.cur()
	expr := p.parseExpr()
	if op := p.cur(); IsAssignOp(op.Type) && !p.breaksLine(op) {
		assign := p.finishAssign(expr, start.Pos)
		return &BlockExpr{Pos: start.Pos, Stmts: []Stmt{assign}}
	}
	return expr
}

// parseIf parses if cond { } [else if ... | else { }]
func (p *Parser) parseIf() Expr {
	kw := p.next()
	e := &IfExpr{Pos: kw.Pos}
	e.Condition = p.parseHeadExpr()
	e.Then = p.parseBlock()
	if p.at(TOKEN_ELSE) {
		p.next()
		if p.at(TOKEN_IF) {
			e.Else = p.parseIf()
		} else {
			e.Else = p.parseBlock()
		}
	}
	return e
}

// parseMatch parses match subject { pattern [if guard] => body, ... }
func (p *Parser) parseMatch() Expr {
	kw := p.next()
	m := &MatchExpr{Pos: kw.Pos}
	m.Subject = p.parseHeadExpr()
	open := p.expect(TOKEN_LBRACE)

	noStruct, ignoreNewlines := p.noStruct, p.ignoreNewlines
	p.noStruct, p.ignoreNewlines = false, false
	defer func() { p.noStruct, p.ignoreNewlines = noStruct, ignoreNewlines }()

	for {
		if p.accept(TOKEN_RBRACE) {
			return m
		}
		if p.at(TOKEN_EOF) {
			p.fail(p.cur().Span(), "expected '}' to close the match opened at %s", open.Pos)
		}
		arm := &MatchArm{Pos: p.cur().Pos}
		arm.Pattern = p.parsePattern()
		if p.accept(TOKEN_IF) {
			arm.Guard = p.parseExpr()
		}
		if !p.at(TOKEN_FATARROW) {
			p.failExpected("'=>' after match pattern")
		}
		p.next()
		arm.Body = p.parseExprOrAssign()
		m.Arms = append(m.Arms, arm)

		if p.accept(TOKEN_COMMA) || p.at(TOKEN_RBRACE) || p.cur().NewlineBefore || p.prev.Type == TOKEN_RBRACE {
			continue
		}
		p.failExpected("',' or a line break between match arms")
	}
}

// parseFString splits f-string text into literal and interpolated parts.
// {{ and }} are literal braces; {expr:fmt} carries a format spec.
func (p *Parser) parseFString(tok Token) Expr {
	fs := &FStringExpr{Pos: tok.Pos}
	s := tok.Literal
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			fs.Parts = append(fs.Parts, FStringPart{Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			text.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			text.WriteByte('}')
			i += 2
		case c == '}':
			p.fail(tok.Span(), "unmatched '}' in f-string; write '}}' for a literal brace")
		case c == '{':
			end := matchingBrace(s, i)
			if end < 0 {
				p.fail(tok.Span(), "unclosed '{' in f-string")
			}
			inner, format := splitFormatSpec(s[i+1 : end])
			if strings.TrimSpace(inner) == "" {
				p.fail(tok.Span(), "empty expression in f-string")
			}
			sub := NewParser(inner, WithMaxDepth(p.maxDepth-p.depth))
			sub.lexer.line = tok.Pos.Line
			sub.lexer.column = tok.Pos.Column + 2 + i + 1
			expr, err := sub.parseStandaloneExpr()
			if err != nil {
				p.fail(tok.Span(), "in f-string expression %q: %s", inner, firstMessage(err))
			}
			flush()
			fs.Parts = append(fs.Parts, FStringPart{Expr: expr, Format: format})
			i = end + 1
		default:
			text.WriteByte(c)
			i++
		}
	}
	flush()
	return fs
}

// matchingBrace finds the '}' closing the '{' at s[open], skipping nested
// braces and string literals
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			for i++; i < len(s) && s[i] != '"'; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitFormatSpec separates "expr:spec" where spec is "?", ".N" or ".N?"
func splitFormatSpec(s string) (string, string) {
	idx := strings.LastIndexByte(s, ':')
	if idx <= 0 || s[idx-1] == ':' {
		return s, ""
	}
	spec := s[idx+1:]
	if IsFormatSpec(spec) {
		return s[:idx], spec
	}
	return s, ""
}

// IsFormatSpec reports whether spec is a supported format specification
func IsFormatSpec(spec string) bool {
	if spec == "?" {
		return true
	}
	if !strings.HasPrefix(spec, ".") {
		return false
	}
	digits := strings.TrimSuffix(spec[1:], "?")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func firstMessage(err error) string {
	if ds, ok := err.(Diagnostics); ok && len(ds) > 0 {
		return ds[0].Message
	}
	return err.Error()
}
