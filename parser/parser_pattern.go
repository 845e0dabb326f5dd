package parser

// parsePattern parses a pattern, including alternatives a | b
func (p *Parser) parsePattern() Pattern {
	p.enter()
	defer p.leave()

	first := p.parsePatternPrimary()
	if !p.at(TOKEN_PIPE) {
		return first
	}
	or := &OrPattern{Pos: first.Position(), Alternatives: []Pattern{first}}
	for p.accept(TOKEN_PIPE) {
		or.Alternatives = append(or.Alternatives, p.parsePatternPrimary())
	}
	return or
}

func (p *Parser) parsePatternPrimary() Pattern {
	tok := p.cur()
	switch tok.Type {
	case TOKEN_IDENTIFIER:
		if tok.Value == "_" {
			p.next()
			return &WildcardPattern{Pos: tok.Pos}
		}
		return p.parseNamePattern()
	case TOKEN_MUT:
		p.next()
		name := p.expectIdent("binding name after 'mut'")
		return &IdentPattern{Pos: tok.Pos, Name: name.Value, Mutable: true}
	case TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_CHAR, TOKEN_TRUE, TOKEN_FALSE, TOKEN_MINUS:
		lit := p.parseLiteralPatternValue()
		if p.at(TOKEN_RANGE) || p.at(TOKEN_RANGE_INCL) {
			op := p.next()
			end := p.parseLiteralPatternValue()
			return &RangePattern{Pos: tok.Pos, Start: lit, End: end, Inclusive: op.Type == TOKEN_RANGE_INCL}
		}
		return &LiteralPattern{Pos: tok.Pos, Value: lit}
	case TOKEN_LPAREN:
		return p.parseTuplePattern()
	case TOKEN_LBRACKET:
		return p.parseListPattern()
	case TOKEN_RANGE, TOKEN_RANGE_INCL:
		p.fail(tok.Span(), "'..' is only allowed inside a list or struct pattern")
	}
	p.failExpected("a pattern")
	return nil
}

// parseLiteralPatternValue parses a literal, allowing a leading '-' on numbers
func (p *Parser) parseLiteralPatternValue() Expr {
	tok := p.next()
	switch tok.Type {
	case TOKEN_INT:
		return p.intLiteral(tok)
	case TOKEN_FLOAT:
		return p.floatLiteral(tok)
	case TOKEN_STRING:
		return &StringLit{Pos: tok.Pos, Value: tok.Literal}
	case TOKEN_CHAR:
		return &CharLit{Pos: tok.Pos, Value: []rune(tok.Literal)[0]}
	case TOKEN_TRUE, TOKEN_FALSE:
		return &BoolLit{Pos: tok.Pos, Value: tok.Type == TOKEN_TRUE}
	case TOKEN_MINUS:
		num := p.next()
		switch num.Type {
		case TOKEN_INT:
			if num.Literal == "9223372036854775808" {
				return &IntLit{Pos: tok.Pos, Value: -1 << 63, Raw: "-" + num.Value, Suffix: num.Suffix}
			}
			lit := p.intLiteral(num).(*IntLit)
			return &IntLit{Pos: tok.Pos, Value: -lit.Value, Raw: "-" + lit.Raw, Suffix: lit.Suffix}
		case TOKEN_FLOAT:
			lit := p.floatLiteral(num).(*FloatLit)
			return &FloatLit{Pos: tok.Pos, Value: -lit.Value, Raw: "-" + lit.Raw, Suffix: lit.Suffix}
		}
		p.fail(num.Span(), "expected a number after '-' in pattern, found %s", num.Describe())
	}
	p.fail(tok.Span(), "expected a literal pattern, found %s", tok.Describe())
	return nil
}

// parseNamePattern parses bindings, variants and struct patterns
func (p *Parser) parseNamePattern() Pattern {
	tok := p.next()
	path := []string{tok.Value}
	for p.accept(TOKEN_PATHSEP) {
		path = append(path, p.expectIdent("path segment").Value)
	}

	switch {
	case p.at(TOKEN_LPAREN):
		open := p.next()
		v := &VariantPattern{Pos: tok.Pos, Path: path}
		p.withGroup(func() {
			for !p.at(TOKEN_RPAREN) {
				v.Args = append(v.Args, p.parsePattern())
				if !p.accept(TOKEN_COMMA) {
					break
				}
			}
			p.expectClose(TOKEN_RPAREN, open)
		})
		return v
	case p.at(TOKEN_LBRACE) && isTypeName(path[len(path)-1]):
		return p.parseStructPattern(tok.Pos, path)
	case len(path) > 1 || tok.Value == "None":
		return &VariantPattern{Pos: tok.Pos, Path: path}
	case p.at(TOKEN_AT):
		p.next()
		return &IdentPattern{Pos: tok.Pos, Name: tok.Value, Sub: p.parsePatternPrimary()}
	}
	return &IdentPattern{Pos: tok.Pos, Name: tok.Value}
}

// parseStructPattern parses Name { field: pat, shorthand, .. }
func (p *Parser) parseStructPattern(pos Position, path []string) Pattern {
	sp := &StructPattern{Pos: pos, Path: path}
	open := p.next()
	p.parseSeparated(open, func() {
		if p.accept(TOKEN_RANGE) {
			sp.Rest = true
			return
		}
		if sp.Rest {
			p.fail(p.cur().Span(), "'..' must be the last element of a struct pattern")
		}
		mutable := p.accept(TOKEN_MUT)
		name := p.expectIdent("field name")
		fp := &FieldPattern{Name: name.Value}
		if !mutable && p.accept(TOKEN_COLON) {
			fp.Pattern = p.parsePattern()
		} else {
			fp.Pattern = &IdentPattern{Pos: name.Pos, Name: name.Value, Mutable: mutable}
		}
		sp.Fields = append(sp.Fields, fp)
	})
	return sp
}

// parseTuplePattern parses (), (pat) and (a, b, ...)
func (p *Parser) parseTuplePattern() Pattern {
	open := p.next()
	var result Pattern
	p.withGroup(func() {
		if p.at(TOKEN_RPAREN) {
			p.next()
			result = &LiteralPattern{Pos: open.Pos, Value: &UnitLit{Pos: open.Pos}}
			return
		}
		first := p.parsePattern()
		if p.at(TOKEN_RPAREN) {
			p.next()
			result = first
			return
		}
		tp := &TuplePattern{Pos: open.Pos, Elements: []Pattern{first}}
		for p.accept(TOKEN_COMMA) && !p.at(TOKEN_RPAREN) {
			tp.Elements = append(tp.Elements, p.parsePattern())
		}
		p.expectClose(TOKEN_RPAREN, open)
		result = tp
	})
	return result
}

// parseListPattern parses [a, b], [first, ..rest], [.., last], [x, rest @ ..]
func (p *Parser) parseListPattern() Pattern {
	open := p.next()
	lp := &ListPattern{Pos: open.Pos}
	p.withGroup(func() {
		rest := false
		for !p.at(TOKEN_RBRACKET) {
			el := p.parseListPatternElem()
			if _, ok := el.(*RestPattern); ok {
				if rest {
					p.fail(Span{Start: el.Position(), End: p.cur().Pos}, "a list pattern may contain only one '..'")
				}
				rest = true
			}
			lp.Elements = append(lp.Elements, el)
			if !p.accept(TOKEN_COMMA) {
				break
			}
		}
		p.expectClose(TOKEN_RBRACKET, open)
	})
	return lp
}

func (p *Parser) parseListPatternElem() Pattern {
	tok := p.cur()
	if tok.Type == TOKEN_RANGE {
		p.next()
		rest := &RestPattern{Pos: tok.Pos}
		if name := p.cur(); name.Type == TOKEN_IDENTIFIER && !name.NewlineBefore {
			p.next()
			rest.Name = name.Value
		}
		return rest
	}
	if tok.Type == TOKEN_IDENTIFIER && p.peek(1).Type == TOKEN_AT && p.peek(2).Type == TOKEN_RANGE {
		p.next()
		p.next()
		p.next()
		return &RestPattern{Pos: tok.Pos, Name: tok.Value}
	}
	return p.parsePattern()
}

// parseType parses a type annotation
func (p *Parser) parseType() TypeExpr {
	p.enter()
	defer p.leave()

	tok := p.cur()
	switch tok.Type {
	case TOKEN_AMP:
		p.next()
		mutable := p.accept(TOKEN_MUT)
		return &RefType{Pos: tok.Pos, Mutable: mutable, Elem: p.parseType()}
	case TOKEN_LBRACKET:
		open := p.next()
		var elem TypeExpr
		p.withGroup(func() {
			elem = p.parseType()
			p.expectClose(TOKEN_RBRACKET, open)
		})
		return &ListType{Pos: tok.Pos, Elem: elem}
	case TOKEN_LPAREN:
		open := p.next()
		tt := &TupleType{Pos: tok.Pos}
		trailingComma := false
		p.withGroup(func() {
			for !p.at(TOKEN_RPAREN) {
				tt.Elements = append(tt.Elements, p.parseType())
				if trailingComma = p.accept(TOKEN_COMMA); !trailingComma {
					break
				}
			}
			p.expectClose(TOKEN_RPAREN, open)
		})
		if len(tt.Elements) == 1 && !trailingComma {
			return tt.Elements[0]
		}
		return tt
	case TOKEN_FUN:
		p.next()
		return p.parseFuncType(tok.Pos)
	case TOKEN_IMPL:
		// impl Fn(A) -> R
		p.next()
		return p.parseType()
	case TOKEN_IDENTIFIER:
		if (tok.Value == "Fn" || tok.Value == "FnMut" || tok.Value == "FnOnce") && p.peek(1).Type == TOKEN_LPAREN {
			p.next()
			return p.parseFuncType(tok.Pos)
		}
		p.next()
		nt := &NamedType{Pos: tok.Pos, Name: tok.Value}
		for p.accept(TOKEN_PATHSEP) {
			nt.Name += "::" + p.expectIdent("type name").Value
		}
		if p.accept(TOKEN_LT) {
			for !p.at(TOKEN_GT) && !p.at(TOKEN_RSHIFT) {
				nt.Args = append(nt.Args, p.parseType())
				if !p.accept(TOKEN_COMMA) {
					break
				}
			}
			p.expectCloseAngle()
		}
		return nt
	}
	p.failExpected("a type")
	return nil
}

// parseFuncType parses (A, B) [-> R] after fn / Fn
func (p *Parser) parseFuncType(pos Position) TypeExpr {
	ft := &FuncType{Pos: pos}
	open := p.expect(TOKEN_LPAREN)
	p.withGroup(func() {
		for !p.at(TOKEN_RPAREN) {
			ft.Params = append(ft.Params, p.parseType())
			if !p.accept(TOKEN_COMMA) {
				break
			}
		}
		p.expectClose(TOKEN_RPAREN, open)
	})
	if p.accept(TOKEN_ARROW) {
		ft.Return = p.parseType()
	}
	return ft
}
