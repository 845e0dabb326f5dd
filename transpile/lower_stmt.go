package transpile

import (
	"ruchy/parser"
)

// lowerStmts emits a statement list into the current block. When
// wantValue is set, a trailing expression without ';' is emitted as the
// block's value; the returned type is that value's type.
func (l *Lowerer) lowerStmts(stmts []parser.Stmt, wantValue bool) *Type {
	result := tUnit
	for i, s := range stmts {
		tail := wantValue && i == len(stmts)-1
		if t := l.lowerStmt(s, tail); tail {
			result = t
		}
	}
	return result
}

// lowerStmt emits one statement and returns its value type when it is a
// tail expression
func (l *Lowerer) lowerStmt(s parser.Stmt, tail bool) *Type {
	switch s := s.(type) {
	case *parser.ExprStmt:
		var code string
		var t *Type
		if c, ok := s.Expr.(*parser.ClosureExpr); ok && tail && !l.fn.inMain {
			code, t = l.lowerClosure(c, true)
		} else {
			code, t = l.expr(s.Expr)
		}
		if tail && !s.Semi {
			l.out.line("%s", code)
			return t
		}
		l.out.line("%s;", code)
		return tUnit
	case *parser.LetStmt:
		l.lowerLet(s)
	case *parser.AssignStmt:
		l.lowerAssign(s)
	case *parser.WhileStmt:
		cond, ct := l.place(s.Condition)
		l.requireBool(s.Condition, ct, "while")
		body := l.loopBody(s.Body, nil)
		l.out.line("while %s %s", cond, body)
	case *parser.ForStmt:
		l.lowerFor(s)
	default:
		if parser.IsItem(s) {
			l.fail(s, "items must be declared at module level")
		}
		l.fail(s, "unsupported statement %T", s)
	}
	return tUnit
}

// requireBool rejects conditions statically known not to be bool
func (l *Lowerer) requireBool(node parser.Node, t *Type, what string) {
	if known(t) && t.deref().Kind != KBool && t.Kind != KParam {
		l.fail(node, "mismatched types: %s condition must be bool", what)
	}
}

// ============================================================================
// BINDINGS
// ============================================================================

func (l *Lowerer) lowerLet(s *parser.LetStmt) {
	var declared *Type
	if s.Type != nil {
		declared = l.mapType(s.Type)
	}
	code, t := l.expr(s.Value)
	if declared != nil {
		if known(t) && t.isPrimitive() && declared.isPrimitive() && t.Kind != declared.Kind {
			l.fail(s.Value, "mismatched types: expected `%s`, found `%s`", declared.Rust(), t.Rust())
		}
		t = l.unify(declared, t)
	}

	if id, ok := s.Pattern.(*parser.IdentPattern); ok && id.Sub == nil {
		l.checkAlias(s, id.Name)
		mut := ""
		if id.Mutable || l.fn.mutated[id.Name] {
			mut = "mut "
		}
		if c, ok := s.Value.(*parser.ClosureExpr); ok && l.closureAssigns(c) {
			mut = "mut "
		}
		if declared != nil {
			l.out.line("let %s%s: %s = %s;", mut, id.Name, declared.Rust(), code)
		} else {
			l.out.line("let %s%s = %s;", mut, id.Name, code)
		}
		l.scope.define(id.Name, &binding{typ: t, mutable: mut != ""})
		return
	}

	if _, ok := s.Pattern.(*parser.WildcardPattern); ok {
		l.out.line("let _ = %s;", code)
		return
	}

	if irrefutable(s.Pattern) {
		pat := l.pattern(s.Pattern, t, false)
		if declared != nil {
			l.out.line("let %s: %s = %s;", pat, declared.Rust(), code)
		} else {
			l.out.line("let %s = %s;", pat, code)
		}
		return
	}

	// refutable: let-else, re-owning slice bindings
	if lp, ok := s.Pattern.(*parser.ListPattern); ok {
		scrutinee, _ := l.place(s.Value)
		pat := l.pattern(lp, t, true)
		l.out.line("let %s = %s.as_slice() else { panic!(\"no pattern matched\") };", pat, scrutinee)
		l.reownSlice(lp)
		return
	}
	if isStringType(t) && hasStringLiteral(s.Pattern) {
		scrutinee, _ := l.place(s.Value)
		code = scrutinee + ".as_str()"
	}
	pat := l.pattern(s.Pattern, t, true)
	l.out.line("let %s = %s else { panic!(\"no pattern matched\") };", pat, code)
}

// checkAlias rejects `let b = a` on a shared collection when either side
// is mutated, since the two names would stop sharing the value
func (l *Lowerer) checkAlias(s *parser.LetStmt, name string) {
	src, ok := s.Value.(*parser.Ident)
	if !ok {
		return
	}
	t := l.typeOf(src.Name)
	if !t.isCollection() || t.Ref || t.MutRef {
		return
	}
	if l.fn.mutated[src.Name] || l.fn.mutated[name] {
		l.fail(s, "`%s` aliases `%s`, which is mutated; shared aliasing has no Rust equivalent (clone it explicitly)", name, src.Name)
	}
}

// reownSlice rebinds names bound by a slice pattern as owned values
func (l *Lowerer) reownSlice(lp *parser.ListPattern) {
	for _, el := range lp.Elements {
		switch el := el.(type) {
		case *parser.RestPattern:
			if el.Name != "" {
				l.out.line("let %s%s = %s.to_vec();", l.mutPrefix(el.Name), el.Name, el.Name)
			}
		default:
			for _, name := range parser.PatternBindings(el) {
				l.out.line("let %s%s = %s.clone();", l.mutPrefix(name), name, name)
			}
		}
	}
}

func (l *Lowerer) mutPrefix(name string) string {
	if l.fn != nil && l.fn.mutated[name] {
		return "mut "
	}
	return ""
}

// irrefutable reports whether a let pattern always matches
func irrefutable(p parser.Pattern) bool {
	switch p := p.(type) {
	case *parser.WildcardPattern:
		return true
	case *parser.IdentPattern:
		return p.Sub == nil || irrefutable(p.Sub)
	case *parser.TuplePattern:
		for _, el := range p.Elements {
			if !irrefutable(el) {
				return false
			}
		}
		return true
	case *parser.StructPattern:
		for _, f := range p.Fields {
			if !irrefutable(f.Pattern) {
				return false
			}
		}
		return true
	}
	return false
}

func (l *Lowerer) lowerAssign(s *parser.AssignStmt) {
	op := parser.OperatorText(s.Operator)
	switch target := s.Target.(type) {
	case *parser.Ident:
		b, ok := l.scope.lookup(target.Name)
		if !ok || b.item {
			if l.fn.inMain && l.scope.parent != nil && l.scope.parent.parent == nil && s.Operator == parser.TOKEN_ASSIGN {
				code, t := l.expr(s.Value)
				l.out.line("let mut %s = %s;", target.Name, code)
				l.scope.define(target.Name, &binding{typ: t, mutable: true})
				return
			}
			l.fail(target, "cannot find value `%s` in this scope", target.Name)
		}
		code, t := l.expr(s.Value)
		if s.Operator == parser.TOKEN_PLUS_ASSIGN && isStringType(b.typ) {
			l.requireString(s.Value, t)
			l.out.line("%s.push_str(&%s);", target.Name, code)
			return
		}
		if b.typ.MutRef {
			if b.typ.deref().IsCopy() {
				l.fail(target, "assignment through `&mut %s` does not reach the caller", b.typ.deref().Rust())
			}
			l.out.line("*%s %s %s;", target.Name, op, code)
			return
		}
		if s.Operator == parser.TOKEN_ASSIGN && !known(b.typ) {
			b.typ = t
		}
		l.out.line("%s %s %s;", target.Name, op, code)

	case *parser.IndexExpr:
		container, ct := l.place(target.Expr)
		code, vt := l.expr(s.Value)
		switch ct.deref().Kind {
		case KMap:
			key, _ := l.expr(target.Index)
			if s.Operator == parser.TOKEN_ASSIGN {
				l.out.line("%s.insert(%s, %s);", container, key, code)
				l.refineMap(ct, nil, vt)
				return
			}
			l.out.line("*%s.get_mut(&%s).unwrap() %s %s;", container, key, op, code)
		case KString:
			l.fail(target, "cannot assign to a string index")
		default:
			idx, _ := l.place(target.Index)
			l.out.line("%s[%s] %s %s;", container, usize(target.Index, idx), op, code)
		}

	case *parser.FieldExpr:
		place, ft := l.place(target)
		code, t := l.expr(s.Value)
		if s.Operator == parser.TOKEN_PLUS_ASSIGN && isStringType(ft) {
			l.requireString(s.Value, t)
			l.out.line("%s.push_str(&%s);", place, code)
			return
		}
		l.out.line("%s %s %s;", place, op, code)

	default:
		l.fail(s.Target, "invalid left-hand side of assignment")
	}
}

// requireString rejects appending anything but a string, which the
// interpreter refuses too
func (l *Lowerer) requireString(v parser.Expr, t *Type) {
	if known(t) && t.deref().Kind != KString && t.Kind != KParam {
		l.fail(v, "cannot apply `+=` to string and %s", t.deref().Rust())
	}
}

// ============================================================================
// LOOPS
// ============================================================================

func (l *Lowerer) lowerFor(s *parser.ForStmt) {
	iter, it := l.expr(s.Iter)
	var elem *Type
	switch it.deref().Kind {
	case KString:
		iter += ".chars()"
		elem = tChar
	case KMap:
		elem = tupleOf(it.Key.or(tUnknown), it.elem())
	case KList, KSet, KRange:
		elem = it.elem()
	default:
		elem = tUnknown
	}
	var pat string
	body := l.loopBody(s.Body, func() {
		pat = l.pattern(s.Pattern, elem, false)
		if !irrefutable(s.Pattern) {
			l.fail(s.Pattern, "refutable pattern in for loop")
		}
	})
	l.out.line("for %s in %s %s", pat, iter, body)
}

// loopBody lowers a loop body in its own scope; bind declares the loop
// variables first
func (l *Lowerer) loopBody(b *parser.BlockExpr, bind func()) string {
	l.loops = append(l.loops, nil)
	defer func() { l.loops = l.loops[:len(l.loops)-1] }()
	var code string
	l.push(func() {
		if bind != nil {
			bind()
		}
		code, _ = l.block(b, false)
	})
	return code
}
