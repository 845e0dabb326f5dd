package transpile

import (
	"strconv"
	"strings"

	"ruchy/parser"
)

// lowerMatch keeps arm order and appends a panicking arm when no arm is
// an unguarded catch-all, so that a failed match aborts as in the
// interpreter
func (l *Lowerer) lowerMatch(e *parser.MatchExpr) (string, *Type) {
	scrutinee, st := l.place(e.Subject)
	base := st.deref().or(tUnknown)
	slice := false
	for _, arm := range e.Arms {
		slice = slice || isSlicePattern(arm.Pattern)
	}
	switch {
	case slice:
		if known(base) && base.Kind != KList {
			l.fail(e.Subject, "sequence pattern cannot match a value of type %s", base.Rust())
		}
		scrutinee = paren(e.Subject, scrutinee) + ".as_slice()"
	case base.Kind == KString:
		scrutinee = paren(e.Subject, scrutinee) + ".as_str()"
	default:
		scrutinee, _ = l.expr(e.Subject)
	}

	indent := strings.Repeat("    ", l.out.indent)
	var b strings.Builder
	b.WriteString("match " + scrutinee + " {\n")
	l.out.indent++
	result := tUnknown
	covered := false
	for _, arm := range e.Arms {
		var line string
		l.push(func() {
			l.inSlice = false
			pat := l.pattern(arm.Pattern, base, true)
			if arm.Guard != nil {
				guard, gt := l.place(arm.Guard)
				l.requireBool(arm.Guard, gt, "match guard")
				pat += " if " + guard
			}
			body, t := l.armBody(arm)
			result = result.or(t)
			line = pat + " => " + body + ","
		})
		b.WriteString(indent + "    " + line + "\n")
		if arm.Guard == nil && l.catchAll(arm.Pattern) {
			covered = true
		}
	}
	if !covered {
		b.WriteString(indent + "    _ => panic!(\"no pattern matched\"),\n")
	}
	l.out.indent--
	b.WriteString(indent + "}")
	return b.String(), result.or(tUnit)
}

// armBody lowers an arm body; names bound by a slice pattern are re-owned
// first
func (l *Lowerer) armBody(arm *parser.MatchArm) (string, *Type) {
	lp := slicePattern(arm.Pattern)
	if lp == nil {
		if blk, ok := arm.Body.(*parser.BlockExpr); ok {
			var code string
			var t *Type
			l.push(func() { code, t = l.block(blk, true) })
			return code, t
		}
		return l.expr(arm.Body)
	}
	var t *Type
	inner := l.capture(func() {
		l.out.indent++
		l.reownSlice(lp)
		if blk, ok := arm.Body.(*parser.BlockExpr); ok {
			t = l.lowerStmts(blk.Stmts, true)
			return
		}
		t = l.lowerStmt(&parser.ExprStmt{Pos: arm.Pos, Expr: arm.Body}, true)
	})
	return "{\n" + inner + strings.Repeat("    ", l.out.indent) + "}", t
}

func isSlicePattern(p parser.Pattern) bool {
	return slicePattern(p) != nil
}

// slicePattern returns the list pattern at the top of p, looking through
// bindings and alternatives
func slicePattern(p parser.Pattern) *parser.ListPattern {
	switch p := p.(type) {
	case *parser.ListPattern:
		return p
	case *parser.IdentPattern:
		if p.Sub != nil {
			return slicePattern(p.Sub)
		}
	case *parser.OrPattern:
		for _, alt := range p.Alternatives {
			if lp := slicePattern(alt); lp != nil {
				return lp
			}
		}
	}
	return nil
}

// catchAll reports whether p matches every value; a bare name that
// resolves to a unit variant is not a binding
func (l *Lowerer) catchAll(p parser.Pattern) bool {
	switch p := p.(type) {
	case *parser.WildcardPattern:
		return true
	case *parser.IdentPattern:
		if p.Sub != nil {
			return l.catchAll(p.Sub)
		}
		return !l.isUnitVariant(p.Name)
	case *parser.OrPattern:
		for _, alt := range p.Alternatives {
			if l.catchAll(alt) {
				return true
			}
		}
	}
	return false
}

func (l *Lowerer) isUnitVariant(name string) bool {
	if name == "None" {
		return true
	}
	v, ok := l.variants[name]
	return ok && len(v.fields) == 0
}

func hasStringLiteral(p parser.Pattern) bool {
	switch p := p.(type) {
	case *parser.LiteralPattern:
		_, ok := p.Value.(*parser.StringLit)
		return ok
	case *parser.IdentPattern:
		return p.Sub != nil && hasStringLiteral(p.Sub)
	case *parser.OrPattern:
		for _, alt := range p.Alternatives {
			if hasStringLiteral(alt) {
				return true
			}
		}
	}
	return false
}

// ============================================================================
// PATTERNS
// ============================================================================

// pattern renders p against a value of type t and binds its names in the
// current scope. top is set for the outermost pattern of an arm or let.
func (l *Lowerer) pattern(p parser.Pattern, t *Type, top bool) string {
	if t == nil {
		t = tUnknown
	}
	t = t.deref()
	switch p := p.(type) {
	case *parser.WildcardPattern:
		return "_"

	case *parser.IdentPattern:
		if p.Sub == nil && !p.Mutable && l.isUnitVariant(p.Name) {
			if b, ok := l.scope.lookup(p.Name); !ok || b.item {
				return p.Name
			}
		}
		mut := ""
		if (p.Mutable || l.mutPrefix(p.Name) != "") && !l.inSlice {
			mut = "mut "
		}
		l.scope.define(p.Name, &binding{typ: t, mutable: mut != ""})
		if p.Sub != nil {
			return mut + p.Name + " @ " + l.pattern(p.Sub, t, top)
		}
		return mut + p.Name

	case *parser.LiteralPattern:
		return l.literalPattern(p.Value, t, top)

	case *parser.RangePattern:
		op := ".."
		if p.Inclusive {
			op = "..="
		}
		return l.literalPattern(p.Start, t, false) + op + l.literalPattern(p.End, t, false)

	case *parser.TuplePattern:
		if len(p.Elements) == 0 {
			return "()"
		}
		if t.Kind == KTuple && len(t.Elems) != len(p.Elements) {
			l.fail(p, "mismatched types: expected a tuple with %d elements, found one with %d elements", len(t.Elems), len(p.Elements))
		}
		parts := make([]string, len(p.Elements))
		for i, el := range p.Elements {
			et := tUnknown
			if t.Kind == KTuple {
				et = t.Elems[i]
			}
			parts[i] = l.pattern(el, et, false)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"

	case *parser.ListPattern:
		if !top {
			l.fail(p, "sequence patterns are only supported at the top of a match arm or let")
		}
		l.inSlice = true
		defer func() { l.inSlice = false }()
		parts := make([]string, len(p.Elements))
		for i, el := range p.Elements {
			if rest, ok := el.(*parser.RestPattern); ok {
				if rest.Name == "" {
					parts[i] = ".."
				} else {
					parts[i] = rest.Name + " @ .."
					l.scope.define(rest.Name, &binding{typ: listOf(t.elem())})
				}
				continue
			}
			parts[i] = l.pattern(el, t.elem(), false)
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case *parser.StructPattern:
		return l.structPattern(p, t)

	case *parser.OrPattern:
		parts := make([]string, len(p.Alternatives))
		for i, alt := range p.Alternatives {
			parts[i] = l.pattern(alt, t, top)
		}
		return strings.Join(parts, " | ")

	case *parser.VariantPattern:
		return l.variantPattern(p, t)
	}
	l.fail(p, "unsupported pattern %T", p)
	return ""
}

func (l *Lowerer) literalPattern(v parser.Expr, t *Type, top bool) string {
	var code string
	var lt *Type
	switch lit := v.(type) {
	case *parser.StringLit:
		if !top || (known(t) && t.Kind != KString) {
			l.fail(v, "string literal patterns are only supported directly against a string")
		}
		return parser.QuoteString(lit.Value)
	case *parser.IntLit:
		code, lt = strconv.FormatInt(lit.Value, 10), tInt
	case *parser.FloatLit:
		code, lt = floatLiteral(lit.Value), tFloat
	default:
		code, lt = l.place(v)
	}
	if known(t) && t.isPrimitive() && known(lt) && lt.Kind != t.Kind {
		l.fail(v, "mismatched types: expected `%s`, found `%s`", t.Rust(), lt.Rust())
	}
	return code
}

func (l *Lowerer) structPattern(p *parser.StructPattern, t *Type) string {
	name := p.Path[len(p.Path)-1]
	decl, ok := l.structs[name]
	if !ok {
		l.fail(p, "cannot find struct `%s` in this scope", strings.Join(p.Path, "::"))
	}
	if t.Kind == KStruct && t.Name != name {
		l.fail(p, "mismatched types: expected `%s`, found `%s`", t.Name, name)
	}
	fieldType := func(f string) *Type {
		for _, d := range decl.Fields {
			if d.Name == f {
				return l.mapType(d.Type)
			}
		}
		l.fail(p, "struct `%s` does not have a field named `%s`", name, f)
		return nil
	}
	seen := make(map[string]bool)
	var parts []string
	for _, f := range p.Fields {
		seen[f.Name] = true
		sub := l.pattern(f.Pattern, fieldType(f.Name), false)
		if sub == f.Name {
			parts = append(parts, f.Name)
		} else {
			parts = append(parts, f.Name+": "+sub)
		}
	}
	if p.Rest {
		parts = append(parts, "..")
	} else {
		for _, d := range decl.Fields {
			if !seen[d.Name] {
				l.fail(p, "pattern does not mention field `%s`", d.Name)
			}
		}
	}
	path := strings.Join(p.Path, "::")
	if len(parts) == 0 {
		return path + " {}"
	}
	return path + " { " + strings.Join(parts, ", ") + " }"
}

func (l *Lowerer) variantPattern(p *parser.VariantPattern, t *Type) string {
	key := strings.Join(trimPathRoots(p.Path), "::")
	name := p.Name()
	var fields []*Type
	path := strings.Join(p.Path, "::")

	switch key {
	case "Some", "Option::Some", "None", "Option::None":
		if known(t) && t.Kind != KOption && t.Kind != KParam {
			l.fail(p, "mismatched types: expected `%s`, found `Option`", t.Rust())
		}
		path = name
		if name == "Some" {
			fields = []*Type{t.elem()}
		}
	case "Ok", "Result::Ok", "Err", "Result::Err":
		if known(t) && t.Kind != KResult && t.Kind != KParam {
			l.fail(p, "mismatched types: expected `%s`, found `Result`", t.Rust())
		}
		path = name
		if name == "Ok" {
			fields = []*Type{t.elem()}
		} else {
			fields = []*Type{t.Key.or(tUnknown)}
		}
	default:
		v, ok := l.variants[key]
		if !ok {
			l.fail(p, "cannot find variant `%s` in this scope", path)
		}
		if t.Kind == KEnum && t.Name != v.enum {
			l.fail(p, "mismatched types: expected `%s`, found `%s`", t.Name, v.enum)
		}
		fields = v.fields
	}

	if p.Args == nil {
		if len(fields) > 0 {
			l.fail(p, "variant `%s` has %d field(s) but the pattern has none", path, len(fields))
		}
		return path
	}
	if len(p.Args) != len(fields) {
		l.fail(p, "this pattern has %d field(s), but variant `%s` has %d", len(p.Args), path, len(fields))
	}
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		parts[i] = l.pattern(a, fields[i], false)
	}
	return path + "(" + strings.Join(parts, ", ") + ")"
}
