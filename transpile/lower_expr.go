package transpile

import (
	"strconv"
	"strings"

	"ruchy/builtins"
	"ruchy/parser"
)

// expr lowers e in value position: reads of non-Copy bindings, fields and
// elements are cloned so the source keeps its value
func (l *Lowerer) expr(e parser.Expr) (string, *Type) {
	return l.lower(e, true)
}

// place lowers e without cloning, for receivers, operands and borrows
func (l *Lowerer) place(e parser.Expr) (string, *Type) {
	return l.lower(e, false)
}

// operand lowers a place and parenthesizes it when it is not atomic
func (l *Lowerer) operand(e parser.Expr) (string, *Type) {
	code, t := l.place(e)
	return paren(e, code), t
}

func paren(e parser.Expr, code string) string {
	switch e.(type) {
	case *parser.BinaryExpr, *parser.CastExpr, *parser.RangeExpr, *parser.ClosureExpr, *parser.PipelineExpr:
		return "(" + code + ")"
	case *parser.UnaryExpr:
		return "(" + code + ")"
	case *parser.IntLit, *parser.FloatLit:
		if strings.HasPrefix(code, "-") {
			return "(" + code + ")"
		}
	}
	return code
}

// registry is consulted for built-in names and method arities
var registry = builtins.NewRegistry()

func needsClone(t *Type) bool {
	return t != nil && !t.IsCopy() && !t.MutRef && t.Kind != KFunc
}

// derefCopy reads a Copy value through a reference binding
func derefCopy(code string, t *Type) (string, *Type) {
	if (t.Ref || t.MutRef) && t.deref().IsCopy() {
		return "(*" + code + ")", t.deref()
	}
	return code, t
}

func (l *Lowerer) lower(e parser.Expr, value bool) (string, *Type) {
	switch e := e.(type) {
	case *parser.IntLit:
		return intLiteral(e.Value), tInt
	case *parser.FloatLit:
		return floatLiteral(e.Value), tFloat
	case *parser.StringLit:
		return "String::from(" + parser.QuoteString(e.Value) + ")", tString
	case *parser.CharLit:
		return parser.QuoteChar(e.Value), tChar
	case *parser.BoolLit:
		return strconv.FormatBool(e.Value), tBool
	case *parser.UnitLit:
		return "()", tUnit
	case *parser.FStringExpr:
		return l.lowerFString(e), tString

	case *parser.Ident:
		return l.lowerIdent(e, value)
	case *parser.PathExpr:
		return l.lowerPath(e)

	case *parser.BinaryExpr:
		return l.lowerBinary(e)
	case *parser.UnaryExpr:
		return l.lowerUnary(e)
	case *parser.CastExpr:
		return l.lowerCast(e)
	case *parser.PipelineExpr:
		return l.lowerCall(pipelineCall(e))

	case *parser.CallExpr:
		return l.lowerCall(e)
	case *parser.MethodCallExpr:
		return l.lowerMethodCall(e)
	case *parser.IndexExpr:
		return l.lowerIndex(e, value)
	case *parser.SliceExpr:
		return l.lowerSlice(e)
	case *parser.FieldExpr:
		return l.lowerField(e, value)

	case *parser.ClosureExpr:
		return l.lowerClosure(e, false)
	case *parser.BlockExpr:
		var code string
		var t *Type
		l.push(func() { code, t = l.block(e, true) })
		return code, t
	case *parser.ListLit:
		return l.lowerList(e)
	case *parser.MapLit:
		return l.lowerMap(e)
	case *parser.TupleLit:
		parts := make([]string, len(e.Elements))
		elems := make([]*Type, len(e.Elements))
		for i, el := range e.Elements {
			parts[i], elems[i] = l.expr(el)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)", tupleOf(elems...)
		}
		return "(" + strings.Join(parts, ", ") + ")", tupleOf(elems...)
	case *parser.StructLit:
		return l.lowerStructLit(e)
	case *parser.RangeExpr:
		return l.lowerRange(e)

	case *parser.IfExpr:
		return l.lowerIf(e)
	case *parser.MatchExpr:
		return l.lowerMatch(e)
	case *parser.LoopExpr:
		l.loops = append(l.loops, tUnknown)
		var body string
		l.push(func() { body, _ = l.block(e.Body, false) })
		t := l.loops[len(l.loops)-1]
		l.loops = l.loops[:len(l.loops)-1]
		if !known(t) {
			t = tUnit
		}
		return "loop " + body, t
	case *parser.BreakExpr:
		if e.Value == nil {
			return "break", tUnknown
		}
		code, t := l.expr(e.Value)
		if n := len(l.loops); n > 0 && l.loops[n-1] != nil && !known(l.loops[n-1]) {
			l.loops[n-1] = t
		} else if n == 0 || l.loops[n-1] == nil {
			l.fail(e, "`break` with value from a `while` or `for` loop")
		}
		return "break " + code, tUnknown
	case *parser.ContinueExpr:
		return "continue", tUnknown
	case *parser.ReturnExpr:
		if l.fn == nil || l.fn.inMain {
			l.fail(e, "`return` outside of a function")
		}
		if e.Value == nil {
			l.fn.returns = append(l.fn.returns, tUnit)
			return "return", tUnknown
		}
		var code string
		var t *Type
		if c, ok := e.Value.(*parser.ClosureExpr); ok {
			code, t = l.lowerClosure(c, true)
		} else {
			code, t = l.expr(e.Value)
		}
		l.fn.returns = append(l.fn.returns, t)
		return "return " + code, tUnknown
	}
	l.fail(e, "unsupported expression %T", e)
	return "", nil
}

// floatLiteral renders a float so that Rust reads it back as a float
func floatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnI") {
		s += ".0"
	}
	if strings.Contains(s, "e") && !strings.Contains(s, ".") {
		mant, exp, _ := strings.Cut(s, "e")
		s = mant + ".0e" + exp
	}
	switch s {
	case "+Inf":
		return "f64::INFINITY"
	case "-Inf":
		return "f64::NEG_INFINITY"
	case "NaN":
		return "f64::NAN"
	}
	return s
}

// ============================================================================
// NAMES
// ============================================================================

func (l *Lowerer) lowerIdent(e *parser.Ident, value bool) (string, *Type) {
	if b, ok := l.scope.lookup(e.Name); ok {
		if b.item {
			return e.Name, b.typ
		}
		t := b.typ
		if value {
			if code, dt := derefCopy(e.Name, t); dt != t {
				return code, dt
			}
			if needsClone(t) && !t.Ref {
				return e.Name + ".clone()", t
			}
		}
		return e.Name, t
	}
	if e.Name == "None" {
		return "None", optionOf(tUnknown)
	}
	if v, ok := l.variants[e.Name]; ok && len(v.fields) == 0 {
		return e.Name, named(KEnum, v.enum)
	}
	if l.topLets[e.Name] && !l.fn.inMain {
		l.fail(e, "function `%s` refers to top-level binding `%s`; functions cannot capture local bindings", l.fn.name, e.Name)
	}
	if registry.Has(e.Name) {
		l.fail(e, "built-in function `%s` cannot be used as a value", e.Name)
	}
	l.fail(e, "cannot find value `%s` in this scope", e.Name)
	return "", nil
}

// lowerPath renders a qualified name used as a value
func (l *Lowerer) lowerPath(e *parser.PathExpr) (string, *Type) {
	segs := make([]string, len(e.Segments))
	for i, s := range e.Segments {
		segs[i] = rustPathSegment(s)
	}
	code := strings.Join(segs, "::")
	key := strings.Join(trimPathRoots(e.Segments), "::")
	if v, ok := l.variants[key]; ok {
		if len(v.fields) == 0 {
			return code, named(KEnum, v.enum)
		}
		return code, &Type{Kind: KFunc, Elems: v.fields, Ret: named(KEnum, v.enum)}
	}
	switch key {
	case "Option::None":
		return "None", optionOf(tUnknown)
	case "f64::INFINITY", "f64::NEG_INFINITY", "f64::NAN", "f64::MAX", "f64::MIN", "f64::EPSILON":
		return code, tFloat
	case "i64::MAX", "i64::MIN":
		return code, tInt
	}
	if sig := l.calleeSig(e); sig != nil {
		return code, sig.funcType()
	}
	return code, tUnknown
}

// ============================================================================
// OPERATORS
// ============================================================================

func (l *Lowerer) lowerBinary(e *parser.BinaryExpr) (string, *Type) {
	lc, lt := l.operand(e.Left)
	rc, rt := l.operand(e.Right)
	lc, lt = derefCopy(lc, lt)
	rc, rt = derefCopy(rc, rt)
	op := parser.OperatorText(e.Operator)

	switch e.Operator {
	case parser.TOKEN_POWER:
		if lt.Kind == KFloat || rt.Kind == KFloat {
			if lt.Kind != rt.Kind && known(lt) && known(rt) {
				l.fail(e, "cannot apply `**` to %s and %s", lt.Rust(), rt.Rust())
			}
			return "f64::powf(" + lc + ", " + rc + ")", tFloat
		}
		it := lt.or(tInt)
		return it.Rust() + "::pow(" + lc + ", " + rc + " as u32)", it
	case parser.TOKEN_PLUS:
		if isStringType(lt) || isStringType(rt) {
			return "format!(\"{}{}\", " + lc + ", " + rc + ")", tString
		}
	case parser.TOKEN_STAR:
		if isStringType(lt) {
			return lc + ".repeat(" + rc + " as usize)", tString
		}
	case parser.TOKEN_EQ, parser.TOKEN_NE, parser.TOKEN_LT, parser.TOKEN_GT, parser.TOKEN_LE, parser.TOKEN_GE:
		if known(lt) && known(rt) && lt.isPrimitive() && rt.isPrimitive() && lt.Kind != rt.Kind {
			l.fail(e, "mismatched types: cannot compare %s with %s", lt.Rust(), rt.Rust())
		}
		return lc + " " + op + " " + rc, tBool
	case parser.TOKEN_AND, parser.TOKEN_OR:
		l.requireBool(e.Left, lt, "logical")
		l.requireBool(e.Right, rt, "logical")
		return lc + " " + op + " " + rc, tBool
	}

	switch e.Operator {
	case parser.TOKEN_PLUS, parser.TOKEN_MINUS, parser.TOKEN_STAR, parser.TOKEN_SLASH, parser.TOKEN_PERCENT:
		if known(lt) && known(rt) && lt.Kind != rt.Kind && lt.Kind != KParam && rt.Kind != KParam {
			l.fail(e, "cannot apply `%s` to %s and %s", op, lt.Rust(), rt.Rust())
		}
	}
	return lc + " " + op + " " + rc, lt.or(rt)
}

func isStringType(t *Type) bool {
	return t != nil && t.Kind == KString
}

func (l *Lowerer) lowerUnary(e *parser.UnaryExpr) (string, *Type) {
	switch e.Operator {
	case parser.TOKEN_AMP:
		code, t := l.place(e.Operand)
		if e.Mutable {
			return "&mut " + code, refTo(t.deref(), true)
		}
		return "&" + code, refTo(t.deref(), false)
	case parser.TOKEN_MINUS:
		if lit, ok := e.Operand.(*parser.IntLit); ok {
			return "-" + intLiteral(lit.Value), tInt
		}
		code, t := l.operand(e.Operand)
		code, t = derefCopy(code, t)
		return "-" + code, t
	}
	code, t := l.operand(e.Operand)
	code, t = derefCopy(code, t)
	return "!" + code, t
}

// intLiteral spells an integer with an explicit i64 suffix. Every
// interpreter integer is an i64, while an unconstrained Rust literal
// would default to i32.
func intLiteral(n int64) string {
	return strconv.FormatInt(n, 10) + "i64"
}

// pipelineCall rewrites x |> f(a) as f(x, a) and x |> f as f(x)
func pipelineCall(e *parser.PipelineExpr) *parser.CallExpr {
	if call, ok := e.Right.(*parser.CallExpr); ok {
		args := append([]parser.Expr{e.Left}, call.Args...)
		return &parser.CallExpr{Pos: call.Pos, Callee: call.Callee, Args: args}
	}
	return &parser.CallExpr{Pos: e.Pos, Callee: e.Right, Args: []parser.Expr{e.Left}}
}

// ============================================================================
// ACCESS
// ============================================================================

// usize converts an index expression for Rust indexing; literals need no cast
func usize(e parser.Expr, code string) string {
	if lit, ok := e.(*parser.IntLit); ok {
		return strconv.FormatInt(lit.Value, 10)
	}
	return paren(e, code) + " as usize"
}

func (l *Lowerer) lowerIndex(e *parser.IndexExpr, value bool) (string, *Type) {
	if r, ok := e.Index.(*parser.RangeExpr); ok {
		return l.lowerSlice(&parser.SliceExpr{Pos: e.Pos, Expr: e.Expr, Start: r.Start, End: r.End, Inclusive: r.Inclusive})
	}
	container, ct := l.operand(e.Expr)
	var code string
	var t *Type
	switch ct.deref().Kind {
	case KMap:
		if lit, ok := e.Index.(*parser.StringLit); ok {
			code = container + "[" + parser.QuoteString(lit.Value) + "]"
		} else {
			key, _ := l.place(e.Index)
			code = container + "[&" + key + "]"
		}
		t = ct.deref().elem()
	case KString:
		l.fail(e, "the type `String` cannot be indexed by an integer")
	case KTuple:
		l.fail(e, "cannot index into a value of type tuple")
	default:
		idx, it := l.place(e.Index)
		if known(it) && it.deref().Kind != KInt {
			l.fail(e.Index, "list indices must be integers")
		}
		code = container + "[" + usize(e.Index, idx) + "]"
		t = ct.deref().elem()
	}
	if value && needsClone(t) {
		code += ".clone()"
	}
	return code, t
}

func (l *Lowerer) lowerSlice(e *parser.SliceExpr) (string, *Type) {
	container, ct := l.operand(e.Expr)
	bound := func(b parser.Expr) string {
		if b == nil {
			return ""
		}
		code, _ := l.place(b)
		return usize(b, code)
	}
	r := bound(e.Start) + ".."
	if e.Inclusive {
		r += "="
	}
	r += bound(e.End)
	switch ct.deref().Kind {
	case KString:
		return container + "[" + r + "].to_string()", tString
	case KList, KUnknown:
		return container + "[" + r + "].to_vec()", listOf(ct.deref().elem())
	}
	l.fail(e, "cannot slice a value of type %s", ct.Rust())
	return "", nil
}

func (l *Lowerer) lowerField(e *parser.FieldExpr, value bool) (string, *Type) {
	base, bt := l.operand(e.Expr)
	code := base + "." + e.Field
	t := tUnknown
	st := bt.deref()
	if idx, err := strconv.Atoi(e.Field); err == nil {
		if st.Kind == KTuple {
			if idx >= len(st.Elems) {
				l.fail(e, "no field `%s` on tuple of %d elements", e.Field, len(st.Elems))
			}
			t = st.Elems[idx]
		}
	} else if st.Kind == KStruct {
		decl := l.structs[st.Name]
		t = nil
		for _, f := range decl.Fields {
			if f.Name == e.Field {
				t = l.mapType(f.Type)
			}
		}
		if t == nil {
			l.fail(e, "no field `%s` on type `%s`", e.Field, st.Name)
		}
	}
	if value && needsClone(t) {
		code += ".clone()"
	}
	return code, t
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

func (l *Lowerer) lowerList(e *parser.ListLit) (string, *Type) {
	parts := make([]string, len(e.Elements))
	elem := tUnknown
	for i, el := range e.Elements {
		var t *Type
		parts[i], t = l.expr(el)
		if !known(elem) {
			elem = t
		}
	}
	return "vec![" + strings.Join(parts, ", ") + "]", listOf(elem)
}

func (l *Lowerer) lowerMap(e *parser.MapLit) (string, *Type) {
	if len(e.Entries) == 0 {
		return "BTreeMap::new()", mapOf(tUnknown, tUnknown)
	}
	parts := make([]string, len(e.Entries))
	key, val := tUnknown, tUnknown
	for i, en := range e.Entries {
		kc, kt := l.expr(en.Key)
		vc, vt := l.expr(en.Value)
		if !hashable(kt) {
			l.fail(en.Key, "map keys must be int, string, char, bool or tuples of those")
		}
		parts[i] = "(" + kc + ", " + vc + ")"
		if !known(key) {
			key = kt
		}
		if !known(val) {
			val = vt
		}
	}
	return "BTreeMap::from([" + strings.Join(parts, ", ") + "])", mapOf(key, val)
}

// hashable mirrors the interpreter's map key rule
func hashable(t *Type) bool {
	switch t.deref().Kind {
	case KUnknown, KInt, KString, KChar, KBool, KParam:
		return true
	case KTuple:
		for _, e := range t.Elems {
			if !hashable(e) {
				return false
			}
		}
		return true
	}
	return false
}

// refineMap fills in unknown map key and value types from a store
func (l *Lowerer) refineMap(t, key, val *Type) {
	t = t.deref()
	if t.Kind != KMap {
		return
	}
	if key != nil && !known(t.Key) {
		t.Key = key
	}
	if val != nil && !known(t.Elem) {
		t.Elem = val
	}
}

func (l *Lowerer) lowerStructLit(e *parser.StructLit) (string, *Type) {
	name := e.Name()
	decl, ok := l.structs[name]
	if !ok {
		l.fail(e, "cannot find struct `%s` in this scope", strings.Join(e.Path, "::"))
	}
	seen := make(map[string]bool)
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if seen[f.Name] {
			l.fail(f, "field `%s` specified more than once", f.Name)
		}
		seen[f.Name] = true
		found := false
		for _, d := range decl.Fields {
			found = found || d.Name == f.Name
		}
		if !found {
			l.fail(f, "struct `%s` has no field named `%s`", name, f.Name)
		}
		code, _ := l.expr(f.Value)
		parts[i] = f.Name + ": " + code
	}
	for _, d := range decl.Fields {
		if !seen[d.Name] {
			l.fail(e, "missing field `%s` in initializer of `%s`", d.Name, name)
		}
	}
	path := strings.Join(e.Path, "::")
	if len(parts) == 0 {
		return path + " {}", named(KStruct, name)
	}
	return path + " { " + strings.Join(parts, ", ") + " }", named(KStruct, name)
}

func (l *Lowerer) lowerRange(e *parser.RangeExpr) (string, *Type) {
	var start, end string
	elem := tUnknown
	if e.Start != nil {
		start, elem = l.operand(e.Start)
		start, elem = derefCopy(start, elem)
	}
	if e.End != nil {
		var t *Type
		end, t = l.operand(e.End)
		end, t = derefCopy(end, t)
		elem = elem.or(t)
	}
	if known(elem) && elem.Kind != KInt && elem.Kind != KChar {
		l.fail(e, "range bounds must be integers or chars")
	}
	op := ".."
	if e.Inclusive {
		op = "..="
	}
	return start + op + end, rangeOf(elem.or(tInt))
}

// ============================================================================
// CONTROL FLOW
// ============================================================================

// block lowers a block expression as "{ ... }"; the caller opens the scope
func (l *Lowerer) block(b *parser.BlockExpr, wantValue bool) (string, *Type) {
	var t *Type
	inner := l.capture(func() {
		l.out.indent++
		t = l.lowerStmts(b.Stmts, wantValue)
	})
	if inner == "" {
		return "{}", t
	}
	return "{\n" + inner + strings.Repeat("    ", l.out.indent) + "}", t
}

func (l *Lowerer) lowerIf(e *parser.IfExpr) (string, *Type) {
	cond, ct := l.place(e.Condition)
	l.requireBool(e.Condition, ct, "if")
	var then string
	var t *Type
	l.push(func() { then, t = l.block(e.Then, true) })
	code := "if " + cond + " " + then
	if e.Else == nil {
		return code, tUnit
	}
	elseCode, et := l.expr(e.Else)
	if _, ok := e.Else.(*parser.BlockExpr); !ok {
		if _, ok := e.Else.(*parser.IfExpr); !ok {
			elseCode = "{ " + elseCode + " }"
		}
	}
	return code + " else " + elseCode, t.or(et)
}

// ============================================================================
// CLOSURES
// ============================================================================

// lowerClosure renders |params| body; escaping closures take their
// captures by move
func (l *Lowerer) lowerClosure(e *parser.ClosureExpr, escaping bool) (string, *Type) {
	params := make([]string, len(e.Params))
	ptypes := make([]*Type, len(e.Params))
	var body string
	var ret *Type

	saved := l.fn.returns
	l.fn.returns = nil
	savedLoops := l.loops
	l.loops = nil
	l.push(func() {
		for i, p := range e.Params {
			ptypes[i] = l.mapType(p.Type)
			params[i] = p.Name
			if p.Mutable {
				params[i] = "mut " + p.Name
			}
			if p.Type != nil {
				params[i] += ": " + ptypes[i].Rust()
			}
			l.scope.define(p.Name, &binding{typ: ptypes[i]})
		}
		if b, ok := e.Body.(*parser.BlockExpr); ok {
			body, ret = l.block(b, true)
		} else {
			body, ret = l.expr(e.Body)
		}
	})
	l.fn.returns = saved
	l.loops = savedLoops

	code := "|" + strings.Join(params, ", ") + "|"
	if e.ReturnType != nil {
		ret = l.mapType(e.ReturnType)
		if _, ok := e.Body.(*parser.BlockExpr); !ok {
			body = "{ " + body + " }"
		}
		code += " -> " + ret.Rust()
	}
	if escaping {
		code = "move " + code
	}
	return code + " " + body, &Type{Kind: KFunc, Elems: ptypes, Ret: ret, FnMut: l.closureAssigns(e)}
}
