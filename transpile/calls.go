package transpile

import (
	"strings"

	"ruchy/builtins"
	"ruchy/parser"
)

// printMacros maps the output built-ins to their macros
var printMacros = map[string]string{
	"print":    "print!",
	"println":  "println!",
	"eprint":   "eprint!",
	"eprintln": "eprintln!",
}

func (l *Lowerer) lowerCall(e *parser.CallExpr) (string, *Type) {
	if id, ok := e.Callee.(*parser.Ident); ok && l.isBuiltin(id.Name) {
		return l.lowerBuiltinCall(e, id.Name)
	}
	if id, ok := e.Callee.(*parser.Ident); ok {
		if v, ok := l.variants[id.Name]; ok && len(v.fields) > 0 {
			if _, shadowed := l.scope.lookup(id.Name); !shadowed {
				return l.lowerVariantCall(e, id.Name, v)
			}
		}
	}
	if p, ok := e.Callee.(*parser.PathExpr); ok {
		key := strings.Join(trimPathRoots(p.Segments), "::")
		if v, ok := l.variants[key]; ok && len(v.fields) > 0 {
			code, _ := l.lowerPath(p)
			return l.lowerVariantCall(e, code, v)
		}
		if code, t, ok := l.lowerPathBuiltin(e, key); ok {
			return code, t
		}
	}
	if sig := l.calleeSig(e.Callee); sig != nil {
		return l.lowerUserCall(e, sig)
	}

	callee, ct := l.place(e.Callee)
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i], _ = l.expr(stripBorrow(a))
	}
	if _, ok := e.Callee.(*parser.Ident); !ok {
		if _, ok := e.Callee.(*parser.PathExpr); !ok {
			callee = "(" + callee + ")"
		}
	}
	ret := tUnknown
	if ct.Kind == KFunc {
		if len(ct.Elems) != len(e.Args) && len(ct.Elems) > 0 {
			l.fail(e, "closure takes %d argument(s) but %d were supplied", len(ct.Elems), len(e.Args))
		}
		ret = ct.Ret
	} else if known(ct) && ct.Kind != KParam {
		l.fail(e.Callee, "expected function, found %s", ct.Rust())
	}
	return callee + "(" + strings.Join(args, ", ") + ")", ret.or(tUnknown)
}

// isBuiltin reports whether name calls a built-in function: no local
// binding or user function shadows it
func (l *Lowerer) isBuiltin(name string) bool {
	if !registry.Has(name) {
		return false
	}
	if b, ok := l.scope.lookup(name); ok && !b.item {
		return false
	}
	prefix := ""
	if l.fn != nil {
		prefix = l.fn.prefix
	}
	_, user := l.lookupFun(name, prefix)
	return !user
}

// stripBorrow drops a borrow the callee does not ask for; borrows are
// transparent to the interpreter
func stripBorrow(e parser.Expr) parser.Expr {
	if u, ok := e.(*parser.UnaryExpr); ok && u.Operator == parser.TOKEN_AMP {
		return u.Operand
	}
	return e
}

func (l *Lowerer) lowerUserCall(e *parser.CallExpr, sig *funSig) (string, *Type) {
	if len(e.Args) != len(sig.params) {
		l.fail(e, "function `%s` takes %d argument(s) but %d were supplied", sig.name, len(sig.params), len(e.Args))
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		pt := sig.params[i]
		a = stripBorrow(a)
		switch {
		case pt.MutRef:
			code, _ := l.place(a)
			args[i] = "&mut " + code
		case pt.Ref:
			code, _ := l.place(a)
			args[i] = "&" + code
		default:
			var at *Type
			args[i], at = l.expr(a)
			if !known(pt) && known(at) && sig.decl != nil && sig.decl.Params[i].Type == nil {
				sig.params[i] = at.deref()
			}
		}
	}
	callee, _ := l.place(e.Callee)
	ret := sig.ret
	if ret.Kind == KParam {
		ret = tUnknown
	}
	return callee + "(" + strings.Join(args, ", ") + ")", ret
}

func (l *Lowerer) lowerVariantCall(e *parser.CallExpr, code string, v *variantInfo) (string, *Type) {
	if len(e.Args) != len(v.fields) {
		l.fail(e, "this enum variant takes %d argument(s) but %d were supplied", len(v.fields), len(e.Args))
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i], _ = l.expr(a)
	}
	return code + "(" + strings.Join(args, ", ") + ")", named(KEnum, v.enum)
}

// lowerPathBuiltin handles the constructors reachable by path, such as
// HashMap::new() and String::from(s)
func (l *Lowerer) lowerPathBuiltin(e *parser.CallExpr, key string) (string, *Type, bool) {
	segs := strings.Split(key, "::")
	if _, ok := registry.LookupPath(segs); !ok {
		return "", nil, false
	}
	if len(segs) > 2 {
		segs = segs[len(segs)-2:]
	}
	args := make([]string, len(e.Args))
	types := make([]*Type, len(e.Args))
	for i, a := range e.Args {
		args[i], types[i] = l.expr(a)
	}
	arity := func(n int) {
		if len(e.Args) != n {
			l.fail(e, "%s takes %d argument(s) but %d were supplied", key, n, len(e.Args))
		}
	}
	switch segs[0] + "::" + segs[1] {
	case "HashMap::new", "BTreeMap::new":
		arity(0)
		return "BTreeMap::new()", mapOf(tUnknown, tUnknown), true
	case "HashSet::new", "BTreeSet::new":
		arity(0)
		return "BTreeSet::new()", setOf(tUnknown), true
	case "Vec::new":
		arity(0)
		return "Vec::new()", listOf(tUnknown), true
	case "String::new":
		arity(0)
		return "String::new()", tString, true
	case "String::from":
		arity(1)
		if types[0].Kind == KChar {
			return "String::from(" + args[0] + ")", tString, true
		}
		if lit, ok := e.Args[0].(*parser.StringLit); ok {
			return "String::from(" + parser.QuoteString(lit.Value) + ")", tString, true
		}
		return "String::from(" + args[0] + ")", tString, true
	case "Option::Some":
		arity(1)
		return "Some(" + args[0] + ")", optionOf(types[0]), true
	case "Result::Ok":
		arity(1)
		return "Ok(" + args[0] + ")", resultOf(types[0], tUnknown), true
	case "Result::Err":
		arity(1)
		return "Err(" + args[0] + ")", resultOf(tUnknown, types[0]), true
	}
	l.fail(e, "`%s` has no Rust counterpart", key)
	return "", nil, false
}

// ============================================================================
// BUILT-IN FUNCTIONS
// ============================================================================

func (l *Lowerer) lowerBuiltinCall(e *parser.CallExpr, name string) (string, *Type) {
	arity := func(min, max int) {
		if len(e.Args) < min || len(e.Args) > max {
			if min == max {
				l.fail(e, "%s takes %d argument(s), got %d", name, min, len(e.Args))
			}
			l.fail(e, "%s takes %d to %d arguments, got %d", name, min, max, len(e.Args))
		}
	}
	switch name {
	case "print", "println", "eprint", "eprintln":
		return l.lowerPrint(e, printMacros[name]), tUnit
	case "format":
		if len(e.Args) == 0 {
			l.fail(e, "format takes at least 1 argument, got 0")
		}
		lit, ok := e.Args[0].(*parser.StringLit)
		if !ok {
			l.fail(e.Args[0], "format string must be a string literal")
		}
		return l.formatMacro("format!", e, lit, e.Args[1:]), tString
	case "assert":
		arity(1, 2)
		cond, ct := l.place(e.Args[0])
		l.requireBool(e.Args[0], ct, "assert")
		if len(e.Args) == 2 {
			msg, _ := l.place(e.Args[1])
			return "assert!(" + cond + ", \"{}\", " + msg + ")", tUnit
		}
		return "assert!(" + cond + ")", tUnit
	case "assert_eq":
		arity(2, 2)
		a, _ := l.place(e.Args[0])
		b, _ := l.place(e.Args[1])
		return "assert_eq!(" + a + ", " + b + ")", tUnit
	case "panic":
		if len(e.Args) == 0 {
			return "panic!()", tUnknown
		}
		if lit, ok := e.Args[0].(*parser.StringLit); ok && builtins.IsFormatLiteral(lit.Value) && len(e.Args) > 1 {
			return l.formatMacro("panic!", e, lit, e.Args[1:]), tUnknown
		}
		arity(1, 1)
		msg, mt := l.place(e.Args[0])
		spec := "{}"
		if !mt.isPrimitive() && known(mt) {
			spec = "{:?}"
		}
		return "panic!(\"" + spec + "\", " + msg + ")", tUnknown
	case "int", "float", "str", "bool", "char":
		arity(1, 1)
		return l.convert(e, name)
	case "len":
		arity(1, 1)
		code, t := l.operand(e.Args[0])
		switch t.deref().Kind {
		case KList, KString, KMap, KSet, KUnknown, KParam:
			return "(" + code + ".len() as i64)", tInt
		}
		l.fail(e, "len is not defined for %s", t.Rust())
	case "min", "max":
		arity(2, 2)
		a, at := l.expr(e.Args[0])
		b, bt := l.expr(e.Args[1])
		if known(at) && known(bt) && at.Kind != bt.Kind {
			l.fail(e, "%s requires two values of the same type", name)
		}
		if at.Kind == KFloat || bt.Kind == KFloat {
			return "f64::" + name + "(" + a + ", " + b + ")", tFloat
		}
		return "std::cmp::" + name + "(" + a + ", " + b + ")", at.or(bt)
	case "Some":
		arity(1, 1)
		code, t := l.expr(e.Args[0])
		return "Some(" + code + ")", optionOf(t)
	case "Ok":
		arity(1, 1)
		code, t := l.expr(e.Args[0])
		return "Ok(" + code + ")", resultOf(t, tUnknown)
	case "Err":
		arity(1, 1)
		code, t := l.expr(e.Args[0])
		return "Err(" + code + ")", resultOf(tUnknown, t)
	}
	l.fail(e, "built-in `%s` has no Rust counterpart", name)
	return "", nil
}

// ============================================================================
// PRINTING
// ============================================================================

// lowerPrint passes a literal format string through; other arguments are
// joined by spaces, primitives with Display and the rest with Debug
func (l *Lowerer) lowerPrint(e *parser.CallExpr, macro string) string {
	if len(e.Args) == 0 {
		if strings.HasSuffix(macro, "ln!") {
			return macro + "()"
		}
		return macro + "(\"\")"
	}
	if lit, ok := e.Args[0].(*parser.StringLit); ok && builtins.IsFormatLiteral(lit.Value) {
		return l.formatMacro(macro, e, lit, e.Args[1:])
	}
	specs := make([]string, len(e.Args))
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		var t *Type
		args[i], t = l.place(a)
		l.requireInferable(a, t)
		specs[i] = displaySpec(t)
	}
	return macro + "(\"" + strings.Join(specs, " ") + "\", " + strings.Join(args, ", ") + ")"
}

// requireInferable rejects a printed `None` or `[]`: nothing else in the
// program can fix its element type, so rustc would stop with E0282
func (l *Lowerer) requireInferable(a parser.Expr, t *Type) {
	if known(t.deref().elem()) {
		return
	}
	var what string
	switch a := a.(type) {
	case *parser.Ident:
		what = a.Name
	case *parser.PathExpr:
		what = strings.Join(trimPathRoots(a.Segments), "::")
	case *parser.ListLit:
		if len(a.Elements) == 0 {
			what = "[]"
		}
	}
	if what == "None" || what == "Option::None" || what == "[]" {
		l.fail(a, "type annotations needed: cannot infer the element type of `%s`", what)
	}
}

// displaySpec picks Display for primitives and Debug for everything else
func displaySpec(t *Type) string {
	t = t.deref()
	if t.isPrimitive() || t.Kind == KUnknown || t.Kind == KParam {
		return "{}"
	}
	return "{:?}"
}

// formatMacro renders a macro call with a literal format string, switching
// bare {} holes to {:?} for compound arguments
func (l *Lowerer) formatMacro(macro string, e *parser.CallExpr, lit *parser.StringLit, argExprs []parser.Expr) string {
	holes := builtins.CountPlaceholders(lit.Value)
	if holes < 0 {
		l.fail(lit, "invalid format string %s", parser.QuoteString(lit.Value))
	}
	if holes != len(argExprs) {
		l.fail(e, "format string has %d placeholder(s) but %d argument(s) were given", holes, len(argExprs))
	}
	args := make([]string, len(argExprs))
	types := make([]*Type, len(argExprs))
	for i, a := range argExprs {
		args[i], types[i] = l.place(a)
		l.requireInferable(a, types[i])
	}
	format := rewriteHoles(lit.Value, types)
	if len(args) == 0 {
		return macro + "(" + parser.QuoteString(format) + ")"
	}
	return macro + "(" + parser.QuoteString(format) + ", " + strings.Join(args, ", ") + ")"
}

// rewriteHoles replaces the n-th bare {} with {:?} when the n-th argument
// is not a primitive
func rewriteHoles(format string, types []*Type) string {
	var b strings.Builder
	hole := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case (c == '{' || c == '}') && i+1 < len(format) && format[i+1] == c:
			b.WriteString(format[i : i+2])
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			spec := format[i+1 : i+end]
			if spec == "" && hole < len(types) && displaySpec(types[hole]) == "{:?}" {
				spec = ":?"
			}
			b.WriteString("{" + spec + "}")
			hole++
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// lowerFString renders an f-string through format!
func (l *Lowerer) lowerFString(e *parser.FStringExpr) string {
	var format strings.Builder
	var args []string
	for _, p := range e.Parts {
		if p.Expr == nil {
			format.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(p.Text))
			continue
		}
		code, t := l.place(p.Expr)
		args = append(args, code)
		switch {
		case p.Format != "":
			format.WriteString("{:" + p.Format + "}")
		default:
			format.WriteString(displaySpec(t))
		}
	}
	if len(args) == 0 {
		text := strings.NewReplacer("{{", "{", "}}", "}").Replace(format.String())
		return "String::from(" + parser.QuoteString(text) + ")"
	}
	return "format!(" + parser.QuoteString(format.String()) + ", " + strings.Join(args, ", ") + ")"
}
