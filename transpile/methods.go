package transpile

import (
	"strings"

	"ruchy/builtins"
	"ruchy/parser"
)

// mArg is a lowered method argument
type mArg struct {
	code  string // value position
	place string // borrowed position
	typ   *Type
	expr  parser.Expr
}

// str renders the argument where Rust expects a &str or a pattern
func (a mArg) str() string {
	if lit, ok := a.expr.(*parser.StringLit); ok {
		return parser.QuoteString(lit.Value)
	}
	if a.typ.Kind == KChar {
		return a.code
	}
	return "&" + a.place
}

// predicate wraps a callback for iterator adaptors that pass elements by
// reference
func (a mArg) predicate() string {
	return "|__x| (" + a.code + ")(__x.clone())"
}

// methodRule lowers one built-in method given its receiver and arguments
type methodRule struct {
	mutates bool
	lower   func(r string, rt *Type, args []mArg) (string, *Type)
}

func rule(lower func(r string, rt *Type, args []mArg) (string, *Type)) *methodRule {
	return &methodRule{lower: lower}
}

func mutating(lower func(r string, rt *Type, args []mArg) (string, *Type)) *methodRule {
	return &methodRule{mutates: true, lower: lower}
}

// fixed lowers a method to a suffix with a known result type
func fixed(suffix string, t *Type) *methodRule {
	return rule(func(r string, _ *Type, _ []mArg) (string, *Type) { return r + suffix, t })
}

func collectVec(t *Type) string {
	return ".collect::<Vec<" + t.Rust() + ">>()"
}

func elemOf(rt *Type) *Type { return rt.deref().elem() }

func lenRule() *methodRule {
	return rule(func(r string, _ *Type, _ []mArg) (string, *Type) { return "(" + r + ".len() as i64)", tInt })
}

// methodTable maps receiver kind and method name to its Rust rendering.
// It covers exactly the interpreter's built-in methods.
var methodTable = map[string]map[string]*methodRule{
	builtins.RecvList: {
		"len":      lenRule(),
		"is_empty": fixed(".is_empty()", tBool),
		"push":     mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".push(" + a[0].code + ")", tUnit }),
		"append":   mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".push(" + a[0].code + ")", tUnit }),
		"pop":      mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".pop()", optionOf(elemOf(rt)) }),
		"insert": mutating(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".insert(" + usize(a[0].expr, a[0].place) + ", " + a[1].code + ")", tUnit
		}),
		"remove": mutating(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".remove(" + usize(a[0].expr, a[0].place) + ")", elemOf(rt)
		}),
		"clear":   mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".clear()", tUnit }),
		"extend":  mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".extend(" + a[0].code + ")", tUnit }),
		"reverse": mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".reverse()", tUnit }),
		"sort": mutating(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".sort_by(|a, b| a.partial_cmp(b).unwrap())", tUnit
		}),
		"contains": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".contains(&" + a[0].code + ")", tBool }),
		"first":    rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".first().cloned()", optionOf(elemOf(rt)) }),
		"last":     rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".last().cloned()", optionOf(elemOf(rt)) }),
		"get": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".get(" + usize(a[0].expr, a[0].place) + ").cloned()", optionOf(elemOf(rt))
		}),
		"join": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".join(" + a[0].str() + ")", tString }),
		"map": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			ret := tUnknown
			if a[0].typ.Kind == KFunc && a[0].typ.Ret != nil {
				ret = a[0].typ.Ret
			}
			return r + ".iter().cloned().map(" + a[0].code + ").collect::<Vec<_>>()", listOf(ret)
		}),
		"filter": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".iter().cloned().filter(" + a[0].predicate() + ").collect::<Vec<_>>()", listOf(elemOf(rt))
		}),
		"fold": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".iter().cloned().fold(" + a[0].code + ", " + a[1].code + ")", a[0].typ
		}),
		"any":  rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".iter().cloned().any(" + a[0].code + ")", tBool }),
		"all":  rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".iter().cloned().all(" + a[0].code + ")", tBool }),
		"find": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".iter().cloned().find(" + a[0].predicate() + ")", optionOf(elemOf(rt))
		}),
		"sum": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			t := elemOf(rt).or(tInt)
			return r + ".iter().sum::<" + t.Rust() + ">()", t
		}),
		"min": extremum("min"),
		"max": extremum("max"),
	},

	builtins.RecvString: {
		"len":              lenRule(),
		"is_empty":         fixed(".is_empty()", tBool),
		"upper":            fixed(".to_uppercase()", tString),
		"to_uppercase":     fixed(".to_uppercase()", tString),
		"lower":            fixed(".to_lowercase()", tString),
		"to_lowercase":     fixed(".to_lowercase()", tString),
		"strip":            fixed(".trim().to_string()", tString),
		"trim":             fixed(".trim().to_string()", tString),
		"trim_start":       fixed(".trim_start().to_string()", tString),
		"trim_end":         fixed(".trim_end().to_string()", tString),
		"split_whitespace": fixed(".split_whitespace().map(|s| s.to_string())"+collectVec(tString), listOf(tString)),
		"lines":            fixed(".lines().map(|s| s.to_string())"+collectVec(tString), listOf(tString)),
		"chars":            fixed(".chars()"+collectVec(tChar), listOf(tChar)),
		"split": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".split(" + a[0].str() + ").map(|s| s.to_string())" + collectVec(tString), listOf(tString)
		}),
		"contains":    rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".contains(" + a[0].str() + ")", tBool }),
		"starts_with": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".starts_with(" + a[0].str() + ")", tBool }),
		"ends_with":   rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".ends_with(" + a[0].str() + ")", tBool }),
		"find": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".find(" + a[0].str() + ").map(|i| i as i64)", optionOf(tInt)
		}),
		"replace": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".replace(" + a[0].str() + ", " + a[1].str() + ")", tString
		}),
		"repeat": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".repeat(" + usize(a[0].expr, a[0].place) + ")", tString
		}),
	},

	builtins.RecvMap: {
		"len":          lenRule(),
		"is_empty":     fixed(".is_empty()", tBool),
		"contains_key": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".contains_key(&" + a[0].code + ")", tBool }),
		"get": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".get(&" + a[0].code + ").cloned()", optionOf(elemOf(rt))
		}),
		"insert": mutating(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".insert(" + a[0].code + ", " + a[1].code + ")", optionOf(elemOf(rt))
		}),
		"remove": mutating(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".remove(&" + a[0].code + ")", optionOf(elemOf(rt))
		}),
		"keys": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".keys().cloned().collect::<Vec<_>>()", listOf(rt.deref().Key.or(tUnknown))
		}),
		"values": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".values().cloned().collect::<Vec<_>>()", listOf(elemOf(rt))
		}),
		"items": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".iter().map(|(k, v)| (k.clone(), v.clone())).collect::<Vec<_>>()",
				listOf(tupleOf(rt.deref().Key.or(tUnknown), elemOf(rt)))
		}),
		"clear": mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".clear()", tUnit }),
	},

	builtins.RecvSet: {
		"len":      lenRule(),
		"is_empty": fixed(".is_empty()", tBool),
		"contains": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".contains(&" + a[0].code + ")", tBool }),
		"insert":   mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".insert(" + a[0].code + ")", tBool }),
		"add":      mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".insert(" + a[0].code + ")", tBool }),
		"remove":   mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".remove(&" + a[0].code + ")", tBool }),
		"union":        setOp("union"),
		"intersection": setOp("intersection"),
		"difference":   setOp("difference"),
		"to_list": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".iter().cloned().collect::<Vec<_>>()", listOf(elemOf(rt))
		}),
		"clear": mutating(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".clear()", tUnit }),
	},

	builtins.RecvInt: {
		"abs":    intFn("abs"),
		"signum": intFn("signum"),
		"min":    intFn("min"),
		"max":    intFn("max"),
		"pow": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			t := rt.deref().or(tInt)
			return t.Rust() + "::pow(" + r + ", " + a[0].place + " as u32)", t
		}),
	},

	builtins.RecvFloat: {
		"abs":   floatFn("abs"),
		"sqrt":  floatFn("sqrt"),
		"floor": floatFn("floor"),
		"ceil":  floatFn("ceil"),
		"round": floatFn("round"),
		"trunc": floatFn("trunc"),
		"sin":   floatFn("sin"),
		"cos":   floatFn("cos"),
		"tan":   floatFn("tan"),
		"ln":    floatFn("ln"),
		"log10": floatFn("log10"),
		"exp":   floatFn("exp"),
		"powf":  floatFn("powf"),
		"min":   floatFn("min"),
		"max":   floatFn("max"),
		"powi": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return "f64::powi(" + r + ", " + a[0].place + " as i32)", tFloat
		}),
		"is_nan": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return "f64::is_nan(" + r + ")", tBool }),
	},

	builtins.RecvChar: {
		"is_alphabetic":      fixed(".is_alphabetic()", tBool),
		"is_numeric":         fixed(".is_numeric()", tBool),
		"is_alphanumeric":    fixed(".is_alphanumeric()", tBool),
		"is_whitespace":      fixed(".is_whitespace()", tBool),
		"is_uppercase":       fixed(".is_uppercase()", tBool),
		"is_lowercase":       fixed(".is_lowercase()", tBool),
		"is_ascii_digit":     fixed(".is_ascii_digit()", tBool),
		"to_ascii_uppercase": fixed(".to_ascii_uppercase()", tChar),
		"to_ascii_lowercase": fixed(".to_ascii_lowercase()", tChar),
	},

	builtins.RecvOption: unwrapping("is_some", "is_none"),
	builtins.RecvResult: unwrapping("is_ok", "is_err"),

	builtins.RecvRange: {
		"contains": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".contains(&" + a[0].code + ")", tBool }),
		"rev": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".rev()" + collectVec(elemOf(rt).or(tInt)), listOf(elemOf(rt))
		}),
		"collect": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + collectVec(elemOf(rt).or(tInt)), listOf(elemOf(rt))
		}),
		"sum": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".sum::<i64>()", tInt }),
		"map": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			ret := tUnknown
			if a[0].typ.Kind == KFunc && a[0].typ.Ret != nil {
				ret = a[0].typ.Ret
			}
			return r + ".map(" + a[0].code + ").collect::<Vec<_>>()", listOf(ret)
		}),
		"filter": rule(func(r string, rt *Type, a []mArg) (string, *Type) {
			return r + ".filter(" + a[0].predicate() + ").collect::<Vec<_>>()", listOf(elemOf(rt))
		}),
	},
}

func extremum(name string) *methodRule {
	return rule(func(r string, rt *Type, a []mArg) (string, *Type) {
		return r + ".iter().cloned()." + name + "()", optionOf(elemOf(rt))
	})
}

func setOp(name string) *methodRule {
	return rule(func(r string, rt *Type, a []mArg) (string, *Type) {
		return r + "." + name + "(&" + a[0].place + ").cloned().collect::<BTreeSet<_>>()", setOf(elemOf(rt))
	})
}

// intFn calls an inherent integer method in path form, which also works on
// untyped literals
func intFn(name string) *methodRule {
	return rule(func(r string, rt *Type, a []mArg) (string, *Type) {
		t := rt.deref().or(tInt)
		args := []string{r}
		for _, arg := range a {
			args = append(args, arg.code)
		}
		return t.Rust() + "::" + name + "(" + strings.Join(args, ", ") + ")", t
	})
}

func floatFn(name string) *methodRule {
	return rule(func(r string, rt *Type, a []mArg) (string, *Type) {
		t := rt.deref().or(tFloat)
		args := []string{r}
		for _, arg := range a {
			args = append(args, arg.code)
		}
		return t.Rust() + "::" + name + "(" + strings.Join(args, ", ") + ")", t
	})
}

// unwrapping covers the methods Option and Result share
func unwrapping(isA, isB string) map[string]*methodRule {
	return map[string]*methodRule{
		isA:         fixed("."+isA+"()", tBool),
		isB:         fixed("."+isB+"()", tBool),
		"unwrap":    rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".unwrap()", elemOf(rt) }),
		"unwrap_or": rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".unwrap_or(" + a[0].code + ")", elemOf(rt).or(a[0].typ) }),
		"expect":    rule(func(r string, rt *Type, a []mArg) (string, *Type) { return r + ".expect(" + a[0].str() + ")", elemOf(rt) }),
	}
}

// receiverKind maps a static type to its method-table receiver
func receiverKind(t *Type) string {
	switch t.deref().Kind {
	case KList:
		return builtins.RecvList
	case KString:
		return builtins.RecvString
	case KMap:
		return builtins.RecvMap
	case KSet:
		return builtins.RecvSet
	case KInt:
		return builtins.RecvInt
	case KFloat:
		return builtins.RecvFloat
	case KChar:
		return builtins.RecvChar
	case KBool:
		return builtins.RecvBool
	case KOption:
		return builtins.RecvOption
	case KResult:
		return builtins.RecvResult
	case KRange:
		return builtins.RecvRange
	case KTuple:
		return builtins.RecvTuple
	}
	return ""
}

// consumes reports whether a receiver kind is taken by value, so that a
// binding must be cloned to survive the call
func consumes(recv string) bool {
	return recv == builtins.RecvOption || recv == builtins.RecvResult || recv == builtins.RecvRange
}

// ============================================================================
// METHOD CALLS
// ============================================================================

func (l *Lowerer) lowerMethodCall(e *parser.MethodCallExpr) (string, *Type) {
	rc, rt := l.operand(e.Receiver)
	base := rt.deref()

	// user methods
	if base.Kind == KStruct || base.Kind == KEnum {
		if sig, ok := l.funs[base.Name+"::"+e.Method]; ok {
			return l.lowerUserMethod(e, rc, sig)
		}
	}

	switch e.Method {
	case "clone":
		l.methodArity(e, 0, 0)
		return rc + ".clone()", base
	case "to_string":
		l.methodArity(e, 0, 0)
		if known(base) && !base.isPrimitive() && base.Kind != KParam {
			l.fail(e, "no method named `to_string` found for %s", base.Rust())
		}
		return rc + ".to_string()", tString
	}

	recv := receiverKind(base)
	if recv == "" {
		if base.Kind == KStruct || base.Kind == KEnum {
			l.fail(e, "no method named `%s` found for %s", e.Method, base.Name)
		}
		recv = l.guessReceiver(e.Method)
		if recv == "" {
			return l.passThrough(e, rc)
		}
	}
	rule, ok := methodTable[recv][e.Method]
	if !ok {
		l.fail(e, "no method named `%s` found for %s", e.Method, recv)
	}
	if recv == builtins.RecvList && (e.Method == "min" || e.Method == "max") && elemOf(base).Kind == KFloat {
		l.fail(e, "%s requires totally ordered elements, found float", e.Method)
	}
	m, _ := registry.LookupMethod(recv, e.Method)
	l.methodArity(e, m.MinArgs, m.MaxArgs)

	if consumes(recv) {
		rc, _ = l.expr(e.Receiver)
		rc = paren(e.Receiver, rc)
	} else if rt.MutRef {
		rc = "(*" + rc + ")"
	}
	if recv == builtins.RecvInt || recv == builtins.RecvFloat {
		rc, _ = derefCopy(rc, rt)
	}
	args := l.methodArgs(e.Args)
	code, t := rule.lower(rc, rt, args)
	if e.Method == "push" || e.Method == "append" {
		if base.Kind == KList && !known(base.Elem) {
			base.Elem = args[0].typ
		}
	}
	if recv == builtins.RecvMap && e.Method == "insert" {
		l.refineMap(base, args[0].typ, args[1].typ)
	}
	return code, t
}

func (l *Lowerer) methodArity(e *parser.MethodCallExpr, min, max int) {
	if len(e.Args) < min || len(e.Args) > max {
		l.fail(e, "method `%s` takes %d argument(s) but %d were supplied", e.Method, min, len(e.Args))
	}
}

func (l *Lowerer) methodArgs(exprs []parser.Expr) []mArg {
	args := make([]mArg, len(exprs))
	for i, a := range exprs {
		a = stripBorrow(a)
		args[i].expr = a
		args[i].code, args[i].typ = l.expr(a)
		args[i].place, _ = l.operand(a)
	}
	return args
}

// guessReceiver picks the receiver for a method on a value of unknown type
// when only one built-in receiver has that method
func (l *Lowerer) guessReceiver(method string) string {
	found := ""
	for recv, table := range methodTable {
		if _, ok := table[method]; ok {
			if found != "" {
				return ""
			}
			found = recv
		}
	}
	return found
}

// passThrough emits a method call unchanged
func (l *Lowerer) passThrough(e *parser.MethodCallExpr, rc string) (string, *Type) {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i], _ = l.expr(a)
	}
	return rc + "." + e.Method + "(" + strings.Join(args, ", ") + ")", tUnknown
}

func (l *Lowerer) lowerUserMethod(e *parser.MethodCallExpr, rc string, sig *funSig) (string, *Type) {
	if sig.receiver == parser.ReceiverNone {
		l.fail(e, "`%s` is an associated function, not a method", sig.name)
	}
	if len(e.Args) != len(sig.params) {
		l.fail(e, "method `%s` takes %d argument(s) but %d were supplied", sig.name, len(sig.params), len(e.Args))
	}
	if sig.receiver == parser.ReceiverValue {
		rc, _ = l.expr(e.Receiver)
		rc = paren(e.Receiver, rc)
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
			if !known(pt) && known(at) && sig.decl.Params[i].Type == nil {
				sig.params[i] = at.deref()
			}
		}
	}
	ret := sig.ret
	if ret.Kind == KParam {
		ret = tUnknown
	}
	return rc + "." + e.Method + "(" + strings.Join(args, ", ") + ")", ret
}
