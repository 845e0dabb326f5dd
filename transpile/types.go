package transpile

import (
	"strings"

	"ruchy/builtins"
	"ruchy/parser"
)

// Kind is the static shape the lowering infers for an expression
type Kind int

const (
	KUnknown Kind = iota
	KUnit
	KInt
	KFloat
	KBool
	KChar
	KString
	KList
	KMap
	KSet
	KTuple
	KOption
	KResult
	KRange
	KFunc
	KStruct
	KEnum
	KParam // a generic type parameter
)

// Type is a best-effort static type. Elem holds list, set, option and
// range elements and map values; Key holds map keys and Result errors.
type Type struct {
	Kind   Kind
	Name   string // Rust spelling for ints, floats, user and parameter types
	Elem   *Type
	Key    *Type
	Elems  []*Type // tuple elements or function parameters
	Ret    *Type   // function result
	Ref    bool    // &T
	MutRef bool    // &mut T
	FnMut  bool    // a closure assigning captured bindings
}

var (
	tUnknown = &Type{Kind: KUnknown}
	tUnit    = &Type{Kind: KUnit}
	tInt     = &Type{Kind: KInt, Name: "i64"}
	tFloat   = &Type{Kind: KFloat, Name: "f64"}
	tBool    = &Type{Kind: KBool}
	tChar    = &Type{Kind: KChar}
	tString  = &Type{Kind: KString}
)

func listOf(elem *Type) *Type        { return &Type{Kind: KList, Elem: elem} }
func setOf(elem *Type) *Type         { return &Type{Kind: KSet, Elem: elem} }
func mapOf(key, val *Type) *Type     { return &Type{Kind: KMap, Key: key, Elem: val} }
func optionOf(elem *Type) *Type      { return &Type{Kind: KOption, Elem: elem} }
func resultOf(ok, err *Type) *Type   { return &Type{Kind: KResult, Elem: ok, Key: err} }
func tupleOf(elems ...*Type) *Type   { return &Type{Kind: KTuple, Elems: elems} }
func rangeOf(elem *Type) *Type       { return &Type{Kind: KRange, Elem: elem} }
func named(kind Kind, n string) *Type { return &Type{Kind: kind, Name: n} }

// known reports whether t carries usable information
func known(t *Type) bool {
	return t != nil && t.Kind != KUnknown
}

// or returns t when known, otherwise the fallback
func (t *Type) or(fallback *Type) *Type {
	if known(t) {
		return t
	}
	return fallback
}

// elem returns the element type, or unknown
func (t *Type) elem() *Type {
	if t == nil || t.Elem == nil {
		return tUnknown
	}
	return t.Elem
}

// deref strips a reference
func (t *Type) deref() *Type {
	if t == nil || (!t.Ref && !t.MutRef) {
		return t
	}
	c := *t
	c.Ref, c.MutRef = false, false
	return &c
}

// IsCopy reports whether values of t are Copy in Rust, so that reading a
// binding does not need .clone()
func (t *Type) IsCopy() bool {
	if t == nil {
		return false
	}
	if t.Ref {
		return true
	}
	switch t.Kind {
	case KUnit, KInt, KFloat, KBool, KChar:
		return true
	case KTuple:
		for _, e := range t.Elems {
			if !e.IsCopy() {
				return false
			}
		}
		return true
	}
	return false
}

// isCollection reports whether t is shared by reference in the
// interpreter: lists, maps, sets and struct instances
func (t *Type) isCollection() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KList, KMap, KSet, KStruct:
		return true
	}
	return false
}

// isPrimitive reports whether print renders t with Display
func (t *Type) isPrimitive() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KInt, KFloat, KBool, KChar, KString:
		return true
	}
	return false
}

// Rust renders t as a Rust type. Unknown types default to i64.
func (t *Type) Rust() string {
	if t == nil {
		return "i64"
	}
	prefix := ""
	if t.MutRef {
		prefix = "&mut "
	} else if t.Ref {
		prefix = "&"
	}
	return prefix + t.rustBase()
}

func (t *Type) rustBase() string {
	switch t.Kind {
	case KUnit:
		return "()"
	case KInt:
		if t.Name != "" {
			return t.Name
		}
		return "i64"
	case KFloat:
		if t.Name != "" {
			return t.Name
		}
		return "f64"
	case KBool:
		return "bool"
	case KChar:
		return "char"
	case KString:
		if t.Name == "str" && t.Ref {
			return "str"
		}
		return "String"
	case KList:
		return "Vec<" + t.elem().Rust() + ">"
	case KSet:
		return "BTreeSet<" + t.elem().Rust() + ">"
	case KMap:
		key := t.Key
		if key == nil {
			key = tUnknown
		}
		return "BTreeMap<" + key.Rust() + ", " + t.elem().Rust() + ">"
	case KOption:
		return "Option<" + t.elem().Rust() + ">"
	case KResult:
		e := t.Key
		if e == nil {
			e = tString
		}
		return "Result<" + t.elem().Rust() + ", " + e.Rust() + ">"
	case KTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.Rust()
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KRange:
		return "std::ops::Range<" + t.elem().Rust() + ">"
	case KFunc:
		return t.fnTrait()
	case KStruct, KEnum, KParam:
		return t.Name
	}
	return "i64"
}

// fnTrait renders a function type as an impl Fn bound
func (t *Type) fnTrait() string {
	params := make([]string, len(t.Elems))
	for i, p := range t.Elems {
		params[i] = p.Rust()
	}
	trait := "Fn"
	if t.FnMut {
		trait = "FnMut"
	}
	s := "impl " + trait + "(" + strings.Join(params, ", ") + ")"
	if t.Ret != nil && t.Ret.Kind != KUnit {
		s += " -> " + t.Ret.Rust()
	}
	return s
}

// mapType converts a source annotation. Collection names map to their
// ordered Rust counterparts.
func (l *Lowerer) mapType(te parser.TypeExpr) *Type {
	switch te := te.(type) {
	case nil:
		return tUnknown
	case *parser.RefType:
		inner := *l.mapType(te.Elem)
		if te.Mutable {
			inner.MutRef = true
		} else {
			inner.Ref = true
		}
		return &inner
	case *parser.ListType:
		return listOf(l.mapType(te.Elem))
	case *parser.TupleType:
		if len(te.Elements) == 0 {
			return tUnit
		}
		elems := make([]*Type, len(te.Elements))
		for i, e := range te.Elements {
			elems[i] = l.mapType(e)
		}
		return tupleOf(elems...)
	case *parser.FuncType:
		params := make([]*Type, len(te.Params))
		for i, p := range te.Params {
			params[i] = l.mapType(p)
		}
		ret := tUnit
		if te.Return != nil {
			ret = l.mapType(te.Return)
		}
		return &Type{Kind: KFunc, Elems: params, Ret: ret}
	case *parser.NamedType:
		arg := func(i int) *Type {
			if i < len(te.Args) {
				return l.mapType(te.Args[i])
			}
			return tUnknown
		}
		// values of every integer and float annotation are held as i64
		// and f64, as in the interpreter; only casts narrow them
		if _, ok := builtins.IntTypes[te.Name]; ok {
			return tInt
		}
		if builtins.FloatTypes[te.Name] {
			return tFloat
		}
		switch te.Name {
		case "Self":
			if l.implType != "" {
				return l.mapType(&parser.NamedType{Name: l.implType})
			}
		case "String":
			return tString
		case "str":
			return named(KString, "str")
		case "bool":
			return tBool
		case "char":
			return tChar
		case "Vec":
			return listOf(arg(0))
		case "HashMap", "BTreeMap":
			return mapOf(arg(0), arg(1))
		case "HashSet", "BTreeSet":
			return setOf(arg(0))
		case "Option":
			return optionOf(arg(0))
		case "Result":
			return resultOf(arg(0), arg(1))
		}
		if _, ok := l.structs[te.Name]; ok {
			return named(KStruct, te.Name)
		}
		if _, ok := l.enums[te.Name]; ok {
			return named(KEnum, te.Name)
		}
		return named(KParam, te.Name)
	}
	return tUnknown
}

// unify prefers the annotated type, falling back to the inferred one where
// the annotation says nothing
func (l *Lowerer) unify(declared, t *Type) *Type {
	if !known(declared) || declared.Kind == KParam {
		return t
	}
	if t != nil && declared.Kind == t.Kind && declared.Elem != nil && !known(declared.Elem) {
		return t
	}
	return declared
}
