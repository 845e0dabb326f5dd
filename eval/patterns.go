package eval

import (
	"strings"
	"unicode"

	"ruchy/parser"
	"ruchy/types"
)

// match tests v against p. It returns the bindings the pattern makes when
// it matches. A pattern whose shape cannot apply to v at all (a tuple
// pattern against an int, a variant of another enum) is a type error
// rather than a failed match.
func (i *Interpreter) match(p parser.Pattern, v types.Value, env *Environment, ctx *types.TaskContext) ([]binding, bool, *types.RuntimeError) {
	switch p := p.(type) {
	case *parser.WildcardPattern:
		return nil, true, nil

	case *parser.IdentPattern:
		if p.Sub == nil {
			if unit, ok := i.unitVariant(p.Name, env); ok {
				return i.matchVariantValue(unit, v)
			}
			return []binding{{p.Name, v}}, true, nil
		}
		binds, ok, err := i.match(p.Sub, v, env, ctx)
		if !ok || err != nil {
			return nil, ok, err
		}
		return append([]binding{{p.Name, v}}, binds...), true, nil

	case *parser.LiteralPattern:
		lit := i.Eval(p.Value, env, ctx)
		if lit.IsError() {
			return nil, false, lit.Error
		}
		if lit.Val.Kind() != v.Kind() {
			return nil, false, patternMismatch(types.TypeName(lit.Val), v)
		}
		return nil, lit.Val.Equal(v), nil

	case *parser.RangePattern:
		return i.matchRange(p, v, env, ctx)

	case *parser.TuplePattern:
		t, ok := v.(types.TupleValue)
		if !ok {
			if len(p.Elements) == 0 && v.Kind() == types.KindUnit {
				return nil, true, nil
			}
			return nil, false, patternMismatch("tuple", v)
		}
		if len(t.Elems) != len(p.Elements) {
			return nil, false, types.NewError(types.E_TYPE, "mismatched types: expected a tuple with %d elements, found one with %d elements", len(t.Elems), len(p.Elements))
		}
		return i.matchAll(p.Elements, t.Elems, env, ctx)

	case *parser.ListPattern:
		return i.matchList(p, v, env, ctx)

	case *parser.StructPattern:
		return i.matchStruct(p, v, env, ctx)

	case *parser.OrPattern:
		for _, alt := range p.Alternatives {
			binds, ok, err := i.match(alt, v, env, ctx)
			if err != nil || ok {
				return binds, ok, err
			}
		}
		return nil, false, nil

	case *parser.VariantPattern:
		return i.matchVariant(p, v, env, ctx)
	}
	return nil, false, types.NewError(types.E_TYPE, "unsupported pattern %T", p)
}

func patternMismatch(expected string, v types.Value) *types.RuntimeError {
	return types.NewError(types.E_TYPE, "mismatched types: expected `%s`, found `%s`", types.TypeName(v), expected)
}

// matchAll matches patterns against values pairwise
func (i *Interpreter) matchAll(ps []parser.Pattern, vals []types.Value, env *Environment, ctx *types.TaskContext) ([]binding, bool, *types.RuntimeError) {
	var binds []binding
	for k, p := range ps {
		b, ok, err := i.match(p, vals[k], env, ctx)
		if !ok || err != nil {
			return nil, ok, err
		}
		binds = append(binds, b...)
	}
	return binds, true, nil
}

// matchList matches [a, b], [first, ..rest] and [.., last]. A length
// mismatch is a failed match, not an error.
func (i *Interpreter) matchList(p *parser.ListPattern, v types.Value, env *Environment, ctx *types.TaskContext) ([]binding, bool, *types.RuntimeError) {
	l, ok := v.(*types.ListValue)
	if !ok {
		return nil, false, patternMismatch("list", v)
	}
	elems := l.Elements()
	rest := p.RestIndex()
	if rest < 0 {
		if len(elems) != len(p.Elements) {
			return nil, false, nil
		}
		return i.matchAll(p.Elements, elems, env, ctx)
	}
	before, after := p.Elements[:rest], p.Elements[rest+1:]
	if len(elems) < len(before)+len(after) {
		return nil, false, nil
	}
	binds, ok, err := i.matchAll(before, elems[:len(before)], env, ctx)
	if !ok || err != nil {
		return nil, ok, err
	}
	tail, ok, err := i.matchAll(after, elems[len(elems)-len(after):], env, ctx)
	if !ok || err != nil {
		return nil, ok, err
	}
	binds = append(binds, tail...)
	if name := p.Elements[rest].(*parser.RestPattern).Name; name != "" {
		middle := append([]types.Value(nil), elems[len(before):len(elems)-len(after)]...)
		binds = append(binds, binding{name, types.NewList(middle)})
	}
	return binds, true, nil
}

// matchStruct matches Name { field: pat, .. }; without .. every field
// must be mentioned
func (i *Interpreter) matchStruct(p *parser.StructPattern, v types.Value, env *Environment, ctx *types.TaskContext) ([]binding, bool, *types.RuntimeError) {
	res := i.resolvePath(p.Path, env)
	if res.IsError() {
		return nil, false, res.Error
	}
	tv, ok := res.Val.(*types.TypeValue)
	if !ok || tv.IsEnum {
		return nil, false, types.NewError(types.E_TYPE, "`%s` is not a struct", strings.Join(p.Path, "::"))
	}
	s, ok := v.(*types.StructValue)
	if !ok || s.TypeName != tv.Name {
		return nil, false, patternMismatch(tv.Name, v)
	}
	if !p.Rest && len(p.Fields) < len(tv.Fields) {
		return nil, false, types.NewError(types.E_TYPE, "pattern does not mention all fields of `%s`", tv.Name)
	}
	var binds []binding
	for _, f := range p.Fields {
		fv, ok := s.Field(f.Name)
		if !ok {
			return nil, false, types.NewError(types.E_TYPE, "struct `%s` does not have a field named `%s`", tv.Name, f.Name)
		}
		b, ok, err := i.match(f.Pattern, fv, env, ctx)
		if !ok || err != nil {
			return nil, ok, err
		}
		binds = append(binds, b...)
	}
	return binds, true, nil
}

// matchRange matches lo..=hi between ints or chars
func (i *Interpreter) matchRange(p *parser.RangePattern, v types.Value, env *Environment, ctx *types.TaskContext) ([]binding, bool, *types.RuntimeError) {
	lo := i.Eval(p.Start, env, ctx)
	if lo.IsError() {
		return nil, false, lo.Error
	}
	hi := i.Eval(p.End, env, ctx)
	if hi.IsError() {
		return nil, false, hi.Error
	}
	if lo.Val.Kind() != v.Kind() || hi.Val.Kind() != v.Kind() {
		return nil, false, patternMismatch(types.TypeName(lo.Val), v)
	}
	c1, ok1 := types.Compare(lo.Val, v)
	c2, ok2 := types.Compare(v, hi.Val)
	if !ok1 || !ok2 {
		return nil, false, patternMismatch(types.TypeName(lo.Val), v)
	}
	if p.Inclusive {
		return nil, c1 <= 0 && c2 <= 0, nil
	}
	return nil, c1 <= 0 && c2 < 0, nil
}

// variantRef identifies one variant of an enum
type variantRef struct {
	enum    string
	variant string
	arity   int
}

var builtinVariants = map[string]variantRef{
	"None": {"Option", "None", 0},
	"Some": {"Option", "Some", 1},
	"Ok":   {"Result", "Ok", 1},
	"Err":  {"Result", "Err", 1},
}

// resolveVariant finds the variant a pattern path names
func (i *Interpreter) resolveVariant(path []string, env *Environment) (variantRef, *types.RuntimeError) {
	name := path[len(path)-1]
	if len(path) == 1 {
		if v, ok := env.Get(name); ok {
			switch v := v.(type) {
			case types.EnumValue:
				return variantRef{v.Enum, v.Variant, len(v.Fields)}, nil
			case *VariantConstructor:
				info := v.Type.Variants[v.Index]
				return variantRef{v.Type.Name, info.Name, info.Arity}, nil
			}
		}
		if ref, ok := builtinVariants[name]; ok {
			return ref, nil
		}
		return variantRef{}, types.NewError(types.E_VARNF, "cannot find tuple struct or variant `%s` in this scope", name)
	}
	prefix := path[:len(path)-1]
	if len(prefix) == 1 && (prefix[0] == "Option" || prefix[0] == "Result") {
		if ref, ok := builtinVariants[name]; ok && ref.enum == prefix[0] {
			return ref, nil
		}
	}
	res := i.resolvePath(prefix, env)
	if res.IsError() {
		return variantRef{}, res.Error
	}
	tv, ok := res.Val.(*types.TypeValue)
	if !ok || !tv.IsEnum {
		return variantRef{}, types.NewError(types.E_TYPE, "`%s` is not an enum", strings.Join(prefix, "::"))
	}
	_, info, ok := tv.Variant(name)
	if !ok {
		return variantRef{}, types.NewError(types.E_VARNF, "no variant named `%s` found for enum `%s`", name, tv.Name)
	}
	return variantRef{tv.Name, info.Name, info.Arity}, nil
}

func (i *Interpreter) matchVariant(p *parser.VariantPattern, v types.Value, env *Environment, ctx *types.TaskContext) ([]binding, bool, *types.RuntimeError) {
	ref, err := i.resolveVariant(p.Path, env)
	if err != nil {
		return nil, false, err
	}
	e, ok := v.(types.EnumValue)
	if !ok || e.Enum != ref.enum {
		return nil, false, patternMismatch(ref.enum, v)
	}
	if len(p.Args) != ref.arity {
		return nil, false, types.NewError(types.E_TYPE, "this pattern has %d field(s), but the variant `%s` has %d field(s)", len(p.Args), ref.variant, ref.arity)
	}
	if e.Variant != ref.variant {
		return nil, false, nil
	}
	return i.matchAll(p.Args, e.Fields, env, ctx)
}

// unitVariant reports whether a capitalized identifier pattern names a
// unit enum variant in scope, such as an imported Red
func (i *Interpreter) unitVariant(name string, env *Environment) (types.EnumValue, bool) {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return types.EnumValue{}, false
	}
	v, ok := env.Get(name)
	if !ok {
		return types.EnumValue{}, false
	}
	e, ok := v.(types.EnumValue)
	return e, ok && len(e.Fields) == 0
}

func (i *Interpreter) matchVariantValue(unit types.EnumValue, v types.Value) ([]binding, bool, *types.RuntimeError) {
	e, ok := v.(types.EnumValue)
	if !ok || e.Enum != unit.Enum {
		return nil, false, patternMismatch(unit.Enum, v)
	}
	return nil, e.Variant == unit.Variant, nil
}
