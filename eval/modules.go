package eval

import (
	"sort"
	"strings"

	"ruchy/parser"
	"ruchy/types"
)

// declareItems hoists the items of a statement list into env so that they
// can be referenced before their declaration. Types are declared first,
// then modules, impl blocks, functions and finally imports.
func (i *Interpreter) declareItems(stmts []parser.Stmt, env *Environment, ctx *types.TaskContext) types.Result {
	return i.declareInto(stmts, env, nil, ctx)
}

// declareInto declares items in env and, when mod is non-nil, publishes
// them as members of mod
func (i *Interpreter) declareInto(stmts []parser.Stmt, env *Environment, mod *types.ModuleValue, ctx *types.TaskContext) types.Result {
	define := func(name string, v types.Value, exported bool) {
		env.DefineItem(name, v)
		if mod != nil {
			mod.Define(name, v, exported)
		}
	}
	for phase := 0; phase < 5; phase++ {
		for _, stmt := range stmts {
			decl, exported := parser.Unexport(stmt)
			var res types.Result
			switch d := decl.(type) {
			case *parser.StructDecl:
				if phase == 0 {
					fields := make([]string, len(d.Fields))
					for k, f := range d.Fields {
						fields[k] = f.Name
					}
					define(d.Name, types.NewStructType(d.Name, fields), exported)
				}
			case *parser.EnumDecl:
				if phase == 0 {
					variants := make([]types.VariantInfo, len(d.Variants))
					for k, v := range d.Variants {
						variants[k] = types.VariantInfo{Name: v.Name, Arity: len(v.Fields)}
					}
					define(d.Name, types.NewEnumType(d.Name, variants), exported)
				}
			case *parser.ModDecl:
				if phase == 1 {
					var m *types.ModuleValue
					m, res = i.declareModule(d, env, ctx)
					if res.IsNormal() {
						define(d.Name, m, exported)
					}
				}
			case *parser.ImplDecl:
				if phase == 2 {
					res = i.declareImpl(d, env)
				}
			case *parser.FunDecl:
				if phase == 3 {
					define(d.Name, &types.FunctionValue{
						Name:       d.Name,
						Params:     d.Params,
						ReturnType: d.ReturnType,
						Body:       d.Body,
						Receiver:   d.Receiver,
						Env:        env,
					}, exported)
				}
			case *parser.ImportStmt:
				if phase == 4 {
					res = i.evalImport(d, env, define, exported)
				}
			}
			if !res.IsNormal() {
				if res.IsError() {
					res.Error.At(stmt.Position())
				}
				return res
			}
		}
	}
	return types.Ok(types.Unit)
}

// declareModule evaluates an inline module. Its body may only hold items;
// its scope is nested in the enclosing one.
func (i *Interpreter) declareModule(d *parser.ModDecl, env *Environment, ctx *types.TaskContext) (*types.ModuleValue, types.Result) {
	for _, s := range d.Body {
		if !parser.IsItem(s) {
			return nil, types.Raise(types.NewError(types.E_INVARG, "only items are allowed in module `%s`", d.Name).At(s.Position()))
		}
	}
	m := types.NewModule(d.Name)
	res := i.declareInto(d.Body, NewNestedEnvironment(env), m, ctx)
	return m, res
}

// declareImpl attaches the functions of an impl block to their type
func (i *Interpreter) declareImpl(d *parser.ImplDecl, env *Environment) types.Result {
	v, ok := env.Get(d.TypeName)
	tv, isType := v.(*types.TypeValue)
	if !ok || !isType {
		return types.Err(types.E_VARNF, "cannot find type `%s` in this scope", d.TypeName)
	}
	for _, item := range d.Items {
		decl, _ := parser.Unexport(item)
		f, ok := decl.(*parser.FunDecl)
		if !ok {
			return types.Raise(types.NewError(types.E_INVARG, "only functions are allowed in an impl block").At(item.Position()))
		}
		tv.Methods[f.Name] = &types.FunctionValue{
			Name:       d.TypeName + "::" + f.Name,
			Params:     f.Params,
			ReturnType: f.ReturnType,
			Body:       f.Body,
			Receiver:   f.Receiver,
			Env:        env,
		}
	}
	return types.Ok(types.Unit)
}

// ignoredRoots are import roots provided by the host language
var ignoredRoots = map[string]bool{"std": true, "core": true}

// evalImport binds the names an import statement brings into scope
func (i *Interpreter) evalImport(s *parser.ImportStmt, env *Environment, define func(string, types.Value, bool), exported bool) types.Result {
	if len(s.Path) == 0 || ignoredRoots[s.Path[0]] {
		return types.Ok(types.Unit)
	}
	if len(s.Items) == 0 && !s.Wildcard {
		res := i.resolvePath(s.Path, env)
		if !res.IsNormal() {
			return types.Err(types.E_VARNF, "unresolved import `%s`: %s", strings.Join(s.Path, "::"), res.Error.Message)
		}
		name := s.Alias
		if name == "" {
			name = s.Path[len(s.Path)-1]
		}
		define(name, res.Val, exported)
		return types.Ok(types.Unit)
	}

	target := i.resolvePath(s.Path, env)
	if !target.IsNormal() {
		return types.Err(types.E_VARNF, "unresolved import `%s`: %s", strings.Join(s.Path, "::"), target.Error.Message)
	}
	if s.Wildcard {
		names, err := exportedNames(target.Val)
		if err != nil {
			return types.Raise(err)
		}
		for _, name := range names {
			res := memberOf(target.Val, name)
			if !res.IsNormal() {
				return res
			}
			define(name, res.Val, exported)
		}
		return types.Ok(types.Unit)
	}
	for _, item := range s.Items {
		res := memberOf(target.Val, item.Name)
		if !res.IsNormal() {
			return res
		}
		name := item.Alias
		if name == "" {
			name = item.Name
		}
		define(name, res.Val, exported)
	}
	return types.Ok(types.Unit)
}

// exportedNames lists what a wildcard import binds
func exportedNames(v types.Value) ([]string, *types.RuntimeError) {
	switch v := v.(type) {
	case *types.ModuleValue:
		names := v.Exports()
		sort.Strings(names)
		return names, nil
	case *types.TypeValue:
		var names []string
		for _, variant := range v.Variants {
			names = append(names, variant.Name)
		}
		return names, nil
	}
	return nil, types.NewError(types.E_TYPE, "cannot glob-import from %s", types.TypeName(v))
}

// resolvePath resolves a :: path: a binding followed by module members,
// enum variants or associated functions, or a built-in associated
// function such as HashMap::new
func (i *Interpreter) resolvePath(segments []string, env *Environment) types.Result {
	for len(segments) > 1 && (segments[0] == "self" || segments[0] == "crate" || segments[0] == "super") {
		segments = segments[1:]
	}
	head := segments[0]
	v, ok := env.Get(head)
	if !ok {
		if fn, found := i.builtins.LookupPath(segments); found {
			return types.Ok(&types.BuiltinValue{Name: strings.Join(segments, "::"), Fn: fn})
		}
		if len(segments) == 1 {
			return i.evalIdentifier(&parser.Ident{Name: head}, env)
		}
		if len(segments) == 2 && (head == "Option" || head == "Result") {
			if ref, ok := builtinVariants[segments[1]]; ok && ref.enum == head {
				return i.evalIdentifier(&parser.Ident{Name: segments[1]}, env)
			}
		}
		return types.Err(types.E_VARNF, "failed to resolve: use of undeclared type or module `%s`", head)
	}
	for _, seg := range segments[1:] {
		res := memberOf(v, seg)
		if !res.IsNormal() {
			return res
		}
		v = res.Val
	}
	return types.Ok(v)
}

// memberOf looks up one path segment inside a module or type
func memberOf(v types.Value, name string) types.Result {
	switch v := v.(type) {
	case *types.ModuleValue:
		member, exported, found := v.Member(name)
		if !found {
			return types.Err(types.E_VARNF, "cannot find `%s` in module `%s`", name, v.Name)
		}
		if !exported {
			return types.Err(types.E_PERM, "`%s` is private to module `%s`", name, v.Name)
		}
		return types.Ok(member)
	case *types.TypeValue:
		if idx, info, ok := v.Variant(name); ok {
			if info.Arity == 0 {
				return types.Ok(v.NewVariant(idx, nil))
			}
			return types.Ok(&VariantConstructor{Type: v, Index: idx})
		}
		if fn, ok := v.Methods[name]; ok {
			return types.Ok(fn)
		}
		return types.Err(types.E_VARNF, "no function or associated item named `%s` found for `%s`", name, v.Name)
	}
	return types.Err(types.E_TYPE, "cannot look up `%s` in %s", name, types.TypeName(v))
}
