package eval

import (
	"ruchy/builtins"
	"ruchy/parser"
	"ruchy/types"
)

// evalTopLevel runs program or REPL statements in script mode: an
// assignment to an unknown name declares it
func (i *Interpreter) evalTopLevel(stmts []parser.Stmt, env *Environment, ctx *types.TaskContext) types.Result {
	prev := i.scriptEnv
	i.scriptEnv = env
	defer func() { i.scriptEnv = prev }()
	return i.EvalStatements(stmts, env, ctx)
}

// EvalStatements declares the items of a statement list, then runs the
// remaining statements in order. The value is that of a trailing
// expression statement without ';', or unit.
func (i *Interpreter) EvalStatements(stmts []parser.Stmt, env *Environment, ctx *types.TaskContext) types.Result {
	if res := i.declareItems(stmts, env, ctx); !res.IsNormal() {
		return res
	}
	var last types.Value = types.Unit
	for _, stmt := range stmts {
		if parser.IsItem(stmt) {
			continue
		}
		result := i.EvalStmt(stmt, env, ctx)
		// Propagate control flow (return, break, continue, error)
		if !result.IsNormal() {
			return result
		}
		last = types.Unit
		if es, ok := stmt.(*parser.ExprStmt); ok && !es.Semi {
			last = result.Val
		}
	}
	return types.Ok(last)
}

// evalBlock evaluates a block in a new nested scope
func (i *Interpreter) evalBlock(block *parser.BlockExpr, env *Environment, ctx *types.TaskContext) types.Result {
	return i.EvalStatements(block.Stmts, NewNestedEnvironment(env), ctx)
}

// EvalStmt evaluates a single statement
func (i *Interpreter) EvalStmt(stmt parser.Stmt, env *Environment, ctx *types.TaskContext) types.Result {
	var res types.Result
	switch s := stmt.(type) {
	case *parser.ExprStmt:
		res = i.Eval(s.Expr, env, ctx)
		if res.IsNormal() && s.Semi {
			res = types.Ok(types.Unit)
		}
	case *parser.LetStmt:
		res = i.evalLet(s, env, ctx)
	case *parser.AssignStmt:
		res = i.evalAssign(s, env, ctx)
	case *parser.WhileStmt:
		res = i.evalWhile(s, env, ctx)
	case *parser.ForStmt:
		res = i.evalFor(s, env, ctx)
	case *parser.ExportStmt:
		res = types.Err(types.E_INVARG, "only declarations can be exported")
	default:
		res = types.Err(types.E_TYPE, "unsupported statement %T", stmt)
	}
	if res.IsError() {
		res.Error.At(stmt.Position())
	}
	return res
}

// binding is one name bound by a pattern
type binding struct {
	name string
	val  types.Value
}

func bindAll(env *Environment, binds []binding) {
	for _, b := range binds {
		env.Define(b.name, b.val)
	}
}

// evalLet evaluates let pattern [: T] = value
func (i *Interpreter) evalLet(s *parser.LetStmt, env *Environment, ctx *types.TaskContext) types.Result {
	res := i.Eval(s.Value, env, ctx)
	if !res.IsNormal() {
		return res
	}
	if s.Type != nil {
		if err := checkAnnotation(s.Type, res.Val); err != nil {
			return types.Raise(err.At(s.Value.Position()))
		}
	}
	binds, ok, err := i.match(s.Pattern, res.Val, env, ctx)
	if err != nil {
		return types.Raise(err)
	}
	if !ok {
		return types.Err(types.E_NOMATCH, "refutable pattern in let did not match %s", res.Val.Debug())
	}
	bindAll(env, binds)
	return types.Ok(types.Unit)
}

// evalAssign evaluates target = value and the compound forms
func (i *Interpreter) evalAssign(s *parser.AssignStmt, env *Environment, ctx *types.TaskContext) types.Result {
	res := i.Eval(s.Value, env, ctx)
	if !res.IsNormal() {
		return res
	}
	val := res.Val
	if s.Operator != parser.TOKEN_ASSIGN {
		cur := i.Eval(s.Target, env, ctx)
		if !cur.IsNormal() {
			return cur
		}
		combined := binaryOp(parser.CompoundBase(s.Operator), cur.Val, val)
		if !combined.IsNormal() {
			return combined
		}
		val = combined.Val
	}
	if res := i.assignTo(s.Target, val, env, ctx); !res.IsNormal() {
		return res
	}
	return types.Ok(types.Unit)
}

// assignTo stores val into a place: a variable, an index or a field.
// Tuples are values, so storing into a tuple field rebuilds the tuple
// and assigns it back to its own place.
func (i *Interpreter) assignTo(target parser.Expr, val types.Value, env *Environment, ctx *types.TaskContext) types.Result {
	switch t := target.(type) {
	case *parser.Ident:
		if err := env.Assign(t.Name, val); err != nil {
			if err.Code == types.E_VARNF && env == i.scriptEnv {
				env.Define(t.Name, val)
				return types.Ok(types.Unit)
			}
			return types.Raise(err.At(t.Pos))
		}
		return types.Ok(types.Unit)

	case *parser.IndexExpr:
		container := i.Eval(t.Expr, env, ctx)
		if !container.IsNormal() {
			return container
		}
		idx := i.Eval(t.Index, env, ctx)
		if !idx.IsNormal() {
			return idx
		}
		return storeIndex(container.Val, idx.Val, val)

	case *parser.FieldExpr:
		base := i.Eval(t.Expr, env, ctx)
		if !base.IsNormal() {
			return base
		}
		switch b := base.Val.(type) {
		case *types.StructValue:
			if !b.SetField(t.Field, val) {
				return types.Err(types.E_TYPE, "no field `%s` on type `%s`", t.Field, b.TypeName)
			}
			return types.Ok(types.Unit)
		case types.TupleValue:
			n, err := tupleIndex(t.Field, len(b.Elems))
			if err != nil {
				return types.Raise(err)
			}
			elems := append([]types.Value(nil), b.Elems...)
			elems[n] = val
			return i.assignTo(t.Expr, types.TupleValue{Elems: elems}, env, ctx)
		}
		return types.Err(types.E_TYPE, "cannot assign to field `%s` of %s", t.Field, types.TypeName(base.Val))
	}
	return types.Err(types.E_TYPE, "invalid assignment target")
}

// condition requires a bool
func condition(res types.Result) (bool, types.Result) {
	if !res.IsNormal() {
		return false, res
	}
	b, ok := res.Val.(types.BoolValue)
	if !ok {
		return false, types.Err(types.E_TYPE, "mismatched types: expected `bool`, found %s", types.TypeName(res.Val))
	}
	return b.Val, res
}

// evalWhile evaluates while loops
func (i *Interpreter) evalWhile(s *parser.WhileStmt, env *Environment, ctx *types.TaskContext) types.Result {
	for {
		if err := ctx.Checkpoint(); err != nil {
			return types.Raise(err.At(s.Pos))
		}
		ok, res := condition(i.Eval(s.Condition, env, ctx))
		if !res.IsNormal() {
			return res
		}
		if !ok {
			break
		}

		res = i.evalBlock(s.Body, env, ctx)
		switch res.Flow {
		case types.FlowBreak:
			return types.Ok(types.Unit)
		case types.FlowReturn, types.FlowError:
			return res
		}
	}
	return types.Ok(types.Unit)
}

// evalFor evaluates for pattern in iterable. Collections are iterated
// over a snapshot taken at loop entry.
func (i *Interpreter) evalFor(s *parser.ForStmt, env *Environment, ctx *types.TaskContext) types.Result {
	iterRes := i.Eval(s.Iter, env, ctx)
	if !iterRes.IsNormal() {
		return iterRes
	}
	next, err := iterate(iterRes.Val)
	if err != nil {
		return types.Raise(err.At(s.Iter.Position()))
	}

	for {
		v, ok := next()
		if !ok {
			break
		}
		if err := ctx.Checkpoint(); err != nil {
			return types.Raise(err.At(s.Pos))
		}

		iterEnv := NewNestedEnvironment(env)
		binds, matched, err := i.match(s.Pattern, v, iterEnv, ctx)
		if err != nil {
			return types.Raise(err.At(s.Pattern.Position()))
		}
		if !matched {
			return types.Err(types.E_NOMATCH, "refutable pattern in for loop did not match %s", v.Debug())
		}
		bindAll(iterEnv, binds)

		res := i.evalBlock(s.Body, iterEnv, ctx)
		switch res.Flow {
		case types.FlowBreak:
			return types.Ok(types.Unit)
		case types.FlowReturn, types.FlowError:
			return res
		}
	}
	return types.Ok(types.Unit)
}

// iterate returns a generator over the elements of an iterable value
func iterate(v types.Value) (func() (types.Value, bool), *types.RuntimeError) {
	var elems []types.Value
	switch v := v.(type) {
	case *types.ListValue:
		elems = v.Elements()
	case *types.SetValue:
		elems = v.Elements()
	case *types.MapValue:
		for _, e := range v.Entries() {
			elems = append(elems, types.NewTuple(e.Key, e.Val))
		}
	case types.StrValue:
		for _, c := range v.Val {
			elems = append(elems, types.NewChar(c))
		}
	case types.RangeValue:
		if !v.HasStart {
			return nil, types.NewError(types.E_TYPE, "cannot iterate over %s, which has no start", v.Debug())
		}
		n := v.Start
		return func() (types.Value, bool) {
			if !v.Contains(n) {
				return nil, false
			}
			n++
			return v.Elem(n - 1), true
		}, nil
	default:
		return nil, types.NewError(types.E_TYPE, "%s is not an iterator", types.TypeName(v))
	}
	k := 0
	return func() (types.Value, bool) {
		if k >= len(elems) {
			return nil, false
		}
		k++
		return elems[k-1], true
	}, nil
}

// checkAnnotation rejects values that cannot have the annotated type.
// Type parameters and user types are not checked.
func checkAnnotation(t parser.TypeExpr, v types.Value) *types.RuntimeError {
	if annotationAccepts(t, v) {
		return nil
	}
	return types.NewError(types.E_TYPE, "mismatched types: expected `%s`, found %s", parser.Dump(t), types.TypeName(v))
}

func annotationAccepts(t parser.TypeExpr, v types.Value) bool {
	switch t := t.(type) {
	case *parser.RefType:
		return annotationAccepts(t.Elem, v)
	case *parser.ListType:
		return v.Kind() == types.KindList
	case *parser.TupleType:
		if len(t.Elements) == 0 {
			return v.Kind() == types.KindUnit
		}
		tup, ok := v.(types.TupleValue)
		return ok && len(tup.Elems) == len(t.Elements)
	case *parser.FuncType:
		return v.Kind() == types.KindFunction || v.Kind() == types.KindBuiltin
	case *parser.NamedType:
		if _, ok := builtins.IntTypes[t.Name]; ok {
			return v.Kind() == types.KindInt
		}
		if builtins.FloatTypes[t.Name] {
			return v.Kind() == types.KindFloat
		}
		switch t.Name {
		case "String", "str":
			return v.Kind() == types.KindString
		case "bool":
			return v.Kind() == types.KindBool
		case "char":
			return v.Kind() == types.KindChar
		case "Vec":
			return v.Kind() == types.KindList
		case "HashMap", "BTreeMap":
			return v.Kind() == types.KindMap
		case "HashSet", "BTreeSet":
			return v.Kind() == types.KindSet
		case "Option", "Result":
			e, ok := v.(types.EnumValue)
			return ok && e.Enum == t.Name
		}
	}
	return true
}
