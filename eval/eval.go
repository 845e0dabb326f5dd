package eval

import (
	"strings"

	"ruchy/builtins"
	"ruchy/parser"
	"ruchy/types"
)

// Eval evaluates an expression and returns a Result.
// All evaluation methods follow this pattern:
// - Accept the current environment and *TaskContext
// - Return Result (not raw Value) to unify error handling and control flow
// A runtime error is tagged with the position of the innermost node that
// raised it.
func (i *Interpreter) Eval(node parser.Expr, env *Environment, ctx *types.TaskContext) types.Result {
	res := i.eval(node, env, ctx)
	if res.IsError() {
		res.Error.At(node.Position())
	}
	return res
}

func (i *Interpreter) eval(node parser.Expr, env *Environment, ctx *types.TaskContext) types.Result {
	switch n := node.(type) {
	case *parser.IntLit:
		return types.Ok(types.NewInt(n.Value))
	case *parser.FloatLit:
		return types.Ok(types.NewFloat(n.Value))
	case *parser.StringLit:
		return types.Ok(types.NewStr(n.Value))
	case *parser.CharLit:
		return types.Ok(types.NewChar(n.Value))
	case *parser.BoolLit:
		return types.Ok(types.NewBool(n.Value))
	case *parser.UnitLit:
		return types.Ok(types.Unit)
	case *parser.FStringExpr:
		return i.evalFString(n, env, ctx)
	case *parser.Ident:
		return i.evalIdentifier(n, env)
	case *parser.PathExpr:
		return i.resolvePath(n.Segments, env)
	case *parser.BinaryExpr:
		return i.evalBinary(n, env, ctx)
	case *parser.UnaryExpr:
		return i.evalUnary(n, env, ctx)
	case *parser.CastExpr:
		return i.evalCast(n, env, ctx)
	case *parser.PipelineExpr:
		return i.evalPipeline(n, env, ctx)
	case *parser.CallExpr:
		return i.evalCall(n, env, ctx)
	case *parser.MethodCallExpr:
		return i.evalMethodCall(n, env, ctx)
	case *parser.IndexExpr:
		return i.evalIndex(n, env, ctx)
	case *parser.SliceExpr:
		return i.evalSlice(n, env, ctx)
	case *parser.FieldExpr:
		return i.evalField(n, env, ctx)
	case *parser.ClosureExpr:
		return types.Ok(&types.FunctionValue{Params: n.Params, ReturnType: n.ReturnType, Body: n.Body, Env: env})
	case *parser.BlockExpr:
		return i.evalBlock(n, env, ctx)
	case *parser.ListLit:
		return i.evalList(n, env, ctx)
	case *parser.MapLit:
		return i.evalMap(n, env, ctx)
	case *parser.TupleLit:
		elems, res := i.evalExprs(n.Elements, env, ctx)
		if !res.IsNormal() {
			return res
		}
		return types.Ok(types.NewTuple(elems...))
	case *parser.StructLit:
		return i.evalStructLit(n, env, ctx)
	case *parser.RangeExpr:
		return i.evalRange(n, env, ctx)
	case *parser.IfExpr:
		return i.evalIf(n, env, ctx)
	case *parser.MatchExpr:
		return i.evalMatch(n, env, ctx)
	case *parser.LoopExpr:
		return i.evalLoop(n, env, ctx)
	case *parser.BreakExpr:
		if n.Value == nil {
			return types.Break(nil)
		}
		res := i.Eval(n.Value, env, ctx)
		if !res.IsNormal() {
			return res
		}
		return types.Break(res.Val)
	case *parser.ContinueExpr:
		return types.Continue()
	case *parser.ReturnExpr:
		if n.Value == nil {
			return types.Return(types.Unit)
		}
		res := i.Eval(n.Value, env, ctx)
		if !res.IsNormal() {
			return res
		}
		return types.Return(res.Val)
	default:
		// Unknown node type - this should never happen if parser is correct
		return types.Err(types.E_TYPE, "unsupported expression %T", node)
	}
}

// evalExprs evaluates expressions left to right
func (i *Interpreter) evalExprs(exprs []parser.Expr, env *Environment, ctx *types.TaskContext) ([]types.Value, types.Result) {
	vals := make([]types.Value, len(exprs))
	for k, e := range exprs {
		res := i.Eval(e, env, ctx)
		if !res.IsNormal() {
			return nil, res
		}
		vals[k] = res.Val
	}
	return vals, types.Ok(types.Unit)
}

// evalIdentifier looks up a variable, then the builtin functions
func (i *Interpreter) evalIdentifier(node *parser.Ident, env *Environment) types.Result {
	if val, ok := env.Get(node.Name); ok {
		return types.Ok(val)
	}
	if node.Name == "None" {
		return types.Ok(types.None)
	}
	if fn, ok := i.builtins.Get(node.Name); ok {
		return types.Ok(&types.BuiltinValue{Name: node.Name, Fn: fn})
	}
	return types.Err(types.E_VARNF, "cannot find value `%s` in this scope", node.Name)
}

// evalFString interpolates each part with Display, or with the part's
// format spec
func (i *Interpreter) evalFString(node *parser.FStringExpr, env *Environment, ctx *types.TaskContext) types.Result {
	var b strings.Builder
	for _, part := range node.Parts {
		if part.Expr == nil {
			b.WriteString(part.Text)
			continue
		}
		res := i.Eval(part.Expr, env, ctx)
		if !res.IsNormal() {
			return res
		}
		ph := builtins.Placeholder{Precision: -1}
		if part.Format != "" {
			var err error
			ph, err = builtins.ParsePlaceholder(":" + part.Format)
			if err != nil {
				return types.Err(types.E_INVARG, "%v", err)
			}
		}
		b.WriteString(builtins.FormatValue(res.Val, ph))
	}
	return types.Ok(types.NewStr(b.String()))
}

func (i *Interpreter) evalList(node *parser.ListLit, env *Environment, ctx *types.TaskContext) types.Result {
	elems, res := i.evalExprs(node.Elements, env, ctx)
	if !res.IsNormal() {
		return res
	}
	return types.Ok(types.NewList(elems))
}

// evalMap builds a map literal; keys must be hashable
func (i *Interpreter) evalMap(node *parser.MapLit, env *Environment, ctx *types.TaskContext) types.Result {
	m := types.NewMap()
	for _, entry := range node.Entries {
		k := i.Eval(entry.Key, env, ctx)
		if !k.IsNormal() {
			return k
		}
		if err := builtins.CheckKey(k.Val); err != nil {
			return types.Raise(err.At(entry.Key.Position()))
		}
		v := i.Eval(entry.Value, env, ctx)
		if !v.IsNormal() {
			return v
		}
		m.Set(k.Val, v.Val)
	}
	return types.Ok(m)
}

// evalRange builds an integer or character range; open bounds are kept
func (i *Interpreter) evalRange(node *parser.RangeExpr, env *Environment, ctx *types.TaskContext) types.Result {
	r := types.RangeValue{Inclusive: node.Inclusive}
	kind := types.KindUnit
	bound := func(e parser.Expr) (int64, types.Result) {
		res := i.Eval(e, env, ctx)
		if !res.IsNormal() {
			return 0, res
		}
		if kind != types.KindUnit && res.Val.Kind() != kind {
			return 0, types.Err(types.E_TYPE, "range bounds must have the same type, found %s and %s", kind, res.Val.Kind())
		}
		kind = res.Val.Kind()
		switch v := res.Val.(type) {
		case types.IntValue:
			return v.Val, res
		case types.CharValue:
			return int64(v.Val), res
		}
		return 0, types.Err(types.E_TYPE, "range bounds must be int or char, found %s", types.TypeName(res.Val))
	}
	if node.Start != nil {
		n, res := bound(node.Start)
		if !res.IsNormal() {
			return res
		}
		r.Start, r.HasStart = n, true
	}
	if node.End != nil {
		n, res := bound(node.End)
		if !res.IsNormal() {
			return res
		}
		r.End, r.HasEnd = n, true
	}
	r.Char = kind == types.KindChar
	return types.Ok(r)
}

// evalStructLit builds a struct instance; every declared field must be
// given exactly once
func (i *Interpreter) evalStructLit(node *parser.StructLit, env *Environment, ctx *types.TaskContext) types.Result {
	res := i.resolvePath(node.Path, env)
	if !res.IsNormal() {
		return res
	}
	tv, ok := res.Val.(*types.TypeValue)
	if !ok || tv.IsEnum {
		return types.Err(types.E_TYPE, "`%s` is not a struct", strings.Join(node.Path, "::"))
	}
	given := make(map[string]types.Value, len(node.Fields))
	for _, f := range node.Fields {
		if !tv.HasField(f.Name) {
			return types.Err(types.E_TYPE, "struct `%s` has no field named `%s`", tv.Name, f.Name)
		}
		if _, dup := given[f.Name]; dup {
			return types.Err(types.E_TYPE, "field `%s` specified more than once", f.Name)
		}
		v := i.Eval(f.Value, env, ctx)
		if !v.IsNormal() {
			return v
		}
		given[f.Name] = v.Val
	}
	vals := make([]types.Value, len(tv.Fields))
	for k, name := range tv.Fields {
		v, ok := given[name]
		if !ok {
			return types.Err(types.E_TYPE, "missing field `%s` in initializer of `%s`", name, tv.Name)
		}
		vals[k] = v
	}
	s := types.NewStruct(tv.Name, tv.Fields, vals)
	s.Type = tv
	return types.Ok(s)
}

// evalIf evaluates if/else; without an else branch the value is unit
func (i *Interpreter) evalIf(node *parser.IfExpr, env *Environment, ctx *types.TaskContext) types.Result {
	ok, res := condition(i.Eval(node.Condition, env, ctx))
	if !res.IsNormal() {
		return res
	}
	if ok {
		return i.evalBlock(node.Then, env, ctx)
	}
	if node.Else != nil {
		return i.Eval(node.Else, env, ctx)
	}
	return types.Ok(types.Unit)
}

// evalMatch tries the arms in order; the first arm whose pattern matches
// and whose guard holds is evaluated in a scope holding its bindings
func (i *Interpreter) evalMatch(node *parser.MatchExpr, env *Environment, ctx *types.TaskContext) types.Result {
	subject := i.Eval(node.Subject, env, ctx)
	if !subject.IsNormal() {
		return subject
	}
	for _, arm := range node.Arms {
		binds, matched, err := i.match(arm.Pattern, subject.Val, env, ctx)
		if err != nil {
			return types.Raise(err.At(arm.Pattern.Position()))
		}
		if !matched {
			continue
		}
		armEnv := NewNestedEnvironment(env)
		bindAll(armEnv, binds)
		if arm.Guard != nil {
			ok, res := condition(i.Eval(arm.Guard, armEnv, ctx))
			if !res.IsNormal() {
				return res
			}
			if !ok {
				continue
			}
		}
		return i.Eval(arm.Body, armEnv, ctx)
	}
	return types.Err(types.E_NOMATCH, "no pattern matched %s", subject.Val.Debug())
}

// evalLoop runs until break; the break value is the loop's value
func (i *Interpreter) evalLoop(node *parser.LoopExpr, env *Environment, ctx *types.TaskContext) types.Result {
	for {
		if err := ctx.Checkpoint(); err != nil {
			return types.Raise(err.At(node.Pos))
		}
		res := i.evalBlock(node.Body, env, ctx)
		switch res.Flow {
		case types.FlowBreak:
			if res.Val == nil {
				return types.Ok(types.Unit)
			}
			return types.Ok(res.Val)
		case types.FlowReturn, types.FlowError:
			return res
		}
	}
}
