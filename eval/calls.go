package eval

import (
	"ruchy/builtins"
	"ruchy/parser"
	"ruchy/types"
)

// maxTraceFrames bounds the traceback kept for deep recursion
const maxTraceFrames = 64

// VariantConstructor builds instances of a tuple enum variant. It is the
// value of a path such as Shape::Circle.
type VariantConstructor struct {
	Type  *types.TypeValue
	Index int
}

func (c *VariantConstructor) Kind() types.Kind { return types.KindBuiltin }
func (c *VariantConstructor) String() string   { return c.Debug() }
func (c *VariantConstructor) Debug() string {
	return "<variant " + c.Type.Name + "::" + c.Type.Variants[c.Index].Name + ">"
}

func (c *VariantConstructor) Equal(other types.Value) bool {
	o, ok := other.(*VariantConstructor)
	return ok && o.Type == c.Type && o.Index == c.Index
}

var printFamily = map[string]bool{"print": true, "println": true, "eprint": true, "eprintln": true}

// evalCall evaluates the callee, then the arguments left to right, then
// invokes the callee
func (i *Interpreter) evalCall(node *parser.CallExpr, env *Environment, ctx *types.TaskContext) types.Result {
	if id, ok := node.Callee.(*parser.Ident); ok && printFamily[id.Name] {
		if _, shadowed := env.Get(id.Name); !shadowed {
			if res, handled := i.evalFormattedPrint(id.Name, node, env, ctx); handled {
				return res
			}
		}
	}
	callee := i.Eval(node.Callee, env, ctx)
	if !callee.IsNormal() {
		return callee
	}
	args, res := i.evalExprs(node.Args, env, ctx)
	if !res.IsNormal() {
		return res
	}
	return i.callValue(callee.Val, args, node.Pos, ctx)
}

// evalFormattedPrint handles println("x = {}", x): a literal first
// argument containing braces is a format string
func (i *Interpreter) evalFormattedPrint(name string, node *parser.CallExpr, env *Environment, ctx *types.TaskContext) (types.Result, bool) {
	if len(node.Args) == 0 {
		return types.Result{}, false
	}
	lit, ok := node.Args[0].(*parser.StringLit)
	if !ok || !builtins.IsFormatLiteral(lit.Value) {
		return types.Result{}, false
	}
	args, res := i.evalExprs(node.Args[1:], env, ctx)
	if !res.IsNormal() {
		return res, true
	}
	text, err := builtins.FormatString(lit.Value, args)
	if err != nil {
		return types.Raise(err), true
	}
	return builtins.Emit(ctx, name, text), true
}

// callValue invokes any callable value. A function with a self receiver
// called through its path takes the receiver as its first argument.
func (i *Interpreter) callValue(fn types.Value, args []types.Value, pos parser.Position, ctx *types.TaskContext) types.Result {
	switch f := fn.(type) {
	case *types.FunctionValue:
		if f.Receiver != parser.ReceiverNone {
			if len(args) == 0 {
				return types.Err(types.E_ARGS, "%s takes a receiver as its first argument", f.Name)
			}
			return i.callFunction(f, args[0], args[1:], pos, ctx)
		}
		return i.callFunction(f, nil, args, pos, ctx)
	case *types.BuiltinValue:
		if err := ctx.Checkpoint(); err != nil {
			return types.Raise(err)
		}
		return f.Fn(ctx, args)
	case *VariantConstructor:
		info := f.Type.Variants[f.Index]
		if len(args) != info.Arity {
			return types.Err(types.E_ARGS, "%s::%s takes %d argument(s), got %d", f.Type.Name, info.Name, info.Arity, len(args))
		}
		return types.Ok(f.Type.NewVariant(f.Index, append([]types.Value(nil), args...)))
	case *types.TypeValue:
		return types.Err(types.E_NOTCALLABLE, "`%s` is a type; use a struct literal or an associated function", f.Name)
	}
	return types.Err(types.E_NOTCALLABLE, "%s is not callable", types.TypeName(fn))
}

// callFunction runs a user function or closure in a fresh scope nested in
// its defining environment
func (i *Interpreter) callFunction(fn *types.FunctionValue, self types.Value, args []types.Value, pos parser.Position, ctx *types.TaskContext) types.Result {
	if err := ctx.Checkpoint(); err != nil {
		return types.Raise(err)
	}
	if err := ctx.EnterCall(); err != nil {
		return types.Raise(err)
	}
	defer ctx.LeaveCall()

	name := fn.Name
	if name == "" {
		name = "<closure>"
	}
	i.stack = append(i.stack, callFrame{name: name, pos: pos})
	defer func() { i.stack = i.stack[:len(i.stack)-1] }()

	i.tracer.Call(name, args, ctx.Depth)
	res := i.invoke(fn, self, args, ctx)
	if res.IsError() {
		res.Error.At(pos)
		if res.Error.Traceback == nil {
			res.Error.Traceback = i.traceback(res.Error.Pos)
		}
		i.tracer.Error(name, res.Error)
		return res
	}
	i.tracer.Return(name, res.Val)
	return res
}

func (i *Interpreter) invoke(fn *types.FunctionValue, self types.Value, args []types.Value, ctx *types.TaskContext) types.Result {
	if len(args) != len(fn.Params) {
		return types.Err(types.E_ARGS, "%s takes %d argument(s) but %d were supplied", displayName(fn), len(fn.Params), len(args))
	}
	defEnv, _ := fn.Env.(*Environment)
	if defEnv == nil {
		defEnv = i.global
	}
	callEnv := NewNestedEnvironment(defEnv)
	if self != nil {
		callEnv.Define("self", self)
	}
	for k, p := range fn.Params {
		if p.Type != nil {
			if err := checkAnnotation(p.Type, args[k]); err != nil {
				return types.Raise(err.At(p.Pos))
			}
		}
		callEnv.Define(p.Name, args[k])
	}

	res := i.Eval(fn.Body, callEnv, ctx)
	switch res.Flow {
	case types.FlowReturn:
		res = types.Ok(res.Val)
	case types.FlowBreak, types.FlowContinue:
		return types.Err(types.E_INVARG, "`break` or `continue` outside of a loop")
	}
	if res.IsNormal() && fn.ReturnType != nil {
		if err := checkAnnotation(fn.ReturnType, res.Val); err != nil {
			return types.Raise(err.At(fn.Body.Position()))
		}
	}
	return res
}

func displayName(fn *types.FunctionValue) string {
	if fn.Name == "" {
		return "closure"
	}
	return "function `" + fn.Name + "`"
}

// evalMethodCall dispatches recv.method(args): impl methods of user types
// first, then the built-in method table
func (i *Interpreter) evalMethodCall(node *parser.MethodCallExpr, env *Environment, ctx *types.TaskContext) types.Result {
	recv := i.Eval(node.Receiver, env, ctx)
	if !recv.IsNormal() {
		return recv
	}
	args, res := i.evalExprs(node.Args, env, ctx)
	if !res.IsNormal() {
		return res
	}
	return i.callMethod(recv.Val, node.Method, args, node.Pos, ctx)
}

func (i *Interpreter) callMethod(recv types.Value, name string, args []types.Value, pos parser.Position, ctx *types.TaskContext) types.Result {
	if tv := declaringType(recv); tv != nil {
		if fn, ok := tv.Methods[name]; ok {
			if fn.Receiver == parser.ReceiverNone {
				return types.Err(types.E_METHODNF, "`%s::%s` is an associated function, not a method", tv.Name, name)
			}
			return i.callFunction(fn, recv, args, pos, ctx)
		}
	}
	if m, ok := i.builtins.LookupMethod(builtins.ReceiverOf(recv), name); ok {
		if err := ctx.Checkpoint(); err != nil {
			return types.Raise(err)
		}
		return m.Call(ctx, recv, args)
	}
	return types.Err(types.E_METHODNF, "no method named `%s` found for %s", name, types.TypeName(recv))
}

func declaringType(v types.Value) *types.TypeValue {
	switch v := v.(type) {
	case *types.StructValue:
		return v.Type
	case types.EnumValue:
		return v.Type
	}
	return nil
}
