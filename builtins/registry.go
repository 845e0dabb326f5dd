package builtins

import (
	"sort"

	"ruchy/types"
)

// MethodFunc implements a built-in method. recv is the receiver value;
// args excludes it.
type MethodFunc func(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result

// Method describes a built-in method of one receiver type
type Method struct {
	Receiver string
	Name     string
	MinArgs  int
	MaxArgs  int
	Mutates  bool // modifies the receiver in place
	Fn       MethodFunc
}

// Receiver names used to key the method table
const (
	RecvList   = "list"
	RecvString = "string"
	RecvMap    = "map"
	RecvSet    = "set"
	RecvInt    = "int"
	RecvFloat  = "float"
	RecvChar   = "char"
	RecvBool   = "bool"
	RecvRange  = "range"
	RecvOption = "Option"
	RecvResult = "Result"
	RecvTuple  = "tuple"
)

// Registry holds all registered builtin functions and methods
type Registry struct {
	funcs   map[string]types.BuiltinFunc
	paths   map[string]types.BuiltinFunc
	methods map[string]map[string]*Method
}

// NewRegistry creates a new builtin function registry
func NewRegistry() *Registry {
	r := &Registry{
		funcs:   make(map[string]types.BuiltinFunc),
		paths:   make(map[string]types.BuiltinFunc),
		methods: make(map[string]map[string]*Method),
	}

	// Output and assertions
	r.Register("print", builtinPrint)
	r.Register("println", builtinPrintln)
	r.Register("eprint", builtinEprint)
	r.Register("eprintln", builtinEprintln)
	r.Register("assert", builtinAssert)
	r.Register("assert_eq", builtinAssertEq)
	r.Register("panic", builtinPanic)
	r.Register("format", builtinFormat)

	// Conversions
	r.Register("int", builtinInt)
	r.Register("float", builtinFloat)
	r.Register("str", builtinStr)
	r.Register("bool", builtinBool)
	r.Register("char", builtinChar)

	// Generic helpers
	r.Register("len", builtinLen)
	r.Register("min", builtinMin)
	r.Register("max", builtinMax)

	// Option / Result constructors
	r.Register("Some", builtinSome)
	r.Register("Ok", builtinOk)
	r.Register("Err", builtinErr)

	r.registerPaths()
	r.registerListMethods()
	r.registerStringMethods()
	r.registerMapMethods()
	r.registerSetMethods()
	r.registerNumberMethods()
	r.registerOptionMethods()
	r.registerRangeMethods()
	r.registerCommonMethods()

	return r
}

// Register adds a free function
func (r *Registry) Register(name string, fn types.BuiltinFunc) {
	r.funcs[name] = fn
}

// Get looks up a free function
func (r *Registry) Get(name string) (types.BuiltinFunc, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is a builtin function
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Names returns the sorted names of all free functions
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// method registers a method; maxArgs < 0 means the same as minArgs
func (r *Registry) method(recv, name string, minArgs, maxArgs int, mutates bool, fn MethodFunc) {
	if maxArgs < 0 {
		maxArgs = minArgs
	}
	if r.methods[recv] == nil {
		r.methods[recv] = make(map[string]*Method)
	}
	r.methods[recv][name] = &Method{Receiver: recv, Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Mutates: mutates, Fn: fn}
}

// LookupMethod finds a built-in method for a receiver name
func (r *Registry) LookupMethod(recv, name string) (*Method, bool) {
	m, ok := r.methods[recv][name]
	if !ok {
		m, ok = r.methods[recvAny][name]
	}
	return m, ok
}

// MethodNames returns the sorted method names of one receiver, excluding
// the methods shared by every receiver
func (r *Registry) MethodNames(recv string) []string {
	var names []string
	for n := range r.methods[recv] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Receivers returns every receiver name with registered methods
func (r *Registry) Receivers() []string {
	var names []string
	for n := range r.methods {
		if n != recvAny {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// ReceiverOf maps a runtime value to its method-table receiver name.
// User structs and enums return "" and dispatch to impl blocks instead.
func ReceiverOf(v types.Value) string {
	switch v := v.(type) {
	case *types.ListValue:
		return RecvList
	case types.StrValue:
		return RecvString
	case *types.MapValue:
		return RecvMap
	case *types.SetValue:
		return RecvSet
	case types.IntValue:
		return RecvInt
	case types.FloatValue:
		return RecvFloat
	case types.CharValue:
		return RecvChar
	case types.BoolValue:
		return RecvBool
	case types.RangeValue:
		return RecvRange
	case types.TupleValue:
		return RecvTuple
	case types.EnumValue:
		if v.Enum == "Option" || v.Enum == "Result" {
			return v.Enum
		}
	}
	return ""
}

// Call invokes a method after checking its arity
func (m *Method) Call(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	if len(args) < m.MinArgs || len(args) > m.MaxArgs {
		if m.MinArgs == m.MaxArgs {
			return types.Err(types.E_ARGS, "%s.%s takes %d argument(s), got %d", m.Receiver, m.Name, m.MinArgs, len(args))
		}
		return types.Err(types.E_ARGS, "%s.%s takes %d to %d arguments, got %d", m.Receiver, m.Name, m.MinArgs, m.MaxArgs, len(args))
	}
	return m.Fn(ctx, recv, args)
}

// recvAny keys the methods every value supports
const recvAny = "*"

func (r *Registry) registerCommonMethods() {
	r.method(recvAny, "clone", 0, -1, false, methodClone)
	r.method(recvAny, "to_string", 0, -1, false, methodToString)
}

// methodClone deep-copies the receiver
func methodClone(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	return types.Ok(types.DeepClone(recv))
}

// methodToString renders a primitive with Display
func methodToString(ctx *types.TaskContext, recv types.Value, args []types.Value) types.Result {
	if !recv.Kind().IsPrimitive() {
		return types.Err(types.E_METHODNF, "%s has no method to_string", types.TypeName(recv))
	}
	return types.Ok(types.NewStr(recv.String()))
}

// intArg extracts an integer argument
func intArg(name string, args []types.Value, i int) (int64, *types.RuntimeError) {
	n, ok := args[i].(types.IntValue)
	if !ok {
		return 0, types.NewError(types.E_TYPE, "%s expects an int argument, got %s", name, types.TypeName(args[i]))
	}
	return n.Val, nil
}

// strArg extracts a string argument
func strArg(name string, args []types.Value, i int) (string, *types.RuntimeError) {
	s, ok := args[i].(types.StrValue)
	if !ok {
		return "", types.NewError(types.E_TYPE, "%s expects a string argument, got %s", name, types.TypeName(args[i]))
	}
	return s.Val, nil
}

// call invokes a user callable through the interpreter callback
func call(ctx *types.TaskContext, fn types.Value, args ...types.Value) types.Result {
	if ctx.Call == nil {
		return types.Err(types.E_NOTCALLABLE, "no evaluator available to call %s", fn.Debug())
	}
	return ctx.Call(fn, args)
}

// predicate calls fn and requires a bool result
func predicate(ctx *types.TaskContext, name string, fn types.Value, arg types.Value) (bool, types.Result) {
	res := call(ctx, fn, arg)
	if !res.IsNormal() {
		return false, res
	}
	b, ok := res.Val.(types.BoolValue)
	if !ok {
		return false, types.Err(types.E_TYPE, "%s predicate must return bool, got %s", name, types.TypeName(res.Val))
	}
	return b.Val, res
}
