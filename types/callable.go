package types

import "ruchy/parser"

// FunctionValue is a user function or closure together with the
// environment it was created in. Env holds the defining *eval.Environment;
// it is typed as interface{} to avoid an import cycle.
type FunctionValue struct {
	Name       string // empty for closures
	Params     []*parser.Param
	ReturnType parser.TypeExpr
	Body       parser.Expr
	Receiver   parser.ReceiverKind
	Env        interface{}
}

func (f *FunctionValue) Kind() Kind { return KindFunction }

func (f *FunctionValue) String() string { return f.Debug() }

func (f *FunctionValue) Debug() string {
	if f.Name == "" {
		return "<closure>"
	}
	return "<fn " + f.Name + ">"
}

// Equal is identity: two functions are equal only if they are the same value
func (f *FunctionValue) Equal(other Value) bool {
	o, ok := other.(*FunctionValue)
	return ok && o == f
}

// BuiltinFunc implements a built-in function or method
type BuiltinFunc func(ctx *TaskContext, args []Value) Result

// BuiltinValue is a native function bound to a name
type BuiltinValue struct {
	Name string
	Fn   BuiltinFunc
}

func (b *BuiltinValue) Kind() Kind     { return KindBuiltin }
func (b *BuiltinValue) String() string { return b.Debug() }
func (b *BuiltinValue) Debug() string  { return "<builtin " + b.Name + ">" }

func (b *BuiltinValue) Equal(other Value) bool {
	o, ok := other.(*BuiltinValue)
	return ok && o.Name == b.Name
}
