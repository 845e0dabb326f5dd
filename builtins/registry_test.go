package builtins

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/types"
)

// testCtx returns a context whose Call invokes builtin values directly,
// standing in for the interpreter
func testCtx() (*types.TaskContext, *bytes.Buffer) {
	var out bytes.Buffer
	ctx := types.NewTaskContext(context.Background())
	ctx.Out = &out
	ctx.ErrOut = &out
	ctx.Call = func(fn types.Value, args []types.Value) types.Result {
		b, ok := fn.(*types.BuiltinValue)
		if !ok {
			return types.Err(types.E_NOTCALLABLE, "%s is not callable", fn.Debug())
		}
		return b.Fn(ctx, args)
	}
	return ctx, &out
}

func fn(f func(args []types.Value) types.Value) *types.BuiltinValue {
	return &types.BuiltinValue{Name: "f", Fn: func(ctx *types.TaskContext, args []types.Value) types.Result {
		return types.Ok(f(args))
	}}
}

func ints(ns ...int64) *types.ListValue {
	out := make([]types.Value, len(ns))
	for i, n := range ns {
		out[i] = types.NewInt(n)
	}
	return types.NewList(out)
}

func callMethod(t *testing.T, r *Registry, recv types.Value, name string, args ...types.Value) types.Result {
	t.Helper()
	ctx, _ := testCtx()
	m, ok := r.LookupMethod(ReceiverOf(recv), name)
	be.True(t, ok)
	return m.Call(ctx, recv, args)
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format string
		args   []types.Value
		want   string
	}{
		{"{} + {} = {}", []types.Value{types.NewInt(1), types.NewInt(2), types.NewInt(3)}, "1 + 2 = 3"},
		{"{:?}", []types.Value{types.NewStr("hi")}, `"hi"`},
		{"{}", []types.Value{types.NewFloat(3)}, "3"},
		{"{:?}", []types.Value{types.NewFloat(3)}, "3.0"},
		{"{:.2}", []types.Value{types.NewFloat(3.14159)}, "3.14"},
		{"{:.0}", []types.Value{types.NewFloat(2.5)}, "2"},
		{"{:.3}", []types.Value{types.NewStr("abcdef")}, "abc"},
		{"{{}} {}", []types.Value{types.NewBool(true)}, "{} true"},
		{"{}", []types.Value{ints(1, 2)}, "[1, 2]"},
		{"no holes", nil, "no holes"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := FormatString(tt.format, tt.args)
			be.True(t, err == nil)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestFormatStringErrors(t *testing.T) {
	_, err := FormatString("{} {}", []types.Value{types.NewInt(1)})
	be.Equal(t, err.Code, types.E_ARGS)

	_, err = FormatString("{", nil)
	be.Equal(t, err.Code, types.E_INVARG)

	_, err = FormatString("{:x}", []types.Value{types.NewInt(1)})
	be.Equal(t, err.Code, types.E_INVARG)

	be.Equal(t, CountPlaceholders("{} {:?} {{}}"), 2)
	be.Equal(t, CountPlaceholders("}"), -1)
}

func TestPrintBuiltins(t *testing.T) {
	r := NewRegistry()
	ctx, out := testCtx()

	printFn, _ := r.Get("print")
	printlnFn, _ := r.Get("println")
	printFn(ctx, []types.Value{types.NewStr("a"), types.NewInt(1)})
	printlnFn(ctx, []types.Value{types.NewStr("b"), ints(1, 2), types.NewStr("c")})

	be.Equal(t, out.String(), "a 1b [1, 2] c\n")
}

func TestAssertions(t *testing.T) {
	r := NewRegistry()
	ctx, _ := testCtx()

	assert, _ := r.Get("assert")
	res := assert(ctx, []types.Value{types.NewBool(false)})
	be.Equal(t, res.Error.Code, types.E_PANIC)
	be.Equal(t, res.Error.Message, "assertion failed")

	assertEq, _ := r.Get("assert_eq")
	res = assertEq(ctx, []types.Value{types.NewInt(1), types.NewStr("1")})
	be.Equal(t, res.Error.Message, "assertion `left == right` failed\n  left: 1\n right: \"1\"")

	res = assertEq(ctx, []types.Value{ints(1), ints(1)})
	be.True(t, res.IsNormal())

	panicFn, _ := r.Get("panic")
	res = panicFn(ctx, nil)
	be.Equal(t, res.Error.Message, "explicit panic")
}

func TestConversions(t *testing.T) {
	r := NewRegistry()
	ctx, _ := testCtx()

	tests := []struct {
		fn   string
		arg  types.Value
		want types.Value
	}{
		{"int", types.NewStr("42"), types.NewInt(42)},
		{"int", types.NewFloat(-2.9), types.NewInt(-2)},
		{"int", types.NewBool(true), types.NewInt(1)},
		{"int", types.NewChar('A'), types.NewInt(65)},
		{"float", types.NewInt(2), types.NewFloat(2)},
		{"float", types.NewStr("1.5e1"), types.NewFloat(15)},
		{"str", types.NewFloat(2), types.NewStr("2")},
		{"str", ints(1), types.NewStr("[1]")},
		{"bool", types.NewStr("true"), types.NewBool(true)},
		{"bool", types.NewInt(0), types.NewBool(false)},
		{"char", types.NewInt(97), types.NewChar('a')},
	}

	for _, tt := range tests {
		t.Run(tt.fn+"("+tt.arg.Debug()+")", func(t *testing.T) {
			f, ok := r.Get(tt.fn)
			be.True(t, ok)
			res := f(ctx, []types.Value{tt.arg})
			be.True(t, res.IsNormal())
			be.True(t, res.Val.Equal(tt.want))
		})
	}

	intFn, _ := r.Get("int")
	be.Equal(t, intFn(ctx, []types.Value{types.NewStr("4x")}).Error.Code, types.E_INVARG)
	be.Equal(t, intFn(ctx, []types.Value{ints()}).Error.Code, types.E_TYPE)

	floatFn, _ := r.Get("float")
	be.Equal(t, floatFn(ctx, []types.Value{types.NewStr("1_0")}).Error.Code, types.E_INVARG)

	charFn, _ := r.Get("char")
	be.Equal(t, charFn(ctx, []types.Value{types.NewInt(0xD800)}).Error.Code, types.E_INVARG)
}

func TestCast(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		typ  string
		want types.Value
	}{
		{"wrap u8", types.NewInt(300), "u8", types.NewInt(44)},
		{"wrap i8", types.NewInt(200), "i8", types.NewInt(-56)},
		{"float truncates", types.NewFloat(3.99), "i64", types.NewInt(3)},
		{"float saturates", types.NewFloat(1e300), "i64", types.NewInt(9223372036854775807)},
		{"nan is zero", types.NewFloat(nan()), "i32", types.NewInt(0)},
		{"char to int", types.NewChar('z'), "i64", types.NewInt(122)},
		{"bool to int", types.NewBool(true), "u8", types.NewInt(1)},
		{"int to float", types.NewInt(7), "f64", types.NewFloat(7)},
		{"int to char via u8", types.NewInt(321), "char", types.NewChar('A')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Cast(tt.v, tt.typ)
			be.True(t, res.IsNormal())
			be.True(t, res.Val.Equal(tt.want))
		})
	}

	be.Equal(t, Cast(types.NewInt(-1), "u64").Error.Code, types.E_OVERFLOW)
	be.Equal(t, Cast(types.NewStr("1"), "i64").Error.Code, types.E_TYPE)
}

func TestMinMax(t *testing.T) {
	r := NewRegistry()
	ctx, _ := testCtx()
	minFn, _ := r.Get("min")
	maxFn, _ := r.Get("max")

	be.True(t, minFn(ctx, []types.Value{types.NewInt(3), types.NewInt(1)}).Val.Equal(types.NewInt(1)))
	be.True(t, maxFn(ctx, []types.Value{types.NewStr("a"), types.NewStr("b")}).Val.Equal(types.NewStr("b")))
	be.True(t, maxFn(ctx, []types.Value{types.NewFloat(nan()), types.NewFloat(1)}).Val.Equal(types.NewFloat(1)))
	be.Equal(t, minFn(ctx, []types.Value{types.NewInt(1), types.NewStr("a")}).Error.Code, types.E_TYPE)
}

func TestMethodArity(t *testing.T) {
	r := NewRegistry()
	res := callMethod(t, r, ints(1), "push")
	be.Equal(t, res.Error.Code, types.E_ARGS)
	be.Equal(t, res.Error.Message, "list.push takes 1 argument(s), got 0")
}

func TestCommonMethods(t *testing.T) {
	r := NewRegistry()
	l := ints(1, 2)
	res := callMethod(t, r, l, "clone")
	clone := res.Val.(*types.ListValue)
	clone.Append(types.NewInt(3))
	be.Equal(t, l.Len(), 2)

	res = callMethod(t, r, types.NewFloat(2.5), "to_string")
	be.True(t, res.Val.Equal(types.NewStr("2.5")))

	res = callMethod(t, r, l, "to_string")
	be.Equal(t, res.Error.Code, types.E_METHODNF)
}

func TestReceivers(t *testing.T) {
	r := NewRegistry()
	got := r.Receivers()
	be.Equal(t, got, []string{"Option", "Result", "char", "float", "int", "list", "map", "range", "set", "string"})
	be.Equal(t, ReceiverOf(types.NewStruct("P", nil, nil)), "")
	be.Equal(t, ReceiverOf(types.None), RecvOption)
}

func nan() float64 {
	return math.NaN()
}
