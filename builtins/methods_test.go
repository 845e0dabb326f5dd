package builtins

import (
	"testing"

	"github.com/nalgeon/be"
	"ruchy/types"
)

func TestStringMethods(t *testing.T) {
	r := NewRegistry()
	s := types.NewStr
	tests := []struct {
		recv   string
		method string
		args   []types.Value
		want   string // Debug of the result
	}{
		{"héllo", "len", nil, "6"},
		{"", "is_empty", nil, "true"},
		{"Abc", "to_uppercase", nil, `"ABC"`},
		{"Abc", "lower", nil, `"abc"`},
		{"  pad \n", "trim", nil, `"pad"`},
		{"  pad ", "trim_start", nil, `"pad "`},
		{"a,b,,c", "split", []types.Value{s(",")}, `["a", "b", "", "c"]`},
		{"abc", "split", []types.Value{s("")}, `["", "a", "b", "c", ""]`},
		{" a  b\tc ", "split_whitespace", nil, `["a", "b", "c"]`},
		{"one\r\ntwo\n", "lines", nil, `["one", "two"]`},
		{"hé", "chars", nil, `['h', 'é']`},
		{"hello", "contains", []types.Value{s("ell")}, "true"},
		{"hello", "contains", []types.Value{types.NewChar('z')}, "false"},
		{"hello", "starts_with", []types.Value{s("he")}, "true"},
		{"hello", "ends_with", []types.Value{types.NewChar('o')}, "true"},
		{"hello", "find", []types.Value{s("l")}, "Some(2)"},
		{"hello", "find", []types.Value{s("z")}, "None"},
		{"a-b-c", "replace", []types.Value{s("-"), s("+")}, `"a+b+c"`},
		{"ab", "repeat", []types.Value{types.NewInt(3)}, `"ababab"`},
	}

	for _, tt := range tests {
		t.Run(tt.recv+"."+tt.method, func(t *testing.T) {
			res := callMethod(t, r, s(tt.recv), tt.method, tt.args...)
			be.True(t, res.IsNormal())
			be.Equal(t, res.Val.Debug(), tt.want)
		})
	}

	res := callMethod(t, r, s("ab"), "repeat", types.NewInt(-1))
	be.Equal(t, res.Error.Code, types.E_INVARG)
}

func TestCharMethods(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		c      rune
		method string
		want   string
	}{
		{'a', "is_alphabetic", "true"},
		{'7', "is_numeric", "true"},
		{'_', "is_alphanumeric", "false"},
		{' ', "is_whitespace", "true"},
		{'Q', "is_uppercase", "true"},
		{'q', "is_lowercase", "true"},
		{'٣', "is_ascii_digit", "false"},
		{'x', "to_ascii_uppercase", "'X'"},
		{'é', "to_ascii_uppercase", "'é'"},
		{'X', "to_ascii_lowercase", "'x'"},
	}

	for _, tt := range tests {
		t.Run(string(tt.c)+"."+tt.method, func(t *testing.T) {
			res := callMethod(t, r, types.NewChar(tt.c), tt.method)
			be.Equal(t, res.Val.Debug(), tt.want)
		})
	}
}

func TestListMethods(t *testing.T) {
	r := NewRegistry()
	double := fn(func(args []types.Value) types.Value {
		return types.NewInt(args[0].(types.IntValue).Val * 2)
	})
	even := fn(func(args []types.Value) types.Value {
		return types.NewBool(args[0].(types.IntValue).Val%2 == 0)
	})
	add := fn(func(args []types.Value) types.Value {
		return types.NewInt(args[0].(types.IntValue).Val + args[1].(types.IntValue).Val)
	})

	tests := []struct {
		name   string
		recv   types.Value
		method string
		args   []types.Value
		want   string
	}{
		{"map", ints(1, 2, 3), "map", []types.Value{double}, "[2, 4, 6]"},
		{"filter", ints(1, 2, 3, 4), "filter", []types.Value{even}, "[2, 4]"},
		{"fold", ints(1, 2, 3), "fold", []types.Value{types.NewInt(10), add}, "16"},
		{"any", ints(1, 3), "any", []types.Value{even}, "false"},
		{"all", ints(2, 4), "all", []types.Value{even}, "true"},
		{"find", ints(1, 4, 6), "find", []types.Value{even}, "Some(4)"},
		{"sum", ints(1, 2, 3), "sum", nil, "6"},
		{"sum empty", ints(), "sum", nil, "0"},
		{"min", ints(3, 1, 2), "min", nil, "Some(1)"},
		{"max empty", ints(), "max", nil, "None"},
		{"first", ints(5, 6), "first", nil, "Some(5)"},
		{"last", ints(5, 6), "last", nil, "Some(6)"},
		{"get out of range", ints(5), "get", []types.Value{types.NewInt(3)}, "None"},
		{"contains", ints(5, 6), "contains", []types.Value{types.NewInt(6)}, "true"},
		{"join", types.NewList([]types.Value{types.NewStr("a"), types.NewStr("b")}), "join", []types.Value{types.NewStr("-")}, `"a-b"`},
		{"range map", types.NewRange(0, 3, false), "map", []types.Value{double}, "[0, 2, 4]"},
		{"range sum", types.NewRange(1, 4, true), "sum", nil, "10"},
		{"range rev", types.NewRange(0, 3, false), "rev", nil, "[2, 1, 0]"},
		{"range contains", types.NewRange(0, 3, false), "contains", []types.Value{types.NewInt(3)}, "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callMethod(t, r, tt.recv, tt.method, tt.args...)
			be.True(t, res.IsNormal())
			be.Equal(t, res.Val.Debug(), tt.want)
		})
	}
}

func TestListMutation(t *testing.T) {
	r := NewRegistry()
	l := ints(3, 1, 2)

	callMethod(t, r, l, "push", types.NewInt(0))
	be.Equal(t, l.Debug(), "[3, 1, 2, 0]")

	callMethod(t, r, l, "sort")
	be.Equal(t, l.Debug(), "[0, 1, 2, 3]")

	res := callMethod(t, r, l, "pop")
	be.Equal(t, res.Val.Debug(), "Some(3)")

	callMethod(t, r, l, "insert", types.NewInt(0), types.NewInt(9))
	be.Equal(t, l.Debug(), "[9, 0, 1, 2]")

	res = callMethod(t, r, l, "remove", types.NewInt(1))
	be.Equal(t, res.Val.Debug(), "0")

	res = callMethod(t, r, l, "remove", types.NewInt(10))
	be.Equal(t, res.Error.Code, types.E_RANGE)

	callMethod(t, r, l, "extend", ints(7))
	callMethod(t, r, l, "reverse")
	be.Equal(t, l.Debug(), "[7, 2, 1, 9]")

	callMethod(t, r, l, "clear")
	be.Equal(t, l.Len(), 0)
}

func TestListErrors(t *testing.T) {
	r := NewRegistry()

	res := callMethod(t, r, types.NewList([]types.Value{types.NewFloat(1), types.NewFloat(2)}), "max")
	be.Equal(t, res.Error.Code, types.E_TYPE)

	res = callMethod(t, r, types.NewList([]types.Value{types.NewInt(1), types.NewStr("a")}), "sort")
	be.Equal(t, res.Error.Code, types.E_TYPE)

	res = callMethod(t, r, ints(9223372036854775807, 1), "sum")
	be.Equal(t, res.Error.Code, types.E_OVERFLOW)

	notBool := fn(func(args []types.Value) types.Value { return types.NewInt(1) })
	res = callMethod(t, r, ints(1), "filter", notBool)
	be.Equal(t, res.Error.Code, types.E_TYPE)
}

func TestMapMethods(t *testing.T) {
	r := NewRegistry()
	m := types.NewMap()
	k := types.NewStr

	res := callMethod(t, r, m, "insert", k("b"), types.NewInt(2))
	be.Equal(t, res.Val.Debug(), "None")
	callMethod(t, r, m, "insert", k("a"), types.NewInt(1))
	res = callMethod(t, r, m, "insert", k("b"), types.NewInt(3))
	be.Equal(t, res.Val.Debug(), "Some(2)")

	be.Equal(t, m.Debug(), `{"a": 1, "b": 3}`)
	be.Equal(t, callMethod(t, r, m, "get", k("a")).Val.Debug(), "Some(1)")
	be.Equal(t, callMethod(t, r, m, "get", k("z")).Val.Debug(), "None")
	be.Equal(t, callMethod(t, r, m, "contains_key", k("b")).Val.Debug(), "true")
	be.Equal(t, callMethod(t, r, m, "keys").Val.Debug(), `["a", "b"]`)
	be.Equal(t, callMethod(t, r, m, "values").Val.Debug(), "[1, 3]")
	be.Equal(t, callMethod(t, r, m, "items").Val.Debug(), `[("a", 1), ("b", 3)]`)
	be.Equal(t, callMethod(t, r, m, "remove", k("a")).Val.Debug(), "Some(1)")
	be.Equal(t, callMethod(t, r, m, "len").Val.Debug(), "1")

	res = callMethod(t, r, m, "insert", ints(1), types.NewInt(0))
	be.Equal(t, res.Error.Code, types.E_TYPE)
}

func TestSetMethods(t *testing.T) {
	r := NewRegistry()
	a := types.NewSet(types.NewInt(1), types.NewInt(2), types.NewInt(3))
	b := types.NewSet(types.NewInt(2), types.NewInt(4))

	be.Equal(t, callMethod(t, r, a, "union", b).Val.Debug(), "{1, 2, 3, 4}")
	be.Equal(t, callMethod(t, r, a, "intersection", b).Val.Debug(), "{2}")
	be.Equal(t, callMethod(t, r, a, "difference", b).Val.Debug(), "{1, 3}")
	be.Equal(t, callMethod(t, r, a, "insert", types.NewInt(2)).Val.Debug(), "false")
	be.Equal(t, callMethod(t, r, a, "add", types.NewInt(0)).Val.Debug(), "true")
	be.Equal(t, callMethod(t, r, a, "remove", types.NewInt(3)).Val.Debug(), "true")
	be.Equal(t, callMethod(t, r, a, "to_list").Val.Debug(), "[0, 1, 2]")
}

func TestNumberMethods(t *testing.T) {
	r := NewRegistry()
	i := types.NewInt
	f := types.NewFloat
	tests := []struct {
		name   string
		recv   types.Value
		method string
		args   []types.Value
		want   string
	}{
		{"abs", i(-5), "abs", nil, "5"},
		{"pow", i(2), "pow", []types.Value{i(10)}, "1024"},
		{"int min", i(2), "min", []types.Value{i(-1)}, "-1"},
		{"signum", i(-9), "signum", nil, "-1"},
		{"sqrt", f(16), "sqrt", nil, "4.0"},
		{"floor", f(-1.5), "floor", nil, "-2.0"},
		{"round half away", f(2.5), "round", nil, "3.0"},
		{"powi", f(2), "powi", []types.Value{i(3)}, "8.0"},
		{"powf", f(4), "powf", []types.Value{f(0.5)}, "2.0"},
		{"float max nan", f(nan()), "max", []types.Value{f(1)}, "1.0"},
		{"is_nan", f(nan()), "is_nan", nil, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callMethod(t, r, tt.recv, tt.method, tt.args...)
			be.True(t, res.IsNormal())
			be.Equal(t, res.Val.Debug(), tt.want)
		})
	}

	be.Equal(t, callMethod(t, r, i(-9223372036854775808), "abs").Error.Code, types.E_OVERFLOW)
	be.Equal(t, callMethod(t, r, i(2), "pow", i(64)).Error.Code, types.E_OVERFLOW)
	be.Equal(t, callMethod(t, r, i(2), "pow", i(-1)).Error.Code, types.E_OVERFLOW)
	be.Equal(t, callMethod(t, r, f(2), "max", i(1)).Error.Code, types.E_TYPE)
}

func TestOptionResultMethods(t *testing.T) {
	r := NewRegistry()
	some := types.NewSome(types.NewInt(1))
	errV := types.NewErrResult(types.NewStr("bad"))

	be.Equal(t, callMethod(t, r, some, "is_some").Val.Debug(), "true")
	be.Equal(t, callMethod(t, r, types.None, "is_none").Val.Debug(), "true")
	be.Equal(t, callMethod(t, r, some, "unwrap").Val.Debug(), "1")
	be.Equal(t, callMethod(t, r, types.None, "unwrap_or", types.NewInt(7)).Val.Debug(), "7")
	be.Equal(t, callMethod(t, r, errV, "is_err").Val.Debug(), "true")
	be.Equal(t, callMethod(t, r, types.NewOk(types.Unit), "is_ok").Val.Debug(), "true")

	res := callMethod(t, r, types.None, "unwrap")
	be.Equal(t, res.Error.Code, types.E_PANIC)
	be.Equal(t, res.Error.Message, "called `Option::unwrap()` on a `None` value")

	res = callMethod(t, r, errV, "unwrap")
	be.Equal(t, res.Error.Message, "called `Result::unwrap()` on an `Err` value: \"bad\"")

	res = callMethod(t, r, errV, "expect", types.NewStr("loading"))
	be.Equal(t, res.Error.Message, "loading: \"bad\"")
}
