package eval

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/parser"
	"ruchy/types"
)

// run parses and evaluates a program, returning its printed output and
// the Debug rendering of its value
func run(t *testing.T, src string, opts ...Option) (string, string, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	be.Err(t, err, nil)
	var out bytes.Buffer
	interp := New(append([]Option{WithOutput(&out), WithErrorOutput(&out)}, opts...)...)
	v, err := interp.Evaluate(context.Background(), prog)
	if err != nil {
		return out.String(), "", err
	}
	return out.String(), v.Debug(), nil
}

// errCode extracts the runtime error code from err
func errCode(t *testing.T, err error) types.ErrorCode {
	t.Helper()
	var rerr *types.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("want a runtime error, got %v", err)
	}
	return rerr.Code
}

func TestEvalExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"2 ** 10", "1024"},
		{"7 / 2", "3"},
		{"-7 % 3", "-1"},
		{"7.0 / 2.0", "3.5"},
		{"1.0 / 0.0", "inf"},
		{`"ab" + "cd"`, `"abcd"`},
		{`"ab" * 3`, `"ababab"`},
		{"1 < 2 && 2 < 3", "true"},
		{"false || 1 == 1", "true"},
		{`"a" < "b"`, "true"},
		{"5 & 3 | 8", "9"},
		{"6 ^ 3", "5"},
		{"1 << 4", "16"},
		{"!5", "-6"},
		{"!true", "false"},
		{"-(3)", "-3"},
		{"3 as f64", "3.0"},
		{"let k = [1]\nlet m = {k: 2}\nm[\"k\"]", "2"},
		{"3.9 as i64", "3"},
		{"'a' as u32", "97"},
		{"(1, 2).1", "2"},
		{"[1, 2, 3][1..]", "[2, 3]"},
		{"[1, 2, 3][..=1]", "[1, 2]"},
		{`"hello"[1..3]`, `"el"`},
		{"'a'..='c'", "'a'..='c'"},
		{"[1, 2, 3].len()", "3"},
		{"[1, 2, 3].map(|x| x * 2)", "[2, 4, 6]"},
		{"Some(3).unwrap_or(0)", "3"},
		{"None.unwrap_or(0)", "0"},
		{`{"b": 2, "a": 1}`, `{"a": 1, "b": 2}`},
		{"if 1 < 2 { \"y\" } else { \"n\" }", `"y"`},
		{"if false { 1 }", "()"},
		{"loop { break 5 }", "5"},
		{"{ let a = 1; a + 1 }", "2"},
		{"HashMap::new().len()", "0"},
		{`String::from("x") + "y"`, `"xy"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, got, err := run(t, tt.input)
			be.Err(t, err, nil)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  types.ErrorCode
	}{
		{"unbound name", "y + 1", types.E_VARNF},
		{"division by zero", "1 / 0", types.E_DIV},
		{"remainder by zero", "1 % 0", types.E_DIV},
		{"index out of range", "[1, 2][5]", types.E_RANGE},
		{"negative index", "[1, 2][-1]", types.E_RANGE},
		{"missing key", `let m = {"a": 1}` + "\nm[\"b\"]", types.E_KEY},
		{"mixed arithmetic", "1 + 1.0", types.E_TYPE},
		{"mixed equality", "1 == 1.0", types.E_TYPE},
		{"overflow", "9223372036854775807 + 1", types.E_OVERFLOW},
		{"negate min", "let m = -9223372036854775807 - 1\n-m", types.E_OVERFLOW},
		{"shift too far", "1 << 64", types.E_OVERFLOW},
		{"non-bool condition", "if 1 { 2 }", types.E_TYPE},
		{"non-bool logic", "1 && true", types.E_TYPE},
		{"no arm matched", "match 3 { 1 => 0 }", types.E_NOMATCH},
		{"arity", "fun f(a) { a }\nf(1, 2)", types.E_ARGS},
		{"not callable", "let x = 5\nx()", types.E_NOTCALLABLE},
		{"unknown method", "[1].nope()", types.E_METHODNF},
		{"assign to function", "fun f() { 1 }\nf = 2", types.E_IMMUTABLE},
		{"unhashable key", "let m = {\"a\": 1}\nm[[1]] = 2", types.E_TYPE},
		{"unhashable lookup", "let k = [1]\nlet m = {k: 2}\nm[k]", types.E_TYPE},
		{"string index", `"abc"[0]`, types.E_TYPE},
		{"char boundary", `"héllo"[0..2]`, types.E_RANGE},
		{"panic", `panic("boom")`, types.E_PANIC},
		{"parameter annotation", "fun f(a: i64) { a }\nf(\"x\")", types.E_TYPE},
		{"return annotation", "fun f() -> i64 { \"x\" }\nf()", types.E_TYPE},
		{"let annotation", `let n: i64 = "x"`, types.E_TYPE},
		{"break outside loop", "fun f() { break }\nf()", types.E_INVARG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.input)
			be.Equal(t, errCode(t, err), tt.code)
		})
	}
}

func TestEvalErrorPosition(t *testing.T) {
	_, _, err := run(t, "let a = 1\nlet b = a + nope")
	var rerr *types.RuntimeError
	be.True(t, errors.As(err, &rerr))
	be.Equal(t, rerr.Code, types.E_VARNF)
	be.Equal(t, rerr.Pos.Line, 2)
	be.Equal(t, rerr.Message, "cannot find value `nope` in this scope")
}

func TestEvalFString(t *testing.T) {
	_, got, err := run(t, "let x = 2.5\nlet n = [1]\nf\"x = {x:.2}, n = {n}, d = {x:?}\"")
	be.Err(t, err, nil)
	be.Equal(t, got, `"x = 2.50, n = [1], d = 2.5"`)
}

func TestEvalPrint(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scenario A", "let a = 2; let b = a + 3; print(b)", "5"},
		{"display float", "println(3.0)", "3\n"},
		{"joined arguments", `println("a", 1, [1.0], Some("s"))`, "a 1 [1.0] Some(\"s\")\n"},
		{"format literal", `println("{} and {:?}", "x", "y")`, "x and \"y\"\n"},
		{"precision", `println("{:.3}", 1.0)`, "1.000\n"},
		{"struct debug", "struct P { x: i64, y: i64 }\nprintln(P { x: 1, y: 2 })", "P { x: 1, y: 2 }\n"},
		{"unit", "println(())", "()\n"},
		{"stderr", `eprintln("e")`, "e\n"},
		{"format builtin", `print(format("{}-{}", 1, 2))`, "1-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.input)
			be.Err(t, err, nil)
			be.Equal(t, out, tt.want)
		})
	}
}

func TestEvalClosures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"call", "let f = |x| x * 2\nf(21)", "42"},
		{"capture by reference", "let mut n = 0\nlet inc = || n += 1\ninc()\ninc()\nn", "2"},
		{
			"returned closure keeps its scope",
			"fun adder(k) { |x| x + k }\nlet add5 = adder(5)\nadd5(1)",
			"6",
		},
		{"pipeline", "fun double(x) { x * 2 }\n5 |> double", "10"},
		{"pipeline call", "fun add(a, b) { a + b }\n5 |> add(1)", "6"},
		{"fold", "[1, 2, 3].fold(0, |acc, x| acc + x)", "6"},
		{"recursion", "fun fact(n) { if n <= 1 { 1 } else { n * fact(n - 1) } }\nfact(10)", "3628800"},
		{"early return", "fun f(x) {\n if x > 0 { return \"pos\" }\n \"other\"\n}\nf(1)", `"pos"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := run(t, tt.input)
			be.Err(t, err, nil)
			be.Equal(t, got, tt.want)
		})
	}
}
