package transpile

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"ruchy/builtins"
	"ruchy/parser"
)

func lowerSource(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	be.Err(t, err, nil)
	return Lower(prog, Options{})
}

func TestLowerContains(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			"function with annotations",
			"fun add(a: i64, b: i64) -> i64 { a + b }\nprintln(add(1, 2))",
			[]string{"fn add(a: i64, b: i64) -> i64 {", "fn main() {", `println!("{}", add(1i64, 2i64));`},
		},
		{
			"top-level statements become main",
			"let x = 1\nprintln(x)",
			[]string{"fn main() {\n    let x = 1i64;\n    println!(\"{}\", x);\n}"},
		},
		{
			"list literal",
			"let xs = [1, 2, 3]\nprintln(xs.len())",
			[]string{"let xs = vec![1i64, 2i64, 3i64];", "(xs.len() as i64)"},
		},
		{
			"ordered collections",
			"let m = {\"a\": 1}\nprintln(m)",
			[]string{"use std::collections::{BTreeMap, BTreeSet};", "BTreeMap::from("},
		},
		{
			"match without catch-all panics",
			"let x = 2\nmatch x {\n    1 => println(1),\n    2 => println(2),\n}",
			[]string{"match x {", "1 => println!(\"{}\", 1i64),", "_ => panic!(\"no pattern matched\"),"},
		},
		{
			"string match uses as_str",
			"let s = \"a\"\nmatch s {\n    \"a\" => 1,\n    _ => 2,\n}",
			[]string{"match s.as_str() {", "\"a\" => 1i64,"},
		},
		{
			"struct derives",
			"struct P { x: i64 }\nlet p = P { x: 1 }\nprintln(p.x)",
			[]string{"#[derive(Debug, Clone, PartialEq, PartialOrd)]\nstruct P {\n    x: i64,\n}"},
		},
		{
			"power on ints",
			"let n = 2 ** 10\nprintln(n)",
			[]string{"i64::pow(2i64, 10i64 as u32)"},
		},
		{
			"string concatenation",
			"let s = \"a\" + \"b\"\nprintln(s)",
			[]string{`format!("{}{}", String::from("a"), String::from("b"))`},
		},
		{
			"script-mode assignment declares",
			"x = 5\nprintln(x)",
			[]string{"let mut x = 5i64;"},
		},
		{
			"mutated binding is mut",
			"let n = 0\nn += 1\nprintln(n)",
			[]string{"let mut n = 0i64;", "n += 1i64;"},
		},
		{
			"integers are i64",
			"let a = 100000\nprintln(a * a)",
			[]string{"let a = 100000i64;", "a * a"},
		},
		{
			"narrowing cast widens back",
			"println(-1 as u8)",
			[]string{"((-1i64) as u8 as i64)"},
		},
		{
			"unsigned cast rejects negatives",
			"let n = 5\nprintln(n as u64)",
			[]string{"(u64::try_from(n).unwrap() as i64)"},
		},
		{
			"float cast",
			"println(1.5 as f32)",
			[]string{"(1.5 as f32 as f64)"},
		},
		{
			"literal index stays usize",
			"let xs = [1, 2]\nprintln(xs[1])",
			[]string{"xs[1]"},
		},
		{
			"overflow lints allowed",
			"println(1 / 0)",
			[]string{"unconditional_panic, arithmetic_overflow, overflowing_literals)]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := lowerSource(t, tt.src)
			be.Err(t, err, nil)
			for _, want := range tt.want {
				if !strings.Contains(code, want) {
					t.Errorf("output does not contain %q:\n%s", want, code)
				}
			}
		})
	}
}

func TestLowerCatchAllOmitsPanic(t *testing.T) {
	code, err := lowerSource(t, "let x = 2\nmatch x {\n    1 => 10,\n    n => n,\n}")
	be.Err(t, err, nil)
	be.True(t, !strings.Contains(code, "no pattern matched"))
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"function captures top-level let", "let y = 1\nfun f() { y }\nprintln(f())", "top-level binding `y`"},
		{"statements beside main", "fun main() { }\nprintln(1)", "top-level statement outside `main`"},
		{"string index", "let s = \"abc\"\nprintln(s[0])", "cannot be indexed"},
		{"mixed arithmetic", "let a = 1 + 1.5", "cannot apply `+`"},
		{"mixed comparison", "let b = 1 < 1.5", "cannot compare"},
		{"placeholder count", "println(\"{} {}\", 1)", "2 placeholder(s)"},
		{"float extremum", "let xs = [1.5, 2.5]\nprintln(xs.max())", "totally ordered"},
		{"break value in while", "while true { break 1 }", "`break` with value"},
		{"return at top level", "return 1", "`return` outside of a function"},
		{"arity", "fun f(a: i64) -> i64 { a }\nprintln(f(1, 2))", "takes 1 argument(s) but 2 were supplied"},
		{"unknown name", "println(nope)", "cannot find value `nope`"},
		{"missing struct field", "struct P { x: i64, y: i64 }\nlet p = P { x: 1 }", "missing"},
		{"non-bool condition", "if 1 { println(1) }", "must be bool"},
		{"nested string literal pattern", "let t = (\"a\", 1)\nmatch t {\n    (\"a\", n) => n,\n    _ => 0,\n}", "string literal patterns"},
		{"unknown struct field", "struct P { x: i64 }\nlet p = P { x: 1, z: 2 }", "has no field named `z`"},
		{"mutated value parameter", "fun f(xs: Vec<i64>) { xs.push(1) }", "parameter `xs` is mutated"},
		{"printed None", "println(None)", "cannot infer the element type of `None`"},
		{"printed empty list", "println(\"{}\", [])", "cannot infer the element type of `[]`"},
		{"append char to string", "let mut s = \"a\"\ns += 'c'", "cannot apply `+=` to string and char"},
		{"variant arity", "enum E { A(i64) }\nlet e = E::A(1)\nmatch e {\n    E::A(x, y) => x,\n}", "this pattern has 2 field(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lowerSource(t, tt.src)
			be.Err(t, err, tt.want)
			var lerr *LoweringError
			be.True(t, errors.As(err, &lerr))
			be.True(t, lerr.Span.Start.Line >= 1)
		})
	}
}

func TestLowerHeader(t *testing.T) {
	prog, err := parser.Parse("println(1)")
	be.Err(t, err, nil)
	code, err := Lower(prog, Options{Header: "generated\nsource: a.ruchy"})
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(code, "// generated\n// source: a.ruchy\n#![allow("))
}

func TestLowerDeterministic(t *testing.T) {
	src := "enum Shape { Circle(f64), Square(f64) }\n" +
		"fun area(s: Shape) -> f64 {\n    match s {\n        Shape::Circle(r) => 3.0 * r * r,\n        Shape::Square(a) => a * a,\n    }\n}\n" +
		"println(area(Shape::Square(2.0)))"
	first, err := lowerSource(t, src)
	be.Err(t, err, nil)
	for i := 0; i < 5; i++ {
		again, err := lowerSource(t, src)
		be.Err(t, err, nil)
		be.Equal(t, again, first)
	}
}

func TestMethodTableMatchesRegistry(t *testing.T) {
	reg := builtins.NewRegistry()
	for _, recv := range reg.Receivers() {
		t.Run(recv, func(t *testing.T) {
			for _, name := range reg.MethodNames(recv) {
				rule, ok := methodTable[recv][name]
				if !ok {
					t.Errorf("%s.%s has no Rust rendering", recv, name)
					continue
				}
				m, _ := reg.LookupMethod(recv, name)
				be.Equal(t, rule.mutates, m.Mutates)
			}
			be.Equal(t, len(methodTable[recv]), len(reg.MethodNames(recv)))
		})
	}
}
