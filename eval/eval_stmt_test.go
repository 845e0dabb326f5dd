package eval

import (
	"testing"

	"github.com/nalgeon/be"
	"ruchy/types"
)

func TestScriptScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scenario B", "count = 0\nfor i in 0..3 { count = count + i }\ncount", "3"},
		{"scenario C", `match 1 { 1 => "one", _ => "other" }`, `"one"`},
		{
			"binding persists across iterations",
			"let mut total = 0\nlet mut i = 0\nwhile i < 5 {\n    total += i\n    i += 1\n}\ntotal",
			"10",
		},
		{
			"loop body bindings are fresh",
			"let mut xs = []\nfor i in 0..3 {\n    let y = i * 10\n    xs.push(y)\n}\nxs",
			"[0, 10, 20]",
		},
		{"shadowing stays in the loop", "let x = 1\nfor i in 0..2 { let x = 5 }\nx", "1"},
		{"continue", "let mut s = 0\nfor i in 0..6 {\n    if i % 2 == 0 { continue }\n    s += i\n}\ns", "9"},
		{"break", "let mut n = 0\nwhile true {\n    n += 1\n    if n == 4 { break }\n}\nn", "4"},
		{"char range", "let mut s = \"\"\nfor c in 'a'..='d' { s = s + c.to_string() }\ns", `"abcd"`},
		{"string chars", "let mut n = 0\nfor c in \"héllo\" { n += 1 }\nn", "5"},
		{"map iterates in key order", "let m = {\"b\": 2, \"a\": 1}\nlet mut ks = \"\"\nfor (k, v) in m { ks = ks + k }\nks", `"ab"`},
		{"iteration uses a snapshot", "let xs = [1, 2]\nfor x in xs { xs.push(x) }\nxs", "[1, 2, 1, 2]"},
		{"aliases share a list", "let a = [1]\nlet b = a\nb.push(2)\na", "[1, 2]"},
		{"index store", "let xs = [1, 2, 3]\nxs[1] = 20\nxs", "[1, 20, 3]"},
		{"map store inserts", "let m = {\"a\": 1}\nm[\"b\"] = 2\nm", `{"a": 1, "b": 2}`},
		{"compound assignment", "let mut x = 10\nx -= 3\nx *= 2\nx %= 5\nx", "4"},
		{"tuple field store", "let mut t = (1, 2)\nt.0 = 5\nt", "(5, 2)"},
		{"destructuring let", "let (a, [b, c]) = (1, [2, 3])\na + b + c", "6"},
		{"last expression value", "let x = 1\nx + 1;\n", "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := run(t, tt.input)
			be.Err(t, err, nil)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestItems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"functions are hoisted", "let r = twice(4)\nfun twice(x) { x * 2 }\nr", "8"},
		{
			"struct with impl",
			"struct Point { x: i64, y: i64 }\n" +
				"impl Point {\n" +
				"    fun new(x: i64, y: i64) -> Point { Point { x: x, y: y } }\n" +
				"    fun sum(&self) -> i64 { self.x + self.y }\n" +
				"    fun shift(&mut self, d: i64) { self.x += d }\n" +
				"}\n" +
				"let mut p = Point::new(1, 2)\n" +
				"p.shift(10)\n" +
				"p.sum()",
			"13",
		},
		{"field read", "struct P { x: i64 }\nlet p = P { x: 4 }\np.x", "4"},
		{
			"enum variants",
			"enum Shape { Circle(i64), Square(i64) }\n" +
				"fun area(s) {\n" +
				"    match s {\n" +
				"        Shape::Circle(r) => 3 * r * r,\n" +
				"        Shape::Square(w) => w * w,\n" +
				"    }\n" +
				"}\n" +
				"area(Shape::Circle(2)) + area(Shape::Square(3))",
			"21",
		},
		{
			"glob imported unit variants",
			"enum Color { Red, Green }\n" +
				"import Color::*\n" +
				"fun name(c) {\n" +
				"    match c {\n" +
				"        Red => \"red\",\n" +
				"        Green => \"green\",\n" +
				"    }\n" +
				"}\n" +
				"name(Green)",
			`"green"`,
		},
		{"enum debug", "enum E { A, B(i64) }\n[E::A, E::B(2)]", "[A, B(2)]"},
		{"module member", "mod m {\n    pub fun open() { helper() }\n    fun helper() { 7 }\n}\nm::open()", "7"},
		{"import from module", "mod m {\n    pub fun f() { 1 }\n    pub fun g() { 2 }\n}\nimport m::{f, g as h}\nf() + h()", "3"},
		{"import alias", "mod m {\n    pub fun f() { 5 }\n}\nimport m::f as five\nfive()", "5"},
		{"std imports are ignored", "use std::collections::HashMap\nlet m = HashMap::new()\nm.len()", "0"},
		{"main is called", "fun main() { 42 }", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := run(t, tt.input)
			be.Err(t, err, nil)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestItemErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  types.ErrorCode
	}{
		{"private member", "mod m { fun secret() { 1 } }\nm::secret()", types.E_PERM},
		{"missing member", "mod m { pub fun f() { 1 } }\nm::g()", types.E_VARNF},
		{"unresolved import", "import nowhere::thing", types.E_VARNF},
		{"unknown field", "struct P { x: i64 }\nP { x: 1, y: 2 }", types.E_TYPE},
		{"missing field", "struct P { x: i64, y: i64 }\nP { x: 1 }", types.E_TYPE},
		{"impl for unknown type", "impl Nope { fun f() { 1 } }", types.E_VARNF},
		{"statement in module", "mod m { let x = 1 }", types.E_INVARG},
		{"variant arity", "enum E { A(i64) }\nE::A(1, 2)", types.E_ARGS},
		{"unknown variant", "enum E { A }\nE::B", types.E_VARNF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.input)
			be.True(t, err != nil)
			be.Equal(t, errCode(t, err), tt.code)
		})
	}
}
