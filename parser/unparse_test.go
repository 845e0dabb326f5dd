package parser

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestFormatCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"items are separated",
			"let x=1\nfun f(a:i64)->i64{a*2}\nprint(f(x))",
			"let x = 1\n\nfun f(a: i64) -> i64 {\n    a * 2\n}\n\nprint(f(x))\n",
		},
		{
			"match arms",
			`match v { 1 => "one", _ => "other" }`,
			"match v {\n    1 => \"one\",\n    _ => \"other\",\n}\n",
		},
		{
			"redundant parens dropped",
			"let y = ((a + b)) * (c)",
			"let y = (a + b) * c\n",
		},
		{
			"struct and impl",
			"struct P { x: i64 }\nimpl P { fun get(&self) -> i64 { self.x } }",
			"struct P {\n    x: i64,\n}\n\nimpl P {\n    fun get(&self) -> i64 {\n        self.x\n    }\n}\n",
		},
		{
			"semicolons kept",
			"f(); g()",
			"f();\ng()\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.input)
			be.Err(t, err, nil)
			be.Equal(t, Format(prog), tt.want)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	programs := []string{
		"let x = 1 + 2 * 3\nlet y = (1 + 2) * 3\nlet z = 2 ** 3 ** 2\nlet w = (2 ** 3) ** 2",
		"let n = -(-x)\nlet m = - -9223372036854775808\nlet k = (-1).abs()",
		"let a = (x as f64) * 2.0\nlet b = (a + 1) as i64\nlet c = !(a == b)",
		`let s = "tab\tquote\" back\\ brace {"` + "\nlet c = '\\''",
		`let f = f"value {x:.2} and \{literal\} {m[\"k\"]} {y:?}"`,
		"let r = 0..10\nlet q = ..=5\nlet v = xs[1..]\nlet u = (0..3).len()",
		"let t = (1,)\nlet u = ()\nlet p = (a, (b, c))\nlet e = t.0",
		"let m = {\"a\": 1, \"b\": [1, 2]}\nlet s = Point { x: 1, y }\nlet q = geo::Point { x: 0 }",
		"if (p == Point { x: 1 }) { 1 } else if q { 2 } else { 3 }",
		"while i < 10 {\n i += 1\n if i == 5 { break }\n}\nfor (k, v) in m { print(k, v) }",
		"let v = loop { break 5 }\nlet w = { let a = 1; a + 1 }",
		"let f = |x| x + 1\nlet g = |a: i64, b| -> i64 { a * b }\nlet h = || count += 1\nlet k = (|x| x)(3)",
		"let r = xs |> filter |> sum\nlet s = a || b && c",
		"match v {\n 0 | 1 => \"small\",\n n if n < 0 => { neg(n) }\n Some(x) => x,\n None => 0,\n [first, ..rest] => first,\n Point { x: 0, .. } => 1,\n 'a'..='z' => 2,\n -5 => 3,\n all @ _ => 4,\n}",
		"fun add<T: Clone>(a: T, mut b: &mut Vec<T>) -> Option<T> { return None }",
		"struct P { pub x: i64, y: (f64, String) }\nenum E { A, B(i64, [String]) }\nimpl P { pub fun new() -> P { P { x: 0, y: (0.0, \"\") } } fun m(mut self) {} }",
		"mod util {\n pub fun f() -> i64 { 1 }\n import std::mem\n}\nimport util::{f, g as h}\nimport a::*\nuse a::b as c\nexport fun main() { util::f() }",
		"let big = 1_000_000\nlet hex = 0xff\nlet fl = 1.5e3\nlet suf = 7u8",
		"x[0][1] = 2\np.x.y += 3\nlet a = b.c(d).e",
	}

	for _, src := range programs {
		t.Run(src, func(t *testing.T) {
			prog, err := Parse(src)
			be.Err(t, err, nil)

			formatted := Format(prog)
			again, err := Parse(formatted)
			be.Err(t, err, nil)
			be.Equal(t, Dump(again), Dump(prog))

			// formatting is idempotent
			be.Equal(t, Format(again), formatted)
		})
	}
}

func TestQuoteString(t *testing.T) {
	be.Equal(t, QuoteString("a\"b\\c\nd"), `"a\"b\\c\nd"`)
	be.Equal(t, QuoteString("nul\x00"), `"nul\0"`)
	be.Equal(t, QuoteString("bell\x07"), `"bell\u{7}"`)
	be.Equal(t, QuoteChar('\''), `'\''`)
	be.Equal(t, QuoteChar('é'), `'é'`)
}
