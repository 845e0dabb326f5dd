package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// dumpSource parses src and returns the S-expression of every statement
func dumpSource(t *testing.T, src string) string {
	t.Helper()
	prog, err := Parse(src)
	be.Err(t, err, nil)
	return Dump(prog)
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(+ (int 1) (* (int 2) (int 3)))"},
		{"(1 + 2) * 3", "(* (+ (int 1) (int 2)) (int 3))"},
		{"10 - 4 - 3", "(- (- (int 10) (int 4)) (int 3))"},
		{"2 ** 3 ** 2", "(** (int 2) (** (int 3) (int 2)))"},
		{"a || b && c", "(|| a (&& b c))"},
		{"1 + 2 == 3", "(== (+ (int 1) (int 2)) (int 3))"},
		{"a < b == c > d", "(== (< a b) (> c d))"},
		{"!a == b", "(== (! a) b)"},
		{"-x.abs()", "(neg (method x abs))"},
		{"x as f64 * 2.5", "(* (as x f64) (float 2.5))"},
		{"0..n + 1", "(range (int 0) (+ n (int 1)))"},
		{"1..=5", "(range= (int 1) (int 5))"},
		{"a |> f |> g", "(|> (|> a f) g)"},
		{"a & b | c ^ d", "(| (& a b) (^ c d))"},
		{"1 << 2 + 3", "(<< (int 1) (+ (int 2) (int 3)))"},
		{"x % 3 * 2", "(* (% x (int 3)) (int 2))"},
		{"f(1)(2)", "(call (call f (int 1)) (int 2))"},
		{"p.x + 1", "(+ (field p x) (int 1))"},
		{"t.0.1", "(field (field t 0) 1)"},
		{"xs[1..3]", "(slice xs (int 1) (int 3))"},
		{"xs[..2]", "(slice xs _ (int 2))"},
		{"xs[i][j]", "(index (index xs i) j)"},
		{"&mut v", "(&mut v)"},
		{"-9223372036854775808", "(int -9223372036854775808)"},
		{"0xff + 1_000", "(+ (int 255) (int 1000))"},
		{"std::math::PI", "std::math::PI"},
		{"(1,)", "(tuple (int 1))"},
		{"()", "(unit)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseExpression(tt.input)
			be.Err(t, err, nil)
			be.Equal(t, Dump(expr), tt.want)
		})
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let x = 1", "(let x (int 1))"},
		{"let mut v: Vec<i64> = []", "(let (mut v) :Vec<i64> (list))"},
		{"let (a, b) = (1, 2)", "(let (tuple a b) (tuple (int 1) (int 2)))"},
		{"x += 2", "(+= x (int 2))"},
		{"a[0] = 1", "(= (index a (int 0)) (int 1))"},
		{"p.x = 3", "(= (field p x) (int 3))"},
		{"x;", "(semi x)"},
		{"if x > 1 { a } else { b }", "(if (> x (int 1)) (block a) (block b))"},
		{"if a { 1 } else if b { 2 }", "(if a (block (int 1)) (if b (block (int 2))))"},
		{"while i < 3 { i += 1 }", "(while (< i (int 3)) (block (+= i (int 1))))"},
		{"for (k, v) in m { print(k) }", "(for (tuple k v) m (block (call print k)))"},
		{"loop { break 5 }", "(loop (block (break (int 5))))"},
		{"fun add(a: i64, b: i64) -> i64 { a + b }", "(fun add (params a: i64 b: i64) ->i64 (block (+ a b)))"},
		{"fn id<T: Clone>(x: T) -> T { x }", "(fun id<T> (params x: T) ->T (block x))"},
		{"fun f(xs: &mut Vec<i64>) { xs.push(1); }", "(fun f (params xs: &mut Vec<i64>) (block (semi (method xs push (int 1)))))"},
		{"struct P { x: i64, pub y: f64 }", "(struct P (x:i64) (pub y:f64))"},
		{"struct P {\n    x: i64\n    y: i64\n}", "(struct P (x:i64) (y:i64))"},
		{"enum Shape { Circle(f64), Empty }", "(enum Shape (Circle f64) (Empty))"},
		{"impl P { fun len(&self) -> i64 { self.x } }", "(impl P (fun len (params &self) ->i64 (block (field self x))))"},
		{"impl P { pub fun new() -> P { P { x: 0 } } }", "(impl P (pub (fun new (params) ->P (block (new P (x (int 0)))))))"},
		{"mod m { pub fun f() {} }", "(mod m (pub (fun f (params) (block))))"},
		{"import std::collections::HashMap as Map", "(import std::collections::HashMap as Map)"},
		{"use m::{a, b as c}", "(import m::{a, b as c})"},
		{"import m::*", "(import m::*)"},
		{"export fun f() {}", "(pub (fun f (params) (block)))"},
		{"let f = |x| x + 1", "(let f (closure (params x) (+ x (int 1))))"},
		{"let g = || n += 1", "(let g (closure (params) (block (+= n (int 1)))))"},
		{"let h = |a: i64| -> i64 { a }", "(let h (closure (params a: i64) ->i64 (block a)))"},
		{`let s = f"a {x} b {y:.2}"`, `(let s (fstr "a " x " b " (fmt y .2)))`},
		{`let s = f"{v:?} \{ok\}"`, `(let s (fstr (fmt v ?) " {ok}"))`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, dumpSource(t, tt.input), tt.want)
		})
	}
}

func TestParseBraceDisambiguation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let p = Point { x: 1, y }", "(let p (new Point (x (int 1)) (y y)))"},
		{"let p = geo::Point { x: 1 }", "(let p (new geo::Point (x (int 1))))"},
		{"if a == b { c }", "(if (== a b) (block c))"},
		{"if x { Point { x: 1 } }", "(if x (block (new Point (x (int 1)))))"},
		{"for p in Ps { p }", "(for p Ps (block p))"},
		{"match V { _ => 1 }", "(match V (arm _ (int 1)))"},
		{"if (p == Point { x: 1 }) { 1 }", "(if (== p (new Point (x (int 1)))) (block (int 1)))"},
		{`let m = {"a": 1, b: 2}`, `(let m (map ((str "a") (int 1)) ((str "b") (int 2))))`},
		{"let m = {1: 'a', -2: 'b'}", "(let m (map ((int 1) (char 'a')) ((neg (int 2)) (char 'b'))))"},
		{"let b = { x }", "(let b (block x))"},
		{"let e = {}", "(let e (block))"},
		{"let b = { let y = 1; y }", "(let b (block (let y (int 1)) y))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, dumpSource(t, tt.input), tt.want)
		})
	}
}

func TestParseNewlineTermination(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"call on next line", "let c = foo\n(1, 2)", "(let c foo)\n(tuple (int 1) (int 2))"},
		{"index on next line", "let a = x\n[1, 2]", "(let a x)\n(list (int 1) (int 2))"},
		{"operator on next line", "let y = a\n- b", "(let y a)\n(neg b)"},
		{"method chain", "let s = xs\n    .len()", "(let s (method xs len))"},
		{"pipeline continues", "let r = xs\n    |> f", "(let r (|> xs f))"},
		{"inside parens", "let t = (a\n+ b)", "(let t (+ a b))"},
		{"inside list", "let l = [\n    1,\n    2,\n]", "(let l (list (int 1) (int 2)))"},
		{"call args span lines", "f(\n    1,\n    2\n)", "(call f (int 1) (int 2))"},
		{"semicolons", "a; b; c", "(semi a)\n(semi b)\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, dumpSource(t, tt.input), tt.want)
		})
	}
}

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			"match v { 0 => a, 1 | 2 => b, 3..=9 => c, n if n < 0 => d, _ => e }",
			"(match v (arm (int 0) a) (arm (| (int 1) (int 2)) b) (arm (range= (int 3) (int 9)) c) (arm n (if (< n (int 0))) d) (arm _ e))",
		},
		{
			"match p { Point { x: 0, y } => y, Point { .. } => 0 }",
			"(match p (arm (new Point (x (int 0)) (y y)) y) (arm (new Point ..) (int 0)))",
		},
		{
			"match xs { [] => 0, [first, ..rest] => first, [.., last] => last }",
			"(match xs (arm (list) (int 0)) (arm (list first ..rest) first) (arm (list .. last) last))",
		},
		{
			"match o { Some(x) => x, None => 0, Shape::Circle(r) => r }",
			"(match o (arm (Some x) x) (arm None (int 0)) (arm (Shape::Circle r) r))",
		},
		{
			"match c { 'a'..='z' => 1, -5 => 2, all @ _ => 3 }",
			"(match c (arm (range= (char 'a') (char 'z')) (int 1)) (arm (int -5) (int 2)) (arm (@ all _) (int 3)))",
		},
		{
			"match t { (1, _) => a\n    (_, mut y) => { y += 1 } }",
			"(match t (arm (tuple (int 1) _) a) (arm (tuple _ (mut y)) (block (+= y (int 1)))))",
		},
		{
			"match r { Ok(v) => v, Err(e) => { count = count + 1 } }",
			"(match r (arm (Ok v) v) (arm (Err e) (block (= count (+ count (int 1))))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, dumpSource(t, tt.input), tt.want)
		})
	}
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let a: [i64] = x", "(let a :[i64] x)"},
		{"let a: (i64, String) = x", "(let a :(i64, String) x)"},
		{"let a: HashMap<String, Vec<i64>> = x", "(let a :HashMap<String, Vec<i64>> x)"},
		{"let a: fn(i64) -> bool = x", "(let a :fn(i64) -> bool x)"},
		{"let a: impl Fn(i64) -> i64 = x", "(let a :fn(i64) -> i64 x)"},
		{"let a: Option<&str> = x", "(let a :Option<&str> x)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, dumpSource(t, tt.input), tt.want)
		})
	}
}

func TestParseErrorsRecover(t *testing.T) {
	src := "let = 5\nlet y = 2\nlet z = )\nprint(y)"
	prog, diags := NewParser(src).ParseProgram()

	be.Equal(t, len(diags), 2)
	be.Equal(t, diags[0].Message, "expected a pattern, found '='")
	be.Equal(t, diags[0].Span.Start, Position{Line: 1, Column: 5, Offset: 4})
	be.Equal(t, diags[1].Message, "expected an expression, found ')'")
	be.Equal(t, diags[1].Span.Start.Line, 3)
	be.Equal(t, Dump(prog), "(let y (int 2))\n(call print y)")
}

func TestParseErrorsInsideBlocks(t *testing.T) {
	src := "fun f() {\n    let a = \n    let b = 1\n    b +\n}\nlet ok = 1"
	prog, diags := NewParser(src).ParseProgram()

	be.True(t, len(diags) >= 2)
	last := prog.Stmts[len(prog.Stmts)-1]
	be.Equal(t, Dump(last), "(let ok (int 1))")
}

func TestParseLexErrorsBecomeDiagnostics(t *testing.T) {
	prog, diags := NewParser("let x = 1 $ 2\nlet y = \"open").ParseProgram()

	be.Equal(t, len(diags), 2)
	be.Equal(t, diags[0].Kind, LexError)
	be.Equal(t, diags[0].Message, "unexpected character $")
	be.Equal(t, diags[1].Kind, LexError)
	be.Equal(t, diags[1].Message, "unterminated string literal")
	be.Equal(t, Dump(prog), "(let x (int 1))")
}

func TestParseLexErrorMessageIsVerbatim(t *testing.T) {
	_, diags := NewParser(`let s = "100\%"`).ParseProgram()

	be.True(t, len(diags) >= 1)
	be.Equal(t, diags[0].Kind, LexError)
	be.Equal(t, diags[0].Message, `unknown escape sequence "\\%"`)
	be.True(t, !strings.Contains(diags[0].Message, "%!"))
}

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let x 5", "expected '=' in let binding, found integer 5"},
		{"f(1, 2", "expected ')' to close '(' opened at 1:2, found end of input"},
		{"let p = P { x: 1, x: 2 }", "field 'x' specified more than once"},
		{"1 + 2 = 3", "invalid assignment target"},
		{"impl Show for P {}", "trait implementations are not supported"},
		{"let n = 99999999999999999999", "integer literal 99999999999999999999 is out of range for i64"},
		{`let s = f"{}"`, "empty expression in f-string"},
		{"match x { [a, .., b, ..] => 1 }", "a list pattern may contain only one '..'"},
		{"let x = 1 2", "expected ';' or a line break after the statement, found integer 2"},
		{"}", "unexpected '}' with no matching '{'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			be.Err(t, err, tt.want)
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)

	_, diags := NewParser(deep).ParseProgram()
	be.Equal(t, len(diags), 1)
	be.Equal(t, diags[0].Message, "nesting exceeds the maximum depth of 256")

	_, diags = NewParser(deep, WithMaxDepth(2000)).ParseProgram()
	be.Equal(t, len(diags), 0)

	blocks := strings.Repeat("{ ", 50) + strings.Repeat("} ", 50)
	_, diags = NewParser(blocks, WithMaxDepth(20)).ParseProgram()
	be.Equal(t, len(diags), 1)
}

// The parse of a statement must not depend on how much code precedes it.
func TestParseLocalityAcrossPrefixSizes(t *testing.T) {
	suffix := "let v = x\n[1, 2].len()\nlet w = {\"k\": v}\n"
	var want string
	for _, n := range []int{0, 1, 10, 100, 1000, 5000} {
		t.Run(fmt.Sprintf("prefix=%d", n), func(t *testing.T) {
			prefix := strings.Repeat("let a = [1, 2, 3]\nprint(a[0])\n", n)
			prog, err := Parse(prefix + suffix)
			be.Err(t, err, nil)
			be.Equal(t, len(prog.Stmts), 2*n+3)

			tail := Dump(&Program{Stmts: prog.Stmts[2*n:]})
			if want == "" {
				want = tail
			}
			be.Equal(t, tail, want)
		})
	}
	be.Equal(t, want, "(let v x)\n(method (list (int 1) (int 2)) len)\n(let w (map ((str \"k\") v)))")
}

func TestParsePositions(t *testing.T) {
	prog, err := Parse("let x = 1\n  foo(x) + 2")
	be.Err(t, err, nil)
	stmt := prog.Stmts[1].(*ExprStmt)
	bin := stmt.Expr.(*BinaryExpr)
	be.Equal(t, bin.Position(), Position{Line: 2, Column: 3, Offset: 12})
	be.Equal(t, bin.Right.Position(), Position{Line: 2, Column: 12, Offset: 21})
}

func TestDiagnosticRender(t *testing.T) {
	src := "let a = 1\nlet = 5"
	_, diags := NewParser(src).ParseProgram()
	be.Equal(t, len(diags), 1)

	out := diags[0].Render("main.ruchy", src)
	want := "parse error in main.ruchy at 2:5: expected a pattern, found '='\n\n" +
		"   1 | let a = 1\n" +
		"   2 | let = 5\n" +
		"     |     ^\n"
	be.Equal(t, out, want)
}
