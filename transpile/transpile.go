// Package transpile lowers a parsed Ruchy program to equivalent Rust
// source. The generated crate prints exactly what the interpreter prints
// for the same program, or lowering fails with a LoweringError naming the
// construct that has no faithful Rust rendering.
package transpile

import (
	"fmt"
	"sort"
	"strings"

	"ruchy/parser"
)

// Options control the shape of the generated crate
type Options struct {
	// Header is emitted verbatim above the crate attributes, one comment
	// line per line of text
	Header string
}

// LoweringError reports a construct the transpiler cannot express
type LoweringError struct {
	Node    parser.Node
	Span    parser.Span
	Message string
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("lowering error at %s: %s", e.Span.Start, e.Message)
}

// Render formats the error with a caret under the offending node
func (e *LoweringError) Render(name, src string) string {
	d := &parser.Diagnostic{Message: e.Message, Span: e.Span}
	return strings.Replace(d.Render(name, src), d.Kind.String(), "lowering error", 1)
}

// bailout unwinds the lowering on the first unsupported construct
type bailout struct{ err *LoweringError }

// funSig is what call sites need to know about a function
type funSig struct {
	name     string
	params   []*Type
	ret      *Type
	receiver parser.ReceiverKind
	decl     *parser.FunDecl
}

// variantInfo is one enum variant's field types
type variantInfo struct {
	enum   string
	fields []*Type
}

// Lowerer holds the item tables and the state of the function being lowered
type Lowerer struct {
	structs  map[string]*parser.StructDecl
	enums    map[string]*parser.EnumDecl
	variants map[string]*variantInfo // "Enum::Variant" and imported bare names
	funs     map[string]*funSig      // "f", "m::f" and "Type::method"
	mutators map[string]bool         // user methods taking &mut self
	modules  map[string]bool
	topLets  map[string]bool

	needs map[string]bool // prelude traits referenced by the output

	dry      bool   // inferring signatures; output is discarded
	implType string // type whose impl block is being lowered
	loops    []*Type
	inSlice  bool // binding inside a slice pattern, by reference

	fn    *fnState
	scope *scope
	out   *emitter
}

// fnState tracks the function or main body being lowered
type fnState struct {
	name     string
	mutated  map[string]bool
	returns  []*Type
	inMain   bool
	selfType *Type
	prefix   string // module path of the enclosing module, with trailing ::
}

// Lower translates a program into a Rust crate
func Lower(prog *parser.Program, opts Options) (code string, err error) {
	l := newLowerer()
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			code, err = "", b.err
		}
	}()
	return l.lowerProgram(prog, opts), nil
}

func newLowerer() *Lowerer {
	return &Lowerer{
		structs:  make(map[string]*parser.StructDecl),
		enums:    make(map[string]*parser.EnumDecl),
		variants: make(map[string]*variantInfo),
		funs:     make(map[string]*funSig),
		mutators: make(map[string]bool),
		modules:  make(map[string]bool),
		topLets:  make(map[string]bool),
		needs:    make(map[string]bool),
	}
}

// fail aborts lowering with an error located at node
func (l *Lowerer) fail(node parser.Node, format string, args ...interface{}) {
	var span parser.Span
	if node != nil {
		pos := node.Position()
		span = parser.Span{Start: pos, End: pos}
	}
	panic(bailout{&LoweringError{Node: node, Span: span, Message: fmt.Sprintf(format, args...)}})
}

// ============================================================================
// PROGRAM SHAPE
// ============================================================================

func (l *Lowerer) lowerProgram(prog *parser.Program, opts Options) string {
	var items, stmts []parser.Stmt
	userMain := false
	for _, s := range prog.Stmts {
		if parser.IsItem(s) {
			items = append(items, s)
			if f, ok := unexported(s).(*parser.FunDecl); ok && f.Name == "main" {
				userMain = true
			}
			continue
		}
		stmts = append(stmts, s)
	}
	if userMain && len(stmts) > 0 {
		l.fail(stmts[0], "top-level statement outside `main`; move it into `fn main`")
	}
	for _, s := range stmts {
		l.collectTopLets(s)
	}

	l.collectItems(items, "")
	l.inferSignatures(items, stmts)

	l.scope = newScope(nil)
	l.declareItemNames(items, l.scope, "")
	body := newEmitter()
	l.out = body
	l.lowerItems(items, "")
	if !userMain {
		l.lowerMain(stmts)
	}

	var b strings.Builder
	if opts.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(opts.Header, "\n"), "\n") {
			b.WriteString(strings.TrimRight("// "+line, " "))
			b.WriteByte('\n')
		}
	}
	b.WriteString("#![allow(unused, unreachable_code, unreachable_patterns, unused_mut, unused_parens, non_snake_case, non_camel_case_types, dead_code, path_statements, unused_must_use, irrefutable_let_patterns, unconditional_panic, arithmetic_overflow, overflowing_literals)]\n")
	b.WriteString("use std::collections::{BTreeMap, BTreeSet};\n")
	if prelude := l.prelude(); prelude != "" {
		b.WriteString("\n")
		b.WriteString(prelude)
	}
	b.WriteString(body.String())
	return b.String()
}

func unexported(s parser.Stmt) parser.Stmt {
	d, _ := parser.Unexport(s)
	return d
}

// collectTopLets records names bound by top-level statements, which
// hoisted functions cannot see
func (l *Lowerer) collectTopLets(s parser.Stmt) {
	switch s := s.(type) {
	case *parser.LetStmt:
		for _, n := range parser.PatternBindings(s.Pattern) {
			l.topLets[n] = true
		}
	case *parser.AssignStmt:
		if id, ok := s.Target.(*parser.Ident); ok {
			l.topLets[id.Name] = true
		}
	}
}

// lowerMain emits the top-level statements as the body of fn main
func (l *Lowerer) lowerMain(stmts []parser.Stmt) {
	l.fn = &fnState{name: "main", inMain: true, mutated: l.mutatedNames(stmts)}
	l.scope = newScope(l.scope)
	defer func() { l.scope = l.scope.parent }()

	l.out.blank()
	l.out.line("fn main() {")
	l.out.indent++
	for _, s := range stmts {
		l.lowerStmt(s, false)
	}
	l.out.indent--
	l.out.line("}")
}

// ============================================================================
// EMITTER
// ============================================================================

type emitter struct {
	b      strings.Builder
	indent int
	fresh  bool
}

func newEmitter() *emitter { return &emitter{fresh: true} }

func (e *emitter) line(format string, args ...interface{}) {
	e.b.WriteString(strings.Repeat("    ", e.indent))
	if len(args) > 0 {
		fmt.Fprintf(&e.b, format, args...)
	} else {
		e.b.WriteString(format)
	}
	e.b.WriteByte('\n')
	e.fresh = false
}

// blank separates items, never at the start of a block
func (e *emitter) blank() {
	if !e.fresh {
		e.b.WriteByte('\n')
	}
}

func (e *emitter) String() string { return e.b.String() }

// capture runs fn against a scratch emitter at the current indentation and
// returns what it wrote
func (l *Lowerer) capture(fn func()) string {
	saved := l.out
	l.out = &emitter{indent: saved.indent, fresh: true}
	defer func() { l.out = saved }()
	fn()
	return l.out.String()
}

// ============================================================================
// PRELUDE
// ============================================================================

// conversion traits, implemented only for the pairs the interpreter accepts
var preludeTraits = map[string]string{
	"RuchyToInt": `trait RuchyToInt { fn to_int(&self) -> i64; }
impl RuchyToInt for i64 { fn to_int(&self) -> i64 { *self } }
impl RuchyToInt for f64 { fn to_int(&self) -> i64 { *self as i64 } }
impl RuchyToInt for bool { fn to_int(&self) -> i64 { *self as i64 } }
impl RuchyToInt for char { fn to_int(&self) -> i64 { *self as i64 } }
impl RuchyToInt for String { fn to_int(&self) -> i64 { self.parse::<i64>().unwrap() } }
`,
	"RuchyToFloat": `trait RuchyToFloat { fn to_float(&self) -> f64; }
impl RuchyToFloat for i64 { fn to_float(&self) -> f64 { *self as f64 } }
impl RuchyToFloat for f64 { fn to_float(&self) -> f64 { *self } }
impl RuchyToFloat for String { fn to_float(&self) -> f64 { self.parse::<f64>().unwrap() } }
`,
	"RuchyToBool": `trait RuchyToBool { fn to_bool(&self) -> bool; }
impl RuchyToBool for bool { fn to_bool(&self) -> bool { *self } }
impl RuchyToBool for i64 { fn to_bool(&self) -> bool { *self != 0 } }
impl RuchyToBool for String { fn to_bool(&self) -> bool { self.parse::<bool>().unwrap() } }
`,
	"RuchyToChar": `trait RuchyToChar { fn to_char(&self) -> char; }
impl RuchyToChar for char { fn to_char(&self) -> char { *self } }
impl RuchyToChar for i64 { fn to_char(&self) -> char { char::from_u32(*self as u32).unwrap() } }
`,
}

func (l *Lowerer) prelude() string {
	var names []string
	for n := range l.needs {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(preludeTraits[n])
	}
	return b.String()
}
