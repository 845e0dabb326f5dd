package parser

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds syntactic nesting so hostile input cannot
// exhaust the stack
const DefaultMaxDepth = 256

// Parser parses Ruchy source code into an AST.
//
// Errors are collected as diagnostics. After an error the parser skips to
// the next statement boundary (a newline or ';' at the same nesting level,
// or the enclosing '}') and continues, so one parse reports every error.
type Parser struct {
	lexer *Lexer
	buf   []Token // lookahead
	prev  Token   // last consumed token

	diags    Diagnostics
	lastErr  int // offset of the last token reported, -1 if none
	depth    int
	maxDepth int
	aborted  bool

	noStruct       bool // struct literals are not allowed (if/while/for/match heads)
	ignoreNewlines bool // inside ( ) or [ ], line breaks do not end expressions
}

// Option configures a Parser
type Option func(*Parser)

// WithMaxDepth sets the nesting limit
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// bailout unwinds the parser to the nearest statement boundary
type bailout struct{}

// NewParser creates a new Parser instance
func NewParser(input string, opts ...Option) *Parser {
	p := &Parser{
		lexer:    NewLexer(input),
		lastErr:  -1,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a complete program. The returned error, if any, is a
// Diagnostics value listing every lexical and syntactic error.
func Parse(src string, opts ...Option) (*Program, error) {
	prog, diags := NewParser(src, opts...).ParseProgram()
	return prog, diags.Err()
}

// ParseProgram parses statements until end of input
func (p *Parser) ParseProgram() (prog *Program, diags Diagnostics) {
	prog = &Program{Pos: p.cur().Pos}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
		diags = p.diags
	}()

	for p.cur().Type != TOKEN_EOF {
		switch p.cur().Type {
		case TOKEN_SEMICOLON:
			p.next()
			continue
		case TOKEN_RBRACE:
			p.report(ParseError, p.cur().Span(), "unexpected '}' with no matching '{'")
			p.skipToken()
			continue
		}
		if stmt := p.parseStatementRecover(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	return prog, p.diags
}

// Token access

func (p *Parser) peek(n int) Token {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lexer.NextToken())
	}
	return p.buf[n]
}

func (p *Parser) cur() Token {
	return p.peek(0)
}

// next consumes the current token
func (p *Parser) next() Token {
	tok := p.cur()
	if tok.Type != TOKEN_EOF {
		p.buf = p.buf[1:]
	}
	p.prev = tok
	return tok
}

// skipToken consumes a token during recovery, reporting lexical errors it passes
func (p *Parser) skipToken() {
	tok := p.next()
	if tok.Type == TOKEN_ERROR && tok.Pos.Offset != p.lastErr {
		p.report(LexError, tok.Span(), "%s", tok.Literal)
	}
}

// breaksLine reports whether tok starts a new line in a context where
// line breaks terminate expressions
func (p *Parser) breaksLine(tok Token) bool {
	return tok.NewlineBefore && !p.ignoreNewlines
}

func (p *Parser) at(t TokenType) bool {
	return p.cur().Type == t
}

// accept consumes the current token if it has type t
func (p *Parser) accept(t TokenType) bool {
	if p.at(t) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) Token {
	if !p.at(t) {
		p.failExpected(t.String())
	}
	return p.next()
}

func (p *Parser) expectIdent(what string) Token {
	if !p.at(TOKEN_IDENTIFIER) {
		p.failExpected(what)
	}
	return p.next()
}

// Errors

func (p *Parser) report(kind DiagnosticKind, span Span, format string, args ...interface{}) {
	p.diags = append(p.diags, &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	})
	p.lastErr = span.Start.Offset
}

// fail records an error at span and unwinds to the statement boundary
func (p *Parser) fail(span Span, format string, args ...interface{}) {
	p.report(ParseError, span, format, args...)
	panic(bailout{})
}

// failExpected reports "expected X, found Y" at the current token.
// An invalid token is reported with the lexer's message instead.
func (p *Parser) failExpected(what string) {
	tok := p.cur()
	if tok.Type == TOKEN_ERROR {
		p.report(LexError, tok.Span(), "%s", tok.Literal)
		panic(bailout{})
	}
	p.fail(tok.Span(), "expected %s, found %s", what, tok.Describe())
}

func (p *Parser) enter() {
	p.depth++
	if p.depth > p.maxDepth {
		p.aborted = true
		p.report(ParseError, p.cur().Span(), "nesting exceeds the maximum depth of %d", p.maxDepth)
		panic(bailout{})
	}
}

func (p *Parser) leave() {
	p.depth--
}

// Statement boundaries

// parseStatementRecover parses one statement plus its terminator. On error
// it resynchronizes and returns nil.
func (p *Parser) parseStatementRecover() (stmt Stmt) {
	start := p.cur().Pos.Offset
	noStruct, ignoreNewlines := p.noStruct, p.ignoreNewlines
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bailout); !ok || p.aborted {
			panic(r)
		}
		p.noStruct, p.ignoreNewlines = noStruct, ignoreNewlines
		p.synchronize(start)
		stmt = nil
	}()

	p.noStruct, p.ignoreNewlines = false, false
	stmt = p.parseStatement()
	p.noStruct, p.ignoreNewlines = noStruct, ignoreNewlines
	p.expectTerminator(stmt)
	return stmt
}

// expectTerminator accepts ';', a line break, a closing '}' or end of input
// after a statement. A statement ending in '}' needs no terminator.
func (p *Parser) expectTerminator(stmt Stmt) {
	tok := p.cur()
	switch {
	case tok.Type == TOKEN_SEMICOLON:
		p.next()
		if es, ok := stmt.(*ExprStmt); ok {
			es.Semi = true
		}
	case tok.Type == TOKEN_RBRACE, tok.Type == TOKEN_EOF, tok.NewlineBefore:
	case p.prev.Type == TOKEN_RBRACE:
	default:
		if tok.Type == TOKEN_ERROR {
			p.report(LexError, tok.Span(), "%s", tok.Literal)
		} else {
			p.report(ParseError, tok.Span(), "expected ';' or a line break after the statement, found %s", tok.Describe())
		}
		p.synchronize(tok.Pos.Offset)
	}
}

// synchronize skips tokens until the start of the next statement
func (p *Parser) synchronize(start int) {
	if p.cur().Pos.Offset == start && !p.at(TOKEN_EOF) {
		p.skipToken()
	}
	nesting := 0
	for {
		tok := p.cur()
		if tok.Type == TOKEN_EOF {
			return
		}
		if nesting == 0 {
			if tok.Type == TOKEN_RBRACE {
				return
			}
			if tok.NewlineBefore && tok.Pos.Offset > start {
				return
			}
		}
		switch tok.Type {
		case TOKEN_SEMICOLON:
			if nesting == 0 {
				p.skipToken()
				return
			}
		case TOKEN_LPAREN, TOKEN_LBRACKET, TOKEN_LBRACE:
			nesting++
		case TOKEN_RPAREN, TOKEN_RBRACKET, TOKEN_RBRACE:
			if nesting > 0 {
				nesting--
			}
		}
		p.skipToken()
	}
}

// parseStatement parses a single statement
func (p *Parser) parseStatement() Stmt {
	p.enter()
	defer p.leave()

	switch p.cur().Type {
	case TOKEN_LET:
		return p.parseLet()
	case TOKEN_FUN:
		return p.parseFunDecl()
	case TOKEN_STRUCT:
		return p.parseStructDecl()
	case TOKEN_ENUM:
		return p.parseEnumDecl()
	case TOKEN_IMPL:
		return p.parseImplDecl()
	case TOKEN_MOD:
		return p.parseModDecl()
	case TOKEN_IMPORT:
		return p.parseImport()
	case TOKEN_EXPORT, TOKEN_PUB:
		return p.parseExport()
	case TOKEN_WHILE:
		return p.parseWhile()
	case TOKEN_FOR:
		return p.parseFor()
	}
	return p.parseExprStatement()
}

// parseExprStatement parses an expression statement or an assignment
func (p *Parser) parseExprStatement() Stmt {
	start := p.cur()
	expr := p.parseExpr()
	if op := p.cur(); IsAssignOp(op.Type) && !p.breaksLine(op) {
		return p.finishAssign(expr, start.Pos)
	}
	return &ExprStmt{Pos: start.Pos, Expr: expr}
}

func (p *Parser) finishAssign(target Expr, pos Position) *AssignStmt {
	op := p.next()
	if !isPlace(target) {
		p.fail(Span{Start: target.Position(), End: op.Pos}, "invalid assignment target")
	}
	value := p.parseExpr()
	return &AssignStmt{Pos: pos, Target: target, Operator: op.Type, Value: value}
}

// isPlace reports whether e can be assigned to
func isPlace(e Expr) bool {
	switch e := e.(type) {
	case *Ident:
		return true
	case *IndexExpr:
		return isPlace(e.Expr)
	case *FieldExpr:
		return isPlace(e.Expr)
	}
	return false
}

// parseLet parses let [mut] pattern [: Type] = value
func (p *Parser) parseLet() Stmt {
	kw := p.next()
	stmt := &LetStmt{Pos: kw.Pos}
	stmt.Pattern = p.parsePattern()
	if p.accept(TOKEN_COLON) {
		stmt.Type = p.parseType()
	}
	if !p.at(TOKEN_ASSIGN) {
		p.failExpected("'=' in let binding")
	}
	p.next()
	stmt.Value = p.parseExpr()
	return stmt
}

func (p *Parser) parseWhile() Stmt {
	kw := p.next()
	cond := p.parseHeadExpr()
	body := p.parseBlock()
	return &WhileStmt{Pos: kw.Pos, Condition: cond, Body: body}
}

func (p *Parser) parseFor() Stmt {
	kw := p.next()
	pat := p.parsePattern()
	p.expect(TOKEN_IN)
	iter := p.parseHeadExpr()
	body := p.parseBlock()
	return &ForStmt{Pos: kw.Pos, Pattern: pat, Iter: iter, Body: body}
}

// parseHeadExpr parses the expression before a '{' body, where a struct
// literal would be ambiguous
func (p *Parser) parseHeadExpr() Expr {
	saved := p.noStruct
	p.noStruct = true
	e := p.parseExpr()
	p.noStruct = saved
	return e
}

// parseBlock parses { statements }
func (p *Parser) parseBlock() *BlockExpr {
	open := p.expect(TOKEN_LBRACE)
	block := &BlockExpr{Pos: open.Pos}
	block.Stmts = p.parseStatementsUntilBrace(open)
	return block
}

// parseStatementsUntilBrace parses statements up to and including the '}'
// matching open
func (p *Parser) parseStatementsUntilBrace(open Token) []Stmt {
	noStruct, ignoreNewlines := p.noStruct, p.ignoreNewlines
	p.noStruct, p.ignoreNewlines = false, false
	defer func() { p.noStruct, p.ignoreNewlines = noStruct, ignoreNewlines }()

	var stmts []Stmt
	for {
		switch p.cur().Type {
		case TOKEN_RBRACE:
			p.next()
			return stmts
		case TOKEN_EOF:
			p.fail(p.cur().Span(), "expected '}' to close the block opened at %s", open.Pos)
		case TOKEN_SEMICOLON:
			p.next()
			continue
		}
		if s := p.parseStatementRecover(); s != nil {
			stmts = append(stmts, s)
		}
	}
}

// parseFunDecl parses fun name[<T>](params) [-> Type] { body }
func (p *Parser) parseFunDecl() *FunDecl {
	kw := p.next()
	name := p.expectIdent("function name")
	fn := &FunDecl{Pos: kw.Pos, Name: name.Value}

	if p.accept(TOKEN_LT) {
		for !p.at(TOKEN_GT) {
			tp := p.expectIdent("type parameter")
			fn.TypeParams = append(fn.TypeParams, tp.Value)
			if p.accept(TOKEN_COLON) {
				// bounds are checked by the target compiler
				p.parseType()
				for p.accept(TOKEN_PLUS) {
					p.parseType()
				}
			}
			if !p.accept(TOKEN_COMMA) {
				break
			}
		}
		p.expectCloseAngle()
	}

	open := p.expect(TOKEN_LPAREN)
	p.withGroup(func() {
		if kind, ok := p.parseReceiver(); ok {
			fn.Receiver = kind
			if !p.accept(TOKEN_COMMA) && !p.at(TOKEN_RPAREN) {
				p.failExpected("',' or ')'")
			}
		}
		for !p.at(TOKEN_RPAREN) {
			fn.Params = append(fn.Params, p.parseParam())
			if !p.accept(TOKEN_COMMA) {
				break
			}
		}
		p.expectClose(TOKEN_RPAREN, open)
	})

	if p.accept(TOKEN_ARROW) {
		fn.ReturnType = p.parseType()
	}
	fn.Body = p.parseBlock()
	return fn
}

// parseReceiver parses self, &self, &mut self or mut self
func (p *Parser) parseReceiver() (ReceiverKind, bool) {
	isSelf := func(n int) bool {
		tok := p.peek(n)
		return tok.Type == TOKEN_IDENTIFIER && tok.Value == "self"
	}
	switch {
	case isSelf(0):
		p.next()
		return ReceiverValue, true
	case p.at(TOKEN_MUT) && isSelf(1):
		p.next()
		p.next()
		return ReceiverValue, true
	case p.at(TOKEN_AMP) && isSelf(1):
		p.next()
		p.next()
		return ReceiverRef, true
	case p.at(TOKEN_AMP) && p.peek(1).Type == TOKEN_MUT && isSelf(2):
		p.next()
		p.next()
		p.next()
		return ReceiverMutRef, true
	}
	return ReceiverNone, false
}

// parseParam parses [mut] name [: Type]
func (p *Parser) parseParam() *Param {
	param := &Param{Pos: p.cur().Pos}
	if p.accept(TOKEN_MUT) {
		param.Mutable = true
	}
	param.Name = p.expectIdent("parameter name").Value
	if p.accept(TOKEN_COLON) {
		param.Type = p.parseType()
	}
	return param
}

// parseStructDecl parses struct Name { [pub] field: Type, ... }
func (p *Parser) parseStructDecl() Stmt {
	kw := p.next()
	name := p.expectIdent("struct name")
	decl := &StructDecl{Pos: kw.Pos, Name: name.Value}
	open := p.expect(TOKEN_LBRACE)
	p.parseSeparated(open, func() {
		field := &FieldDecl{Pos: p.cur().Pos}
		field.Public = p.accept(TOKEN_PUB)
		field.Name = p.expectIdent("field name").Value
		p.expect(TOKEN_COLON)
		field.Type = p.parseType()
		decl.Fields = append(decl.Fields, field)
	})
	return decl
}

// parseEnumDecl parses enum Name { A, B(T, U), ... }
func (p *Parser) parseEnumDecl() Stmt {
	kw := p.next()
	name := p.expectIdent("enum name")
	decl := &EnumDecl{Pos: kw.Pos, Name: name.Value}
	open := p.expect(TOKEN_LBRACE)
	p.parseSeparated(open, func() {
		tok := p.expectIdent("variant name")
		v := &VariantDecl{Pos: tok.Pos, Name: tok.Value}
		if popen := p.cur(); popen.Type == TOKEN_LPAREN {
			p.next()
			p.withGroup(func() {
				for !p.at(TOKEN_RPAREN) {
					v.Fields = append(v.Fields, p.parseType())
					if !p.accept(TOKEN_COMMA) {
						break
					}
				}
				p.expectClose(TOKEN_RPAREN, popen)
			})
		}
		decl.Variants = append(decl.Variants, v)
	})
	return decl
}

// parseSeparated parses items separated by ',' or line breaks up to the
// '}' matching open
func (p *Parser) parseSeparated(open Token, item func()) {
	saved := p.ignoreNewlines
	p.ignoreNewlines = false
	defer func() { p.ignoreNewlines = saved }()
	for {
		if p.accept(TOKEN_RBRACE) {
			return
		}
		if p.at(TOKEN_EOF) {
			p.fail(p.cur().Span(), "expected '}' to close the '{' opened at %s", open.Pos)
		}
		item()
		if p.accept(TOKEN_COMMA) || p.at(TOKEN_RBRACE) || p.cur().NewlineBefore {
			continue
		}
		p.failExpected("',' or '}'")
	}
}

// parseImplDecl parses impl Name { [pub] fun ... }
func (p *Parser) parseImplDecl() Stmt {
	kw := p.next()
	name := p.expectIdent("type name")
	if p.at(TOKEN_FOR) {
		p.fail(p.cur().Span(), "trait implementations are not supported")
	}
	decl := &ImplDecl{Pos: kw.Pos, TypeName: name.Value}
	open := p.expect(TOKEN_LBRACE)
	for {
		if p.accept(TOKEN_RBRACE) {
			return decl
		}
		switch p.cur().Type {
		case TOKEN_EOF:
			p.fail(p.cur().Span(), "expected '}' to close the impl block opened at %s", open.Pos)
		case TOKEN_SEMICOLON:
			p.next()
		case TOKEN_PUB, TOKEN_EXPORT:
			pub := p.next()
			if !p.at(TOKEN_FUN) {
				p.failExpected("'fun' after 'pub' in impl block")
			}
			decl.Items = append(decl.Items, &ExportStmt{Pos: pub.Pos, Decl: p.parseFunDecl()})
		case TOKEN_FUN:
			decl.Items = append(decl.Items, p.parseFunDecl())
		default:
			p.failExpected("a method declaration")
		}
	}
}

// parseModDecl parses mod name { items }
func (p *Parser) parseModDecl() Stmt {
	kw := p.next()
	name := p.expectIdent("module name")
	open := p.expect(TOKEN_LBRACE)
	return &ModDecl{Pos: kw.Pos, Name: name.Value, Body: p.parseStatementsUntilBrace(open)}
}

// parseImport parses the import forms:
//
//	import a::b
//	import a::b as c
//	import a::{b, c as d}
//	import a::*
func (p *Parser) parseImport() Stmt {
	kw := p.next()
	stmt := &ImportStmt{Pos: kw.Pos}
	stmt.Path = append(stmt.Path, p.expectIdent("module path").Value)
	for p.accept(TOKEN_PATHSEP) {
		switch p.cur().Type {
		case TOKEN_STAR:
			p.next()
			stmt.Wildcard = true
			return stmt
		case TOKEN_LBRACE:
			open := p.next()
			p.withGroup(func() {
				for !p.at(TOKEN_RBRACE) {
					item := &ImportItem{Name: p.expectIdent("imported name").Value}
					if p.accept(TOKEN_AS) {
						item.Alias = p.expectIdent("alias").Value
					}
					stmt.Items = append(stmt.Items, item)
					if !p.accept(TOKEN_COMMA) {
						break
					}
				}
				p.expectClose(TOKEN_RBRACE, open)
			})
			return stmt
		default:
			stmt.Path = append(stmt.Path, p.expectIdent("path segment").Value)
		}
	}
	if p.accept(TOKEN_AS) {
		stmt.Alias = p.expectIdent("alias").Value
	}
	return stmt
}

// parseExport parses export/pub followed by a declaration
func (p *Parser) parseExport() Stmt {
	kw := p.next()
	var decl Stmt
	switch p.cur().Type {
	case TOKEN_FUN:
		decl = p.parseFunDecl()
	case TOKEN_STRUCT:
		decl = p.parseStructDecl()
	case TOKEN_ENUM:
		decl = p.parseEnumDecl()
	case TOKEN_MOD:
		decl = p.parseModDecl()
	case TOKEN_IMPORT:
		decl = p.parseImport()
	default:
		p.failExpected("a declaration after '" + kw.Value + "'")
	}
	return &ExportStmt{Pos: kw.Pos, Decl: decl}
}

// withGroup runs fn with line breaks made insignificant, as inside ( ) and [ ]
func (p *Parser) withGroup(fn func()) {
	saved, savedStruct := p.ignoreNewlines, p.noStruct
	p.ignoreNewlines, p.noStruct = true, false
	defer func() { p.ignoreNewlines, p.noStruct = saved, savedStruct }()
	fn()
}

// expectClose consumes the closing delimiter for open
func (p *Parser) expectClose(t TokenType, open Token) Token {
	if !p.at(t) {
		tok := p.cur()
		if tok.Type == TOKEN_ERROR {
			p.failExpected(t.String())
		}
		p.fail(tok.Span(), "expected %s to close %s opened at %s, found %s",
			t, open.Type, open.Pos, tok.Describe())
	}
	return p.next()
}

// expectCloseAngle consumes a '>' closing a generic argument list, splitting '>>'
func (p *Parser) expectCloseAngle() {
	tok := p.cur()
	switch tok.Type {
	case TOKEN_GT:
		p.next()
	case TOKEN_RSHIFT:
		rest := tok
		rest.Type = TOKEN_GT
		rest.Value = ">"
		rest.NewlineBefore = false
		rest.Pos.Column++
		rest.Pos.Offset++
		p.buf[0] = rest
		p.prev = Token{Type: TOKEN_GT, Value: ">", Pos: tok.Pos, End: rest.Pos}
	default:
		p.failExpected("'>'")
	}
}

// ParseExpression parses a single expression that must span the whole input
func ParseExpression(src string, opts ...Option) (Expr, error) {
	return NewParser(src, opts...).parseStandaloneExpr()
}

func (p *Parser) parseStandaloneExpr() (expr Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			expr, err = nil, p.diags
		}
	}()
	expr = p.parseExpr()
	if !p.at(TOKEN_EOF) {
		p.failExpected("end of expression")
	}
	return expr, p.diags.Err()
}

func describeNames(names []string) string {
	return strings.Join(names, "::")
}
