package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a node as a one-line S-expression, omitting positions.
// A Program renders one top-level statement per line.
//
//	let x = 1 + 2 * 3   =>   (let x (+ (int 1) (* (int 2) (int 3))))
func Dump(n Node) string {
	switch n := n.(type) {
	case *Program:
		lines := make([]string, len(n.Stmts))
		for i, s := range n.Stmts {
			lines[i] = dumpStmt(s)
		}
		return strings.Join(lines, "\n")
	case Stmt:
		return dumpStmt(n)
	case Expr:
		return dumpExpr(n)
	case Pattern:
		return dumpPattern(n)
	case TypeExpr:
		return unparseType(n)
	}
	return fmt.Sprintf("<unknown node: %T>", n)
}

func sexpr(head string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(parts, " ") + ")"
}

func dumpOpt(e Expr) string {
	if e == nil {
		return "_"
	}
	return dumpExpr(e)
}

func dumpExprs(head string, es []Expr, prefix ...string) string {
	parts := append([]string{}, prefix...)
	for _, e := range es {
		parts = append(parts, dumpExpr(e))
	}
	return sexpr(head, parts...)
}

func dumpStmts(head string, ss []Stmt, prefix ...string) string {
	parts := append([]string{}, prefix...)
	for _, s := range ss {
		parts = append(parts, dumpStmt(s))
	}
	return sexpr(head, parts...)
}

func dumpStmt(s Stmt) string {
	switch s := s.(type) {
	case *ExprStmt:
		if s.Semi {
			return sexpr("semi", dumpExpr(s.Expr))
		}
		return dumpExpr(s.Expr)
	case *LetStmt:
		parts := []string{dumpPattern(s.Pattern)}
		if s.Type != nil {
			parts = append(parts, ":"+unparseType(s.Type))
		}
		return sexpr("let", append(parts, dumpExpr(s.Value))...)
	case *AssignStmt:
		return sexpr(OperatorText(s.Operator), dumpExpr(s.Target), dumpExpr(s.Value))
	case *WhileStmt:
		return sexpr("while", dumpExpr(s.Condition), dumpExpr(s.Body))
	case *ForStmt:
		return sexpr("for", dumpPattern(s.Pattern), dumpExpr(s.Iter), dumpExpr(s.Body))
	case *FunDecl:
		return dumpFun(s)
	case *StructDecl:
		parts := []string{s.Name}
		for _, f := range s.Fields {
			field := f.Name + ":" + unparseType(f.Type)
			if f.Public {
				field = "pub " + field
			}
			parts = append(parts, "("+field+")")
		}
		return sexpr("struct", parts...)
	case *EnumDecl:
		parts := []string{s.Name}
		for _, v := range s.Variants {
			fields := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = unparseType(f)
			}
			parts = append(parts, sexpr(v.Name, fields...))
		}
		return sexpr("enum", parts...)
	case *ImplDecl:
		return dumpStmts("impl", s.Items, s.TypeName)
	case *ModDecl:
		return dumpStmts("mod", s.Body, s.Name)
	case *ImportStmt:
		return sexpr("import", strings.TrimPrefix(unparseStmt(s, 0), "import "))
	case *ExportStmt:
		return sexpr("pub", dumpStmt(s.Decl))
	}
	return fmt.Sprintf("<unknown statement: %T>", s)
}

func dumpFun(f *FunDecl) string {
	name := f.Name
	if len(f.TypeParams) > 0 {
		name += "<" + strings.Join(f.TypeParams, ", ") + ">"
	}
	var params []string
	switch f.Receiver {
	case ReceiverValue:
		params = append(params, "self")
	case ReceiverRef:
		params = append(params, "&self")
	case ReceiverMutRef:
		params = append(params, "&mut self")
	}
	for _, p := range f.Params {
		params = append(params, unparseParam(p))
	}
	parts := []string{name, sexpr("params", params...)}
	if f.ReturnType != nil {
		parts = append(parts, "->"+unparseType(f.ReturnType))
	}
	return sexpr("fun", append(parts, dumpExpr(f.Body))...)
}

func dumpExpr(e Expr) string {
	switch e := e.(type) {
	case *IntLit:
		return sexpr("int", strconv.FormatInt(e.Value, 10)+e.Suffix)
	case *FloatLit:
		return sexpr("float", strconv.FormatFloat(e.Value, 'g', -1, 64)+e.Suffix)
	case *StringLit:
		return sexpr("str", QuoteString(e.Value))
	case *CharLit:
		return sexpr("char", QuoteChar(e.Value))
	case *BoolLit:
		return sexpr("bool", strconv.FormatBool(e.Value))
	case *UnitLit:
		return "(unit)"
	case *FStringExpr:
		var parts []string
		for _, p := range e.Parts {
			if p.Expr == nil {
				parts = append(parts, QuoteString(p.Text))
				continue
			}
			if p.Format != "" {
				parts = append(parts, sexpr("fmt", dumpExpr(p.Expr), p.Format))
			} else {
				parts = append(parts, dumpExpr(p.Expr))
			}
		}
		return sexpr("fstr", parts...)
	case *Ident:
		return e.Name
	case *PathExpr:
		return strings.Join(e.Segments, "::")
	case *BinaryExpr:
		return sexpr(OperatorText(e.Operator), dumpExpr(e.Left), dumpExpr(e.Right))
	case *UnaryExpr:
		op := OperatorText(e.Operator)
		if e.Operator == TOKEN_MINUS {
			op = "neg"
		} else if e.Mutable {
			op = "&mut"
		}
		return sexpr(op, dumpExpr(e.Operand))
	case *CastExpr:
		return sexpr("as", dumpExpr(e.Expr), unparseType(e.Type))
	case *PipelineExpr:
		return sexpr("|>", dumpExpr(e.Left), dumpExpr(e.Right))
	case *CallExpr:
		return dumpExprs("call", e.Args, dumpExpr(e.Callee))
	case *MethodCallExpr:
		return dumpExprs("method", e.Args, dumpExpr(e.Receiver), e.Method)
	case *IndexExpr:
		return sexpr("index", dumpExpr(e.Expr), dumpExpr(e.Index))
	case *SliceExpr:
		head := "slice"
		if e.Inclusive {
			head = "slice="
		}
		return sexpr(head, dumpExpr(e.Expr), dumpOpt(e.Start), dumpOpt(e.End))
	case *FieldExpr:
		return sexpr("field", dumpExpr(e.Expr), e.Field)
	case *ClosureExpr:
		params := make([]string, len(e.Params))
		for i, p := range e.Params {
			params[i] = unparseParam(p)
		}
		parts := []string{sexpr("params", params...)}
		if e.ReturnType != nil {
			parts = append(parts, "->"+unparseType(e.ReturnType))
		}
		return sexpr("closure", append(parts, dumpExpr(e.Body))...)
	case *BlockExpr:
		return dumpStmts("block", e.Stmts)
	case *ListLit:
		return dumpExprs("list", e.Elements)
	case *MapLit:
		parts := make([]string, len(e.Entries))
		for i, en := range e.Entries {
			parts[i] = sexpr(dumpExpr(en.Key), dumpExpr(en.Value))
		}
		return sexpr("map", parts...)
	case *TupleLit:
		return dumpExprs("tuple", e.Elements)
	case *StructLit:
		parts := []string{strings.Join(e.Path, "::")}
		for _, f := range e.Fields {
			parts = append(parts, sexpr(f.Name, dumpExpr(f.Value)))
		}
		return sexpr("new", parts...)
	case *RangeExpr:
		head := "range"
		if e.Inclusive {
			head = "range="
		}
		return sexpr(head, dumpOpt(e.Start), dumpOpt(e.End))
	case *IfExpr:
		if e.Else == nil {
			return sexpr("if", dumpExpr(e.Condition), dumpExpr(e.Then))
		}
		return sexpr("if", dumpExpr(e.Condition), dumpExpr(e.Then), dumpExpr(e.Else))
	case *MatchExpr:
		parts := []string{dumpExpr(e.Subject)}
		for _, arm := range e.Arms {
			armParts := []string{dumpPattern(arm.Pattern)}
			if arm.Guard != nil {
				armParts = append(armParts, sexpr("if", dumpExpr(arm.Guard)))
			}
			parts = append(parts, sexpr("arm", append(armParts, dumpExpr(arm.Body))...))
		}
		return sexpr("match", parts...)
	case *LoopExpr:
		return sexpr("loop", dumpExpr(e.Body))
	case *BreakExpr:
		if e.Value == nil {
			return "(break)"
		}
		return sexpr("break", dumpExpr(e.Value))
	case *ContinueExpr:
		return "(continue)"
	case *ReturnExpr:
		if e.Value == nil {
			return "(return)"
		}
		return sexpr("return", dumpExpr(e.Value))
	}
	return fmt.Sprintf("<unknown expr: %T>", e)
}

func dumpPattern(p Pattern) string {
	switch p := p.(type) {
	case *WildcardPattern:
		return "_"
	case *IdentPattern:
		name := p.Name
		if p.Mutable {
			name = sexpr("mut", name)
		}
		if p.Sub != nil {
			return sexpr("@", name, dumpPattern(p.Sub))
		}
		return name
	case *LiteralPattern:
		return dumpExpr(p.Value)
	case *TuplePattern:
		return dumpPatterns("tuple", p.Elements)
	case *ListPattern:
		return dumpPatterns("list", p.Elements)
	case *RestPattern:
		if p.Name == "" {
			return ".."
		}
		return ".." + p.Name
	case *StructPattern:
		parts := []string{strings.Join(p.Path, "::")}
		for _, f := range p.Fields {
			parts = append(parts, sexpr(f.Name, dumpPattern(f.Pattern)))
		}
		if p.Rest {
			parts = append(parts, "..")
		}
		return sexpr("new", parts...)
	case *RangePattern:
		head := "range"
		if p.Inclusive {
			head = "range="
		}
		return sexpr(head, dumpExpr(p.Start), dumpExpr(p.End))
	case *OrPattern:
		return dumpPatterns("|", p.Alternatives)
	case *VariantPattern:
		name := strings.Join(p.Path, "::")
		if p.Args == nil {
			return name
		}
		return dumpPatterns(name, p.Args)
	}
	return fmt.Sprintf("<unknown pattern: %T>", p)
}

func dumpPatterns(head string, ps []Pattern) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = dumpPattern(p)
	}
	return sexpr(head, parts...)
}
