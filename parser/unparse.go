package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const indentUnit = "    "

// Format renders a program as canonical source. Parsing the result yields
// a tree equal to prog.
func Format(prog *Program) string {
	lines := UnparseProgram(prog.Stmts)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatExpr renders a single expression
func FormatExpr(e Expr) string {
	return unparseExpr(e, PREC_LOWEST, 0)
}

// UnparseProgram converts AST statements back to source code lines.
// Items are separated from their neighbours by a blank line.
func UnparseProgram(stmts []Stmt) []string {
	var lines []string
	for i, stmt := range stmts {
		if i > 0 && (IsItem(stmt) || IsItem(stmts[i-1])) {
			if _, imp := stmt.(*ImportStmt); !imp || !isImport(stmts[i-1]) {
				lines = append(lines, "")
			}
		}
		lines = append(lines, unparseStmt(stmt, 0))
	}
	return lines
}

func isImport(s Stmt) bool {
	_, ok := s.(*ImportStmt)
	return ok
}

// unparseStmt converts a statement to source code
func unparseStmt(stmt Stmt, indent int) string {
	indentStr := strings.Repeat(indentUnit, indent)

	switch s := stmt.(type) {
	case *ExprStmt:
		out := indentStr + unparseExpr(s.Expr, PREC_LOWEST, indent)
		if s.Semi {
			out += ";"
		}
		return out

	case *LetStmt:
		out := indentStr + "let " + unparsePattern(s.Pattern)
		if s.Type != nil {
			out += ": " + unparseType(s.Type)
		}
		return out + " = " + unparseExpr(s.Value, PREC_LOWEST, indent)

	case *AssignStmt:
		return indentStr + unparseExpr(s.Target, PREC_LOWEST, indent) + " " +
			OperatorText(s.Operator) + " " + unparseExpr(s.Value, PREC_LOWEST, indent)

	case *WhileStmt:
		return indentStr + "while " + unparseHead(s.Condition, indent) + " " + unparseBlock(s.Body, indent)

	case *ForStmt:
		return indentStr + "for " + unparsePattern(s.Pattern) + " in " +
			unparseHead(s.Iter, indent) + " " + unparseBlock(s.Body, indent)

	case *FunDecl:
		return indentStr + unparseFunHeader(s) + " " + unparseBlock(s.Body, indent)

	case *StructDecl:
		var sb strings.Builder
		sb.WriteString(indentStr + "struct " + s.Name + " {")
		if len(s.Fields) == 0 {
			sb.WriteString("}")
			return sb.String()
		}
		sb.WriteString("\n")
		for _, f := range s.Fields {
			sb.WriteString(indentStr + indentUnit)
			if f.Public {
				sb.WriteString("pub ")
			}
			sb.WriteString(f.Name + ": " + unparseType(f.Type) + ",\n")
		}
		sb.WriteString(indentStr + "}")
		return sb.String()

	case *EnumDecl:
		var sb strings.Builder
		sb.WriteString(indentStr + "enum " + s.Name + " {")
		if len(s.Variants) == 0 {
			sb.WriteString("}")
			return sb.String()
		}
		sb.WriteString("\n")
		for _, v := range s.Variants {
			sb.WriteString(indentStr + indentUnit + v.Name)
			if len(v.Fields) > 0 {
				sb.WriteString("(" + unparseTypes(v.Fields) + ")")
			}
			sb.WriteString(",\n")
		}
		sb.WriteString(indentStr + "}")
		return sb.String()

	case *ImplDecl:
		var sb strings.Builder
		sb.WriteString(indentStr + "impl " + s.TypeName + " {")
		if len(s.Items) == 0 {
			sb.WriteString("}")
			return sb.String()
		}
		sb.WriteString("\n")
		for i, item := range s.Items {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(unparseStmt(item, indent+1) + "\n")
		}
		sb.WriteString(indentStr + "}")
		return sb.String()

	case *ModDecl:
		var sb strings.Builder
		sb.WriteString(indentStr + "mod " + s.Name + " {")
		if len(s.Body) == 0 {
			sb.WriteString("}")
			return sb.String()
		}
		sb.WriteString("\n")
		for _, line := range UnparseProgram(s.Body) {
			sb.WriteString(indentLines(line, indent+1) + "\n")
		}
		sb.WriteString(indentStr + "}")
		return sb.String()

	case *ImportStmt:
		out := indentStr + "import " + strings.Join(s.Path, "::")
		switch {
		case s.Wildcard:
			out += "::*"
		case s.Items != nil:
			items := make([]string, len(s.Items))
			for i, it := range s.Items {
				items[i] = it.Name
				if it.Alias != "" {
					items[i] += " as " + it.Alias
				}
			}
			out += "::{" + strings.Join(items, ", ") + "}"
		case s.Alias != "":
			out += " as " + s.Alias
		}
		return out

	case *ExportStmt:
		return indentStr + "pub " + strings.TrimPrefix(unparseStmt(s.Decl, indent), indentStr)

	default:
		return indentStr + fmt.Sprintf("<unknown statement: %T>", stmt)
	}
}

// indentLines prefixes every non-empty line of s with indent levels
func indentLines(s string, indent int) string {
	prefix := strings.Repeat(indentUnit, indent)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func unparseFunHeader(f *FunDecl) string {
	var sb strings.Builder
	sb.WriteString("fun " + f.Name)
	if len(f.TypeParams) > 0 {
		sb.WriteString("<" + strings.Join(f.TypeParams, ", ") + ">")
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
	sb.WriteString("(" + strings.Join(params, ", ") + ")")
	if f.ReturnType != nil {
		sb.WriteString(" -> " + unparseType(f.ReturnType))
	}
	return sb.String()
}

func unparseParam(p *Param) string {
	out := p.Name
	if p.Mutable {
		out = "mut " + out
	}
	if p.Type != nil {
		out += ": " + unparseType(p.Type)
	}
	return out
}

// unparseBlock renders { stmts } with the closing brace at indent
func unparseBlock(b *BlockExpr, indent int) string {
	if len(b.Stmts) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString(unparseStmt(s, indent+1) + "\n")
	}
	sb.WriteString(strings.Repeat(indentUnit, indent) + "}")
	return sb.String()
}

// unparseHead renders the expression before a '{' body, parenthesizing it
// when a struct literal would otherwise be read as the body
func unparseHead(e Expr, indent int) string {
	out := unparseExpr(e, PREC_LOWEST, indent)
	if hasBareStructLit(e) {
		return "(" + out + ")"
	}
	return out
}

// hasBareStructLit reports whether a struct literal appears outside any
// delimiters in e
func hasBareStructLit(e Expr) bool {
	switch e := e.(type) {
	case *StructLit:
		return true
	case *BinaryExpr:
		return hasBareStructLit(e.Left) || hasBareStructLit(e.Right)
	case *UnaryExpr:
		return hasBareStructLit(e.Operand)
	case *CastExpr:
		return hasBareStructLit(e.Expr)
	case *RangeExpr:
		return (e.Start != nil && hasBareStructLit(e.Start)) || (e.End != nil && hasBareStructLit(e.End))
	case *PipelineExpr:
		return hasBareStructLit(e.Left) || hasBareStructLit(e.Right)
	case *FieldExpr:
		return hasBareStructLit(e.Expr)
	case *MethodCallExpr:
		return hasBareStructLit(e.Receiver)
	case *IndexExpr:
		return hasBareStructLit(e.Expr)
	case *CallExpr:
		return hasBareStructLit(e.Callee)
	}
	return false
}

// exprPrecedence is the binding power of the node when printed bare
func exprPrecedence(e Expr) int {
	switch e := e.(type) {
	case *BinaryExpr:
		return InfixPrecedence(e.Operator)
	case *RangeExpr:
		return PREC_RANGE
	case *PipelineExpr:
		return PREC_PIPELINE
	case *CastExpr:
		return PREC_CAST
	case *UnaryExpr:
		return PREC_UNARY
	case *IntLit:
		if e.Value < 0 {
			return PREC_UNARY
		}
	case *FloatLit:
		if e.Value < 0 || strings.HasPrefix(e.Raw, "-") {
			return PREC_UNARY
		}
	case *ClosureExpr, *BreakExpr, *ReturnExpr:
		return PREC_LOWEST
	}
	return PREC_POSTFIX
}

// unparseExpr converts an expression to source code, adding parentheses
// when its precedence is below parentPrecedence
func unparseExpr(expr Expr, parentPrecedence int, indent int) string {
	out := unparseBareExpr(expr, indent)
	prec := exprPrecedence(expr)
	if prec < parentPrecedence || (prec == PREC_LOWEST && parentPrecedence > PREC_LOWEST) {
		return "(" + out + ")"
	}
	return out
}

func unparseBareExpr(expr Expr, indent int) string {
	switch e := expr.(type) {
	case *IntLit:
		if e.Raw != "" {
			return e.Raw
		}
		return strconv.FormatInt(e.Value, 10) + e.Suffix

	case *FloatLit:
		if e.Raw != "" {
			return e.Raw
		}
		s := strconv.FormatFloat(e.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s + e.Suffix

	case *StringLit:
		return QuoteString(e.Value)

	case *CharLit:
		return QuoteChar(e.Value)

	case *BoolLit:
		if e.Value {
			return "true"
		}
		return "false"

	case *UnitLit:
		return "()"

	case *FStringExpr:
		var sb strings.Builder
		sb.WriteString("f\"")
		for _, part := range e.Parts {
			if part.Expr == nil {
				text := strings.NewReplacer("{", "{{", "}", "}}").Replace(part.Text)
				sb.WriteString(escapeString(text))
				continue
			}
			inner := unparseExpr(part.Expr, PREC_LOWEST, 0)
			sb.WriteString("{" + escapeString(inner))
			if part.Format != "" {
				sb.WriteString(":" + part.Format)
			}
			sb.WriteString("}")
		}
		sb.WriteString("\"")
		return sb.String()

	case *Ident:
		return e.Name

	case *PathExpr:
		return strings.Join(e.Segments, "::")

	case *BinaryExpr:
		prec := InfixPrecedence(e.Operator)
		leftPrec, rightPrec := prec, prec+1
		if e.Operator == TOKEN_POWER {
			leftPrec, rightPrec = prec+1, prec
		}
		return unparseExpr(e.Left, leftPrec, indent) + " " + OperatorText(e.Operator) + " " +
			unparseExpr(e.Right, rightPrec, indent)

	case *UnaryExpr:
		op := OperatorText(e.Operator)
		if e.Operator == TOKEN_AMP && e.Mutable {
			op = "&mut "
		}
		operand := unparseExpr(e.Operand, PREC_UNARY, indent)
		// keep "- -x" from reading as a different token sequence
		if e.Operator == TOKEN_MINUS && strings.HasPrefix(operand, "-") {
			operand = "(" + operand + ")"
		}
		return op + operand

	case *CastExpr:
		return unparseExpr(e.Expr, PREC_CAST, indent) + " as " + unparseType(e.Type)

	case *PipelineExpr:
		return unparseExpr(e.Left, PREC_PIPELINE, indent) + " |> " + unparseExpr(e.Right, PREC_PIPELINE+1, indent)

	case *CallExpr:
		return unparseExpr(e.Callee, PREC_POSTFIX, indent) + "(" + unparseArgs(e.Args, indent) + ")"

	case *MethodCallExpr:
		return unparseExpr(e.Receiver, PREC_POSTFIX, indent) + "." + e.Method + "(" + unparseArgs(e.Args, indent) + ")"

	case *IndexExpr:
		return unparseExpr(e.Expr, PREC_POSTFIX, indent) + "[" + unparseExpr(e.Index, PREC_LOWEST, indent) + "]"

	case *SliceExpr:
		var sb strings.Builder
		sb.WriteString(unparseExpr(e.Expr, PREC_POSTFIX, indent) + "[")
		if e.Start != nil {
			sb.WriteString(unparseExpr(e.Start, PREC_RANGE+1, indent))
		}
		if e.Inclusive {
			sb.WriteString("..=")
		} else {
			sb.WriteString("..")
		}
		if e.End != nil {
			sb.WriteString(unparseExpr(e.End, PREC_RANGE+1, indent))
		}
		sb.WriteString("]")
		return sb.String()

	case *FieldExpr:
		base := unparseExpr(e.Expr, PREC_POSTFIX, indent)
		if _, isInt := e.Expr.(*IntLit); isInt {
			base = "(" + base + ")"
		}
		return base + "." + e.Field

	case *ClosureExpr:
		params := make([]string, len(e.Params))
		for i, p := range e.Params {
			params[i] = unparseParam(p)
		}
		head := "|" + strings.Join(params, ", ") + "|"
		if e.ReturnType != nil {
			return head + " -> " + unparseType(e.ReturnType) + " " + unparseExpr(e.Body, PREC_LOWEST, indent)
		}
		return head + " " + unparseExpr(e.Body, PREC_LOWEST, indent)

	case *BlockExpr:
		return unparseBlock(e, indent)

	case *ListLit:
		return "[" + unparseArgs(e.Elements, indent) + "]"

	case *MapLit:
		entries := make([]string, len(e.Entries))
		for i, en := range e.Entries {
			entries[i] = unparseExpr(en.Key, PREC_LOWEST, indent) + ": " + unparseExpr(en.Value, PREC_LOWEST, indent)
		}
		return "{" + strings.Join(entries, ", ") + "}"

	case *TupleLit:
		if len(e.Elements) == 1 {
			return "(" + unparseExpr(e.Elements[0], PREC_LOWEST, indent) + ",)"
		}
		return "(" + unparseArgs(e.Elements, indent) + ")"

	case *StructLit:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			if id, ok := f.Value.(*Ident); ok && id.Name == f.Name {
				fields[i] = f.Name
				continue
			}
			fields[i] = f.Name + ": " + unparseExpr(f.Value, PREC_LOWEST, indent)
		}
		if len(fields) == 0 {
			return strings.Join(e.Path, "::") + " {}"
		}
		return strings.Join(e.Path, "::") + " { " + strings.Join(fields, ", ") + " }"

	case *RangeExpr:
		var sb strings.Builder
		if e.Start != nil {
			sb.WriteString(unparseExpr(e.Start, PREC_RANGE+1, indent))
		}
		if e.Inclusive {
			sb.WriteString("..=")
		} else {
			sb.WriteString("..")
		}
		if e.End != nil {
			sb.WriteString(unparseExpr(e.End, PREC_RANGE+1, indent))
		}
		return sb.String()

	case *IfExpr:
		out := "if " + unparseHead(e.Condition, indent) + " " + unparseBlock(e.Then, indent)
		if e.Else != nil {
			out += " else " + unparseBareExpr(e.Else, indent)
		}
		return out

	case *MatchExpr:
		var sb strings.Builder
		sb.WriteString("match " + unparseHead(e.Subject, indent) + " {\n")
		armIndent := strings.Repeat(indentUnit, indent+1)
		for _, arm := range e.Arms {
			sb.WriteString(armIndent + unparsePattern(arm.Pattern))
			if arm.Guard != nil {
				sb.WriteString(" if " + unparseExpr(arm.Guard, PREC_LOWEST, indent+1))
			}
			sb.WriteString(" => " + unparseExpr(arm.Body, PREC_LOWEST, indent+1) + ",\n")
		}
		sb.WriteString(strings.Repeat(indentUnit, indent) + "}")
		return sb.String()

	case *LoopExpr:
		return "loop " + unparseBlock(e.Body, indent)

	case *BreakExpr:
		if e.Value == nil {
			return "break"
		}
		return "break " + unparseExpr(e.Value, PREC_LOWEST, indent)

	case *ContinueExpr:
		return "continue"

	case *ReturnExpr:
		if e.Value == nil {
			return "return"
		}
		return "return " + unparseExpr(e.Value, PREC_LOWEST, indent)

	default:
		return fmt.Sprintf("<unknown expr: %T>", expr)
	}
}

func unparseArgs(args []Expr, indent int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = unparseExpr(a, PREC_LOWEST, indent)
	}
	return strings.Join(parts, ", ")
}

func unparsePattern(p Pattern) string {
	switch p := p.(type) {
	case *WildcardPattern:
		return "_"
	case *IdentPattern:
		out := p.Name
		if p.Mutable {
			out = "mut " + out
		}
		if p.Sub != nil {
			out += " @ " + unparsePattern(p.Sub)
		}
		return out
	case *LiteralPattern:
		return unparseBareExpr(p.Value, 0)
	case *TuplePattern:
		parts := make([]string, len(p.Elements))
		for i, el := range p.Elements {
			parts[i] = unparsePattern(el)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ListPattern:
		parts := make([]string, len(p.Elements))
		for i, el := range p.Elements {
			parts[i] = unparsePattern(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *RestPattern:
		return ".." + p.Name
	case *StructPattern:
		var parts []string
		for _, f := range p.Fields {
			if id, ok := f.Pattern.(*IdentPattern); ok && id.Name == f.Name && id.Sub == nil {
				parts = append(parts, unparsePattern(id))
				continue
			}
			parts = append(parts, f.Name+": "+unparsePattern(f.Pattern))
		}
		if p.Rest {
			parts = append(parts, "..")
		}
		if len(parts) == 0 {
			return strings.Join(p.Path, "::") + " {}"
		}
		return strings.Join(p.Path, "::") + " { " + strings.Join(parts, ", ") + " }"
	case *RangePattern:
		op := ".."
		if p.Inclusive {
			op = "..="
		}
		return unparseBareExpr(p.Start, 0) + op + unparseBareExpr(p.End, 0)
	case *OrPattern:
		parts := make([]string, len(p.Alternatives))
		for i, alt := range p.Alternatives {
			parts[i] = unparsePattern(alt)
		}
		return strings.Join(parts, " | ")
	case *VariantPattern:
		name := strings.Join(p.Path, "::")
		if p.Args == nil {
			return name
		}
		parts := make([]string, len(p.Args))
		for i, a := range p.Args {
			parts[i] = unparsePattern(a)
		}
		return name + "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("<unknown pattern: %T>", p)
}

func unparseType(t TypeExpr) string {
	switch t := t.(type) {
	case *NamedType:
		if len(t.Args) == 0 {
			return t.Name
		}
		return t.Name + "<" + unparseTypes(t.Args) + ">"
	case *ListType:
		return "[" + unparseType(t.Elem) + "]"
	case *TupleType:
		if len(t.Elements) == 1 {
			return "(" + unparseType(t.Elements[0]) + ",)"
		}
		return "(" + unparseTypes(t.Elements) + ")"
	case *FuncType:
		out := "fn(" + unparseTypes(t.Params) + ")"
		if t.Return != nil {
			out += " -> " + unparseType(t.Return)
		}
		return out
	case *RefType:
		if t.Mutable {
			return "&mut " + unparseType(t.Elem)
		}
		return "&" + unparseType(t.Elem)
	}
	return fmt.Sprintf("<unknown type: %T>", t)
}

func unparseTypes(ts []TypeExpr) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = unparseType(t)
	}
	return strings.Join(parts, ", ")
}

// QuoteString renders s as a double-quoted literal using \n, \t, \r, \0,
// \\, \" and \u{...} escapes
func QuoteString(s string) string {
	return "\"" + escapeString(s) + "\""
}

func escapeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteString(escapeRune(r))
		}
	}
	return sb.String()
}

// QuoteChar renders r as a single-quoted literal
func QuoteChar(r rune) string {
	if r == '\'' {
		return `'\''`
	}
	return "'" + escapeRune(r) + "'"
}

func escapeRune(r rune) string {
	switch r {
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case 0:
		return `\0`
	}
	if !unicode.IsPrint(r) {
		return fmt.Sprintf(`\u{%x}`, r)
	}
	return string(r)
}
