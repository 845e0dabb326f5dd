package parser

// Node is the base interface for all AST nodes
type Node interface {
	Position() Position
}

// Expr represents an expression node
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of a parsed source file or REPL fragment
type Program struct {
	Pos   Position
	Stmts []Stmt
}

func (p *Program) Position() Position { return p.Pos }

// Literal expressions

// IntLit represents an integer literal; Raw keeps the source spelling
type IntLit struct {
	Pos    Position
	Value  int64
	Raw    string
	Suffix string
}

func (e *IntLit) Position() Position { return e.Pos }
func (e *IntLit) exprNode()          {}

// FloatLit represents a float literal
type FloatLit struct {
	Pos    Position
	Value  float64
	Raw    string
	Suffix string
}

func (e *FloatLit) Position() Position { return e.Pos }
func (e *FloatLit) exprNode()          {}

type StringLit struct {
	Pos   Position
	Value string
}

func (e *StringLit) Position() Position { return e.Pos }
func (e *StringLit) exprNode()          {}

type CharLit struct {
	Pos   Position
	Value rune
}

func (e *CharLit) Position() Position { return e.Pos }
func (e *CharLit) exprNode()          {}

type BoolLit struct {
	Pos   Position
	Value bool
}

func (e *BoolLit) Position() Position { return e.Pos }
func (e *BoolLit) exprNode()          {}

// UnitLit is the empty tuple ()
type UnitLit struct {
	Pos Position
}

func (e *UnitLit) Position() Position { return e.Pos }
func (e *UnitLit) exprNode()          {}

// FStringExpr is an interpolated string f"a {b} c"
type FStringExpr struct {
	Pos   Position
	Parts []FStringPart
}

// FStringPart is either literal text or an interpolated expression.
// Format holds the spec after ':' ("?" or ".2"), if any.
type FStringPart struct {
	Text   string
	Expr   Expr
	Format string
}

func (e *FStringExpr) Position() Position { return e.Pos }
func (e *FStringExpr) exprNode()          {}

// Names and operators

// Ident represents a variable reference
type Ident struct {
	Pos  Position
	Name string
}

func (e *Ident) Position() Position { return e.Pos }
func (e *Ident) exprNode()          {}

// PathExpr represents a qualified name: a::b::c
type PathExpr struct {
	Pos      Position
	Segments []string
}

func (e *PathExpr) Position() Position { return e.Pos }
func (e *PathExpr) exprNode()          {}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	Pos      Position
	Left     Expr
	Operator TokenType
	Right    Expr
}

func (e *BinaryExpr) Position() Position { return e.Pos }
func (e *BinaryExpr) exprNode()          {}

// UnaryExpr represents a unary operation: -x, !x, &x, &mut x
type UnaryExpr struct {
	Pos      Position
	Operator TokenType // TOKEN_MINUS, TOKEN_NOT, TOKEN_AMP
	Mutable  bool      // &mut
	Operand  Expr
}

func (e *UnaryExpr) Position() Position { return e.Pos }
func (e *UnaryExpr) exprNode()          {}

// CastExpr represents expr as Type
type CastExpr struct {
	Pos  Position
	Expr Expr
	Type TypeExpr
}

func (e *CastExpr) Position() Position { return e.Pos }
func (e *CastExpr) exprNode()          {}

// PipelineExpr represents left |> right; right is called with left
type PipelineExpr struct {
	Pos   Position
	Left  Expr
	Right Expr
}

func (e *PipelineExpr) Position() Position { return e.Pos }
func (e *PipelineExpr) exprNode()          {}

// Access and calls

// CallExpr represents callee(args)
type CallExpr struct {
	Pos    Position
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) Position() Position { return e.Pos }
func (e *CallExpr) exprNode()          {}

// MethodCallExpr represents receiver.method(args)
type MethodCallExpr struct {
	Pos      Position
	Receiver Expr
	Method   string
	Args     []Expr
}

func (e *MethodCallExpr) Position() Position { return e.Pos }
func (e *MethodCallExpr) exprNode()          {}

// IndexExpr represents indexing: expr[index]
type IndexExpr struct {
	Pos   Position
	Expr  Expr
	Index Expr
}

func (e *IndexExpr) Position() Position { return e.Pos }
func (e *IndexExpr) exprNode()          {}

// SliceExpr represents expr[start..end]; Start and End may be nil
type SliceExpr struct {
	Pos       Position
	Expr      Expr
	Start     Expr
	End       Expr
	Inclusive bool
}

func (e *SliceExpr) Position() Position { return e.Pos }
func (e *SliceExpr) exprNode()          {}

// FieldExpr represents field access expr.name, or tuple access expr.0
type FieldExpr struct {
	Pos   Position
	Expr  Expr
	Field string
}

func (e *FieldExpr) Position() Position { return e.Pos }
func (e *FieldExpr) exprNode()          {}

// Compound expressions

// ClosureExpr represents |params| body
type ClosureExpr struct {
	Pos        Position
	Params     []*Param
	ReturnType TypeExpr
	Body       Expr
}

func (e *ClosureExpr) Position() Position { return e.Pos }
func (e *ClosureExpr) exprNode()          {}

// BlockExpr represents { stmts }. Its value is the value of the last
// statement when that statement is an expression without a trailing ';'.
type BlockExpr struct {
	Pos   Position
	Stmts []Stmt
}

func (e *BlockExpr) Position() Position { return e.Pos }
func (e *BlockExpr) exprNode()          {}

// Tail returns the expression producing the block's value, or nil
func (e *BlockExpr) Tail() Expr {
	if len(e.Stmts) == 0 {
		return nil
	}
	if es, ok := e.Stmts[len(e.Stmts)-1].(*ExprStmt); ok && !es.Semi {
		return es.Expr
	}
	return nil
}

type ListLit struct {
	Pos      Position
	Elements []Expr
}

func (e *ListLit) Position() Position { return e.Pos }
func (e *ListLit) exprNode()          {}

// MapLit represents {key: value, ...}
type MapLit struct {
	Pos     Position
	Entries []*MapEntry
}

type MapEntry struct {
	Key   Expr
	Value Expr
}

func (e *MapLit) Position() Position { return e.Pos }
func (e *MapLit) exprNode()          {}

type TupleLit struct {
	Pos      Position
	Elements []Expr
}

func (e *TupleLit) Position() Position { return e.Pos }
func (e *TupleLit) exprNode()          {}

// StructLit represents Name { field: value, ... }
type StructLit struct {
	Pos    Position
	Path   []string
	Fields []*FieldInit
}

// FieldInit is one field of a struct literal; shorthand `x` has Value = Ident x
type FieldInit struct {
	Pos   Position
	Name  string
	Value Expr
}

func (e *StructLit) Position() Position { return e.Pos }
func (f *FieldInit) Position() Position { return f.Pos }
func (e *StructLit) exprNode()          {}

// Name returns the struct name (last path segment)
func (e *StructLit) Name() string { return e.Path[len(e.Path)-1] }

// RangeExpr represents start..end or start..=end; either bound may be nil
type RangeExpr struct {
	Pos       Position
	Start     Expr
	End       Expr
	Inclusive bool
}

func (e *RangeExpr) Position() Position { return e.Pos }
func (e *RangeExpr) exprNode()          {}

// Control flow expressions

// IfExpr represents if/else; Else is nil, *BlockExpr or *IfExpr
type IfExpr struct {
	Pos       Position
	Condition Expr
	Then      *BlockExpr
	Else      Expr
}

func (e *IfExpr) Position() Position { return e.Pos }
func (e *IfExpr) exprNode()          {}

type MatchExpr struct {
	Pos     Position
	Subject Expr
	Arms    []*MatchArm
}

// MatchArm is pattern [if guard] => body
type MatchArm struct {
	Pos     Position
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

func (e *MatchExpr) Position() Position { return e.Pos }
func (e *MatchExpr) exprNode()          {}
func (a *MatchArm) Position() Position  { return a.Pos }

type LoopExpr struct {
	Pos  Position
	Body *BlockExpr
}

func (e *LoopExpr) Position() Position { return e.Pos }
func (e *LoopExpr) exprNode()          {}

type BreakExpr struct {
	Pos   Position
	Value Expr // may be nil
}

func (e *BreakExpr) Position() Position { return e.Pos }
func (e *BreakExpr) exprNode()          {}

type ContinueExpr struct {
	Pos Position
}

func (e *ContinueExpr) Position() Position { return e.Pos }
func (e *ContinueExpr) exprNode()          {}

type ReturnExpr struct {
	Pos   Position
	Value Expr // may be nil
}

func (e *ReturnExpr) Position() Position { return e.Pos }
func (e *ReturnExpr) exprNode()          {}

// Statement AST nodes

// LetStmt represents let [mut] pattern [: Type] = value
type LetStmt struct {
	Pos     Position
	Pattern Pattern
	Type    TypeExpr
	Value   Expr
}

func (s *LetStmt) Position() Position { return s.Pos }
func (s *LetStmt) stmtNode()          {}

// AssignStmt represents target op value where op is = or a compound operator
type AssignStmt struct {
	Pos      Position
	Target   Expr // Ident, IndexExpr or FieldExpr
	Operator TokenType
	Value    Expr
}

func (s *AssignStmt) Position() Position { return s.Pos }
func (s *AssignStmt) stmtNode()          {}

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	Pos  Position
	Expr Expr
	Semi bool // terminated by ';'
}

func (s *ExprStmt) Position() Position { return s.Pos }
func (s *ExprStmt) stmtNode()          {}

type WhileStmt struct {
	Pos       Position
	Condition Expr
	Body      *BlockExpr
}

func (s *WhileStmt) Position() Position { return s.Pos }
func (s *WhileStmt) stmtNode()          {}

// ForStmt represents for pattern in iter { body }
type ForStmt struct {
	Pos     Position
	Pattern Pattern
	Iter    Expr
	Body    *BlockExpr
}

func (s *ForStmt) Position() Position { return s.Pos }
func (s *ForStmt) stmtNode()          {}

// ReceiverKind describes how a method takes self
type ReceiverKind int

const (
	ReceiverNone ReceiverKind = iota
	ReceiverValue
	ReceiverRef
	ReceiverMutRef
)

// FunDecl represents a named function or method
type FunDecl struct {
	Pos        Position
	Name       string
	TypeParams []string
	Receiver   ReceiverKind
	Params     []*Param
	ReturnType TypeExpr
	Body       *BlockExpr
}

// Param is a function or closure parameter
type Param struct {
	Pos     Position
	Name    string
	Mutable bool
	Type    TypeExpr // may be nil
}

func (s *FunDecl) Position() Position { return s.Pos }
func (p *Param) Position() Position   { return p.Pos }
func (s *FunDecl) stmtNode()          {}

type StructDecl struct {
	Pos    Position
	Name   string
	Fields []*FieldDecl
}

type FieldDecl struct {
	Pos    Position
	Name   string
	Type   TypeExpr
	Public bool
}

func (s *StructDecl) Position() Position { return s.Pos }
func (s *StructDecl) stmtNode()          {}

type EnumDecl struct {
	Pos      Position
	Name     string
	Variants []*VariantDecl
}

// VariantDecl is a unit variant (no Fields) or a tuple variant
type VariantDecl struct {
	Pos    Position
	Name   string
	Fields []TypeExpr
}

func (s *EnumDecl) Position() Position { return s.Pos }
func (s *EnumDecl) stmtNode()          {}

// ImplDecl holds methods for a struct or enum; items are *FunDecl,
// optionally wrapped in *ExportStmt
type ImplDecl struct {
	Pos      Position
	TypeName string
	Items    []Stmt
}

func (s *ImplDecl) Position() Position { return s.Pos }
func (s *ImplDecl) stmtNode()          {}

// ModDecl represents an inline module mod name { ... }
type ModDecl struct {
	Pos  Position
	Name string
	Body []Stmt
}

func (s *ModDecl) Position() Position { return s.Pos }
func (s *ModDecl) stmtNode()          {}

// ImportStmt covers import a::b, import a::b as c, import a::{b, c as d}
// and import a::*
type ImportStmt struct {
	Pos      Position
	Path     []string
	Alias    string
	Items    []*ImportItem
	Wildcard bool
}

type ImportItem struct {
	Name  string
	Alias string
}

func (s *ImportStmt) Position() Position { return s.Pos }
func (s *ImportStmt) stmtNode()          {}

// ExportStmt marks a declaration visible outside its module (export / pub)
type ExportStmt struct {
	Pos  Position
	Decl Stmt
}

func (s *ExportStmt) Position() Position { return s.Pos }
func (s *ExportStmt) stmtNode()          {}

// Unexport returns the declaration inside an export, and whether it was exported
func Unexport(s Stmt) (Stmt, bool) {
	if ex, ok := s.(*ExportStmt); ok {
		return ex.Decl, true
	}
	return s, false
}

// IsItem reports whether s declares an item (function, type, module, import)
// rather than executing code
func IsItem(s Stmt) bool {
	s, _ = Unexport(s)
	switch s.(type) {
	case *FunDecl, *StructDecl, *EnumDecl, *ImplDecl, *ModDecl, *ImportStmt:
		return true
	}
	return false
}

// IsBlockLike reports whether e ends with a closing brace and may stand
// as a statement without a terminator
func IsBlockLike(e Expr) bool {
	switch e.(type) {
	case *BlockExpr, *IfExpr, *MatchExpr, *LoopExpr:
		return true
	}
	return false
}
