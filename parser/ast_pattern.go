package parser

// Pattern represents a match / let / for pattern
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything: _
type WildcardPattern struct {
	Pos Position
}

func (p *WildcardPattern) Position() Position { return p.Pos }
func (p *WildcardPattern) patternNode()       {}

// IdentPattern binds a name, optionally guarded by a sub-pattern (name @ pat)
type IdentPattern struct {
	Pos     Position
	Name    string
	Mutable bool
	Sub     Pattern
}

func (p *IdentPattern) Position() Position { return p.Pos }
func (p *IdentPattern) patternNode()       {}

// LiteralPattern matches an int, float, string, char or bool literal
type LiteralPattern struct {
	Pos   Position
	Value Expr
}

func (p *LiteralPattern) Position() Position { return p.Pos }
func (p *LiteralPattern) patternNode()       {}

type TuplePattern struct {
	Pos      Position
	Elements []Pattern
}

func (p *TuplePattern) Position() Position { return p.Pos }
func (p *TuplePattern) patternNode()       {}

// ListPattern matches a list: [a, b], [first, ..rest], [.., last]
type ListPattern struct {
	Pos      Position
	Elements []Pattern
}

func (p *ListPattern) Position() Position { return p.Pos }
func (p *ListPattern) patternNode()       {}

// RestIndex returns the index of the rest element, or -1
func (p *ListPattern) RestIndex() int {
	for i, el := range p.Elements {
		if _, ok := el.(*RestPattern); ok {
			return i
		}
	}
	return -1
}

// RestPattern is .. or ..name inside a list pattern
type RestPattern struct {
	Pos  Position
	Name string
}

func (p *RestPattern) Position() Position { return p.Pos }
func (p *RestPattern) patternNode()       {}

// StructPattern matches Name { field: pat, shorthand, .. }
type StructPattern struct {
	Pos    Position
	Path   []string
	Fields []*FieldPattern
	Rest   bool
}

type FieldPattern struct {
	Name    string
	Pattern Pattern
}

func (p *StructPattern) Position() Position { return p.Pos }
func (p *StructPattern) patternNode()       {}

// RangePattern matches lo..=hi or lo..hi between two literals
type RangePattern struct {
	Pos       Position
	Start     Expr
	End       Expr
	Inclusive bool
}

func (p *RangePattern) Position() Position { return p.Pos }
func (p *RangePattern) patternNode()       {}

type OrPattern struct {
	Pos          Position
	Alternatives []Pattern
}

func (p *OrPattern) Position() Position { return p.Pos }
func (p *OrPattern) patternNode()       {}

// VariantPattern matches an enum variant: None, Some(x), Shape::Circle(r)
type VariantPattern struct {
	Pos  Position
	Path []string
	Args []Pattern
}

func (p *VariantPattern) Position() Position { return p.Pos }
func (p *VariantPattern) patternNode()       {}

// Name returns the variant name (last path segment)
func (p *VariantPattern) Name() string { return p.Path[len(p.Path)-1] }

// IsCatchAll reports whether p matches every value
func IsCatchAll(p Pattern) bool {
	switch p := p.(type) {
	case *WildcardPattern:
		return true
	case *IdentPattern:
		return p.Sub == nil || IsCatchAll(p.Sub)
	case *OrPattern:
		for _, alt := range p.Alternatives {
			if IsCatchAll(alt) {
				return true
			}
		}
	}
	return false
}

// PatternBindings lists the names bound by p, in order of appearance
func PatternBindings(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p := p.(type) {
		case *IdentPattern:
			names = append(names, p.Name)
			if p.Sub != nil {
				walk(p.Sub)
			}
		case *TuplePattern:
			for _, el := range p.Elements {
				walk(el)
			}
		case *ListPattern:
			for _, el := range p.Elements {
				walk(el)
			}
		case *RestPattern:
			if p.Name != "" {
				names = append(names, p.Name)
			}
		case *StructPattern:
			for _, f := range p.Fields {
				walk(f.Pattern)
			}
		case *OrPattern:
			if len(p.Alternatives) > 0 {
				walk(p.Alternatives[0])
			}
		case *VariantPattern:
			for _, a := range p.Args {
				walk(a)
			}
		}
	}
	walk(p)
	return names
}

// Type annotations

// TypeExpr is a type annotation
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType is a (possibly qualified, possibly generic) type name: i64, Vec<T>
type NamedType struct {
	Pos  Position
	Name string
	Args []TypeExpr
}

func (t *NamedType) Position() Position { return t.Pos }
func (t *NamedType) typeNode()          {}

// ListType is [T]
type ListType struct {
	Pos  Position
	Elem TypeExpr
}

func (t *ListType) Position() Position { return t.Pos }
func (t *ListType) typeNode()          {}

// TupleType is (A, B); the empty tuple is the unit type
type TupleType struct {
	Pos      Position
	Elements []TypeExpr
}

func (t *TupleType) Position() Position { return t.Pos }
func (t *TupleType) typeNode()          {}

// FuncType is fn(A, B) -> R
type FuncType struct {
	Pos    Position
	Params []TypeExpr
	Return TypeExpr
}

func (t *FuncType) Position() Position { return t.Pos }
func (t *FuncType) typeNode()          {}

// RefType is &T or &mut T
type RefType struct {
	Pos     Position
	Mutable bool
	Elem    TypeExpr
}

func (t *RefType) Position() Position { return t.Pos }
func (t *RefType) typeNode()          {}
