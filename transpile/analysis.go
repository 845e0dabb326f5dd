package transpile

import (
	"ruchy/parser"
)

// inspect walks the subtree rooted at n in depth-first order, calling f
// for every node; children are skipped when f returns false
func inspect(n parser.Node, f func(parser.Node) bool) {
	if n == nil || !f(n) {
		return
	}
	walkExpr := func(es ...parser.Expr) {
		for _, e := range es {
			if e != nil {
				inspect(e, f)
			}
		}
	}
	walkStmts := func(ss []parser.Stmt) {
		for _, s := range ss {
			inspect(s, f)
		}
	}
	switch n := n.(type) {
	case *parser.Program:
		walkStmts(n.Stmts)
	case *parser.ExprStmt:
		walkExpr(n.Expr)
	case *parser.LetStmt:
		inspect(n.Pattern, f)
		walkExpr(n.Value)
	case *parser.AssignStmt:
		walkExpr(n.Target, n.Value)
	case *parser.WhileStmt:
		walkExpr(n.Condition, n.Body)
	case *parser.ForStmt:
		inspect(n.Pattern, f)
		walkExpr(n.Iter, n.Body)
	case *parser.FunDecl:
		walkExpr(n.Body)
	case *parser.ImplDecl:
		walkStmts(n.Items)
	case *parser.ModDecl:
		walkStmts(n.Body)
	case *parser.ExportStmt:
		inspect(n.Decl, f)
	case *parser.FStringExpr:
		for _, p := range n.Parts {
			walkExpr(p.Expr)
		}
	case *parser.BinaryExpr:
		walkExpr(n.Left, n.Right)
	case *parser.UnaryExpr:
		walkExpr(n.Operand)
	case *parser.CastExpr:
		walkExpr(n.Expr)
	case *parser.PipelineExpr:
		walkExpr(n.Left, n.Right)
	case *parser.CallExpr:
		walkExpr(n.Callee)
		walkExpr(n.Args...)
	case *parser.MethodCallExpr:
		walkExpr(n.Receiver)
		walkExpr(n.Args...)
	case *parser.IndexExpr:
		walkExpr(n.Expr, n.Index)
	case *parser.SliceExpr:
		walkExpr(n.Expr, n.Start, n.End)
	case *parser.FieldExpr:
		walkExpr(n.Expr)
	case *parser.ClosureExpr:
		walkExpr(n.Body)
	case *parser.BlockExpr:
		walkStmts(n.Stmts)
	case *parser.ListLit:
		walkExpr(n.Elements...)
	case *parser.MapLit:
		for _, en := range n.Entries {
			walkExpr(en.Key, en.Value)
		}
	case *parser.TupleLit:
		walkExpr(n.Elements...)
	case *parser.StructLit:
		for _, fi := range n.Fields {
			walkExpr(fi.Value)
		}
	case *parser.RangeExpr:
		walkExpr(n.Start, n.End)
	case *parser.IfExpr:
		walkExpr(n.Condition, n.Then, n.Else)
	case *parser.MatchExpr:
		walkExpr(n.Subject)
		for _, arm := range n.Arms {
			inspect(arm.Pattern, f)
			walkExpr(arm.Guard, arm.Body)
		}
	case *parser.LoopExpr:
		walkExpr(n.Body)
	case *parser.BreakExpr:
		walkExpr(n.Value)
	case *parser.ReturnExpr:
		walkExpr(n.Value)
	case *parser.IdentPattern:
		if n.Sub != nil {
			inspect(n.Sub, f)
		}
	case *parser.TuplePattern:
		for _, p := range n.Elements {
			inspect(p, f)
		}
	case *parser.ListPattern:
		for _, p := range n.Elements {
			inspect(p, f)
		}
	case *parser.StructPattern:
		for _, fp := range n.Fields {
			inspect(fp.Pattern, f)
		}
	case *parser.OrPattern:
		for _, p := range n.Alternatives {
			inspect(p, f)
		}
	case *parser.VariantPattern:
		for _, p := range n.Args {
			inspect(p, f)
		}
	}
}

// rootName returns the binding a place expression stores into
func rootName(e parser.Expr) string {
	switch e := e.(type) {
	case *parser.Ident:
		return e.Name
	case *parser.FieldExpr:
		return rootName(e.Expr)
	case *parser.IndexExpr:
		return rootName(e.Expr)
	case *parser.SliceExpr:
		return rootName(e.Expr)
	case *parser.UnaryExpr:
		if e.Operator == parser.TOKEN_AMP {
			return rootName(e.Operand)
		}
	}
	return ""
}

// mutatingMethods are the built-in methods that modify their receiver
var mutatingMethods = func() map[string]bool {
	set := make(map[string]bool)
	for _, table := range methodTable {
		for name, m := range table {
			if m.mutates {
				set[name] = true
			}
		}
	}
	return set
}()

// mutatedNames collects every binding that is assigned, compound-assigned,
// stored through, borrowed mutably or the receiver of a mutating method
// anywhere in stmts, closures included
func (l *Lowerer) mutatedNames(stmts []parser.Stmt) map[string]bool {
	names := make(map[string]bool)
	mark := func(e parser.Expr) {
		if n := rootName(e); n != "" {
			names[n] = true
		}
	}
	for _, s := range stmts {
		inspect(s, func(n parser.Node) bool {
			switch n := n.(type) {
			case *parser.AssignStmt:
				mark(n.Target)
			case *parser.MethodCallExpr:
				if mutatingMethods[n.Method] || l.mutators[n.Method] {
					mark(n.Receiver)
				}
			case *parser.UnaryExpr:
				if n.Mutable {
					mark(n.Operand)
				}
			case *parser.CallExpr:
				if sig := l.calleeSig(n.Callee); sig != nil {
					for i, p := range sig.params {
						if p.MutRef && i < len(n.Args) {
							mark(n.Args[i])
						}
					}
				}
			case *parser.FunDecl:
				return false
			}
			return true
		})
	}
	return names
}

// closureAssigns reports whether a closure body assigns or mutates a
// binding it does not declare itself, making the closure FnMut
func (l *Lowerer) closureAssigns(c *parser.ClosureExpr) bool {
	local := make(map[string]bool)
	for _, p := range c.Params {
		local[p.Name] = true
	}
	inspect(c.Body, func(n parser.Node) bool {
		switch n := n.(type) {
		case *parser.LetStmt:
			for _, name := range parser.PatternBindings(n.Pattern) {
				local[name] = true
			}
		case *parser.ForStmt:
			for _, name := range parser.PatternBindings(n.Pattern) {
				local[name] = true
			}
		}
		return true
	})
	for name := range l.mutatedNames([]parser.Stmt{&parser.ExprStmt{Expr: c.Body}}) {
		if !local[name] {
			return true
		}
	}
	return false
}

// refersTo finds an identifier in n naming one of the given bindings,
// ignoring names the subtree declares first
func refersTo(n parser.Node, names map[string]bool) (*parser.Ident, bool) {
	var found *parser.Ident
	declared := make(map[string]bool)
	inspect(n, func(n parser.Node) bool {
		if found != nil {
			return false
		}
		switch n := n.(type) {
		case *parser.IdentPattern:
			declared[n.Name] = true
		case *parser.RestPattern:
			declared[n.Name] = true
		case *parser.ClosureExpr:
			for _, p := range n.Params {
				declared[p.Name] = true
			}
		case *parser.Ident:
			if names[n.Name] && !declared[n.Name] {
				found = n
			}
		}
		return true
	})
	return found, found != nil
}
