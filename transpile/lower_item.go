package transpile

import (
	"strings"

	"ruchy/parser"
)

// ============================================================================
// ITEM TABLES
// ============================================================================

// collectItems registers types, functions and methods before any body is
// lowered, so that bodies may refer to items declared later
func (l *Lowerer) collectItems(items []parser.Stmt, prefix string) {
	// types first: signatures mention them
	for _, s := range items {
		switch d := unexported(s).(type) {
		case *parser.StructDecl:
			l.structs[d.Name] = d
		case *parser.EnumDecl:
			l.enums[d.Name] = d
		case *parser.ModDecl:
			l.modules[prefix+d.Name] = true
		}
	}
	for _, s := range items {
		switch d := unexported(s).(type) {
		case *parser.EnumDecl:
			for _, v := range d.Variants {
				info := &variantInfo{enum: d.Name}
				for _, f := range v.Fields {
					info.fields = append(info.fields, l.mapType(f))
				}
				l.variants[d.Name+"::"+v.Name] = info
			}
		case *parser.FunDecl:
			l.funs[prefix+d.Name] = l.signature(d, "")
		case *parser.ImplDecl:
			if _, ok := l.structs[d.TypeName]; !ok {
				if _, ok := l.enums[d.TypeName]; !ok {
					l.fail(d, "cannot find type `%s` in this scope", d.TypeName)
				}
			}
			for _, item := range d.Items {
				f, ok := unexported(item).(*parser.FunDecl)
				if !ok {
					l.fail(item, "only functions are allowed in impl blocks")
				}
				l.funs[d.TypeName+"::"+f.Name] = l.signature(f, d.TypeName)
				if f.Receiver == parser.ReceiverMutRef {
					l.mutators[f.Name] = true
				}
			}
		case *parser.ModDecl:
			for _, inner := range d.Body {
				if !parser.IsItem(inner) {
					l.fail(inner, "only items are allowed in module `%s`", d.Name)
				}
			}
			l.collectItems(d.Body, prefix+d.Name+"::")
		}
	}
	// imports last: they alias what the loops above registered
	for _, s := range items {
		if imp, ok := unexported(s).(*parser.ImportStmt); ok {
			l.collectImport(imp, prefix)
		}
	}
}

// signature builds the annotated part of a function signature; missing
// annotations stay unknown until inference fills them in
func (l *Lowerer) signature(f *parser.FunDecl, selfType string) *funSig {
	saved := l.implType
	l.implType = selfType
	defer func() { l.implType = saved }()

	sig := &funSig{name: f.Name, receiver: f.Receiver, decl: f, ret: tUnknown}
	for _, p := range f.Params {
		sig.params = append(sig.params, l.mapType(p.Type))
	}
	if f.ReturnType != nil {
		sig.ret = l.mapType(f.ReturnType)
	}
	return sig
}

func (l *Lowerer) collectImport(imp *parser.ImportStmt, prefix string) {
	path := strings.Join(trimPathRoots(imp.Path), "::")
	alias := func(name, as string) {
		if as == "" {
			as = name
		}
		full := joinPath(path, name)
		if sig, ok := l.lookupFun(full, prefix); ok {
			l.funs[prefix+as] = sig
		}
		if v, ok := l.variants[full]; ok {
			l.variants[as] = v
		}
	}
	switch {
	case imp.Wildcard:
		for key, v := range l.variants {
			if strings.HasPrefix(key, path+"::") {
				l.variants[strings.TrimPrefix(key, path+"::")] = v
			}
		}
		for key, sig := range l.funs {
			rest := strings.TrimPrefix(key, prefix+path+"::")
			if rest != key && !strings.Contains(rest, "::") {
				l.funs[prefix+rest] = sig
			}
		}
	case len(imp.Items) > 0:
		for _, item := range imp.Items {
			alias(item.Name, item.Alias)
		}
	case len(imp.Path) > 1:
		last := imp.Path[len(imp.Path)-1]
		path = strings.Join(trimPathRoots(imp.Path[:len(imp.Path)-1]), "::")
		alias(last, imp.Alias)
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "::" + name
}

// trimPathRoots drops the self/crate/super qualifiers the item tables do
// not record
func trimPathRoots(segs []string) []string {
	for len(segs) > 0 && (segs[0] == "self" || segs[0] == "crate" || segs[0] == "super") {
		segs = segs[1:]
	}
	return segs
}

// lookupFun finds a function by name, trying the enclosing module first
func (l *Lowerer) lookupFun(name, prefix string) (*funSig, bool) {
	if sig, ok := l.funs[prefix+name]; ok {
		return sig, true
	}
	sig, ok := l.funs[name]
	return sig, ok
}

// calleeSig resolves the signature of a direct call target
func (l *Lowerer) calleeSig(callee parser.Expr) *funSig {
	prefix := ""
	if l.fn != nil {
		prefix = l.fn.prefix
	}
	switch c := callee.(type) {
	case *parser.Ident:
		if l.scope != nil {
			if b, ok := l.scope.lookup(c.Name); ok && !b.item {
				return nil
			}
		}
		if sig, ok := l.lookupFun(c.Name, prefix); ok {
			return sig
		}
	case *parser.PathExpr:
		segs := trimPathRoots(c.Segments)
		if len(segs) > 0 && segs[0] == "Self" && l.implType != "" {
			segs = append([]string{l.implType}, segs[1:]...)
		}
		if sig, ok := l.lookupFun(strings.Join(segs, "::"), prefix); ok {
			return sig
		}
	}
	return nil
}

// declareItemNames makes item names resolvable as identifiers
func (l *Lowerer) declareItemNames(items []parser.Stmt, sc *scope, prefix string) {
	for _, s := range items {
		switch d := unexported(s).(type) {
		case *parser.FunDecl:
			sig := l.funs[prefix+d.Name]
			sc.define(d.Name, &binding{typ: sig.funcType(), item: true})
		case *parser.StructDecl:
			sc.define(d.Name, &binding{typ: named(KStruct, d.Name), item: true})
		case *parser.EnumDecl:
			sc.define(d.Name, &binding{typ: named(KEnum, d.Name), item: true})
		case *parser.ModDecl:
			sc.define(d.Name, &binding{typ: tUnknown, item: true})
		case *parser.ImportStmt:
			for _, name := range importedNames(d) {
				if sig, ok := l.funs[prefix+name]; ok {
					sc.define(name, &binding{typ: sig.funcType(), item: true})
					continue
				}
				if v, ok := l.variants[name]; ok && len(v.fields) == 0 {
					sc.define(name, &binding{typ: named(KEnum, v.enum), item: true})
					continue
				}
				sc.define(name, &binding{typ: tUnknown, item: true})
			}
		}
	}
}

// importedNames lists the names an import binds; wildcards bind the
// variants and functions already aliased by collectImport
func importedNames(imp *parser.ImportStmt) []string {
	switch {
	case imp.Wildcard:
		return nil
	case len(imp.Items) > 0:
		var names []string
		for _, it := range imp.Items {
			if it.Alias != "" {
				names = append(names, it.Alias)
			} else {
				names = append(names, it.Name)
			}
		}
		return names
	case imp.Alias != "":
		return []string{imp.Alias}
	}
	return []string{imp.Path[len(imp.Path)-1]}
}

func (sig *funSig) funcType() *Type {
	return &Type{Kind: KFunc, Elems: sig.params, Ret: sig.ret}
}

// ============================================================================
// SIGNATURE INFERENCE
// ============================================================================

// inferSignatures fills in unannotated parameter and return types by
// lowering every body without emitting it: call sites record argument
// types, bodies record their result types. A few rounds let types flow
// through chains of calls.
func (l *Lowerer) inferSignatures(items, main []parser.Stmt) {
	l.dry = true
	defer func() { l.dry = false }()
	for round := 0; round < 3; round++ {
		l.scope = newScope(nil)
		l.declareItemNames(items, l.scope, "")
		l.out = newEmitter()
		l.eachFun(items, "", func(f *parser.FunDecl, exported bool, prefix, implType string) {
			l.tryLower(func() { l.lowerFun(f, exported, prefix, implType) })
		})
		l.tryLower(func() { l.lowerMain(main) })
	}
}

// tryLower runs fn, discarding a lowering failure
func (l *Lowerer) tryLower(fn func()) {
	scope, out, state, impl := l.scope, l.out, l.fn, l.implType
	defer func() {
		l.scope, l.out, l.fn, l.implType = scope, out, state, impl
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
	}()
	l.out = newEmitter()
	fn()
}

// eachFun visits every function and method, modules included
func (l *Lowerer) eachFun(items []parser.Stmt, prefix string, visit func(f *parser.FunDecl, exported bool, prefix, implType string)) {
	for _, s := range items {
		d, exported := parser.Unexport(s)
		switch d := d.(type) {
		case *parser.FunDecl:
			visit(d, exported, prefix, "")
		case *parser.ImplDecl:
			for _, item := range d.Items {
				f, pub := parser.Unexport(item)
				visit(f.(*parser.FunDecl), pub, prefix, d.TypeName)
			}
		case *parser.ModDecl:
			l.eachFun(d.Body, prefix+d.Name+"::", visit)
		}
	}
}

// ============================================================================
// ITEM LOWERING
// ============================================================================

const derives = "#[derive(Debug, Clone, PartialEq, PartialOrd)]"

func (l *Lowerer) lowerItems(items []parser.Stmt, prefix string) {
	inMod := prefix != ""
	for _, s := range items {
		d, exported := parser.Unexport(s)
		vis := ""
		if exported {
			vis = "pub "
		}
		switch d := d.(type) {
		case *parser.FunDecl:
			l.out.blank()
			l.lowerFun(d, exported, prefix, "")
		case *parser.StructDecl:
			l.out.blank()
			l.out.line(derives)
			if len(d.Fields) == 0 {
				l.out.line("%sstruct %s {}", vis, d.Name)
				continue
			}
			l.out.line("%sstruct %s {", vis, d.Name)
			for _, f := range d.Fields {
				fieldVis := ""
				if f.Public || inMod {
					fieldVis = "pub "
				}
				l.out.line("    %s%s: %s,", fieldVis, f.Name, l.mapType(f.Type).Rust())
			}
			l.out.line("}")
		case *parser.EnumDecl:
			l.out.blank()
			l.out.line(derives)
			l.out.line("%senum %s {", vis, d.Name)
			for _, v := range d.Variants {
				if len(v.Fields) == 0 {
					l.out.line("    %s,", v.Name)
					continue
				}
				fields := make([]string, len(v.Fields))
				for i, f := range v.Fields {
					fields[i] = l.mapType(f).Rust()
				}
				l.out.line("    %s(%s),", v.Name, strings.Join(fields, ", "))
			}
			l.out.line("}")
		case *parser.ImplDecl:
			l.out.blank()
			l.out.line("impl %s {", d.TypeName)
			l.out.indent++
			for i, item := range d.Items {
				f, pub := parser.Unexport(item)
				if i > 0 {
					l.out.blank()
				}
				l.lowerFun(f.(*parser.FunDecl), pub || inMod, prefix, d.TypeName)
			}
			l.out.indent--
			l.out.line("}")
		case *parser.ModDecl:
			l.out.blank()
			l.out.line("%smod %s {", vis, d.Name)
			l.out.indent++
			l.out.line("use super::*;")
			l.out.line("use std::collections::{BTreeMap, BTreeSet};")
			saved := l.scope
			l.scope = newScope(saved)
			l.declareItemNames(d.Body, l.scope, prefix+d.Name+"::")
			l.lowerItems(d.Body, prefix+d.Name+"::")
			l.scope = saved
			l.out.indent--
			l.out.line("}")
		case *parser.ImportStmt:
			if use := l.lowerImport(d, prefix); use != "" {
				l.out.line("%suse %s;", vis, use)
			}
		}
	}
}

// lowerImport renders the path of a use declaration, or "" when Rust
// needs none
func (l *Lowerer) lowerImport(imp *parser.ImportStmt, prefix string) string {
	segs := make([]string, len(imp.Path))
	for i, s := range imp.Path {
		segs[i] = rustPathSegment(s)
	}
	if len(segs) > 0 && segs[0] == "std" && len(segs) >= 2 && segs[1] == "collections" {
		// the crate header already imports the ordered collections
		if imp.Wildcard || len(segs) == 2 {
			return ""
		}
		switch segs[len(segs)-1] {
		case "BTreeMap", "BTreeSet":
			if imp.Alias == "" {
				return ""
			}
		}
	}
	if len(segs) == 1 && !imp.Wildcard && len(imp.Items) == 0 && imp.Alias == "" {
		// a module declared alongside is already in scope
		return ""
	}
	path := strings.Join(segs, "::")
	switch {
	case imp.Wildcard:
		return path + "::*"
	case len(imp.Items) > 0:
		parts := make([]string, len(imp.Items))
		for i, it := range imp.Items {
			parts[i] = rustPathSegment(it.Name)
			if it.Alias != "" {
				parts[i] += " as " + it.Alias
			}
		}
		return path + "::{" + strings.Join(parts, ", ") + "}"
	case imp.Alias != "":
		return path + " as " + imp.Alias
	}
	return path
}

// rustPathSegment maps the unordered collection names to the ordered ones
func rustPathSegment(s string) string {
	switch s {
	case "HashMap":
		return "BTreeMap"
	case "HashSet":
		return "BTreeSet"
	}
	return s
}

// ============================================================================
// FUNCTIONS
// ============================================================================

func (l *Lowerer) lowerFun(f *parser.FunDecl, exported bool, prefix, implType string) {
	key := prefix + f.Name
	if implType != "" {
		key = implType + "::" + f.Name
	}
	sig := l.funs[key]

	if implType == "" || prefix != "" {
		if id, ok := refersTo(f.Body, l.capturable(f)); ok {
			l.fail(id, "function `%s` refers to top-level binding `%s`; functions cannot capture local bindings", f.Name, id.Name)
		}
	}

	savedImpl := l.implType
	l.implType = implType
	state := &fnState{name: f.Name, prefix: prefix}
	savedFn := l.fn
	l.fn = state
	state.mutated = l.mutatedNames(f.Body.Stmts)
	l.scope = newScope(l.scope)
	defer func() {
		l.scope = l.scope.parent
		l.fn = savedFn
		l.implType = savedImpl
	}()

	var params []string
	if implType != "" {
		self := named(KStruct, implType)
		if _, ok := l.enums[implType]; ok {
			self = named(KEnum, implType)
		}
		state.selfType = self
		switch f.Receiver {
		case parser.ReceiverValue:
			if state.mutated["self"] {
				params = append(params, "mut self")
			} else {
				params = append(params, "self")
			}
			l.scope.define("self", &binding{typ: self})
		case parser.ReceiverRef:
			params = append(params, "&self")
			l.scope.define("self", &binding{typ: refTo(self, false)})
		case parser.ReceiverMutRef:
			params = append(params, "&mut self")
			l.scope.define("self", &binding{typ: refTo(self, true)})
		}
	}
	for i, p := range f.Params {
		t := sig.params[i]
		if !known(t) && !l.dry {
			t = tInt
		}
		if state.mutated[p.Name] && (t.isCollection() || t.Ref) && !t.MutRef {
			l.fail(p, "parameter `%s` is mutated but not declared `&mut`; aliasing cannot be preserved", p.Name)
		}
		mut := ""
		if p.Mutable || (state.mutated[p.Name] && !t.MutRef) {
			mut = "mut "
		}
		params = append(params, mut+p.Name+": "+t.Rust())
		l.scope.define(p.Name, &binding{typ: t, mutable: mut != ""})
	}

	wantValue := !(f.ReturnType != nil && sig.ret.Kind == KUnit)
	var tail *Type
	body := l.capture(func() {
		l.out.indent++
		tail = l.lowerStmts(f.Body.Stmts, wantValue)
	})

	ret := sig.ret
	if f.ReturnType == nil {
		ret = l.inferReturn(f.Body, tail)
		if known(ret) || !l.dry {
			sig.ret = ret
		}
	}

	vis := ""
	if exported {
		vis = "pub "
	}
	generics := ""
	if len(f.TypeParams) > 0 {
		generics = "<" + strings.Join(f.TypeParams, ", ") + ">"
	}
	head := vis + "fn " + f.Name + generics + "(" + strings.Join(params, ", ") + ")"
	if known(ret) && ret.Kind != KUnit {
		head += " -> " + ret.Rust()
	}
	if body == "" {
		l.out.line("%s {}", head)
		return
	}
	l.out.line("%s {", head)
	l.out.b.WriteString(body)
	l.out.line("}")
}

// inferReturn picks a result type for an unannotated function: the tail
// expression's type, else the first typed return, else unit
func (l *Lowerer) inferReturn(body *parser.BlockExpr, tail *Type) *Type {
	if known(tail) && tail.Kind != KUnit {
		return tail.deref()
	}
	for _, r := range l.fn.returns {
		if known(r) {
			return r.deref()
		}
	}
	if body.Tail() == nil || (tail != nil && tail.Kind == KUnit) {
		return tUnit
	}
	if l.dry {
		return tUnknown
	}
	return tInt
}

// capturable returns the top-level bindings a function body must not
// reach, minus its own parameters
func (l *Lowerer) capturable(f *parser.FunDecl) map[string]bool {
	names := make(map[string]bool, len(l.topLets))
	for n := range l.topLets {
		names[n] = true
	}
	for _, p := range f.Params {
		delete(names, p.Name)
	}
	delete(names, "self")
	return names
}

func refTo(t *Type, mutable bool) *Type {
	c := *t
	if mutable {
		c.MutRef = true
	} else {
		c.Ref = true
	}
	return &c
}
