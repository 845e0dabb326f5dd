package eval

import (
	"sort"

	"ruchy/types"
)

// slot is one binding. Items (functions, types, modules, imports) are not
// mutable; let bindings are.
type slot struct {
	val     types.Value
	mutable bool
}

// Environment manages variable bindings with lexical scoping.
// Each block, call and loop iteration gets a nested environment whose
// parent is the enclosing one.
type Environment struct {
	vars   map[string]*slot
	parent *Environment
}

// NewEnvironment creates a new environment with no parent (global scope)
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]*slot)}
}

// NewNestedEnvironment creates a new environment with a parent scope
func NewNestedEnvironment(parent *Environment) *Environment {
	return &Environment{
		vars:   make(map[string]*slot),
		parent: parent,
	}
}

// Parent returns the enclosing environment, or nil for the global scope
func (e *Environment) Parent() *Environment {
	return e.parent
}

// lookup finds the slot for name in this scope or an enclosing one
func (e *Environment) lookup(name string) *slot {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.vars[name]; ok {
			return s
		}
	}
	return nil
}

// Get looks up a variable by name
// Searches current scope, then parent scopes
func (e *Environment) Get(name string) (types.Value, bool) {
	if s := e.lookup(name); s != nil {
		return s.val, true
	}
	return nil, false
}

// Define creates a new binding in the current scope, shadowing any
// binding of the same name
func (e *Environment) Define(name string, value types.Value) {
	e.vars[name] = &slot{val: value, mutable: true}
}

// DefineItem binds a function, type, module or import; items cannot be
// assigned to
func (e *Environment) DefineItem(name string, value types.Value) {
	e.vars[name] = &slot{val: value}
}

// Assign updates the nearest binding of name
func (e *Environment) Assign(name string, value types.Value) *types.RuntimeError {
	s := e.lookup(name)
	if s == nil {
		return types.NewError(types.E_VARNF, "cannot find value `%s` in this scope", name)
	}
	if !s.mutable {
		return types.NewError(types.E_IMMUTABLE, "cannot assign to `%s`, which is not a variable", name)
	}
	s.val = value
	return nil
}

// IsDefinedHere reports whether name is bound in this scope itself
func (e *Environment) IsDefinedHere(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Names returns the names bound in this scope, sorted
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for n := range e.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
