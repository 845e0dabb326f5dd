package transpile

// binding is one name visible to the code being lowered
type binding struct {
	typ     *Type
	mutable bool
	item    bool // function, type or module rather than a local
}

// scope is a lexical scope; lookups walk towards the root
type scope struct {
	parent *scope
	names  map[string]*binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*binding)}
}

func (s *scope) define(name string, b *binding) {
	s.names[name] = b
}

func (s *scope) lookup(name string) (*binding, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.names[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// push opens a child scope for the duration of fn
func (l *Lowerer) push(fn func()) {
	l.scope = newScope(l.scope)
	defer func() { l.scope = l.scope.parent }()
	fn()
}

// typeOf returns the static type of a name, or unknown
func (l *Lowerer) typeOf(name string) *Type {
	if b, ok := l.scope.lookup(name); ok && b.typ != nil {
		return b.typ
	}
	return tUnknown
}
