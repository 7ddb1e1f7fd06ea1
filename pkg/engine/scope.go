package engine

// Scope is a named-to-selection mapping built from let statements.
// The file-level scope is populated once, in file order, before any rule is
// evaluated; rule bodies get a child scope for their nested lets.
//
// A binding, once established, is never mutated - only shadowed in a child
// scope. Scopes are passed explicitly into every selection call, never held
// as ambient state, so concurrent evaluations of many documents against the
// same rule set are safe without locks.
type Scope struct {
	parent   *Scope
	bindings map[string]Selection
}

// NewScope creates an empty top-level scope.
func NewScope() *Scope {
	return &Scope{bindings: make(map[string]Selection)}
}

// Child creates a nested scope. Lookups fall through to the parent;
// definitions shadow without touching it.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, bindings: make(map[string]Selection)}
}

// Define binds a name to a selection. Re-defining a name already bound in
// this scope (not a parent) is an error.
func (s *Scope) Define(name string, sel Selection) error {
	if _, exists := s.bindings[name]; exists {
		return &DuplicateBindingError{Name: name}
	}
	s.bindings[name] = sel
	return nil
}

// Resolve looks up a name in this scope and its ancestors.
// An unbound name is an error, never a default.
func (s *Scope) Resolve(name string) (Selection, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if sel, ok := cur.bindings[name]; ok {
			return sel, nil
		}
	}
	return nil, &UndefinedVariableError{Name: name}
}
