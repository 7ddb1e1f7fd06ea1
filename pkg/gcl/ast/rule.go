package ast

// LetStatement binds a name to the selection produced by a path expression.
// Top-level bindings are file scoped: visible to every rule in the file.
// Bindings nested inside a rule body are scoped to that rule invocation.
type LetStatement struct {
	Name     string
	Path     *PathExpression
	Location Location
}

// Rule represents a single compliance rule.
// A rule has an optional guard (when clauses) and a body of assertion
// clauses combined by implicit AND. If any guard clause does not hold, the
// rule is skipped without contributing a violation.
type Rule struct {
	Name     string
	Guard    []*Clause       // Empty means the rule always evaluates
	Lets     []*LetStatement // Rule-scoped bindings, in body order
	Body     []*Clause
	Location Location
}

// HasGuard returns true if the rule has a when guard.
func (r *Rule) HasGuard() bool {
	return len(r.Guard) > 0
}

// Variables returns the names of all variables referenced by the rule's
// guard, body and nested let paths, in first-reference order.
func (r *Rule) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(p *PathExpression) {
		if p == nil || p.Variable == "" || seen[p.Variable] {
			return
		}
		seen[p.Variable] = true
		names = append(names, p.Variable)
	}
	for _, c := range r.Guard {
		add(c.Path)
	}
	for _, l := range r.Lets {
		add(l.Path)
	}
	for _, c := range r.Body {
		add(c.Path)
	}
	return names
}
