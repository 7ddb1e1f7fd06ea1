package engine

import "fmt"

// UndefinedVariableError is returned when a path expression references a
// variable that no let statement has bound. It is distinct from a FAIL
// verdict: an unresolved reference is a load problem, not a rule outcome.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %%%s", e.Name)
}

// DuplicateBindingError is returned when a let statement re-defines a name
// already bound in the same scope. Top-level bindings never silently
// shadow; nested rule scopes may shadow outer names but not repeat their own.
type DuplicateBindingError struct {
	Name string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("duplicate binding %%%s", e.Name)
}

// RuleError wraps an error that made a single rule unevaluable,
// carrying the rule name for reporting.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
