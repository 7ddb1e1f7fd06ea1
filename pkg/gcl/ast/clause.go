package ast

// Operator represents a predicate operator in a GCL clause.
type Operator string

const (
	OperatorExists    Operator = "exists"
	OperatorNotExists Operator = "!exists"
	OperatorEmpty     Operator = "empty"
	OperatorNotEmpty  Operator = "!empty"
	OperatorEqual     Operator = "=="
	OperatorNotEqual  Operator = "!="
	OperatorIn        Operator = "in"
	OperatorNotIn     Operator = "not in"
)

// IsUnary returns true if the operator takes no comparison operand.
func (o Operator) IsUnary() bool {
	switch o {
	case OperatorExists, OperatorNotExists, OperatorEmpty, OperatorNotEmpty:
		return true
	}
	return false
}

// IsMembership returns true if the operator compares against a set literal.
func (o Operator) IsMembership() bool {
	return o == OperatorIn || o == OperatorNotIn
}

// Predicate is a single check applied to a selection: an operator plus,
// for binary operators, a literal operand.
type Predicate struct {
	Operator Operator
	Value    *ValueNode // nil for unary operators
	Location Location
}

// Clause is one assertion line in a rule body or guard: a path expression,
// a predicate, and an optional message block carried into violations when
// the clause fails.
type Clause struct {
	Path      *PathExpression
	Predicate *Predicate
	Message   string // Text of the attached <<...>> block, empty if none
	Location  Location
}

// HasMessage returns true if a message block is attached to this clause.
func (c *Clause) HasMessage() bool {
	return c.Message != ""
}
