package engine

import (
	"mercator-hq/ganymede/pkg/document"
	"mercator-hq/ganymede/pkg/gcl/ast"
)

// EvaluatePredicate applies a predicate to a selection.
//
//   - exists / !exists and empty / !empty check selection cardinality only.
//   - ==, !=, in, not in quantify universally over the selected values:
//     the predicate holds iff it holds for every element. An empty
//     selection satisfies them vacuously; absence is asserted with exists.
//
// Type-mismatched comparisons are unequal, never an error, so comparing a
// sequence to a string literal simply makes the predicate false.
func EvaluatePredicate(pred *ast.Predicate, sel Selection) bool {
	switch pred.Operator {
	case ast.OperatorExists:
		return !sel.IsEmpty()

	case ast.OperatorNotExists:
		return sel.IsEmpty()

	case ast.OperatorEmpty:
		return sel.IsEmpty()

	case ast.OperatorNotEmpty:
		return !sel.IsEmpty()

	case ast.OperatorEqual, ast.OperatorNotEqual, ast.OperatorIn, ast.OperatorNotIn:
		for _, m := range sel {
			if !holdsForValue(pred, m.Value) {
				return false
			}
		}
		return true
	}

	return false
}

// FirstFailure returns the first selection element for which the predicate
// does not hold. It reports false when the predicate holds everywhere or is
// a cardinality check (which has no per-element counterexample).
func FirstFailure(pred *ast.Predicate, sel Selection) (Match, bool) {
	if pred.Operator.IsUnary() {
		return Match{}, false
	}
	for _, m := range sel {
		if !holdsForValue(pred, m.Value) {
			return m, true
		}
	}
	return Match{}, false
}

// holdsForValue applies a binary predicate to a single matched value.
func holdsForValue(pred *ast.Predicate, node *document.Node) bool {
	switch pred.Operator {
	case ast.OperatorEqual:
		return scalarEquals(node, pred.Value)

	case ast.OperatorNotEqual:
		return !scalarEquals(node, pred.Value)

	case ast.OperatorIn:
		return setContains(pred.Value, node)

	case ast.OperatorNotIn:
		return !setContains(pred.Value, node)
	}

	return false
}

// scalarEquals compares a document node against a literal.
// Non-scalar nodes never equal a literal; string comparison is
// case-sensitive; numbers compare as float64.
func scalarEquals(node *document.Node, lit *ast.ValueNode) bool {
	if !node.IsScalar() || lit == nil || lit.IsSet() {
		return false
	}

	value := node.Scalar()
	switch lit.Type {
	case ast.ValueTypeNull:
		return value == nil
	case ast.ValueTypeString:
		s, ok := value.(string)
		return ok && s == lit.Value.(string)
	case ast.ValueTypeNumber:
		f, ok := value.(float64)
		return ok && f == lit.Value.(float64)
	case ast.ValueTypeBoolean:
		b, ok := value.(bool)
		return ok && b == lit.Value.(bool)
	}

	return false
}

// setContains reports whether the node's scalar value is a member of the
// set literal. A non-set literal behaves as a single-member set.
func setContains(lit *ast.ValueNode, node *document.Node) bool {
	if lit == nil {
		return false
	}
	if !lit.IsSet() {
		return scalarEquals(node, lit)
	}
	for _, item := range lit.Items {
		if scalarEquals(node, item) {
			return true
		}
	}
	return false
}
