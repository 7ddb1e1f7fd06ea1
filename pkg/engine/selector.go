package engine

import (
	"fmt"
	"strconv"

	"mercator-hq/ganymede/pkg/document"
	"mercator-hq/ganymede/pkg/gcl/ast"
)

// Match is a single value a path expression resolved to, with its full
// originating path kept for violation locations.
type Match struct {
	Value *document.Node
	Path  document.Path
}

// Selection is the ordered multiset of matches a path expression resolves
// to. An empty selection is a valid, distinguishable result - absence of a
// path is data, not failure.
type Selection []Match

// IsEmpty returns true if the selection matched nothing.
func (s Selection) IsEmpty() bool {
	return len(s) == 0
}

// Values returns the matched nodes in selection order.
func (s Selection) Values() []*document.Node {
	values := make([]*document.Node, len(s))
	for i, m := range s {
		values[i] = m.Value
	}
	return values
}

// Paths returns the originating paths in selection order.
func (s Selection) Paths() []string {
	paths := make([]string, len(s))
	for i, m := range s {
		paths[i] = m.Path.String()
	}
	return paths
}

// Select resolves a path expression against a document, producing the
// selection of matched values and their locations.
//
// Resolution runs left to right over an explicit branch worklist. A literal
// key narrows a branch to the mapping child with that key; a branch whose
// current value is not a mapping, or lacks the key, dies silently. A
// wildcard expands a branch to all of its children (mapping values in key
// order, sequence items in index order); each child is carried forward as
// an independent branch, so multiple wildcards multiply branches. A filter
// segment expands like a wildcard and then discards children that fail the
// embedded predicate.
//
// Selection is idempotent and side-effect free: the same document and
// expression always yield the same selection, in the same order.
func Select(root *document.Node, expr *ast.PathExpression, scope *Scope) (Selection, error) {
	var branches Selection
	if expr.IsVariable() {
		if scope == nil {
			return nil, &UndefinedVariableError{Name: expr.Variable}
		}
		base, err := scope.Resolve(expr.Variable)
		if err != nil {
			return nil, err
		}
		branches = base
	} else {
		branches = Selection{{Value: root, Path: document.Path{}}}
	}

	return selectSegments(branches, expr.Segments, scope)
}

// selectFrom resolves segments starting from a single existing match. The
// engine uses it to distribute a clause over each element of a variable's
// base selection (universal quantification).
func selectFrom(m Match, segments []*ast.Segment, scope *Scope) (Selection, error) {
	return selectSegments(Selection{m}, segments, scope)
}

func selectSegments(branches Selection, segments []*ast.Segment, scope *Scope) (Selection, error) {
	for _, seg := range segments {
		if len(branches) == 0 {
			// Applying further segments to an already-empty selection
			// keeps it empty; no error.
			return Selection{}, nil
		}

		next := make(Selection, 0, len(branches))
		for _, branch := range branches {
			switch seg.Type {
			case ast.SegmentTypeKey:
				if child, ok := branch.Value.Child(seg.Key); ok {
					next = append(next, Match{Value: child, Path: branch.Path.Child(seg.Key)})
				}

			case ast.SegmentTypeWildcard:
				next = append(next, expand(branch)...)

			case ast.SegmentTypeFilter:
				for _, child := range expand(branch) {
					keep, err := filterMatches(child, seg.Filter, scope)
					if err != nil {
						return nil, err
					}
					if keep {
						next = append(next, child)
					}
				}

			default:
				return nil, fmt.Errorf("unknown path segment type %q", seg.Type)
			}
		}
		branches = next
	}

	if branches == nil {
		branches = Selection{}
	}
	return branches, nil
}

// expand returns all children of a branch as independent branches.
// Scalars have no children and terminate the branch silently.
func expand(branch Match) Selection {
	switch branch.Value.Kind() {
	case document.KindMapping:
		keys := branch.Value.Keys()
		out := make(Selection, 0, len(keys))
		for _, key := range keys {
			child, _ := branch.Value.Child(key)
			out = append(out, Match{Value: child, Path: branch.Path.Child(key)})
		}
		return out

	case document.KindSequence:
		items := branch.Value.Items()
		out := make(Selection, 0, len(items))
		for i, item := range items {
			out = append(out, Match{Value: item, Path: branch.Path.Child(strconv.Itoa(i))})
		}
		return out
	}

	return nil
}

// filterMatches evaluates a filter's embedded predicate against one
// candidate child. The filter path is resolved relative to the child.
func filterMatches(child Match, filter *ast.Filter, scope *Scope) (bool, error) {
	if filter.Path.IsVariable() {
		return false, fmt.Errorf("variable reference %%%s not allowed inside a filter", filter.Path.Variable)
	}

	sub, err := selectSegments(Selection{child}, filter.Path.Segments, scope)
	if err != nil {
		return false, err
	}

	return EvaluatePredicate(filter.Predicate, sub), nil
}
