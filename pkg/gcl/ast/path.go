package ast

import "strings"

// SegmentType represents the type of a path expression segment.
type SegmentType string

const (
	// SegmentTypeKey narrows to the mapping child with an exact key.
	SegmentTypeKey SegmentType = "key"

	// SegmentTypeWildcard expands to every child at the current level
	// (all keys of a mapping, or all elements of a sequence).
	SegmentTypeWildcard SegmentType = "wildcard"

	// SegmentTypeFilter expands like a wildcard but keeps only children
	// whose value satisfies the embedded predicate.
	SegmentTypeFilter SegmentType = "filter"
)

// Segment is a single step in a path expression.
type Segment struct {
	Type     SegmentType
	Key      string  // Key name (for Key segments)
	Filter   *Filter // Embedded predicate (for Filter segments)
	Location Location
}

// Filter is the embedded predicate attached to a filtered wildcard segment,
// e.g. the `Type == 'AWS::S3::Bucket'` in `Resources.*[ Type == 'AWS::S3::Bucket' ]`.
// The filter path is resolved relative to each candidate child.
type Filter struct {
	Path      *PathExpression
	Predicate *Predicate
	Location  Location
}

// PathExpression addresses a (possibly empty) set of values inside a
// hierarchical document. It optionally starts from a bound variable
// (`%name.Properties...`); otherwise resolution starts at the document root.
//
// A PathExpression is immutable once parsed and side-effect free: evaluating
// it twice against the same document yields the same selection.
type PathExpression struct {
	Variable string // Variable name without the leading %, empty for absolute paths
	Segments []*Segment
	Location Location
}

// IsVariable returns true if resolution starts from a bound variable.
func (p *PathExpression) IsVariable() bool {
	return p.Variable != ""
}

// String renders the path expression in GCL source form.
func (p *PathExpression) String() string {
	var sb strings.Builder
	if p.Variable != "" {
		sb.WriteString("%")
		sb.WriteString(p.Variable)
	}
	for i, seg := range p.Segments {
		if i > 0 || p.Variable != "" {
			sb.WriteString(".")
		}
		switch seg.Type {
		case SegmentTypeKey:
			sb.WriteString(seg.Key)
		case SegmentTypeWildcard:
			sb.WriteString("*")
		case SegmentTypeFilter:
			sb.WriteString("*[ ")
			sb.WriteString(seg.Filter.Path.String())
			sb.WriteString(" ")
			sb.WriteString(string(seg.Filter.Predicate.Operator))
			if seg.Filter.Predicate.Value != nil {
				sb.WriteString(" ")
				sb.WriteString(seg.Filter.Predicate.Value.String())
			}
			sb.WriteString(" ]")
		}
	}
	return sb.String()
}
