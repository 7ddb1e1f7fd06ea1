package document

import "strings"

// Path is the location of a node inside a document: the ordered list of
// mapping keys and sequence indexes walked from the root. Sequence indexes
// are rendered in decimal.
//
// Paths are value types: Child returns a copy, so branches of a wildcard
// expansion never share backing arrays.
type Path []string

// Child returns a new path extended by one segment.
func (p Path) Child(segment string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, segment)
}

// String renders the path as /-separated segments, e.g.
// "Resources/EncryptedBucket/Properties/BucketEncryption".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// IsRoot returns true for the empty path addressing the document root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}
