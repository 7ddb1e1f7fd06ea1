package document

// Kind identifies the shape of a document node.
type Kind int

const (
	// KindScalar is a leaf value: string, float64, bool, or nil.
	KindScalar Kind = iota
	// KindSequence is an ordered list of nodes.
	KindSequence
	// KindMapping is a string-keyed map with insertion order preserved.
	// Order matters for diagnostics and deterministic output, not semantics.
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Node is a single node in a parsed infrastructure template.
// Nodes are immutable once constructed; one document may be evaluated by
// many goroutines concurrently without locking.
type Node struct {
	kind     Kind
	scalar   interface{} // string, float64, bool, or nil (KindScalar)
	items    []*Node     // KindSequence
	keys     []string    // KindMapping, insertion order
	children map[string]*Node

	line   int // source position, 0 when synthesized in tests
	column int
}

// Scalar constructs a scalar leaf node. The value should be a string,
// float64, bool, or nil.
func Scalar(value interface{}) *Node {
	return &Node{kind: KindScalar, scalar: value}
}

// Sequence constructs a sequence node from the given items.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// MapPair is one key/value entry used to construct a mapping node.
type MapPair struct {
	Key   string
	Value *Node
}

// Mapping constructs a mapping node preserving the given entry order.
// Duplicate keys keep the last value but the first position.
func Mapping(pairs ...MapPair) *Node {
	n := &Node{
		kind:     KindMapping,
		children: make(map[string]*Node, len(pairs)),
	}
	for _, p := range pairs {
		if _, exists := n.children[p.Key]; !exists {
			n.keys = append(n.keys, p.Key)
		}
		n.children[p.Key] = p.Value
	}
	return n
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// IsScalar returns true for leaf nodes.
func (n *Node) IsScalar() bool {
	return n.kind == KindScalar
}

// Scalar returns the leaf value. It is nil for non-scalar nodes and for
// explicit nulls; use Kind to distinguish.
func (n *Node) Scalar() interface{} {
	return n.scalar
}

// Len returns the number of children: sequence items or mapping entries.
// Scalars have length zero.
func (n *Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.items)
	case KindMapping:
		return len(n.keys)
	}
	return 0
}

// Items returns the sequence items in order, or nil for non-sequences.
func (n *Node) Items() []*Node {
	return n.items
}

// Keys returns the mapping keys in insertion order, or nil for non-mappings.
func (n *Node) Keys() []string {
	return n.keys
}

// Child returns the mapping child for key. The second return value is false
// if the node is not a mapping or lacks the key.
func (n *Node) Child(key string) (*Node, bool) {
	if n.kind != KindMapping {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// Line returns the 1-based source line the node was parsed from, or 0.
func (n *Node) Line() int {
	return n.line
}

// Column returns the 1-based source column the node was parsed from, or 0.
func (n *Node) Column() int {
	return n.column
}
