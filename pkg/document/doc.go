// Package document models a parsed infrastructure template as an ordered,
// immutable tree.
//
// A Node is a scalar (string/float64/bool/nil), a sequence, or a mapping
// with insertion order preserved. Templates load from YAML or JSON via
// FromYAML/FromJSON; tests construct trees directly with Scalar, Sequence
// and Mapping.
//
// Path records where a node sits inside its document. The evaluation engine
// carries paths through wildcard expansion so violations can point at the
// exact resource that failed.
package document
