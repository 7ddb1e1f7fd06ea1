package source

import (
	"context"

	"mercator-hq/ganymede/pkg/gcl/ast"
	"mercator-hq/ganymede/pkg/gcl/parser"
)

// MemorySource is an in-memory rule source for testing and embedding.
type MemorySource struct {
	ruleSets []*ast.RuleSet
}

// NewMemorySource creates a new in-memory rule source.
func NewMemorySource(ruleSets ...*ast.RuleSet) *MemorySource {
	return &MemorySource{ruleSets: ruleSets}
}

// FromText parses rule text and wraps it in a memory source.
// Semantic analysis runs the same way FileSource runs it.
func FromText(text, name string) (*MemorySource, error) {
	parsed, err := parser.NewParser().ParseBytes([]byte(text), name)
	if err != nil {
		return nil, err
	}
	valid, errs := parser.Analyze(parsed)
	if valid == nil {
		return nil, errs.ToError()
	}
	return NewMemorySource(valid), nil
}

// LoadRuleSets returns the rule sets stored in memory.
func (s *MemorySource) LoadRuleSets(ctx context.Context) ([]*ast.RuleSet, error) {
	// Return a copy to prevent external modification
	ruleSets := make([]*ast.RuleSet, len(s.ruleSets))
	copy(ruleSets, s.ruleSets)
	return ruleSets, nil
}

// SetRuleSets updates the rule sets in memory (for testing).
func (s *MemorySource) SetRuleSets(ruleSets []*ast.RuleSet) {
	s.ruleSets = ruleSets
}
