package engine

// Reporter is a pure accumulator for violations. Records arrive in rule
// declaration order, then clause order within a rule; Drain preserves that
// order, so output is stable and diffable for identical inputs.
type Reporter struct {
	violations []Violation
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Record appends a violation.
func (r *Reporter) Record(ruleName, path, message string) {
	r.violations = append(r.violations, Violation{
		RuleName: ruleName,
		Path:     path,
		Message:  message,
	})
}

// Count returns the number of recorded violations.
func (r *Reporter) Count() int {
	return len(r.violations)
}

// Drain returns the accumulated violations in record order and resets the
// reporter.
func (r *Reporter) Drain() []Violation {
	out := r.violations
	r.violations = nil
	if out == nil {
		out = []Violation{}
	}
	return out
}
