package engine

import "time"

// Verdict is the outcome of evaluating one rule against one document.
// A verdict is always exactly one of PASS, FAIL, or SKIPPED - never partial.
type Verdict string

const (
	// VerdictPass means every body clause held.
	VerdictPass Verdict = "PASS"

	// VerdictFail means at least one body clause failed.
	VerdictFail Verdict = "FAIL"

	// VerdictSkipped means the rule's guard did not hold, so the body was
	// never evaluated. Skipped rules contribute no violations.
	VerdictSkipped Verdict = "SKIPPED"
)

// Violation is a structured record of a failed clause: the rule it belongs
// to, the document path that failed, and the rule-authored message text.
type Violation struct {
	// RuleName is the name of the rule whose clause failed.
	RuleName string `json:"rule_name"`

	// Path locates the failing value (or the missing value's would-be
	// location) inside the document, e.g.
	// "Resources/LoggingBucket/Properties/BucketEncryption".
	Path string `json:"path"`

	// Message is the clause's authored <<...>> text. If the clause carried
	// no message, a short generated description of the failed predicate.
	Message string `json:"message"`
}

// RuleResult is the per-rule portion of an evaluation report.
type RuleResult struct {
	// RuleName is the rule's declared name.
	RuleName string `json:"rule_name"`

	// Verdict is PASS, FAIL, or SKIPPED.
	Verdict Verdict `json:"verdict"`

	// Violations holds this rule's violations in clause order.
	Violations []Violation `json:"violations,omitempty"`

	// Err is set when the rule could not be evaluated (for example a
	// variable reference the static analysis could not rule out). A rule
	// with Err set is reported as SKIPPED and contributes no violations;
	// it never prevents evaluation of the remaining rules.
	Err error `json:"-"`

	// Duration is the time spent evaluating this rule.
	Duration time.Duration `json:"duration_ns"`
}

// Report is the result of evaluating one rule set against one document.
// Ordering is deterministic: results follow rule declaration order and
// violations follow rule order then clause order, so repeated evaluations
// of identical inputs produce diffable output.
type Report struct {
	// RuleSet is the source file of the evaluated rule set, if known.
	RuleSet string `json:"rule_set,omitempty"`

	// Results holds one entry per rule, in declaration order.
	Results []*RuleResult `json:"results"`

	// Violations is the flat ordered list of all violations.
	Violations []Violation `json:"violations"`

	// Duration is the total evaluation time.
	Duration time.Duration `json:"duration_ns"`

	// EvaluatedAt is when the evaluation started.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Failed returns true if any rule failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Verdict == VerdictFail {
			return true
		}
	}
	return false
}

// Counts returns the number of passed, failed and skipped rules.
func (r *Report) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Verdict {
		case VerdictPass:
			passed++
		case VerdictFail:
			failed++
		case VerdictSkipped:
			skipped++
		}
	}
	return
}

// Result returns the result for the named rule, or nil.
func (r *Report) Result(name string) *RuleResult {
	for _, res := range r.Results {
		if res.RuleName == name {
			return res
		}
	}
	return nil
}
