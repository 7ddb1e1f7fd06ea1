package findings

import (
	"context"
	"time"

	"mercator-hq/ganymede/pkg/engine"
)

// Run is the persistent record of one compliance evaluation: one rule set
// evaluated against one template. It is the audit trail queried by
// `ganymede history` and pruned by the retention policy.
type Run struct {
	// ID is a UUID v4 assigned when the run is recorded.
	ID string `json:"id"`

	// EvaluatedAt is when the evaluation started.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// RulesPath is the rule file or directory that was evaluated.
	RulesPath string `json:"rules_path"`

	// TemplatePath is the template file that was evaluated.
	TemplatePath string `json:"template_path"`

	// Passed, Failed, Skipped are the per-verdict rule counts.
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`

	// Violations holds the run's violations in report order.
	Violations []engine.Violation `json:"violations"`

	// Duration is the total evaluation time.
	Duration time.Duration `json:"duration"`
}

// Compliant returns true if no rule failed.
func (r *Run) Compliant() bool {
	return r.Failed == 0
}

// Query filters runs when reading from storage.
type Query struct {
	// Since excludes runs evaluated before this time (zero means no bound).
	Since time.Time

	// Until excludes runs evaluated after this time (zero means no bound).
	Until time.Time

	// TemplatePath, when non-empty, matches only runs for this template.
	TemplatePath string

	// OnlyFailed, when true, returns only non-compliant runs.
	OnlyFailed bool

	// Limit caps the number of returned runs (0 means no cap).
	// Runs are returned newest first.
	Limit int
}

// Storage persists evaluation runs.
type Storage interface {
	// Store persists a run record.
	Store(ctx context.Context, run *Run) error

	// Query retrieves runs matching the filters, newest first.
	// Returns an empty slice if nothing matches.
	Query(ctx context.Context, query *Query) ([]*Run, error)

	// DeleteBefore removes runs evaluated before the cutoff and returns
	// the number removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the total number of stored runs.
	Count(ctx context.Context) (int, error)

	// Close releases storage resources.
	Close() error
}
