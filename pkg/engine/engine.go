package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/document"
	"mercator-hq/ganymede/pkg/gcl/ast"
)

// MetricsRecorder receives evaluation telemetry. Implementations must be
// safe for concurrent use; the engine calls them synchronously.
type MetricsRecorder interface {
	// RecordRuleEvaluation is called once per rule with its verdict.
	RecordRuleEvaluation(rule string, verdict Verdict, duration time.Duration)

	// RecordViolations is called for rules that failed, with the number of
	// violations they produced.
	RecordViolations(rule string, count int)
}

// Engine evaluates parsed rule sets against parsed documents.
//
// Evaluation is read-only over immutable inputs: a single Engine may be
// shared by any number of goroutines, each evaluating its own document.
// Rules within one evaluation run sequentially for deterministic output
// ordering.
type Engine struct {
	logger  *slog.Logger
	metrics MetricsRecorder
}

// New creates an engine. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger.With("component", "engine"),
	}
}

// WithMetrics attaches a metrics recorder.
func (e *Engine) WithMetrics(m MetricsRecorder) *Engine {
	e.metrics = m
	return e
}

// Evaluate runs every rule in the rule set against the document and returns
// the ordered report.
//
// Top-level let bindings are established first, in file order; every rule
// then sees every binding regardless of declaration position. A rule that
// cannot be evaluated (unresolved reference the static analysis could not
// rule out) is reported with its error and skipped - it never prevents
// evaluation of the remaining rules.
//
// Evaluate returns an error only for problems that poison the whole rule
// set: a broken top-level binding or a cancelled context.
func (e *Engine) Evaluate(ctx context.Context, ruleSet *ast.RuleSet, doc *document.Node) (*Report, error) {
	start := time.Now()

	scope := NewScope()
	for _, let := range ruleSet.Lets {
		sel, err := Select(doc, let.Path, scope)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", let.Name, err)
		}
		if err := scope.Define(let.Name, sel); err != nil {
			return nil, fmt.Errorf("binding %q: %w", let.Name, err)
		}
		e.logger.Debug("established binding",
			"name", let.Name,
			"matches", len(sel),
		)
	}

	reporter := NewReporter()
	report := &Report{
		RuleSet:     ruleSet.SourceFile,
		EvaluatedAt: start,
	}

	for _, rule := range ruleSet.Rules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation cancelled: %w", err)
		}

		result := e.evaluateRule(rule, doc, scope, reporter)
		report.Results = append(report.Results, result)

		if e.metrics != nil {
			e.metrics.RecordRuleEvaluation(rule.Name, result.Verdict, result.Duration)
			if result.Verdict == VerdictFail {
				e.metrics.RecordViolations(rule.Name, len(result.Violations))
			}
		}
	}

	report.Violations = reporter.Drain()
	report.Duration = time.Since(start)

	passed, failed, skipped := report.Counts()
	e.logger.Info("evaluation complete",
		"rule_set", ruleSet.SourceFile,
		"passed", passed,
		"failed", failed,
		"skipped", skipped,
		"violations", len(report.Violations),
		"duration", report.Duration,
	)

	return report, nil
}

// evaluateRule walks one rule through its verdict state machine:
// guard first (false guard skips the rule without a violation), then the
// body clauses under implicit AND.
func (e *Engine) evaluateRule(rule *ast.Rule, doc *document.Node, scope *Scope, reporter *Reporter) *RuleResult {
	start := time.Now()
	result := &RuleResult{
		RuleName: rule.Name,
		Verdict:  VerdictPass,
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	for _, clause := range rule.Guard {
		holds, _, err := e.evaluateClause(clause, doc, scope)
		if err != nil {
			result.Verdict = VerdictSkipped
			result.Err = &RuleError{Rule: rule.Name, Err: err}
			e.logger.Warn("rule guard failed to evaluate, skipping rule",
				"rule", rule.Name,
				"error", err,
			)
			return result
		}
		if !holds {
			result.Verdict = VerdictSkipped
			e.logger.Debug("rule guard not satisfied, skipping rule",
				"rule", rule.Name,
				"guard", clause.Path.String(),
			)
			return result
		}
	}

	// Rule-local bindings live in a child scope: they may shadow top-level
	// names for this rule invocation only.
	ruleScope := scope
	if len(rule.Lets) > 0 {
		ruleScope = scope.Child()
		for _, let := range rule.Lets {
			sel, err := Select(doc, let.Path, ruleScope)
			if err == nil {
				err = ruleScope.Define(let.Name, sel)
			}
			if err != nil {
				result.Verdict = VerdictSkipped
				result.Err = &RuleError{Rule: rule.Name, Err: err}
				e.logger.Warn("rule binding failed, skipping rule",
					"rule", rule.Name,
					"binding", let.Name,
					"error", err,
				)
				return result
			}
		}
	}

	for _, clause := range rule.Body {
		holds, failPath, err := e.evaluateClause(clause, doc, ruleScope)
		if err != nil {
			result.Verdict = VerdictSkipped
			result.Err = &RuleError{Rule: rule.Name, Err: err}
			e.logger.Warn("rule clause failed to evaluate, skipping rule",
				"rule", rule.Name,
				"clause", clause.Path.String(),
				"error", err,
			)
			return result
		}
		if !holds {
			result.Verdict = VerdictFail
			message := clause.Message
			if message == "" {
				message = defaultMessage(clause)
			}
			reporter.Record(rule.Name, failPath, message)
			result.Violations = append(result.Violations, Violation{
				RuleName: rule.Name,
				Path:     failPath,
				Message:  message,
			})
		}
	}

	return result
}

// evaluateClause evaluates one clause and, on failure, the document path to
// report.
//
// Quantification policy: when the clause path starts from a variable and
// has further segments, the predicate is distributed over each element of
// the variable's selection - the clause passes only if it holds for every
// element, and the first failing element determines the reported path. A
// direct path is resolved once and the predicate applied to the resulting
// selection (which itself quantifies universally over matched values).
func (e *Engine) evaluateClause(clause *ast.Clause, doc *document.Node, scope *Scope) (bool, string, error) {
	pred := clause.Predicate

	if clause.Path.IsVariable() && len(clause.Path.Segments) > 0 {
		base, err := scope.Resolve(clause.Path.Variable)
		if err != nil {
			return false, "", err
		}

		for _, m := range base {
			sub, err := selectFrom(m, clause.Path.Segments, scope)
			if err != nil {
				return false, "", err
			}
			if !EvaluatePredicate(pred, sub) {
				return false, failurePath(m.Path, clause, sub), nil
			}
		}
		return true, "", nil
	}

	sel, err := Select(doc, clause.Path, scope)
	if err != nil {
		return false, "", err
	}
	if !EvaluatePredicate(pred, sel) {
		return false, failurePath(document.Path{}, clause, sel), nil
	}
	return true, "", nil
}

// failurePath picks the path carried into the violation record. A binary
// predicate with a concrete counterexample reports that element's path;
// cardinality failures (exists on a missing property) report the base path
// extended with the unresolved segments, so the violation still identifies
// the resource that lacks the value.
func failurePath(base document.Path, clause *ast.Clause, sel Selection) string {
	if m, ok := FirstFailure(clause.Predicate, sel); ok {
		return m.Path.String()
	}
	if !sel.IsEmpty() {
		return sel[0].Path.String()
	}

	segments := make([]string, 0, len(base)+len(clause.Path.Segments))
	segments = append(segments, base...)
	for _, seg := range clause.Path.Segments {
		switch seg.Type {
		case ast.SegmentTypeKey:
			segments = append(segments, seg.Key)
		default:
			segments = append(segments, "*")
		}
	}
	return strings.Join(segments, "/")
}

// defaultMessage builds the generated violation text for clauses without an
// authored message block.
func defaultMessage(clause *ast.Clause) string {
	pred := clause.Predicate
	if pred.Operator.IsUnary() {
		return fmt.Sprintf("Check failed: %s %s", clause.Path.String(), pred.Operator)
	}
	return fmt.Sprintf("Check failed: %s %s %s", clause.Path.String(), pred.Operator, pred.Value.String())
}
