// Package engine evaluates GCL rule sets against parsed infrastructure
// templates.
//
// The engine composes four pure pieces:
//
//   - Select resolves wildcard/filter path expressions into ordered
//     selections of (value, path) pairs.
//   - EvaluatePredicate applies scalar and cardinality predicates to
//     selections.
//   - Scope maps let-bound names to selections, built once per evaluation
//     and passed explicitly into every call.
//   - Reporter accumulates violations in deterministic order.
//
// Engine.Evaluate drives them: top-level bindings first, then each rule
// through its guard and body, producing a Report with one verdict per rule
// (PASS, FAIL, or SKIPPED) and the ordered violation list.
//
// Evaluation performs no I/O and holds no mutable shared state, so one
// engine may evaluate many documents concurrently - each call gets its own
// scope and reporter.
package engine
