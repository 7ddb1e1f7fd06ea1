// Ganymede is a declarative compliance rule engine for infrastructure
// templates.
//
// It evaluates rules written in GCL (Ganymede Compliance Language) against
// CloudFormation-style YAML or JSON templates and reports per-rule PASS,
// FAIL, or SKIPPED verdicts with rule-authored violation messages.
//
// Usage:
//
//	# Evaluate rules against a template
//	ganymede validate --rules s3.gcl --template stack.yaml
//
//	# Machine-readable output for CI/CD
//	ganymede validate --rules policies/ --template stack.yaml --format json
//
//	# Re-evaluate on change, with Prometheus metrics
//	ganymede validate --rules policies/ --template stack.yaml --watch --metrics-addr :9090
//
//	# Check rule files without evaluating
//	ganymede lint --rules policies/
//
//	# Query recorded evaluation runs
//	ganymede history --since 24h
//
//	# Remove old runs
//	ganymede prune --max-age 720h
//
// Exit codes: 0 when every rule passed or was skipped, 1 when at least one
// rule failed, 2 when the evaluation itself could not complete.
package main

func main() {
	Execute()
}
