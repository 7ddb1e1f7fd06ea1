package parser

import (
	"fmt"

	"mercator-hq/ganymede/pkg/gcl/ast"
	gclerrors "mercator-hq/ganymede/pkg/gcl/errors"
)

// Analyze performs semantic validation on a parsed rule set:
//
//   - duplicate top-level let names are rejected (no silent shadowing at
//     top level),
//   - a top-level let may only reference bindings declared before it in
//     file order,
//   - a rule referencing an undefined variable is excluded from the
//     returned rule set; the remaining rules stay evaluable.
//
// It returns the rule set with offending rules removed, plus the list of
// semantic errors found. File-level errors (duplicate or forward top-level
// bindings) leave the returned rule set nil because every rule could be
// poisoned by the broken binding.
func Analyze(ruleSet *ast.RuleSet) (*ast.RuleSet, *gclerrors.ErrorList) {
	errs := gclerrors.NewErrorList()

	// Top-level bindings: reject duplicates, check reference order.
	defined := make(map[string]bool, len(ruleSet.Lets))
	for _, let := range ruleSet.Lets {
		if defined[let.Name] {
			errs.Add(&gclerrors.Error{
				Type:       gclerrors.ErrorTypeSemantic,
				Message:    fmt.Sprintf("duplicate top-level binding %q", let.Name),
				Location:   let.Location,
				Suggestion: "rename the binding; top-level let names must be unique within a file",
			})
			continue
		}
		if ref := let.Path.Variable; ref != "" && !defined[ref] {
			errs.Add(&gclerrors.Error{
				Type:       gclerrors.ErrorTypeSemantic,
				Message:    fmt.Sprintf("binding %q references %%%s before its definition", let.Name, ref),
				Location:   let.Path.Location,
				Suggestion: fmt.Sprintf("move the let statement for %q above this line", ref),
			})
			continue
		}
		defined[let.Name] = true
	}

	if errs.HasErrors() {
		// A broken top-level binding invalidates the whole file.
		return nil, errs
	}

	// Per-rule: verify every referenced variable resolves to a top-level
	// or rule-local binding. Offending rules are excluded, not fatal.
	valid := &ast.RuleSet{
		SourceFile: ruleSet.SourceFile,
		Lets:       ruleSet.Lets,
	}

	for _, rule := range ruleSet.Rules {
		if err := checkRule(rule, defined); err != nil {
			errs.Add(err)
			continue
		}
		valid.Rules = append(valid.Rules, rule)
	}

	return valid, errs
}

func checkRule(rule *ast.Rule, topLevel map[string]bool) *gclerrors.Error {
	local := make(map[string]bool, len(rule.Lets))

	resolvable := func(name string) bool {
		return local[name] || topLevel[name]
	}

	// Guard clauses see only top-level bindings: the guard runs before any
	// rule-local let is established.
	for _, clause := range rule.Guard {
		if ref := clause.Path.Variable; ref != "" && !topLevel[ref] {
			return undefinedVariableError(rule.Name, ref, clause.Path.Location)
		}
	}

	for _, let := range rule.Lets {
		if local[let.Name] {
			return &gclerrors.Error{
				Type:     gclerrors.ErrorTypeSemantic,
				Message:  fmt.Sprintf("duplicate binding %q in rule %q", let.Name, rule.Name),
				Location: let.Location,
				Rule:     rule.Name,
			}
		}
		if ref := let.Path.Variable; ref != "" && !resolvable(ref) {
			return undefinedVariableError(rule.Name, ref, let.Path.Location)
		}
		local[let.Name] = true
	}

	for _, clause := range rule.Body {
		if ref := clause.Path.Variable; ref != "" && !resolvable(ref) {
			return undefinedVariableError(rule.Name, ref, clause.Path.Location)
		}
	}

	return nil
}

func undefinedVariableError(ruleName, variable string, loc ast.Location) *gclerrors.Error {
	return &gclerrors.Error{
		Type:       gclerrors.ErrorTypeSemantic,
		Message:    fmt.Sprintf("undefined variable %%%s", variable),
		Location:   loc,
		Rule:       ruleName,
		Suggestion: fmt.Sprintf("add `let %s = <path>` at the top of the file", variable),
	}
}
