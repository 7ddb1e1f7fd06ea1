// Package ast defines the Abstract Syntax Tree for GCL (Ganymede Compliance
// Language) rule files.
//
// A GCL file contains top-level variable bindings (let statements) and rules.
// Each rule has an optional guard (when clause list) and a body of assertion
// clauses. Clauses select values out of an infrastructure template using
// dotted/wildcard/filter path expressions and apply predicates to them.
//
// The AST is a closed set of tagged variants: PathExpression segments,
// predicate operators, and value types are all enumerated constants rather
// than open interfaces, so the evaluation engine can dispatch on tags in a
// single recursive interpreter.
//
// All nodes carry a Location for error reporting.
package ast
