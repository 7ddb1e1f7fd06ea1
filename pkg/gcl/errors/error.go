package errors

import (
	"fmt"
	"strings"

	"mercator-hq/ganymede/pkg/gcl/ast"
)

// ErrorType categorizes the type of error encountered while loading a rule file.
type ErrorType string

const (
	ErrorTypeSyntax   ErrorType = "syntax"   // Malformed rule text (unterminated message block, unknown predicate)
	ErrorTypeSemantic ErrorType = "semantic" // Undefined variable reference, duplicate binding
	ErrorTypeIO       ErrorType = "io"       // File I/O error
)

// Error represents a rich rule-load error with location, context, and suggestions.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Location   ast.Location // Source location (file, line, column)
	Context    string       // Surrounding lines of rule text
	Suggestion string       // Suggested fix (optional)
	Rule       string       // Name of the affected rule, if the error is rule-scoped
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Rule != "" {
		sb.WriteString(fmt.Sprintf("  rule: %s\n", e.Rule))
	}

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// IsRuleScoped returns true if the error affects a single rule only, so the
// rule can be excluded while the rest of the file keeps evaluating.
func (e *Error) IsRuleScoped() bool {
	return e.Rule != ""
}

// ErrorList accumulates errors encountered while loading a rule file,
// instead of failing on the first one.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
