package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	gclerrors "mercator-hq/ganymede/pkg/gcl/errors"
	"mercator-hq/ganymede/pkg/gcl/parser"
)

var lintFlags struct {
	rules  string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check rule files without evaluating them",
	Long: `Parse and analyze GCL rule files without a template.

The lint command reports:
  - Syntax errors with source context and suggestions
  - Duplicate top-level variable bindings
  - Variables referenced before their definition
  - Rules referencing undefined variables

Examples:
  # Lint a single file
  ganymede lint --rules s3.gcl

  # Lint a directory
  ganymede lint --rules policies/

  # JSON output for CI/CD
  ganymede lint --rules policies/ --format json`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.rules, "rules", "r", "", "rule file or directory (required)")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")

	lintCmd.MarkFlagRequired("rules")
}

// LintResult is the lint outcome for a single rule file.
type LintResult struct {
	File   string      `json:"file"`
	Valid  bool        `json:"valid"`
	Rules  []string    `json:"rules,omitempty"`
	Issues []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single syntax or semantic problem.
type LintIssue struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Type       string `json:"type"`
	Rule       string `json:"rule,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	files, err := collectRuleFiles(lintFlags.rules)
	if err != nil {
		return cli.NewExitCodeError(cli.ExitError, err)
	}
	if len(files) == 0 {
		return cli.NewExitCodeError(cli.ExitError,
			fmt.Errorf("no rule files found under %q", lintFlags.rules))
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(file))
	}

	anyInvalid := false
	for _, r := range results {
		if !r.Valid {
			anyInvalid = true
		}
	}

	switch lintFlags.format {
	case "json":
		if err := writeLintJSON(results); err != nil {
			return cli.NewExitCodeError(cli.ExitError, err)
		}
	default:
		writeLintText(results)
	}

	if anyInvalid {
		return cli.NewExitCodeError(cli.ExitNonCompliant, nil)
	}
	return nil
}

var ruleFileExtensions = map[string]bool{
	".gcl":   true,
	".guard": true,
	".rules": true,
}

// collectRuleFiles resolves a file or directory path to rule files.
func collectRuleFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %q: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if ruleFileExtensions[filepath.Ext(p)] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", path, err)
	}
	return files, nil
}

func lintFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	ruleSet, err := parser.NewParser().Parse(path)
	if err != nil {
		result.Valid = false
		result.Issues = appendIssues(result.Issues, err)
		return result
	}

	analyzed, errs := parser.Analyze(ruleSet)
	if errs != nil && errs.HasErrors() {
		for _, e := range errs.Errors {
			result.Issues = append(result.Issues, issueFromError(e))
		}
	}
	if analyzed == nil {
		result.Valid = false
		return result
	}

	result.Rules = analyzed.RuleNames()
	// A file with rule-scoped issues still lints as valid if at least one
	// rule survives; the excluded rules are reported as issues.
	if len(result.Rules) == 0 {
		result.Valid = false
	}
	return result
}

func appendIssues(issues []LintIssue, err error) []LintIssue {
	var list *gclerrors.ErrorList
	if errors.As(err, &list) {
		for _, e := range list.Errors {
			issues = append(issues, issueFromError(e))
		}
		return issues
	}

	var single *gclerrors.Error
	if errors.As(err, &single) {
		return append(issues, issueFromError(single))
	}

	return append(issues, LintIssue{Type: "error", Message: err.Error()})
}

func issueFromError(e *gclerrors.Error) LintIssue {
	return LintIssue{
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Type:       string(e.Type),
		Rule:       e.Rule,
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
}

func writeLintText(results []LintResult) {
	valid := 0
	for _, r := range results {
		status := "OK"
		if !r.Valid {
			status = "INVALID"
		} else {
			valid++
		}
		fmt.Printf("%-8s %s (%d rules)\n", status, r.File, len(r.Rules))
		for _, issue := range r.Issues {
			loc := ""
			if issue.Line > 0 {
				loc = fmt.Sprintf("%d:%d: ", issue.Line, issue.Column)
			}
			fmt.Printf("         %s%s: %s\n", loc, issue.Type, issue.Message)
			if issue.Suggestion != "" {
				fmt.Printf("         suggestion: %s\n", issue.Suggestion)
			}
		}
	}
	fmt.Printf("\n%d of %d files valid\n", valid, len(results))
}

func writeLintJSON(results []LintResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Results []LintResult `json:"results"`
	}{Results: results})
}
