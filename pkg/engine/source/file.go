package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mercator-hq/ganymede/pkg/gcl/ast"
	"mercator-hq/ganymede/pkg/gcl/parser"
)

// RuleSource provides parsed, analyzed rule sets to the engine.
type RuleSource interface {
	// LoadRuleSets loads all rule sets from the source. Rules excluded by
	// semantic analysis are logged, not fatal; a file that fails to parse
	// never aborts loading of the other files.
	LoadRuleSets(ctx context.Context) ([]*ast.RuleSet, error)
}

// FileSource loads GCL rule files from disk.
type FileSource struct {
	path   string
	parser *parser.Parser
	logger *slog.Logger
}

// Extensions recognized as rule files when loading a directory.
var ruleExtensions = map[string]bool{
	".gcl":   true,
	".guard": true,
	".rules": true,
}

// NewFileSource creates a new file-based rule source.
// The path can be either a single file or a directory; directories are
// walked recursively for .gcl, .guard and .rules files.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		parser: parser.NewParser(),
		logger: logger.With("component", "source.file"),
	}
}

// WithMaxFileSize caps the size of rule files the source will parse.
func (s *FileSource) WithMaxFileSize(size int64) *FileSource {
	s.parser = s.parser.WithMaxFileSize(size)
	return s
}

// LoadRuleSets loads all rule sets from the configured path.
//
// Per-file isolation: a file with syntax errors is reported and skipped;
// within a file, rules with semantic errors are excluded while the rest of
// the file stays evaluable. LoadRuleSets fails only when nothing loadable
// was found.
func (s *FileSource) LoadRuleSets(ctx context.Context) ([]*ast.RuleSet, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var paths []string
	if info.IsDir() {
		if err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if ruleExtensions[filepath.Ext(path)] {
				paths = append(paths, path)
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
		}
	} else {
		paths = []string{s.path}
	}

	var ruleSets []*ast.RuleSet
	var loadErrs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ruleSet, err := s.loadFile(path)
		if err != nil {
			loadErrs = append(loadErrs, err)
			s.logger.Error("failed to load rule file, skipping",
				"path", path,
				"error", err,
			)
			continue
		}
		ruleSets = append(ruleSets, ruleSet)
	}

	if len(ruleSets) == 0 {
		if len(loadErrs) > 0 {
			return nil, fmt.Errorf("no loadable rule files under %q: %w", s.path, loadErrs[0])
		}
		return nil, fmt.Errorf("no rule files found under %q", s.path)
	}

	s.logger.Info("loaded rule sets",
		"path", s.path,
		"rule_sets", len(ruleSets),
		"failed_files", len(loadErrs),
	)

	return ruleSets, nil
}

func (s *FileSource) loadFile(path string) (*ast.RuleSet, error) {
	parsed, err := s.parser.Parse(path)
	if err != nil {
		return nil, err
	}

	valid, errs := parser.Analyze(parsed)
	if valid == nil {
		return nil, errs.ToError()
	}

	// Rule-scoped semantic errors exclude the rule but keep the file.
	for _, e := range errs.Errors {
		s.logger.Warn("rule excluded from evaluation",
			"path", path,
			"rule", e.Rule,
			"error", e.Message,
		)
	}

	return valid, nil
}
