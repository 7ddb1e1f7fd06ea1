//go:build integration

package test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/document"
	"mercator-hq/ganymede/pkg/engine"
	"mercator-hq/ganymede/pkg/engine/source"
	"mercator-hq/ganymede/pkg/findings"
)

const integrationRules = `let buckets = Resources.*[ Type == "AWS::S3::Bucket" ]

rule S3_ENCRYPTION when %buckets !empty {
    %buckets.Properties.BucketEncryption exists
    << S3 buckets must have encryption configured >>
}

rule S3_VERSIONING when %buckets !empty {
    %buckets.Properties.VersioningConfiguration.Status == "Enabled"
    << S3 buckets must have versioning enabled >>
}
`

const integrationTemplate = `Resources:
  Logs:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption:
        ServerSideEncryptionConfiguration:
          - ServerSideEncryptionByDefault:
              SSEAlgorithm: aws:kms
      VersioningConfiguration:
        Status: Enabled
  Scratch:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption:
        ServerSideEncryptionConfiguration:
          - ServerSideEncryptionByDefault:
              SSEAlgorithm: AES256
      VersioningConfiguration:
        Status: Suspended
`

// Exercises the full pipeline: rule files on disk, template parsing,
// evaluation, and run persistence through the SQLite backend.
func TestEvaluateAndRecordPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	rulesDir := filepath.Join(tmpDir, "policies")
	if err := os.MkdirAll(rulesDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	rulesFile := filepath.Join(rulesDir, "s3.gcl")
	if err := os.WriteFile(rulesFile, []byte(integrationRules), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	templateFile := filepath.Join(tmpDir, "stack.yaml")
	if err := os.WriteFile(templateFile, []byte(integrationTemplate), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	src := source.NewFileSource(rulesDir, logger)
	ruleSets, err := src.LoadRuleSets(ctx)
	if err != nil {
		t.Fatalf("LoadRuleSets() failed: %v", err)
	}
	if len(ruleSets) != 1 {
		t.Fatalf("len(ruleSets) = %d, want 1", len(ruleSets))
	}

	templateData, err := os.ReadFile(templateFile)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	doc, err := document.FromYAML(templateData)
	if err != nil {
		t.Fatalf("FromYAML() failed: %v", err)
	}

	eng := engine.New(logger)
	report, err := eng.Evaluate(ctx, ruleSets[0], doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	passed, failed, skipped := report.Counts()
	if passed != 1 || failed != 1 || skipped != 0 {
		t.Errorf("counts = %d/%d/%d, want 1/1/0", passed, failed, skipped)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1", len(report.Violations))
	}
	if report.Violations[0].Path != "Resources/Scratch/Properties/VersioningConfiguration/Status" {
		t.Errorf("violation path = %q", report.Violations[0].Path)
	}

	storage, err := findings.NewSQLiteStorage(&findings.SQLiteConfig{
		Path:    filepath.Join(tmpDir, "findings.db"),
		WALMode: true,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	defer storage.Close()

	recorder := findings.NewRecorder(storage, nil)
	run := recorder.Record(report, rulesDir, templateFile)
	if run == nil {
		t.Fatal("Record() returned nil")
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("recorder.Close() failed: %v", err)
	}

	stored, err := storage.Query(ctx, &findings.Query{OnlyFailed: true})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("len(stored) = %d, want 1", len(stored))
	}
	if stored[0].ID != run.ID {
		t.Errorf("stored ID = %q, want %q", stored[0].ID, run.ID)
	}
	if stored[0].Failed != 1 || len(stored[0].Violations) != 1 {
		t.Errorf("stored run = %+v", stored[0])
	}

	// A retention pass with a generous window keeps the fresh run.
	pruner := findings.NewPruner(storage, &findings.RetentionConfig{MaxAge: 24 * time.Hour})
	removed, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune() removed %d runs, want 0", removed)
	}
}
