package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", name, err)
	}
	return path
}

const validRules = `
let buckets = Resources.*[ Type == "AWS::S3::Bucket" ]

rule S3_ENCRYPTION when %buckets !empty {
    %buckets.Properties.BucketEncryption exists
}
`

func TestFileSource_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s3.gcl", validRules)

	ruleSets, err := NewFileSource(path, nil).LoadRuleSets(context.Background())
	if err != nil {
		t.Fatalf("LoadRuleSets() failed: %v", err)
	}
	if len(ruleSets) != 1 {
		t.Fatalf("len(ruleSets) = %d, want 1", len(ruleSets))
	}
	if ruleSets[0].SourceFile != path {
		t.Errorf("SourceFile = %q, want %q", ruleSets[0].SourceFile, path)
	}
	if len(ruleSets[0].Rules) != 1 {
		t.Errorf("len(Rules) = %d, want 1", len(ruleSets[0].Rules))
	}
}

func TestFileSource_DirectoryWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.gcl", validRules)
	writeFile(t, dir, "b.guard", "rule B { Resources exists }\n")
	writeFile(t, dir, "notes.txt", "not a rule file")

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "c.rules", "rule C { Resources exists }\n")

	ruleSets, err := NewFileSource(dir, nil).LoadRuleSets(context.Background())
	if err != nil {
		t.Fatalf("LoadRuleSets() failed: %v", err)
	}
	if len(ruleSets) != 3 {
		t.Errorf("len(ruleSets) = %d, want 3 (txt file ignored)", len(ruleSets))
	}
}

func TestFileSource_SyntaxErrorIsolatedToFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.gcl", validRules)
	writeFile(t, dir, "bad.gcl", "rule BROKEN {\n    Resources exists\n") // missing }

	ruleSets, err := NewFileSource(dir, nil).LoadRuleSets(context.Background())
	if err != nil {
		t.Fatalf("LoadRuleSets() failed: %v", err)
	}
	if len(ruleSets) != 1 {
		t.Fatalf("len(ruleSets) = %d, want 1 (broken file skipped)", len(ruleSets))
	}
	if filepath.Base(ruleSets[0].SourceFile) != "good.gcl" {
		t.Errorf("survivor = %q, want good.gcl", ruleSets[0].SourceFile)
	}
}

func TestFileSource_SemanticErrorExcludesOnlyTheRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mixed.gcl", `
rule GOOD { Resources exists }
rule BAD { %undefined exists }
`)

	ruleSets, err := NewFileSource(dir, nil).LoadRuleSets(context.Background())
	if err != nil {
		t.Fatalf("LoadRuleSets() failed: %v", err)
	}
	names := ruleSets[0].RuleNames()
	if len(names) != 1 || names[0] != "GOOD" {
		t.Errorf("surviving rules = %v, want [GOOD]", names)
	}
}

func TestFileSource_NothingLoadable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.gcl", "rule BROKEN {\n")

	if _, err := NewFileSource(dir, nil).LoadRuleSets(context.Background()); err == nil {
		t.Error("LoadRuleSets() succeeded with no loadable files, want error")
	}

	empty := t.TempDir()
	if _, err := NewFileSource(empty, nil).LoadRuleSets(context.Background()); err == nil {
		t.Error("LoadRuleSets() succeeded on empty directory, want error")
	}
}

func TestFileSource_MissingPath(t *testing.T) {
	if _, err := NewFileSource("/no/such/path.gcl", nil).LoadRuleSets(context.Background()); err == nil {
		t.Error("LoadRuleSets() succeeded on missing path, want error")
	}
}
