package findings

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "findings.db")

	storage, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	storage := openTestDB(t)
	ctx := context.Background()

	run := makeRun("run-1", time.Hour, 2, "stack.yaml")
	run.Violations = append(run.Violations, sampleReport().Violations...)
	run.Duration = 7 * time.Millisecond

	if err := storage.Store(ctx, run); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	runs, err := storage.Query(ctx, &Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != "run-1" || got.TemplatePath != "stack.yaml" || got.Failed != 2 {
		t.Errorf("run = %+v", got)
	}
	if len(got.Violations) != 1 || got.Violations[0].Path != "Resources/X" {
		t.Errorf("violations = %+v", got.Violations)
	}
	if got.Duration != 7*time.Millisecond {
		t.Errorf("duration = %v, want 7ms", got.Duration)
	}
}

func TestSQLiteStorage_QueryFilters(t *testing.T) {
	storage := openTestDB(t)
	ctx := context.Background()

	seedRuns(t, storage,
		makeRun("fail-a", time.Hour, 1, "a.yaml"),
		makeRun("pass-a", 2*time.Hour, 0, "a.yaml"),
		makeRun("pass-b", 3*time.Hour, 0, "b.yaml"),
	)

	runs, err := storage.Query(ctx, &Query{TemplatePath: "a.yaml"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "fail-a" {
		t.Errorf("template filter = %v", runs)
	}

	runs, err = storage.Query(ctx, &Query{OnlyFailed: true})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "fail-a" {
		t.Errorf("failed filter = %v", runs)
	}

	runs, err = storage.Query(ctx, &Query{Limit: 2})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("limit filter returned %d runs, want 2", len(runs))
	}
}

func TestSQLiteStorage_DeleteBefore(t *testing.T) {
	storage := openTestDB(t)
	ctx := context.Background()

	seedRuns(t, storage,
		makeRun("keep", time.Hour, 0, "a.yaml"),
		makeRun("drop", 100*time.Hour, 0, "a.yaml"),
	)

	removed, err := storage.DeleteBefore(ctx, time.Now().Add(-50*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	count, err := storage.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSQLiteStorage_CreatesParentDirectory(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "nested", "dir", "findings.db")

	storage, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	storage.Close()
}
