package findings

import (
	"context"
	"testing"
	"time"
)

func TestPruner_RemovesOnlyExpiredRuns(t *testing.T) {
	storage := NewMemoryStorage()
	seedRuns(t, storage,
		makeRun("fresh", time.Hour, 0, "a.yaml"),
		makeRun("stale", 100*24*time.Hour, 0, "a.yaml"),
	)

	pruner := NewPruner(storage, &RetentionConfig{MaxAge: 90 * 24 * time.Hour})
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	runs, _ := storage.Query(context.Background(), &Query{})
	if len(runs) != 1 || runs[0].ID != "fresh" {
		t.Errorf("surviving runs = %v, want [fresh]", runs)
	}
}

func TestPruner_ZeroMaxAgeIsNoop(t *testing.T) {
	storage := NewMemoryStorage()
	seedRuns(t, storage, makeRun("ancient", 1000*time.Hour, 0, "a.yaml"))

	pruner := NewPruner(storage, &RetentionConfig{})
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 when retention is disabled", removed)
	}

	count, _ := storage.Count(context.Background())
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{
		MaxAge:        time.Hour,
		PruneSchedule: "not a cron expression",
	})
	if err := NewScheduler(pruner).Start(context.Background()); err == nil {
		t.Error("Start() succeeded with invalid schedule, want error")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{
		MaxAge:        time.Hour,
		PruneSchedule: "0 3 * * *",
	})
	scheduler := NewScheduler(pruner)
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	scheduler.Stop()
}
