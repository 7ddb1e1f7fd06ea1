package findings

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation for tests and
// one-shot CLI invocations that do not persist history.
type MemoryStorage struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists a run record.
func (s *MemoryStorage) Store(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// Query retrieves runs matching the filters, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == nil {
		query = &Query{}
	}

	var out []*Run
	for _, run := range s.runs {
		if !query.Since.IsZero() && run.EvaluatedAt.Before(query.Since) {
			continue
		}
		if !query.Until.IsZero() && run.EvaluatedAt.After(query.Until) {
			continue
		}
		if query.TemplatePath != "" && run.TemplatePath != query.TemplatePath {
			continue
		}
		if query.OnlyFailed && run.Compliant() {
			continue
		}
		out = append(out, run)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
	})

	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	if out == nil {
		out = []*Run{}
	}
	return out, nil
}

// DeleteBefore removes runs evaluated before the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.runs[:0]
	removed := 0
	for _, run := range s.runs {
		if run.EvaluatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, run)
	}
	s.runs = kept
	return removed, nil
}

// Count returns the number of stored runs.
func (s *MemoryStorage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs), nil
}

// Close is a no-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}
