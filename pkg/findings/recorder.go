package findings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/engine"
)

// RecorderConfig contains configuration for the findings recorder.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 100
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a run to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		AsyncBuffer:  100,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder turns evaluation reports into persistent Run records.
// Writes happen on a background goroutine so watch-mode evaluation is never
// blocked by storage; Close drains pending writes.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	runCh   chan *Run
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	closeOnce sync.Once
}

// NewRecorder creates a recorder writing to the given storage backend and
// starts its background writer.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		runCh:   make(chan *Run, config.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "findings.recorder"),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r
}

// Record builds a Run from an evaluation report and queues it for storage.
// If the buffer is full the run is dropped with a logged warning rather
// than blocking the caller.
func (r *Recorder) Record(report *engine.Report, rulesPath, templatePath string) *Run {
	passed, failed, skipped := report.Counts()

	run := &Run{
		ID:           uuid.NewString(),
		EvaluatedAt:  report.EvaluatedAt,
		RulesPath:    rulesPath,
		TemplatePath: templatePath,
		Passed:       passed,
		Failed:       failed,
		Skipped:      skipped,
		Violations:   report.Violations,
		Duration:     report.Duration,
	}

	select {
	case r.runCh <- run:
	default:
		r.logger.Warn("findings buffer full, dropping run",
			"run_id", run.ID,
			"template", templatePath,
		)
	}

	return run
}

// writeLoop drains the run channel into storage.
func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	for {
		select {
		case run := <-r.runCh:
			r.store(run)

		case <-r.done:
			// Drain remaining queued runs before exiting.
			for {
				select {
				case run := <-r.runCh:
					r.store(run)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) store(run *Run) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, run); err != nil {
		r.logger.Error("failed to store run",
			"run_id", run.ID,
			"error", err,
		)
		return
	}

	r.logger.Debug("stored run",
		"run_id", run.ID,
		"failed", run.Failed,
		"violations", len(run.Violations),
	)
}

// Close stops the recorder after draining pending writes.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	return nil
}
