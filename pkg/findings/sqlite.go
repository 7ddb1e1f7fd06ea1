package findings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/ganymede/pkg/engine"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/findings.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    evaluated_at  INTEGER NOT NULL,
    rules_path    TEXT NOT NULL,
    template_path TEXT NOT NULL,
    passed        INTEGER NOT NULL,
    failed        INTEGER NOT NULL,
    skipped       INTEGER NOT NULL,
    violations    TEXT NOT NULL,
    duration_ns   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_evaluated_at ON runs(evaluated_at);
CREATE INDEX IF NOT EXISTS idx_runs_template ON runs(template_path);
`

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError("sqlite", "open", err)
		}
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "findings.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return NewStorageError("sqlite", "pragma", err)
		}
	}
	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return NewStorageError("sqlite", "pragma", err)
		}
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return NewStorageError("sqlite", "schema", err)
	}
	return nil
}

// Store persists a run record.
func (s *SQLiteStorage) Store(ctx context.Context, run *Run) error {
	violations, err := json.Marshal(run.Violations)
	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, evaluated_at, rules_path, template_path, passed, failed, skipped, violations, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.EvaluatedAt.UnixNano(),
		run.RulesPath,
		run.TemplatePath,
		run.Passed,
		run.Failed,
		run.Skipped,
		string(violations),
		int64(run.Duration),
	)
	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves runs matching the filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *Query) ([]*Run, error) {
	if query == nil {
		query = &Query{}
	}

	var conditions []string
	var args []interface{}

	if !query.Since.IsZero() {
		conditions = append(conditions, "evaluated_at >= ?")
		args = append(args, query.Since.UnixNano())
	}
	if !query.Until.IsZero() {
		conditions = append(conditions, "evaluated_at <= ?")
		args = append(args, query.Until.UnixNano())
	}
	if query.TemplatePath != "" {
		conditions = append(conditions, "template_path = ?")
		args = append(args, query.TemplatePath)
	}
	if query.OnlyFailed {
		conditions = append(conditions, "failed > 0")
	}

	stmt := "SELECT id, evaluated_at, rules_path, template_path, passed, failed, skipped, violations, duration_ns FROM runs"
	if len(conditions) > 0 {
		stmt += " WHERE " + strings.Join(conditions, " AND ")
	}
	stmt += " ORDER BY evaluated_at DESC"
	if query.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		var run Run
		var evaluatedAt, durationNS int64
		var violations string

		if err := rows.Scan(
			&run.ID,
			&evaluatedAt,
			&run.RulesPath,
			&run.TemplatePath,
			&run.Passed,
			&run.Failed,
			&run.Skipped,
			&violations,
			&durationNS,
		); err != nil {
			return nil, NewStorageError("sqlite", "query", err)
		}

		run.EvaluatedAt = time.Unix(0, evaluatedAt)
		run.Duration = time.Duration(durationNS)
		if violations != "" && violations != "null" {
			if err := json.Unmarshal([]byte(violations), &run.Violations); err != nil {
				return nil, NewStorageError("sqlite", "query", err)
			}
		}
		if run.Violations == nil {
			run.Violations = []engine.Violation{}
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return runs, nil
}

// DeleteBefore removes runs evaluated before the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE evaluated_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}
	return int(n), nil
}

// Count returns the number of stored runs.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
