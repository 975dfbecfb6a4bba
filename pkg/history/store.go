package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Schema contains the SQL statements to create the run history schema.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    feed_path TEXT NOT NULL,
    schema_path TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    duration_ms INTEGER NOT NULL,
    errors INTEGER NOT NULL,
    warnings INTEGER NOT NULL,
    infos INTEGER NOT NULL,
    passed BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Config contains configuration for the history store.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// Run is one recorded validation run.
type Run struct {
	ID         string
	FeedPath   string
	SchemaPath string
	StartedAt  time.Time
	Duration   time.Duration
	Errors     int
	Warnings   int
	Infos      int
	Passed     bool
}

// Store persists validation runs in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the history database and initializes its
// schema. WAL mode is enabled for concurrent readers.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", cfg.Path, busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "history"),
	}, nil
}

// Record inserts one run. A missing ID is filled with a fresh UUID; the
// stored ID is returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, feed_path, schema_path, started_at, duration_ms,
		                  errors, warnings, infos, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.FeedPath, run.SchemaPath, run.StartedAt,
		run.Duration.Milliseconds(), run.Errors, run.Warnings, run.Infos, run.Passed,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	s.logger.Debug("run recorded", "id", run.ID, "feed", run.FeedPath, "passed", run.Passed)
	return run.ID, nil
}

// Query selects recorded runs.
type Query struct {
	// Since restricts results to runs started at or after this time.
	Since time.Time

	// Limit caps the number of returned runs. Default: 50.
	Limit int
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Run, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, feed_path, schema_path, started_at, duration_ms,
		       errors, warnings, infos, passed
		FROM runs
		WHERE started_at >= ?
		ORDER BY started_at DESC
		LIMIT ?`,
		q.Since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.FeedPath, &run.SchemaPath, &run.StartedAt,
			&durationMS, &run.Errors, &run.Warnings, &run.Infos, &run.Passed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
