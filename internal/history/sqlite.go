package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates if needed) the history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "could not open history database").
			WithContext("path", dbPath).
			Build()
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "failed to initialize history schema").
			WithContext("path", dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		config_path TEXT NOT NULL,
		site_dir TEXT NOT NULL,
		outcome TEXT NOT NULL,
		links_checked INTEGER NOT NULL,
		issue_count INTEGER NOT NULL,
		issues BLOB,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record persists run, replacing any earlier row with the same ID.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return ferrors.StorageError("run must have an id").Build()
	}
	issues, err := json.Marshal(run.Issues)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to marshal run issues").Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
			(id, started_at, duration_ms, config_path, site_dir, outcome, links_checked, issue_count, issues, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.ConfigPath, run.SiteDir,
		run.Outcome, run.LinksChecked, len(run.Issues), issues, run.Error,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "failed to record run").
			WithContext("run_id", run.ID).
			Build()
	}
	return nil
}

// Recent returns up to n runs ordered newest first. n <= 0 returns every run.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, started_at, duration_ms, config_path, site_dir, outcome, links_checked, issues, error FROM runs ORDER BY started_at DESC, id"
	args := []any{}
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "failed to query runs").Build()
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "failed to iterate runs").Build()
	}
	return runs, nil
}

// Get returns the run with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, duration_ms, config_path, site_dir, outcome, links_checked, issues, error FROM runs WHERE id = ?",
		id,
	)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ferrors.WrapError(err, ferrors.CategoryNotFound, "run not found").
				WithContext("run_id", id).
				Build()
		}
		return nil, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run        Run
		startedAt  int64
		durationMS int64
		issues     []byte
		errText    sql.NullString
	)
	if err := sc.Scan(&run.ID, &startedAt, &durationMS, &run.ConfigPath, &run.SiteDir, &run.Outcome, &run.LinksChecked, &issues, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "failed to scan run").Build()
	}
	run.StartedAt = time.UnixMilli(startedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Error = errText.String
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &run.Issues); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "failed to unmarshal run issues").
				WithContext("run_id", run.ID).
				Build()
		}
	}
	return &run, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
