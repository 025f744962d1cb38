package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-based run history storage.
type Store struct {
	db *sql.DB
}

// StoreConfig configures the history store.
type StoreConfig struct {
	// Path is the SQLite database file path
	Path string
}

// NewStore opens the database at cfg.Path and runs migrations.
func NewStore(cfg StoreConfig) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			standard_id INTEGER,
			name TEXT NOT NULL,
			organization TEXT NOT NULL,
			provider TEXT NOT NULL,
			source TEXT NOT NULL,
			patterns_count INTEGER DEFAULT 0,
			enabled_count INTEGER DEFAULT 0,
			disabled_count INTEGER DEFAULT 0,
			unmatched_count INTEGER DEFAULT 0,
			promoted BOOLEAN DEFAULT FALSE,
			status TEXT NOT NULL,
			error TEXT,
			created_at DATETIME NOT NULL,
			duration_ms INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_org ON runs(provider, organization)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Record saves a run and sets its ID.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	var standardID sql.NullInt64
	if run.StandardID != 0 {
		standardID = sql.NullInt64{Int64: run.StandardID, Valid: true}
	}
	var runErr sql.NullString
	if run.Error != "" {
		runErr = sql.NullString{String: run.Error, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO runs (
		run_id, standard_id, name, organization, provider, source,
		patterns_count, enabled_count, disabled_count, unmatched_count,
		promoted, status, error, created_at, duration_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, standardID, run.Name, run.Organization, run.Provider, run.Source,
		run.PatternsCount, run.Enabled, run.Disabled, run.Unmatched,
		run.Promoted, run.Status, runErr, run.CreatedAt, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	id, _ := result.LastInsertId()
	run.ID = id
	return nil
}

func (q Query) where() (string, []any) {
	var conditions []string
	var args []any

	if q.Organization != "" {
		conditions = append(conditions, "organization = ?")
		args = append(args, q.Organization)
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, q.Status)
	}
	if !q.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, q.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns matching runs, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Run, error) {
	whereClause, args := q.where()
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	//nolint:gosec // whereClause only holds placeholders
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, standard_id, name, organization, provider, source,
		       patterns_count, enabled_count, disabled_count, unmatched_count,
		       promoted, status, error, created_at, duration_ms
		FROM runs
		`+whereClause+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var r Run
		var standardID sql.NullInt64
		var runErr sql.NullString
		var durationMS int64

		if err := rows.Scan(
			&r.ID, &r.RunID, &standardID, &r.Name, &r.Organization, &r.Provider, &r.Source,
			&r.PatternsCount, &r.Enabled, &r.Disabled, &r.Unmatched,
			&r.Promoted, &r.Status, &runErr, &r.CreatedAt, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.StandardID = standardID.Int64
		r.Error = runErr.String
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Latest returns the newest successful run of an organization, or nil.
func (s *Store) Latest(ctx context.Context, organization string) (*Run, error) {
	runs, err := s.List(ctx, Query{Organization: organization, Status: StatusSucceeded, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Stats aggregates the runs matching q. Limit is ignored.
func (s *Store) Stats(ctx context.Context, q Query) (*Stats, error) {
	whereClause, args := q.where()

	var stats Stats
	var succeeded, failed sql.NullInt64
	//nolint:gosec // whereClause only holds placeholders
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       SUM(CASE WHEN status = 'succeeded' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END)
		FROM runs `+whereClause, args...).Scan(&stats.Total, &succeeded, &failed)
	if err != nil {
		return nil, fmt.Errorf("counting runs: %w", err)
	}
	stats.Succeeded = succeeded.Int64
	stats.Failed = failed.Int64

	latest, err := s.List(ctx, Query{Organization: q.Organization, Status: StatusSucceeded, Since: q.Since, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(latest) == 1 {
		stats.LastRunAt = latest[0].CreatedAt
		stats.LastStandardID = latest[0].StandardID
	}
	return &stats, nil
}

// Prune deletes runs recorded before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
