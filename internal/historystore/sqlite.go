package historystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS wildebeest_runs (
	run_id            TEXT PRIMARY KEY,
	language_code     TEXT NOT NULL,
	config_snapshot   TEXT NOT NULL,
	total_lines       INTEGER NOT NULL,
	total_tokens      INTEGER NOT NULL,
	fast_track_count  INTEGER NOT NULL,
	category_counts   TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLite is the zero-dependency local backend that `wildebeest serve`
// opens when history.driver is "sqlite" (the default), for a
// single-machine install with no Postgres server to point at.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) the SQLite database at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveRun(ctx context.Context, snap Snapshot) error {
	countsJSON, err := json.Marshal(snap.CategoryCounts)
	if err != nil {
		return fmt.Errorf("marshaling category counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wildebeest_runs (
			run_id, language_code, config_snapshot, total_lines,
			total_tokens, fast_track_count, category_counts
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			language_code    = excluded.language_code,
			config_snapshot  = excluded.config_snapshot,
			total_lines      = excluded.total_lines,
			total_tokens     = excluded.total_tokens,
			fast_track_count = excluded.fast_track_count,
			category_counts  = excluded.category_counts
	`, snap.RunID, snap.LanguageCode, snap.ConfigSnapshot, snap.TotalLines,
		snap.TotalTokens, snap.FastTrackCount, countsJSON)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", snap.RunID, err)
	}
	return nil
}

func (s *SQLite) GetRun(ctx context.Context, runID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, language_code, config_snapshot, total_lines,
		       total_tokens, fast_track_count, category_counts
		FROM wildebeest_runs WHERE run_id = ?
	`, runID)
	return scanSnapshot(row)
}

func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, language_code, config_snapshot, total_lines,
		       total_tokens, fast_track_count, category_counts
		FROM wildebeest_runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func (s *SQLite) Close() error { return s.db.Close() }
