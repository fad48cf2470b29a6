package historystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS wildebeest_runs (
	run_id            TEXT PRIMARY KEY,
	language_code     TEXT NOT NULL,
	config_snapshot   TEXT NOT NULL,
	total_lines       BIGINT NOT NULL,
	total_tokens      BIGINT NOT NULL,
	fast_track_count  BIGINT NOT NULL,
	category_counts   TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres is the production historystore.Store backend, built on
// jackc/pgx/v5's database/sql driver.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against dsn and ensures the
// wildebeest_runs table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an already-open *sql.DB, letting tests inject
// a go-sqlmock connection without dialing a real server.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) SaveRun(ctx context.Context, s Snapshot) error {
	countsJSON, err := json.Marshal(s.CategoryCounts)
	if err != nil {
		return fmt.Errorf("marshaling category counts: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO wildebeest_runs (
			run_id, language_code, config_snapshot, total_lines,
			total_tokens, fast_track_count, category_counts
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			language_code    = EXCLUDED.language_code,
			config_snapshot  = EXCLUDED.config_snapshot,
			total_lines      = EXCLUDED.total_lines,
			total_tokens     = EXCLUDED.total_tokens,
			fast_track_count = EXCLUDED.fast_track_count,
			category_counts  = EXCLUDED.category_counts
	`, s.RunID, s.LanguageCode, s.ConfigSnapshot, s.TotalLines, s.TotalTokens, s.FastTrackCount, countsJSON)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", s.RunID, err)
	}
	return nil
}

func (p *Postgres) GetRun(ctx context.Context, runID string) (*Snapshot, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT run_id, language_code, config_snapshot, total_lines,
		       total_tokens, fast_track_count, category_counts
		FROM wildebeest_runs WHERE run_id = $1
	`, runID)
	return scanSnapshot(row)
}

func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT run_id, language_code, config_snapshot, total_lines,
		       total_tokens, fast_track_count, category_counts
		FROM wildebeest_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func (p *Postgres) Close() error { return p.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var s Snapshot
	var countsJSON []byte
	if err := row.Scan(&s.RunID, &s.LanguageCode, &s.ConfigSnapshot, &s.TotalLines,
		&s.TotalTokens, &s.FastTrackCount, &countsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	if err := json.Unmarshal(countsJSON, &s.CategoryCounts); err != nil {
		return nil, fmt.Errorf("unmarshaling category counts: %w", err)
	}
	return &s, nil
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
