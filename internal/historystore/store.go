package historystore

import "context"

// Store persists and retrieves run snapshots. Postgres and SQLite each
// implement it against their own schema/placeholder dialect.
type Store interface {
	SaveRun(ctx context.Context, s Snapshot) error
	GetRun(ctx context.Context, runID string) (*Snapshot, error)
	ListRuns(ctx context.Context, limit int) ([]Snapshot, error)
	Close() error
}
