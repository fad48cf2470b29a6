package historystore

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresFromDB(db), mock
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		RunID:          "11111111-1111-1111-1111-111111111111",
		LanguageCode:   "id",
		ConfigSnapshot: `{"max_examples":20}`,
		TotalLines:     100,
		TotalTokens:    900,
		FastTrackCount: 700,
		CategoryCounts: []CategoryCount{
			{Tag: "ASCII_LETTER", Count: 700},
			{Tag: "UNSPLIT_APO_V", Count: 3},
		},
	}
}

func TestPostgresSaveRun(t *testing.T) {
	p, mock := setupMockDB(t)
	s := sampleSnapshot()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wildebeest_runs")).
		WithArgs(s.RunID, s.LanguageCode, s.ConfigSnapshot, s.TotalLines, s.TotalTokens, s.FastTrackCount, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, p.SaveRun(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	p, mock := setupMockDB(t)
	s := sampleSnapshot()

	rows := sqlmock.NewRows([]string{
		"run_id", "language_code", "config_snapshot", "total_lines",
		"total_tokens", "fast_track_count", "category_counts",
	}).AddRow(s.RunID, s.LanguageCode, s.ConfigSnapshot, s.TotalLines, s.TotalTokens, s.FastTrackCount,
		`[{"Tag":"ASCII_LETTER","Count":700},{"Tag":"UNSPLIT_APO_V","Count":3}]`)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT run_id, language_code")).
		WithArgs(s.RunID).
		WillReturnRows(rows)

	got, err := p.GetRun(context.Background(), s.RunID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, s.RunID, got.RunID)
	require.Len(t, got.CategoryCounts, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRunNotFound(t *testing.T) {
	p, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT run_id, language_code")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := p.GetRun(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPostgresListRuns(t *testing.T) {
	p, mock := setupMockDB(t)
	s := sampleSnapshot()

	rows := sqlmock.NewRows([]string{
		"run_id", "language_code", "config_snapshot", "total_lines",
		"total_tokens", "fast_track_count", "category_counts",
	}).AddRow(s.RunID, s.LanguageCode, s.ConfigSnapshot, s.TotalLines, s.TotalTokens, s.FastTrackCount, `[]`)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT run_id, language_code")).
		WithArgs(10).
		WillReturnRows(rows)

	got, err := p.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
