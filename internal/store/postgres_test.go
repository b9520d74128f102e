package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

var loadColumns = []string{
	"id", "source_file", "format", "rows", "columns",
	"defaulted_columns", "coercion_fallbacks", "snapshot_path", "loaded_at",
}

func TestPostgresStore_RecordLoad(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := LoadRecord{
		ID:           "a1",
		SourceFile:   "cadastro.csv",
		Format:       "csv",
		Rows:         340,
		Columns:      19,
		SnapshotPath: "/tmp/a1.csv",
		LoadedAt:     time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO loads").
		WithArgs(rec.ID, rec.SourceFile, rec.Format, rec.Rows, rec.Columns,
			rec.DefaultedColumns, rec.CoercionFallbacks, rec.SnapshotPath, rec.LoadedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.RecordLoad(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestLoad(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	loadedAt := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM loads ORDER BY loaded_at DESC").
		WillReturnRows(pgxmock.NewRows(loadColumns).
			AddRow("b2", "cadastro.csv", "csv", 340, 19, 2, 5, "/tmp/b2.csv", loadedAt))

	latest, err := s.LatestLoad(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "b2", latest.ID)
	assert.Equal(t, 340, latest.Rows)
	assert.Equal(t, 5, latest.CoercionFallbacks)
	assert.True(t, latest.LoadedAt.Equal(loadedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestLoadEmpty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT (.+) FROM loads").
		WillReturnRows(pgxmock.NewRows(loadColumns))

	latest, err := s.LatestLoad(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLoads(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	loadedAt := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM loads ORDER BY loaded_at DESC").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows(loadColumns).
			AddRow("c3", "c.csv", "csv", 10, 19, 0, 0, "/tmp/c.csv", loadedAt).
			AddRow("b2", "b.csv", "csv", 20, 19, 0, 0, "/tmp/b.csv", loadedAt.Add(-time.Hour)))

	loads, err := s.ListLoads(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, "c3", loads[0].ID)
	assert.Equal(t, "b2", loads[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS loads").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
