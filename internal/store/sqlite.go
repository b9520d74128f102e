package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS loads (
	id                 TEXT PRIMARY KEY,
	source_file        TEXT NOT NULL,
	format             TEXT NOT NULL,
	rows               INTEGER NOT NULL,
	columns            INTEGER NOT NULL,
	defaulted_columns  INTEGER NOT NULL,
	coercion_fallbacks INTEGER NOT NULL,
	snapshot_path      TEXT NOT NULL,
	loaded_at          DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loads_loaded_at ON loads(loaded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordLoad(ctx context.Context, rec LoadRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loads (id, source_file, format, rows, columns, defaulted_columns, coercion_fallbacks, snapshot_path, loaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceFile, rec.Format, rec.Rows, rec.Columns,
		rec.DefaultedColumns, rec.CoercionFallbacks, rec.SnapshotPath,
		rec.LoadedAt.UTC().Format(time.RFC3339),
	)
	return eris.Wrap(err, "sqlite: record load")
}

func (s *SQLiteStore) LatestLoad(ctx context.Context) (*LoadRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_file, format, rows, columns, defaulted_columns, coercion_fallbacks, snapshot_path, loaded_at
		 FROM loads ORDER BY loaded_at DESC, id DESC LIMIT 1`)
	rec, err := scanLoad(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest load")
	}
	return rec, nil
}

func (s *SQLiteStore) ListLoads(ctx context.Context, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_file, format, rows, columns, defaulted_columns, coercion_fallbacks, snapshot_path, loaded_at
		 FROM loads ORDER BY loaded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list loads")
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		rec, err := scanLoad(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan load")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate loads")
}

func scanLoad(scan func(dest ...any) error) (*LoadRecord, error) {
	var rec LoadRecord
	var loadedAt string
	if err := scan(&rec.ID, &rec.SourceFile, &rec.Format, &rec.Rows, &rec.Columns,
		&rec.DefaultedColumns, &rec.CoercionFallbacks, &rec.SnapshotPath, &loadedAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, loadedAt); err == nil {
		rec.LoadedAt = t
	}
	return &rec, nil
}
