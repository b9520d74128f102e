package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS loads (
	id                 TEXT PRIMARY KEY,
	source_file        TEXT NOT NULL,
	format             TEXT NOT NULL,
	rows               INTEGER NOT NULL,
	columns            INTEGER NOT NULL,
	defaulted_columns  INTEGER NOT NULL,
	coercion_fallbacks INTEGER NOT NULL,
	snapshot_path      TEXT NOT NULL,
	loaded_at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loads_loaded_at ON loads(loaded_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) RecordLoad(ctx context.Context, rec LoadRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO loads (id, source_file, format, rows, columns, defaulted_columns, coercion_fallbacks, snapshot_path, loaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.SourceFile, rec.Format, rec.Rows, rec.Columns,
		rec.DefaultedColumns, rec.CoercionFallbacks, rec.SnapshotPath, rec.LoadedAt,
	)
	return eris.Wrap(err, "postgres: record load")
}

func (s *PostgresStore) LatestLoad(ctx context.Context) (*LoadRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_file, format, rows, columns, defaulted_columns, coercion_fallbacks, snapshot_path, loaded_at
		 FROM loads ORDER BY loaded_at DESC, id DESC LIMIT 1`)

	var rec LoadRecord
	err := row.Scan(&rec.ID, &rec.SourceFile, &rec.Format, &rec.Rows, &rec.Columns,
		&rec.DefaultedColumns, &rec.CoercionFallbacks, &rec.SnapshotPath, &rec.LoadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest load")
	}
	return &rec, nil
}

func (s *PostgresStore) ListLoads(ctx context.Context, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_file, format, rows, columns, defaulted_columns, coercion_fallbacks, snapshot_path, loaded_at
		 FROM loads ORDER BY loaded_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list loads")
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var rec LoadRecord
		if err := rows.Scan(&rec.ID, &rec.SourceFile, &rec.Format, &rec.Rows, &rec.Columns,
			&rec.DefaultedColumns, &rec.CoercionFallbacks, &rec.SnapshotPath, &rec.LoadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan load")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate loads")
}
