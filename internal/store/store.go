// Package store catalogs ingested datasets: one record per load, carrying
// the ingest stats and the path of the normalized snapshot so metric
// commands can work from the latest load without re-parsing the source
// file.
package store

import (
	"context"
	"time"
)

// LoadRecord describes one ingested file.
type LoadRecord struct {
	ID                string    `json:"id"`
	SourceFile        string    `json:"source_file"`
	Format            string    `json:"format"`
	Rows              int       `json:"rows"`
	Columns           int       `json:"columns"`
	DefaultedColumns  int       `json:"defaulted_columns"`
	CoercionFallbacks int       `json:"coercion_fallbacks"`
	SnapshotPath      string    `json:"snapshot_path"`
	LoadedAt          time.Time `json:"loaded_at"`
}

// Store defines the load-catalog persistence interface.
type Store interface {
	RecordLoad(ctx context.Context, rec LoadRecord) error
	LatestLoad(ctx context.Context) (*LoadRecord, error)
	ListLoads(ctx context.Context, limit int) ([]LoadRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
