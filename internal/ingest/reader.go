// Package ingest turns an uploaded tabular file into a table conforming to
// the canonical schema. Parsing is selected by file extension; every raw
// value crosses the boundary as a string and normalization applies the
// declared per-column coercion afterwards.
package ingest

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// Format identifies a supported input format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// DetectFormat maps a filename extension to a parser. Unrecognized
// extensions fall back to the spreadsheet parser, matching how operators
// exported files with stray extensions from legacy systems.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".parquet":
		return FormatParquet
	case ".xlsx", ".xls":
		return FormatXLSX
	default:
		return FormatXLSX
	}
}

// Raw is an unnormalized grid as read from disk.
type Raw struct {
	Header []string
	Rows   [][]string
}

// Read parses a file into a raw grid. A read failure is returned to the
// caller, which surfaces it and carries on with an empty table; nothing
// here panics past the ingestion boundary.
func Read(path string) (*Raw, error) {
	format := DetectFormat(path)

	var (
		raw *Raw
		err error
	)
	switch format {
	case FormatCSV:
		raw, err = readCSV(path)
	case FormatParquet:
		raw, err = readParquet(path)
	default:
		raw, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("ingest: file read",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("columns", len(raw.Header)),
		zap.Int("rows", len(raw.Rows)),
	)
	return raw, nil
}

// Load reads and normalizes a file in one step. On a read failure the
// returned table is empty rather than nil, so downstream metrics degrade
// to zeros instead of crashing.
func Load(path string, cfg schema.Config) (*table.Table, Stats, error) {
	raw, err := Read(path)
	if err != nil {
		zap.L().Error("ingest: load failed", zap.String("path", path), zap.Error(err))
		empty, _ := Normalize(&Raw{}, cfg)
		return empty, Stats{}, err
	}
	tbl, stats := Normalize(raw, cfg)
	return tbl, stats, nil
}
