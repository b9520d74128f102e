package ingest

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// Stats summarizes what normalization had to fix up.
type Stats struct {
	Rows              int `json:"rows"`
	Columns           int `json:"columns"`
	DefaultedColumns  int `json:"defaulted_columns"`
	CoercionFallbacks int `json:"coercion_fallbacks"`
}

// Normalize maps a raw grid onto the canonical schema: legacy column names
// are merged into their canonical equivalents, every declared column is
// created (with defaults when absent), values are coerced per column kind,
// and the water-meter presence column is derived. Running Normalize on a
// grid produced from its own output changes nothing.
func Normalize(raw *Raw, cfg schema.Config) (*table.Table, Stats) {
	src := make(map[string][]string, len(raw.Header))
	for i, name := range raw.Header {
		if _, dup := src[name]; dup {
			continue
		}
		src[name] = columnValues(raw.Rows, i)
	}

	// Alias merge. A legacy name feeds the canonical column only when the
	// canonical name is absent from the input, so re-normalizing output
	// that still carries the legacy column is a no-op.
	for _, alias := range cfg.Aliases {
		if _, ok := src[alias.Canonical]; ok {
			continue
		}
		if legacy, ok := src[alias.Legacy]; ok {
			src[alias.Canonical] = legacy
		}
	}

	nrows := len(raw.Rows)
	tbl := table.New()
	stats := Stats{Rows: nrows, Columns: len(cfg.Columns)}

	for _, spec := range cfg.Columns {
		values, present := src[spec.Name]
		if !present {
			stats.DefaultedColumns++
		}

		var err error
		switch spec.Kind {
		case schema.KindNumeric:
			nums, fallbacks := coerceNumeric(values, nrows)
			stats.CoercionFallbacks += fallbacks
			err = tbl.AddNumeric(spec.Name, nums)
		default:
			err = tbl.AddString(spec.Name, coerceString(values, nrows, cfg.StringSentinel))
		}
		if err != nil {
			// A column-level failure must not abort the load; keep the
			// pre-coercion values so the table still carries the data.
			zap.L().Error("ingest: column coercion failed",
				zap.String("column", spec.Name),
				zap.Error(err),
			)
			if addErr := tbl.AddString(spec.Name, coerceString(values, nrows, cfg.StringSentinel)); addErr != nil {
				zap.L().Error("ingest: column dropped", zap.String("column", spec.Name), zap.Error(addErr))
			}
		}
	}

	deriveMeterPresence(tbl, cfg)

	if stats.DefaultedColumns > 0 || stats.CoercionFallbacks > 0 {
		zap.L().Warn("ingest: normalization filled gaps",
			zap.Int("defaulted_columns", stats.DefaultedColumns),
			zap.Int("coercion_fallbacks", stats.CoercionFallbacks),
		)
	}

	return tbl, stats
}

func columnValues(rows [][]string, idx int) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// coerceString replaces missing values with the sentinel and keeps
// everything else verbatim: no trimming, no case folding.
func coerceString(values []string, nrows int, sentinel string) []string {
	out := make([]string, nrows)
	for i := range out {
		if i < len(values) && values[i] != "" {
			out[i] = values[i]
		} else {
			out[i] = sentinel
		}
	}
	return out
}

// coerceNumeric parses each value as a float; missing or unparseable
// entries become 0. ParseFloat accepts "NaN" and "Inf" spellings, which
// spreadsheet exports of missing cells actually contain; those count as
// fallbacks too so the column carries only finite values. The fallback
// count covers only non-empty values.
func coerceNumeric(values []string, nrows int) ([]float64, int) {
	out := make([]float64, nrows)
	fallbacks := 0
	for i := range out {
		if i >= len(values) {
			continue
		}
		s := strings.TrimSpace(values[i])
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			fallbacks++
			continue
		}
		out[i] = f
	}
	return out, fallbacks
}

// deriveMeterPresence writes the POSSUI_HIDROMETRO column from the coerced
// meter-status values. Status comparison is case-insensitive; a missing
// status column yields "NÃO" for every row.
func deriveMeterPresence(tbl *table.Table, cfg schema.Config) {
	derived := make([]string, tbl.Len())
	status, ok := tbl.Strings(schema.ColSituacaoHidro)
	for i := range derived {
		derived[i] = schema.MeterNo
		if ok && cfg.MeterPresent(strings.ToUpper(status[i])) {
			derived[i] = schema.MeterYes
		}
	}
	if err := tbl.AddString(schema.ColPossuiHidrometro, derived); err != nil {
		zap.L().Error("ingest: derive meter presence", zap.Error(err))
	}
}
