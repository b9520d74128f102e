package metrics

import (
	"strings"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// Summary holds the scalar KPIs shown at the top of the dashboard.
type Summary struct {
	Total            int     `json:"total"`
	HydrometerPct    float64 `json:"hydrometer_pct"`
	MeanResidents    float64 `json:"mean_residents"`
	ClandestineCount int     `json:"clandestine_count"`
	DuplicateExtras  int     `json:"duplicate_extras"`
}

// Summarize computes the scalar KPIs over a filtered subset. Empty subsets
// and missing columns yield zeros, never a division error.
func Summarize(tbl *table.Table, rows []int, cfg schema.Config) Summary {
	return Summary{
		Total:            len(rows),
		HydrometerPct:    hydrometerPct(tbl, rows),
		MeanResidents:    meanResidents(tbl, rows, cfg.MeanIgnoreZeroResidents),
		ClandestineCount: CountClandestine(tbl, rows, cfg.ClandestineMarker),
		DuplicateExtras:  duplicateExtras(tbl, rows, cfg.DuplicateExcludeZero),
	}
}

func hydrometerPct(tbl *table.Table, rows []int) float64 {
	values, ok := tbl.Strings(schema.ColPossuiHidrometro)
	if !ok || len(rows) == 0 {
		return 0
	}
	yes := 0
	for _, i := range rows {
		if values[i] == schema.MeterYes {
			yes++
		}
	}
	return float64(yes) / float64(len(rows)) * 100
}

func meanResidents(tbl *table.Table, rows []int, ignoreZero bool) float64 {
	values, ok := tbl.Numbers(schema.ColMoradores)
	if !ok {
		return 0
	}
	sum := 0.0
	count := 0
	for _, i := range rows {
		if ignoreZero && values[i] < 1 {
			continue
		}
		sum += values[i]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// CountClandestine counts rows whose irregularity field contains the
// clandestine-connection marker, case- and accent-insensitively.
func CountClandestine(tbl *table.Table, rows []int, marker string) int {
	values, ok := tbl.Strings(schema.ColIrregularidade)
	if !ok || marker == "" {
		return 0
	}
	needle := fold(marker)
	count := 0
	for _, i := range rows {
		if strings.Contains(fold(values[i]), needle) {
			count++
		}
	}
	return count
}

func duplicateExtras(tbl *table.Table, rows []int, excludeZero bool) int {
	ids, ok := tbl.Numbers(schema.ColMatricula)
	if !ok {
		return 0
	}
	subset := make([]float64, 0, len(rows))
	for _, i := range rows {
		subset = append(subset, ids[i])
	}
	return CountDuplicateExtras(subset, excludeZero)
}
