package metrics

import (
	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// CountDuplicateExtras counts the extra occurrences beyond the first for
// every registration id that appears more than once: an id occurring k>1
// times contributes k-1. With excludeZero set, id 0 (the placeholder for
// unparseable registrations) is ignored entirely.
func CountDuplicateExtras(ids []float64, excludeZero bool) int {
	counts := make(map[float64]int, len(ids))
	for _, id := range ids {
		if excludeZero && id == 0 {
			continue
		}
		counts[id]++
	}
	extras := 0
	for _, k := range counts {
		if k > 1 {
			extras += k - 1
		}
	}
	return extras
}

// DuplicateRows returns the indices (within the subset, in table order) of
// every occurrence of a duplicated registration id, for the duplicate-
// records export. The zero-exclusion policy matches CountDuplicateExtras.
func DuplicateRows(tbl *table.Table, rows []int, excludeZero bool) []int {
	ids, ok := tbl.Numbers(schema.ColMatricula)
	if !ok {
		return nil
	}

	counts := make(map[float64]int, len(rows))
	for _, i := range rows {
		if excludeZero && ids[i] == 0 {
			continue
		}
		counts[ids[i]]++
	}

	var out []int
	for _, i := range rows {
		if excludeZero && ids[i] == 0 {
			continue
		}
		if counts[ids[i]] > 1 {
			out = append(out, i)
		}
	}
	return out
}
