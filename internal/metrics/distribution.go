package metrics

import (
	"math"
	"sort"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// ValueCount is one bucket of a categorical distribution.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Distribution counts rows per distinct value of a string column over the
// subset, sorted by descending count with ties in first-encountered order.
// topN > 0 truncates the result; a missing column yields nil.
func Distribution(tbl *table.Table, rows []int, col string, topN int) []ValueCount {
	values, ok := tbl.Strings(col)
	if !ok {
		return nil
	}

	counts := make(map[string]int, 16)
	var order []string
	for _, i := range rows {
		v := values[i]
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	out := make([]ValueCount, len(order))
	for i, v := range order {
		out[i] = ValueCount{Value: v, Count: counts[v]}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// ResidentStats holds the descriptive statistics of the resident-count
// panel.
type ResidentStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Residents computes min/max/median/stddev of NUMERO_MORADORES over the
// subset. ok is false when the column is missing or the subset is empty.
func Residents(tbl *table.Table, rows []int) (ResidentStats, bool) {
	values, colOK := tbl.Numbers(schema.ColMoradores)
	if !colOK || len(rows) == 0 {
		return ResidentStats{}, false
	}

	subset := make([]float64, len(rows))
	for j, i := range rows {
		subset[j] = values[i]
	}
	sort.Float64s(subset)

	n := len(subset)
	median := subset[n/2]
	if n%2 == 0 {
		median = (subset[n/2-1] + subset[n/2]) / 2
	}

	sum := 0.0
	for _, v := range subset {
		sum += v
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, v := range subset {
		variance += (v - mean) * (v - mean)
	}
	stddev := 0.0
	if n > 1 {
		// Sample standard deviation, matching the original panel.
		stddev = math.Sqrt(variance / float64(n-1))
	}

	return ResidentStats{
		Min:    subset[0],
		Max:    subset[n-1],
		Median: median,
		StdDev: stddev,
	}, true
}
