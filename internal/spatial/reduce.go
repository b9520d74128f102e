// Package spatial downsamples registration coordinates for map display.
// The reduction is lossy grid aggregation, not exact budget compliance:
// points are snapped to a ~100m grid and grouped, carrying group counts.
package spatial

import (
	"math"
	"math/rand"
	"sort"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// sampleSeed fixes the fallback sampler so repeated renders of the same
// table show the same points.
const sampleSeed = 42

// Point is one map marker. Count is the number of source rows the marker
// represents (1 before reduction).
type Point struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Status string  `json:"status"`
	Count  int     `json:"count"`
}

// FromTable extracts map points for the subset. ok is false when the
// coordinate columns are missing, in which case grid grouping is not
// possible and callers fall back to sampling.
func FromTable(tbl *table.Table, rows []int) ([]Point, bool) {
	lats, latOK := tbl.Numbers(schema.ColLatitude)
	lons, lonOK := tbl.Numbers(schema.ColLongitude)
	status, _ := tbl.Strings(schema.ColSituacaoLigacao)

	points := make([]Point, len(rows))
	for j, i := range rows {
		p := Point{Count: 1}
		if latOK {
			p.Lat = lats[i]
		}
		if lonOK {
			p.Lon = lons[i]
		}
		if status != nil {
			p.Status = status[i]
		}
		points[j] = p
	}
	return points, latOK && lonOK
}

// ReduceTable applies the full reduction contract to a subset: under
// budget the points pass through unchanged; otherwise they are grid-
// grouped, or uniformly sampled with a fixed seed when the coordinate
// columns are missing.
func ReduceTable(tbl *table.Table, rows []int, budget int) []Point {
	points, canGroup := FromTable(tbl, rows)
	if budget <= 0 || len(points) <= budget {
		return points
	}
	if !canGroup {
		return Sample(points, budget)
	}
	return Reduce(points, budget)
}

// Reduce grid-groups points when over budget: latitude and longitude are
// rounded to 3 decimal places and each (lat, lon, status) cell collapses
// to one point carrying the cell's row count. Cells keep first-encountered
// order.
func Reduce(points []Point, budget int) []Point {
	if budget <= 0 || len(points) <= budget {
		return points
	}

	type cell struct {
		lat, lon float64
		status   string
	}
	counts := make(map[cell]int, budget)
	var order []cell
	for _, p := range points {
		c := cell{lat: round3(p.Lat), lon: round3(p.Lon), status: p.Status}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c] += p.Count
	}

	out := make([]Point, len(order))
	for i, c := range order {
		out[i] = Point{Lat: c.lat, Lon: c.lon, Status: c.status, Count: counts[c]}
	}
	return out
}

// Sample uniformly samples points down to the budget with a fixed seed,
// preserving source order of the kept points.
func Sample(points []Point, budget int) []Point {
	if budget <= 0 || len(points) <= budget {
		return points
	}
	rng := rand.New(rand.NewSource(sampleSeed))
	keep := rng.Perm(len(points))[:budget]
	sort.Ints(keep)

	out := make([]Point, budget)
	for i, idx := range keep {
		out[i] = points[idx]
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
