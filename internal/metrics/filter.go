// Package metrics computes the dashboard's derived numbers over a
// normalized table: filtered subsets, scalar KPIs, categorical
// distributions, duplicate-registration detection and the field-agent
// productivity ranking. Every function degrades to a zero/neutral result
// on missing columns or empty subsets; nothing here raises past the
// aggregation boundary.
package metrics

import (
	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// Filters holds the operator's selections. Municipality and neighborhood
// selections are always active; an empty selection means "show none", by
// design. The status filter applies only when FilterSituacao is set.
type Filters struct {
	Municipios     []string `json:"municipios"`
	Bairros        []string `json:"bairros"`
	Situacoes      []string `json:"situacoes"`
	FilterSituacao bool     `json:"filter_situacao"`
}

// Apply returns the indices of rows matching every active filter.
func Apply(tbl *table.Table, f Filters) []int {
	municipios, _ := tbl.Strings(schema.ColMunicipio)
	bairros, _ := tbl.Strings(schema.ColBairro)
	situacoes, _ := tbl.Strings(schema.ColSituacaoLigacao)

	wantMunicipio := toSet(f.Municipios)
	wantBairro := toSet(f.Bairros)
	wantSituacao := toSet(f.Situacoes)

	var rows []int
	for i := 0; i < tbl.Len(); i++ {
		if municipios != nil && !wantMunicipio[municipios[i]] {
			continue
		}
		if bairros != nil && !wantBairro[bairros[i]] {
			continue
		}
		if f.FilterSituacao && (situacoes == nil || !wantSituacao[situacoes[i]]) {
			continue
		}
		rows = append(rows, i)
	}
	return rows
}

// SelectAll returns a Filters value that passes every row through, the
// equivalent of the dashboard's default all-selected checkboxes.
func SelectAll(tbl *table.Table) Filters {
	return Filters{
		Municipios: DistinctValues(tbl, schema.ColMunicipio),
		Bairros:    DistinctValues(tbl, schema.ColBairro),
	}
}

// DistinctValues lists a string column's distinct values in
// first-encountered order. Missing columns yield nil.
func DistinctValues(tbl *table.Table, col string) []string {
	values, ok := tbl.Strings(col)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, 16)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
