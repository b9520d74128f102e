package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguanorte/cadastro-cli/internal/schema"
)

func TestNormalize_CompletenessWithMissingColumns(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColMunicipio},
		Rows:   [][]string{{"Arapiraca"}, {"Maceió"}},
	}

	tbl, stats := Normalize(raw, cfg)

	require.Equal(t, 2, tbl.Len())
	for _, spec := range cfg.Columns {
		assert.True(t, tbl.Has(spec.Name), "column %s must exist", spec.Name)
	}
	assert.True(t, tbl.Has(schema.ColPossuiHidrometro))
	assert.Equal(t, len(cfg.Columns)-1, stats.DefaultedColumns)

	bairros, ok := tbl.Strings(schema.ColBairro)
	require.True(t, ok)
	assert.Equal(t, []string{"Não informado", "Não informado"}, bairros)

	moradores, ok := tbl.Numbers(schema.ColMoradores)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, moradores)
}

func TestNormalize_StringSentinelAndVerbatimValues(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColBairro},
		Rows:   [][]string{{""}, {"  Centro "}, {"centro"}},
	}

	tbl, _ := Normalize(raw, cfg)

	bairros, ok := tbl.Strings(schema.ColBairro)
	require.True(t, ok)
	// No trimming, no case folding; only missing values are replaced.
	assert.Equal(t, []string{"Não informado", "  Centro ", "centro"}, bairros)
}

func TestNormalize_NumericCoercion(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColMoradores},
		Rows:   [][]string{{"3"}, {"4.5"}, {"abc"}, {""}},
	}

	tbl, stats := Normalize(raw, cfg)

	moradores, ok := tbl.Numbers(schema.ColMoradores)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4.5, 0, 0}, moradores)
	// Only the non-empty unparseable value counts as a fallback.
	assert.Equal(t, 1, stats.CoercionFallbacks)
}

func TestNormalize_NonFiniteValuesCoercedToZero(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColMoradores, schema.ColMatricula},
		Rows: [][]string{
			{"NaN", "nan"},
			{"Inf", "-Inf"},
			{"3", "101"},
		},
	}

	tbl, stats := Normalize(raw, cfg)

	moradores, ok := tbl.Numbers(schema.ColMoradores)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 3}, moradores)

	matriculas, ok := tbl.Numbers(schema.ColMatricula)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 101}, matriculas)

	assert.Equal(t, 4, stats.CoercionFallbacks)
}

func TestNormalize_AliasMerge(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{"TOTAL_DE_MORADORES", "STATUS"},
		Rows:   [][]string{{"5", "ATIVA"}},
	}

	tbl, _ := Normalize(raw, cfg)

	moradores, ok := tbl.Numbers(schema.ColMoradores)
	require.True(t, ok)
	assert.Equal(t, []float64{5}, moradores)

	situacao, ok := tbl.Strings(schema.ColSituacaoLigacao)
	require.True(t, ok)
	assert.Equal(t, []string{"ATIVA"}, situacao)
}

func TestNormalize_AliasDoesNotOverrideCanonical(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColSituacaoLigacao, "STATUS"},
		Rows:   [][]string{{"ATIVA", "CORTADA"}},
	}

	tbl, _ := Normalize(raw, cfg)

	situacao, ok := tbl.Strings(schema.ColSituacaoLigacao)
	require.True(t, ok)
	assert.Equal(t, []string{"ATIVA"}, situacao)
}

func TestNormalize_MeterRule(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColSituacaoHidro},
		Rows: [][]string{
			{"NORMAL"}, {"normal"}, {"Quebrado"}, {"INSTALADO"},
			{"RETIRADO"}, {""},
		},
	}

	tbl, _ := Normalize(raw, cfg)

	meter, ok := tbl.Strings(schema.ColPossuiHidrometro)
	require.True(t, ok)
	assert.Equal(t, []string{
		schema.MeterYes, schema.MeterYes, schema.MeterYes, schema.MeterYes,
		schema.MeterNo, schema.MeterNo,
	}, meter)
}

func TestNormalize_Idempotent(t *testing.T) {
	cfg := schema.Default()
	raw := &Raw{
		Header: []string{schema.ColMunicipio, schema.ColBairro, "TOTAL_DE_MORADORES", schema.ColSituacaoHidro, schema.ColMatricula},
		Rows: [][]string{
			{"Arapiraca", "", "3", "NORMAL", "101"},
			{"Maceió", "Centro", "x", "", "102"},
		},
	}

	once, _ := Normalize(raw, cfg)

	// Re-normalize the first pass's output as if it had been re-read.
	header := once.Columns()
	rows := make([][]string, once.Len())
	for i := range rows {
		row := make([]string, len(header))
		for j, name := range header {
			if nums, ok := once.Numbers(name); ok {
				row[j] = formatNumber(nums[i])
				continue
			}
			strs, _ := once.Strings(name)
			row[j] = strs[i]
		}
		rows[i] = row
	}
	twice, stats := Normalize(&Raw{Header: header, Rows: rows}, cfg)

	assert.Zero(t, stats.DefaultedColumns)
	require.Equal(t, once.Len(), twice.Len())
	for _, name := range once.Columns() {
		if nums, ok := once.Numbers(name); ok {
			got, gotOK := twice.Numbers(name)
			require.True(t, gotOK, "column %s", name)
			assert.Equal(t, nums, got, "column %s", name)
			continue
		}
		strs, _ := once.Strings(name)
		got, gotOK := twice.Strings(name)
		require.True(t, gotOK, "column %s", name)
		assert.Equal(t, strs, got, "column %s", name)
	}
}

func TestNormalize_EmptyRaw(t *testing.T) {
	cfg := schema.Default()
	tbl, stats := Normalize(&Raw{}, cfg)

	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, stats.Rows)
	for _, spec := range cfg.Columns {
		assert.True(t, tbl.Has(spec.Name))
	}
}
