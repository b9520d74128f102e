package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

func summaryTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColPossuiHidrometro, []string{
		schema.MeterYes, schema.MeterYes, schema.MeterNo, schema.MeterYes,
	}))
	require.NoError(t, tbl.AddNumeric(schema.ColMoradores, []float64{2, 0, 4, 0}))
	require.NoError(t, tbl.AddString(schema.ColIrregularidade, []string{
		"LIGAÇÃO CLANDESTINA", "Não informado", "ligacao clandestina identificada", "HIDRÔMETRO VIOLADO",
	}))
	require.NoError(t, tbl.AddNumeric(schema.ColMatricula, []float64{5, 5, 7, 0}))
	return tbl
}

func TestSummarize(t *testing.T) {
	tbl := summaryTable(t)
	cfg := schema.Default()

	s := Summarize(tbl, tbl.AllRows(), cfg)

	assert.Equal(t, 4, s.Total)
	assert.InDelta(t, 75.0, s.HydrometerPct, 1e-9)
	// Zero-resident rows are excluded from the mean: (2+4)/2.
	assert.InDelta(t, 3.0, s.MeanResidents, 1e-9)
	// Case- and accent-insensitive substring match.
	assert.Equal(t, 2, s.ClandestineCount)
	// 5 occurs twice: one extra.
	assert.Equal(t, 1, s.DuplicateExtras)
}

func TestSummarize_EmptySubset(t *testing.T) {
	tbl := summaryTable(t)
	cfg := schema.Default()

	s := Summarize(tbl, nil, cfg)

	assert.Equal(t, 0, s.Total)
	assert.Zero(t, s.HydrometerPct)
	assert.Zero(t, s.MeanResidents)
	assert.Zero(t, s.ClandestineCount)
	assert.Zero(t, s.DuplicateExtras)
}

func TestSummarize_MissingColumnsDegrade(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColMunicipio, []string{"Arapiraca"}))

	s := Summarize(tbl, tbl.AllRows(), schema.Default())

	assert.Equal(t, 1, s.Total)
	assert.Zero(t, s.HydrometerPct)
	assert.Zero(t, s.MeanResidents)
	assert.Zero(t, s.ClandestineCount)
	assert.Zero(t, s.DuplicateExtras)
}

func TestSummarize_PlainMeanPolicy(t *testing.T) {
	tbl := summaryTable(t)
	cfg := schema.Default()
	cfg.MeanIgnoreZeroResidents = false

	s := Summarize(tbl, tbl.AllRows(), cfg)
	// (2+0+4+0)/4.
	assert.InDelta(t, 1.5, s.MeanResidents, 1e-9)
}

func TestCountClandestine_AccentAndCaseFolding(t *testing.T) {
	tbl := summaryTable(t)

	assert.Equal(t, 2, CountClandestine(tbl, tbl.AllRows(), "LIGAÇÃO CLANDESTINA"))
	assert.Equal(t, 2, CountClandestine(tbl, tbl.AllRows(), "ligacao clandestina"))
	assert.Equal(t, 0, CountClandestine(tbl, tbl.AllRows(), ""))
}
