package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

func TestDistribution_DescendingWithFirstEncounterTies(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColTipoVisita, []string{
		"NORMAL", "REVISITA", "NORMAL", "RECUSA", "REVISITA",
	}))

	dist := Distribution(tbl, tbl.AllRows(), schema.ColTipoVisita, 0)

	require.Len(t, dist, 3)
	// NORMAL and REVISITA tie at 2; NORMAL was encountered first.
	assert.Equal(t, ValueCount{"NORMAL", 2}, dist[0])
	assert.Equal(t, ValueCount{"REVISITA", 2}, dist[1])
	assert.Equal(t, ValueCount{"RECUSA", 1}, dist[2])
}

func TestDistribution_TopN(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColLogradouro, []string{
		"Rua A", "Rua A", "Rua B", "Rua C",
	}))

	dist := Distribution(tbl, tbl.AllRows(), schema.ColLogradouro, 2)
	require.Len(t, dist, 2)
	assert.Equal(t, "Rua A", dist[0].Value)
}

func TestDistribution_MissingColumnAndEmptySubset(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColQuadra, []string{"1"}))

	assert.Nil(t, Distribution(tbl, tbl.AllRows(), "MISSING", 0))
	assert.Empty(t, Distribution(tbl, nil, schema.ColQuadra, 0))
}

func TestResidents(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddNumeric(schema.ColMoradores, []float64{1, 2, 3, 4}))

	stats, ok := Residents(tbl, tbl.AllRows())
	require.True(t, ok)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 4.0, stats.Max)
	assert.InDelta(t, 2.5, stats.Median, 1e-9)
	assert.InDelta(t, 1.2909944487, stats.StdDev, 1e-6)
}

func TestResidents_EmptyOrMissing(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddNumeric(schema.ColMoradores, []float64{1}))

	_, ok := Residents(tbl, nil)
	assert.False(t, ok)

	noCol := table.New()
	require.NoError(t, noCol.AddString(schema.ColMunicipio, []string{"A"}))
	_, ok = Residents(noCol, noCol.AllRows())
	assert.False(t, ok)
}
