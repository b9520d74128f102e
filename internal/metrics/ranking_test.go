package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

func rankingTable(t *testing.T, agents, dates []string) *table.Table {
	t.Helper()
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColReambulador, agents))
	require.NoError(t, tbl.AddString(schema.ColDataColeta, dates))
	return tbl
}

func TestRank_TiesPreserveFirstEncounterOrder(t *testing.T) {
	// B appears before A in the data but A's first visit row comes first.
	agents := []string{"Ana", "Bruno", "Ana", "Bruno", "Ana", "Bruno", "Carla"}
	dates := make([]string, len(agents))
	for i := range dates {
		dates[i] = "2025-03-10 08:00:00"
	}
	tbl := rankingTable(t, agents, dates)

	r := Rank(tbl, tbl.AllRows(), Window{Mode: WindowAll}, schema.Default())

	require.Len(t, r.Agents, 3)
	assert.Equal(t, "Ana", r.Agents[0].Agent)
	assert.Equal(t, "Bruno", r.Agents[1].Agent)
	assert.Equal(t, "Carla", r.Agents[2].Agent)
	assert.Equal(t, 3, r.AgentCount)
	assert.Equal(t, 7, r.Total)
	assert.InDelta(t, 7.0/3.0, r.MeanVisits, 1e-9)
	assert.Equal(t, 3, r.MaxVisits)
}

func TestRank_ExcludesBlankAndNanAgents(t *testing.T) {
	cfg := schema.Default()
	tbl := rankingTable(t,
		[]string{"Ana", "", "nan", "NaN", cfg.StringSentinel, "Ana"},
		[]string{"2025-03-10", "2025-03-10", "2025-03-10", "2025-03-10", "2025-03-10", "2025-03-11"},
	)

	r := Rank(tbl, tbl.AllRows(), Window{Mode: WindowAll}, cfg)

	require.Len(t, r.Agents, 1)
	assert.Equal(t, AgentVisits{Agent: "Ana", Visits: 2, First: "00:00", Last: "00:00"}, r.Agents[0])
}

func TestRank_MonthWindow(t *testing.T) {
	tbl := rankingTable(t,
		[]string{"Ana", "Ana", "Bruno", "Bruno"},
		[]string{"2025-02-27 09:00:00", "2025-03-01 10:00:00", "2025-03-15 11:00:00", "2025-04-01 12:00:00"},
	)

	r := Rank(tbl, tbl.AllRows(), Window{Mode: WindowMonth, Year: 2025, Month: time.March}, schema.Default())

	assert.Equal(t, 2, r.Total)
	require.Len(t, r.Agents, 2)
	assert.Equal(t, 1, r.Agents[0].Visits)
	assert.Equal(t, 1, r.Agents[1].Visits)
}

func TestRank_RangeWindowInclusive(t *testing.T) {
	tbl := rankingTable(t,
		[]string{"Ana", "Ana", "Ana"},
		[]string{"2025-03-09 23:59:00", "2025-03-10 00:00:00", "2025-03-12 08:00:00"},
	)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	r := Rank(tbl, tbl.AllRows(), Window{Mode: WindowRange, From: from, To: to}, schema.Default())

	assert.Equal(t, 2, r.Total)
}

func TestRank_TodayWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	tbl := rankingTable(t,
		[]string{"Ana", "Ana", "Bruno"},
		[]string{"2025-03-10 08:12:00", "2025-03-10 17:45:00", "2025-03-09 08:00:00"},
	)

	r := Rank(tbl, tbl.AllRows(), Window{Mode: WindowToday, Now: now}, schema.Default())

	require.Len(t, r.Agents, 1)
	assert.Equal(t, "Ana", r.Agents[0].Agent)
	assert.Equal(t, 2, r.Agents[0].Visits)
	assert.Equal(t, "08:12", r.Agents[0].First)
	assert.Equal(t, "17:45", r.Agents[0].Last)
}

func TestRank_UnparseableDatesExcludedFromWindows(t *testing.T) {
	tbl := rankingTable(t,
		[]string{"Ana", "Ana"},
		[]string{"garbage", "2025-03-10"},
	)

	all := Rank(tbl, tbl.AllRows(), Window{Mode: WindowAll}, schema.Default())
	assert.Equal(t, 2, all.Total)

	month := Rank(tbl, tbl.AllRows(), Window{Mode: WindowMonth, Year: 2025, Month: time.March}, schema.Default())
	assert.Equal(t, 1, month.Total)
}

func TestRank_MissingAgentColumn(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddString(schema.ColDataColeta, []string{"2025-03-10"}))

	r := Rank(tbl, tbl.AllRows(), Window{Mode: WindowAll}, schema.Default())
	assert.Zero(t, r.Total)
	assert.Empty(t, r.Agents)
}

func TestParseCollectionDate_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2025-03-10 08:15:00", true, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC)},
		{"2025-03-10T08:15:00", true, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC)},
		{"2025-03-10", true, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"10/03/2025 08:15:00", true, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC)},
		{"10/03/2025", true, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"not a date", false, time.Time{}},
	}
	for _, tt := range tests {
		got, ok := ParseCollectionDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.True(t, got.Equal(tt.want), "%s: got %v", tt.in, got)
		}
	}
}
