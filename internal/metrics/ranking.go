package metrics

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// WindowMode selects how the ranking window restricts rows by collection
// date.
type WindowMode int

const (
	WindowAll WindowMode = iota
	WindowToday
	WindowRange
	WindowMonth
)

// Window is the caller-chosen date restriction for the productivity
// ranking. Now anchors the "today" mode; the zero value means time.Now().
type Window struct {
	Mode  WindowMode
	From  time.Time // WindowRange, inclusive
	To    time.Time // WindowRange, inclusive
	Year  int       // WindowMonth
	Month time.Month
	Now   time.Time
}

// collectionLayouts are the timestamp formats seen in DATA_COLETA across
// export generations: ISO with and without time, and the Brazilian
// day-first forms.
var collectionLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseCollectionDate parses a DATA_COLETA value, trying each known
// layout.
func ParseCollectionDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range collectionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgentVisits is one row of the productivity ranking.
type AgentVisits struct {
	Agent  string `json:"agent" csv:"REAMBULADOR"`
	Visits int    `json:"visits" csv:"VISITAS"`
	First  string `json:"first,omitempty" csv:"PRIMEIRA_COLETA"`
	Last   string `json:"last,omitempty" csv:"ULTIMA_COLETA"`
}

// Ranking is the productivity ranking plus its aggregate stats.
type Ranking struct {
	Agents     []AgentVisits `json:"agents"`
	AgentCount int           `json:"agent_count"`
	Total      int           `json:"total_visits"`
	MeanVisits float64       `json:"mean_visits"`
	MaxVisits  int           `json:"max_visits"`
}

// Rank groups the date-windowed subset by field agent and orders agents by
// descending visit count, ties in first-encountered order. Blank, "nan"
// and not-informed agent names are excluded. Per-agent First/Last are the
// earliest and latest time-of-day among the agent's visits in the window,
// for display.
func Rank(tbl *table.Table, rows []int, win Window, cfg schema.Config) Ranking {
	agents, ok := tbl.Strings(schema.ColReambulador)
	if !ok {
		return Ranking{}
	}
	dates, hasDates := tbl.Strings(schema.ColDataColeta)

	type agg struct {
		visits      int
		first, last time.Time
		hasTime     bool
	}
	byAgent := make(map[string]*agg, 32)
	var order []string
	unparsed := 0

	for _, i := range rows {
		name := agents[i]
		if excludedAgent(name, cfg.StringSentinel) {
			continue
		}

		var ts time.Time
		parsed := false
		if hasDates {
			ts, parsed = ParseCollectionDate(dates[i])
			if !parsed && win.Mode != WindowAll {
				unparsed++
				continue
			}
		} else if win.Mode != WindowAll {
			continue
		}

		if !inWindow(ts, parsed, win) {
			continue
		}

		a, seen := byAgent[name]
		if !seen {
			a = &agg{}
			byAgent[name] = a
			order = append(order, name)
		}
		a.visits++
		if parsed {
			if !a.hasTime || ts.Before(a.first) {
				a.first = ts
			}
			if !a.hasTime || ts.After(a.last) {
				a.last = ts
			}
			a.hasTime = true
		}
	}

	if unparsed > 0 {
		zap.L().Debug("ranking: unparseable collection dates excluded",
			zap.Int("rows", unparsed),
		)
	}

	out := Ranking{AgentCount: len(order)}
	out.Agents = make([]AgentVisits, 0, len(order))
	for _, name := range order {
		a := byAgent[name]
		row := AgentVisits{Agent: name, Visits: a.visits}
		if a.hasTime {
			row.First = a.first.Format("15:04")
			row.Last = a.last.Format("15:04")
		}
		out.Agents = append(out.Agents, row)
		out.Total += a.visits
		if a.visits > out.MaxVisits {
			out.MaxVisits = a.visits
		}
	}
	sort.SliceStable(out.Agents, func(a, b int) bool {
		return out.Agents[a].Visits > out.Agents[b].Visits
	})
	if out.AgentCount > 0 {
		out.MeanVisits = float64(out.Total) / float64(out.AgentCount)
	}
	return out
}

func excludedAgent(name, sentinel string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed == "" || strings.EqualFold(trimmed, "nan") || trimmed == sentinel
}

func inWindow(ts time.Time, parsed bool, win Window) bool {
	switch win.Mode {
	case WindowToday:
		now := win.Now
		if now.IsZero() {
			now = time.Now()
		}
		return parsed && sameDay(ts, now)
	case WindowRange:
		day := dateOnly(ts)
		return parsed && !day.Before(dateOnly(win.From)) && !day.After(dateOnly(win.To))
	case WindowMonth:
		return parsed && ts.Year() == win.Year && ts.Month() == win.Month
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
