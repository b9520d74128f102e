// Package table holds the in-memory columnar table the pipeline operates
// on. A Table is built once by ingestion, then treated as read-only by the
// metrics stage; subsets are expressed as row-index slices rather than
// copies.
package table

import (
	"github.com/rotisserie/eris"
)

// Kind is the storage type of a column.
type Kind int

const (
	String Kind = iota
	Numeric
)

// Column is a single named column. Exactly one of Str/Num is populated,
// according to Kind.
type Column struct {
	Name string
	Kind Kind
	Str  []string
	Num  []float64
}

func (c *Column) len() int {
	if c.Kind == Numeric {
		return len(c.Num)
	}
	return len(c.Str)
}

// Table is a fixed-width columnar table. All columns have the same length.
type Table struct {
	cols   []*Column
	byName map[string]int
	nrows  int
}

// New returns an empty table.
func New() *Table {
	return &Table{byName: make(map[string]int)}
}

// AddString appends a string column. The first column added fixes the row
// count; later columns must match it.
func (t *Table) AddString(name string, values []string) error {
	return t.add(&Column{Name: name, Kind: String, Str: values})
}

// AddNumeric appends a numeric column.
func (t *Table) AddNumeric(name string, values []float64) error {
	return t.add(&Column{Name: name, Kind: Numeric, Num: values})
}

func (t *Table) add(col *Column) error {
	if _, exists := t.byName[col.Name]; exists {
		return eris.Errorf("table: duplicate column %q", col.Name)
	}
	if len(t.cols) > 0 && col.len() != t.nrows {
		return eris.Errorf("table: column %q has %d rows, table has %d", col.Name, col.len(), t.nrows)
	}
	if len(t.cols) == 0 {
		t.nrows = col.len()
	}
	t.byName[col.Name] = len(t.cols)
	t.cols = append(t.cols, col)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.nrows }

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Strings returns a string column's values. ok is false when the column is
// missing or numeric; metric code degrades instead of panicking.
func (t *Table) Strings(name string) ([]string, bool) {
	i, ok := t.byName[name]
	if !ok || t.cols[i].Kind != String {
		return nil, false
	}
	return t.cols[i].Str, true
}

// Numbers returns a numeric column's values.
func (t *Table) Numbers(name string) ([]float64, bool) {
	i, ok := t.byName[name]
	if !ok || t.cols[i].Kind != Numeric {
		return nil, false
	}
	return t.cols[i].Num, true
}

// Kind returns a column's kind.
func (t *Table) Kind(name string) (Kind, bool) {
	i, ok := t.byName[name]
	if !ok {
		return 0, false
	}
	return t.cols[i].Kind, true
}

// AllRows returns the index slice covering every row.
func (t *Table) AllRows() []int {
	rows := make([]int, t.nrows)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
