package ingest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/aguanorte/cadastro-cli/internal/table"
)

// WriteSnapshot persists a normalized table as CSV so later commands can
// reload it through the ordinary ingest path. Numbers are formatted for
// exact round-trip; reloading a snapshot re-runs Normalize, which is a
// no-op on its own output.
func WriteSnapshot(tbl *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "snapshot: create dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "snapshot: create file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	cols := tbl.Columns()
	if err := w.Write(cols); err != nil {
		return eris.Wrap(err, "snapshot: write header")
	}

	row := make([]string, len(cols))
	for i := 0; i < tbl.Len(); i++ {
		for j, name := range cols {
			if nums, ok := tbl.Numbers(name); ok {
				row[j] = formatNumber(nums[i])
				continue
			}
			strs, _ := tbl.Strings(name)
			row[j] = strs[i]
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "snapshot: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "snapshot: flush")
}

// formatNumber renders a float so it parses back to the same value.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
