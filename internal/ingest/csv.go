package ingest

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// readCSV reads a comma-delimited file. Field counts are not enforced:
// field-agent exports frequently carry ragged trailing columns, so short
// rows are padded and long rows truncated to the header width.
func readCSV(path string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	if len(records) == 0 {
		return nil, eris.New("csv: empty file")
	}

	header := records[0]
	if len(header) > 0 {
		// Excel writes a UTF-8 BOM in front of the first header cell.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, fitRow(rec, len(header)))
	}

	return &Raw{Header: header, Rows: rows}, nil
}

func fitRow(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	fitted := make([]string, width)
	copy(fitted, rec)
	return fitted
}
