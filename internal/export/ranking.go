// Package export writes the downloadable artifacts: the productivity
// ranking as CSV and the duplicate-registration records as a formatted
// spreadsheet.
package export

import (
	"encoding/csv"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/aguanorte/cadastro-cli/internal/metrics"
)

// WriteRankingCSV writes the full productivity ranking. The file starts
// with a UTF-8 BOM so Excel opens the accented agent names correctly.
func WriteRankingCSV(ranking metrics.Ranking, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create ranking csv")
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	// Write the header explicitly so an empty ranking still produces a
	// well-formed file.
	if err := enc.EncodeHeader(metrics.AgentVisits{}); err != nil {
		return eris.Wrap(err, "export: encode header")
	}
	if err := enc.Encode(ranking.Agents); err != nil {
		return eris.Wrap(err, "export: encode ranking")
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush ranking csv")
}
