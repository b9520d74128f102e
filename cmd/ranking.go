package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aguanorte/cadastro-cli/internal/export"
	"github.com/aguanorte/cadastro-cli/internal/metrics"
	"github.com/aguanorte/cadastro-cli/internal/schema"
)

var (
	rankingFile  string
	rankingToday bool
	rankingFrom  string
	rankingTo    string
	rankingMonth string
	rankingCSV   string
	rankingJSON  bool
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Field-agent productivity ranking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		scfg := schema.Default()
		tbl, err := currentTable(cmd.Context(), rankingFile, scfg)
		if err != nil {
			return err
		}

		win, err := rankingWindow()
		if err != nil {
			return err
		}

		ranking := metrics.Rank(tbl, tbl.AllRows(), win, scfg)

		if rankingCSV != "" {
			if err := export.WriteRankingCSV(ranking, rankingCSV); err != nil {
				return err
			}
			zap.L().Info("ranking exported", zap.String("path", rankingCSV))
		}

		if rankingJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(ranking)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Reambuladores: %d  Visitas: %d  Média: %.1f  Máximo: %d\n\n",
			ranking.AgentCount, ranking.Total, ranking.MeanVisits, ranking.MaxVisits)

		w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tREAMBULADOR\tVISITAS\tPRIMEIRA\tULTIMA")
		for i, a := range ranking.Agents {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", i+1, a.Agent, a.Visits, a.First, a.Last)
		}
		return w.Flush()
	},
}

// rankingWindow translates the date flags into a ranking window. Flags are
// mutually exclusive in spirit; the most specific one wins in the order
// today > range > month.
func rankingWindow() (metrics.Window, error) {
	switch {
	case rankingToday:
		return metrics.Window{Mode: metrics.WindowToday}, nil

	case rankingFrom != "" || rankingTo != "":
		if rankingFrom == "" || rankingTo == "" {
			return metrics.Window{}, eris.New("--from and --to must be given together")
		}
		from, err := time.Parse("2006-01-02", rankingFrom)
		if err != nil {
			return metrics.Window{}, eris.Wrap(err, "parse --from")
		}
		to, err := time.Parse("2006-01-02", rankingTo)
		if err != nil {
			return metrics.Window{}, eris.Wrap(err, "parse --to")
		}
		return metrics.Window{Mode: metrics.WindowRange, From: from, To: to}, nil

	case rankingMonth != "":
		m, err := time.Parse("2006-01", rankingMonth)
		if err != nil {
			return metrics.Window{}, eris.Wrap(err, "parse --month")
		}
		return metrics.Window{Mode: metrics.WindowMonth, Year: m.Year(), Month: m.Month()}, nil

	default:
		return metrics.Window{Mode: metrics.WindowAll}, nil
	}
}

func init() {
	rankingCmd.Flags().StringVar(&rankingFile, "file", "", "source file (default: latest loaded dataset)")
	rankingCmd.Flags().BoolVar(&rankingToday, "today", false, "restrict to today's visits")
	rankingCmd.Flags().StringVar(&rankingFrom, "from", "", "range start, YYYY-MM-DD (inclusive)")
	rankingCmd.Flags().StringVar(&rankingTo, "to", "", "range end, YYYY-MM-DD (inclusive)")
	rankingCmd.Flags().StringVar(&rankingMonth, "month", "", "calendar month, YYYY-MM")
	rankingCmd.Flags().StringVar(&rankingCSV, "csv", "", "write the full ranking to a CSV file")
	rankingCmd.Flags().BoolVar(&rankingJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(rankingCmd)
}
