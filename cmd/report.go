package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aguanorte/cadastro-cli/internal/metrics"
	"github.com/aguanorte/cadastro-cli/internal/schema"
)

var (
	reportFile       string
	reportMunicipios []string
	reportBairros    []string
	reportSituacoes  []string
	reportJSON       bool
)

// reportBreakdowns lists the categorical panels and their top-N caps
// (0 = all values).
var reportBreakdowns = []struct {
	Title  string
	Column string
	TopN   int
}{
	{"Status de Ligação", schema.ColSituacaoLigacao, 0},
	{"Irregularidades Identificadas", schema.ColIrregularidade, 0},
	{"Tipo de Edificação", schema.ColTipoEdificacao, 0},
	{"Padrão do Imóvel", schema.ColPadraoImovel, 0},
	{"Top 15 Logradouros", schema.ColLogradouro, 15},
	{"Clientes por Quadra", schema.ColQuadra, 0},
	{"Tipo de Visita", schema.ColTipoVisita, 0},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summary KPIs and distributions for the filtered subset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		scfg := schema.Default()
		tbl, err := currentTable(cmd.Context(), reportFile, scfg)
		if err != nil {
			return err
		}

		filters := filtersFromFlags(tbl, reportMunicipios, reportBairros, reportSituacoes)
		rows := metrics.Apply(tbl, filters)
		summary := metrics.Summarize(tbl, rows, scfg)

		if reportJSON {
			payload := map[string]any{
				"summary":       summary,
				"distributions": map[string][]metrics.ValueCount{},
			}
			dists := payload["distributions"].(map[string][]metrics.ValueCount)
			for _, b := range reportBreakdowns {
				if d := metrics.Distribution(tbl, rows, b.Column, b.TopN); d != nil {
					dists[b.Column] = d
				}
			}
			if res, ok := metrics.Residents(tbl, rows); ok {
				payload["residents"] = res
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(payload)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total de clientes:      %d\n", summary.Total)
		fmt.Fprintf(out, "Com hidrômetro:         %.1f%%\n", summary.HydrometerPct)
		fmt.Fprintf(out, "Média de moradores:     %.1f\n", summary.MeanResidents)
		fmt.Fprintf(out, "Ligações clandestinas:  %d\n", summary.ClandestineCount)
		fmt.Fprintf(out, "Matrículas duplicadas:  %d\n", summary.DuplicateExtras)

		if res, ok := metrics.Residents(tbl, rows); ok {
			fmt.Fprintf(out, "Moradores (min/mediana/max/desvio): %.0f / %.1f / %.0f / %.2f\n",
				res.Min, res.Median, res.Max, res.StdDev)
		}

		for _, b := range reportBreakdowns {
			dist := metrics.Distribution(tbl, rows, b.Column, b.TopN)
			if dist == nil {
				continue
			}
			fmt.Fprintf(out, "\n%s\n", b.Title)
			w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
			for _, vc := range dist {
				fmt.Fprintf(w, "  %s\t%d\n", vc.Value, vc.Count)
			}
			w.Flush()
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFile, "file", "", "source file (default: latest loaded dataset)")
	reportCmd.Flags().StringSliceVar(&reportMunicipios, "municipio", nil, "municipality filter (default: all)")
	reportCmd.Flags().StringSliceVar(&reportBairros, "bairro", nil, "neighborhood filter (default: all)")
	reportCmd.Flags().StringSliceVar(&reportSituacoes, "situacao", nil, "connection-status filter (default: off)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(reportCmd)
}
