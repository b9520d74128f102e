package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aguanorte/cadastro-cli/internal/export"
	"github.com/aguanorte/cadastro-cli/internal/metrics"
	"github.com/aguanorte/cadastro-cli/internal/schema"
)

var (
	duplicatesFile string
	duplicatesXLSX string
	duplicatesJSON bool
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Detect duplicated registration ids",
	RunE: func(cmd *cobra.Command, _ []string) error {
		scfg := schema.Default()
		tbl, err := currentTable(cmd.Context(), duplicatesFile, scfg)
		if err != nil {
			return err
		}

		all := tbl.AllRows()
		dupRows := metrics.DuplicateRows(tbl, all, scfg.DuplicateExcludeZero)
		ids, _ := tbl.Numbers(schema.ColMatricula)

		extras := 0
		if ids != nil {
			extras = metrics.CountDuplicateExtras(ids, scfg.DuplicateExcludeZero)
		}

		if duplicatesXLSX != "" {
			if err := export.WriteDuplicatesXLSX(tbl, dupRows, duplicatesXLSX); err != nil {
				return err
			}
			zap.L().Info("duplicates exported", zap.String("path", duplicatesXLSX))
		}

		if duplicatesJSON {
			matriculas := make([]string, len(dupRows))
			for i, r := range dupRows {
				matriculas[i] = export.MatriculaLabel(ids[r])
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"duplicate_extras": extras,
				"records":          len(dupRows),
				"matriculas":       matriculas,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Matrículas duplicadas: %d extras em %d registros\n", extras, len(dupRows))
		for _, r := range dupRows {
			fmt.Fprintf(out, "  %s\n", export.MatriculaLabel(ids[r]))
		}
		return nil
	},
}

func init() {
	duplicatesCmd.Flags().StringVar(&duplicatesFile, "file", "", "source file (default: latest loaded dataset)")
	duplicatesCmd.Flags().StringVar(&duplicatesXLSX, "xlsx", "", "write duplicated records to a formatted spreadsheet")
	duplicatesCmd.Flags().BoolVar(&duplicatesJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(duplicatesCmd)
}
