package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/spatial"
)

var (
	pointsFile    string
	pointsBudget  int
	pointsGeoJSON string
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Reduce registration coordinates for map display",
	RunE: func(cmd *cobra.Command, _ []string) error {
		scfg := schema.Default()
		tbl, err := currentTable(cmd.Context(), pointsFile, scfg)
		if err != nil {
			return err
		}

		budget := pointsBudget
		if budget == 0 {
			budget = cfg.Points.Budget
		}

		reduced := spatial.ReduceTable(tbl, tbl.AllRows(), budget)
		zap.L().Info("points reduced",
			zap.Int("input", tbl.Len()),
			zap.Int("output", len(reduced)),
			zap.Int("budget", budget),
		)

		if pointsGeoJSON != "" {
			data, err := spatial.EncodeGeoJSON(reduced)
			if err != nil {
				return err
			}
			if err := os.WriteFile(pointsGeoJSON, data, 0o644); err != nil {
				return eris.Wrap(err, "write geojson")
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d points (from %d rows, budget %d)\n",
			len(reduced), tbl.Len(), budget)
		return nil
	},
}

func init() {
	pointsCmd.Flags().StringVar(&pointsFile, "file", "", "source file (default: latest loaded dataset)")
	pointsCmd.Flags().IntVar(&pointsBudget, "budget", 0, "maximum point budget (default from config)")
	pointsCmd.Flags().StringVar(&pointsGeoJSON, "geojson", "", "write reduced points as GeoJSON")
	rootCmd.AddCommand(pointsCmd)
}
