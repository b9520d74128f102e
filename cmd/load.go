package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aguanorte/cadastro-cli/internal/ingest"
	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/store"
)

const loadConcurrency = 4

var loadCmd = &cobra.Command{
	Use:   "load <file>...",
	Short: "Ingest and normalize registration exports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scfg := schema.Default()

		s, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer s.Close()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(loadConcurrency)

		for _, path := range args {
			path := path
			g.Go(func() error {
				tbl, stats, err := ingest.Load(path, scfg)
				if err != nil {
					return eris.Wrapf(err, "load %s", path)
				}

				id := uuid.NewString()
				snapshot := filepath.Join(cfg.Cache.Dir, id+".csv")
				if err := ingest.WriteSnapshot(tbl, snapshot); err != nil {
					return err
				}

				rec := store.LoadRecord{
					ID:                id,
					SourceFile:        path,
					Format:            string(ingest.DetectFormat(path)),
					Rows:              stats.Rows,
					Columns:           stats.Columns,
					DefaultedColumns:  stats.DefaultedColumns,
					CoercionFallbacks: stats.CoercionFallbacks,
					SnapshotPath:      snapshot,
					LoadedAt:          time.Now(),
				}
				if err := s.RecordLoad(gctx, rec); err != nil {
					return err
				}

				zap.L().Info("load complete",
					zap.String("file", path),
					zap.String("load_id", id),
					zap.Int("rows", stats.Rows),
					zap.Int("defaulted_columns", stats.DefaultedColumns),
					zap.Int("coercion_fallbacks", stats.CoercionFallbacks),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows (%d columns defaulted, %d values coerced to zero)\n",
					path, stats.Rows, stats.DefaultedColumns, stats.CoercionFallbacks)
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
