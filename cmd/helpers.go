package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/aguanorte/cadastro-cli/internal/ingest"
	"github.com/aguanorte/cadastro-cli/internal/metrics"
	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/store"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

// openStore opens the configured load-catalog backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		s, err = store.NewSQLite(cfg.Store.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// currentTable resolves the table a metric command operates on: an
// explicit --file, or the latest cataloged snapshot.
func currentTable(ctx context.Context, filePath string, scfg schema.Config) (*table.Table, error) {
	if filePath != "" {
		tbl, _, err := ingest.Load(filePath, scfg)
		return tbl, err
	}

	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	rec, err := s.LatestLoad(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, eris.New("no dataset loaded; run `cadastro load <file>` first or pass --file")
	}

	tbl, _, err := ingest.Load(rec.SnapshotPath, scfg)
	return tbl, err
}

// filtersFromFlags builds the row filters from the shared flag values.
// Omitted municipality/neighborhood selections default to all values, the
// dashboard's all-checked state; an explicitly empty selection would mean
// "show none".
func filtersFromFlags(tbl *table.Table, municipios, bairros, situacoes []string) metrics.Filters {
	f := metrics.Filters{
		Municipios: municipios,
		Bairros:    bairros,
		Situacoes:  situacoes,
	}
	if len(f.Municipios) == 0 {
		f.Municipios = metrics.DistinctValues(tbl, schema.ColMunicipio)
	}
	if len(f.Bairros) == 0 {
		f.Bairros = metrics.DistinctValues(tbl, schema.ColBairro)
	}
	f.FilterSituacao = len(situacoes) > 0
	return f
}
