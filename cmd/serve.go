package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aguanorte/cadastro-cli/internal/ingest"
	"github.com/aguanorte/cadastro-cli/internal/metrics"
	"github.com/aguanorte/cadastro-cli/internal/schema"
	"github.com/aguanorte/cadastro-cli/internal/store"
	"github.com/aguanorte/cadastro-cli/internal/table"
)

var servePort int

// apiServer holds the dataset the HTTP handlers serve. A new upload
// replaces the table wholesale; there is no incremental update.
type apiServer struct {
	scfg  schema.Config
	store store.Store

	mu  sync.RWMutex
	tbl *table.Table

	uploads *rate.Limiter
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard metrics API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		api := &apiServer{
			scfg:  schema.Default(),
			store: s,
			uploads: rate.NewLimiter(
				rate.Every(time.Minute/time.Duration(max(cfg.Server.UploadPerMinute, 1))),
				max(cfg.Server.UploadBurst, 1),
			),
		}

		// Start from the latest cataloged snapshot when one exists.
		if rec, err := s.LatestLoad(ctx); err == nil && rec != nil {
			if tbl, _, loadErr := ingest.Load(rec.SnapshotPath, api.scfg); loadErr == nil {
				api.tbl = tbl
				zap.L().Info("serve: snapshot restored",
					zap.String("load_id", rec.ID),
					zap.Int("rows", tbl.Len()),
				)
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/upload", a.handleUpload)
	r.Get("/api/summary", a.handleSummary)
	r.Get("/api/ranking", a.handleRanking)
	r.Get("/api/duplicates", a.handleDuplicates)

	return r
}

func (a *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !a.uploads.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "upload rate exceeded"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(cfg.Server.MaxUploadMB)<<20)
	src, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer src.Close()

	stats, err := a.ingestUpload(r.Context(), src, hdr.Filename)
	if err != nil {
		zap.L().Error("upload failed", zap.String("filename", hdr.Filename), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "file could not be processed"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// ingestUpload spools the upload to a scratch file, normalizes it and
// swaps in the new table. The scratch file is removed on every path.
func (a *apiServer) ingestUpload(ctx context.Context, src io.Reader, filename string) (ingest.Stats, error) {
	tmp, err := os.CreateTemp("", "cadastro-upload-*"+filepath.Ext(filename))
	if err != nil {
		return ingest.Stats{}, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return ingest.Stats{}, err
	}
	if err := tmp.Close(); err != nil {
		return ingest.Stats{}, err
	}

	tbl, stats, err := ingest.Load(tmpPath, a.scfg)
	if err != nil {
		return ingest.Stats{}, err
	}

	id := uuid.NewString()
	snapshot := filepath.Join(cfg.Cache.Dir, id+".csv")
	if err := ingest.WriteSnapshot(tbl, snapshot); err != nil {
		return ingest.Stats{}, err
	}
	if err := a.store.RecordLoad(ctx, store.LoadRecord{
		ID:                id,
		SourceFile:        filename,
		Format:            string(ingest.DetectFormat(filename)),
		Rows:              stats.Rows,
		Columns:           stats.Columns,
		DefaultedColumns:  stats.DefaultedColumns,
		CoercionFallbacks: stats.CoercionFallbacks,
		SnapshotPath:      snapshot,
		LoadedAt:          time.Now(),
	}); err != nil {
		return ingest.Stats{}, err
	}

	a.mu.Lock()
	a.tbl = tbl
	a.mu.Unlock()
	return stats, nil
}

func (a *apiServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.currentTable()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no dataset loaded"})
		return
	}

	filters := a.queryFilters(tbl, r)
	rows := metrics.Apply(tbl, filters)

	payload := map[string]any{
		"summary": metrics.Summarize(tbl, rows, a.scfg),
	}
	dists := map[string][]metrics.ValueCount{}
	for _, b := range reportBreakdowns {
		if d := metrics.Distribution(tbl, rows, b.Column, b.TopN); d != nil {
			dists[b.Column] = d
		}
	}
	payload["distributions"] = dists
	if res, ok := metrics.Residents(tbl, rows); ok {
		payload["residents"] = res
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *apiServer) handleRanking(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.currentTable()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no dataset loaded"})
		return
	}

	win := metrics.Window{Mode: metrics.WindowAll}
	q := r.URL.Query()
	switch {
	case q.Get("today") == "true":
		win = metrics.Window{Mode: metrics.WindowToday}
	case q.Get("from") != "" && q.Get("to") != "":
		from, errFrom := time.Parse("2006-01-02", q.Get("from"))
		to, errTo := time.Parse("2006-01-02", q.Get("to"))
		if errFrom != nil || errTo != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from/to must be YYYY-MM-DD"})
			return
		}
		win = metrics.Window{Mode: metrics.WindowRange, From: from, To: to}
	case q.Get("month") != "":
		m, err := time.Parse("2006-01", q.Get("month"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		win = metrics.Window{Mode: metrics.WindowMonth, Year: m.Year(), Month: m.Month()}
	}

	writeJSON(w, http.StatusOK, metrics.Rank(tbl, tbl.AllRows(), win, a.scfg))
}

func (a *apiServer) handleDuplicates(w http.ResponseWriter, _ *http.Request) {
	tbl, ok := a.currentTable()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no dataset loaded"})
		return
	}

	all := tbl.AllRows()
	dupRows := metrics.DuplicateRows(tbl, all, a.scfg.DuplicateExcludeZero)
	extras := 0
	if ids, idsOK := tbl.Numbers(schema.ColMatricula); idsOK {
		extras = metrics.CountDuplicateExtras(ids, a.scfg.DuplicateExcludeZero)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"duplicate_extras": extras,
		"records":          len(dupRows),
	})
}

func (a *apiServer) currentTable() (*table.Table, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tbl, a.tbl != nil
}

func (a *apiServer) queryFilters(tbl *table.Table, r *http.Request) metrics.Filters {
	q := r.URL.Query()
	return filtersFromFlags(tbl, q["municipio"], q["bairro"], q["situacao"])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
