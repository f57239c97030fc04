package main

import (
	"context"
	"encoding/json"
	"errors"
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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/ingest"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/publish"
	"github.com/sells-group/netusage/internal/source"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots, metrics and the import trigger over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		server := cfg.Server
		if servePort != 0 {
			server.Port = servePort
		}
		if err := server.Validate(); err != nil {
			return err
		}
		port := server.Port

		api := newAPIServer(ctx, env.Pipeline, clock, cfg.Publish.Dir, cfg.Schedule.LagMonths)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.Router(server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		api.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer exposes health, metrics, published snapshots and an
// asynchronous import trigger. At most one triggered import runs at a time.
type apiServer struct {
	ctx         context.Context
	runner      importRunner
	clock       clockwork.Clock
	snapshotDir string
	lag         int

	running sync.Mutex
	wg      sync.WaitGroup
}

func newAPIServer(ctx context.Context, runner importRunner, c clockwork.Clock, snapshotDir string, lag int) *apiServer {
	return &apiServer{ctx: ctx, runner: runner, clock: c, snapshotDir: snapshotDir, lag: lag}
}

// Router builds the chi router.
func (a *apiServer) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/snapshots/{carrier}", a.handleSnapshot)
	r.Post("/imports", a.handleImport)
	return r
}

// Wait blocks until triggered imports have finished.
func (a *apiServer) Wait() {
	a.wg.Wait()
}

func (a *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "carrier")
	id, ok := source.ParseCarrierKey(key)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "carrier must be a numeric id"})
		return
	}

	data, err := os.ReadFile(filepath.Join(a.snapshotDir, publish.SnapshotName(id)))
	if errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "snapshot not found"})
		return
	}
	if err != nil {
		zap.L().Error("read snapshot failed", zap.Int64("carrier_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type importRequest struct {
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Only        []string `json:"only"`
	SkipPublish bool     `json:"skip_publish"`
}

func (a *apiServer) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p, err := resolvePeriod(a.clock, req.Year, req.Month, a.lag)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if !a.running.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "an import is already running"})
		return
	}

	opts := ingest.RunOpts{Only: req.Only, SkipPublish: req.SkipPublish}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.running.Unlock()
		a.runImport(p, opts)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"period": p.String(),
	})
}

func (a *apiServer) runImport(p model.Period, opts ingest.RunOpts) {
	log := zap.L().With(zap.String("component", "serve"), zap.Stringer("period", p))
	sum, err := a.runner.ImportAll(a.ctx, p, opts)
	if err != nil {
		log.Error("triggered import failed", zap.Error(err))
		return
	}
	log.Info("triggered import complete", zap.String("run_id", sum.RunID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
