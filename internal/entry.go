// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/fitch/internal/api"
	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/mcpserver"
	"github.com/starford/fitch/internal/metrics"
	"github.com/starford/fitch/internal/proofservice"
	"github.com/starford/fitch/internal/sse"
	"github.com/starford/fitch/internal/storage"
	"github.com/starford/fitch/internal/verify"
)

// runtime holds the components shared by the HTTP and MCP entry points.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	rec    *index.Recorder
	svc    *proofservice.Service
}

func (r *runtime) close() {
	r.rec.Close()
	r.db.Close()
	_ = r.store.Close()
}

// setup applies opts, opens the vault and the index, runs the initial sync
// and starts the background checker. pub receives proof events.
func setup(opts []Option, pub proofservice.Publisher) (*runtime, *application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	def := cfg.Checker.Defaults()
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("system", string(def.System)),
		slog.Duration("debounce", cfg.Checker.Debounce),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	// Run initial sync.
	if err := index.Sync(db, store, def, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	var schedOpts []verify.SchedulerOption
	if cfg.Checker.Workers > 0 {
		schedOpts = append(schedOpts, verify.WithWorkers(cfg.Checker.Workers))
	}
	rec := index.NewRecorder(db, def, logger, proofservice.Notify(pub, logger), schedOpts...)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		db:     db,
		rec:    rec,
		svc:    proofservice.NewService(store, db, rec),
	}, app, nil
}

// Run starts the HTTP server, the vault watcher and the background
// checker with the given options.
func Run(ctx context.Context, opts ...Option) error {
	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, _, err := setup(opts, broker)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, logger := rt.cfg, rt.logger

	// Build API router.
	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := rt.db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; verified passes reach SSE clients via the recorder.
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.rec, rt.store, cfg.Vault.Path, cfg.Checker.Debounce, logger); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once a signal arrives so the watcher stops.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. The vault is synced first and
// watched while the server runs.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, app, err := setup(opts, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.rec, rt.store, rt.cfg.Vault.Path, rt.cfg.Checker.Debounce, rt.logger); err != nil {
			rt.logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	srv := mcpserver.New(rt.svc, app.version)
	rt.logger.Info("MCP server starting on stdio")
	serveErr := srv.ServeStdio()
	cancel()
	_ = g.Wait()
	return serveErr
}
