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

	"github.com/starford/fretwise/internal/api"
	"github.com/starford/fretwise/internal/catalog"
	"github.com/starford/fretwise/internal/index"
	"github.com/starford/fretwise/internal/mcpserver"
	"github.com/starford/fretwise/internal/quiz"
	"github.com/starford/fretwise/internal/sse"
	"github.com/starford/fretwise/internal/storage"
	"github.com/starford/fretwise/internal/trainer"
)

// components holds the parts shared by the HTTP and MCP entry points.
type components struct {
	cfg      *Config
	logger   *slog.Logger
	store    storage.Provider
	registry *catalog.Registry
	db       *index.DB
	sessions *quiz.Store
}

func setup(opts []Option) (*application, *components, error) {
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

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("match_policy", cfg.Quiz.MatchPolicy),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt := &components{
		cfg:      cfg,
		logger:   logger,
		sessions: quiz.NewStore(cfg.Sessions.Max, cfg.Sessions.IdleTimeout),
	}

	// Initialize the chord library, if configured.
	if cfg.Library.Path != "" {
		if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create library dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Library.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage: %w", err)
		}
		rt.store = fs
	}

	c, err := catalog.Load(rt.store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	for _, name := range []string{cfg.Quiz.ChordSet, cfg.Explorer.ChordSet} {
		if _, err := c.Set(name); err != nil {
			return nil, nil, fmt.Errorf("configured %w", err)
		}
	}
	rt.registry = catalog.NewRegistry(c)
	logger.Info("Catalog loaded", slog.Any("sets", c.Names()), slog.String("version", c.Version()))

	// Initialize SQLite chord index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	rt.db = db

	return app, rt, nil
}

func (rt *components) service(pub trainer.Publisher) *trainer.Service {
	return trainer.NewService(rt.registry, rt.db, rt.sessions, trainer.Options{
		Policy:      rt.cfg.Quiz.Policy(),
		ExplorerSet: rt.cfg.Explorer.ChordSet,
		QuizSet:     rt.cfg.Quiz.ChordSet,
		Publisher:   pub,
		Logger:      rt.logger,
	})
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	_, rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg := rt.cfg
	logger := rt.logger

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := rt.service(broker)

	// Run initial index sync.
	if err := svc.SyncIndex(ctx); err != nil {
		logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(svc, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.db.Version(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start library watcher with reindex and SSE callback.
	if rt.store != nil && cfg.Library.Watch {
		g.Go(func() error {
			err := catalog.Watch(gCtx, rt.registry, rt.store, cfg.Library.Path, cfg.Library.Debounce, logger, func(c *catalog.Catalog) {
				svc.OnCatalogReload(gCtx, c)
			})
			if err != nil {
				logger.Error("library watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Expire idle sessions.
	if cfg.Sessions.IdleTimeout > 0 {
		g.Go(func() error {
			rt.sessions.Janitor(gCtx, cfg.Sessions.SweepInterval, logger, svc.Expire)
			return nil
		})
	}

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
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

// errShutdown cancels the group context so the watcher and janitor stop
// once the HTTP server has drained.
var errShutdown = errors.New("shutdown")

// RunMCP serves the chord tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	svc := rt.service(nil)
	if err := svc.SyncIndex(ctx); err != nil {
		rt.logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}

	rt.logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// InitLibrary writes the built-in chord sets into the configured library
// directory and returns the paths written.
func InitLibrary(cfg *Config, overwrite bool) ([]string, error) {
	if cfg.Library.Path == "" {
		return nil, fmt.Errorf("library.path is not configured")
	}
	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return catalog.WriteBuiltins(store, overwrite)
}
