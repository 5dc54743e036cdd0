// Package main is the entry point for the vehicle logbook API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"golang.org/x/time/rate"

	"github.com/pkordes/vehicle-logbook/backend/internal/config"
	"github.com/pkordes/vehicle-logbook/backend/internal/handler"
	"github.com/pkordes/vehicle-logbook/backend/internal/imagestore"
	"github.com/pkordes/vehicle-logbook/backend/internal/logging"
	"github.com/pkordes/vehicle-logbook/backend/internal/metrics"
	"github.com/pkordes/vehicle-logbook/backend/internal/middleware"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
	"github.com/pkordes/vehicle-logbook/backend/migrations"
	"github.com/pkordes/vehicle-logbook/backend/spec"
)

// interchangeBurst lets a user retry an import a few times in a row.
const interchangeBurst = 3

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger, err := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		slog.Error("logger configuration error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), cfg.DatabaseURL); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Services ---------------------------------------------------------
	m := metrics.New()
	store := repo.NewStore(pool)

	var mirrors []string
	if cfg.ImageMirrorDir != "" {
		mirrors = append(mirrors, cfg.ImageMirrorDir)
	}

	svc := handler.Services{
		Vehicles:  service.NewVehicleService(store),
		Providers: service.NewProviderService(store),
		Catalog:   service.NewCatalogService(store),
		Visits:    service.NewServiceVisitService(store),
		Refuels:   service.NewRefuelService(store),
		Analytics: service.NewAnalyticsService(store, cfg.DisplayLocation),
		Export: service.NewExportService(store, service.ExportOptions{
			Location: cfg.DisplayLocation,
			Logger:   logger,
			Metrics:  m,
		}),
		Import: service.NewImportService(store, service.ImportOptions{
			Mode:     cfg.ImportMode,
			Location: cfg.DisplayLocation,
			Images:   imagestore.New(cfg.ExportDir, mirrors...),
			Logger:   logger,
			Metrics:  m,
		}),
	}
	interchangeLimiter := rate.NewLimiter(rate.Limit(cfg.InterchangeRPS), interchangeBurst)
	api := handler.NewServer(svc, handler.Options{
		Location:         cfg.DisplayLocation,
		ExportDir:        cfg.ExportDir,
		OpenAPI:          spec.OpenAPI,
		InterchangeLimit: middleware.NewRateLimitHandler(interchangeLimiter, logger),
		Logger:           logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID, RealIP, Logger, Recoverer,
	// CORS, MaxBodySize, Metrics.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetricsHandler(m))

	r.Handle("/metrics", m.Handler())
	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout is generous because GET /export streams the whole history.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"display_tz", cfg.DisplayLocation.String(),
			"export_dir", cfg.ExportDir,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies every pending embedded migration.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
