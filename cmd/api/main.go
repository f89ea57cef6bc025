// Copyright (c) 2026 Quotable. All rights reserved.

// Command api is the entry point for the Quotable HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when REDIS_URL is set.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kurokeita/quotable/internal/api"
	"github.com/kurokeita/quotable/internal/core/author"
	"github.com/kurokeita/quotable/internal/core/quote"
	"github.com/kurokeita/quotable/internal/core/tag"
	"github.com/kurokeita/quotable/internal/core/upload"
	"github.com/kurokeita/quotable/internal/platform/config"
	"github.com/kurokeita/quotable/internal/platform/constants"
	"github.com/kurokeita/quotable/internal/platform/middleware"
	"github.com/kurokeita/quotable/internal/platform/migration"
	pgstore "github.com/kurokeita/quotable/internal/platform/postgres"
	redisstore "github.com/kurokeita/quotable/internal/platform/redis"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("resource_protection", cfg.ResourceProtection),
		slog.Bool("redis_enabled", cfg.RedisURL != ""),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives until shutdown; stops background janitors.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, pgstore.Options{DSN: cfg.DatabaseURL}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var (
		rdb     *goredis.Client
		counter middleware.WindowCounter
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()
		counter = redisstore.NewFixedWindow(rdb)
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}
	if rdb != nil {
		health.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	writeGuard := []func(http.Handler) http.Handler{
		middleware.RequireAPIKey(middleware.ProtectionConfig{
			Enabled: cfg.ResourceProtection,
			APIKey:  cfg.ResourceAPIKey,
		}),
		middleware.WriteRateLimit(counter, cfg.WriteRateLimit, constants.WriteRateLimitWindow),
	}

	txManager := pgstore.NewTxManager(pool, log)
	reconciler := tag.NewReconciler(pool, log)

	authorRepository := author.NewPostgresRepository(pool)
	quoteRepository := quote.NewPostgresRepository(pool)
	tagRepository := tag.NewPostgresRepository(pool)

	authorService := author.NewService(authorRepository, log)
	quoteService := quote.NewService(quoteRepository, authorRepository, reconciler, txManager, log)
	tagService := tag.NewService(tagRepository, log)
	uploadService := upload.NewService(authorRepository, quoteRepository, reconciler, txManager, cfg.UploadChunkSize, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Authors:   author.NewHandler(authorService, writeGuard...),
		Quotes:    quote.NewHandler(quoteService, writeGuard...),
		Tags:      tag.NewHandler(tagService),
		Upload:    upload.NewHandler(uploadService, cfg.UploadMaxBytes, writeGuard...),
	}

	server := api.NewServer(appCtx, cfg, log, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
