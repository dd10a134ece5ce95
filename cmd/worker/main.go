// Command worker runs the scheduled crawl loop: on each cron tick it
// starts one async refresh per active region, exposing liveness and
// readiness probes for orchestration.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	pgRepo "blotter/internal/infra/adapter/persistence/postgres"
	"blotter/internal/infra/db"
	"blotter/internal/infra/enricher"
	"blotter/internal/infra/fetcher"
	"blotter/internal/infra/parser"
	workerPkg "blotter/internal/infra/worker"
	"blotter/internal/observability/tracing"
	"blotter/internal/usecase/refresh"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracer("blotter-worker")
	if err != nil {
		logger.Warn("tracing initialization failed, continuing without spans", slog.Any("error", err))
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("tracing shutdown failed", slog.Any("error", err))
			}
		}()
	}

	cfg := workerPkg.LoadConfigFromEnv(logger)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("refresh_timeout", cfg.RefreshTimeout),
		slog.Int("source_fanout", cfg.SourceFanOut))

	sources := pgRepo.NewSourceRepo(database)
	articles := pgRepo.NewArticleRepo(database)
	jobs := pgRepo.NewJobRepo(database)

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.DefaultConfig(), nil)
	parsers := parser.NewDefaultRegistry(httpFetcher)
	enr := enricher.NewFromEnv()

	refreshSvc := refresh.NewService(sources, articles, jobs, parsers, enr)
	refreshSvc.FanOut = cfg.SourceFanOut

	healthServer := workerPkg.NewHealthServer(cfg.HealthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	sched := &workerPkg.Scheduler{
		Sources: sources,
		Refresh: refreshSvc,
		Logger:  logger,
		Config:  cfg,
	}

	healthServer.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down worker...")
		cancel()
	}()

	sched.Start(ctx)
}

func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}
