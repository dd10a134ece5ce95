// Command api serves the pipeline's HTTP surface: refresh (sync and
// async), incident queries, graph/map projections, and (in dev) the
// debug diagnostics endpoints.
//
//go:generate swag init -g main.go -o ../../docs
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	blotterhttp "blotter/internal/handler/http"
	pgRepo "blotter/internal/infra/adapter/persistence/postgres"
	"blotter/internal/infra/db"
	"blotter/internal/infra/enricher"
	"blotter/internal/infra/fetcher"
	"blotter/internal/infra/parser"
	"blotter/internal/observability/tracing"
	"blotter/internal/pkg/sourceconfig"
	"blotter/internal/repository"
	"blotter/internal/usecase/query"
	"blotter/internal/usecase/refresh"
)

// @title           Blotter Crime Feed API
// @version         1.0
// @description     Crawls municipal and RCMP crime-news sources, enriches
// @description     them into structured incidents, and serves them as a
// @description     queryable feed, entity graph, and map projection.

// @license.name  MIT

// @host      localhost:8080
// @BasePath  /
func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	shutdownTracing, err := tracing.InitTracer("blotter-api")
	if err != nil {
		logger.Warn("tracing initialization failed, continuing without spans", slog.Any("error", err))
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("tracing shutdown failed", slog.Any("error", err))
			}
		}()
	}

	version := getVersion()
	handler := setupServer(logger, database, version)

	runServer(logger, handler, version)
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

func getVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}

func setupServer(logger *slog.Logger, database *sql.DB, version string) http.Handler {
	sources := pgRepo.NewSourceRepo(database)
	articles := pgRepo.NewArticleRepo(database)
	jobs := pgRepo.NewJobRepo(database)

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.DefaultConfig(), nil)
	parsers := parser.NewDefaultRegistry(httpFetcher)
	enr := enricher.NewFromEnv()

	syncSourcesFromConfig(logger, sources)

	refreshSvc := refresh.NewService(sources, articles, jobs, parsers, enr)
	querySvc := query.NewService(articles)

	env := os.Getenv("ENV")
	mux := blotterhttp.Register(blotterhttp.Deps{
		Sources:  sources,
		Refresh:  refreshSvc,
		Query:    querySvc,
		Parsers:  parsers,
		Enricher: enr,
		Logger:   logger,
		Env:      env,
		Version:  version,
	})

	wrapped := http.NewServeMux()
	wrapped.Handle("/", mux)
	wrapped.Handle("GET /swagger/", httpSwagger.WrapHandler)
	return wrapped
}

// syncSourcesFromConfig upserts the source catalog from
// SOURCE_CONFIG_PATH's YAML file when set. Sources are otherwise
// assumed to already exist in the store (e.g. provisioned directly),
// matching spec.md's treatment of the source list as an opaque
// external provider the core merely consumes.
func syncSourcesFromConfig(logger *slog.Logger, repo repository.SourceRepository) {
	path := os.Getenv("SOURCE_CONFIG_PATH")
	if path == "" {
		return
	}
	provider := sourceconfig.NewYAMLProvider(path)
	n, err := sourceconfig.Sync(context.Background(), provider, repo)
	if err != nil {
		logger.Error("source config sync failed", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("source config synced", slog.String("path", path), slog.Int("sources", n))
}

func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", ":8080"), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
