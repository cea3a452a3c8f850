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

	"newsdigest/internal/infra/adapter/persistence/file"
	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/archiver"
	"newsdigest/internal/infra/db"
	"newsdigest/internal/infra/mailer"
	"newsdigest/internal/infra/provider"
	"newsdigest/internal/infra/renderer"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/observability/tracing"
	"newsdigest/internal/repository"
	"newsdigest/pkg/config"

	digestUC "newsdigest/internal/usecase/digest"
	"newsdigest/internal/usecase/dispatch"
	subUC "newsdigest/internal/usecase/subscription"

	hhttp "newsdigest/internal/handler/http"
	harchive "newsdigest/internal/handler/http/archive"
	"newsdigest/internal/handler/http/requestid"
	hsub "newsdigest/internal/handler/http/subscription"
	htrigger "newsdigest/internal/handler/http/trigger"
)

func main() {
	logger := initLogger()
	jwtSecret := validateJWTSecret(logger)

	shutdownTracing, err := tracing.Init("newsdigest-api")
	if err != nil {
		logger.Error("failed to initialize tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	repo, database := initStore(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	cycleSvc, arch := initCycleService(logger, repo)

	version := getVersion()
	handler := setupServer(logger, repo, database, cycleSvc, arch, jwtSecret, version)

	runServer(logger, handler, version)
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateJWTSecret enforces the trigger-endpoint secret at startup.
// A short or well-known secret makes the manual trigger effectively
// unauthenticated, so the server refuses to start with one.
func validateJWTSecret(logger *slog.Logger) []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
	return []byte(secret)
}

// initStore selects the recipient store backend from STORE_BACKEND:
//   - "file" (default): JSON snapshot at RECIPIENT_STORE_PATH
//   - "postgres": connection pool from DATABASE_URL
//
// Returns the repository and, for the postgres backend, the pool for
// health checks and cleanup.
func initStore(logger *slog.Logger) (repository.RecipientRepository, *sql.DB) {
	backend := config.GetEnvString("STORE_BACKEND", "file")

	switch backend {
	case "file":
		path := config.GetEnvString("RECIPIENT_STORE_PATH", "recipients.json")
		logger.Info("using file recipient store", slog.String("path", path))
		return file.NewRecipientRepo(path), nil
	case "postgres":
		database, err := db.Open(os.Getenv("DATABASE_URL"))
		if err != nil {
			logger.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("using postgres recipient store")
		return pgRepo.NewRecipientRepo(database), database
	default:
		logger.Error("unknown STORE_BACKEND", slog.String("backend", backend))
		os.Exit(1)
		return nil, nil
	}
}

// initCycleService assembles the full digest pipeline behind the manual
// trigger endpoint: providers, aggregator, renderer, archiver and
// dispatcher.
func initCycleService(logger *slog.Logger, repo repository.RecipientRepository) (*digestUC.Service, *archiver.Archiver) {
	providers, err := provider.NewProviders()
	if err != nil {
		logger.Error("failed to build content providers", slog.Any("error", err))
		os.Exit(1)
	}

	contentProviders := make([]digestUC.ContentProvider, 0, len(providers))
	for _, p := range providers {
		contentProviders = append(contentProviders, p)
	}

	layout, err := renderer.LoadLayout()
	if err != nil {
		logger.Error("failed to load digest layout", slog.Any("error", err))
		os.Exit(1)
	}

	rend, err := renderer.New(layout)
	if err != nil {
		logger.Error("failed to build renderer", slog.Any("error", err))
		os.Exit(1)
	}

	arch, err := archiver.NewFromEnv()
	if err != nil {
		logger.Error("failed to initialize archiver", slog.Any("error", err))
		os.Exit(1)
	}

	deliverer, err := mailer.NewFromEnv()
	if err != nil {
		logger.Error("failed to initialize mailer", slog.Any("error", err))
		os.Exit(1)
	}

	maxConcurrent := config.GetEnvInt("DISPATCH_MAX_CONCURRENT", 4)
	dispatcher := dispatch.New(deliverer, maxConcurrent)

	aggregator := digestUC.NewAggregator(layout.SectionOrder())

	return digestUC.NewService(repo, contentProviders, aggregator, rend, arch, dispatcher), arch
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer registers all routes and wraps them in the middleware
// chain.
func setupServer(
	logger *slog.Logger,
	repo repository.RecipientRepository,
	database *sql.DB,
	cycleSvc *digestUC.Service,
	arch *archiver.Archiver,
	jwtSecret []byte,
	version string,
) http.Handler {
	subSvc := subUC.NewService(repo)

	// Subscription endpoints are unauthenticated and mutate the store,
	// so they get their own per-IP rate limit.
	subLimit := config.GetEnvInt("SUBSCRIBE_RATE_LIMIT", 10)
	subLimiter := hhttp.NewRateLimiter(subLimit, 1*time.Minute)

	subMux := http.NewServeMux()
	hsub.Register(subMux, subSvc)
	limitedSubs := subLimiter.Limit(subMux)

	mux := http.NewServeMux()
	mux.Handle("POST /subscribe", limitedSubs)
	mux.Handle("POST /unsubscribe", limitedSubs)
	mux.Handle("GET /subscribers", limitedSubs)

	htrigger.Register(mux, cycleSvc, jwtSecret)
	harchive.Register(mux, arch)

	mux.Handle("/health", &hhttp.HealthHandler{Repo: repo, DB: database, Version: version})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	// Middleware order: request ID first so every later layer can log
	// it, then tracing, then recovery around the rest.
	var handler http.Handler = mux
	handler = hhttp.MetricsMiddleware(handler)
	handler = hhttp.LimitRequestBody(1 << 20)(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = hhttp.Recover(logger)(handler)
	handler = tracing.Middleware(handler)
	handler = requestid.Middleware(handler)

	return handler
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := config.GetEnvString("API_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
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
