package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"newsdigest/internal/infra/adapter/persistence/file"
	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/archiver"
	"newsdigest/internal/infra/db"
	"newsdigest/internal/infra/mailer"
	"newsdigest/internal/infra/provider"
	"newsdigest/internal/infra/renderer"
	workerPkg "newsdigest/internal/infra/worker"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/observability/tracing"
	"newsdigest/internal/repository"
	digestUC "newsdigest/internal/usecase/digest"
	"newsdigest/internal/usecase/dispatch"
	"newsdigest/pkg/config"
)

func main() {
	logger := initLogger()

	shutdownTracing, err := tracing.Init("newsdigest-worker")
	if err != nil {
		logger.Error("failed to initialize tracing", slog.Any("error", err))
		os.Exit(1)
	}

	repo, database := initStore(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker configuration loads fail-open: invalid values fall back to
	// defaults with warnings rather than refusing to start.
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("dispatch_max_concurrent", workerConfig.DispatchMaxConcurrent),
		slog.Duration("cycle_timeout", workerConfig.CycleTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc := setupCycleService(logger, repo, workerConfig)

	startCronWorker(ctx, logger, svc, workerConfig, workerMetrics, healthServer)

	// Shut down tracing after the scheduler stops.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracing", slog.Any("error", err))
	}
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initStore selects the recipient store backend, mirroring the API
// binary so both processes always read the same membership.
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

// setupCycleService assembles the digest pipeline the scheduler drives:
// content providers, aggregator, renderer, archiver and dispatcher.
func setupCycleService(logger *slog.Logger, repo repository.RecipientRepository, cfg *workerPkg.WorkerConfig) *digestUC.Service {
	providers, err := provider.NewProviders()
	if err != nil {
		logger.Error("failed to build content providers", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("content providers initialized", slog.Int("count", len(providers)))

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

	dispatcher := dispatch.New(deliverer, cfg.DispatchMaxConcurrent)
	aggregator := digestUC.NewAggregator(layout.SectionOrder())

	return digestUC.NewService(repo, contentProviders, aggregator, rend, arch, dispatcher)
}

// startCronWorker starts the cron scheduler and blocks until a shutdown
// signal arrives.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	svc *digestUC.Service,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runDigestCycle(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// Let an in-flight cycle finish before exiting.
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("scheduler stopped")
	case <-time.After(cfg.CycleTimeout):
		logger.Warn("scheduler stop timed out, exiting anyway")
	}
}

// runDigestCycle executes one scheduled cycle with a timeout and records
// the outcome in worker metrics.
func runDigestCycle(logger *slog.Logger, svc *digestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("scheduled digest cycle starting")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CycleTimeout)
	defer cancel()

	stats, err := svc.RunCycle(ctx)
	if err != nil {
		logger.Error("digest cycle failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordRecipientsDelivered(stats.Delivered)
	metrics.RecordLastSuccess()

	logger.Info("digest cycle completed",
		slog.String("date", stats.CycleDate.Format("2006-01-02")),
		slog.Int("sections", stats.Sections),
		slog.Int("fallbacks", stats.Fallbacks),
		slog.Int("recipients", stats.Recipients),
		slog.Int("delivered", stats.Delivered),
		slog.Int("failed", stats.Failed),
		slog.Bool("archived", stats.Archived),
		slog.Duration("duration", stats.Duration),
	)
}
