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
	_ "time/tzdata"

	"github.com/hibiken/asynq"

	"github.com/tempest-stays/tempest/internal/analytics"
	"github.com/tempest-stays/tempest/internal/app"
	"github.com/tempest-stays/tempest/internal/booking"
	jobmetrics "github.com/tempest-stays/tempest/internal/jobs"
	"github.com/tempest-stays/tempest/internal/observability"
	"github.com/tempest-stays/tempest/internal/platform/cache"
	"github.com/tempest-stays/tempest/internal/platform/db"
	"github.com/tempest-stays/tempest/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN, db.WithMaxConns(cfg.PGMaxConns), db.WithSessionTimeZone("UTC"))
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	repo := booking.NewRepository(pool, cfg.Location())
	analyticsService := analytics.NewService(repo, cfg.Location())
	metrics := observability.NewMetrics()
	exportJob := jobs.NewDashboardExportJob(analyticsService, repo, redisClient, cfg.ExportDir, logger, jobmetrics.NewMetrics(metrics.Registerer()))

	nightly, err := jobs.NewDashboardExportTask(jobs.DashboardExportPayload{Range: string(analytics.RangeMonth)})
	if err != nil {
		logger.Error("build export task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Location:    cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardExport, Handler: exportJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ExportCron, Task: nightly, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting worker", slog.String("export_dir", cfg.ExportDir), slog.String("export_cron", cfg.ExportCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
