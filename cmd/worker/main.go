package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/officehub/officehub/internal/app"
	"github.com/officehub/officehub/internal/auth"
	"github.com/officehub/officehub/internal/observability"
	"github.com/officehub/officehub/internal/platform/cache"
	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	enqueue := flag.String("enqueue", "", "enqueue one task (summaries:monthly or sessions:cleanup) and exit")
	year := flag.Int("year", 0, "year for summaries:monthly, defaults to last month")
	month := flag.Int("month", 0, "month for summaries:monthly, defaults to last month")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	parsed, err := cache.ParseAddr(cfg.RedisAddr)
	if err != nil {
		logger.Error("redis address", slog.Any("error", err))
		os.Exit(1)
	}
	redisOpts := jobs.RedisOpt(parsed)

	if *enqueue != "" {
		if err := enqueueOnce(ctx, redisOpts, *enqueue, *year, *month, logger); err != nil {
			logger.Error("enqueue", slog.String("task", *enqueue), slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, MinConns: cfg.PGMinConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	health := db.Probe(ctx, pool, db.ProbeOptions{Attempts: cfg.DBProbeRetries, Delay: cfg.DBProbeDelay}, logger)
	if !health.Reachable() {
		logger.Warn("database unreachable at startup, jobs will retry", slog.String("error", health.LastError()))
	}

	metrics := observability.NewMetrics()
	authService := auth.NewService(nil, auth.NewRepository(pool), logger)

	summaryJob := jobs.NewMonthlySummaryJob(jobs.NewSummaryStore(pool), logger, metrics.Jobs)
	cleanupJob := jobs.NewSessionCleanupJob(authService, logger, metrics.Jobs)

	summaryTask, err := jobs.NewMonthlySummaryTask(0, 0)
	if err != nil {
		logger.Error("build summary task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewSessionCleanupTask()
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMonthlySummary, Handler: summaryJob.Handle},
			{Type: jobs.TaskSessionCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.MonthlySummaryCron, Task: summaryTask},
			{Spec: jobs.SessionCleanupCron, Task: cleanupTask},
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

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func enqueueOnce(ctx context.Context, opts asynq.RedisClientOpt, name string, year, month int, logger *slog.Logger) error {
	client := jobs.NewClient(opts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	var (
		info *asynq.TaskInfo
		err  error
	)
	switch name {
	case jobs.TaskMonthlySummary:
		info, err = client.EnqueueMonthlySummary(ctx, year, month)
	case jobs.TaskSessionCleanup:
		info, err = client.EnqueueSessionCleanup(ctx)
	default:
		return errors.New("unsupported task " + name)
	}
	if err != nil {
		return err
	}
	logger.Info("task enqueued", slog.String("task", name), slog.String("id", info.ID), slog.String("queue", info.Queue))
	return nil
}
