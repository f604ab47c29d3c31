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

	"github.com/hibiken/asynq"

	"github.com/officehub/officehub/internal/app"
	"github.com/officehub/officehub/internal/attendance"
	"github.com/officehub/officehub/internal/audit"
	"github.com/officehub/officehub/internal/auth"
	"github.com/officehub/officehub/internal/clients"
	"github.com/officehub/officehub/internal/dashboard"
	"github.com/officehub/officehub/internal/expenses"
	"github.com/officehub/officehub/internal/leaves"
	"github.com/officehub/officehub/internal/observability"
	"github.com/officehub/officehub/internal/platform/cache"
	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/products"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
	"github.com/officehub/officehub/internal/tasks"
	"github.com/officehub/officehub/internal/users"
	"github.com/officehub/officehub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
		MaxConns:       cfg.PGMaxConns,
		MinConns:       cfg.PGMinConns,
		MaxIdleTime:    30 * time.Second,
		ConnectTimeout: 2 * time.Second,
	})
	if err != nil {
		logger.Error("configure postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	health := db.Probe(ctx, pool, db.ProbeOptions{Attempts: cfg.DBProbeRetries, Delay: cfg.DBProbeDelay}, logger)
	if health.Reachable() && cfg.DBAutoMigrate {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Error("ensure schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	responder := httpx.Responder{Logger: logger, Debug: cfg.AppDebugErrors}
	metrics := observability.NewMetrics()

	policy := rbac.DefaultPolicy()
	rbacMiddleware := rbac.Middleware{Policy: policy, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool, logger)
	idempotencyStore := shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)

	authRepo := auth.NewRepository(pool)
	gate := auth.NewGate(health, logger,
		auth.NewStoreProvider(authRepo, logger),
		auth.NewStaticProvider(auth.BootstrapCredentials()...),
	)
	authService := auth.NewService(gate, authRepo, logger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, responder).WithObserver(metrics)

	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), dashboard.NewCache(redisClient, cfg.DashboardCacheTTL), logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, rbacMiddleware, responder)

	usersService := users.NewService(users.NewRepository(pool), auditLogger, dashboardService, logger)
	tasksService := tasks.NewService(tasks.NewRepository(pool), dashboardService, logger)
	attendanceService := attendance.NewService(attendance.NewRepository(pool), policy, logger)
	leavesService := leaves.NewService(leaves.NewRepository(pool), auditLogger, idempotencyStore, logger)
	expensesService := expenses.NewService(expenses.NewRepository(pool), auditLogger, idempotencyStore, logger)

	inspector := asynq.NewInspector(jobs.RedisOpt(redisClient.Options()))
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Accounts:           authRepo,
		SessionManager:     sessionManager,
		Health:             health,
		RBACMiddleware:     rbacMiddleware,
		Metrics:            metrics,
		AuthHandler:        authHandler,
		PermissionsHandler: rbac.NewPermissionsHandler(policy, rbacMiddleware),
		DashboardHandler:   dashboardHandler,
		StaffHandler:       users.NewHandler(logger, usersService, rbacMiddleware, responder),
		TasksHandler:       tasks.NewHandler(logger, tasksService, rbacMiddleware, responder),
		AttendanceHandler:  attendance.NewHandler(logger, attendanceService, rbacMiddleware, responder),
		LeavesHandler:      leaves.NewHandler(logger, leavesService, rbacMiddleware, responder),
		ExpensesHandler:    expenses.NewHandler(logger, expensesService, rbacMiddleware, responder),
		ClientsHandler:     clients.NewHandler(clients.NewService(clients.NewRepository(pool)), rbacMiddleware, responder),
		ProductsHandler:    products.NewHandler(products.NewService(products.NewRepository(pool)), rbacMiddleware, responder),
		AuditHandler:       audit.NewHandler(audit.NewService(audit.NewRepository(pool)), rbacMiddleware, responder),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", health.Status()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
