package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"orderdesk/internal/config"
	"orderdesk/internal/handlers"
	"orderdesk/internal/jobs/background"
	"orderdesk/internal/logging"
	"orderdesk/internal/metrics"
	"orderdesk/internal/middleware"
	"orderdesk/internal/ratelimit"
	"orderdesk/internal/repositories"
	"orderdesk/internal/services"
	"orderdesk/pkg/database"
)

const version = "1.0.0"

func main() {
	logging.Init("info")
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	pool, err := database.NewPool(ctx, database.PoolConfig{
		DSN:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.ApplySchema {
		if err := database.ApplySchema(ctx, pool); err != nil {
			return err
		}
		slog.Info("database schema applied")
	}

	reg := metrics.NewRegistry()

	scopeOpts := []database.TxScopeOption{
		database.WithAcquireTimeout(cfg.Database.AcquireTimeout.Duration),
		database.WithObserver(reg),
	}
	if cfg.Database.Isolation != "" {
		scopeOpts = append(scopeOpts, database.WithTxOptions(pgx.TxOptions{IsoLevel: pgx.TxIsoLevel(cfg.Database.Isolation)}))
	}
	txScope := database.NewTxScope(pool, scopeOpts...)

	// Initialize repositories
	orderRepo := repositories.NewOrderRepo(pool)
	orderItemRepo := repositories.NewOrderItemRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)

	// Initialize services
	orderSvc := services.NewOrderService(txScope, orderRepo, orderItemRepo)
	productSvc := services.NewProductService(productRepo)
	customerSvc := services.NewCustomerService(customerRepo)

	// Rate limiting is optional
	var limiter *ratelimit.Limiter
	var redisCheck handlers.Pinger
	if cfg.RateLimitEnabled() {
		client := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		limiter = ratelimit.NewLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration)
		redisCheck = limiter
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health and metrics endpoints
	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandlers(pool, redisCheck, poolStats(pool), version))
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	// API routes
	v1 := versionMiddleware.VersionRoute(e, "v1")
	if limiter != nil {
		v1.Use(ratelimit.Middleware(limiter, reg.IncRateLimited))
	}
	handlers.RegisterOrderRoutes(v1, handlers.NewOrderHandlers(orderSvc))
	handlers.RegisterProductRoutes(v1, handlers.NewProductHandlers(productSvc))
	handlers.RegisterCustomerRoutes(v1, handlers.NewCustomerHandlers(customerSvc))

	// Background jobs
	scheduler, err := background.NewJobScheduler(orderRepo, reg, cfg.Jobs.OrphanAuditInterval.Duration)
	if err != nil {
		return err
	}
	handlers.RegisterJobRoutes(v1, handlers.NewJobHandlers(scheduler))
	scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("orderdesk server starting", "version", version, "port", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err = <-serverErr:
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("http server shutdown failed", "error", shutdownErr)
	}
	if stopErr := scheduler.Stop(); stopErr != nil {
		slog.Error("scheduler shutdown failed", "error", stopErr)
	}

	slog.Info("orderdesk server stopped")
	return err
}

func poolStats(pool *pgxpool.Pool) func() map[string]int64 {
	return func() map[string]int64 {
		stat := pool.Stat()
		return map[string]int64{
			"max_conns":           int64(stat.MaxConns()),
			"total_conns":         int64(stat.TotalConns()),
			"idle_conns":          int64(stat.IdleConns()),
			"acquired_conns":      int64(stat.AcquiredConns()),
			"acquire_count":       stat.AcquireCount(),
			"empty_acquire_count": stat.EmptyAcquireCount(),
		}
	}
}
