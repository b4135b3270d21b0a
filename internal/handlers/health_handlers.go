package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	redis     Pinger
	poolStats func() map[string]int64
	version   string
	startedAt time.Time
}

// NewHealthHandlers creates a new health handlers instance. redis may be nil
// when rate limiting is disabled, and poolStats may be nil.
func NewHealthHandlers(db Pinger, redis Pinger, poolStats func() map[string]int64, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		redis:     redis,
		poolStats: poolStats,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Pool      map[string]int64       `json:"pool,omitempty"`
	Goroutine int                    `json:"goroutines,omitempty"`
}

// CheckResult is the outcome of a single dependency check
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// LivenessCheck handles GET /health
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// ReadinessCheck handles GET /health/ready. Only the database is critical.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	result := check(c.Request().Context(), h.db)
	if result.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// DetailedHealthCheck handles GET /health/detailed. Dependency checks run
// concurrently.
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	var dbResult, redisResult CheckResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbResult = check(gctx, h.db)
		return nil
	})
	if h.redis != nil {
		g.Go(func() error {
			redisResult = check(gctx, h.redis)
			return nil
		})
	}
	_ = g.Wait()

	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    map[string]CheckResult{"database": dbResult},
		Goroutine: runtime.NumGoroutine(),
	}
	if h.redis != nil {
		health.Checks["redis"] = redisResult
	} else {
		health.Checks["redis"] = CheckResult{Status: "disabled"}
	}
	if h.poolStats != nil {
		health.Pool = h.poolStats()
	}

	for _, result := range health.Checks {
		if result.Status == "unhealthy" {
			health.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

func check(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	result := CheckResult{
		Status:    "healthy",
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = "unhealthy"
		result.Message = err.Error()
	}
	return result
}
