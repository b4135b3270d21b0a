package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientKey = "orderdesk:ratelimit:203.0.113.9"

func TestAllow_FirstRequestStartsWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 2, time.Minute)

	mock.ExpectIncr(clientKey).SetVal(1)
	mock.ExpectExpire(clientKey, time.Minute).SetVal(true)

	allowed, err := limiter.Allow(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_OverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 2, time.Minute)

	mock.ExpectIncr(clientKey).SetVal(2)
	mock.ExpectIncr(clientKey).SetVal(3)
	mock.ExpectTTL(clientKey).SetVal(40 * time.Second)

	allowed, err := limiter.Allow(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_RedisDownFailsOpen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 2, time.Minute)

	mock.ExpectIncr(clientKey).SetErr(errors.New("connection refused"))

	allowed, err := limiter.Allow(context.Background(), "203.0.113.9")
	assert.Error(t, err)
	assert.True(t, allowed)
}

func TestAllow_FailedExpireIsRepairedOnceOverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 2, time.Minute)
	ctx := context.Background()

	mock.ExpectIncr(clientKey).SetVal(1)
	mock.ExpectExpire(clientKey, time.Minute).SetErr(errors.New("i/o timeout"))
	mock.ExpectIncr(clientKey).SetVal(2)
	mock.ExpectIncr(clientKey).SetVal(3)
	mock.ExpectTTL(clientKey).SetVal(time.Duration(-1))
	mock.ExpectExpire(clientKey, time.Minute).SetVal(true)
	mock.ExpectIncr(clientKey).SetVal(4)
	mock.ExpectTTL(clientKey).SetVal(59 * time.Second)

	allowed, err := limiter.Allow(ctx, "203.0.113.9")
	assert.Error(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "203.0.113.9")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "203.0.113.9")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_TTLErrorKeepsRejecting(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 1, time.Minute)

	mock.ExpectIncr(clientKey).SetVal(5)
	mock.ExpectTTL(clientKey).SetErr(errors.New("connection reset"))

	allowed, err := limiter.Allow(context.Background(), "203.0.113.9")
	assert.Error(t, err)
	assert.False(t, allowed)
}

func newLimitedRequest() (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	return req, httptest.NewRecorder()
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 1, 30*time.Second)
	mock.ExpectIncr(clientKey).SetVal(2)
	mock.ExpectTTL(clientKey).SetVal(12 * time.Second)

	limited := 0
	e := echo.New()
	e.Use(Middleware(limiter, func() { limited++ }))
	e.GET("/api/v1/orders", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req, rec := newLimitedRequest()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, 1, limited)
}

func TestMiddleware_PassesWhenRedisFails(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, 1, time.Minute)
	mock.ExpectIncr(clientKey).SetErr(errors.New("i/o timeout"))

	e := echo.New()
	e.Use(Middleware(limiter, nil))
	e.GET("/api/v1/orders", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req, rec := newLimitedRequest()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
