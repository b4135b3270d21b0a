package ratelimit

import (
	"log/slog"
	"math"

	"orderdesk/internal/common"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests from a client IP once it exceeds the limiter's
// budget for the current window. onLimited, if set, is called for every
// rejected request.
func Middleware(l *Limiter, onLimited func()) echo.MiddlewareFunc {
	retryAfter := int(math.Ceil(l.Window().Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			allowed, err := l.Allow(ctx, c.RealIP())
			if err != nil {
				slog.WarnContext(ctx, "rate limiter error", "allowed", allowed, "error", err)
			}
			if !allowed {
				if onLimited != nil {
					onLimited()
				}
				return common.SendRateLimited(c, retryAfter)
			}
			return next(c)
		}
	}
}
