package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"bistro/internal/cache"
	"bistro/internal/errors"
)

// RateLimitConfig describes one fixed-window limit applied per client IP.
type RateLimitConfig struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
}

// RateLimit limits requests per client IP. With a cache the window is shared
// across instances; without one each process keeps its own token buckets.
func RateLimit(c *cache.Client, cfg RateLimitConfig) echo.MiddlewareFunc {
	var store middleware.RateLimiterStore
	if c != nil {
		store = cache.NewWindowStore(c, cfg.Name, cfg.Max, cfg.Window)
	} else {
		store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.Max) / cfg.Window.Seconds()),
			Burst:     cfg.Max,
			ExpiresIn: cfg.Window,
		})
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errors.Wrap(errors.ErrForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errors.Wrap(errors.ErrTooManyRequests, "%s", cfg.Message)
		},
	})
}
