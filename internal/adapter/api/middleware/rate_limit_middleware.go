package middleware

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/infrastructure/ratelimit"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

// RateLimit throttles an action per user, or per client IP before sign-in.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := OptionalUser(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			if allowed, wait := limiter.Allow(key, action); !allowed {
				logger.Warn("RATE LIMIT: %s on %s (retry in %v)", key, action, wait)
				return errors.TooManyRequests("Rate limit exceeded. Please try again later", wait)
			}
			return next(c)
		}
	}
}
