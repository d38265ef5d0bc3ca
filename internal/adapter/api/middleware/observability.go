package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"expressivart/internal/infrastructure/metrics"
	"expressivart/pkg/logger"
)

// Observe logs every request and records its count and latency.
func Observe() echo.MiddlewareFunc {
	log := logger.With("http")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)

			metrics.RequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(res.Status)).Inc()
			metrics.RequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

			event := log.Info()
			if res.Status >= 500 {
				event = log.Error()
			} else if res.Status >= 400 {
				event = log.Warn()
			}
			event.
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("route", route).
				Str("uri", req.RequestURI).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("latency", elapsed).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
