package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/infrastructure/ratelimit"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, mw Middlewares) {
	public := e.Group("/v1/auth")
	if mw.RateLimiter != nil {
		public.Use(middleware.RateLimit(mw.RateLimiter, ratelimit.ActionAuth))
	}
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	e.GET("/v1/auth/me", authHandler.Me, mw.Auth.Authenticate)
}
