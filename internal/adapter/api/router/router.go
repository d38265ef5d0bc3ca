package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/infrastructure/ratelimit"
)

// Middlewares carries the shared route guards.
type Middlewares struct {
	Auth        *middleware.AuthMiddleware
	Admin       *middleware.AdminMiddleware
	RateLimiter *ratelimit.RateLimiter
}

func Setup(e *echo.Echo, h *handler.Handlers, mw Middlewares) {
	SetupHealthRouter(e, h.Health)
	SetupAuthRouter(e, h.Auth, mw)
	SetupDevRouter(e, h.DevToken)
	SetupProfileRouter(e, h.Profile, mw)
	SetupArtworkRouter(e, h.Artwork, h.Comment, h.Favorite, mw)
	SetupOrderRouter(e, h.Order, mw)
	SetupChatRouter(e, h.Chat, mw)
	SetupUploadRouter(e, h.Upload, mw)
	SetupAdminRouter(e, h.Artwork, mw)
	SetupWebSocketRouter(e, h.WebSocket)
}
