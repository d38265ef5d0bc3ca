package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

func SetupAdminRouter(e *echo.Echo, artworkHandler *handler.ArtworkHandler, mw Middlewares) {
	// Admin routes - require authentication and admin role
	admin := e.Group("/v1/admin")
	admin.Use(mw.Auth.Authenticate)
	admin.Use(mw.Admin.AdminOnly)

	// Artwork moderation
	admin.GET("/artworks", artworkHandler.AdminList)
	admin.PUT("/artworks/:id/status", artworkHandler.AdminSetStatus)
}
