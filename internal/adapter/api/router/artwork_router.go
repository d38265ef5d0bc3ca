package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

// SetupArtworkRouter mounts the gallery, seller listings, comments and favorites.
func SetupArtworkRouter(
	e *echo.Echo,
	artworkHandler *handler.ArtworkHandler,
	commentHandler *handler.CommentHandler,
	favoriteHandler *handler.FavoriteHandler,
	mw Middlewares,
) {
	// Public routes
	e.GET("/v1/artworks", artworkHandler.Gallery)
	e.GET("/v1/artworks/featured", artworkHandler.Featured)
	e.GET("/v1/artworks/:id", artworkHandler.GetArtwork, mw.Auth.OptionalAuth)
	e.GET("/v1/artworks/:id/comments", commentHandler.ListComments)

	// Protected routes
	protected := e.Group("/v1")
	protected.Use(mw.Auth.Authenticate)

	protected.POST("/artworks", artworkHandler.CreateArtwork)
	protected.PUT("/artworks/:id", artworkHandler.UpdateArtwork)
	protected.DELETE("/artworks/:id", artworkHandler.DeleteArtwork)
	protected.GET("/my/artworks", artworkHandler.ListMine)

	protected.POST("/artworks/:id/comments", commentHandler.AddComment)

	protected.POST("/artworks/:id/favorite", favoriteHandler.Toggle)
	protected.GET("/artworks/:id/favorite", favoriteHandler.Status)
	protected.GET("/favorites", favoriteHandler.List)
}
