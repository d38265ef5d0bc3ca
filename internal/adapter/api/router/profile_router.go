package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

func SetupProfileRouter(e *echo.Echo, profileHandler *handler.ProfileHandler, mw Middlewares) {
	e.GET("/v1/profiles/:id", profileHandler.GetPublicProfile)

	profile := e.Group("/v1/profile")
	profile.Use(mw.Auth.Authenticate)
	profile.GET("", profileHandler.GetMyProfile)
	profile.PUT("", profileHandler.UpdateMyProfile)
}
