package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

func SetupUploadRouter(e *echo.Echo, uploadHandler *handler.UploadHandler, mw Middlewares) {
	if uploadHandler == nil {
		return
	}
	e.POST("/v1/uploads", uploadHandler.UploadImage, mw.Auth.Authenticate)
}
