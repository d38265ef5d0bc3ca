package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

// SetupDevRouter mounts the local token issuer. It is only wired when the
// server runs without Firebase.
func SetupDevRouter(e *echo.Echo, devTokenHandler *handler.DevTokenHandler) {
	if devTokenHandler == nil {
		return
	}
	e.POST("/v1/dev/token", devTokenHandler.IssueToken)
}
