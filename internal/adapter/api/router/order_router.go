package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

func SetupOrderRouter(e *echo.Echo, orderHandler *handler.OrderHandler, mw Middlewares) {
	orders := e.Group("/v1/orders")
	orders.Use(mw.Auth.Authenticate)
	orders.POST("", orderHandler.Checkout)
	orders.GET("", orderHandler.ListMyOrders)
	orders.GET("/:id", orderHandler.GetOrder)

	seller := e.Group("/v1/seller/orders")
	seller.Use(mw.Auth.Authenticate)
	seller.GET("", orderHandler.ListSellerOrders)
	seller.PUT("/:id/status", orderHandler.UpdateStatus)
}
