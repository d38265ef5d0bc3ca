package handler

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/domain/entity"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type checkoutRequest struct {
	ArtworkID          string `json:"artwork_id" validate:"required"`
	ShippingAddress    string `json:"shipping_address" validate:"required,max=200"`
	ShippingCity       string `json:"shipping_city" validate:"required,max=100"`
	ShippingState      string `json:"shipping_state" validate:"max=100"`
	ShippingCountry    string `json:"shipping_country" validate:"required,max=100"`
	ShippingPostalCode string `json:"shipping_postal_code" validate:"required,max=20"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.Checkout(c.Request().Context(), uid, usecase.CheckoutInput{
		ArtworkID:          req.ArtworkID,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingState:      req.ShippingState,
		ShippingCountry:    req.ShippingCountry,
		ShippingPostalCode: req.ShippingPostalCode,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	orders, err := h.orderUseCase.ListForBuyer(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) ListSellerOrders(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	orders, err := h.orderUseCase.ListForSeller(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	order, err := h.orderUseCase.GetOrder(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.UpdateStatus(c.Request().Context(), uid, c.Param("id"), entity.OrderStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}
