package handler

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) Toggle(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	status, err := h.favoriteUseCase.Toggle(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, status)
}

func (h *FavoriteHandler) Status(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	status, err := h.favoriteUseCase.Status(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, status)
}

func (h *FavoriteHandler) List(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	favorites, err := h.favoriteUseCase.List(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, favorites)
}
