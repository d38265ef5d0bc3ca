package handler

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/domain/entity"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
)

type DevTokenHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewDevTokenHandler(authUseCase *usecase.AuthUseCase) *DevTokenHandler {
	return &DevTokenHandler{
		authUseCase: authUseCase,
	}
}

type devTokenRequest struct {
	UID      string `json:"uid" validate:"required,max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
	UserType string `json:"user_type" validate:"omitempty,oneof=buyer seller"`
	Admin    bool   `json:"admin"`
}

// IssueToken mints a local token for uid, creating its profile on first use.
func (h *DevTokenHandler) IssueToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = req.UID
	}

	result, err := h.authUseCase.IssueDevToken(c.Request().Context(), usecase.DevTokenInput{
		UserID:   req.UID,
		Email:    req.Email,
		FullName: fullName,
		UserType: entity.UserType(req.UserType),
		Admin:    req.Admin,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
