package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/domain/entity"
	"expressivart/internal/usecase"
	"expressivart/pkg/errors"
	"expressivart/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type updateProfileRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Bio          *string `json:"bio" validate:"omitempty,max=1000"`
	ProfilePhoto *string `json:"profile_photo" validate:"omitempty,url"`
	UserType     *string `json:"user_type" validate:"omitempty,oneof=buyer seller"`
	MobileNumber *string `json:"mobile_number" validate:"omitempty,max=32"`
	Address      *string `json:"address" validate:"omitempty,max=200"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code" validate:"omitempty,max=20"`
	Gender       *string `json:"gender" validate:"omitempty,max=32"`
	DateOfBirth  *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

func (h *ProfileHandler) GetMyProfile(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

func (h *ProfileHandler) GetPublicProfile(c echo.Context) error {
	profile, err := h.profileUseCase.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

func (h *ProfileHandler) UpdateMyProfile(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.UpdateProfileInput{
		FullName:     req.FullName,
		Bio:          req.Bio,
		ProfilePhoto: req.ProfilePhoto,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		PostalCode:   req.PostalCode,
		Gender:       req.Gender,
	}
	if req.UserType != nil {
		ut := entity.UserType(*req.UserType)
		input.UserType = &ut
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return response.Error(c, errors.BadRequest("date_of_birth must be YYYY-MM-DD", err))
		}
		input.DateOfBirth = &dob
	}

	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), uid, input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}
