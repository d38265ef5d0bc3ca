package handler

import (
	"io"

	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/usecase"
	"expressivart/pkg/errors"
	"expressivart/pkg/response"
)

type UploadHandler struct {
	uploadUseCase *usecase.UploadUseCase
	maxBytes      int64
}

func NewUploadHandler(uploadUseCase *usecase.UploadUseCase, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadUseCase: uploadUseCase,
		maxBytes:      maxBytes,
	}
}

// UploadImage accepts a multipart "file" field and an optional "folder".
func (h *UploadHandler) UploadImage(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("file is required", err))
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		return response.Error(c, errors.BadRequest("File is too large", nil))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Could not read uploaded file", err))
	}
	defer src.Close()

	var reader io.Reader = src
	if h.maxBytes > 0 {
		// One extra byte lets the use case see an oversized body.
		reader = io.LimitReader(src, h.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return response.Error(c, errors.BadRequest("Could not read uploaded file", err))
	}

	result, err := h.uploadUseCase.UploadImage(c.Request().Context(), uid, c.FormValue("folder"), data)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, result)
}
