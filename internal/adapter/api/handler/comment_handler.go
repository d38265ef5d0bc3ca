package handler

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
)

type CommentHandler struct {
	commentUseCase *usecase.CommentUseCase
}

func NewCommentHandler(commentUseCase *usecase.CommentUseCase) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
	}
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *CommentHandler) ListComments(c echo.Context) error {
	comments, err := h.commentUseCase.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, comments)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	comment, err := h.commentUseCase.Add(c.Request().Context(), uid, c.Param("id"), req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, comment)
}
