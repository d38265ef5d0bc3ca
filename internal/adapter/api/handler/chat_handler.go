package handler

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type resolveConversationRequest struct {
	ArtworkID string `json:"artwork_id" validate:"required"`
	SellerID  string `json:"seller_id"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	conversations, err := h.chatUseCase.ListConversations(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversations)
}

// ResolveConversation returns the caller's conversation about an artwork,
// creating it on first contact.
func (h *ChatHandler) ResolveConversation(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req resolveConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.chatUseCase.StartConversation(c.Request().Context(), uid, req.ArtworkID, req.SellerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversation)
}

func (h *ChatHandler) GetConversation(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	conversation, err := h.chatUseCase.GetConversation(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversation)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	messages, err := h.chatUseCase.History(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.Send(c.Request().Context(), c.Param("id"), uid, req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	count, err := h.chatUseCase.MarkRead(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"marked_read": count})
}
