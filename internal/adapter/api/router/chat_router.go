package router

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/handler"
)

// SetupChatRouter sets up the conversation REST routes (live updates go over /v1/ws)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, mw Middlewares) {
	chatGroup := e.Group("/v1/conversations")
	chatGroup.Use(mw.Auth.Authenticate)

	chatGroup.GET("", chatHandler.ListConversations)
	chatGroup.POST("/resolve", chatHandler.ResolveConversation)
	chatGroup.GET("/:id", chatHandler.GetConversation)
	chatGroup.PUT("/:id/read", chatHandler.MarkRead)

	chatGroup.GET("/:id/messages", chatHandler.GetMessages)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
}
