package handler

import (
	"net/http"
	"net/url"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	ws "expressivart/internal/infrastructure/websocket"
	"expressivart/internal/usecase"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
	"expressivart/pkg/response"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	authUseCase *usecase.AuthUseCase
	chatUseCase *usecase.ChatUseCase
	feed        *usecase.ChangeFeed
	upgrader    gorillaws.Upgrader
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	authUseCase *usecase.AuthUseCase,
	chatUseCase *usecase.ChatUseCase,
	feed *usecase.ChangeFeed,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		authUseCase: authUseCase,
		chatUseCase: chatUseCase,
		feed:        feed,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// HandleWebSocket authenticates with ?token= or a bearer header, then upgrades.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = middleware.BearerToken(c)
	}
	if token == "" {
		return response.Error(c, errors.AuthRequired())
	}

	principal, err := h.authUseCase.Authenticate(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("Websocket upgrade failed for %s: %v", principal.UserID, err)
		return nil
	}

	client := ws.NewClient(principal.UserID, conn)
	h.wsManager.Join(client)
	connection := newWSConnection(client, h.wsManager, principal, h.authUseCase, h.chatUseCase, h.feed)

	go client.WritePump()
	go func() {
		defer connection.close()
		client.ReadPump(connection.handle)
	}()

	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	hosts := make(map[string]bool, len(allowed))
	allowAll := false
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
			continue
		}
		hosts[strings.TrimRight(origin, "/")] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if hosts[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
