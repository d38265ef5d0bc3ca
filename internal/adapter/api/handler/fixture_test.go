package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"expressivart/internal/adapter/api"
	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/domain/entity"
	"expressivart/internal/infrastructure/realtime"
	ws "expressivart/internal/infrastructure/websocket"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
)

// tokenVerifier accepts "token-<uid>".
type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(_ context.Context, token string) (*entity.Principal, error) {
	uid, ok := strings.CutPrefix(token, "token-")
	if !ok || uid == "" {
		return nil, fmt.Errorf("unknown token %q", token)
	}
	return &entity.Principal{UserID: uid, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type apiFixture struct {
	e        *echo.Echo
	hub      *realtime.Hub
	chat     *usecase.ChatUseCase
	artworks *memArtworks
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	profiles := newMemProfiles(
		&entity.Profile{ID: "buyer1", FullName: "Bea Buyer", UserType: entity.UserTypeBuyer},
		&entity.Profile{ID: "buyer2", FullName: "Bo Buyer", UserType: entity.UserTypeBuyer},
		&entity.Profile{ID: "seller1", FullName: "Sol Seller", UserType: entity.UserTypeSeller},
	)
	now := time.Now().UTC()
	artworks := newMemArtworks(
		&entity.Artwork{ID: "art1", ArtistID: "seller1", Title: "Dusk", Price: 120, Status: entity.ArtworkApproved, CreatedAt: now.Add(-time.Hour)},
		&entity.Artwork{ID: "art2", ArtistID: "seller1", Title: "Dawn", Price: 80, Status: entity.ArtworkApproved, CreatedAt: now},
		&entity.Artwork{ID: "art3", ArtistID: "seller1", Title: "Draft", Price: 50, Status: entity.ArtworkPending, CreatedAt: now},
	)

	authUseCase := usecase.NewAuthUseCase(tokenVerifier{}, nil, nil, profiles, newMemRoles())
	chatUseCase := usecase.NewChatUseCase(newMemConversations(), newMemMessages(), artworks, profiles, hub, hub, nil)
	artworkUseCase := usecase.NewArtworkUseCase(artworks, profiles, nil, profiles)

	manager := ws.NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	manager.Start(ctx)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	authMiddleware := middleware.NewAuthMiddleware(authUseCase)
	chatHandler := NewChatHandler(chatUseCase)
	conversations := e.Group("/v1/conversations", authMiddleware.Authenticate)
	conversations.GET("", chatHandler.ListConversations)
	conversations.POST("/resolve", chatHandler.ResolveConversation)
	conversations.GET("/:id", chatHandler.GetConversation)
	conversations.GET("/:id/messages", chatHandler.GetMessages)
	conversations.POST("/:id/messages", chatHandler.SendMessage)
	conversations.PUT("/:id/read", chatHandler.MarkRead)

	e.GET("/v1/artworks", NewArtworkHandler(artworkUseCase).Gallery)

	wsHandler := NewWebSocketHandler(manager, authUseCase, chatUseCase, usecase.NewChangeFeed(chatUseCase, hub), []string{"*"})
	e.GET("/v1/ws", wsHandler.HandleWebSocket)

	return &apiFixture{e: e, hub: hub, chat: chatUseCase, artworks: artworks}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

// decodeData re-marshals resp.Data into v.
func decodeData(t *testing.T, resp response.Response, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func (f *apiFixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.e)
	t.Cleanup(srv.Close)
	return srv
}

func (f *apiFixture) wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?token=" + token
}

