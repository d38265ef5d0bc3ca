package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"expressivart/internal/domain/entity"
	"expressivart/internal/usecase"
	"expressivart/pkg/errors"
)

const (
	ContextKeyUID       = "uid"
	ContextKeyPrincipal = "principal"
)

type AuthMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthMiddleware(authUseCase *usecase.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		authUseCase: authUseCase,
	}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := BearerToken(c)
		if token == "" {
			return errors.AuthRequired()
		}

		principal, err := m.authUseCase.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(ContextKeyUID, principal.UserID)
		c.Set(ContextKeyPrincipal, principal)
		return next(c)
	}
}

// OptionalAuth sets the user when a valid token is present and continues either way.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := BearerToken(c); token != "" {
			if principal, err := m.authUseCase.Authenticate(c.Request().Context(), token); err == nil {
				c.Set(ContextKeyUID, principal.UserID)
				c.Set(ContextKeyPrincipal, principal)
			}
		}
		return next(c)
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the authenticated user ID or AUTH_REQUIRED.
func CurrentUser(c echo.Context) (string, error) {
	uid, ok := c.Get(ContextKeyUID).(string)
	if !ok || uid == "" {
		return "", errors.AuthRequired()
	}
	return uid, nil
}

// OptionalUser returns the authenticated user ID or "".
func OptionalUser(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}

func CurrentPrincipal(c echo.Context) (*entity.Principal, bool) {
	p, ok := c.Get(ContextKeyPrincipal).(*entity.Principal)
	return p, ok && p != nil
}
