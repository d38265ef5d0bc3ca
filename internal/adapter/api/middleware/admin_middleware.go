package middleware

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
)

type AdminMiddleware struct {
	roleRepo repository.UserRoleRepository
}

func NewAdminMiddleware(roleRepo repository.UserRoleRepository) *AdminMiddleware {
	return &AdminMiddleware{
		roleRepo: roleRepo,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := CurrentUser(c)
		if err != nil {
			return err
		}

		isAdmin, err := m.roleRepo.HasRole(c.Request().Context(), uid, entity.RoleAdmin)
		if err != nil {
			return errors.Internal("Failed to verify admin privileges", err)
		}
		if !isAdmin {
			return errors.Forbidden("Admin privileges required", nil)
		}

		return next(c)
	}
}
