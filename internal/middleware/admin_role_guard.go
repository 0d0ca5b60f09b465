package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

// AdminRoleGuard must run after AuthJWT.
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication_error", Message: "Authentication required"})
			}

			if model.Role(role) != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "authorization_error", Message: "Admin access required"})
			}

			return next(c)
		}
	}
}
