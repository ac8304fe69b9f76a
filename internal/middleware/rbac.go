package middleware

import (
	"net/http"
	"slices"

	"rentflow/internal/common"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// RequireRole admits requests whose token carries one of roles. It must run after JWTMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			role, ok := common.GetRoleFromContext(ctx)
			if !ok || !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
