package middleware

import (
	"github.com/labstack/echo/v4"
)

const APIVersion = "v1"

// VersionRoute creates the versioned route group and tags every response with the API version.
func VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(VersionHeader(version))
	return group
}

func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}
