package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets conservative headers on admin routes. Addon routes are
// fetched cross-origin by players, so they keep their own caching headers and
// only get the sniffing and referrer protections.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if isAdminPath(c.Request().URL.Path) {
				h.Set("X-Frame-Options", "SAMEORIGIN")
				h.Set("Content-Security-Policy", "frame-ancestors 'self'")
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
				h.Set("Pragma", "no-cache")
			}

			return next(c)
		}
	}
}

func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/api") || path == "/metrics" || path == "/health"
}
