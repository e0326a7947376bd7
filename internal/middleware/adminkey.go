package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdminKey gates administrative writes (notification publishing)
// behind a shared secret passed in the X-Admin-Key header. Comparison is
// constant time. An empty configured key disables the endpoint entirely
// rather than leaving it open.
func RequireAdminKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "admin endpoint disabled"})
			}
			got := c.Request().Header.Get("X-Admin-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid admin key"})
			}
			return next(c)
		}
	}
}
