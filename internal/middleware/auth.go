package middleware // reusable HTTP middleware for the API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/utils"
)

// TokenAuth returns an Echo middleware that validates the session token
// and injects the caller's identity into the request context. The token is
// read from the legacy `token` header the frontend sends; a standard
// `Authorization: Bearer` header is accepted as well. Handlers access the
// identity via c.Get("user_id"), c.Get("email") and c.Get("name").
func TokenAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("token")
			if raw == "" {
				if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					raw = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing token"})
			}
			id, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token. Please login again."})
			}
			c.Set("user_id", id.UserID)
			c.Set("email", id.Email)
			c.Set("name", id.Name)
			return next(c)
		}
	}
}
