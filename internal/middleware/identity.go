package middleware

// identity.go provides the identity helper shared by the rate limiter and
// cache key builders. It reads the user id that TokenAuth stored in the
// Echo context; "guest" is returned for unauthenticated requests so public
// routes still get a stable bucket.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func identityKey(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		if v != "" {
			return v
		}
	}
	return "guest"
}
