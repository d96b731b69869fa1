package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Keys under which JWTAuth stores the verified claims in the echo context.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenID  = "jti"
	CtxTokenExp = "token_exp"
)

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(CtxUserID).(uint64)
	return id
}

// Role returns the role claim of the access token.
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// TokenID returns the jti of the access token.
func TokenID(c echo.Context) string {
	s, _ := c.Get(CtxTokenID).(string)
	return s
}

// TokenExp returns the expiry of the access token.
func TokenExp(c echo.Context) time.Time {
	t, _ := c.Get(CtxTokenExp).(time.Time)
	return t
}

// deny writes the API error envelope and stops the chain.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

