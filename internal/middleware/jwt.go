package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

const (
	msgMissingToken = "Missing authentication token"
	msgInvalidToken = "Invalid or expired token"
)

// JWTAuth validates the Bearer access token of each request and stores the
// subject, role, jti and expiry in the context (see the Ctx keys). Tokens
// whose jti was revoked on logout are rejected. A denylist lookup failure
// is treated as a rejection.
func JWTAuth(secret string, revoked session.Denylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return deny(c, http.StatusUnauthorized, msgMissingToken)
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return deny(c, http.StatusUnauthorized, msgInvalidToken)
			}
			if revoked != nil && claims.JTI != "" {
				gone, err := revoked.IsRevoked(c.Request().Context(), claims.JTI)
				if err != nil || gone {
					return deny(c, http.StatusUnauthorized, msgInvalidToken)
				}
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxTokenID, claims.JTI)
			c.Set(CtxTokenExp, claims.Exp)
			return next(c)
		}
	}
}
