package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// UserLookup loads a user by id.
type UserLookup func(ctx context.Context, id uint64) (*model.User, error)

// RequireAdmin lets the request through only when the authenticated user
// still exists and has the admin role. The role is read from the user row,
// not the token, so a demotion takes effect immediately. It must run after
// JWTAuth.
func RequireAdmin(lookup UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := UserID(c)
			if id == 0 {
				return deny(c, http.StatusUnauthorized, msgMissingToken)
			}
			u, err := lookup(c.Request().Context(), id)
			switch {
			case apperr.KindOf(err) == apperr.KindNotFound:
				return deny(c, http.StatusNotFound, "User not found")
			case err != nil:
				return err
			case !u.IsAdmin():
				return deny(c, http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
