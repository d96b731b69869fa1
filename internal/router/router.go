// Package router builds the echo instance: global middleware, the error
// handler and every API route.
package router

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/storage"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Public   *handler.PublicHandler
	Customer *handler.CustomerHandler
	Admin    *handler.AdminHandler
}

// Options configures authentication and the global middleware.
type Options struct {
	JWTSecret   string
	Revoked     session.Denylist
	Lookup      middleware.UserLookup
	CORSOrigins []string
	BodyLimit   int64 // bytes; zero disables the limit
	RateLimit   config.RateLimitConfig
	Redis       *redis.Client // optional, shared rate-limit buckets
	Files       *storage.Local
}

// New returns an echo instance with all routes registered.
func New(log *zap.Logger, h Handlers, o Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewErrorHandler(log)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: o.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderAccept},
	}))
	if o.BodyLimit > 0 {
		e.Use(echomw.BodyLimit(strconv.FormatInt(o.BodyLimit, 10) + "B"))
	}
	e.Use(middleware.NewTokenBucket(o.RateLimit, o.JWTSecret, o.Redis, log))

	auth := middleware.JWTAuth(o.JWTSecret, o.Revoked)

	registerPublic(e, h, auth)
	registerCustomer(e.Group("/api"), h.Customer, auth)
	registerAdmin(e.Group("/api/admin", auth, middleware.RequireAdmin(o.Lookup)), h.Admin)

	serve := handler.ServeUploads(o.Files)
	e.GET(storage.URLPrefix+"*", serve)
	e.HEAD(storage.URLPrefix+"*", serve)
	return e
}

func registerPublic(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc) {
	e.GET("/api", h.Health.Index)
	e.GET("/api/health", h.Health.Health)

	a := e.Group("/api/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.GET("/me", h.Auth.Me, auth)
	a.POST("/logout", h.Auth.Logout, auth)

	p := h.Public
	e.GET("/api/movies", p.ListMovies)
	e.GET("/api/movies/:id", p.GetMovie)
	e.GET("/api/movies/:id/showtimes", p.MovieShowtimes)
	e.GET("/api/movies/:id/reviews", p.MovieReviews)
	e.GET("/api/cinemas", p.ListCinemas)
	e.GET("/api/showtimes/:id/seats", p.ShowtimeSeats)
}
