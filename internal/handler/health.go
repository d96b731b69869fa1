package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability. DB is nil
// when the in-memory store is used.
type HealthHandler struct {
	DB      Pinger
	Version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{DB: db, Version: version}
}

// Index describes the API.
func (h *HealthHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Welcome to the movie ticket booking API",
		"version": h.Version,
		"endpoints": echo.Map{
			"auth":   "/api/auth",
			"health": "/api/health",
			"movies": "/api/movies",
			"admin":  "/api/admin",
		},
	})
}

// Health pings the database. The server itself is up whenever this runs,
// so the status stays 200 and only the database field changes.
func (h *HealthHandler) Health(c echo.Context) error {
	state := "connected"
	if h.DB != nil {
		ctx, cancel := reqCtx(c)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			state = "disconnected"
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Server is running",
		"database": state,
	})
}
