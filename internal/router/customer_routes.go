package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
)

// registerCustomer mounts the routes of a signed-in user. auth is attached
// per route so unknown /api paths still answer 404.
func registerCustomer(g *echo.Group, h *handler.CustomerHandler, auth echo.MiddlewareFunc) {
	g.POST("/bookings", h.CreateBooking, auth)
	g.GET("/bookings", h.ListBookings, auth)
	g.GET("/bookings/:id", h.GetBooking, auth)
	g.POST("/bookings/:id/pay", h.PayBooking, auth)
	g.POST("/bookings/:id/cancel", h.CancelBooking, auth)

	g.POST("/movies/:id/reviews", h.CreateReview, auth)
}
