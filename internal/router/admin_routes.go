package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
)

// registerAdmin mounts /api/admin; g already carries JWTAuth and
// RequireAdmin.
func registerAdmin(g *echo.Group, a *handler.AdminHandler) {
	g.GET("/stats", a.Stats)

	// ---- Accounts ----
	g.GET("/accounts", a.ListAccounts)
	g.POST("/accounts", a.CreateAccount)
	g.GET("/accounts/:id", a.GetAccount)
	g.PUT("/accounts/:id", a.UpdateAccount)
	g.DELETE("/accounts/:id", a.DeleteAccount)

	// ---- Cinemas, screens and seats ----
	g.GET("/cinemas", a.ListCinemas)
	g.POST("/cinemas", a.CreateCinema)
	g.GET("/cinemas/:id", a.GetCinema)
	g.PUT("/cinemas/:id", a.UpdateCinema)
	g.DELETE("/cinemas/:id", a.DeleteCinema)

	g.GET("/cinemas/:id/screens", a.ListScreens)
	g.POST("/cinemas/:id/screens", a.CreateScreen)
	g.GET("/cinemas/:id/screens/:screen_id", a.GetScreen)
	g.PUT("/cinemas/:id/screens/:screen_id", a.UpdateScreen)
	g.DELETE("/cinemas/:id/screens/:screen_id", a.DeleteScreen)

	seats := "/cinemas/:id/screens/:screen_id/seats"
	g.GET(seats, a.ListSeats)
	g.POST(seats, a.CreateSeats)
	g.POST(seats+"/bulk-delete", a.BulkDeleteSeats)
	g.DELETE(seats+"/bulk-delete", a.BulkDeleteSeats)
	g.PUT(seats+"/:seat_id", a.UpdateSeat)
	g.DELETE(seats+"/:seat_id", a.DeleteSeat)

	// ---- Movies ----
	g.GET("/movies", a.ListMovies)
	g.POST("/movies", a.CreateMovie)
	g.GET("/movies/actors", a.ListActors)
	g.POST("/movies/actors", a.CreateActor)
	g.GET("/movies/:id", a.GetMovie)
	g.PUT("/movies/:id", a.UpdateMovie)
	g.DELETE("/movies/:id", a.DeleteMovie)

	// ---- Showtimes ----
	g.GET("/showtimes", a.ListShowtimes)
	g.POST("/showtimes", a.CreateShowtime)
	g.GET("/showtimes/available-screens", a.AvailableScreens)
	g.POST("/showtimes/reconcile", a.ReconcileShowtimes)
	g.GET("/showtimes/:id", a.GetShowtime)
	g.PUT("/showtimes/:id", a.UpdateShowtime)
	g.DELETE("/showtimes/:id", a.DeleteShowtime)

	// ---- Promotions ----
	g.GET("/promotions", a.ListPromotions)
	g.POST("/promotions", a.CreatePromotion)
	g.GET("/promotions/:id", a.GetPromotion)
	g.PUT("/promotions/:id", a.UpdatePromotion)
	g.DELETE("/promotions/:id", a.DeletePromotion)

	// ---- Bookings ----
	g.GET("/bookings", a.ListBookings)
	g.GET("/bookings/:id", a.GetBooking)

	g.POST("/upload", a.Upload)
}
