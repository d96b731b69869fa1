package handler

import (
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/storage"
)

// AdminHandler bundles the services behind the /api/admin routes.
type AdminHandler struct {
	Accounts   *service.AccountService
	Cinemas    *service.CinemaService
	Movies     *service.MovieService
	Showtimes  *service.ShowtimeService
	Promotions *service.PromotionService
	Bookings   *service.BookingService
	Dashboard  *service.DashboardService
	Files      *storage.Local
}

// NewAdminHandler panics if any dependency is nil.
func NewAdminHandler(
	accounts *service.AccountService,
	cinemas *service.CinemaService,
	movies *service.MovieService,
	showtimes *service.ShowtimeService,
	promotions *service.PromotionService,
	bookings *service.BookingService,
	dashboard *service.DashboardService,
	files *storage.Local,
) *AdminHandler {
	if accounts == nil || cinemas == nil || movies == nil || showtimes == nil ||
		promotions == nil || bookings == nil || dashboard == nil || files == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Accounts:   accounts,
		Cinemas:    cinemas,
		Movies:     movies,
		Showtimes:  showtimes,
		Promotions: promotions,
		Bookings:   bookings,
		Dashboard:  dashboard,
		Files:      files,
	}
}
