package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// ListBookings filters every booking by status, user_id and showtime_id.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	var (
		f   = repository.BookingFilter{Status: c.QueryParam("status"), Page: page(c)}
		err error
	)
	if f.UserID, err = queryID(c, "user_id"); err != nil {
		return err
	}
	if f.ShowtimeID, err = queryID(c, "showtime_id"); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Bookings.List(ctx, f)
	if err != nil {
		return err
	}
	return paged(c, items, total, f.Page)
}

func (h *AdminHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.Get(ctx, service.Caller{UserID: middleware.UserID(c), Admin: true}, id)
	if err != nil {
		return err
	}
	return ok(c, b, "")
}

func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Dashboard.Stats(ctx)
	if err != nil {
		return err
	}
	return ok(c, st, "")
}
