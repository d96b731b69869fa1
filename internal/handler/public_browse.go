package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// PublicHandler serves the catalogue to anonymous clients.
type PublicHandler struct {
	Movies    *service.MovieService
	Cinemas   *service.CinemaService
	Showtimes *service.ShowtimeService
	Reviews   *service.ReviewService
}

func NewPublicHandler(movies *service.MovieService, cinemas *service.CinemaService,
	showtimes *service.ShowtimeService, reviews *service.ReviewService) *PublicHandler {
	if movies == nil || cinemas == nil || showtimes == nil || reviews == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Movies: movies, Cinemas: cinemas, Showtimes: showtimes, Reviews: reviews}
}

func (h *PublicHandler) ListMovies(c echo.Context) error {
	showing, err := queryBool(c, "is_showing")
	if err != nil {
		return err
	}
	f := repository.MovieFilter{Search: c.QueryParam("search"), IsShowing: showing, Page: page(c)}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Movies.ListMovies(ctx, f)
	if err != nil {
		return err
	}
	return paged(c, items, total, f.Page)
}

func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.GetMovie(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, m, "")
}

// MovieShowtimes lists the scheduled future showtimes of a movie, soonest
// first.
func (h *PublicHandler) MovieShowtimes(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p := page(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Showtimes.Upcoming(ctx, id, p)
	if err != nil {
		return err
	}
	return paged(c, items, total, p)
}

func (h *PublicHandler) MovieReviews(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Reviews.ListByMovie(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, items, "")
}

func (h *PublicHandler) ListCinemas(c echo.Context) error {
	f := repository.CinemaFilter{City: c.QueryParam("city"), Search: c.QueryParam("search"), Page: page(c)}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Cinemas.ListCinemas(ctx, f)
	if err != nil {
		return err
	}
	return paged(c, items, total, f.Page)
}

// ShowtimeSeats returns the seat map of a showtime with each seat's booked
// state.
func (h *PublicHandler) ShowtimeSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Showtimes.Seats(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, m, "")
}
