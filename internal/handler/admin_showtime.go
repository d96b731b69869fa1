package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// showtimeReq accepts show_datetime or the show_date + show_time pair.
type showtimeReq struct {
	MovieID      uint64  `json:"movie_id" validate:"required"`
	ScreenID     uint64  `json:"screen_id" validate:"required"`
	ShowDatetime string  `json:"show_datetime"`
	ShowDate     string  `json:"show_date"`
	ShowTime     string  `json:"show_time"`
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	Status       string  `json:"status"`
}

type showtimePatchReq struct {
	MovieID      *uint64  `json:"movie_id"`
	ScreenID     *uint64  `json:"screen_id"`
	ShowDatetime *string  `json:"show_datetime"`
	ShowDate     *string  `json:"show_date"`
	ShowTime     *string  `json:"show_time"`
	BasePrice    *float64 `json:"base_price"`
	Status       *string  `json:"status"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListShowtimes filters by movie_id, cinema_id, screen_id, show_date and
// status.
func (h *AdminHandler) ListShowtimes(c echo.Context) error {
	var (
		f   = repository.ShowtimeFilter{Status: c.QueryParam("status"), Page: page(c)}
		err error
	)
	if f.MovieID, err = queryID(c, "movie_id"); err != nil {
		return err
	}
	if f.CinemaID, err = queryID(c, "cinema_id"); err != nil {
		return err
	}
	if f.ScreenID, err = queryID(c, "screen_id"); err != nil {
		return err
	}
	if raw := strings.TrimSpace(c.QueryParam("show_date")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return apperr.Validation("Invalid show_date format. Use YYYY-MM-DD")
		}
		f.Date = &d
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Showtimes.List(ctx, f)
	if err != nil {
		return err
	}
	return paged(c, items, total, f.Page)
}

func (h *AdminHandler) GetShowtime(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Showtimes.Get(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, v, "")
}

func (h *AdminHandler) CreateShowtime(c echo.Context) error {
	var req showtimeReq
	if err := bind(c, &req); err != nil {
		return err
	}
	at, err := service.ParseShowDatetime(req.ShowDatetime, req.ShowDate, req.ShowTime)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Showtimes.Create(ctx, service.ShowtimeInput{
		MovieID:      req.MovieID,
		ScreenID:     req.ScreenID,
		ShowDatetime: at,
		BasePrice:    req.BasePrice,
		Status:       req.Status,
	})
	if err != nil {
		return err
	}
	return created(c, st, "Showtime created successfully")
}

func (h *AdminHandler) UpdateShowtime(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req showtimePatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p := service.ShowtimePatch{
		MovieID:   req.MovieID,
		ScreenID:  req.ScreenID,
		BasePrice: req.BasePrice,
		Status:    req.Status,
	}
	if req.ShowDatetime != nil || req.ShowDate != nil {
		at, err := service.ParseShowDatetime(deref(req.ShowDatetime), deref(req.ShowDate), deref(req.ShowTime))
		if err != nil {
			return err
		}
		p.ShowDatetime = &at
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Showtimes.Update(ctx, id, p)
	if err != nil {
		return err
	}
	return ok(c, st, "Showtime updated successfully")
}

func (h *AdminHandler) DeleteShowtime(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Showtimes.Delete(ctx, id); err != nil {
		return err
	}
	return ok(c, nil, "Showtime deleted successfully")
}

// AvailableScreens lists the screens of cinema_id that are free for a
// screening at show_datetime lasting duration_minutes (or the length of
// movie_id).
func (h *AdminHandler) AvailableScreens(c echo.Context) error {
	cinemaID, err := queryID(c, "cinema_id")
	if err != nil {
		return err
	}
	movieID, err := queryID(c, "movie_id")
	if err != nil {
		return err
	}
	if cinemaID == 0 {
		return apperr.Validation("cinema_id is required")
	}
	at, err := service.ParseShowDatetime(c.QueryParam("show_datetime"), c.QueryParam("show_date"), c.QueryParam("show_time"))
	if err != nil {
		return err
	}
	duration := 0
	if raw := strings.TrimSpace(c.QueryParam("duration_minutes")); raw != "" {
		if duration, err = strconv.Atoi(raw); err != nil || duration <= 0 {
			return apperr.Validation("Invalid duration_minutes")
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Showtimes.AvailableScreens(ctx, cinemaID, at, duration, movieID)
	if err != nil {
		return err
	}
	return ok(c, res, "")
}

// ReconcileShowtimes marks started showtimes as completed.
func (h *AdminHandler) ReconcileShowtimes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Showtimes.Reconcile(ctx)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"updated": n}, strconv.Itoa(n)+" showtimes marked as completed")
}
