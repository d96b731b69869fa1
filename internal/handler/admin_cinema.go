package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

type cinemaReq struct {
	Name        string   `json:"name" validate:"required"`
	Address     string   `json:"address" validate:"required"`
	City        string   `json:"city" validate:"required"`
	PhoneNumber *string  `json:"phone_number"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type cinemaPatchReq struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	PhoneNumber *string  `json:"phone_number"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type screenReq struct {
	Name       string `json:"screen_name" validate:"required"`
	ScreenType string `json:"screen_type"`
}

type screenPatchReq struct {
	Name       *string `json:"screen_name"`
	ScreenType *string `json:"screen_type"`
}

type seatSpecReq struct {
	Row      string `json:"seat_row"`
	Number   int    `json:"seat_number"`
	SeatType string `json:"seat_type"`
}

// seatBatchReq is either an explicit seat list or a rows x seats_per_row
// grid.
type seatBatchReq struct {
	Seats       []seatSpecReq `json:"seats"`
	Rows        []string      `json:"rows"`
	SeatsPerRow int           `json:"seats_per_row" validate:"gte=0,lte=200"`
	SeatType    string        `json:"seat_type"`
}

type seatPatchReq struct {
	SeatType    *string `json:"seat_type"`
	IsAvailable *bool   `json:"is_available"`
}

type bulkDeleteReq struct {
	SeatIDs []uint64 `json:"seat_ids" validate:"required,min=1"`
}

// cinemaScreenIDs reads the :id and :screen_id path parameters.
func cinemaScreenIDs(c echo.Context) (cinemaID, screenID uint64, err error) {
	if cinemaID, err = pathID(c, "id"); err != nil {
		return 0, 0, err
	}
	if screenID, err = pathID(c, "screen_id"); err != nil {
		return 0, 0, err
	}
	return cinemaID, screenID, nil
}

// ----- cinemas -----

// ListCinemas supports city, search and pagination.
func (h *AdminHandler) ListCinemas(c echo.Context) error {
	p := page(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Cinemas.ListCinemas(ctx, repository.CinemaFilter{
		City:   c.QueryParam("city"),
		Search: c.QueryParam("search"),
		Page:   p,
	})
	if err != nil {
		return err
	}
	return paged(c, items, total, p)
}

func (h *AdminHandler) GetCinema(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Cinemas.GetCinema(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, d, "")
}

func (h *AdminHandler) CreateCinema(c echo.Context) error {
	var req cinemaReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cin, err := h.Cinemas.CreateCinema(ctx, service.CinemaInput{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		PhoneNumber: req.PhoneNumber,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return err
	}
	return created(c, cin, "Cinema created successfully")
}

func (h *AdminHandler) UpdateCinema(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req cinemaPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cin, err := h.Cinemas.UpdateCinema(ctx, id, service.CinemaPatch(req))
	if err != nil {
		return err
	}
	return ok(c, cin, "Cinema updated successfully")
}

func (h *AdminHandler) DeleteCinema(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Cinemas.DeleteCinema(ctx, id); err != nil {
		return err
	}
	return ok(c, nil, "Cinema deleted successfully")
}

// ----- screens -----

func (h *AdminHandler) ListScreens(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	screens, err := h.Cinemas.ListScreens(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, screens, "")
}

// GetScreen returns the screen with its seats grouped by row.
func (h *AdminHandler) GetScreen(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Cinemas.GetScreen(ctx, cid, sid)
	if err != nil {
		return err
	}
	return ok(c, d, "")
}

func (h *AdminHandler) CreateScreen(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req screenReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Cinemas.CreateScreen(ctx, id, req.Name, req.ScreenType)
	if err != nil {
		return err
	}
	return created(c, sc, "Screen created successfully")
}

func (h *AdminHandler) UpdateScreen(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	var req screenPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Cinemas.UpdateScreen(ctx, cid, sid, service.ScreenPatch(req))
	if err != nil {
		return err
	}
	return ok(c, sc, "Screen updated successfully")
}

func (h *AdminHandler) DeleteScreen(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Cinemas.DeleteScreen(ctx, cid, sid); err != nil {
		return err
	}
	return ok(c, nil, "Screen deleted successfully")
}

// ----- seats -----

func (h *AdminHandler) ListSeats(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.Cinemas.ListSeats(ctx, cid, sid)
	if err != nil {
		return err
	}
	return ok(c, seats, "")
}

// CreateSeats adds seats to a screen. Seats that already exist are
// skipped, so the count in the message may be lower than requested.
func (h *AdminHandler) CreateSeats(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	var req seatBatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	batch := service.SeatBatch{Rows: req.Rows, SeatsPerRow: req.SeatsPerRow, SeatType: req.SeatType}
	for _, s := range req.Seats {
		batch.Seats = append(batch.Seats, service.SeatSpec(s))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.Cinemas.CreateSeats(ctx, cid, sid, batch)
	if err != nil {
		return err
	}
	return created(c, seats, fmt.Sprintf("%d seats created successfully", len(seats)))
}

func (h *AdminHandler) UpdateSeat(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	seatID, err := pathID(c, "seat_id")
	if err != nil {
		return err
	}
	var req seatPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Cinemas.UpdateSeat(ctx, cid, sid, seatID, service.SeatPatch(req))
	if err != nil {
		return err
	}
	return ok(c, st, "Seat updated successfully")
}

func (h *AdminHandler) DeleteSeat(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	seatID, err := pathID(c, "seat_id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Cinemas.DeleteSeat(ctx, cid, sid, seatID); err != nil {
		return err
	}
	return ok(c, nil, "Seat deleted successfully")
}

// BulkDeleteSeats removes the listed seats of the screen; ids of other
// screens are ignored.
func (h *AdminHandler) BulkDeleteSeats(c echo.Context) error {
	cid, sid, err := cinemaScreenIDs(c)
	if err != nil {
		return err
	}
	var req bulkDeleteReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Cinemas.BulkDeleteSeats(ctx, cid, sid, req.SeatIDs)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"deleted_count": n}, fmt.Sprintf("%d seats deleted successfully", n))
}
