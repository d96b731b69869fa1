package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// CustomerHandler serves the bookings and reviews of the signed-in user.
type CustomerHandler struct {
	Bookings *service.BookingService
	Reviews  *service.ReviewService
}

func NewCustomerHandler(bookings *service.BookingService, reviews *service.ReviewService) *CustomerHandler {
	if bookings == nil || reviews == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Bookings: bookings, Reviews: reviews}
}

type bookingReq struct {
	ShowtimeID    uint64   `json:"showtime_id" validate:"required"`
	SeatIDs       []uint64 `json:"seat_ids" validate:"required,min=1,max=20"`
	PromotionCode string   `json:"promotion_code" validate:"max=50"`
}

type payReq struct {
	PaymentMethod string `json:"payment_method" validate:"required,max=50"`
}

type reviewReq struct {
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

// caller identifies the authenticated user; the role comes from the token.
func caller(c echo.Context) service.Caller {
	return service.Caller{UserID: middleware.UserID(c), Admin: middleware.Role(c) == model.RoleAdmin}
}

func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	var req bookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.Create(ctx, middleware.UserID(c), service.BookingInput(req))
	if err != nil {
		return err
	}
	return created(c, b, "Booking created successfully")
}

func (h *CustomerHandler) ListBookings(c echo.Context) error {
	p := page(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Bookings.ListMine(ctx, middleware.UserID(c), p)
	if err != nil {
		return err
	}
	return paged(c, items, total, p)
}

func (h *CustomerHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.Get(ctx, caller(c), id)
	if err != nil {
		return err
	}
	return ok(c, b, "")
}

func (h *CustomerHandler) PayBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req payReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.Pay(ctx, middleware.UserID(c), id, req.PaymentMethod)
	if err != nil {
		return err
	}
	return ok(c, b, "Payment successful")
}

func (h *CustomerHandler) CancelBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.Cancel(ctx, caller(c), id)
	if err != nil {
		return err
	}
	return ok(c, b, "Booking cancelled successfully")
}

func (h *CustomerHandler) CreateReview(c echo.Context) error {
	movieID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reviews.Create(ctx, middleware.UserID(c), movieID, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return created(c, r, "Review created successfully")
}
