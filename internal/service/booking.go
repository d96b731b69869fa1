package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// Caller identifies the authenticated user of a request.
type Caller struct {
	UserID uint64
	Admin  bool
}

// BookingService books seats, takes payments and cancels bookings.
type BookingService struct {
	uow repository.UnitOfWork
	now func() time.Time
	log *zap.Logger
}

func NewBookingService(uow repository.UnitOfWork, log *zap.Logger) *BookingService {
	return &BookingService{uow: uow, now: utcNow, log: nopIfNil(log)}
}

type BookingInput struct {
	ShowtimeID    uint64
	SeatIDs       []uint64
	PromotionCode string
}

// BookingDetail is a booking with its seats, promotions and payment.
type BookingDetail struct {
	model.Booking
	Seats      []model.BookingSeat      `json:"seats"`
	Promotions []model.BookingPromotion `json:"promotions"`
	Payment    *model.Payment           `json:"payment"`
}

const (
	msgBookingNotFound = "Booking not found"
	bookingCodePrefix  = "BK"
	bookingCodeLen     = 8
	codeAttempts       = 5
)

// discount returns the reduction a promotion grants on subtotal: the
// percentage when set, else the fixed amount, never more than subtotal.
func discount(p *model.Promotion, subtotal float64) float64 {
	var d float64
	switch {
	case p.DiscountPercentage != nil:
		d = subtotal * *p.DiscountPercentage / 100
	case p.DiscountAmount != nil:
		d = *p.DiscountAmount
	}
	return cents(min(d, subtotal))
}

func loadBooking(ctx context.Context, r repository.Repos, id uint64, c Caller) (*BookingDetail, error) {
	b, err := r.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgBookingNotFound)
	}
	if !c.Admin && b.UserID != c.UserID {
		return nil, apperr.NotFound(msgBookingNotFound)
	}
	d := &BookingDetail{Booking: *b}
	if d.Seats, err = r.Bookings.Seats(ctx, id); err != nil {
		return nil, err
	}
	if d.Promotions, err = r.Bookings.Promotions(ctx, id); err != nil {
		return nil, err
	}
	pay, err := r.Payments.GetByBooking(ctx, id)
	switch {
	case err == nil:
		d.Payment = pay
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return d, nil
}

// Create books seats of a showtime for userID. The showtime row stays
// locked until the booking commits, so concurrent bookings of the same
// showtime run one after another.
func (s *BookingService) Create(ctx context.Context, userID uint64, in BookingInput) (*BookingDetail, error) {
	if in.ShowtimeID == 0 || len(in.SeatIDs) == 0 {
		return nil, apperr.Validation("showtime_id and seat_ids are required")
	}
	ids := slices.Clone(in.SeatIDs)
	slices.Sort(ids)
	if len(slices.Compact(ids)) != len(in.SeatIDs) {
		return nil, apperr.Validation("Each seat can only be selected once")
	}
	code := normalizeCode(in.PromotionCode)
	now := s.now()

	var out *BookingDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		st, err := r.Showtimes.GetForUpdate(ctx, in.ShowtimeID)
		if err != nil {
			return notFound(err, msgShowtimeNotFound)
		}
		if st.Status != model.ShowtimeScheduled || !st.ShowDatetime.After(now) {
			return apperr.Validation("Showtime is not open for booking")
		}
		seats, err := r.Seats.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(seats) != len(ids) {
			return apperr.Validation("One or more seats do not exist")
		}
		for _, seat := range seats {
			if seat.ScreenID != st.ScreenID {
				return apperr.Validation("Seat %s is not in this showtime's screen", seat.Label())
			}
			if !seat.IsAvailable {
				return apperr.Validation("Seat %s is not available", seat.Label())
			}
		}
		booked, err := r.Bookings.BookedSeatIDs(ctx, st.ID)
		if err != nil {
			return err
		}
		var taken []string
		for _, seat := range seats {
			if slices.Contains(booked, seat.ID) {
				taken = append(taken, seat.Label())
			}
		}
		if len(taken) > 0 {
			return apperr.Conflict("Seats already booked: %s", strings.Join(taken, ", "))
		}

		subtotal := cents(st.BasePrice * float64(len(seats)))
		var (
			promo *model.Promotion
			off   float64
		)
		if code != "" {
			promo, err = r.Promotions.GetByCodeForUpdate(ctx, code)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Validation("Invalid promotion code")
			}
			if err != nil {
				return err
			}
			if !promo.ActiveOn(model.NewDate(now)) {
				return apperr.Validation("Promotion is not active")
			}
			if err := r.Promotions.Consume(ctx, promo.ID); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return apperr.Conflict("Promotion usage limit reached")
				}
				return err
			}
			off = discount(promo, subtotal)
		}

		if err := r.Showtimes.AdjustAvailable(ctx, st.ID, -len(seats)); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperr.Conflict("Not enough seats available")
			}
			return err
		}

		b := &model.Booking{
			UserID:          userID,
			ShowtimeID:      st.ID,
			BookingDatetime: now,
			TotalAmount:     cents(subtotal - off),
			Status:          model.BookingPending,
		}
		if err := createWithCode(ctx, r, b); err != nil {
			return err
		}
		for _, seat := range seats {
			if err := r.Bookings.AddSeat(ctx, &model.BookingSeat{BookingID: b.ID, SeatID: seat.ID, Price: st.BasePrice}); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return apperr.Conflict("Seat %s already booked", seat.Label())
				}
				return err
			}
		}
		if promo != nil {
			bp := &model.BookingPromotion{BookingID: b.ID, PromotionID: promo.ID, DiscountApplied: off}
			if err := r.Bookings.AddPromotion(ctx, bp); err != nil {
				return err
			}
		}
		out, err = loadBooking(ctx, r, b.ID, Caller{UserID: userID})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking created",
		zap.String("code", out.BookingCode),
		zap.Uint64("showtime_id", out.ShowtimeID),
		zap.Int("seats", len(out.Seats)))
	return out, nil
}

// createWithCode inserts b under a fresh booking code, drawing a new code
// when one is already taken.
func createWithCode(ctx context.Context, r repository.Repos, b *model.Booking) error {
	for range codeAttempts {
		c, err := utils.RandomCode(bookingCodeLen)
		if err != nil {
			return err
		}
		b.BookingCode = bookingCodePrefix + c
		err = r.Bookings.Create(ctx, b)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return errors.New("booking: could not allocate a unique booking code")
}

// Pay records a completed payment for a pending booking of userID and
// confirms it.
func (s *BookingService) Pay(ctx context.Context, userID, bookingID uint64, method string) (*BookingDetail, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return nil, apperr.Validation("payment_method is required")
	}
	now := s.now()
	var out *BookingDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		b, err := loadBooking(ctx, r, bookingID, Caller{UserID: userID})
		if err != nil {
			return err
		}
		if b.Status != model.BookingPending {
			return apperr.Validation("Only pending bookings can be paid")
		}
		txn := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
		p := &model.Payment{
			BookingID:       b.ID,
			Amount:          b.TotalAmount,
			PaymentMethod:   method,
			TransactionID:   &txn,
			PaymentStatus:   model.PaymentCompleted,
			PaymentDatetime: &now,
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("Booking has already been paid")
			}
			return err
		}
		if err := r.Bookings.UpdateStatus(ctx, b.ID, model.BookingConfirmed); err != nil {
			return err
		}
		out, err = loadBooking(ctx, r, b.ID, Caller{UserID: userID})
		return err
	})
	return out, err
}

// Cancel cancels a booking before its showtime starts, returning the seats
// and the promotion usage.
func (s *BookingService) Cancel(ctx context.Context, c Caller, bookingID uint64) (*BookingDetail, error) {
	now := s.now()
	var out *BookingDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		b, err := loadBooking(ctx, r, bookingID, c)
		if err != nil {
			return err
		}
		if b.Status == model.BookingCancelled {
			return apperr.Validation("Booking is already cancelled")
		}
		st, err := r.Showtimes.GetForUpdate(ctx, b.ShowtimeID)
		if err != nil {
			return notFound(err, msgShowtimeNotFound)
		}
		if !st.ShowDatetime.After(now) {
			return apperr.Validation("Cannot cancel a booking for a showtime that has started")
		}
		if err := r.Showtimes.AdjustAvailable(ctx, st.ID, len(b.Seats)); err != nil {
			return err
		}
		for _, bp := range b.Promotions {
			if err := r.Promotions.Release(ctx, bp.PromotionID); err != nil {
				return err
			}
		}
		if err := r.Bookings.UpdateStatus(ctx, b.ID, model.BookingCancelled); err != nil {
			return err
		}
		out, err = loadBooking(ctx, r, b.ID, c)
		return err
	})
	return out, err
}

// Get returns a booking visible to c.
func (s *BookingService) Get(ctx context.Context, c Caller, id uint64) (*BookingDetail, error) {
	var out *BookingDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		out, err = loadBooking(ctx, r, id, c)
		return err
	})
	return out, err
}

// ListMine lists the bookings of userID, newest first.
func (s *BookingService) ListMine(ctx context.Context, userID uint64, p repository.Page) ([]model.Booking, int, error) {
	return s.List(ctx, repository.BookingFilter{UserID: userID, Page: p})
}

// List lists bookings matching f for administrators.
func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int, error) {
	if f.Status != "" {
		f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
		switch f.Status {
		case model.BookingPending, model.BookingConfirmed, model.BookingCancelled:
		default:
			return nil, 0, apperr.Validation("Invalid booking status")
		}
	}
	var (
		items []model.Booking
		total int
	)
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		items, total, err = r.Bookings.List(ctx, f)
		return err
	})
	return items, total, err
}
