package memrepo

import (
	"context"
	"slices"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type promotionRepo struct{ t *txn }

func (r promotionRepo) codeTaken(code string, excludeID uint64) bool {
	for _, p := range r.t.st.promotions {
		if p.ID != excludeID && p.Code == code {
			return true
		}
	}
	return false
}

func (r promotionRepo) Create(_ context.Context, p *model.Promotion) error {
	if r.codeTaken(p.Code, 0) {
		return repository.ErrDuplicate
	}
	p.ID = r.t.st.next("promotions")
	p.CreatedAt = r.t.now()
	r.t.st.promotions[p.ID] = *p
	return nil
}

func (r promotionRepo) GetByID(_ context.Context, id uint64) (*model.Promotion, error) {
	p, ok := r.t.st.promotions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r promotionRepo) GetByCodeForUpdate(_ context.Context, code string) (*model.Promotion, error) {
	for _, p := range r.t.st.promotions {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r promotionRepo) List(_ context.Context, active *bool) ([]model.Promotion, error) {
	out := []model.Promotion{}
	for _, p := range sortedValues(r.t.st.promotions) {
		if active == nil || p.IsActive == *active {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Promotion) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
	return out, nil
}

func (r promotionRepo) Update(_ context.Context, p *model.Promotion) error {
	old, ok := r.t.st.promotions[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.codeTaken(p.Code, p.ID) {
		return repository.ErrDuplicate
	}
	p.UsedCount, p.CreatedAt = old.UsedCount, old.CreatedAt
	r.t.st.promotions[p.ID] = *p
	return nil
}

func (r promotionRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.promotions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.t.st.promotions, id)
	for k, bp := range r.t.st.bookingPromos {
		if bp.PromotionID == id {
			delete(r.t.st.bookingPromos, k)
		}
	}
	return nil
}

func (r promotionRepo) Consume(_ context.Context, id uint64) error {
	p, ok := r.t.st.promotions[id]
	if !ok || p.Exhausted() {
		return repository.ErrConflict
	}
	p.UsedCount++
	r.t.st.promotions[id] = p
	return nil
}

func (r promotionRepo) Release(_ context.Context, id uint64) error {
	if p, ok := r.t.st.promotions[id]; ok && p.UsedCount > 0 {
		p.UsedCount--
		r.t.st.promotions[id] = p
	}
	return nil
}

type bookingRepo struct{ t *txn }

func (r bookingRepo) Create(_ context.Context, b *model.Booking) error {
	for _, o := range r.t.st.bookings {
		if o.BookingCode == b.BookingCode {
			return repository.ErrDuplicate
		}
	}
	now := r.t.now()
	b.ID = r.t.st.next("bookings")
	b.BookingDatetime = b.BookingDatetime.UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	r.t.st.bookings[b.ID] = *b
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := r.t.st.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r bookingRepo) List(_ context.Context, f repository.BookingFilter) ([]model.Booking, int, error) {
	out := []model.Booking{}
	for _, b := range sortedValues(r.t.st.bookings) {
		switch {
		case f.UserID != 0 && b.UserID != f.UserID,
			f.ShowtimeID != 0 && b.ShowtimeID != f.ShowtimeID,
			f.Status != "" && b.Status != f.Status:
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b model.Booking) int {
		if c := b.BookingDatetime.Compare(a.BookingDatetime); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
	return page(out, f.Page), len(out), nil
}

func (r bookingRepo) UpdateStatus(_ context.Context, id uint64, status string) error {
	b, ok := r.t.st.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = r.t.now()
	r.t.st.bookings[id] = b
	return nil
}

func (r bookingRepo) AddSeat(_ context.Context, s *model.BookingSeat) error {
	for _, o := range r.t.st.bookingSeats {
		if o.BookingID == s.BookingID && o.SeatID == s.SeatID {
			return repository.ErrDuplicate
		}
	}
	s.ID = r.t.st.next("booking_seats")
	r.t.st.bookingSeats[s.ID] = *s
	return nil
}

func (r bookingRepo) Seats(_ context.Context, bookingID uint64) ([]model.BookingSeat, error) {
	out := []model.BookingSeat{}
	for _, bs := range sortedValues(r.t.st.bookingSeats) {
		if bs.BookingID != bookingID {
			continue
		}
		if seat, ok := r.t.st.seats[bs.SeatID]; ok {
			bs.Row, bs.Number = seat.Row, seat.Number
		}
		out = append(out, bs)
	}
	return out, nil
}

func (r bookingRepo) AddPromotion(_ context.Context, p *model.BookingPromotion) error {
	p.ID = r.t.st.next("booking_promotions")
	r.t.st.bookingPromos[p.ID] = *p
	return nil
}

func (r bookingRepo) Promotions(_ context.Context, bookingID uint64) ([]model.BookingPromotion, error) {
	out := []model.BookingPromotion{}
	for _, bp := range sortedValues(r.t.st.bookingPromos) {
		if bp.BookingID != bookingID {
			continue
		}
		if p, ok := r.t.st.promotions[bp.PromotionID]; ok {
			bp.Code = p.Code
		}
		out = append(out, bp)
	}
	return out, nil
}

func (r bookingRepo) BookedSeatIDs(_ context.Context, showtimeID uint64) ([]uint64, error) {
	out := []uint64{}
	for _, bs := range sortedValues(r.t.st.bookingSeats) {
		b, ok := r.t.st.bookings[bs.BookingID]
		if ok && b.ShowtimeID == showtimeID && b.Status != model.BookingCancelled {
			out = append(out, bs.SeatID)
		}
	}
	return out, nil
}

func (r bookingRepo) Count(context.Context) (int, error) { return len(r.t.st.bookings), nil }

type paymentRepo struct{ t *txn }

func (r paymentRepo) Create(_ context.Context, p *model.Payment) error {
	for _, o := range r.t.st.payments {
		if o.BookingID == p.BookingID {
			return repository.ErrDuplicate
		}
	}
	p.ID = r.t.st.next("payments")
	p.CreatedAt = r.t.now()
	r.t.st.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByBooking(_ context.Context, bookingID uint64) (*model.Payment, error) {
	for _, p := range r.t.st.payments {
		if p.BookingID == bookingID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r paymentRepo) Revenue(_ context.Context, from, to time.Time) (float64, error) {
	var sum float64
	for _, p := range r.t.st.payments {
		if p.PaymentStatus != model.PaymentCompleted || p.PaymentDatetime == nil {
			continue
		}
		if b, ok := r.t.st.bookings[p.BookingID]; ok && b.Status == model.BookingCancelled {
			continue
		}
		at := *p.PaymentDatetime
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && !at.Before(to) {
			continue
		}
		sum += p.Amount
	}
	return sum, nil
}

type reviewRepo struct{ t *txn }

func (r reviewRepo) Create(_ context.Context, rv *model.Review) error {
	for _, o := range r.t.st.reviews {
		if o.UserID == rv.UserID && o.MovieID == rv.MovieID {
			return repository.ErrDuplicate
		}
	}
	rv.ID = r.t.st.next("reviews")
	rv.CreatedAt = r.t.now()
	row := *rv
	row.ReviewerName = ""
	r.t.st.reviews[rv.ID] = row
	if u, ok := r.t.st.users[rv.UserID]; ok {
		rv.ReviewerName = u.FullName
	}
	return nil
}

func (r reviewRepo) ListByMovie(_ context.Context, movieID uint64) ([]model.Review, error) {
	out := []model.Review{}
	for _, rv := range sortedValues(r.t.st.reviews) {
		if rv.MovieID != movieID {
			continue
		}
		if u, ok := r.t.st.users[rv.UserID]; ok {
			rv.ReviewerName = u.FullName
		}
		out = append(out, rv)
	}
	slices.SortStableFunc(out, func(a, b model.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
	return out, nil
}
