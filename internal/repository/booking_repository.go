package repository

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const bookingColumns = "booking_id, user_id, showtime_id, booking_code, booking_datetime, total_amount, status, created_at, updated_at"

// BookingRepo manages bookings and their seat and promotion rows.
type BookingRepo struct{ db DBTX }

func NewBookingRepo(db DBTX) *BookingRepo { return &BookingRepo{db: db} }

func scanBooking(row rowScanner, b *model.Booking) error {
	return row.Scan(&b.ID, &b.UserID, &b.ShowtimeID, &b.BookingCode, &b.BookingDatetime, &b.TotalAmount,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
}

// Create inserts b. A booking code already in use yields ErrDuplicate so
// the caller can draw a new one.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bookings (user_id, showtime_id, booking_code, booking_datetime, total_amount, status) VALUES (?,?,?,?,?,?)",
		b.UserID, b.ShowtimeID, b.BookingCode, b.BookingDatetime.UTC(), b.TotalAmount, b.Status)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE booking_id=?", id), b)
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	if err := scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE booking_id=?", id), &b); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// List returns a page of bookings newest first.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, int, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != 0 {
		where = append(where, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.ShowtimeID != 0 {
		where = append(where, "showtime_id=?")
		args = append(args, f.ShowtimeID)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	cond := whereClause(where)

	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM bookings"+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	q, qargs := paginate("SELECT "+bookingColumns+" FROM bookings"+cond+" ORDER BY booking_datetime DESC, booking_id DESC", args, f.Page)
	rows, err := r.db.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return mustAffect(r.db.ExecContext(ctx,
		"UPDATE bookings SET status=?, updated_at=CURRENT_TIMESTAMP WHERE booking_id=?", status, id))
}

func (r *BookingRepo) AddSeat(ctx context.Context, s *model.BookingSeat) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO booking_seats (booking_id, seat_id, price) VALUES (?,?,?)", s.BookingID, s.SeatID, s.Price)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Seats lists the booked seats with their row and number.
func (r *BookingRepo) Seats(ctx context.Context, bookingID uint64) ([]model.BookingSeat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT bs.booking_seat_id, bs.booking_id, bs.seat_id, bs.price, s.seat_row, s.seat_number
	       FROM booking_seats bs JOIN seats s ON s.seat_id = bs.seat_id
	       WHERE bs.booking_id=? ORDER BY s.seat_row, s.seat_number`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingSeat{}
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.ID, &s.BookingID, &s.SeatID, &s.Price, &s.Row, &s.Number); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *BookingRepo) AddPromotion(ctx context.Context, p *model.BookingPromotion) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO booking_promotions (booking_id, promotion_id, discount_applied) VALUES (?,?,?)",
		p.BookingID, p.PromotionID, p.DiscountApplied)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *BookingRepo) Promotions(ctx context.Context, bookingID uint64) ([]model.BookingPromotion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT bp.booking_promotion_id, bp.booking_id, bp.promotion_id, bp.discount_applied, p.code
	       FROM booking_promotions bp JOIN promotions p ON p.promotion_id = bp.promotion_id
	       WHERE bp.booking_id=? ORDER BY bp.booking_promotion_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingPromotion{}
	for rows.Next() {
		var p model.BookingPromotion
		if err := rows.Scan(&p.ID, &p.BookingID, &p.PromotionID, &p.DiscountApplied, &p.Code); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *BookingRepo) BookedSeatIDs(ctx context.Context, showtimeID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT bs.seat_id FROM booking_seats bs
	       JOIN bookings b ON b.booking_id = bs.booking_id
	       WHERE b.showtime_id=? AND b.status <> 'CANCELLED'`, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *BookingRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "SELECT COUNT(*) FROM bookings")
}
