package repository

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const seatColumns = "seat_id, screen_id, seat_row, seat_number, seat_type, is_available"

// SeatRepo manages persistence for seats.
type SeatRepo struct {
	db DBTX
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db DBTX) *SeatRepo {
	return &SeatRepo{db: db}
}

func scanSeat(row rowScanner, s *model.Seat) error {
	return row.Scan(&s.ID, &s.ScreenID, &s.Row, &s.Number, &s.SeatType, &s.IsAvailable)
}

func (r *SeatRepo) list(ctx context.Context, q string, args ...any) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a seat. A seat already occupying the same (screen, row,
// number) position yields ErrDuplicate and leaves the transaction usable.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO seats (screen_id, seat_row, seat_number, seat_type, is_available) VALUES (?, ?, ?, ?, ?)",
		s.ScreenID, s.Row, s.Number, s.SeatType, s.IsAvailable)
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

func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	var s model.Seat
	if err := scanSeat(r.db.QueryRowContext(ctx, "SELECT "+seatColumns+" FROM seats WHERE seat_id = ?", id), &s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// ListByScreen returns the seats of a screen ordered by row then number.
func (r *SeatRepo) ListByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	return r.list(ctx, "SELECT "+seatColumns+" FROM seats WHERE screen_id = ? ORDER BY seat_row, seat_number", screenID)
}

// ListByIDs returns the seats with the given ids; unknown ids are absent
// from the result.
func (r *SeatRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	return r.list(ctx, "SELECT "+seatColumns+" FROM seats WHERE seat_id IN ("+placeholders(len(ids))+") ORDER BY seat_row, seat_number",
		idArgs(ids)...)
}

// Update writes the seat type and availability flag.
func (r *SeatRepo) Update(ctx context.Context, s *model.Seat) error {
	return mustAffect(r.db.ExecContext(ctx,
		"UPDATE seats SET seat_type = ?, is_available = ? WHERE seat_id = ?",
		s.SeatType, s.IsAvailable, s.ID))
}

func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM seats WHERE seat_id = ?", id))
}

func (r *SeatRepo) DeleteMany(ctx context.Context, screenID uint64, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{screenID}, idArgs(ids)...)
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM seats WHERE screen_id = ? AND seat_id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *SeatRepo) HasActiveBookings(ctx context.Context, screenID uint64, ids []uint64) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	args := append([]any{screenID}, idArgs(ids)...)
	return exists(ctx, r.db, `SELECT COUNT(*) FROM booking_seats bs
	       JOIN bookings b ON b.booking_id = bs.booking_id
	       JOIN seats s ON s.seat_id = bs.seat_id
	       WHERE s.screen_id = ? AND b.status <> 'CANCELLED' AND bs.seat_id IN (`+placeholders(len(ids))+`)`, args...)
}
