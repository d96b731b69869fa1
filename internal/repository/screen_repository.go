package repository

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const screenColumns = "s.screen_id, s.cinema_id, s.screen_name, s.total_seats, s.screen_type, s.created_at"

// ScreenRepo manages persistence for screens.
type ScreenRepo struct {
	db DBTX
}

// NewScreenRepo constructs a ScreenRepo with the given DB handle.
func NewScreenRepo(db DBTX) *ScreenRepo {
	return &ScreenRepo{db: db}
}

func scanScreen(row rowScanner, s *model.Screen, extra ...any) error {
	dest := []any{&s.ID, &s.CinemaID, &s.Name, &s.TotalSeats, &s.ScreenType, &s.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a screen with no seats.
func (r *ScreenRepo) Create(ctx context.Context, s *model.Screen) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO screens (cinema_id, screen_name, total_seats, screen_type) VALUES (?, ?, 0, ?)",
		s.CinemaID, s.Name, s.ScreenType)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanScreen(r.db.QueryRowContext(ctx, "SELECT "+screenColumns+" FROM screens s WHERE s.screen_id = ?", id), s)
}

// GetByID retrieves a screen by its ID. It returns ErrNotFound if there is
// no matching row.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	var s model.Screen
	if err := scanScreen(r.db.QueryRowContext(ctx, "SELECT "+screenColumns+" FROM screens s WHERE s.screen_id = ?", id), &s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// ListByCinema returns the screens of a cinema by id with their seat count.
func (r *ScreenRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]ScreenSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+screenColumns+`,
	       (SELECT COUNT(*) FROM seats st WHERE st.screen_id = s.screen_id) AS seat_count
	       FROM screens s WHERE s.cinema_id = ? ORDER BY s.screen_id`, cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ScreenSummary{}
	for rows.Next() {
		var ss ScreenSummary
		if err := scanScreen(rows, &ss.Screen, &ss.SeatCount); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// Update changes the name and type. total_seats is never written here.
func (r *ScreenRepo) Update(ctx context.Context, s *model.Screen) error {
	return mustAffect(r.db.ExecContext(ctx,
		"UPDATE screens SET screen_name = ?, screen_type = ? WHERE screen_id = ?",
		s.Name, s.ScreenType, s.ID))
}

func (r *ScreenRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM screens WHERE screen_id = ?", id))
}

func (r *ScreenRepo) HasShowtimes(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT COUNT(*) FROM showtimes WHERE screen_id = ?", id)
}

// RecountSeats sets total_seats from the seat rows of the screen.
func (r *ScreenRepo) RecountSeats(ctx context.Context, id uint64) (int, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE screens SET total_seats = (SELECT COUNT(*) FROM seats WHERE screen_id = ?) WHERE screen_id = ?",
		id, id); err != nil {
		return 0, err
	}
	return count(ctx, r.db, "SELECT total_seats FROM screens WHERE screen_id = ?", id)
}

func (r *ScreenRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "SELECT COUNT(*) FROM screens")
}
