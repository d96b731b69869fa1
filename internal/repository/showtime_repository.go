package repository

import (
	"context"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const showtimeColumns = "st.showtime_id, st.movie_id, st.screen_id, st.show_datetime, st.base_price, st.available_seats, st.status, st.created_at"

const showtimeDetailSelect = `SELECT ` + showtimeColumns + `, m.title, m.duration_minutes, s.screen_name, c.cinema_id, c.name
	FROM showtimes st
	JOIN movies m ON m.movie_id = st.movie_id
	JOIN screens s ON s.screen_id = st.screen_id
	JOIN cinemas c ON c.cinema_id = s.cinema_id`

// ShowtimeRepo manages persistence for showtimes. Times are stored in UTC.
type ShowtimeRepo struct {
	db DBTX
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db DBTX) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

func showtimeDest(s *model.Showtime) []any {
	return []any{&s.ID, &s.MovieID, &s.ScreenID, &s.ShowDatetime, &s.BasePrice, &s.AvailableSeats, &s.Status, &s.CreatedAt}
}

func detailDest(d *model.ShowtimeDetail) []any {
	return append(showtimeDest(&d.Showtime), &d.MovieTitle, &d.DurationMinutes, &d.ScreenName, &d.CinemaID, &d.CinemaName)
}

// Create inserts a showtime. Another showtime on the same screen at the
// same instant yields ErrDuplicate.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	const q = `INSERT INTO showtimes (movie_id, screen_id, show_datetime, base_price, available_seats, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.ScreenID, s.ShowDatetime.UTC(), s.BasePrice, s.AvailableSeats, s.Status)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, "SELECT "+showtimeColumns+" FROM showtimes st WHERE st.showtime_id = ?", id).Scan(showtimeDest(s)...)
}

// GetByID retrieves a showtime by its ID. It returns ErrNotFound if there
// is no matching row.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	var s model.Showtime
	if err := r.db.QueryRowContext(ctx, "SELECT "+showtimeColumns+" FROM showtimes st WHERE st.showtime_id = ?", id).Scan(showtimeDest(&s)...); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// GetForUpdate is GetByID with a row lock held until the transaction ends.
// Concurrent bookings of the same showtime serialize on this lock.
func (r *ShowtimeRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Showtime, error) {
	var s model.Showtime
	if err := r.db.QueryRowContext(ctx, "SELECT "+showtimeColumns+" FROM showtimes st WHERE st.showtime_id = ? FOR UPDATE", id).Scan(showtimeDest(&s)...); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *ShowtimeRepo) GetDetail(ctx context.Context, id uint64) (*model.ShowtimeDetail, error) {
	var d model.ShowtimeDetail
	if err := r.db.QueryRowContext(ctx, showtimeDetailSelect+" WHERE st.showtime_id = ?", id).Scan(detailDest(&d)...); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// List returns a page of showtimes joined with movie, screen and cinema,
// latest first unless f.Ascending is set.
func (r *ShowtimeRepo) List(ctx context.Context, f ShowtimeFilter) ([]model.ShowtimeDetail, int, error) {
	var (
		where []string
		args  []any
	)
	if f.MovieID != 0 {
		where = append(where, "st.movie_id = ?")
		args = append(args, f.MovieID)
	}
	if f.CinemaID != 0 {
		where = append(where, "s.cinema_id = ?")
		args = append(args, f.CinemaID)
	}
	if f.ScreenID != 0 {
		where = append(where, "st.screen_id = ?")
		args = append(args, f.ScreenID)
	}
	if f.Date != nil {
		day := f.Date.Time
		where = append(where, "st.show_datetime >= ? AND st.show_datetime < ?")
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	if f.Status != "" {
		where = append(where, "st.status = ?")
		args = append(args, f.Status)
	}
	if f.From != nil {
		where = append(where, "st.show_datetime >= ?")
		args = append(args, f.From.UTC())
	}
	cond := whereClause(where)

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM showtimes st
	       JOIN screens s ON s.screen_id = st.screen_id`+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	order := " ORDER BY st.show_datetime DESC, st.showtime_id DESC"
	if f.Ascending {
		order = " ORDER BY st.show_datetime ASC, st.showtime_id ASC"
	}
	q, qargs := paginate(showtimeDetailSelect+cond+order, args, f.Page)
	rows, err := r.db.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.ShowtimeDetail{}
	for rows.Next() {
		var d model.ShowtimeDetail
		if err := rows.Scan(detailDest(&d)...); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *ShowtimeRepo) ExistsAt(ctx context.Context, screenID uint64, at time.Time, excludeID uint64) (bool, error) {
	return exists(ctx, r.db,
		"SELECT COUNT(*) FROM showtimes WHERE screen_id = ? AND show_datetime = ? AND showtime_id <> ?",
		screenID, at.UTC(), excludeID)
}

func (r *ShowtimeRepo) StartingBetween(ctx context.Context, screenID uint64, from, to time.Time) ([]model.Showtime, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+showtimeColumns+` FROM showtimes st
	       WHERE st.screen_id = ? AND st.status <> 'CANCELLED' AND st.show_datetime BETWEEN ? AND ?
	       ORDER BY st.show_datetime`, screenID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Showtime{}
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(showtimeDest(&s)...); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update writes every editable column of s, including available_seats.
func (r *ShowtimeRepo) Update(ctx context.Context, s *model.Showtime) error {
	const q = `UPDATE showtimes
	           SET movie_id = ?, screen_id = ?, show_datetime = ?, base_price = ?, available_seats = ?, status = ?
	           WHERE showtime_id = ?`
	return mustAffect(r.db.ExecContext(ctx, q, s.MovieID, s.ScreenID, s.ShowDatetime.UTC(), s.BasePrice, s.AvailableSeats, s.Status, s.ID))
}

func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM showtimes WHERE showtime_id = ?", id))
}

func (r *ShowtimeRepo) HasBookings(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT COUNT(*) FROM bookings WHERE showtime_id = ?", id)
}

func (r *ShowtimeRepo) AdjustAvailable(ctx context.Context, id uint64, delta int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE showtimes SET available_seats = available_seats + ? WHERE showtime_id = ? AND available_seats + ? >= 0",
		delta, id, delta)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *ShowtimeRepo) CompletePast(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE showtimes SET status = 'COMPLETED' WHERE status = 'SCHEDULED' AND show_datetime < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
