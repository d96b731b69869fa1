package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const cinemaColumns = "c.cinema_id, c.name, c.address, c.city, c.phone_number, c.latitude, c.longitude, c.created_at, c.updated_at"

// CinemaRepo encapsulates all database queries related to cinemas.
type CinemaRepo struct {
	db DBTX // db is a pool or the transaction of the current unit of work
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.
func NewCinemaRepo(db DBTX) *CinemaRepo {
	return &CinemaRepo{db: db}
}

func scanCinema(row rowScanner, c *model.Cinema, extra ...any) error {
	dest := []any{&c.ID, &c.Name, &c.Address, &c.City, &c.PhoneNumber, &c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a new cinema. After the insert the row is read back so
// the caller receives the DB-populated timestamps.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	const q = "INSERT INTO cinemas (name, address, city, phone_number, latitude, longitude) VALUES (?, ?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Address, c.City, c.PhoneNumber, c.Latitude, c.Longitude)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanCinema(r.db.QueryRowContext(ctx, "SELECT "+cinemaColumns+" FROM cinemas c WHERE c.cinema_id = ?", id), c)
}

// GetByID fetches a cinema by its ID. It returns ErrNotFound if no row is
// found.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	var c model.Cinema
	if err := scanCinema(r.db.QueryRowContext(ctx, "SELECT "+cinemaColumns+" FROM cinemas c WHERE c.cinema_id = ?", id), &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns a page of cinemas ordered newest first. Each item carries
// the number of screens the cinema has.
func (r *CinemaRepo) List(ctx context.Context, f CinemaFilter) ([]CinemaSummary, int, error) {
	var (
		where []string
		args  []any
	)
	if city := strings.TrimSpace(f.City); city != "" {
		where = append(where, "c.city = ?")
		args = append(args, city)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "c.name LIKE ?")
		args = append(args, like(s))
	}
	cond := whereClause(where)

	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM cinemas c"+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	q, qargs := paginate(`SELECT `+cinemaColumns+`,
	       (SELECT COUNT(*) FROM screens s WHERE s.cinema_id = c.cinema_id) AS screen_count
	       FROM cinemas c`+cond+` ORDER BY c.created_at DESC, c.cinema_id DESC`, args, f.Page)
	rows, err := r.db.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []CinemaSummary{}
	for rows.Next() {
		var cs CinemaSummary
		if err := scanCinema(rows, &cs.Cinema, &cs.ScreenCount); err != nil {
			return nil, 0, err
		}
		out = append(out, cs)
	}
	return out, total, rows.Err()
}

// Update writes every editable column of c. Partial updates are merged by
// the service before calling.
func (r *CinemaRepo) Update(ctx context.Context, c *model.Cinema) error {
	const q = `UPDATE cinemas
	           SET name = ?, address = ?, city = ?, phone_number = ?, latitude = ?, longitude = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE cinema_id = ?`
	return mustAffect(r.db.ExecContext(ctx, q, c.Name, c.Address, c.City, c.PhoneNumber, c.Latitude, c.Longitude, c.ID))
}

// Delete removes the cinema; screens and seats go with it via ON DELETE
// CASCADE.
func (r *CinemaRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM cinemas WHERE cinema_id = ?", id))
}

// HasShowtimes reports whether any screen of the cinema has a showtime.
func (r *CinemaRepo) HasShowtimes(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, `SELECT COUNT(*) FROM showtimes st
	       JOIN screens s ON s.screen_id = st.screen_id
	       WHERE s.cinema_id = ?`, id)
}

func (r *CinemaRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "SELECT COUNT(*) FROM cinemas")
}
