package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const movieColumns = "m.movie_id, m.title, m.description, m.duration_minutes, m.release_date, m.director, m.`cast`, m.genre, m.language, m.poster_url, m.trailer_url, m.rating, m.age_rating, m.is_showing, m.created_at, m.updated_at"

// posterExpr resolves the listing poster: first POSTER image, else first
// image of any type, else the movie's own poster_url.
const posterExpr = `COALESCE(
	(SELECT mi.image_url FROM movie_images mi WHERE mi.movie_id = m.movie_id AND mi.image_type = 'POSTER' ORDER BY mi.display_order, mi.image_id LIMIT 1),
	(SELECT mi.image_url FROM movie_images mi WHERE mi.movie_id = m.movie_id ORDER BY mi.display_order, mi.image_id LIMIT 1),
	m.poster_url)`

// MovieRepo manages movies and their actor, image and video rows.
type MovieRepo struct{ db DBTX }

func NewMovieRepo(db DBTX) *MovieRepo { return &MovieRepo{db: db} }

func movieDest(m *model.Movie) []any {
	return []any{&m.ID, &m.Title, &m.Description, &m.DurationMinutes, &m.ReleaseDate, &m.Director, &m.Cast,
		&m.Genre, &m.Language, &m.PosterURL, &m.TrailerURL, &m.Rating, &m.AgeRating, &m.IsShowing,
		&m.CreatedAt, &m.UpdatedAt}
}

func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, description, duration_minutes, release_date, director, `cast`, genre, language, poster_url, trailer_url, rating, age_rating, is_showing) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)",
		m.Title, m.Description, m.DurationMinutes, m.ReleaseDate, m.Director, m.Cast, m.Genre, m.Language,
		m.PosterURL, m.TrailerURL, m.Rating, m.AgeRating, m.IsShowing)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies m WHERE m.movie_id = ?", id).Scan(movieDest(m)...)
}

func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	if err := r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies m WHERE m.movie_id = ?", id).Scan(movieDest(&m)...); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// List returns a page of movies, showing ones first then by release date
// (newest first). Counts of related rows come from correlated subqueries.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) ([]MovieSummary, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(m.title LIKE ? OR m.director LIKE ?)")
		args = append(args, like(s), like(s))
	}
	if f.IsShowing != nil {
		where = append(where, "m.is_showing = ?")
		args = append(args, *f.IsShowing)
	}
	cond := whereClause(where)

	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM movies m"+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	q, qargs := paginate(`SELECT `+movieColumns+`, `+posterExpr+`,
	       (SELECT COUNT(*) FROM movie_actors ma WHERE ma.movie_id = m.movie_id),
	       (SELECT COUNT(*) FROM movie_images mi WHERE mi.movie_id = m.movie_id),
	       (SELECT COUNT(*) FROM movie_videos mv WHERE mv.movie_id = m.movie_id),
	       (SELECT COUNT(*) FROM reviews rv WHERE rv.movie_id = m.movie_id)
	       FROM movies m`+cond+` ORDER BY m.is_showing DESC, m.release_date DESC, m.movie_id DESC`, args, f.Page)
	rows, err := r.db.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []MovieSummary{}
	for rows.Next() {
		var ms MovieSummary
		dest := append(movieDest(&ms.Movie), &ms.PosterURL, &ms.ActorCount, &ms.ImageCount, &ms.VideoCount, &ms.ReviewCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		out = append(out, ms)
	}
	return out, total, rows.Err()
}

func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	return mustAffect(r.db.ExecContext(ctx,
		"UPDATE movies SET title=?, description=?, duration_minutes=?, release_date=?, director=?, `cast`=?, genre=?, language=?, poster_url=?, trailer_url=?, rating=?, age_rating=?, is_showing=?, updated_at=CURRENT_TIMESTAMP WHERE movie_id=?",
		m.Title, m.Description, m.DurationMinutes, m.ReleaseDate, m.Director, m.Cast, m.Genre, m.Language,
		m.PosterURL, m.TrailerURL, m.Rating, m.AgeRating, m.IsShowing, m.ID))
}

// Delete removes the movie; actors links, media, showtimes and reviews
// cascade.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM movies WHERE movie_id=?", id))
}

func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "SELECT COUNT(*) FROM movies")
}

// HasBookings reports whether any showtime of the movie has a booking.
func (r *MovieRepo) HasBookings(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, `SELECT COUNT(*) FROM bookings b
	       JOIN showtimes st ON st.showtime_id = b.showtime_id
	       WHERE st.movie_id = ?`, id)
}

// Actors lists the cast of a movie joined with actor name and photo.
func (r *MovieRepo) Actors(ctx context.Context, movieID uint64) ([]model.MovieActor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ma.movie_actor_id, ma.movie_id, ma.actor_id, ma.role_name, ma.character_name,
	       ma.display_order, a.name, a.photo_url
	       FROM movie_actors ma JOIN actors a ON a.actor_id = ma.actor_id
	       WHERE ma.movie_id = ? ORDER BY ma.display_order, ma.movie_actor_id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MovieActor{}
	for rows.Next() {
		var ma model.MovieActor
		if err := rows.Scan(&ma.ID, &ma.MovieID, &ma.ActorID, &ma.RoleName, &ma.CharacterName,
			&ma.DisplayOrder, &ma.ActorName, &ma.ActorPhotoURL); err != nil {
			return nil, err
		}
		out = append(out, ma)
	}
	return out, rows.Err()
}

// ReplaceActors deletes the movie's cast and inserts actors in its place.
func (r *MovieRepo) ReplaceActors(ctx context.Context, movieID uint64, actors []model.MovieActor) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM movie_actors WHERE movie_id=?", movieID); err != nil {
		return err
	}
	for i := range actors {
		a := &actors[i]
		a.MovieID = movieID
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO movie_actors (movie_id, actor_id, role_name, character_name, display_order) VALUES (?,?,?,?,?)",
			movieID, a.ActorID, a.RoleName, a.CharacterName, a.DisplayOrder)
		if err != nil {
			return translate(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		a.ID = uint64(id)
	}
	return nil
}

func (r *MovieRepo) Images(ctx context.Context, movieID uint64) ([]model.MovieImage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT image_id, movie_id, image_url, image_type, caption, display_order, created_at
	       FROM movie_images WHERE movie_id = ? ORDER BY display_order, image_id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MovieImage{}
	for rows.Next() {
		var im model.MovieImage
		if err := rows.Scan(&im.ID, &im.MovieID, &im.ImageURL, &im.ImageType, &im.Caption, &im.DisplayOrder, &im.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

func (r *MovieRepo) ReplaceImages(ctx context.Context, movieID uint64, images []model.MovieImage) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM movie_images WHERE movie_id=?", movieID); err != nil {
		return err
	}
	for i := range images {
		im := &images[i]
		im.MovieID = movieID
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO movie_images (movie_id, image_url, image_type, caption, display_order) VALUES (?,?,?,?,?)",
			movieID, im.ImageURL, im.ImageType, im.Caption, im.DisplayOrder)
		if err != nil {
			return translate(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		im.ID = uint64(id)
	}
	return nil
}

func (r *MovieRepo) Videos(ctx context.Context, movieID uint64) ([]model.MovieVideo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT video_id, movie_id, video_url, video_type, title, duration_seconds, display_order, created_at
	       FROM movie_videos WHERE movie_id = ? ORDER BY display_order, video_id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MovieVideo{}
	for rows.Next() {
		var v model.MovieVideo
		if err := rows.Scan(&v.ID, &v.MovieID, &v.VideoURL, &v.VideoType, &v.Title, &v.DurationSeconds, &v.DisplayOrder, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *MovieRepo) ReplaceVideos(ctx context.Context, movieID uint64, videos []model.MovieVideo) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM movie_videos WHERE movie_id=?", movieID); err != nil {
		return err
	}
	for i := range videos {
		v := &videos[i]
		v.MovieID = movieID
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO movie_videos (movie_id, video_url, video_type, title, duration_seconds, display_order) VALUES (?,?,?,?,?,?)",
			movieID, v.VideoURL, v.VideoType, v.Title, v.DurationSeconds, v.DisplayOrder)
		if err != nil {
			return translate(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		v.ID = uint64(id)
	}
	return nil
}
