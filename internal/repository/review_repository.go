package repository

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ReviewRepo manages movie reviews, one per (user, movie).
type ReviewRepo struct{ db DBTX }

func NewReviewRepo(db DBTX) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts rv. A second review by the same user yields ErrDuplicate.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, movie_id, rating, comment) VALUES (?,?,?,?)",
		rv.UserID, rv.MovieID, rv.Rating, rv.Comment)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`SELECT rv.review_id, rv.user_id, rv.movie_id, rv.rating, rv.comment, rv.created_at, u.full_name
		 FROM reviews rv JOIN users u ON u.user_id = rv.user_id WHERE rv.review_id=?`, id).
		Scan(&rv.ID, &rv.UserID, &rv.MovieID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.ReviewerName)
}

// ListByMovie returns reviews newest first with the reviewer's name.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rv.review_id, rv.user_id, rv.movie_id, rv.rating, rv.comment, rv.created_at, u.full_name
		 FROM reviews rv JOIN users u ON u.user_id = rv.user_id
		 WHERE rv.movie_id=? ORDER BY rv.created_at DESC, rv.review_id DESC`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.MovieID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.ReviewerName); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
