package service

import (
	"context"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// ReviewService records and lists movie reviews.
type ReviewService struct {
	uow repository.UnitOfWork
}

func NewReviewService(uow repository.UnitOfWork) *ReviewService {
	return &ReviewService{uow: uow}
}

// Create stores the review of userID for a movie. A user reviews a movie
// at most once.
func (s *ReviewService) Create(ctx context.Context, userID, movieID uint64, rating int, comment *string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}
	rv := &model.Review{UserID: userID, MovieID: movieID, Rating: rating, Comment: clean(comment)}
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Movies.GetByID(ctx, movieID); err != nil {
			return notFound(err, "Movie not found")
		}
		if err := r.Reviews.Create(ctx, rv); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("You have already reviewed this movie")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// ListByMovie returns the reviews of a movie, newest first.
func (s *ReviewService) ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	var out []model.Review
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Movies.GetByID(ctx, movieID); err != nil {
			return notFound(err, "Movie not found")
		}
		var err error
		out, err = r.Reviews.ListByMovie(ctx, movieID)
		return err
	})
	return out, err
}
