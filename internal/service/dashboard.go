package service

import (
	"context"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers    int     `json:"total_users"`
	TotalMovies   int     `json:"total_movies"`
	TotalCinemas  int     `json:"total_cinemas"`
	TotalScreens  int     `json:"total_screens"`
	TotalBookings int     `json:"total_bookings"`
	RevenueToday  float64 `json:"revenue_today"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// DashboardService computes the admin statistics.
type DashboardService struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewDashboardService(uow repository.UnitOfWork) *DashboardService {
	return &DashboardService{uow: uow, now: utcNow}
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	y, m, d := s.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var st Stats
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		if st.TotalUsers, err = r.Users.Count(ctx); err != nil {
			return err
		}
		if st.TotalMovies, err = r.Movies.Count(ctx); err != nil {
			return err
		}
		if st.TotalCinemas, err = r.Cinemas.Count(ctx); err != nil {
			return err
		}
		if st.TotalScreens, err = r.Screens.Count(ctx); err != nil {
			return err
		}
		if st.TotalBookings, err = r.Bookings.Count(ctx); err != nil {
			return err
		}
		if st.RevenueToday, err = r.Payments.Revenue(ctx, today, today.AddDate(0, 0, 1)); err != nil {
			return err
		}
		st.TotalRevenue, err = r.Payments.Revenue(ctx, time.Time{}, time.Time{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}
