package memrepo

import (
	"context"
	"slices"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type showtimeRepo struct{ t *txn }

func (r showtimeRepo) slotTaken(screenID uint64, at time.Time, excludeID uint64) bool {
	for _, o := range r.t.st.showtimes {
		if o.ID != excludeID && o.ScreenID == screenID && o.ShowDatetime.Equal(at) {
			return true
		}
	}
	return false
}

func (r showtimeRepo) Create(_ context.Context, s *model.Showtime) error {
	if _, ok := r.t.st.movies[s.MovieID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.t.st.screens[s.ScreenID]; !ok {
		return repository.ErrNotFound
	}
	s.ShowDatetime = s.ShowDatetime.UTC().Truncate(time.Second)
	if r.slotTaken(s.ScreenID, s.ShowDatetime, 0) {
		return repository.ErrDuplicate
	}
	s.ID = r.t.st.next("showtimes")
	s.CreatedAt = r.t.now()
	r.t.st.showtimes[s.ID] = *s
	return nil
}

func (r showtimeRepo) GetByID(_ context.Context, id uint64) (*model.Showtime, error) {
	s, ok := r.t.st.showtimes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

// GetForUpdate needs no lock: units of work are already serialized.
func (r showtimeRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Showtime, error) {
	return r.GetByID(ctx, id)
}

func (r showtimeRepo) detail(s model.Showtime) model.ShowtimeDetail {
	d := model.ShowtimeDetail{Showtime: s}
	if m, ok := r.t.st.movies[s.MovieID]; ok {
		d.MovieTitle, d.DurationMinutes = m.Title, m.DurationMinutes
	}
	if sc, ok := r.t.st.screens[s.ScreenID]; ok {
		d.ScreenName, d.CinemaID = sc.Name, sc.CinemaID
		if c, ok := r.t.st.cinemas[sc.CinemaID]; ok {
			d.CinemaName = c.Name
		}
	}
	return d
}

func (r showtimeRepo) GetDetail(_ context.Context, id uint64) (*model.ShowtimeDetail, error) {
	s, ok := r.t.st.showtimes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d := r.detail(s)
	return &d, nil
}

func (r showtimeRepo) List(_ context.Context, f repository.ShowtimeFilter) ([]model.ShowtimeDetail, int, error) {
	out := []model.ShowtimeDetail{}
	for _, s := range sortedValues(r.t.st.showtimes) {
		d := r.detail(s)
		switch {
		case f.MovieID != 0 && s.MovieID != f.MovieID,
			f.CinemaID != 0 && d.CinemaID != f.CinemaID,
			f.ScreenID != 0 && s.ScreenID != f.ScreenID,
			f.Status != "" && s.Status != f.Status,
			f.From != nil && s.ShowDatetime.Before(*f.From):
			continue
		}
		if f.Date != nil {
			day := f.Date.Time
			if s.ShowDatetime.Before(day) || !s.ShowDatetime.Before(day.AddDate(0, 0, 1)) {
				continue
			}
		}
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b model.ShowtimeDetail) int {
		c := a.ShowDatetime.Compare(b.ShowDatetime)
		if c == 0 {
			c = -cmpDesc(a.ID, b.ID)
		}
		if f.Ascending {
			return c
		}
		return -c
	})
	return page(out, f.Page), len(out), nil
}

func (r showtimeRepo) ExistsAt(_ context.Context, screenID uint64, at time.Time, excludeID uint64) (bool, error) {
	return r.slotTaken(screenID, at.UTC().Truncate(time.Second), excludeID), nil
}

func (r showtimeRepo) StartingBetween(_ context.Context, screenID uint64, from, to time.Time) ([]model.Showtime, error) {
	out := []model.Showtime{}
	for _, s := range sortedValues(r.t.st.showtimes) {
		if s.ScreenID != screenID || s.Status == model.ShowtimeCancelled {
			continue
		}
		if s.ShowDatetime.Before(from) || s.ShowDatetime.After(to) {
			continue
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b model.Showtime) int { return a.ShowDatetime.Compare(b.ShowDatetime) })
	return out, nil
}

func (r showtimeRepo) Update(_ context.Context, s *model.Showtime) error {
	old, ok := r.t.st.showtimes[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	s.ShowDatetime = s.ShowDatetime.UTC().Truncate(time.Second)
	if r.slotTaken(s.ScreenID, s.ShowDatetime, s.ID) {
		return repository.ErrDuplicate
	}
	s.CreatedAt = old.CreatedAt
	r.t.st.showtimes[s.ID] = *s
	return nil
}

func (r showtimeRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.showtimes[id]; !ok {
		return repository.ErrNotFound
	}
	r.t.st.deleteShowtime(id)
	return nil
}

func (r showtimeRepo) HasBookings(_ context.Context, id uint64) (bool, error) {
	for _, b := range r.t.st.bookings {
		if b.ShowtimeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r showtimeRepo) AdjustAvailable(_ context.Context, id uint64, delta int) error {
	s, ok := r.t.st.showtimes[id]
	if !ok || s.AvailableSeats+delta < 0 {
		return repository.ErrConflict
	}
	s.AvailableSeats += delta
	r.t.st.showtimes[id] = s
	return nil
}

func (r showtimeRepo) CompletePast(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, s := range r.t.st.showtimes {
		if s.Status == model.ShowtimeScheduled && s.ShowDatetime.Before(now) {
			s.Status = model.ShowtimeCompleted
			r.t.st.showtimes[id] = s
			n++
		}
	}
	return n, nil
}
