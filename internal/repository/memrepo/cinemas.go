package memrepo

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type cinemaRepo struct{ t *txn }

func (r cinemaRepo) Create(_ context.Context, c *model.Cinema) error {
	now := r.t.now()
	c.ID = r.t.st.next("cinemas")
	c.CreatedAt, c.UpdatedAt = now, now
	r.t.st.cinemas[c.ID] = *c
	return nil
}

func (r cinemaRepo) GetByID(_ context.Context, id uint64) (*model.Cinema, error) {
	c, ok := r.t.st.cinemas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r cinemaRepo) screenCount(id uint64) int {
	n := 0
	for _, s := range r.t.st.screens {
		if s.CinemaID == id {
			n++
		}
	}
	return n
}

func (r cinemaRepo) List(_ context.Context, f repository.CinemaFilter) ([]repository.CinemaSummary, int, error) {
	city, search := strings.TrimSpace(f.City), strings.TrimSpace(f.Search)
	out := []repository.CinemaSummary{}
	for _, c := range sortedValues(r.t.st.cinemas) {
		if city != "" && !strings.EqualFold(c.City, city) {
			continue
		}
		if search != "" && !contains(c.Name, search) {
			continue
		}
		out = append(out, repository.CinemaSummary{Cinema: c, ScreenCount: r.screenCount(c.ID)})
	}
	slices.SortStableFunc(out, func(a, b repository.CinemaSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
	return page(out, f.Page), len(out), nil
}

func (r cinemaRepo) Update(_ context.Context, c *model.Cinema) error {
	old, ok := r.t.st.cinemas[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = r.t.now()
	r.t.st.cinemas[c.ID] = *c
	return nil
}

func (r cinemaRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.cinemas[id]; !ok {
		return repository.ErrNotFound
	}
	r.t.st.deleteCinema(id)
	return nil
}

func (r cinemaRepo) HasShowtimes(_ context.Context, id uint64) (bool, error) {
	for _, st := range r.t.st.showtimes {
		if sc, ok := r.t.st.screens[st.ScreenID]; ok && sc.CinemaID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r cinemaRepo) Count(context.Context) (int, error) { return len(r.t.st.cinemas), nil }

type screenRepo struct{ t *txn }

func (r screenRepo) Create(_ context.Context, s *model.Screen) error {
	if _, ok := r.t.st.cinemas[s.CinemaID]; !ok {
		return repository.ErrNotFound
	}
	s.ID = r.t.st.next("screens")
	s.TotalSeats = 0
	s.CreatedAt = r.t.now()
	r.t.st.screens[s.ID] = *s
	return nil
}

func (r screenRepo) GetByID(_ context.Context, id uint64) (*model.Screen, error) {
	s, ok := r.t.st.screens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r screenRepo) seatCount(id uint64) int {
	n := 0
	for _, s := range r.t.st.seats {
		if s.ScreenID == id {
			n++
		}
	}
	return n
}

func (r screenRepo) ListByCinema(_ context.Context, cinemaID uint64) ([]repository.ScreenSummary, error) {
	out := []repository.ScreenSummary{}
	for _, s := range sortedValues(r.t.st.screens) {
		if s.CinemaID == cinemaID {
			out = append(out, repository.ScreenSummary{Screen: s, SeatCount: r.seatCount(s.ID)})
		}
	}
	return out, nil
}

func (r screenRepo) Update(_ context.Context, s *model.Screen) error {
	old, ok := r.t.st.screens[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	old.Name, old.ScreenType = s.Name, s.ScreenType
	r.t.st.screens[s.ID] = old
	*s = old
	return nil
}

func (r screenRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.screens[id]; !ok {
		return repository.ErrNotFound
	}
	r.t.st.deleteScreen(id)
	return nil
}

func (r screenRepo) HasShowtimes(_ context.Context, id uint64) (bool, error) {
	for _, st := range r.t.st.showtimes {
		if st.ScreenID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r screenRepo) RecountSeats(_ context.Context, id uint64) (int, error) {
	s, ok := r.t.st.screens[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	s.TotalSeats = r.seatCount(id)
	r.t.st.screens[id] = s
	return s.TotalSeats, nil
}

func (r screenRepo) Count(context.Context) (int, error) { return len(r.t.st.screens), nil }

type seatRepo struct{ t *txn }

func (r seatRepo) Create(_ context.Context, s *model.Seat) error {
	if _, ok := r.t.st.screens[s.ScreenID]; !ok {
		return repository.ErrNotFound
	}
	for _, o := range r.t.st.seats {
		if o.ScreenID == s.ScreenID && o.Row == s.Row && o.Number == s.Number {
			return repository.ErrDuplicate
		}
	}
	s.ID = r.t.st.next("seats")
	r.t.st.seats[s.ID] = *s
	return nil
}

func (r seatRepo) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	s, ok := r.t.st.seats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func sortSeats(seats []model.Seat) {
	slices.SortFunc(seats, func(a, b model.Seat) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Number, b.Number)
	})
}

func (r seatRepo) ListByScreen(_ context.Context, screenID uint64) ([]model.Seat, error) {
	out := []model.Seat{}
	for _, s := range r.t.st.seats {
		if s.ScreenID == screenID {
			out = append(out, s)
		}
	}
	sortSeats(out)
	return out, nil
}

func (r seatRepo) ListByIDs(_ context.Context, ids []uint64) ([]model.Seat, error) {
	out := []model.Seat{}
	for _, id := range ids {
		if s, ok := r.t.st.seats[id]; ok && !slices.ContainsFunc(out, func(o model.Seat) bool { return o.ID == id }) {
			out = append(out, s)
		}
	}
	sortSeats(out)
	return out, nil
}

func (r seatRepo) Update(_ context.Context, s *model.Seat) error {
	old, ok := r.t.st.seats[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	old.SeatType, old.IsAvailable = s.SeatType, s.IsAvailable
	r.t.st.seats[s.ID] = old
	*s = old
	return nil
}

func (r seatRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.seats[id]; !ok {
		return repository.ErrNotFound
	}
	r.t.st.deleteSeat(id)
	return nil
}

func (r seatRepo) DeleteMany(_ context.Context, screenID uint64, ids []uint64) (int, error) {
	n := 0
	for _, id := range ids {
		if s, ok := r.t.st.seats[id]; ok && s.ScreenID == screenID {
			r.t.st.deleteSeat(id)
			n++
		}
	}
	return n, nil
}

func (r seatRepo) HasActiveBookings(_ context.Context, screenID uint64, ids []uint64) (bool, error) {
	for _, bs := range r.t.st.bookingSeats {
		if !slices.Contains(ids, bs.SeatID) {
			continue
		}
		if s, ok := r.t.st.seats[bs.SeatID]; !ok || s.ScreenID != screenID {
			continue
		}
		if b, ok := r.t.st.bookings[bs.BookingID]; ok && b.Status != model.BookingCancelled {
			return true, nil
		}
	}
	return false, nil
}
