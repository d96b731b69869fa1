package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// ScheduleBuffer is the cleaning gap kept on each side of a screening when
// looking for a free screen.
const ScheduleBuffer = 30 * time.Minute

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseShowDatetime accepts a combined datetime or a separate date and
// time of day. Values without a zone are read as UTC.
func ParseShowDatetime(datetime, date, clock string) (time.Time, error) {
	datetime = strings.TrimSpace(datetime)
	if datetime == "" {
		date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
		if date == "" || clock == "" {
			return time.Time{}, apperr.Validation("show_datetime or show_date and show_time are required")
		}
		datetime = date + " " + clock
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, datetime, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("Invalid show datetime %q", datetime)
}

// ShowtimeService schedules screenings.
type ShowtimeService struct {
	uow repository.UnitOfWork
	now func() time.Time
	log *zap.Logger
}

func NewShowtimeService(uow repository.UnitOfWork, log *zap.Logger) *ShowtimeService {
	return &ShowtimeService{uow: uow, now: utcNow, log: nopIfNil(log)}
}

type ShowtimeInput struct {
	MovieID      uint64
	ScreenID     uint64
	ShowDatetime time.Time
	BasePrice    float64
	Status       string
}

type ShowtimePatch struct {
	MovieID      *uint64
	ScreenID     *uint64
	ShowDatetime *time.Time
	BasePrice    *float64
	Status       *string
}

// ShowtimeView is a showtime detail with the number of seats sold.
type ShowtimeView struct {
	model.ShowtimeDetail
	BookedSeats int `json:"booked_seats"`
}

// ScreenAvailability is the result of a free-screen search.
type ScreenAvailability struct {
	CinemaID         uint64                     `json:"cinema_id"`
	ShowDatetime     time.Time                  `json:"show_datetime"`
	DurationMinutes  int                        `json:"duration_minutes"`
	AvailableScreens []repository.ScreenSummary `json:"available_screens"`
	BusyScreens      []BusyScreen               `json:"busy_screens"`
}

// BusyScreen is a screen with the showtimes that block the slot.
type BusyScreen struct {
	repository.ScreenSummary
	Conflicts []model.Showtime `json:"conflicts"`
}

// SeatState is a seat of a showtime's screen with its booking state.
type SeatState struct {
	model.Seat
	IsBooked bool `json:"is_booked"`
}

// SeatMap lists every seat of the showtime's screen.
type SeatMap struct {
	Showtime model.ShowtimeDetail `json:"showtime"`
	Seats    []SeatState          `json:"seats"`
}

const (
	msgShowtimeNotFound = "Showtime not found"
	msgSlotTaken        = "A showtime already exists for this screen at the given time"
)

func normalizeStatus(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return model.ShowtimeScheduled, nil
	}
	if !model.ValidShowtimeStatus(s) {
		return "", apperr.Validation("Invalid status. Must be one of SCHEDULED, COMPLETED, CANCELLED")
	}
	return s, nil
}

// reconcile flips past SCHEDULED showtimes to COMPLETED within r.
func (s *ShowtimeService) reconcile(ctx context.Context, r repository.Repos) (int, error) {
	n, err := r.Showtimes.CompletePast(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("showtimes completed", zap.Int("count", n))
	}
	return n, nil
}

// Reconcile marks every SCHEDULED showtime that has started as COMPLETED
// and returns how many changed.
func (s *ShowtimeService) Reconcile(ctx context.Context) (int, error) {
	var n int
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		n, err = s.reconcile(ctx, r)
		return err
	})
	return n, err
}

func (s *ShowtimeService) Create(ctx context.Context, in ShowtimeInput) (*model.ShowtimeDetail, error) {
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if in.MovieID == 0 || in.ScreenID == 0 || in.ShowDatetime.IsZero() {
		return nil, apperr.Validation("movie_id, screen_id and show_datetime are required")
	}
	if in.BasePrice < 0 {
		return nil, apperr.Validation("Base price cannot be negative")
	}
	var out *model.ShowtimeDetail
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		m, err := r.Movies.GetByID(ctx, in.MovieID)
		if err != nil {
			return notFound(err, "Movie not found")
		}
		if !m.IsShowing {
			return apperr.Validation("Movie is not currently showing")
		}
		sc, err := r.Screens.GetByID(ctx, in.ScreenID)
		if err != nil {
			return notFound(err, "Screen not found")
		}
		at := in.ShowDatetime.UTC().Truncate(time.Second)
		taken, err := r.Showtimes.ExistsAt(ctx, sc.ID, at, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(msgSlotTaken)
		}
		st := &model.Showtime{
			MovieID:        m.ID,
			ScreenID:       sc.ID,
			ShowDatetime:   at,
			BasePrice:      cents(in.BasePrice),
			AvailableSeats: sc.TotalSeats,
			Status:         status,
		}
		if err := r.Showtimes.Create(ctx, st); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict(msgSlotTaken)
			}
			return err
		}
		out, err = r.Showtimes.GetDetail(ctx, st.ID)
		return err
	})
	return out, err
}

func (s *ShowtimeService) Update(ctx context.Context, id uint64, p ShowtimePatch) (*model.ShowtimeDetail, error) {
	var out *model.ShowtimeDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		st, err := r.Showtimes.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, msgShowtimeNotFound)
		}
		if p.MovieID != nil && *p.MovieID != st.MovieID {
			if _, err := r.Movies.GetByID(ctx, *p.MovieID); err != nil {
				return notFound(err, "Movie not found")
			}
			st.MovieID = *p.MovieID
		}
		if p.ScreenID != nil && *p.ScreenID != st.ScreenID {
			sc, err := r.Screens.GetByID(ctx, *p.ScreenID)
			if err != nil {
				return notFound(err, "Screen not found")
			}
			booked, err := r.Showtimes.HasBookings(ctx, id)
			if err != nil {
				return err
			}
			if booked {
				return apperr.Conflict("Cannot move a showtime with existing bookings to another screen")
			}
			st.ScreenID, st.AvailableSeats = sc.ID, sc.TotalSeats
		}
		if p.ShowDatetime != nil {
			st.ShowDatetime = p.ShowDatetime.UTC().Truncate(time.Second)
		}
		if p.BasePrice != nil {
			if *p.BasePrice < 0 {
				return apperr.Validation("Base price cannot be negative")
			}
			st.BasePrice = cents(*p.BasePrice)
		}
		if p.Status != nil {
			if st.Status, err = normalizeStatus(*p.Status); err != nil {
				return err
			}
		}
		taken, err := r.Showtimes.ExistsAt(ctx, st.ScreenID, st.ShowDatetime, st.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(msgSlotTaken)
		}
		if err := r.Showtimes.Update(ctx, st); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict(msgSlotTaken)
			}
			return notFound(err, msgShowtimeNotFound)
		}
		out, err = r.Showtimes.GetDetail(ctx, id)
		return err
	})
	return out, err
}

func (s *ShowtimeService) Delete(ctx context.Context, id uint64) error {
	return s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Showtimes.GetByID(ctx, id); err != nil {
			return notFound(err, msgShowtimeNotFound)
		}
		booked, err := r.Showtimes.HasBookings(ctx, id)
		if err != nil {
			return err
		}
		if booked {
			return apperr.Conflict("Cannot delete showtime with existing bookings")
		}
		return notFound(r.Showtimes.Delete(ctx, id), msgShowtimeNotFound)
	})
}

// List reconciles statuses and then lists showtimes matching f.
func (s *ShowtimeService) List(ctx context.Context, f repository.ShowtimeFilter) ([]model.ShowtimeDetail, int, error) {
	if f.Status != "" {
		st, err := normalizeStatus(f.Status)
		if err != nil {
			return nil, 0, err
		}
		f.Status = st
	}
	var (
		items []model.ShowtimeDetail
		total int
	)
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := s.reconcile(ctx, r); err != nil {
			return err
		}
		var err error
		items, total, err = r.Showtimes.List(ctx, f)
		return err
	})
	return items, total, err
}

// Upcoming lists scheduled future showtimes of a movie, soonest first.
func (s *ShowtimeService) Upcoming(ctx context.Context, movieID uint64, p repository.Page) ([]model.ShowtimeDetail, int, error) {
	now := s.now()
	f := repository.ShowtimeFilter{
		MovieID:   movieID,
		Status:    model.ShowtimeScheduled,
		From:      &now,
		Ascending: true,
		Page:      p,
	}
	var (
		items []model.ShowtimeDetail
		total int
	)
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Movies.GetByID(ctx, movieID); err != nil {
			return notFound(err, "Movie not found")
		}
		if _, err := s.reconcile(ctx, r); err != nil {
			return err
		}
		var err error
		items, total, err = r.Showtimes.List(ctx, f)
		return err
	})
	return items, total, err
}

func (s *ShowtimeService) Get(ctx context.Context, id uint64) (*ShowtimeView, error) {
	var out *ShowtimeView
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := s.reconcile(ctx, r); err != nil {
			return err
		}
		d, err := r.Showtimes.GetDetail(ctx, id)
		if err != nil {
			return notFound(err, msgShowtimeNotFound)
		}
		booked, err := r.Bookings.BookedSeatIDs(ctx, id)
		if err != nil {
			return err
		}
		out = &ShowtimeView{ShowtimeDetail: *d, BookedSeats: len(booked)}
		return nil
	})
	return out, err
}

// Seats returns the seat map of a showtime.
func (s *ShowtimeService) Seats(ctx context.Context, id uint64) (*SeatMap, error) {
	var out *SeatMap
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := s.reconcile(ctx, r); err != nil {
			return err
		}
		d, err := r.Showtimes.GetDetail(ctx, id)
		if err != nil {
			return notFound(err, msgShowtimeNotFound)
		}
		seats, err := r.Seats.ListByScreen(ctx, d.ScreenID)
		if err != nil {
			return err
		}
		ids, err := r.Bookings.BookedSeatIDs(ctx, id)
		if err != nil {
			return err
		}
		booked := make(map[uint64]bool, len(ids))
		for _, sid := range ids {
			booked[sid] = true
		}
		out = &SeatMap{Showtime: *d, Seats: make([]SeatState, 0, len(seats))}
		for _, st := range seats {
			out.Seats = append(out.Seats, SeatState{Seat: st, IsBooked: booked[st.ID]})
		}
		return nil
	})
	return out, err
}

// AvailableScreens splits the screens of a cinema into those free for a
// screening of the given length starting at `at` and those blocked by a
// non-cancelled showtime starting within duration+ScheduleBuffer on either
// side. When movieID is set the duration comes from the movie.
func (s *ShowtimeService) AvailableScreens(ctx context.Context, cinemaID uint64, at time.Time, duration int, movieID uint64) (*ScreenAvailability, error) {
	if cinemaID == 0 || at.IsZero() {
		return nil, apperr.Validation("cinema_id and show_datetime are required")
	}
	var out *ScreenAvailability
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Cinemas.GetByID(ctx, cinemaID); err != nil {
			return notFound(err, "Cinema not found")
		}
		if movieID != 0 {
			m, err := r.Movies.GetByID(ctx, movieID)
			if err != nil {
				return notFound(err, "Movie not found")
			}
			duration = m.DurationMinutes
		}
		if duration <= 0 {
			return apperr.Validation("duration_minutes or movie_id is required")
		}
		screens, err := r.Screens.ListByCinema(ctx, cinemaID)
		if err != nil {
			return err
		}
		window := time.Duration(duration)*time.Minute + ScheduleBuffer
		at = at.UTC()
		out = &ScreenAvailability{
			CinemaID:         cinemaID,
			ShowDatetime:     at,
			DurationMinutes:  duration,
			AvailableScreens: []repository.ScreenSummary{},
			BusyScreens:      []BusyScreen{},
		}
		for _, sc := range screens {
			clash, err := r.Showtimes.StartingBetween(ctx, sc.ID, at.Add(-window), at.Add(window))
			if err != nil {
				return err
			}
			if len(clash) == 0 {
				out.AvailableScreens = append(out.AvailableScreens, sc)
			} else {
				out.BusyScreens = append(out.BusyScreens, BusyScreen{ScreenSummary: sc, Conflicts: clash})
			}
		}
		return nil
	})
	return out, err
}
