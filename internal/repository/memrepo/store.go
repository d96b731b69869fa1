// Package memrepo implements the repository interfaces in memory. It backs
// DB_DRIVER=memory and the service and handler tests. Units of work run one
// at a time against a copy of the data; the copy replaces the data only when
// the work succeeds.
package memrepo

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type tokenRow struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type state struct {
	seq           map[string]uint64
	users         map[uint64]model.User
	tokens        map[string]tokenRow
	cinemas       map[uint64]model.Cinema
	screens       map[uint64]model.Screen
	seats         map[uint64]model.Seat
	movies        map[uint64]model.Movie
	actors        map[uint64]model.Actor
	movieActors   map[uint64]model.MovieActor
	images        map[uint64]model.MovieImage
	videos        map[uint64]model.MovieVideo
	showtimes     map[uint64]model.Showtime
	promotions    map[uint64]model.Promotion
	bookings      map[uint64]model.Booking
	bookingSeats  map[uint64]model.BookingSeat
	bookingPromos map[uint64]model.BookingPromotion
	payments      map[uint64]model.Payment
	reviews       map[uint64]model.Review
}

func newState() *state {
	return &state{
		seq:           map[string]uint64{},
		users:         map[uint64]model.User{},
		tokens:        map[string]tokenRow{},
		cinemas:       map[uint64]model.Cinema{},
		screens:       map[uint64]model.Screen{},
		seats:         map[uint64]model.Seat{},
		movies:        map[uint64]model.Movie{},
		actors:        map[uint64]model.Actor{},
		movieActors:   map[uint64]model.MovieActor{},
		images:        map[uint64]model.MovieImage{},
		videos:        map[uint64]model.MovieVideo{},
		showtimes:     map[uint64]model.Showtime{},
		promotions:    map[uint64]model.Promotion{},
		bookings:      map[uint64]model.Booking{},
		bookingSeats:  map[uint64]model.BookingSeat{},
		bookingPromos: map[uint64]model.BookingPromotion{},
		payments:      map[uint64]model.Payment{},
		reviews:       map[uint64]model.Review{},
	}
}

// clone copies every table. Row values are copied; pointer fields inside
// rows are shared and never mutated in place.
func (s *state) clone() *state {
	return &state{
		seq:           maps.Clone(s.seq),
		users:         maps.Clone(s.users),
		tokens:        maps.Clone(s.tokens),
		cinemas:       maps.Clone(s.cinemas),
		screens:       maps.Clone(s.screens),
		seats:         maps.Clone(s.seats),
		movies:        maps.Clone(s.movies),
		actors:        maps.Clone(s.actors),
		movieActors:   maps.Clone(s.movieActors),
		images:        maps.Clone(s.images),
		videos:        maps.Clone(s.videos),
		showtimes:     maps.Clone(s.showtimes),
		promotions:    maps.Clone(s.promotions),
		bookings:      maps.Clone(s.bookings),
		bookingSeats:  maps.Clone(s.bookingSeats),
		bookingPromos: maps.Clone(s.bookingPromos),
		payments:      maps.Clone(s.payments),
		reviews:       maps.Clone(s.reviews),
	}
}

func (s *state) next(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

// Store is the in-memory unit of work.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the clock used for created_at/updated_at columns.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PingContext always succeeds.
func (s *Store) PingContext(ctx context.Context) error { return ctx.Err() }

// Run executes fn against a private copy of the data and publishes the copy
// when fn returns nil. Units of work are serialized.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{st: s.data.clone(), now: s.now}
	if err := fn(tx.repos()); err != nil {
		return err
	}
	s.data = tx.st
	return nil
}

// txn is the state a single unit of work operates on.
type txn struct {
	st  *state
	now func() time.Time
}

func (t *txn) repos() repository.Repos {
	return repository.Repos{
		Users:      userRepo{t},
		Tokens:     tokenRepo{t},
		Cinemas:    cinemaRepo{t},
		Screens:    screenRepo{t},
		Seats:      seatRepo{t},
		Movies:     movieRepo{t},
		Actors:     actorRepo{t},
		Showtimes:  showtimeRepo{t},
		Promotions: promotionRepo{t},
		Bookings:   bookingRepo{t},
		Payments:   paymentRepo{t},
		Reviews:    reviewRepo{t},
	}
}

// contains is a case-insensitive substring match, like MySQL LIKE '%s%'
// under a _ci collation.
func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// page cuts one window out of items.
func page[T any](items []T, p repository.Page) []T {
	if p.PerPage < 1 {
		return items
	}
	off := p.Offset()
	if off >= len(items) {
		return []T{}
	}
	end := min(off+p.PerPage, len(items))
	return items[off:end]
}

// sortedValues returns the rows of m ordered by id.
func sortedValues[T any](m map[uint64]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

var _ repository.UnitOfWork = (*Store)(nil)
