package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository/memrepo"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeFiles struct{ removed []string }

func (f *fakeFiles) Remove(url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type fixture struct {
	store     *memrepo.Store
	denylist  *session.Memory
	files     *fakeFiles
	auth      *AuthService
	accounts  *AccountService
	cinemas   *CinemaService
	movies    *MovieService
	showtimes *ShowtimeService
	promos    *PromotionService
	bookings  *BookingService
	reviews   *ReviewService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.New()
	store.SetClock(func() time.Time { return testNow })
	clock := func() time.Time { return testNow }
	f := &fixture{store: store, denylist: session.NewMemory(), files: &fakeFiles{}}
	f.auth = NewAuthService(store, f.denylist, AuthConfig{
		Secret: "test-secret", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour, BcryptCost: 4,
	}, nil)
	f.accounts = NewAccountService(store, 4, nil)
	f.cinemas = NewCinemaService(store, nil)
	f.movies = NewMovieService(store, f.files, nil)
	f.showtimes = NewShowtimeService(store, nil)
	f.showtimes.now = clock
	f.promos = NewPromotionService(store)
	f.bookings = NewBookingService(store, nil)
	f.bookings.now = clock
	f.reviews = NewReviewService(store)
	f.dashboard = NewDashboardService(store)
	f.dashboard.now = clock
	return f
}

func bg() context.Context { return context.Background() }

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.auth.Register(bg(), RegisterInput{Email: email, Password: "secret1", FullName: "Test " + email})
	require.NoError(t, err)
	return u
}

// screen creates a cinema with one screen holding rows x perRow seats.
func (f *fixture) screen(t *testing.T, rows []string, perRow int) (cinemaID, screenID uint64) {
	t.Helper()
	c, err := f.cinemas.CreateCinema(bg(), CinemaInput{Name: "Galaxy", Address: "1 Main St", City: "Hanoi"})
	require.NoError(t, err)
	sc, err := f.cinemas.CreateScreen(bg(), c.ID, "Screen 1", "")
	require.NoError(t, err)
	if perRow > 0 {
		_, err = f.cinemas.CreateSeats(bg(), c.ID, sc.ID, SeatBatch{Rows: rows, SeatsPerRow: perRow})
		require.NoError(t, err)
	}
	return c.ID, sc.ID
}

func (f *fixture) movie(t *testing.T, title string, minutes int, showing bool) uint64 {
	t.Helper()
	m, err := f.movies.CreateMovie(bg(), MovieInput{Title: title, DurationMinutes: minutes, IsShowing: &showing})
	require.NoError(t, err)
	return m.ID
}

func (f *fixture) showtime(t *testing.T, movieID, screenID uint64, at time.Time) *model.ShowtimeDetail {
	t.Helper()
	st, err := f.showtimes.Create(bg(), ShowtimeInput{MovieID: movieID, ScreenID: screenID, ShowDatetime: at, BasePrice: 10})
	require.NoError(t, err)
	return st
}

func assertKind(t *testing.T, err error, k apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, k, apperr.KindOf(err), "error: %v", err)
}

func TestOptionalDate(t *testing.T) {
	d, err := optionalDate(" 2024-02-29 ", "release_date")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = optionalDate("", "release_date")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = optionalDate("29/02/2024", "release_date")
	assertKind(t, err, apperr.KindValidation)
}

func TestClean(t *testing.T) {
	s := "  x "
	assert.Equal(t, "x", *clean(&s))
	blank := "   "
	assert.Nil(t, clean(&blank))
	assert.Nil(t, clean(nil))
}
