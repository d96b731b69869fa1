package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestStoreCommitsOnSuccess(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectCommit()

	var n int
	err := store.Run(context.Background(), func(r Repos) error {
		var err error
		n, err = r.Users.Count(context.Background())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRollsBackOnError(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.Run(context.Background(), func(Repos) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(store.DB()).Create(context.Background(), &model.User{Email: "A@x.io", FullName: "A", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`SELECT .* FROM cinemas c WHERE c.cinema_id = \?`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"cinema_id"}))

	_, err := NewCinemaRepo(store.DB()).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionConsumeAtLimit(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`UPDATE promotions SET used_count = used_count \+ 1 WHERE promotion_id=\? AND \(usage_limit IS NULL OR used_count < usage_limit\)`).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPromotionRepo(store.DB()).Consume(context.Background(), 4)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowtimeAdjustAvailable(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`UPDATE showtimes SET available_seats = available_seats \+ \?`).
		WithArgs(-2, uint64(7), -2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewShowtimeRepo(store.DB()).AdjustAvailable(context.Background(), 7, -2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowtimeStartingBetweenSkipsCancelled(t *testing.T) {
	store, mock := newMock(t)
	from := time.Date(2030, 5, 1, 16, 0, 0, 0, time.UTC)
	to := from.Add(4 * time.Hour)
	cols := []string{"showtime_id", "movie_id", "screen_id", "show_datetime", "base_price", "available_seats", "status", "created_at"}
	mock.ExpectQuery(`st.status <> 'CANCELLED' AND st.show_datetime BETWEEN \? AND \?`).
		WithArgs(uint64(2), from, to).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 1, 2, from.Add(time.Hour), 9.5, 40, "SCHEDULED", from))

	got, err := NewShowtimeRepo(store.DB()).StartingBetween(context.Background(), 2, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, 9.5, got[0].BasePrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatDeleteManyScopedToScreen(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM seats WHERE screen_id = \? AND seat_id IN \(\?,\?,\?\)`).
		WithArgs(uint64(5), uint64(1), uint64(2), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewSeatRepo(store.DB()).DeleteMany(context.Background(), 5, []uint64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatHasActiveBookings(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM booking_seats bs.*WHERE s.screen_id = \? AND b.status <> 'CANCELLED' AND bs.seat_id IN \(\?,\?\)`).
		WithArgs(uint64(5), uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	booked, err := NewSeatRepo(store.DB()).HasActiveBookings(context.Background(), 5, []uint64{1, 2})
	require.NoError(t, err)
	assert.True(t, booked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenValidateRefresh(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"})
	rows.AddRow(uint64(8), now.Add(time.Hour), nil)
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).WithArgs("h").WillReturnRows(rows)

	uid, err := NewTokenRepo(store.DB()).ValidateRefresh(context.Background(), "h", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), uid)

	expired := sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(uint64(8), now.Add(-time.Hour), nil)
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).WithArgs("h").WillReturnRows(expired)
	_, err = NewTokenRepo(store.DB()).ValidateRefresh(context.Background(), "h", now)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRevenueSkipsCancelledBookings(t *testing.T) {
	store, mock := newMock(t)
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(p.amount\), 0\) FROM payments p JOIN bookings b ON b.booking_id = p.booking_id WHERE p.payment_status='COMPLETED' AND b.status <> 'CANCELLED' AND p.payment_datetime >= \?`).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(42.5))

	sum, err := NewPaymentRepo(store.DB()).Revenue(context.Background(), from, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 42.5, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, like("50%_off"))
}

func TestPaginate(t *testing.T) {
	q, args := paginate("SELECT 1", []any{"x"}, Page{Page: 3, PerPage: 10})
	assert.Equal(t, "SELECT 1 LIMIT ? OFFSET ?", q)
	assert.Equal(t, []any{"x", 10, 20}, args)

	q, args = paginate("SELECT 1", nil, Page{})
	assert.Equal(t, "SELECT 1", q)
	assert.Nil(t, args)
}
