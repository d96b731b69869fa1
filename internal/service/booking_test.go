package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type bookingSetup struct {
	*fixture
	cinemaID uint64
	showtime *model.ShowtimeDetail
	seats    []model.Seat
	buyer    *model.User
}

// newBookingSetup schedules one showtime tomorrow on a 2x3 screen.
func newBookingSetup(t *testing.T) *bookingSetup {
	t.Helper()
	f := newFixture(t)
	cid, sid := f.screen(t, []string{"A", "B"}, 3)
	st := f.showtime(t, f.movie(t, "Dune", 155, true), sid, testNow.Add(24*time.Hour))
	seats, err := f.cinemas.ListSeats(bg(), cid, sid)
	require.NoError(t, err)
	return &bookingSetup{fixture: f, cinemaID: cid, showtime: st, seats: seats, buyer: f.user(t, "buyer@example.com")}
}

func (s *bookingSetup) book(t *testing.T, userID uint64, code string, idx ...int) (*BookingDetail, error) {
	t.Helper()
	var ids []uint64
	for _, i := range idx {
		ids = append(ids, s.seats[i].ID)
	}
	return s.bookings.Create(bg(), userID, BookingInput{ShowtimeID: s.showtime.ID, SeatIDs: ids, PromotionCode: code})
}

func TestDiscount(t *testing.T) {
	assert.Equal(t, 5.0, discount(&model.Promotion{DiscountPercentage: fptr(25)}, 20))
	assert.Equal(t, 3.33, discount(&model.Promotion{DiscountPercentage: fptr(33.3)}, 10))
	assert.Equal(t, 4.0, discount(&model.Promotion{DiscountAmount: fptr(4)}, 20))
	assert.Equal(t, 20.0, discount(&model.Promotion{DiscountAmount: fptr(50)}, 20))
	assert.Equal(t, 2.0, discount(&model.Promotion{DiscountPercentage: fptr(10), DiscountAmount: fptr(7)}, 20))
}

func TestCreateBooking(t *testing.T) {
	s := newBookingSetup(t)

	b, err := s.book(t, s.buyer.ID, "", 0, 1)
	require.NoError(t, err)
	assert.Regexp(t, `^BK[A-Z0-9]{8}$`, b.BookingCode)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, 20.0, b.TotalAmount)
	assert.True(t, testNow.Equal(b.BookingDatetime))
	require.Len(t, b.Seats, 2)
	assert.Equal(t, "A", b.Seats[0].Row)
	assert.Empty(t, b.Promotions)
	assert.Nil(t, b.Payment)

	v, err := s.showtimes.Get(bg(), s.showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, v.AvailableSeats)
	assert.Equal(t, 2, v.BookedSeats)
}

func TestCreateBookingRejects(t *testing.T) {
	s := newBookingSetup(t)
	_, err := s.book(t, s.buyer.ID, "", 0)
	require.NoError(t, err)

	_, err = s.book(t, s.buyer.ID, "", 0, 2)
	assertKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Seats already booked: A1", apperr.MessageOf(err))

	_, err = s.bookings.Create(bg(), s.buyer.ID, BookingInput{ShowtimeID: s.showtime.ID, SeatIDs: []uint64{s.seats[1].ID, s.seats[1].ID}})
	assertKind(t, err, apperr.KindValidation)

	_, err = s.bookings.Create(bg(), s.buyer.ID, BookingInput{ShowtimeID: s.showtime.ID, SeatIDs: []uint64{9999}})
	assertKind(t, err, apperr.KindValidation)

	_, err = s.bookings.Create(bg(), s.buyer.ID, BookingInput{ShowtimeID: 9999, SeatIDs: []uint64{s.seats[1].ID}})
	assertKind(t, err, apperr.KindNotFound)

	_, err = s.book(t, s.buyer.ID, "NOPE", 1)
	assertKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Invalid promotion code", apperr.MessageOf(err))

	off := false
	_, err = s.cinemas.UpdateSeat(bg(), s.cinemaID, s.seats[5].ScreenID, s.seats[5].ID, SeatPatch{IsAvailable: &off})
	require.NoError(t, err)
	_, err = s.book(t, s.buyer.ID, "", 5)
	assertKind(t, err, apperr.KindValidation)

	// Failed attempts leave no trace.
	v, err := s.showtimes.Get(bg(), s.showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, v.AvailableSeats)
}

func TestCreateBookingPastShowtime(t *testing.T) {
	s := newBookingSetup(t)
	past := s.showtime.ShowDatetime.Add(-48 * time.Hour)
	_, err := s.showtimes.Update(bg(), s.showtime.ID, ShowtimePatch{ShowDatetime: &past})
	require.NoError(t, err)

	_, err = s.book(t, s.buyer.ID, "", 0)
	assertKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Showtime is not open for booking", apperr.MessageOf(err))
}

func TestCreateBookingWithPromotion(t *testing.T) {
	s := newBookingSetup(t)
	in := promoInput("HALF")
	in.DiscountPercentage = fptr(50)
	in.UsageLimit = iptr(1)
	p, err := s.promos.Create(bg(), in)
	require.NoError(t, err)
	inactive := promoInput("OFF")
	inactive.IsActive = bptr(false)
	_, err = s.promos.Create(bg(), inactive)
	require.NoError(t, err)

	b, err := s.book(t, s.buyer.ID, " half ", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, b.TotalAmount)
	require.Len(t, b.Promotions, 1)
	assert.Equal(t, "HALF", b.Promotions[0].Code)
	assert.Equal(t, 10.0, b.Promotions[0].DiscountApplied)

	_, err = s.book(t, s.buyer.ID, "HALF", 2)
	assertKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Promotion usage limit reached", apperr.MessageOf(err))

	_, err = s.book(t, s.buyer.ID, "OFF", 2)
	assertKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Promotion is not active", apperr.MessageOf(err))

	got, err := s.promos.Get(bg(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)
}

func TestPayBooking(t *testing.T) {
	s := newBookingSetup(t)
	b, err := s.book(t, s.buyer.ID, "", 0)
	require.NoError(t, err)
	other := s.user(t, "other@example.com")

	_, err = s.bookings.Pay(bg(), other.ID, b.ID, "card")
	assertKind(t, err, apperr.KindNotFound)
	_, err = s.bookings.Pay(bg(), s.buyer.ID, b.ID, " ")
	assertKind(t, err, apperr.KindValidation)

	paid, err := s.bookings.Pay(bg(), s.buyer.ID, b.ID, "credit_card")
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, paid.Status)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, "CREDIT_CARD", paid.Payment.PaymentMethod)
	assert.Equal(t, model.PaymentCompleted, paid.Payment.PaymentStatus)
	assert.Equal(t, 10.0, paid.Payment.Amount)
	assert.Len(t, *paid.Payment.TransactionID, 32)

	_, err = s.bookings.Pay(bg(), s.buyer.ID, b.ID, "cash")
	assertKind(t, err, apperr.KindValidation)
}

func TestCancelBooking(t *testing.T) {
	s := newBookingSetup(t)
	in := promoInput("ONCE")
	in.UsageLimit = iptr(1)
	p, err := s.promos.Create(bg(), in)
	require.NoError(t, err)
	b, err := s.book(t, s.buyer.ID, "ONCE", 0, 1)
	require.NoError(t, err)
	other := s.user(t, "other@example.com")

	_, err = s.bookings.Cancel(bg(), Caller{UserID: other.ID}, b.ID)
	assertKind(t, err, apperr.KindNotFound)

	got, err := s.bookings.Cancel(bg(), Caller{UserID: s.buyer.ID}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)

	_, err = s.bookings.Cancel(bg(), Caller{UserID: other.ID, Admin: true}, b.ID)
	assertKind(t, err, apperr.KindValidation)

	v, err := s.showtimes.Get(bg(), s.showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, v.AvailableSeats)
	assert.Zero(t, v.BookedSeats)
	promo, err := s.promos.Get(bg(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, promo.UsedCount)

	// Seats and promotion are free for the next customer.
	_, err = s.book(t, other.ID, "ONCE", 0, 1)
	require.NoError(t, err)
}

func TestBookingVisibility(t *testing.T) {
	s := newBookingSetup(t)
	b, err := s.book(t, s.buyer.ID, "", 0)
	require.NoError(t, err)
	other := s.user(t, "other@example.com")
	_, err = s.book(t, other.ID, "", 1)
	require.NoError(t, err)

	_, err = s.bookings.Get(bg(), Caller{UserID: other.ID}, b.ID)
	assertKind(t, err, apperr.KindNotFound)
	got, err := s.bookings.Get(bg(), Caller{UserID: other.ID, Admin: true}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.BookingCode, got.BookingCode)

	mine, total, err := s.bookings.ListMine(bg(), s.buyer.ID, repository.Page{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, b.ID, mine[0].ID)

	_, total, err = s.bookings.List(bg(), repository.BookingFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	_, _, err = s.bookings.List(bg(), repository.BookingFilter{Status: "REFUNDED"})
	assertKind(t, err, apperr.KindValidation)
}

func TestDeleteBookedSeat(t *testing.T) {
	s := newBookingSetup(t)
	sid := s.showtime.ScreenID
	b, err := s.book(t, s.buyer.ID, "", 0)
	require.NoError(t, err)

	err = s.cinemas.DeleteSeat(bg(), s.cinemaID, sid, s.seats[0].ID)
	assertKind(t, err, apperr.KindConflict)
	_, err = s.cinemas.BulkDeleteSeats(bg(), s.cinemaID, sid, []uint64{s.seats[1].ID, s.seats[0].ID})
	assertKind(t, err, apperr.KindConflict)

	seats, err := s.cinemas.ListSeats(bg(), s.cinemaID, sid)
	require.NoError(t, err)
	assert.Len(t, seats, 6, "nothing deleted")
	got, err := s.bookings.Get(bg(), Caller{UserID: s.buyer.ID}, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Seats, 1)

	_, err = s.bookings.Cancel(bg(), Caller{UserID: s.buyer.ID}, b.ID)
	require.NoError(t, err)
	require.NoError(t, s.cinemas.DeleteSeat(bg(), s.cinemaID, sid, s.seats[0].ID))
}
