package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	s := newBookingSetup(t)
	first, err := s.book(t, s.buyer.ID, "", 0, 1)
	require.NoError(t, err)
	_, err = s.bookings.Pay(bg(), s.buyer.ID, first.ID, "card")
	require.NoError(t, err)

	// A payment from yesterday counts towards the total only.
	s.bookings.now = func() time.Time { return testNow.Add(-24 * time.Hour) }
	second, err := s.book(t, s.buyer.ID, "", 2)
	require.NoError(t, err)
	_, err = s.bookings.Pay(bg(), s.buyer.ID, second.ID, "card")
	require.NoError(t, err)

	// Pending bookings bring no revenue.
	_, err = s.book(t, s.buyer.ID, "", 3)
	require.NoError(t, err)

	st, err := s.dashboard.Stats(bg())
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalUsers)
	assert.Equal(t, 1, st.TotalMovies)
	assert.Equal(t, 1, st.TotalCinemas)
	assert.Equal(t, 1, st.TotalScreens)
	assert.Equal(t, 3, st.TotalBookings)
	assert.Equal(t, 20.0, st.RevenueToday)
	assert.Equal(t, 30.0, st.TotalRevenue)
}

func TestDashboardRevenueDropsCancelledBookings(t *testing.T) {
	s := newBookingSetup(t)
	b, err := s.book(t, s.buyer.ID, "", 0, 1)
	require.NoError(t, err)
	_, err = s.bookings.Pay(bg(), s.buyer.ID, b.ID, "card")
	require.NoError(t, err)

	st, err := s.dashboard.Stats(bg())
	require.NoError(t, err)
	assert.Equal(t, 20.0, st.TotalRevenue)

	_, err = s.bookings.Cancel(bg(), Caller{UserID: s.buyer.ID}, b.ID)
	require.NoError(t, err)

	st, err = s.dashboard.Stats(bg())
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.TotalRevenue)
	assert.Equal(t, 0.0, st.RevenueToday)
	assert.Equal(t, 1, st.TotalBookings)
}
