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

func TestCreateCinemaValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.cinemas.CreateCinema(bg(), CinemaInput{Name: "X", City: "Y"})
	assertKind(t, err, apperr.KindValidation)

	lat := 95.0
	_, err = f.cinemas.CreateCinema(bg(), CinemaInput{Name: "X", Address: "A", City: "Y", Latitude: &lat})
	assertKind(t, err, apperr.KindValidation)
}

func TestUpdateCinemaPartial(t *testing.T) {
	f := newFixture(t)
	phone := "0123"
	c, err := f.cinemas.CreateCinema(bg(), CinemaInput{Name: "Old", Address: "A", City: "Hue", PhoneNumber: &phone})
	require.NoError(t, err)

	name := "New"
	got, err := f.cinemas.UpdateCinema(bg(), c.ID, CinemaPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "Hue", got.City)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, "0123", *got.PhoneNumber)

	blank := " "
	_, err = f.cinemas.UpdateCinema(bg(), c.ID, CinemaPatch{City: &blank})
	assertKind(t, err, apperr.KindValidation)
	_, err = f.cinemas.UpdateCinema(bg(), 404, CinemaPatch{Name: &name})
	assertKind(t, err, apperr.KindNotFound)
}

func TestListCinemas(t *testing.T) {
	f := newFixture(t)
	f.screen(t, nil, 0)
	_, err := f.cinemas.CreateCinema(bg(), CinemaInput{Name: "Lotte", Address: "B", City: "Da Nang"})
	require.NoError(t, err)

	items, total, err := f.cinemas.ListCinemas(bg(), repository.CinemaFilter{City: "hanoi", Page: repository.Page{Page: 1, PerPage: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Galaxy", items[0].Name)
	assert.Equal(t, 1, items[0].ScreenCount)
}

func TestSeatGeneration(t *testing.T) {
	f := newFixture(t)
	cid, sid := f.screen(t, nil, 0)

	seats, err := f.cinemas.CreateSeats(bg(), cid, sid, SeatBatch{Rows: []string{"A", "B"}, SeatsPerRow: 3})
	require.NoError(t, err)
	assert.Len(t, seats, 6)

	seats, err = f.cinemas.CreateSeats(bg(), cid, sid, SeatBatch{Rows: []string{"b", "C"}, SeatsPerRow: 3, SeatType: "vip"})
	require.NoError(t, err)
	assert.Len(t, seats, 3, "row B already exists")
	for _, s := range seats {
		assert.Equal(t, "C", s.Row)
		assert.Equal(t, model.SeatVIP, s.SeatType)
	}

	d, err := f.cinemas.GetScreen(bg(), cid, sid)
	require.NoError(t, err)
	assert.Equal(t, 9, d.TotalSeats)
	assert.Len(t, d.Seats, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{d.Seats["A"][0].Number, d.Seats["A"][1].Number, d.Seats["A"][2].Number})
}

func TestExplicitSeats(t *testing.T) {
	f := newFixture(t)
	cid, sid := f.screen(t, nil, 0)

	seats, err := f.cinemas.CreateSeats(bg(), cid, sid, SeatBatch{Seats: []SeatSpec{
		{Row: "A", Number: 1},
		{Row: "A", Number: 1},
		{Row: "", Number: 2},
		{Row: "A", Number: 0},
		{Row: "A", Number: 2, SeatType: "couple"},
	}})
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, model.SeatRegular, seats[0].SeatType)
	assert.Equal(t, model.SeatCouple, seats[1].SeatType)

	_, err = f.cinemas.CreateSeats(bg(), cid, sid, SeatBatch{Seats: []SeatSpec{{Row: "B", Number: 1, SeatType: "sofa"}}})
	assertKind(t, err, apperr.KindValidation)
	_, err = f.cinemas.CreateSeats(bg(), cid, sid, SeatBatch{})
	assertKind(t, err, apperr.KindValidation)
}

func TestSeatUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	cid, sid := f.screen(t, []string{"A"}, 4)
	seats, err := f.cinemas.ListSeats(bg(), cid, sid)
	require.NoError(t, err)
	require.Len(t, seats, 4)

	vip, off := "VIP", false
	s, err := f.cinemas.UpdateSeat(bg(), cid, sid, seats[0].ID, SeatPatch{SeatType: &vip, IsAvailable: &off})
	require.NoError(t, err)
	assert.Equal(t, model.SeatVIP, s.SeatType)
	assert.False(t, s.IsAvailable)

	require.NoError(t, f.cinemas.DeleteSeat(bg(), cid, sid, seats[0].ID))
	n, err := f.cinemas.BulkDeleteSeats(bg(), cid, sid, []uint64{seats[1].ID, seats[2].ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	d, err := f.cinemas.GetScreen(bg(), cid, sid)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalSeats)

	_, err = f.cinemas.BulkDeleteSeats(bg(), cid, sid, nil)
	assertKind(t, err, apperr.KindValidation)
}

func TestScreenMustBelongToCinema(t *testing.T) {
	f := newFixture(t)
	_, sid := f.screen(t, []string{"A"}, 1)
	other, err := f.cinemas.CreateCinema(bg(), CinemaInput{Name: "Other", Address: "A", City: "B"})
	require.NoError(t, err)

	_, err = f.cinemas.GetScreen(bg(), other.ID, sid)
	assertKind(t, err, apperr.KindNotFound)
	assertKind(t, f.cinemas.DeleteScreen(bg(), other.ID, sid), apperr.KindNotFound)
}

func TestDeleteCinemaWithShowtimes(t *testing.T) {
	f := newFixture(t)
	cid, sid := f.screen(t, []string{"A"}, 2)
	mid := f.movie(t, "Dune", 150, true)
	f.showtime(t, mid, sid, testNow.Add(24*time.Hour))

	err := f.cinemas.DeleteCinema(bg(), cid)
	assertKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Cannot delete cinema with active showtimes", apperr.MessageOf(err))
	err = f.cinemas.DeleteScreen(bg(), cid, sid)
	assert.Equal(t, "Cannot delete screen with active showtimes", apperr.MessageOf(err))

	empty, _ := f.screen(t, []string{"A"}, 2)
	require.NoError(t, f.cinemas.DeleteCinema(bg(), empty))
	_, err = f.cinemas.GetCinema(bg(), empty)
	assertKind(t, err, apperr.KindNotFound)
}

func TestScreenCRUD(t *testing.T) {
	f := newFixture(t)
	cid, _ := f.screen(t, nil, 0)

	sc, err := f.cinemas.CreateScreen(bg(), cid, "IMAX Hall", "imax")
	require.NoError(t, err)
	assert.Equal(t, "IMAX", sc.ScreenType)
	assert.Equal(t, 0, sc.TotalSeats)

	_, err = f.cinemas.CreateScreen(bg(), cid, "", "")
	assertKind(t, err, apperr.KindValidation)

	name := "Hall 2"
	sc, err = f.cinemas.UpdateScreen(bg(), cid, sc.ID, ScreenPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Hall 2", sc.Name)

	list, err := f.cinemas.ListScreens(bg(), cid)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	d, err := f.cinemas.GetCinema(bg(), cid)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalScreens)

	require.NoError(t, f.cinemas.DeleteScreen(bg(), cid, sc.ID))
}
