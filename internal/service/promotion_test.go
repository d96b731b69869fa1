package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int { return &i }
func bptr(b bool) *bool { return &b }

func promoInput(code string) PromotionInput {
	return PromotionInput{
		Code:               code,
		Name:               "Summer",
		DiscountPercentage: fptr(20),
		ValidFrom:          "2026-05-01",
		ValidTo:            "2026-08-31",
	}
}

func TestCreatePromotion(t *testing.T) {
	f := newFixture(t)

	p, err := f.promos.Create(bg(), promoInput(" summer20 "))
	require.NoError(t, err)
	assert.Equal(t, "SUMMER20", p.Code)
	assert.True(t, p.IsActive)
	assert.Nil(t, p.DiscountAmount)

	_, err = f.promos.Create(bg(), promoInput("Summer20"))
	assertKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Promotion code already exists", apperr.MessageOf(err))
}

func TestCreatePromotionValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func(*PromotionInput){
		"reversed dates":   func(in *PromotionInput) { in.ValidFrom, in.ValidTo = in.ValidTo, in.ValidFrom },
		"missing date":     func(in *PromotionInput) { in.ValidTo = "" },
		"bad date":         func(in *PromotionInput) { in.ValidFrom = "01/05/2026" },
		"no discount":      func(in *PromotionInput) { in.DiscountPercentage = nil },
		"percentage > 100": func(in *PromotionInput) { in.DiscountPercentage = fptr(120) },
		"negative amount":  func(in *PromotionInput) { in.DiscountPercentage, in.DiscountAmount = nil, fptr(-5) },
		"negative limit":       func(in *PromotionInput) { in.UsageLimit = iptr(-1) },
		"no name":          func(in *PromotionInput) { in.Name = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := promoInput("X1")
			mutate(&in)
			_, err := f.promos.Create(bg(), in)
			assertKind(t, err, apperr.KindValidation)
		})
	}

	in := promoInput("SAME")
	in.ValidTo = in.ValidFrom
	_, err := f.promos.Create(bg(), in)
	require.NoError(t, err, "a single-day promotion is valid")
}

func TestUpdatePromotion(t *testing.T) {
	f := newFixture(t)
	p, err := f.promos.Create(bg(), promoInput("A"))
	require.NoError(t, err)
	_, err = f.promos.Create(bg(), promoInput("B"))
	require.NoError(t, err)

	got, err := f.promos.Update(bg(), p.ID, PromotionPatch{
		DiscountPercentage: fptr(0),
		DiscountAmount:     fptr(3),
		UsageLimit:         iptr(10),
		IsActive:           bptr(false),
	})
	require.NoError(t, err)
	assert.Nil(t, got.DiscountPercentage)
	assert.Equal(t, 3.0, *got.DiscountAmount)
	assert.Equal(t, 10, *got.UsageLimit)
	assert.False(t, got.IsActive)

	code := "b"
	_, err = f.promos.Update(bg(), p.ID, PromotionPatch{Code: &code})
	assertKind(t, err, apperr.KindConflict)

	early := "2026-01-01"
	late := "2025-12-31"
	_, err = f.promos.Update(bg(), p.ID, PromotionPatch{ValidFrom: &early, ValidTo: &late})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.promos.Update(bg(), 999, PromotionPatch{})
	assertKind(t, err, apperr.KindNotFound)

	active, err := f.promos.List(bg(), bptr(true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Code)
	all, err := f.promos.List(bg(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeletePromotion(t *testing.T) {
	f := newFixture(t)
	unused, err := f.promos.Create(bg(), promoInput("UNUSED"))
	require.NoError(t, err)
	used, err := f.promos.Create(bg(), promoInput("USED"))
	require.NoError(t, err)

	cid, sid := f.screen(t, []string{"A"}, 2)
	st := f.showtime(t, f.movie(t, "Dune", 155, true), sid, testNow.Add(24*time.Hour))
	seats, err := f.cinemas.ListSeats(bg(), cid, sid)
	require.NoError(t, err)
	u := f.user(t, "u@example.com")
	_, err = f.bookings.Create(bg(), u.ID, BookingInput{ShowtimeID: st.ID, SeatIDs: []uint64{seats[0].ID}, PromotionCode: "used"})
	require.NoError(t, err)

	require.NoError(t, f.promos.Delete(bg(), unused.ID))
	_, err = f.promos.Get(bg(), unused.ID)
	assertKind(t, err, apperr.KindNotFound)

	err = f.promos.Delete(bg(), used.ID)
	assertKind(t, err, apperr.KindConflict)
	assert.Contains(t, apperr.MessageOf(err), "Consider deactivating it instead")
}
