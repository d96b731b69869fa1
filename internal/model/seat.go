package model

import "strconv"

// Seat types.
const (
	SeatRegular = "REGULAR"
	SeatVIP     = "VIP"
	SeatCouple  = "COUPLE"
)

// ValidSeatType reports whether t is one of the known seat types.
func ValidSeatType(t string) bool {
	switch t {
	case SeatRegular, SeatVIP, SeatCouple:
		return true
	}
	return false
}

// Seat is a physical seat of a screen. (screen_id, seat_row, seat_number)
// is unique.
type Seat struct {
	ID          uint64 `json:"seat_id"`      // seats.seat_id
	ScreenID    uint64 `json:"screen_id"`    // seats.screen_id
	Row         string `json:"seat_row"`     // seats.seat_row
	Number      int    `json:"seat_number"`  // seats.seat_number
	SeatType    string `json:"seat_type"`    // seats.seat_type
	IsAvailable bool   `json:"is_available"` // seats.is_available
}

// Label renders the seat as row + number, e.g. "A7".
func (s Seat) Label() string {
	return s.Row + strconv.Itoa(s.Number)
}
