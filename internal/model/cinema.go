package model

import "time"

// Cinema represents a movie theatre venue. A cinema contains screens.
// This struct corresponds to a row in the `cinemas` table.
type Cinema struct {
	ID          uint64    `json:"cinema_id"`    // cinemas.cinema_id
	Name        string    `json:"name"`         // cinemas.name
	Address     string    `json:"address"`      // cinemas.address
	City        string    `json:"city"`         // cinemas.city
	PhoneNumber *string   `json:"phone_number"` // cinemas.phone_number
	Latitude    *float64  `json:"latitude"`     // cinemas.latitude
	Longitude   *float64  `json:"longitude"`    // cinemas.longitude
	CreatedAt   time.Time `json:"created_at"`   // cinemas.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // cinemas.updated_at
}

// Screen types accepted by the admin API.
const (
	ScreenStandard = "STANDARD"
)

// Screen is an auditorium inside a cinema (`screens` table). TotalSeats is
// derived from the seats rows and recomputed after every seat change.
type Screen struct {
	ID         uint64    `json:"screen_id"`   // screens.screen_id
	CinemaID   uint64    `json:"cinema_id"`   // screens.cinema_id
	Name       string    `json:"screen_name"` // screens.screen_name
	TotalSeats int       `json:"total_seats"` // screens.total_seats
	ScreenType string    `json:"screen_type"` // screens.screen_type
	CreatedAt  time.Time `json:"created_at"`  // screens.created_at
}
