package model

import "time"

// Showtime statuses.
const (
	ShowtimeScheduled = "SCHEDULED"
	ShowtimeCompleted = "COMPLETED"
	ShowtimeCancelled = "CANCELLED"
)

// ValidShowtimeStatus reports whether s is a known showtime status.
func ValidShowtimeStatus(s string) bool {
	switch s {
	case ShowtimeScheduled, ShowtimeCompleted, ShowtimeCancelled:
		return true
	}
	return false
}

// Showtime is a scheduled screening of a movie on a screen (`showtimes`).
// (screen_id, show_datetime) is unique.
type Showtime struct {
	ID             uint64    `json:"showtime_id"`     // showtimes.showtime_id
	MovieID        uint64    `json:"movie_id"`        // showtimes.movie_id
	ScreenID       uint64    `json:"screen_id"`       // showtimes.screen_id
	ShowDatetime   time.Time `json:"show_datetime"`   // showtimes.show_datetime (UTC)
	BasePrice      float64   `json:"base_price"`      // showtimes.base_price
	AvailableSeats int       `json:"available_seats"` // showtimes.available_seats
	Status         string    `json:"status"`          // showtimes.status
	CreatedAt      time.Time `json:"created_at"`      // showtimes.created_at
}

// ShowtimeDetail is a showtime joined with its movie, screen and cinema.
type ShowtimeDetail struct {
	Showtime
	MovieTitle      string `json:"movie_title"`
	DurationMinutes int    `json:"duration_minutes"`
	ScreenName      string `json:"screen_name"`
	CinemaID        uint64 `json:"cinema_id"`
	CinemaName      string `json:"cinema_name"`
}

// EndsAt is the show start plus the movie duration.
func (d ShowtimeDetail) EndsAt() time.Time {
	return d.ShowDatetime.Add(time.Duration(d.DurationMinutes) * time.Minute)
}
