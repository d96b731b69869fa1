package model

import "time"

// Media defaults.
const (
	ImagePoster  = "POSTER"
	VideoTrailer = "TRAILER"
	DefaultAge   = "P"
)

// Movie is a row of the `movies` table.
type Movie struct {
	ID              uint64    `json:"movie_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	ReleaseDate     *Date     `json:"release_date"`
	Director        *string   `json:"director"`
	Cast            *string   `json:"cast"`
	Genre           *string   `json:"genre"`
	Language        *string   `json:"language"`
	PosterURL       *string   `json:"poster_url"`
	TrailerURL      *string   `json:"trailer_url"`
	Rating          float64   `json:"rating"`
	AgeRating       string    `json:"age_rating"`
	IsShowing       bool      `json:"is_showing"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Actor is a person that can be cast in movies (`actors` table).
type Actor struct {
	ID          uint64    `json:"actor_id"`
	Name        string    `json:"name"`
	Bio         *string   `json:"bio"`
	PhotoURL    *string   `json:"photo_url"`
	DateOfBirth *Date     `json:"date_of_birth"`
	Nationality *string   `json:"nationality"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MovieActor links an actor to a movie (`movie_actors`, unique per pair).
// ActorName and ActorPhotoURL are filled by reads that join actors.
type MovieActor struct {
	ID            uint64  `json:"movie_actor_id"`
	MovieID       uint64  `json:"movie_id"`
	ActorID       uint64  `json:"actor_id"`
	RoleName      *string `json:"role_name"`
	CharacterName *string `json:"character_name"`
	DisplayOrder  int     `json:"display_order"`
	ActorName     string  `json:"actor_name,omitempty"`
	ActorPhotoURL *string `json:"actor_photo_url,omitempty"`
}

// MovieImage is a row of `movie_images`.
type MovieImage struct {
	ID           uint64    `json:"image_id"`
	MovieID      uint64    `json:"movie_id"`
	ImageURL     string    `json:"image_url"`
	ImageType    string    `json:"image_type"`
	Caption      *string   `json:"caption"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// MovieVideo is a row of `movie_videos`.
type MovieVideo struct {
	ID              uint64    `json:"video_id"`
	MovieID         uint64    `json:"movie_id"`
	VideoURL        string    `json:"video_url"`
	VideoType       string    `json:"video_type"`
	Title           *string   `json:"title"`
	DurationSeconds *int      `json:"duration_seconds"`
	DisplayOrder    int       `json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
}

// Review is a user's rating of a movie; one per (user, movie).
type Review struct {
	ID           uint64    `json:"review_id"`
	UserID       uint64    `json:"user_id"`
	MovieID      uint64    `json:"movie_id"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
}
