// Package repository contains data access logic separated from HTTP
// handlers. Each entity has an interface consumed by the services and a
// MySQL implementation built on database/sql. A Repos value binds every
// repository to one transaction; UnitOfWork hands such a value to a single
// service operation.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Page selects a window of a listing. A zero PerPage means no limit.
type Page struct {
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// UserFilter narrows account listings.
type UserFilter struct {
	Search string // matches email or full_name
	Role   string
	Page
}

// CinemaFilter narrows cinema listings.
type CinemaFilter struct {
	City   string
	Search string // matches name
	Page
}

// MovieFilter narrows movie listings.
type MovieFilter struct {
	Search    string // matches title or director
	IsShowing *bool
	Page
}

// ShowtimeFilter narrows showtime listings. Zero values are ignored.
type ShowtimeFilter struct {
	MovieID   uint64
	CinemaID  uint64
	ScreenID  uint64
	Date      *model.Date
	Status    string
	From      *time.Time // only shows starting at or after From
	Ascending bool
	Page
}

// BookingFilter narrows booking listings. Zero values are ignored.
type BookingFilter struct {
	UserID     uint64
	ShowtimeID uint64
	Status     string
	Page
}

// CinemaSummary is a cinema with the number of its screens.
type CinemaSummary struct {
	model.Cinema
	ScreenCount int `json:"screen_count"`
}

// ScreenSummary is a screen with the number of its seat rows.
type ScreenSummary struct {
	model.Screen
	SeatCount int `json:"seat_count"`
}

// MovieSummary is a movie with counts of its related rows. PosterURL is
// resolved from the movie images when any exist.
type MovieSummary struct {
	model.Movie
	ActorCount  int `json:"actor_count"`
	ImageCount  int `json:"image_count"`
	VideoCount  int `json:"video_count"`
	ReviewCount int `json:"review_count"`
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f UserFilter) ([]model.User, int, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
}

type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type CinemaRepository interface {
	Create(ctx context.Context, c *model.Cinema) error
	GetByID(ctx context.Context, id uint64) (*model.Cinema, error)
	List(ctx context.Context, f CinemaFilter) ([]CinemaSummary, int, error)
	Update(ctx context.Context, c *model.Cinema) error
	Delete(ctx context.Context, id uint64) error
	HasShowtimes(ctx context.Context, id uint64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type ScreenRepository interface {
	Create(ctx context.Context, s *model.Screen) error
	GetByID(ctx context.Context, id uint64) (*model.Screen, error)
	ListByCinema(ctx context.Context, cinemaID uint64) ([]ScreenSummary, error)
	Update(ctx context.Context, s *model.Screen) error
	Delete(ctx context.Context, id uint64) error
	HasShowtimes(ctx context.Context, id uint64) (bool, error)
	// RecountSeats stores the current number of seats of the screen as its
	// total_seats and returns it.
	RecountSeats(ctx context.Context, id uint64) (int, error)
	Count(ctx context.Context) (int, error)
}

type SeatRepository interface {
	Create(ctx context.Context, s *model.Seat) error
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	ListByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]model.Seat, error)
	Update(ctx context.Context, s *model.Seat) error
	Delete(ctx context.Context, id uint64) error
	// DeleteMany removes the listed seats that belong to screenID and
	// returns how many were removed.
	DeleteMany(ctx context.Context, screenID uint64, ids []uint64) (int, error)
	// HasActiveBookings reports whether any listed seat of screenID is held
	// by a booking that is not cancelled.
	HasActiveBookings(ctx context.Context, screenID uint64, ids []uint64) (bool, error)
}

type MovieRepository interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context, f MovieFilter) ([]MovieSummary, int, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
	HasBookings(ctx context.Context, id uint64) (bool, error)

	Actors(ctx context.Context, movieID uint64) ([]model.MovieActor, error)
	ReplaceActors(ctx context.Context, movieID uint64, actors []model.MovieActor) error
	Images(ctx context.Context, movieID uint64) ([]model.MovieImage, error)
	ReplaceImages(ctx context.Context, movieID uint64, images []model.MovieImage) error
	Videos(ctx context.Context, movieID uint64) ([]model.MovieVideo, error)
	ReplaceVideos(ctx context.Context, movieID uint64, videos []model.MovieVideo) error
}

type ActorRepository interface {
	Create(ctx context.Context, a *model.Actor) error
	GetByID(ctx context.Context, id uint64) (*model.Actor, error)
	List(ctx context.Context, search string) ([]model.Actor, error)
}

type ShowtimeRepository interface {
	Create(ctx context.Context, s *model.Showtime) error
	GetByID(ctx context.Context, id uint64) (*model.Showtime, error)
	// GetForUpdate reads the showtime and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint64) (*model.Showtime, error)
	GetDetail(ctx context.Context, id uint64) (*model.ShowtimeDetail, error)
	List(ctx context.Context, f ShowtimeFilter) ([]model.ShowtimeDetail, int, error)
	// ExistsAt reports whether a showtime other than excludeID starts on the
	// screen at exactly the given instant.
	ExistsAt(ctx context.Context, screenID uint64, at time.Time, excludeID uint64) (bool, error)
	// StartingBetween lists non-cancelled showtimes of the screen whose
	// start lies in [from, to].
	StartingBetween(ctx context.Context, screenID uint64, from, to time.Time) ([]model.Showtime, error)
	Update(ctx context.Context, s *model.Showtime) error
	Delete(ctx context.Context, id uint64) error
	HasBookings(ctx context.Context, id uint64) (bool, error)
	// AdjustAvailable adds delta to available_seats; it returns ErrConflict
	// when the result would drop below zero.
	AdjustAvailable(ctx context.Context, id uint64, delta int) error
	// CompletePast flips SCHEDULED showtimes that started before now to
	// COMPLETED and returns how many changed.
	CompletePast(ctx context.Context, now time.Time) (int, error)
}

type PromotionRepository interface {
	Create(ctx context.Context, p *model.Promotion) error
	GetByID(ctx context.Context, id uint64) (*model.Promotion, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*model.Promotion, error)
	List(ctx context.Context, active *bool) ([]model.Promotion, error)
	Update(ctx context.Context, p *model.Promotion) error
	Delete(ctx context.Context, id uint64) error
	// Consume increments used_count unless the usage limit is reached, in
	// which case it returns ErrConflict.
	Consume(ctx context.Context, id uint64) error
	Release(ctx context.Context, id uint64) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]model.Booking, int, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	AddSeat(ctx context.Context, s *model.BookingSeat) error
	Seats(ctx context.Context, bookingID uint64) ([]model.BookingSeat, error)
	AddPromotion(ctx context.Context, p *model.BookingPromotion) error
	Promotions(ctx context.Context, bookingID uint64) ([]model.BookingPromotion, error)
	// BookedSeatIDs lists seats held by non-cancelled bookings of the
	// showtime.
	BookedSeatIDs(ctx context.Context, showtimeID uint64) ([]uint64, error)
	Count(ctx context.Context) (int, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error)
	// Revenue sums COMPLETED payments made in [from, to), skipping those of
	// cancelled bookings. Zero bounds are open.
	Revenue(ctx context.Context, from, to time.Time) (float64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error)
}

// Repos is the set of repositories bound to one unit of work.
type Repos struct {
	Users      UserRepository
	Tokens     TokenRepository
	Cinemas    CinemaRepository
	Screens    ScreenRepository
	Seats      SeatRepository
	Movies     MovieRepository
	Actors     ActorRepository
	Showtimes  ShowtimeRepository
	Promotions PromotionRepository
	Bookings   BookingRepository
	Payments   PaymentRepository
	Reviews    ReviewRepository
}

// UnitOfWork runs fn with repositories sharing one transaction. The work is
// committed when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// NewRepos binds MySQL repositories to db, which may be a transaction.
func NewRepos(db DBTX) Repos {
	return Repos{
		Users:      NewUserRepo(db),
		Tokens:     NewTokenRepo(db),
		Cinemas:    NewCinemaRepo(db),
		Screens:    NewScreenRepo(db),
		Seats:      NewSeatRepo(db),
		Movies:     NewMovieRepo(db),
		Actors:     NewActorRepo(db),
		Showtimes:  NewShowtimeRepo(db),
		Promotions: NewPromotionRepo(db),
		Bookings:   NewBookingRepo(db),
		Payments:   NewPaymentRepo(db),
		Reviews:    NewReviewRepo(db),
	}
}
