package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// CinemaService manages cinemas, their screens and the seats of each
// screen.
type CinemaService struct {
	uow repository.UnitOfWork
	log *zap.Logger
}

func NewCinemaService(uow repository.UnitOfWork, log *zap.Logger) *CinemaService {
	return &CinemaService{uow: uow, log: nopIfNil(log)}
}

type CinemaInput struct {
	Name        string
	Address     string
	City        string
	PhoneNumber *string
	Latitude    *float64
	Longitude   *float64
}

// CinemaPatch changes only the non-nil fields.
type CinemaPatch struct {
	Name        *string
	Address     *string
	City        *string
	PhoneNumber *string
	Latitude    *float64
	Longitude   *float64
}

// CinemaDetail is a cinema with its screens.
type CinemaDetail struct {
	model.Cinema
	Screens      []repository.ScreenSummary `json:"screens"`
	TotalScreens int                        `json:"total_screens"`
}

func validCoordinates(lat, lng *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return apperr.Validation("Latitude must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return apperr.Validation("Longitude must be between -180 and 180")
	}
	return nil
}

func (s *CinemaService) ListCinemas(ctx context.Context, f repository.CinemaFilter) ([]repository.CinemaSummary, int, error) {
	var (
		items []repository.CinemaSummary
		total int
	)
	f.City, f.Search = strings.TrimSpace(f.City), strings.TrimSpace(f.Search)
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		items, total, err = r.Cinemas.List(ctx, f)
		return err
	})
	return items, total, err
}

func (s *CinemaService) GetCinema(ctx context.Context, id uint64) (*CinemaDetail, error) {
	var out *CinemaDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		c, err := r.Cinemas.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "Cinema not found")
		}
		screens, err := r.Screens.ListByCinema(ctx, id)
		if err != nil {
			return err
		}
		out = &CinemaDetail{Cinema: *c, Screens: screens, TotalScreens: len(screens)}
		return nil
	})
	return out, err
}

func (s *CinemaService) CreateCinema(ctx context.Context, in CinemaInput) (*model.Cinema, error) {
	c := &model.Cinema{
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		PhoneNumber: clean(in.PhoneNumber),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if c.Name == "" || c.Address == "" || c.City == "" {
		return nil, apperr.Validation("Name, address and city are required")
	}
	if err := validCoordinates(c.Latitude, c.Longitude); err != nil {
		return nil, err
	}
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		return r.Cinemas.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CinemaService) UpdateCinema(ctx context.Context, id uint64, p CinemaPatch) (*model.Cinema, error) {
	var c *model.Cinema
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		if c, err = r.Cinemas.GetByID(ctx, id); err != nil {
			return notFound(err, "Cinema not found")
		}
		for _, f := range []struct {
			in   *string
			dst  *string
			name string
		}{{p.Name, &c.Name, "Name"}, {p.Address, &c.Address, "Address"}, {p.City, &c.City, "City"}} {
			if f.in == nil {
				continue
			}
			v := strings.TrimSpace(*f.in)
			if v == "" {
				return apperr.Validation("%s cannot be empty", f.name)
			}
			*f.dst = v
		}
		if p.PhoneNumber != nil {
			c.PhoneNumber = clean(p.PhoneNumber)
		}
		if p.Latitude != nil {
			c.Latitude = p.Latitude
		}
		if p.Longitude != nil {
			c.Longitude = p.Longitude
		}
		if err := validCoordinates(c.Latitude, c.Longitude); err != nil {
			return err
		}
		return notFound(r.Cinemas.Update(ctx, c), "Cinema not found")
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CinemaService) DeleteCinema(ctx context.Context, id uint64) error {
	return s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Cinemas.GetByID(ctx, id); err != nil {
			return notFound(err, "Cinema not found")
		}
		busy, err := r.Cinemas.HasShowtimes(ctx, id)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflict("Cannot delete cinema with active showtimes")
		}
		return notFound(r.Cinemas.Delete(ctx, id), "Cinema not found")
	})
}

// screenOf loads a screen and checks that it belongs to cinemaID.
func screenOf(ctx context.Context, r repository.Repos, cinemaID, screenID uint64) (*model.Screen, error) {
	if _, err := r.Cinemas.GetByID(ctx, cinemaID); err != nil {
		return nil, notFound(err, "Cinema not found")
	}
	sc, err := r.Screens.GetByID(ctx, screenID)
	if err != nil {
		return nil, notFound(err, "Screen not found")
	}
	if sc.CinemaID != cinemaID {
		return nil, apperr.NotFound("Screen not found")
	}
	return sc, nil
}

// ScreenDetail is a screen with its seats grouped by row label.
type ScreenDetail struct {
	model.Screen
	Seats map[string][]model.Seat `json:"seats"`
}

type ScreenPatch struct {
	Name       *string
	ScreenType *string
}

func normalizeScreenType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return model.ScreenStandard
	}
	return t
}

func (s *CinemaService) ListScreens(ctx context.Context, cinemaID uint64) ([]repository.ScreenSummary, error) {
	var out []repository.ScreenSummary
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Cinemas.GetByID(ctx, cinemaID); err != nil {
			return notFound(err, "Cinema not found")
		}
		var err error
		out, err = r.Screens.ListByCinema(ctx, cinemaID)
		return err
	})
	return out, err
}

func (s *CinemaService) GetScreen(ctx context.Context, cinemaID, screenID uint64) (*ScreenDetail, error) {
	var out *ScreenDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		sc, err := screenOf(ctx, r, cinemaID, screenID)
		if err != nil {
			return err
		}
		seats, err := r.Seats.ListByScreen(ctx, screenID)
		if err != nil {
			return err
		}
		out = &ScreenDetail{Screen: *sc, Seats: map[string][]model.Seat{}}
		for _, st := range seats {
			out.Seats[st.Row] = append(out.Seats[st.Row], st)
		}
		out.TotalSeats = len(seats)
		return nil
	})
	return out, err
}

func (s *CinemaService) CreateScreen(ctx context.Context, cinemaID uint64, name, screenType string) (*model.Screen, error) {
	sc := &model.Screen{CinemaID: cinemaID, Name: strings.TrimSpace(name), ScreenType: normalizeScreenType(screenType)}
	if sc.Name == "" {
		return nil, apperr.Validation("Screen name is required")
	}
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Cinemas.GetByID(ctx, cinemaID); err != nil {
			return notFound(err, "Cinema not found")
		}
		return r.Screens.Create(ctx, sc)
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *CinemaService) UpdateScreen(ctx context.Context, cinemaID, screenID uint64, p ScreenPatch) (*model.Screen, error) {
	var sc *model.Screen
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		if sc, err = screenOf(ctx, r, cinemaID, screenID); err != nil {
			return err
		}
		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				return apperr.Validation("Screen name cannot be empty")
			}
			sc.Name = name
		}
		if p.ScreenType != nil {
			sc.ScreenType = normalizeScreenType(*p.ScreenType)
		}
		return notFound(r.Screens.Update(ctx, sc), "Screen not found")
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *CinemaService) DeleteScreen(ctx context.Context, cinemaID, screenID uint64) error {
	return s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := screenOf(ctx, r, cinemaID, screenID); err != nil {
			return err
		}
		busy, err := r.Screens.HasShowtimes(ctx, screenID)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflict("Cannot delete screen with active showtimes")
		}
		return notFound(r.Screens.Delete(ctx, screenID), "Screen not found")
	})
}

// SeatSpec is one seat of an explicit seat list.
type SeatSpec struct {
	Row      string
	Number   int
	SeatType string
}

// SeatBatch describes seats to create: either an explicit list or a grid
// of Rows x 1..SeatsPerRow, all of SeatType.
type SeatBatch struct {
	Seats       []SeatSpec
	Rows        []string
	SeatsPerRow int
	SeatType    string
}

func seatType(t string) (string, error) {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return model.SeatRegular, nil
	}
	if !model.ValidSeatType(t) {
		return "", apperr.Validation("Invalid seat type %q. Must be one of REGULAR, VIP, COUPLE", t)
	}
	return t, nil
}

// expand turns the batch into seat specs. Entries without a row or number
// are dropped.
func (b SeatBatch) expand() ([]SeatSpec, error) {
	var specs []SeatSpec
	switch {
	case len(b.Seats) > 0:
		specs = b.Seats
	case len(b.Rows) > 0 && b.SeatsPerRow > 0:
		for _, row := range b.Rows {
			for n := 1; n <= b.SeatsPerRow; n++ {
				specs = append(specs, SeatSpec{Row: row, Number: n, SeatType: b.SeatType})
			}
		}
	default:
		return nil, apperr.Validation("Provide seats or rows with seats_per_row")
	}
	out := make([]SeatSpec, 0, len(specs))
	for _, sp := range specs {
		sp.Row = strings.ToUpper(strings.TrimSpace(sp.Row))
		if sp.Row == "" || sp.Number <= 0 {
			continue
		}
		t, err := seatType(sp.SeatType)
		if err != nil {
			return nil, err
		}
		sp.SeatType = t
		out = append(out, sp)
	}
	return out, nil
}

func seatKey(row string, number int) string { return fmt.Sprintf("%s#%d", row, number) }

// CreateSeats adds seats to a screen. Seats whose position already exists,
// in the screen or earlier in the same batch, are skipped.
func (s *CinemaService) CreateSeats(ctx context.Context, cinemaID, screenID uint64, b SeatBatch) ([]model.Seat, error) {
	specs, err := b.expand()
	if err != nil {
		return nil, err
	}
	created := []model.Seat{}
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := screenOf(ctx, r, cinemaID, screenID); err != nil {
			return err
		}
		existing, err := r.Seats.ListByScreen(ctx, screenID)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing)+len(specs))
		for _, st := range existing {
			taken[seatKey(st.Row, st.Number)] = true
		}
		for _, sp := range specs {
			k := seatKey(sp.Row, sp.Number)
			if taken[k] {
				continue
			}
			taken[k] = true
			seat := model.Seat{ScreenID: screenID, Row: sp.Row, Number: sp.Number, SeatType: sp.SeatType, IsAvailable: true}
			if err := r.Seats.Create(ctx, &seat); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					continue
				}
				return err
			}
			created = append(created, seat)
		}
		_, err = r.Screens.RecountSeats(ctx, screenID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CinemaService) ListSeats(ctx context.Context, cinemaID, screenID uint64) ([]model.Seat, error) {
	var out []model.Seat
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := screenOf(ctx, r, cinemaID, screenID); err != nil {
			return err
		}
		var err error
		out, err = r.Seats.ListByScreen(ctx, screenID)
		return err
	})
	return out, err
}

type SeatPatch struct {
	SeatType    *string
	IsAvailable *bool
}

func seatOf(ctx context.Context, r repository.Repos, cinemaID, screenID, seatID uint64) (*model.Seat, error) {
	if _, err := screenOf(ctx, r, cinemaID, screenID); err != nil {
		return nil, err
	}
	st, err := r.Seats.GetByID(ctx, seatID)
	if err != nil {
		return nil, notFound(err, "Seat not found")
	}
	if st.ScreenID != screenID {
		return nil, apperr.NotFound("Seat not found")
	}
	return st, nil
}

func (s *CinemaService) UpdateSeat(ctx context.Context, cinemaID, screenID, seatID uint64, p SeatPatch) (*model.Seat, error) {
	var st *model.Seat
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		if st, err = seatOf(ctx, r, cinemaID, screenID, seatID); err != nil {
			return err
		}
		if p.SeatType != nil {
			if st.SeatType, err = seatType(*p.SeatType); err != nil {
				return err
			}
		}
		if p.IsAvailable != nil {
			st.IsAvailable = *p.IsAvailable
		}
		return notFound(r.Seats.Update(ctx, st), "Seat not found")
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *CinemaService) DeleteSeat(ctx context.Context, cinemaID, screenID, seatID uint64) error {
	return s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := seatOf(ctx, r, cinemaID, screenID, seatID); err != nil {
			return err
		}
		if err := guardBookedSeats(ctx, r, screenID, []uint64{seatID}); err != nil {
			return err
		}
		if err := r.Seats.Delete(ctx, seatID); err != nil {
			return notFound(err, "Seat not found")
		}
		_, err := r.Screens.RecountSeats(ctx, screenID)
		return err
	})
}

// guardBookedSeats refuses to delete seats that live bookings still hold;
// their booking_seats rows would otherwise cascade away.
func guardBookedSeats(ctx context.Context, r repository.Repos, screenID uint64, ids []uint64) error {
	booked, err := r.Seats.HasActiveBookings(ctx, screenID, ids)
	if err != nil {
		return err
	}
	if booked {
		return apperr.Conflict("Cannot delete seats held by active bookings")
	}
	return nil
}

// BulkDeleteSeats removes the listed seats of the screen and returns how
// many were deleted. Ids of other screens are ignored. Nothing is deleted
// when any listed seat is held by an active booking.
func (s *CinemaService) BulkDeleteSeats(ctx context.Context, cinemaID, screenID uint64, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("seat_ids is required")
	}
	var n int
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := screenOf(ctx, r, cinemaID, screenID); err != nil {
			return err
		}
		if err := guardBookedSeats(ctx, r, screenID, ids); err != nil {
			return err
		}
		var err error
		if n, err = r.Seats.DeleteMany(ctx, screenID, ids); err != nil {
			return err
		}
		_, err = r.Screens.RecountSeats(ctx, screenID)
		return err
	})
	return n, err
}
