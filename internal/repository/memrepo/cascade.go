package memrepo

// The helpers below mirror the ON DELETE CASCADE foreign keys of the MySQL
// schema.

func (s *state) deleteBooking(id uint64) {
	delete(s.bookings, id)
	for k, bs := range s.bookingSeats {
		if bs.BookingID == id {
			delete(s.bookingSeats, k)
		}
	}
	for k, bp := range s.bookingPromos {
		if bp.BookingID == id {
			delete(s.bookingPromos, k)
		}
	}
	for k, p := range s.payments {
		if p.BookingID == id {
			delete(s.payments, k)
		}
	}
}

func (s *state) deleteShowtime(id uint64) {
	delete(s.showtimes, id)
	for k, b := range s.bookings {
		if b.ShowtimeID == id {
			s.deleteBooking(k)
		}
	}
}

func (s *state) deleteSeat(id uint64) {
	delete(s.seats, id)
	for k, bs := range s.bookingSeats {
		if bs.SeatID == id {
			delete(s.bookingSeats, k)
		}
	}
}

func (s *state) deleteScreen(id uint64) {
	delete(s.screens, id)
	for k, seat := range s.seats {
		if seat.ScreenID == id {
			s.deleteSeat(k)
		}
	}
	for k, st := range s.showtimes {
		if st.ScreenID == id {
			s.deleteShowtime(k)
		}
	}
}

func (s *state) deleteCinema(id uint64) {
	delete(s.cinemas, id)
	for k, sc := range s.screens {
		if sc.CinemaID == id {
			s.deleteScreen(k)
		}
	}
}

func (s *state) deleteMovie(id uint64) {
	delete(s.movies, id)
	for k, ma := range s.movieActors {
		if ma.MovieID == id {
			delete(s.movieActors, k)
		}
	}
	for k, im := range s.images {
		if im.MovieID == id {
			delete(s.images, k)
		}
	}
	for k, v := range s.videos {
		if v.MovieID == id {
			delete(s.videos, k)
		}
	}
	for k, st := range s.showtimes {
		if st.MovieID == id {
			s.deleteShowtime(k)
		}
	}
	for k, rv := range s.reviews {
		if rv.MovieID == id {
			delete(s.reviews, k)
		}
	}
}
