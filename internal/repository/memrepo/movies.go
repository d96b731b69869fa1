package memrepo

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type movieRepo struct{ t *txn }

func (r movieRepo) Create(_ context.Context, m *model.Movie) error {
	now := r.t.now()
	m.ID = r.t.st.next("movies")
	m.CreatedAt, m.UpdatedAt = now, now
	r.t.st.movies[m.ID] = *m
	return nil
}

func (r movieRepo) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	m, ok := r.t.st.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r movieRepo) summarize(m model.Movie) repository.MovieSummary {
	ms := repository.MovieSummary{Movie: m}
	for _, ma := range r.t.st.movieActors {
		if ma.MovieID == m.ID {
			ms.ActorCount++
		}
	}
	for _, v := range r.t.st.videos {
		if v.MovieID == m.ID {
			ms.VideoCount++
		}
	}
	for _, rv := range r.t.st.reviews {
		if rv.MovieID == m.ID {
			ms.ReviewCount++
		}
	}
	images := r.images(m.ID)
	ms.ImageCount = len(images)
	if i := slices.IndexFunc(images, func(im model.MovieImage) bool { return im.ImageType == model.ImagePoster }); i >= 0 {
		ms.PosterURL = &images[i].ImageURL
	} else if len(images) > 0 {
		ms.PosterURL = &images[0].ImageURL
	}
	return ms
}

func (r movieRepo) List(_ context.Context, f repository.MovieFilter) ([]repository.MovieSummary, int, error) {
	search := strings.TrimSpace(f.Search)
	out := []repository.MovieSummary{}
	for _, m := range sortedValues(r.t.st.movies) {
		if search != "" && !contains(m.Title, search) && !contains(deref(m.Director), search) {
			continue
		}
		if f.IsShowing != nil && m.IsShowing != *f.IsShowing {
			continue
		}
		out = append(out, r.summarize(m))
	}
	slices.SortStableFunc(out, func(a, b repository.MovieSummary) int {
		if a.IsShowing != b.IsShowing {
			if a.IsShowing {
				return -1
			}
			return 1
		}
		if c := compareDateDesc(a.ReleaseDate, b.ReleaseDate); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
	return page(out, f.Page), len(out), nil
}

// compareDateDesc orders newer dates first and missing dates last.
func compareDateDesc(a, b *model.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(a.Time)
}

func (r movieRepo) Update(_ context.Context, m *model.Movie) error {
	old, ok := r.t.st.movies[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = r.t.now()
	r.t.st.movies[m.ID] = *m
	return nil
}

func (r movieRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.movies[id]; !ok {
		return repository.ErrNotFound
	}
	r.t.st.deleteMovie(id)
	return nil
}

func (r movieRepo) Count(context.Context) (int, error) { return len(r.t.st.movies), nil }

func (r movieRepo) HasBookings(_ context.Context, id uint64) (bool, error) {
	for _, b := range r.t.st.bookings {
		if st, ok := r.t.st.showtimes[b.ShowtimeID]; ok && st.MovieID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r movieRepo) Actors(_ context.Context, movieID uint64) ([]model.MovieActor, error) {
	out := []model.MovieActor{}
	for _, ma := range sortedValues(r.t.st.movieActors) {
		if ma.MovieID != movieID {
			continue
		}
		if a, ok := r.t.st.actors[ma.ActorID]; ok {
			ma.ActorName, ma.ActorPhotoURL = a.Name, a.PhotoURL
		}
		out = append(out, ma)
	}
	slices.SortStableFunc(out, func(a, b model.MovieActor) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) })
	return out, nil
}

func (r movieRepo) ReplaceActors(_ context.Context, movieID uint64, actors []model.MovieActor) error {
	st := r.t.st
	for k, ma := range st.movieActors {
		if ma.MovieID == movieID {
			delete(st.movieActors, k)
		}
	}
	seen := map[uint64]bool{}
	for i := range actors {
		a := &actors[i]
		if _, ok := st.actors[a.ActorID]; !ok {
			return repository.ErrNotFound
		}
		if seen[a.ActorID] {
			return repository.ErrDuplicate
		}
		seen[a.ActorID] = true
		a.ID = st.next("movie_actors")
		a.MovieID = movieID
		row := *a
		row.ActorName, row.ActorPhotoURL = "", nil
		st.movieActors[a.ID] = row
	}
	return nil
}

func (r movieRepo) images(movieID uint64) []model.MovieImage {
	out := []model.MovieImage{}
	for _, im := range sortedValues(r.t.st.images) {
		if im.MovieID == movieID {
			out = append(out, im)
		}
	}
	slices.SortStableFunc(out, func(a, b model.MovieImage) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) })
	return out
}

func (r movieRepo) Images(_ context.Context, movieID uint64) ([]model.MovieImage, error) {
	return r.images(movieID), nil
}

func (r movieRepo) ReplaceImages(_ context.Context, movieID uint64, images []model.MovieImage) error {
	st := r.t.st
	for k, im := range st.images {
		if im.MovieID == movieID {
			delete(st.images, k)
		}
	}
	now := r.t.now()
	for i := range images {
		im := &images[i]
		im.ID = st.next("movie_images")
		im.MovieID = movieID
		im.CreatedAt = now
		st.images[im.ID] = *im
	}
	return nil
}

func (r movieRepo) Videos(_ context.Context, movieID uint64) ([]model.MovieVideo, error) {
	out := []model.MovieVideo{}
	for _, v := range sortedValues(r.t.st.videos) {
		if v.MovieID == movieID {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, func(a, b model.MovieVideo) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) })
	return out, nil
}

func (r movieRepo) ReplaceVideos(_ context.Context, movieID uint64, videos []model.MovieVideo) error {
	st := r.t.st
	for k, v := range st.videos {
		if v.MovieID == movieID {
			delete(st.videos, k)
		}
	}
	now := r.t.now()
	for i := range videos {
		v := &videos[i]
		v.ID = st.next("movie_videos")
		v.MovieID = movieID
		v.CreatedAt = now
		st.videos[v.ID] = *v
	}
	return nil
}

type actorRepo struct{ t *txn }

func (r actorRepo) Create(_ context.Context, a *model.Actor) error {
	now := r.t.now()
	a.ID = r.t.st.next("actors")
	a.CreatedAt, a.UpdatedAt = now, now
	r.t.st.actors[a.ID] = *a
	return nil
}

func (r actorRepo) GetByID(_ context.Context, id uint64) (*model.Actor, error) {
	a, ok := r.t.st.actors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r actorRepo) List(_ context.Context, search string) ([]model.Actor, error) {
	search = strings.TrimSpace(search)
	out := []model.Actor{}
	for _, a := range sortedValues(r.t.st.actors) {
		if search == "" || contains(a.Name, search) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Actor) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}
