package service

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/storage"
)

// FileRemover deletes uploaded files by their public URL.
type FileRemover interface {
	Remove(url string) error
}

// MovieService manages movies, their cast and media, and the actor
// catalogue.
type MovieService struct {
	uow   repository.UnitOfWork
	files FileRemover
	log   *zap.Logger
}

func NewMovieService(uow repository.UnitOfWork, files FileRemover, log *zap.Logger) *MovieService {
	return &MovieService{uow: uow, files: files, log: nopIfNil(log)}
}

type MovieActorInput struct {
	ActorID       uint64
	RoleName      *string
	CharacterName *string
	DisplayOrder  int
}

type MovieImageInput struct {
	ImageURL     string
	ImageType    string
	Caption      *string
	DisplayOrder int
}

type MovieVideoInput struct {
	VideoURL        string
	VideoType       string
	Title           *string
	DurationSeconds *int
	DisplayOrder    int
}

type MovieInput struct {
	Title           string
	Description     *string
	DurationMinutes int
	ReleaseDate     string
	Director        *string
	Cast            *string
	Genre           *string
	Language        *string
	PosterURL       *string
	TrailerURL      *string
	Rating          *float64
	AgeRating       string
	IsShowing       *bool
	Actors          []MovieActorInput
	Images          []MovieImageInput
	Videos          []MovieVideoInput
}

// MoviePatch updates the non-nil scalars. A non-nil collection replaces
// the stored one entirely.
type MoviePatch struct {
	Title           *string
	Description     *string
	DurationMinutes *int
	ReleaseDate     *string
	Director        *string
	Cast            *string
	Genre           *string
	Language        *string
	PosterURL       *string
	TrailerURL      *string
	Rating          *float64
	AgeRating       *string
	IsShowing       *bool
	Actors          *[]MovieActorInput
	Images          *[]MovieImageInput
	Videos          *[]MovieVideoInput
}

// MovieDetail is a movie with its cast and media.
type MovieDetail struct {
	model.Movie
	Actors []model.MovieActor `json:"actors"`
	Images []model.MovieImage `json:"images"`
	Videos []model.MovieVideo `json:"videos"`
}

type ActorInput struct {
	Name        string
	Bio         *string
	PhotoURL    *string
	DateOfBirth string
	Nationality *string
}

func validRating(r float64) error {
	if r < 0 || r > 10 {
		return apperr.Validation("Rating must be between 0 and 10")
	}
	return nil
}

func (s *MovieService) ListMovies(ctx context.Context, f repository.MovieFilter) ([]repository.MovieSummary, int, error) {
	var (
		items []repository.MovieSummary
		total int
	)
	f.Search = strings.TrimSpace(f.Search)
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		items, total, err = r.Movies.List(ctx, f)
		return err
	})
	return items, total, err
}

func loadMovie(ctx context.Context, r repository.Repos, id uint64) (*MovieDetail, error) {
	m, err := r.Movies.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Movie not found")
	}
	d := &MovieDetail{Movie: *m}
	if d.Actors, err = r.Movies.Actors(ctx, id); err != nil {
		return nil, err
	}
	if d.Images, err = r.Movies.Images(ctx, id); err != nil {
		return nil, err
	}
	if d.Videos, err = r.Movies.Videos(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *MovieService) GetMovie(ctx context.Context, id uint64) (*MovieDetail, error) {
	var out *MovieDetail
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		out, err = loadMovie(ctx, r, id)
		return err
	})
	return out, err
}

func (s *MovieService) CreateMovie(ctx context.Context, in MovieInput) (*MovieDetail, error) {
	m := &model.Movie{
		Title:           strings.TrimSpace(in.Title),
		Description:     clean(in.Description),
		DurationMinutes: in.DurationMinutes,
		Director:        clean(in.Director),
		Cast:            clean(in.Cast),
		Genre:           clean(in.Genre),
		Language:        clean(in.Language),
		PosterURL:       clean(in.PosterURL),
		TrailerURL:      clean(in.TrailerURL),
		AgeRating:       strings.TrimSpace(in.AgeRating),
		IsShowing:       true,
	}
	if m.Title == "" {
		return nil, apperr.Validation("Title is required")
	}
	if m.DurationMinutes <= 0 {
		return nil, apperr.Validation("Duration must be a positive number of minutes")
	}
	var err error
	if m.ReleaseDate, err = optionalDate(in.ReleaseDate, "release_date"); err != nil {
		return nil, err
	}
	if in.Rating != nil {
		if err := validRating(*in.Rating); err != nil {
			return nil, err
		}
		m.Rating = *in.Rating
	}
	if m.AgeRating == "" {
		m.AgeRating = model.DefaultAge
	}
	if in.IsShowing != nil {
		m.IsShowing = *in.IsShowing
	}
	images, err := imageRows(in.Images)
	if err != nil {
		return nil, err
	}
	videos, err := videoRows(in.Videos)
	if err != nil {
		return nil, err
	}

	var out *MovieDetail
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		actors, err := actorRows(ctx, r, in.Actors)
		if err != nil {
			return err
		}
		if err := r.Movies.Create(ctx, m); err != nil {
			return err
		}
		if err := r.Movies.ReplaceActors(ctx, m.ID, actors); err != nil {
			return err
		}
		if err := r.Movies.ReplaceImages(ctx, m.ID, images); err != nil {
			return err
		}
		if err := r.Movies.ReplaceVideos(ctx, m.ID, videos); err != nil {
			return err
		}
		out, err = loadMovie(ctx, r, m.ID)
		return err
	})
	return out, err
}

// actorRows checks that every actor exists and appears once.
func actorRows(ctx context.Context, r repository.Repos, in []MovieActorInput) ([]model.MovieActor, error) {
	seen := make(map[uint64]bool, len(in))
	out := make([]model.MovieActor, 0, len(in))
	for _, a := range in {
		if a.ActorID == 0 {
			return nil, apperr.Validation("actor_id is required for every actor")
		}
		if seen[a.ActorID] {
			return nil, apperr.Validation("Actor %d is listed more than once", a.ActorID)
		}
		seen[a.ActorID] = true
		if _, err := r.Actors.GetByID(ctx, a.ActorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.Validation("Actor %d does not exist", a.ActorID)
			}
			return nil, err
		}
		out = append(out, model.MovieActor{
			ActorID:       a.ActorID,
			RoleName:      clean(a.RoleName),
			CharacterName: clean(a.CharacterName),
			DisplayOrder:  a.DisplayOrder,
		})
	}
	return out, nil
}

func imageRows(in []MovieImageInput) ([]model.MovieImage, error) {
	out := make([]model.MovieImage, 0, len(in))
	for _, im := range in {
		url := strings.TrimSpace(im.ImageURL)
		if url == "" {
			return nil, apperr.Validation("image_url is required for every image")
		}
		t := strings.ToUpper(strings.TrimSpace(im.ImageType))
		if t == "" {
			t = model.ImagePoster
		}
		out = append(out, model.MovieImage{ImageURL: url, ImageType: t, Caption: clean(im.Caption), DisplayOrder: im.DisplayOrder})
	}
	return out, nil
}

func videoRows(in []MovieVideoInput) ([]model.MovieVideo, error) {
	out := make([]model.MovieVideo, 0, len(in))
	for _, v := range in {
		url := strings.TrimSpace(v.VideoURL)
		if url == "" {
			return nil, apperr.Validation("video_url is required for every video")
		}
		if v.DurationSeconds != nil && *v.DurationSeconds < 0 {
			return nil, apperr.Validation("duration_seconds cannot be negative")
		}
		t := strings.ToUpper(strings.TrimSpace(v.VideoType))
		if t == "" {
			t = model.VideoTrailer
		}
		out = append(out, model.MovieVideo{
			VideoURL: url, VideoType: t, Title: clean(v.Title),
			DurationSeconds: v.DurationSeconds, DisplayOrder: v.DisplayOrder,
		})
	}
	return out, nil
}

func (p MoviePatch) apply(m *model.Movie) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return apperr.Validation("Title cannot be empty")
		}
		m.Title = t
	}
	if p.DurationMinutes != nil {
		if *p.DurationMinutes <= 0 {
			return apperr.Validation("Duration must be a positive number of minutes")
		}
		m.DurationMinutes = *p.DurationMinutes
	}
	if p.ReleaseDate != nil {
		d, err := optionalDate(*p.ReleaseDate, "release_date")
		if err != nil {
			return err
		}
		m.ReleaseDate = d
	}
	if p.Rating != nil {
		if err := validRating(*p.Rating); err != nil {
			return err
		}
		m.Rating = *p.Rating
	}
	if p.AgeRating != nil {
		if a := strings.TrimSpace(*p.AgeRating); a != "" {
			m.AgeRating = a
		}
	}
	if p.IsShowing != nil {
		m.IsShowing = *p.IsShowing
	}
	for _, f := range []struct{ in, dst **string }{
		{&p.Description, &m.Description}, {&p.Director, &m.Director}, {&p.Cast, &m.Cast},
		{&p.Genre, &m.Genre}, {&p.Language, &m.Language}, {&p.PosterURL, &m.PosterURL},
		{&p.TrailerURL, &m.TrailerURL},
	} {
		if *f.in != nil {
			*f.dst = clean(*f.in)
		}
	}
	return nil
}

// UpdateMovie applies p. Uploaded files of images or videos dropped by a
// replacement are deleted once the change is committed, unless the movie
// still references them elsewhere.
func (s *MovieService) UpdateMovie(ctx context.Context, id uint64, p MoviePatch) (*MovieDetail, error) {
	var images []model.MovieImage
	var videos []model.MovieVideo
	var err error
	if p.Images != nil {
		if images, err = imageRows(*p.Images); err != nil {
			return nil, err
		}
	}
	if p.Videos != nil {
		if videos, err = videoRows(*p.Videos); err != nil {
			return nil, err
		}
	}

	var (
		out     *MovieDetail
		dropped []string
	)
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		cur, err := loadMovie(ctx, r, id)
		if err != nil {
			return err
		}
		m := cur.Movie
		if err := p.apply(&m); err != nil {
			return err
		}
		if err := r.Movies.Update(ctx, &m); err != nil {
			return notFound(err, "Movie not found")
		}
		if p.Actors != nil {
			actors, err := actorRows(ctx, r, *p.Actors)
			if err != nil {
				return err
			}
			if err := r.Movies.ReplaceActors(ctx, id, actors); err != nil {
				return err
			}
		}
		if p.Images != nil {
			keep := map[string]bool{}
			for _, im := range images {
				keep[im.ImageURL] = true
			}
			for _, im := range cur.Images {
				if !keep[im.ImageURL] {
					dropped = append(dropped, im.ImageURL)
				}
			}
			if err := r.Movies.ReplaceImages(ctx, id, images); err != nil {
				return err
			}
		}
		if p.Videos != nil {
			keep := map[string]bool{}
			for _, v := range videos {
				keep[v.VideoURL] = true
			}
			for _, v := range cur.Videos {
				if !keep[v.VideoURL] {
					dropped = append(dropped, v.VideoURL)
				}
			}
			if err := r.Movies.ReplaceVideos(ctx, id, videos); err != nil {
				return err
			}
		}
		out, err = loadMovie(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.removeFiles(unreferenced(dropped, out))
	return out, nil
}

// unreferenced filters urls down to those m no longer points at through
// its poster, trailer, images or videos. Duplicates are dropped.
func unreferenced(urls []string, m *MovieDetail) []string {
	inUse := map[string]bool{}
	if m.PosterURL != nil {
		inUse[*m.PosterURL] = true
	}
	if m.TrailerURL != nil {
		inUse[*m.TrailerURL] = true
	}
	for _, im := range m.Images {
		inUse[im.ImageURL] = true
	}
	for _, v := range m.Videos {
		inUse[v.VideoURL] = true
	}
	var out []string
	for _, u := range urls {
		if inUse[u] {
			continue
		}
		inUse[u] = true
		out = append(out, u)
	}
	return out
}

// DeleteMovie removes the movie with its showtimes, cast and media rows,
// then deletes its uploaded files.
func (s *MovieService) DeleteMovie(ctx context.Context, id uint64) error {
	var urls []string
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		cur, err := loadMovie(ctx, r, id)
		if err != nil {
			return err
		}
		booked, err := r.Movies.HasBookings(ctx, id)
		if err != nil {
			return err
		}
		if booked {
			return apperr.Conflict("Cannot delete movie with existing bookings")
		}
		for _, im := range cur.Images {
			urls = append(urls, im.ImageURL)
		}
		for _, v := range cur.Videos {
			urls = append(urls, v.VideoURL)
		}
		return notFound(r.Movies.Delete(ctx, id), "Movie not found")
	})
	if err != nil {
		return err
	}
	s.removeFiles(urls)
	return nil
}

// removeFiles deletes local uploads. Failures are logged only.
func (s *MovieService) removeFiles(urls []string) {
	if s.files == nil {
		return
	}
	for _, u := range urls {
		if !storage.IsLocal(u) {
			continue
		}
		err := s.files.Remove(u)
		switch {
		case err == nil:
			s.log.Info("removed upload", zap.String("url", u))
		case errors.Is(err, fs.ErrNotExist):
			s.log.Warn("upload already gone", zap.String("url", u))
		default:
			s.log.Error("remove upload", zap.String("url", u), zap.Error(err))
		}
	}
}

func (s *MovieService) ListActors(ctx context.Context, search string) ([]model.Actor, error) {
	var out []model.Actor
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		out, err = r.Actors.List(ctx, strings.TrimSpace(search))
		return err
	})
	return out, err
}

func (s *MovieService) CreateActor(ctx context.Context, in ActorInput) (*model.Actor, error) {
	a := &model.Actor{
		Name:        strings.TrimSpace(in.Name),
		Bio:         clean(in.Bio),
		PhotoURL:    clean(in.PhotoURL),
		Nationality: clean(in.Nationality),
	}
	if a.Name == "" {
		return nil, apperr.Validation("Actor name is required")
	}
	var err error
	if a.DateOfBirth, err = optionalDate(in.DateOfBirth, "date_of_birth"); err != nil {
		return nil, err
	}
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		return r.Actors.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
