package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

func strp(s string) *string { return &s }

func TestCreateMovieWithMedia(t *testing.T) {
	f := newFixture(t)
	a, err := f.movies.CreateActor(bg(), ActorInput{Name: "Zendaya"})
	require.NoError(t, err)

	m, err := f.movies.CreateMovie(bg(), MovieInput{
		Title:           "Dune",
		DurationMinutes: 155,
		ReleaseDate:     "2021-10-22",
		Actors:          []MovieActorInput{{ActorID: a.ID, CharacterName: strp("Chani"), DisplayOrder: 1}},
		Images: []MovieImageInput{
			{ImageURL: "/uploads/images/a.png"},
			{ImageURL: "https://cdn.example.com/b.png", ImageType: "backdrop", DisplayOrder: 1},
		},
		Videos: []MovieVideoInput{{VideoURL: "/uploads/videos/t.mp4"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAge, m.AgeRating)
	assert.True(t, m.IsShowing)
	assert.Zero(t, m.Rating)
	require.Len(t, m.Actors, 1)
	assert.Equal(t, "Zendaya", m.Actors[0].ActorName)
	require.Len(t, m.Images, 2)
	assert.Equal(t, model.ImagePoster, m.Images[0].ImageType)
	assert.Equal(t, "BACKDROP", m.Images[1].ImageType)
	require.Len(t, m.Videos, 1)
	assert.Equal(t, model.VideoTrailer, m.Videos[0].VideoType)
}

func TestCreateMovieValidation(t *testing.T) {
	f := newFixture(t)
	a, err := f.movies.CreateActor(bg(), ActorInput{Name: "A"})
	require.NoError(t, err)
	bad := 11.0

	for name, in := range map[string]MovieInput{
		"no title":        {DurationMinutes: 90},
		"no duration":     {Title: "X"},
		"bad date":        {Title: "X", DurationMinutes: 90, ReleaseDate: "2021-13-01"},
		"bad rating":      {Title: "X", DurationMinutes: 90, Rating: &bad},
		"unknown actor":   {Title: "X", DurationMinutes: 90, Actors: []MovieActorInput{{ActorID: 999}}},
		"duplicate actor": {Title: "X", DurationMinutes: 90, Actors: []MovieActorInput{{ActorID: a.ID}, {ActorID: a.ID}}},
		"image no url":    {Title: "X", DurationMinutes: 90, Images: []MovieImageInput{{Caption: strp("c")}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.movies.CreateMovie(bg(), in)
			assertKind(t, err, apperr.KindValidation)
		})
	}
	items, total, err := f.movies.ListMovies(bg(), repository.MovieFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestUpdateMovieReplacesImages(t *testing.T) {
	f := newFixture(t)
	m, err := f.movies.CreateMovie(bg(), MovieInput{
		Title: "Arrival", DurationMinutes: 116,
		Images: []MovieImageInput{
			{ImageURL: "/uploads/images/old1.png"},
			{ImageURL: "/uploads/images/keep.png"},
			{ImageURL: "https://cdn.example.com/remote.png"},
		},
		Videos: []MovieVideoInput{{VideoURL: "/uploads/videos/trailer.mp4"}},
	})
	require.NoError(t, err)

	images := []MovieImageInput{{ImageURL: "/uploads/images/keep.png"}, {ImageURL: "/uploads/images/new.png", DisplayOrder: 1}}
	genre := "Sci-Fi"
	got, err := f.movies.UpdateMovie(bg(), m.ID, MoviePatch{Images: &images, Genre: &genre})
	require.NoError(t, err)

	var urls []string
	for _, im := range got.Images {
		urls = append(urls, im.ImageURL)
	}
	assert.Equal(t, []string{"/uploads/images/keep.png", "/uploads/images/new.png"}, urls)
	assert.Len(t, got.Videos, 1, "videos untouched")
	assert.Equal(t, "Sci-Fi", *got.Genre)
	assert.Equal(t, []string{"/uploads/images/old1.png"}, f.files.removed)
}

func TestUpdateMovieKeepsFilesStillInUse(t *testing.T) {
	f := newFixture(t)
	poster, trailer := "/uploads/images/poster.png", "/uploads/videos/trailer.mp4"
	m, err := f.movies.CreateMovie(bg(), MovieInput{
		Title: "Dune", DurationMinutes: 155,
		PosterURL: &poster, TrailerURL: &trailer,
		Images: []MovieImageInput{
			{ImageURL: poster},
			{ImageURL: "/uploads/images/still.png"},
			{ImageURL: "/uploads/images/gone.png"},
		},
		Videos: []MovieVideoInput{{VideoURL: trailer}},
	})
	require.NoError(t, err)

	images := []MovieImageInput{}
	videos := []MovieVideoInput{{VideoURL: "/uploads/images/still.png"}}
	_, err = f.movies.UpdateMovie(bg(), m.ID, MoviePatch{Images: &images, Videos: &videos})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/images/gone.png"}, f.files.removed)
}

func TestUpdateMovieFailureKeepsFiles(t *testing.T) {
	f := newFixture(t)
	m, err := f.movies.CreateMovie(bg(), MovieInput{
		Title: "Her", DurationMinutes: 126,
		Images: []MovieImageInput{{ImageURL: "/uploads/images/a.png"}},
	})
	require.NoError(t, err)

	images := []MovieImageInput{}
	actors := []MovieActorInput{{ActorID: 42}}
	_, err = f.movies.UpdateMovie(bg(), m.ID, MoviePatch{Images: &images, Actors: &actors})
	assertKind(t, err, apperr.KindValidation)
	assert.Empty(t, f.files.removed)

	got, err := f.movies.GetMovie(bg(), m.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
}

func TestDeleteMovieRemovesFiles(t *testing.T) {
	f := newFixture(t)
	m, err := f.movies.CreateMovie(bg(), MovieInput{
		Title: "Tenet", DurationMinutes: 150,
		Images: []MovieImageInput{{ImageURL: "/uploads/images/p.png"}},
		Videos: []MovieVideoInput{{VideoURL: "/uploads/videos/v.mp4"}, {VideoURL: "https://youtu.be/x"}},
	})
	require.NoError(t, err)

	require.NoError(t, f.movies.DeleteMovie(bg(), m.ID))
	assert.ElementsMatch(t, []string{"/uploads/images/p.png", "/uploads/videos/v.mp4"}, f.files.removed)
	_, err = f.movies.GetMovie(bg(), m.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestListMoviesShowingFirst(t *testing.T) {
	f := newFixture(t)
	off := false
	for _, in := range []MovieInput{
		{Title: "Old", DurationMinutes: 90, ReleaseDate: "2020-01-01"},
		{Title: "Archived", DurationMinutes: 90, ReleaseDate: "2024-01-01", IsShowing: &off},
		{Title: "New", DurationMinutes: 90, ReleaseDate: "2023-05-01"},
	} {
		_, err := f.movies.CreateMovie(bg(), in)
		require.NoError(t, err)
	}

	all, _, err := f.movies.ListMovies(bg(), repository.MovieFilter{})
	require.NoError(t, err)
	var titles []string
	for _, m := range all {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"New", "Old", "Archived"}, titles)

	on := true
	showing, total, err := f.movies.ListMovies(bg(), repository.MovieFilter{IsShowing: &on})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, m := range showing {
		assert.True(t, m.IsShowing)
	}
}

func TestActors(t *testing.T) {
	f := newFixture(t)
	for _, n := range []string{"Zoe", "Adam", "Amy"} {
		_, err := f.movies.CreateActor(bg(), ActorInput{Name: n})
		require.NoError(t, err)
	}
	_, err := f.movies.CreateActor(bg(), ActorInput{Name: " "})
	assertKind(t, err, apperr.KindValidation)

	list, err := f.movies.ListActors(bg(), "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adam", list[0].Name)
}
