package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

type movieActorReq struct {
	ActorID       uint64  `json:"actor_id" validate:"required"`
	RoleName      *string `json:"role_name"`
	CharacterName *string `json:"character_name"`
	DisplayOrder  int     `json:"display_order"`
}

type movieImageReq struct {
	ImageURL     string  `json:"image_url" validate:"required"`
	ImageType    string  `json:"image_type"`
	Caption      *string `json:"caption"`
	DisplayOrder int     `json:"display_order"`
}

type movieVideoReq struct {
	VideoURL        string  `json:"video_url" validate:"required"`
	VideoType       string  `json:"video_type"`
	Title           *string `json:"title"`
	DurationSeconds *int    `json:"duration_seconds"`
	DisplayOrder    int     `json:"display_order"`
}

type movieReq struct {
	Title           string          `json:"title" validate:"required"`
	Description     *string         `json:"description"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gt=0"`
	ReleaseDate     string          `json:"release_date"`
	Director        *string         `json:"director"`
	Cast            *string         `json:"cast"`
	Genre           *string         `json:"genre"`
	Language        *string         `json:"language"`
	PosterURL       *string         `json:"poster_url"`
	TrailerURL      *string         `json:"trailer_url"`
	Rating          *float64        `json:"rating"`
	AgeRating       string          `json:"age_rating"`
	IsShowing       *bool           `json:"is_showing"`
	Actors          []movieActorReq `json:"actors" validate:"dive"`
	Images          []movieImageReq `json:"images" validate:"dive"`
	Videos          []movieVideoReq `json:"videos" validate:"dive"`
}

// moviePatchReq distinguishes an absent collection (nil) from an empty
// one, which clears it.
type moviePatchReq struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	DurationMinutes *int             `json:"duration_minutes"`
	ReleaseDate     *string          `json:"release_date"`
	Director        *string          `json:"director"`
	Cast            *string          `json:"cast"`
	Genre           *string          `json:"genre"`
	Language        *string          `json:"language"`
	PosterURL       *string          `json:"poster_url"`
	TrailerURL      *string          `json:"trailer_url"`
	Rating          *float64         `json:"rating"`
	AgeRating       *string          `json:"age_rating"`
	IsShowing       *bool            `json:"is_showing"`
	Actors          *[]movieActorReq `json:"actors" validate:"omitnil,dive"`
	Images          *[]movieImageReq `json:"images" validate:"omitnil,dive"`
	Videos          *[]movieVideoReq `json:"videos" validate:"omitnil,dive"`
}

type actorReq struct {
	Name        string  `json:"name" validate:"required"`
	Bio         *string `json:"bio"`
	PhotoURL    *string `json:"photo_url"`
	DateOfBirth string  `json:"date_of_birth"`
	Nationality *string `json:"nationality"`
}

func actorInputs(in []movieActorReq) []service.MovieActorInput {
	out := make([]service.MovieActorInput, 0, len(in))
	for _, a := range in {
		out = append(out, service.MovieActorInput(a))
	}
	return out
}

func imageInputs(in []movieImageReq) []service.MovieImageInput {
	out := make([]service.MovieImageInput, 0, len(in))
	for _, im := range in {
		out = append(out, service.MovieImageInput(im))
	}
	return out
}

func videoInputs(in []movieVideoReq) []service.MovieVideoInput {
	out := make([]service.MovieVideoInput, 0, len(in))
	for _, v := range in {
		out = append(out, service.MovieVideoInput(v))
	}
	return out
}

// ListMovies supports search, is_showing and pagination.
func (h *AdminHandler) ListMovies(c echo.Context) error {
	showing, err := queryBool(c, "is_showing")
	if err != nil {
		return err
	}
	p := page(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Movies.ListMovies(ctx, repository.MovieFilter{
		Search:    c.QueryParam("search"),
		IsShowing: showing,
		Page:      p,
	})
	if err != nil {
		return err
	}
	return paged(c, items, total, p)
}

func (h *AdminHandler) GetMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.GetMovie(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, m, "")
}

func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req movieReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.CreateMovie(ctx, service.MovieInput{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		ReleaseDate:     req.ReleaseDate,
		Director:        req.Director,
		Cast:            req.Cast,
		Genre:           req.Genre,
		Language:        req.Language,
		PosterURL:       req.PosterURL,
		TrailerURL:      req.TrailerURL,
		Rating:          req.Rating,
		AgeRating:       req.AgeRating,
		IsShowing:       req.IsShowing,
		Actors:          actorInputs(req.Actors),
		Images:          imageInputs(req.Images),
		Videos:          videoInputs(req.Videos),
	})
	if err != nil {
		return err
	}
	return created(c, m, "Movie created successfully")
}

// UpdateMovie replaces each media collection present in the body; files
// of dropped uploads are removed once the update is stored.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req moviePatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p := service.MoviePatch{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		ReleaseDate:     req.ReleaseDate,
		Director:        req.Director,
		Cast:            req.Cast,
		Genre:           req.Genre,
		Language:        req.Language,
		PosterURL:       req.PosterURL,
		TrailerURL:      req.TrailerURL,
		Rating:          req.Rating,
		AgeRating:       req.AgeRating,
		IsShowing:       req.IsShowing,
	}
	if req.Actors != nil {
		a := actorInputs(*req.Actors)
		p.Actors = &a
	}
	if req.Images != nil {
		im := imageInputs(*req.Images)
		p.Images = &im
	}
	if req.Videos != nil {
		v := videoInputs(*req.Videos)
		p.Videos = &v
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.UpdateMovie(ctx, id, p)
	if err != nil {
		return err
	}
	return ok(c, m, "Movie updated successfully")
}

func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.DeleteMovie(ctx, id); err != nil {
		return err
	}
	return ok(c, nil, "Movie deleted successfully")
}

func (h *AdminHandler) ListActors(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	actors, err := h.Movies.ListActors(ctx, c.QueryParam("search"))
	if err != nil {
		return err
	}
	return ok(c, actors, "")
}

func (h *AdminHandler) CreateActor(c echo.Context) error {
	var req actorReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Movies.CreateActor(ctx, service.ActorInput(req))
	if err != nil {
		return err
	}
	return created(c, a, "Actor created successfully")
}
