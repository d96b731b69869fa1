package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestNewPagination(t *testing.T) {
	p := newPagination(25, repository.Page{Page: 2, PerPage: 10})
	assert.Equal(t, &Pagination{Total: 25, Page: 2, PerPage: 10, TotalPages: 3, HasNext: true, HasPrev: true}, p)

	p = newPagination(0, repository.Page{Page: 1, PerPage: 10})
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewErrorHandler(zap.New(core))

	cases := []struct {
		err  error
		code int
		body string
	}{
		{apperr.Validation("Invalid rating"), 400, `{"success":false,"message":"Invalid rating"}`},
		{apperr.Conflict("Email already registered"), 400, `{"success":false,"message":"Email already registered"}`},
		{apperr.Unauthorized("no"), 401, `{"success":false,"message":"no"}`},
		{apperr.Forbidden("Admin access required"), 403, `{"success":false,"message":"Admin access required"}`},
		{fmt.Errorf("load: %w", apperr.NotFound("Movie not found")), 404, `{"success":false,"message":"Movie not found"}`},
		{echo.ErrNotFound, 404, `{"success":false,"message":"Endpoint not found"}`},
		{echo.ErrMethodNotAllowed, 405, `{"success":false,"message":"Method not allowed"}`},
		{echo.ErrStatusRequestEntityTooLarge, 413, `{"success":false,"message":"Request entity too large"}`},
		{errors.New("dial tcp: refused"), 500, `{"success":false,"message":"Internal server error"}`},
	}
	for _, tc := range cases {
		c, rec := newContext(http.MethodGet, "/api/x", "")
		h(tc.err, c)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request error", logs.All()[0].Message)
}

func TestErrorHandlerHead(t *testing.T) {
	c, rec := newContext(http.MethodHead, "/uploads/x.png", "")
	NewErrorHandler(nil)(apperr.NotFound("File not found"), c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBindValidation(t *testing.T) {
	type req struct {
		Email  string `json:"email" validate:"required,email"`
		Rating int    `json:"rating" validate:"gte=1,lte=5"`
		Name   string `json:"name" validate:"omitempty,min=3"`
		Kind   string `json:"kind" validate:"omitempty,oneof=images videos"`
	}
	cases := []struct{ body, want string }{
		{`{}`, "email is required"},
		{`{"email":"nope","rating":3}`, "email must be a valid email"},
		{`{"email":"a@b.co","rating":9}`, "rating must be at most 5"},
		{`{"email":"a@b.co","rating":1,"name":"ab"}`, "name must be at least 3 characters"},
		{`{"email":"a@b.co","rating":1,"kind":"doc"}`, "kind must be one of images, videos"},
		{`{"email":`, "Invalid request body"},
	}
	for _, tc := range cases {
		c, _ := newContext(http.MethodPost, "/", tc.body)
		var r req
		err := bind(c, &r)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), tc.body)
		assert.Equal(t, tc.want, apperr.MessageOf(err), tc.body)
	}

	c, _ := newContext(http.MethodPost, "/", `{"email":"a@b.co","rating":4}`)
	var r req
	require.NoError(t, bind(c, &r))
	assert.Equal(t, 4, r.Rating)
}

func TestQueryHelpers(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/?page=3&per_page=500&movie_id=7&is_showing=TRUE", "")
	assert.Equal(t, repository.Page{Page: 3, PerPage: maxPerPage}, page(c))

	id, err := queryID(c, "movie_id")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	id, err = queryID(c, "cinema_id")
	require.NoError(t, err)
	assert.Zero(t, id)

	b, err := queryBool(c, "is_showing")
	require.NoError(t, err)
	assert.True(t, *b)

	c, _ = newContext(http.MethodGet, "/?page=-1&per_page=x&movie_id=abc&is_showing=maybe", "")
	assert.Equal(t, repository.Page{Page: 1, PerPage: defaultPerPage}, page(c))
	_, err = queryID(c, "movie_id")
	assert.Equal(t, "Invalid movie_id", apperr.MessageOf(err))
	_, err = queryBool(c, "is_showing")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPathID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("0")
	_, err := pathID(c, "id")
	assert.Equal(t, "Invalid id", apperr.MessageOf(err))

	c.SetParamValues("42")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	for want, db := range map[string]Pinger{
		"connected":    pinger{},
		"disconnected": pinger{err: errors.New("down")},
	} {
		c, rec := newContext(http.MethodGet, "/api/health", "")
		require.NoError(t, NewHealthHandler(db, "1.0.0").Health(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Server is running","database":"`+want+`"}`, rec.Body.String())
	}
}
