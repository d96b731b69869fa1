package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// envelope is the body of every API response.
type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func newPagination(total int, p repository.Page) *Pagination {
	pages := 0
	if p.PerPage > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	return &Pagination{
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}

func ok(c echo.Context, data any, msg string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: msg, Data: data})
}

func created(c echo.Context, data any, msg string) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Message: msg, Data: data})
}

func paged(c echo.Context, items any, total int, p repository.Page) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: items, Pagination: newPagination(total, p)})
}

// status maps an error kind to its HTTP status. Conflicts are reported as
// 400 like other rejected requests.
func status(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// frameworkMessage is the envelope message for errors raised by echo
// itself (routing, body limit, middleware).
func frameworkMessage(he *echo.HTTPError) string {
	switch he.Code {
	case http.StatusNotFound:
		return "Endpoint not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusRequestEntityTooLarge:
		return "Request entity too large"
	case http.StatusInternalServerError:
		return "Internal server error"
	}
	if s, ok := he.Message.(string); ok && s != "" {
		return s
	}
	return http.StatusText(he.Code)
}

// fail writes err as an error envelope. Classified errors carry their own
// message; anything else is logged and reported as a generic 500.
func fail(c echo.Context, log *zap.Logger, err error) error {
	var (
		code int
		msg  string
		he   *echo.HTTPError
	)
	switch {
	case apperr.KindOf(err) != apperr.KindInternal:
		code, msg = status(apperr.KindOf(err)), apperr.MessageOf(err)
	case errors.As(err, &he):
		code, msg = he.Code, frameworkMessage(he)
	default:
		code, msg = http.StatusInternalServerError, "Internal server error"
	}
	if code >= http.StatusInternalServerError {
		log.Error("request error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}
	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	return c.JSON(code, envelope{Success: false, Message: msg})
}

// NewErrorHandler renders every error returned by a handler or middleware
// in the API envelope.
func NewErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if werr := fail(c, log, err); werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
