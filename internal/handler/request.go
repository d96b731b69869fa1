package handler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// dbTimeout bounds the database work of one request.
const dbTimeout = 5 * time.Second

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// validate is shared by all handlers; field errors are reported under
// their json names.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// bind decodes the request into dst and checks its validate tags.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError turns the first field error into a readable message.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return apperr.Validation("Invalid request body")
	}
	fe := fields[0]
	name := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = name + " is required"
	case "email":
		msg = name + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be at least %s", name, fe.Param())
		}
	case "max":
		msg = fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "lte":
		msg = fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = name + " is invalid"
	}
	return apperr.Validation("%s", msg)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s", name)
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter.
func queryID(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s", name)
	}
	return id, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return nil, apperr.Validation("Invalid %s", name)
	}
	return &b, nil
}

// page reads page and per_page. Missing or malformed values fall back to
// the defaults; per_page is capped.
func page(c echo.Context) repository.Page {
	p := repository.Page{Page: 1, PerPage: defaultPerPage}
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && n > 0 {
		p.PerPage = min(n, maxPerPage)
	}
	return p
}
