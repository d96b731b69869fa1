// Package service holds the business rules of the booking system. Every
// exported operation runs inside exactly one repository.UnitOfWork call and
// reports failures as *apperr.Error values that handlers turn into HTTP
// responses.
package service

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func utcNow() time.Time { return time.Now().UTC() }

// notFound turns repository.ErrNotFound into a NotFound error carrying msg
// and passes any other error through.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return err
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validEmail(s string) bool { return emailRe.MatchString(s) }

// clean trims p and maps an empty result to nil.
func clean(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

// optionalDate parses a YYYY-MM-DD value; the empty string means no date.
func optionalDate(s, field string) (*model.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, apperr.Validation("Invalid %s format. Use YYYY-MM-DD", field)
	}
	return &d, nil
}

func cents(f float64) float64 { return math.Round(f*100) / 100 }
