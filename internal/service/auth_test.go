package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	u, err := f.auth.Register(bg(), RegisterInput{
		Email: "  Alice@Example.COM ", Password: "secret1", FullName: " Alice ", DateOfBirth: "1990-05-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.FullName)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.Equal(t, "1990-05-01", u.DateOfBirth.String())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.user(t, "bob@example.com")

	_, err := f.auth.Register(bg(), RegisterInput{Email: "BOB@example.com", Password: "another", FullName: "Bob 2"})
	assertKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Email already registered", apperr.MessageOf(err))

	var n int
	require.NoError(t, f.store.Run(bg(), func(r repository.Repos) error {
		var err error
		n, err = r.Users.Count(bg())
		return err
	}))
	assert.Equal(t, 1, n)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	for name, in := range map[string]RegisterInput{
		"bad email":      {Email: "nope", Password: "secret1", FullName: "X"},
		"short password": {Email: "a@b.io", Password: "12345", FullName: "X"},
		"blank name":     {Email: "a@b.io", Password: "secret1", FullName: "  "},
		"bad birth date": {Email: "a@b.io", Password: "secret1", FullName: "X", DateOfBirth: "1990/01/01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(bg(), in)
			assertKind(t, err, apperr.KindValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "carol@example.com")

	s, err := f.auth.Login(bg(), "Carol@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.User.ID)
	assert.Equal(t, int64(3600), s.ExpiresIn)
	claims, err := utils.ParseAccessToken("test-secret", s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	_, err = f.auth.Login(bg(), "carol@example.com", "wrong-password")
	assertKind(t, err, apperr.KindUnauthorized)
	assert.Equal(t, "Invalid email or password", apperr.MessageOf(err))

	_, err = f.auth.Login(bg(), "nobody@example.com", "secret1")
	assert.Equal(t, "Invalid email or password", apperr.MessageOf(err))
}

func TestLoginLockedAccount(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "dave@example.com")
	admin := f.user(t, "root@example.com")
	inactive := false
	_, err := f.accounts.Update(bg(), admin.ID, u.ID, AccountPatch{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.auth.Login(bg(), "dave@example.com", "secret1")
	assertKind(t, err, apperr.KindUnauthorized)
	assert.Equal(t, "Account is locked", apperr.MessageOf(err))
}

func TestRefreshRotates(t *testing.T) {
	f := newFixture(t)
	f.user(t, "erin@example.com")
	s, err := f.auth.Login(bg(), "erin@example.com", "secret1")
	require.NoError(t, err)

	next, err := f.auth.Refresh(bg(), s.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, s.RefreshToken, next.RefreshToken)

	_, err = f.auth.Refresh(bg(), s.RefreshToken)
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = f.auth.Refresh(bg(), "")
	assertKind(t, err, apperr.KindValidation)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "frank@example.com")
	s, err := f.auth.Login(bg(), "frank@example.com", "secret1")
	require.NoError(t, err)
	claims, err := utils.ParseAccessToken("test-secret", s.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(bg(), u.ID, claims.JTI, time.Now().Add(time.Hour), ""))

	revoked, err := f.denylist.IsRevoked(bg(), claims.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)
	_, err = f.auth.Refresh(bg(), s.RefreshToken)
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestGetUserByID(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "gina@example.com")
	got, err := f.auth.GetUserByID(bg(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = f.auth.GetUserByID(bg(), 999)
	assertKind(t, err, apperr.KindNotFound)
}
