package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// AuthConfig carries the token and hashing settings.
type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// AuthService registers users and issues and revokes tokens.
type AuthService struct {
	uow     repository.UnitOfWork
	revoked session.Denylist
	cfg     AuthConfig
	log     *zap.Logger
}

func NewAuthService(uow repository.UnitOfWork, revoked session.Denylist, cfg AuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{uow: uow, revoked: revoked, cfg: cfg, log: nopIfNil(log)}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber *string
	DateOfBirth string
}

// Session is the result of a successful login or refresh.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	User         *model.User `json:"user"`
}

const invalidCredentials = "Invalid email or password"

// newUser validates account fields shared by registration and admin
// account creation.
func newUser(email, password, fullName string, phone *string, dob string, role string, cost int) (*model.User, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	switch {
	case email == "" || password == "" || fullName == "":
		return nil, apperr.Validation("Email, password and full name are required")
	case !validEmail(email):
		return nil, apperr.Validation("Invalid email format")
	case len(password) < minPasswordLen:
		return nil, apperr.Validation("Password must be at least %d characters", minPasswordLen)
	}
	birth, err := optionalDate(dob, "date_of_birth")
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	return &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		PhoneNumber:  clean(phone),
		DateOfBirth:  birth,
		Role:         role,
		IsActive:     true,
	}, nil
}

// Register creates a user account with the user role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	u, err := newUser(in.Email, in.Password, in.FullName, in.PhoneNumber, in.DateOfBirth, model.RoleUser, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Users.GetByEmail(ctx, u.Email); err == nil {
			return apperr.Conflict("Email already registered")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := r.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("Email already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	var out *Session
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		u, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized(invalidCredentials)
		}
		if err != nil {
			return err
		}
		if !utils.VerifyPassword(u.PasswordHash, password) {
			return apperr.Unauthorized(invalidCredentials)
		}
		if !u.IsActive {
			return apperr.Unauthorized("Account is locked")
		}
		out, err = s.issue(ctx, r, u)
		return err
	})
	return out, err
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is returned.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.Validation("refresh_token is required")
	}
	hash := utils.HashRefreshRaw(raw)
	var out *Session
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		uid, err := r.Tokens.ValidateRefresh(ctx, hash, utcNow())
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized("Invalid or expired refresh token")
		}
		if err != nil {
			return err
		}
		u, err := r.Users.GetByID(ctx, uid)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized("Invalid or expired refresh token")
		}
		if err != nil {
			return err
		}
		if !u.IsActive {
			return apperr.Unauthorized("Account is locked")
		}
		if err := r.Tokens.RevokeByHash(ctx, hash); err != nil {
			return err
		}
		out, err = s.issue(ctx, r, u)
		return err
	})
	return out, err
}

func (s *AuthService) issue(ctx context.Context, r repository.Repos, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := r.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
		User:         u,
	}, nil
}

// Logout revokes the presented refresh token, or every refresh token of the
// user when none is given, and denylists the access token until it expires.
func (s *AuthService) Logout(ctx context.Context, userID uint64, jti string, exp time.Time, refresh string) error {
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		if refresh = strings.TrimSpace(refresh); refresh != "" {
			return r.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(refresh))
		}
		return r.Tokens.RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	if s.revoked != nil {
		if err := s.revoked.Revoke(ctx, jti, exp); err != nil {
			s.log.Warn("revoke access token", zap.String("jti", jti), zap.Error(err))
		}
	}
	return nil
}

// GetUserByID returns the account or a NotFound error.
func (s *AuthService) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	var u *model.User
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		u, err = r.Users.GetByID(ctx, id)
		return notFound(err, "User not found")
	})
	return u, err
}
