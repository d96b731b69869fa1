package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// AccountService manages user accounts for administrators.
type AccountService struct {
	uow        repository.UnitOfWork
	bcryptCost int
	log        *zap.Logger
}

func NewAccountService(uow repository.UnitOfWork, bcryptCost int, log *zap.Logger) *AccountService {
	return &AccountService{uow: uow, bcryptCost: bcryptCost, log: nopIfNil(log)}
}

// AccountInput creates an account with an explicit role.
type AccountInput struct {
	RegisterInput
	Role     string
	IsActive *bool
}

// AccountPatch changes an account. Nil fields are left alone; an empty
// phone number or date of birth clears the column.
type AccountPatch struct {
	FullName    *string
	PhoneNumber *string
	DateOfBirth *string
	Role        *string
	IsActive    *bool
	Password    *string
}

func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "":
		return model.RoleUser, nil
	case model.RoleUser, model.RoleAdmin:
		return role, nil
	}
	return "", apperr.Validation("Role must be user or admin")
}

func (s *AccountService) List(ctx context.Context, f repository.UserFilter) ([]model.User, int, error) {
	var (
		users []model.User
		total int
	)
	if f.Role != "" {
		role, err := normalizeRole(f.Role)
		if err != nil {
			return nil, 0, err
		}
		f.Role = role
	}
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		users, total, err = r.Users.List(ctx, f)
		return err
	})
	return users, total, err
}

func (s *AccountService) Get(ctx context.Context, id uint64) (*model.User, error) {
	var u *model.User
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		u, err = r.Users.GetByID(ctx, id)
		return notFound(err, "User not found")
	})
	return u, err
}

func (s *AccountService) Create(ctx context.Context, in AccountInput) (*model.User, error) {
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	u, err := newUser(in.Email, in.Password, in.FullName, in.PhoneNumber, in.DateOfBirth, role, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	err = s.uow.Run(ctx, func(r repository.Repos) error {
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

// Update applies p to account id. actorID is the administrator making the
// change; they cannot demote or deactivate themselves.
func (s *AccountService) Update(ctx context.Context, actorID, id uint64, p AccountPatch) (*model.User, error) {
	var u *model.User
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		u, err = r.Users.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "User not found")
		}
		if p.FullName != nil {
			name := strings.TrimSpace(*p.FullName)
			if name == "" {
				return apperr.Validation("Full name cannot be empty")
			}
			u.FullName = name
		}
		if p.PhoneNumber != nil {
			u.PhoneNumber = clean(p.PhoneNumber)
		}
		if p.DateOfBirth != nil {
			if u.DateOfBirth, err = optionalDate(*p.DateOfBirth, "date_of_birth"); err != nil {
				return err
			}
		}
		if p.Role != nil {
			role, err := normalizeRole(*p.Role)
			if err != nil {
				return err
			}
			if id == actorID && role != model.RoleAdmin {
				return apperr.Validation("You cannot remove your own admin role")
			}
			u.Role = role
		}
		if p.IsActive != nil {
			if id == actorID && !*p.IsActive {
				return apperr.Validation("You cannot deactivate your own account")
			}
			u.IsActive = *p.IsActive
		}
		if p.Password != nil && *p.Password != "" {
			if len(*p.Password) < minPasswordLen {
				return apperr.Validation("Password must be at least %d characters", minPasswordLen)
			}
			if u.PasswordHash, err = utils.HashPassword(*p.Password, s.bcryptCost); err != nil {
				return err
			}
		}
		if err := r.Users.Update(ctx, u); err != nil {
			return notFound(err, "User not found")
		}
		if p.IsActive != nil && !u.IsActive {
			return r.Tokens.RevokeAllForUser(ctx, u.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) Delete(ctx context.Context, actorID, id uint64) error {
	if id == actorID {
		return apperr.Validation("You cannot delete your own account")
	}
	return s.uow.Run(ctx, func(r repository.Repos) error {
		return notFound(r.Users.Delete(ctx, id), "User not found")
	})
}

// EnsureAdmin creates an admin account for email unless one exists. An
// existing non-admin account with that email is promoted. It reports
// whether anything changed.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	changed := false
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		u, err := r.Users.GetByEmail(ctx, normalizeEmail(email))
		switch {
		case errors.Is(err, repository.ErrNotFound):
			nu, err := newUser(email, password, "Administrator", nil, "", model.RoleAdmin, s.bcryptCost)
			if err != nil {
				return err
			}
			changed = true
			return r.Users.Create(ctx, nu)
		case err != nil:
			return err
		case u.IsAdmin() && u.IsActive:
			return nil
		}
		u.Role, u.IsActive = model.RoleAdmin, true
		changed = true
		return r.Users.Update(ctx, u)
	})
	if err == nil && changed {
		s.log.Info("bootstrap admin account ready", zap.String("email", normalizeEmail(email)))
	}
	return changed, err
}
