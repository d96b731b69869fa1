package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

type accountReq struct {
	Email       string  `json:"email" validate:"required"`
	Password    string  `json:"password" validate:"required"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber *string `json:"phone_number"`
	DateOfBirth string  `json:"date_of_birth"`
	Role        string  `json:"role"`
	IsActive    *bool   `json:"is_active"`
}

type accountPatchReq struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	DateOfBirth *string `json:"date_of_birth"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

// ListAccounts supports search (email or name), role and pagination.
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	p := page(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, total, err := h.Accounts.List(ctx, repository.UserFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
		Page:   p,
	})
	if err != nil {
		return err
	}
	return paged(c, users, total, p)
}

func (h *AdminHandler) GetAccount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Get(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, u, "")
}

func (h *AdminHandler) CreateAccount(c echo.Context) error {
	var req accountReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Create(ctx, service.AccountInput{
		RegisterInput: service.RegisterInput{
			Email:       req.Email,
			Password:    req.Password,
			FullName:    req.FullName,
			PhoneNumber: req.PhoneNumber,
			DateOfBirth: req.DateOfBirth,
		},
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return created(c, u, "Account created successfully")
}

func (h *AdminHandler) UpdateAccount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req accountPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Update(ctx, middleware.UserID(c), id, service.AccountPatch{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		Role:        req.Role,
		IsActive:    req.IsActive,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return ok(c, u, "Account updated successfully")
}

func (h *AdminHandler) DeleteAccount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.Delete(ctx, middleware.UserID(c), id); err != nil {
		return err
	}
	return ok(c, nil, "Account deleted successfully")
}
