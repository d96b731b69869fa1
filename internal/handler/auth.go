package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// AuthHandler serves registration, login and token endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email       string  `json:"email" validate:"required"`
	Password    string  `json:"password" validate:"required"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber *string `json:"phone_number"`
	DateOfBirth string  `json:"date_of_birth"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a user account. Tokens are obtained by logging in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		return err
	}
	return created(c, u, "Registration successful")
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, s, "Login successful")
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, s, "Token refreshed")
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.GetUserByID(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, u, "")
}

// Logout revokes the given refresh token, or every refresh token of the
// user when none is sent, and blocks the current access token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	// An empty body is fine.
	_ = c.Bind(&req)
	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Auth.Logout(ctx, middleware.UserID(c), middleware.TokenID(c), middleware.TokenExp(c), req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, nil, "Logout successful")
}
