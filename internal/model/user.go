package model

import "time"

// Roles stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application account as stored in the `users` table.
// PasswordHash never leaves the server.
type User struct {
	ID           uint64    `json:"user_id"`       // users.user_id
	Email        string    `json:"email"`         // users.email (unique, lower-case)
	PasswordHash string    `json:"-"`             // users.password_hash (bcrypt)
	FullName     string    `json:"full_name"`     // users.full_name
	PhoneNumber  *string   `json:"phone_number"`  // users.phone_number
	DateOfBirth  *Date     `json:"date_of_birth"` // users.date_of_birth
	Role         string    `json:"role"`          // users.role: user | admin
	IsActive     bool      `json:"is_active"`     // users.is_active
	CreatedAt    time.Time `json:"created_at"`    // users.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // users.updated_at
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
