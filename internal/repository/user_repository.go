package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const userColumns = "user_id, email, password_hash, full_name, phone_number, date_of_birth, role, is_active, created_at, updated_at"

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ db DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *model.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber,
		&u.DateOfBirth, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// Create inserts u and fills its ID and timestamps. A taken email yields
// ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone_number, date_of_birth, role, is_active) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.FullName, u.PhoneNumber, u.DateOfBirth, u.Role, u.IsActive)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id=?", id), u)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id=? LIMIT 1", id), &u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email), &u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// List returns one page of accounts, newest first, and the total match count.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(email LIKE ? OR full_name LIKE ?)")
		args = append(args, like(s), like(s))
	}
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	cond := whereClause(where)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q, qargs := paginate("SELECT "+userColumns+" FROM users"+cond+" ORDER BY created_at DESC, user_id DESC", args, f.Page)
	rows, err := r.db.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Update writes the mutable profile columns of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash=?, full_name=?, phone_number=?, date_of_birth=?, role=?, is_active=?,
		 updated_at=CURRENT_TIMESTAMP WHERE user_id=?`,
		u.PasswordHash, u.FullName, u.PhoneNumber, u.DateOfBirth, u.Role, u.IsActive, u.ID))
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM users WHERE user_id=?", id))
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "SELECT COUNT(*) FROM users")
}
