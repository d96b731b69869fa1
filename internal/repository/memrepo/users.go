package memrepo

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type userRepo struct{ t *txn }

func (r userRepo) Create(_ context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, o := range r.t.st.users {
		if o.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := r.t.now()
	u.ID = r.t.st.next("users")
	u.CreatedAt, u.UpdatedAt = now, now
	r.t.st.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := r.t.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.t.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int, error) {
	search := strings.TrimSpace(f.Search)
	out := []model.User{}
	for _, u := range sortedValues(r.t.st.users) {
		if search != "" && !contains(u.Email, search) && !contains(u.FullName, search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	slices.SortStableFunc(out, func(a, b model.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
	return page(out, f.Page), len(out), nil
}

func (r userRepo) Update(_ context.Context, u *model.User) error {
	old, ok := r.t.st.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email, u.CreatedAt = old.Email, old.CreatedAt
	u.UpdatedAt = r.t.now()
	r.t.st.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.t.st.users[id]; !ok {
		return repository.ErrNotFound
	}
	st := r.t.st
	delete(st.users, id)
	for h, tok := range st.tokens {
		if tok.userID == id {
			delete(st.tokens, h)
		}
	}
	for bid, b := range st.bookings {
		if b.UserID == id {
			st.deleteBooking(bid)
		}
	}
	for rid, rv := range st.reviews {
		if rv.UserID == id {
			delete(st.reviews, rid)
		}
	}
	return nil
}

func (r userRepo) Count(context.Context) (int, error) { return len(r.t.st.users), nil }

type tokenRepo struct{ t *txn }

func (r tokenRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	if _, ok := r.t.st.tokens[tokenHash]; ok {
		return repository.ErrDuplicate
	}
	r.t.st.tokens[tokenHash] = tokenRow{userID: userID, expiresAt: exp}
	return nil
}

func (r tokenRepo) ValidateRefresh(_ context.Context, tokenHash string, now time.Time) (uint64, error) {
	tok, ok := r.t.st.tokens[tokenHash]
	if !ok || tok.revoked || now.After(tok.expiresAt) {
		return 0, repository.ErrNotFound
	}
	return tok.userID, nil
}

func (r tokenRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	if tok, ok := r.t.st.tokens[tokenHash]; ok {
		tok.revoked = true
		r.t.st.tokens[tokenHash] = tok
	}
	return nil
}

func (r tokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, tok := range r.t.st.tokens {
		if tok.userID == userID {
			tok.revoked = true
			r.t.st.tokens[h] = tok
		}
	}
	return nil
}

// cmpDesc orders ids newest first.
func cmpDesc(a, b uint64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
