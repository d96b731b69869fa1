// Package session keeps the list of revoked access tokens. A logged out
// token is remembered by its jti until it would have expired anyway.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked access-token ids.
type Denylist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// New returns a Redis-backed denylist when rdb is non-nil and an in-process
// one otherwise.
func New(rdb *redis.Client) Denylist {
	if rdb == nil {
		return NewMemory()
	}
	return NewRedis(rdb, "revoked")
}

// Redis stores each revoked jti as a key that expires with the token.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(jti string) string { return r.prefix + ":" + jti }

func (r *Redis) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if jti == "" || ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(jti), "1", ttl).Err()
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	err := r.rdb.Get(ctx, r.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Memory is a process-local denylist. Expired entries are dropped lazily on
// writes.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]time.Time{}, now: time.Now}
}

func (m *Memory) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if !e.After(now) {
			delete(m.entries, k)
		}
	}
	if jti != "" && exp.After(now) {
		m.entries[jti] = exp
	}
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[jti]
	return ok && exp.After(m.now()), nil
}
