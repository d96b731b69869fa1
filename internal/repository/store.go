package repository

import (
	"context"
	"database/sql"
)

// Store is the MySQL unit of work. Each Run call owns one transaction.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool for callers outside a unit of work.
func (s *Store) DB() *sql.DB {
	return s.db
}

// PingContext verifies the database is reachable.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Run begins a transaction, hands fn repositories bound to it and commits
// when fn succeeds. Any error or panic rolls the transaction back.
func (s *Store) Run(ctx context.Context, fn func(r Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(NewRepos(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

var (
	_ UnitOfWork          = (*Store)(nil)
	_ UserRepository      = (*UserRepo)(nil)
	_ TokenRepository     = (*TokenRepo)(nil)
	_ CinemaRepository    = (*CinemaRepo)(nil)
	_ ScreenRepository    = (*ScreenRepo)(nil)
	_ SeatRepository      = (*SeatRepo)(nil)
	_ MovieRepository     = (*MovieRepo)(nil)
	_ ActorRepository     = (*ActorRepo)(nil)
	_ ShowtimeRepository  = (*ShowtimeRepo)(nil)
	_ PromotionRepository = (*PromotionRepo)(nil)
	_ BookingRepository   = (*BookingRepo)(nil)
	_ PaymentRepository   = (*PaymentRepo)(nil)
	_ ReviewRepository    = (*ReviewRepo)(nil)
)
