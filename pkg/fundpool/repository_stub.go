package fundpool

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// StubRepository mirrors the conditional-update semantics of the real
// repository in memory. Safe for concurrent use so service tests can
// exercise parallel deltas.
type StubRepository struct {
	mu        sync.Mutex
	balance   int64
	updatedAt *time.Time
	updatedBy *Updater
	users     map[int]Updater
}

func NewStubRepository() *StubRepository {
	return &StubRepository{users: map[int]Updater{}}
}

// SetUser registers the projection returned for an updater id.
func (s *StubRepository) SetUser(u Updater) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Id] = u
}

func (s *StubRepository) Get(ctx context.Context) (FundPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FundPool{Balance: s.balance, UpdatedAt: s.updatedAt, UpdatedBy: s.updatedBy}, nil
}

func (s *StubRepository) ApplyDelta(ctx context.Context, actorId int, delta int64, updatedAt time.Time) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance+delta < 0 {
		return 0, 0, ErrInsufficientFunds
	}
	from := s.balance
	s.balance += delta
	s.updatedAt = &updatedAt
	if u, ok := s.users[actorId]; ok {
		s.updatedBy = &u
	} else {
		s.updatedBy = &Updater{Id: actorId}
	}
	return from, s.balance, nil
}

func (s *StubRepository) WithTx(tx pgx.Tx) Repository {
	return s
}

func (s *StubRepository) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = 0
	s.updatedAt = nil
	s.updatedBy = nil
}
