package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta/pkg/user"
)

// ErrAccessDenied is returned when the requester is neither the owner of the
// transaction nor an administrator.
var ErrAccessDenied = errors.New("access to transaction denied")

type Service interface {
	// Create records a new transaction. Called by the remittance and budget
	// services; transactions are read-only over HTTP.
	Create(ctx context.Context, transaction Transaction) (Transaction, error)
	GetById(ctx context.Context, id int) (Transaction, error)
	// List returns the current user's transactions. Admins may pass a
	// non-zero userId to list another user's.
	List(ctx context.Context, userId int) ([]Transaction, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, transaction Transaction) (Transaction, error) {
	transaction.Uid = uuid.NewString()
	return s.repo.Store(ctx, transaction)
}

func (s *ServiceImpl) GetById(ctx context.Context, id int) (Transaction, error) {
	requester, err := user.CurrentUser(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}

	t, err := s.repo.GetById(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	if !requester.IsAdmin() && t.UserId != requester.Id {
		return Transaction{}, ErrAccessDenied
	}
	return t, nil
}

func (s *ServiceImpl) List(ctx context.Context, userId int) ([]Transaction, error) {
	requester, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	if userId == 0 || userId == requester.Id {
		return s.repo.ListForUser(ctx, requester.Id)
	}
	if !requester.IsAdmin() {
		return nil, ErrAccessDenied
	}
	return s.repo.ListForUser(ctx, userId)
}
