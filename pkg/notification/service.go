package notification

import (
	"context"
	"fmt"

	"github.com/moneta-app/moneta/pkg/user"
)

type Service interface {
	// List returns the current user's notifications, newest first.
	List(ctx context.Context) ([]Notification, error)
	// MarkAllRead marks every unread notification of the current user as
	// read and returns the count. Idempotent: a second call returns 0.
	MarkAllRead(ctx context.Context) (int, error)
	// Notify creates a notification for the given user.
	Notify(ctx context.Context, userId int, title string, body string) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Notification, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListForUser(ctx, userId)
}

func (s *ServiceImpl) MarkAllRead(ctx context.Context) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.MarkAllRead(ctx, userId)
}

func (s *ServiceImpl) Notify(ctx context.Context, userId int, title string, body string) error {
	_, err := s.repo.Store(ctx, Notification{UserId: userId, Title: title, Body: body})
	return err
}
