package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	// CreateUser registers a new user with the given role. Admin only.
	CreateUser(ctx context.Context, user User) (User, error)
	// GetAllUsers lists every registered user. Admin only.
	GetAllUsers(ctx context.Context) ([]User, error)
	// EnsureAdmin creates the bootstrap administrator when no admin exists.
	EnsureAdmin(ctx context.Context, email string, name string) error
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return User{}, err
	}
	if !user.Role.Valid() {
		user.Role = RoleUser
	}
	user.Uid = uuid.NewString()

	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) EnsureAdmin(ctx context.Context, email string, name string) error {
	count, err := u.repo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := User{
		Uid:   uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  RoleAdmin,
	}
	id, err := u.repo.CreateUser(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	log.Infof("created bootstrap admin user %s (id=%d)", email, id)
	return nil
}
