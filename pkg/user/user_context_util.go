package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

var ErrNoUser = errors.New("no authenticated user")

var ErrAdminRequired = errors.New("admin role required")

// CurrentId retrieves the current user's ID from the context.
// Returns ErrNoUser if no user is present.
func CurrentId(ctx context.Context) (int, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("user not found in context")
		return 0, ErrNoUser
	}
	return user.Id, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return user, nil
}

// RequireAdmin returns the current user if present and holding the ADMIN
// role; otherwise ErrNoUser or ErrAdminRequired.
func RequireAdmin(ctx context.Context) (User, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return User{}, err
	}
	if !user.IsAdmin() {
		return User{}, ErrAdminRequired
	}
	return user, nil
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
