package test_utils

import (
	"context"

	"github.com/moneta-app/moneta/pkg/user"
)

// TestAdmin is a ready-made administrator identity for service tests.
var TestAdmin = user.User{
	Id:    1,
	Uid:   "11111111-1111-1111-1111-111111111111",
	Name:  "Test Admin",
	Email: "admin@example.com",
	Role:  user.RoleAdmin,
}

// TestUser is a ready-made regular identity for service tests.
var TestUser = user.User{
	Id:    2,
	Uid:   "22222222-2222-2222-2222-222222222222",
	Name:  "Test User",
	Email: "user@example.com",
	Role:  user.RoleUser,
}

// AdminContext returns a context carrying the TestAdmin identity.
func AdminContext() context.Context {
	return user.WithUser(context.Background(), TestAdmin)
}

// UserContext returns a context carrying the TestUser identity.
func UserContext() context.Context {
	return user.WithUser(context.Background(), TestUser)
}

// ContextFor returns a context carrying the given identity.
func ContextFor(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}
