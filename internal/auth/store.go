package auth

import (
	"context"
	"time"
)

// UserStore describes persistence required by the auth subsystem.
type UserStore interface {
	// Create persists a new user. ErrAlreadyExists signals a username or
	// email collision.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role Role) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
