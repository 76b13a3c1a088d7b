package user

import (
	"context"
	"errors"
	"time"

	"webcourse/internal/admin"
	"webcourse/internal/core/user"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned by Create when the username or email is already stored.
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository is the store port for domain users
type UserRepository interface {
	Create(ctx context.Context, user *user.User) (*user.User, error)
	FindByID(ctx context.Context, id uint) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error)
	ListActive(ctx context.Context) ([]*user.User, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*user.User, error)
	Search(ctx context.Context, term string) ([]*user.User, error)
	SetActive(ctx context.Context, ids []uint, active bool) (int64, error)
	Delete(ctx context.Context, ids []uint) (int64, error)
	AdminList(ctx context.Context, q admin.Query) ([]*user.User, int64, error)
	AdminGet(ctx context.Context, id uint) (*user.User, error)
}
