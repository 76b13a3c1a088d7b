package account

import (
	"context"
	"errors"
	"time"

	"webcourse/internal/core/account"
)

var ErrNotFound = errors.New("account not found")

// AccountRepository is the store port for login identities
type AccountRepository interface {
	Create(ctx context.Context, account *account.Account) (*account.Account, error)
	FindByUsername(ctx context.Context, username string) (*account.Account, error)
}

// Session is what a successful login hands back to the transport
type Session struct {
	Token     string
	ExpiresAt time.Time
}
