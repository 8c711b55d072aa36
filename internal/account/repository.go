package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no account is registered for the requested BIC.
	ErrNotFound = errors.New("account not found")

	// ErrExists indicates an account already holds the BIC.
	ErrExists = errors.New("account already exists")
)

// Repository persists technical accounts keyed by BIC.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	FindByBIC(ctx context.Context, bic string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	Save(ctx context.Context, acc Account) (Account, error)
}
