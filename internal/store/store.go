// Package store binds the account repository and movement journal to one
// backing store and provides the paired write every booking operation needs:
// persisting the updated account and appending its movement as a single unit.
package store

import (
	"context"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/movement"
)

// Store exposes the repositories of one backing store plus the atomic
// account-and-movement write.
type Store interface {
	Accounts() account.Repository
	Journal() movement.Journal

	// ApplyMovement persists the mutated account and appends its journal
	// entry as one unit. Neither write is observable without the other:
	// on any failure the store ends up holding neither.
	ApplyMovement(ctx context.Context, acc account.Account, mov movement.Movement) (account.Account, movement.Movement, error)
}
