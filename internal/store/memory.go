package store

import (
	"context"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/movement"
)

type memoryStore struct {
	accounts account.Repository
	journal  movement.Journal
}

// NewMemory wraps in-memory backends. Callers serialize writers per account,
// so ApplyMovement only has to undo its own half-applied writes on failure.
func NewMemory(accounts account.Repository, journal movement.Journal) Store {
	return &memoryStore{accounts: accounts, journal: journal}
}

func (s *memoryStore) Accounts() account.Repository { return s.accounts }

func (s *memoryStore) Journal() movement.Journal { return s.journal }

func (s *memoryStore) ApplyMovement(ctx context.Context, acc account.Account, mov movement.Movement) (account.Account, movement.Movement, error) {
	prev, err := s.accounts.FindByBIC(ctx, acc.BIC)
	if err != nil {
		return account.Account{}, movement.Movement{}, err
	}

	saved, err := s.accounts.Save(ctx, acc)
	if err != nil {
		return account.Account{}, movement.Movement{}, err
	}

	appended, err := s.journal.Append(ctx, mov)
	if err != nil {
		// Put the account back so a failed append leaves no trace.
		if _, restoreErr := s.accounts.Save(ctx, prev); restoreErr != nil {
			return account.Account{}, movement.Movement{}, restoreErr
		}
		return account.Account{}, movement.Movement{}, err
	}

	return saved, appended, nil
}
