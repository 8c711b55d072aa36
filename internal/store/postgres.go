package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/movement"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres builds a store over a PostgreSQL pool. Reads and single writes
// go through pool-bound repositories; ApplyMovement runs both writes in one
// transaction.
func NewPostgres(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Accounts() account.Repository {
	return account.NewPostgresRepository(s.pool)
}

func (s *postgresStore) Journal() movement.Journal {
	return movement.NewPostgresJournal(s.pool)
}

func (s *postgresStore) ApplyMovement(ctx context.Context, acc account.Account, mov movement.Movement) (account.Account, movement.Movement, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return account.Account{}, movement.Movement{}, err
	}
	defer tx.Rollback(ctx)

	saved, err := account.NewPostgresRepository(tx).Save(ctx, acc)
	if err != nil {
		return account.Account{}, movement.Movement{}, err
	}

	appended, err := movement.NewPostgresJournal(tx).Append(ctx, mov)
	if err != nil {
		return account.Account{}, movement.Movement{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return account.Account{}, movement.Movement{}, err
	}
	return saved, appended, nil
}
