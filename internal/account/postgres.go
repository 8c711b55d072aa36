package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the query surface the repository needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so a repository can be bound to a pool or to a
// transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores technical accounts in PostgreSQL.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account row. The unique index on bic enforces one
// account per participant.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO technical_accounts (id, bic, available, blocked, integrity_signature, last_reconciled_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		accountID, acc.BIC, acc.Available.StringFixed(2), acc.Blocked.StringFixed(2), acc.IntegritySignature, acc.LastReconciledAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrExists
	}
	return err
}

// FindByBIC fetches the account registered for the given BIC.
func (r *PostgresRepository) FindByBIC(ctx context.Context, bic string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, bic, available::text, blocked::text, integrity_signature, last_reconciled_at
        FROM technical_accounts WHERE bic = $1`, bic)
	return scanAccount(row)
}

// FindByID fetches the account by its identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, bic, available::text, blocked::text, integrity_signature, last_reconciled_at
        FROM technical_accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

// Save upserts the mutable account fields keyed by bic.
func (r *PostgresRepository) Save(ctx context.Context, acc Account) (Account, error) {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return Account{}, err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO technical_accounts (id, bic, available, blocked, integrity_signature, last_reconciled_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (bic) DO UPDATE
        SET available = EXCLUDED.available,
            blocked = EXCLUDED.blocked,
            integrity_signature = EXCLUDED.integrity_signature,
            last_reconciled_at = EXCLUDED.last_reconciled_at`,
		accountID, acc.BIC, acc.Available.StringFixed(2), acc.Blocked.StringFixed(2), acc.IntegritySignature, acc.LastReconciledAt)
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acc            Account
		id             uuid.UUID
		available      string
		blocked        string
		lastReconciled *time.Time
	)
	if err := row.Scan(&id, &acc.BIC, &available, &blocked, &acc.IntegritySignature, &lastReconciled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acc.ID = id.String()
	acc.LastReconciledAt = lastReconciled

	var err error
	if acc.Available, err = decimal.NewFromString(available); err != nil {
		return Account{}, err
	}
	if acc.Blocked, err = decimal.NewFromString(blocked); err != nil {
		return Account{}, err
	}
	return acc, nil
}
