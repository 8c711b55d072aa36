package movement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the query surface the journal needs; *pgxpool.Pool and pgx.Tx both
// satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresJournal stores movements in PostgreSQL. The movements table is
// insert-only; nothing in this type updates or deletes rows.
type PostgresJournal struct {
	db DB
}

// NewPostgresJournal constructs a Postgres-backed journal implementation.
func NewPostgresJournal(db DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

const movementColumns = `id, account_id, instruction_id, type, amount::text, resulting_balance::text, recorded_at, COALESCE(reference_id, '')`

// Append inserts the movement and returns it with the assigned identifier.
func (j *PostgresJournal) Append(ctx context.Context, mov Movement) (Movement, error) {
	accountID, err := uuid.Parse(mov.AccountID)
	if err != nil {
		return Movement{}, err
	}
	if mov.Timestamp.IsZero() {
		mov.Timestamp = time.Now().UTC()
	}

	var refID any
	if mov.ReferenceID != "" {
		refID = mov.ReferenceID
	}

	row := j.db.QueryRow(ctx, `INSERT INTO movements (account_id, instruction_id, type, amount, resulting_balance, recorded_at, reference_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		accountID, mov.InstructionID, string(mov.Type), mov.Amount.StringFixed(2), mov.ResultingBalance.StringFixed(2), mov.Timestamp, refID)
	if err := row.Scan(&mov.ID); err != nil {
		return Movement{}, err
	}
	return mov, nil
}

// FindByInstructionID returns movements recorded under the instruction id.
func (j *PostgresJournal) FindByInstructionID(ctx context.Context, instructionID string) ([]Movement, error) {
	rows, err := j.db.Query(ctx, `SELECT `+movementColumns+` FROM movements WHERE instruction_id = $1 ORDER BY id`, instructionID)
	if err != nil {
		return nil, err
	}
	return collectMovements(rows)
}

// FindByAccountID returns the full history for one account.
func (j *PostgresJournal) FindByAccountID(ctx context.Context, accountID string) ([]Movement, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, nil
	}
	rows, err := j.db.Query(ctx, `SELECT `+movementColumns+` FROM movements WHERE account_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return collectMovements(rows)
}

// ExistsByTypeAndReference reports whether a movement of the type references
// the identifier.
func (j *PostgresJournal) ExistsByTypeAndReference(ctx context.Context, t Type, referenceID string) (bool, error) {
	var exists bool
	err := j.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movements WHERE type = $1 AND reference_id = $2)`,
		string(t), referenceID).Scan(&exists)
	return exists, err
}

// FindByTimeRange returns movements within [start, end] ordered by timestamp.
func (j *PostgresJournal) FindByTimeRange(ctx context.Context, start, end time.Time) ([]Movement, error) {
	rows, err := j.db.Query(ctx, `SELECT `+movementColumns+` FROM movements
        WHERE recorded_at >= $1 AND recorded_at <= $2 ORDER BY recorded_at, id`, start, end)
	if err != nil {
		return nil, err
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]Movement, error) {
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var (
			mov       Movement
			accountID uuid.UUID
			movType   string
			amount    string
			resulting string
		)
		if err := rows.Scan(&mov.ID, &accountID, &mov.InstructionID, &movType, &amount, &resulting, &mov.Timestamp, &mov.ReferenceID); err != nil {
			return nil, err
		}
		mov.AccountID = accountID.String()
		mov.Type = Type(movType)

		var err error
		if mov.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if mov.ResultingBalance, err = decimal.NewFromString(resulting); err != nil {
			return nil, err
		}
		out = append(out, mov)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return out, nil
}
