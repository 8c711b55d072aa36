package movement

import (
	"context"
	"time"
)

// Journal is the append-only record of balance-affecting events. Entries are
// never mutated or deleted once appended.
type Journal interface {
	// Append assigns an identifier and persists the movement. A zero
	// Timestamp is replaced with the current UTC time.
	Append(ctx context.Context, mov Movement) (Movement, error)

	// FindByInstructionID returns every movement recorded under the
	// instruction identifier, in insertion order.
	FindByInstructionID(ctx context.Context, instructionID string) ([]Movement, error)

	// FindByAccountID returns the full history for one account, in
	// insertion order.
	FindByAccountID(ctx context.Context, accountID string) ([]Movement, error)

	// ExistsByTypeAndReference reports whether any movement of the given
	// type references the identifier.
	ExistsByTypeAndReference(ctx context.Context, t Type, referenceID string) (bool, error)

	// FindByTimeRange returns movements with timestamps in [start, end],
	// ordered by timestamp ascending.
	FindByTimeRange(ctx context.Context, start, end time.Time) ([]Movement, error)
}
