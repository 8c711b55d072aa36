package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the technical account the switch keeps for each participant bank.
// Balances are fixed-point values at 2-decimal scale; IntegritySignature is the
// keyed fingerprint recomputed after every mutation.
type Account struct {
	ID                 string
	BIC                string
	Available          decimal.Decimal
	Blocked            decimal.Decimal
	IntegritySignature string
	LastReconciledAt   *time.Time
}
