package movement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates the closed set of balance-affecting event kinds.
type Type string

const (
	TypeDebit      Type = "DEBIT"
	TypeCredit     Type = "CREDIT"
	TypeRecharge   Type = "RECHARGE"
	TypeReversal   Type = "REVERSAL"
	TypeSettlement Type = "SETTLEMENT"
)

// ParseType validates a caller-supplied movement type at the boundary.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeDebit, TypeCredit, TypeRecharge, TypeReversal, TypeSettlement:
		return t, nil
	default:
		return "", fmt.Errorf("unknown movement type %q", s)
	}
}

// Movement is one append-only journal entry. ResultingBalance snapshots the
// account's available balance immediately after the movement was applied.
// ReferenceID is set only on reversals and points at the instruction id of the
// movement being reversed.
type Movement struct {
	ID               int64
	AccountID        string
	InstructionID    string
	Type             Type
	Amount           decimal.Decimal
	ResultingBalance decimal.Decimal
	Timestamp        time.Time
	ReferenceID      string
}
