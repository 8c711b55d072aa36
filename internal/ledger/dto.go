package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/movement"
)

// CreateAccountRequest registers a technical account for a participant bank.
type CreateAccountRequest struct {
	BIC string `json:"bic"`
}

// RegisterMovementRequest books a DEBIT or CREDIT against an account.
type RegisterMovementRequest struct {
	BIC           string          `json:"bic"`
	InstructionID string          `json:"instruction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}

// ReserveRequest places a pre-authorization hold.
type ReserveRequest struct {
	BIC           string          `json:"bic"`
	InstructionID string          `json:"instruction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// ReturnRequest reverses a previously booked movement.
type ReturnRequest struct {
	OriginalInstructionID string          `json:"original_instruction_id"`
	ReturnInstructionID   string          `json:"return_instruction_id"`
	Amount                decimal.Decimal `json:"amount"`
}

// SettlementRequest closes a netting cycle.
type SettlementRequest struct {
	CycleID   int64                       `json:"cycle_id"`
	Positions []SettlementPositionRequest `json:"positions"`
}

// SettlementPositionRequest is one participant's netted outcome.
type SettlementPositionRequest struct {
	BIC          string          `json:"bic"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	NetPosition  decimal.Decimal `json:"net_position"`
}

// AccountResponse is the API snapshot of a technical account.
type AccountResponse struct {
	ID                 string     `json:"id"`
	BIC                string     `json:"bic"`
	AvailableBalance   string     `json:"available_balance"`
	BlockedFunds       string     `json:"blocked_funds"`
	IntegritySignature string     `json:"integrity_signature"`
	LastReconciledAt   *time.Time `json:"last_reconciled_at,omitempty"`
}

// MovementResponse is the API view of one journal entry.
type MovementResponse struct {
	ID               int64     `json:"id"`
	InstructionID    string    `json:"instruction_id"`
	Type             string    `json:"type"`
	Amount           string    `json:"amount"`
	ResultingBalance string    `json:"resulting_balance"`
	Timestamp        time.Time `json:"timestamp"`
	ReferenceID      string    `json:"reference_id,omitempty"`
}

// SettlementPositionResponse reports one position's outcome.
type SettlementPositionResponse struct {
	BIC     string           `json:"bic"`
	Status  string           `json:"status"`
	Error   string           `json:"error,omitempty"`
	Account *AccountResponse `json:"account,omitempty"`
}

func toAccountResponse(acc account.Account) AccountResponse {
	return AccountResponse{
		ID:                 acc.ID,
		BIC:                acc.BIC,
		AvailableBalance:   acc.Available.StringFixed(2),
		BlockedFunds:       acc.Blocked.StringFixed(2),
		IntegritySignature: acc.IntegritySignature,
		LastReconciledAt:   acc.LastReconciledAt,
	}
}

func toMovementResponses(movs []movement.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, MovementResponse{
			ID:               m.ID,
			InstructionID:    m.InstructionID,
			Type:             string(m.Type),
			Amount:           m.Amount.StringFixed(2),
			ResultingBalance: m.ResultingBalance.StringFixed(2),
			Timestamp:        m.Timestamp,
			ReferenceID:      m.ReferenceID,
		})
	}
	return out
}
