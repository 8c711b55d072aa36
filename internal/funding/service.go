package funding

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/ledger"
)

// Service exposes liquidity operations: central-bank style recharges and
// availability checks.
type Service struct {
	ledger *ledger.Service
}

// NewService builds a funding service on top of the ledger engine.
func NewService(ledgerSvc *ledger.Service) (*Service, error) {
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	return &Service{ledger: ledgerSvc}, nil
}

// RechargeInput captures a liquidity injection request.
type RechargeInput struct {
	BIC           string
	InstructionID string
	Amount        decimal.Decimal
}

// Recharge injects liquidity into a bank's technical account. The instruction
// id makes the call idempotent.
func (s *Service) Recharge(ctx context.Context, in RechargeInput) (account.Account, error) {
	return s.ledger.RechargeFunds(ctx, in.BIC, in.InstructionID, in.Amount)
}

// Available reports whether the account covers the amount.
func (s *Service) Available(ctx context.Context, bic string, amount decimal.Decimal) (bool, error) {
	return s.ledger.HasAvailable(ctx, bic, amount)
}
