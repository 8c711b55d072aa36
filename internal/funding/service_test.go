package funding

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/integrity"
	"github.com/switchbank/switch-ledger/internal/ledger"
	"github.com/switchbank/switch-ledger/internal/logging"
	"github.com/switchbank/switch-ledger/internal/movement"
	"github.com/switchbank/switch-ledger/internal/store"
)

func newTestService(t *testing.T) (*Service, *ledger.Service) {
	t.Helper()
	st := store.NewMemory(account.NewMemoryRepository(), movement.NewMemoryJournal())
	ledgerSvc := ledger.NewService(st, integrity.NewSigner("test-secret"), logging.Discard(), 0)
	svc, err := NewService(ledgerSvc)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, ledgerSvc
}

func TestRechargeIsIdempotent(t *testing.T) {
	svc, ledgerSvc := newTestService(t)
	ctx := context.Background()

	if _, err := ledgerSvc.CreateAccount(ctx, "BANKCD01"); err != nil {
		t.Fatalf("create account: %v", err)
	}

	in := RechargeInput{BIC: "BANKCD01", InstructionID: "ins-1", Amount: decimal.RequireFromString("500.00")}
	acc, err := svc.Recharge(ctx, in)
	if err != nil {
		t.Fatalf("recharge: %v", err)
	}
	if acc.Available.StringFixed(2) != "500.00" {
		t.Fatalf("expected 500.00, got %s", acc.Available.StringFixed(2))
	}

	acc, err = svc.Recharge(ctx, in)
	if err != nil {
		t.Fatalf("repeat recharge: %v", err)
	}
	if acc.Available.StringFixed(2) != "500.00" {
		t.Fatalf("expected unchanged 500.00, got %s", acc.Available.StringFixed(2))
	}
}

func TestAvailable(t *testing.T) {
	svc, ledgerSvc := newTestService(t)
	ctx := context.Background()

	if _, err := ledgerSvc.CreateAccount(ctx, "BANKCD01"); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.Recharge(ctx, RechargeInput{BIC: "BANKCD01", InstructionID: "ins-1", Amount: decimal.RequireFromString("20.00")}); err != nil {
		t.Fatalf("recharge: %v", err)
	}

	ok, err := svc.Available(ctx, "BANKCD01", decimal.RequireFromString("20.00"))
	if err != nil || !ok {
		t.Fatalf("expected funds available, ok=%v err=%v", ok, err)
	}
	ok, err = svc.Available(ctx, "BANKCD01", decimal.RequireFromString("20.01"))
	if err != nil || ok {
		t.Fatalf("expected funds unavailable, ok=%v err=%v", ok, err)
	}
	ok, err = svc.Available(ctx, "UNKNOWN", decimal.RequireFromString("1.00"))
	if err != nil || ok {
		t.Fatalf("expected unknown bic to be unavailable, ok=%v err=%v", ok, err)
	}
}
