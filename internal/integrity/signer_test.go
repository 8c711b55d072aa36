package integrity

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/switchbank/switch-ledger/internal/account"
)

func testAccount() account.Account {
	return account.Account{
		ID:        "b2a7d6de-0000-4000-8000-000000000001",
		BIC:       "BANKCD01",
		Available: decimal.RequireFromString("100.00"),
		Blocked:   decimal.RequireFromString("25.00"),
	}
}

func TestSignIsDeterministic(t *testing.T) {
	s := NewSigner("unit-test-secret")
	acc := testAccount()

	if s.Sign(acc) != s.Sign(acc) {
		t.Fatal("expected identical signatures for identical state")
	}
}

func TestSignCoversSensitiveFields(t *testing.T) {
	s := NewSigner("unit-test-secret")
	base := testAccount()
	baseSig := s.Sign(base)

	tampered := base
	tampered.Available = decimal.RequireFromString("100.01")
	if s.Sign(tampered) == baseSig {
		t.Fatal("expected available balance change to alter signature")
	}

	tampered = base
	tampered.Blocked = decimal.RequireFromString("0.00")
	if s.Sign(tampered) == baseSig {
		t.Fatal("expected blocked funds change to alter signature")
	}

	tampered = base
	tampered.BIC = "BANKCD02"
	if s.Sign(tampered) == baseSig {
		t.Fatal("expected bic change to alter signature")
	}
}

func TestSignDependsOnSecret(t *testing.T) {
	acc := testAccount()
	if NewSigner("secret-a").Sign(acc) == NewSigner("secret-b").Sign(acc) {
		t.Fatal("expected different secrets to produce different signatures")
	}
}

func TestVerify(t *testing.T) {
	s := NewSigner("unit-test-secret")
	acc := testAccount()
	acc.IntegritySignature = s.Sign(acc)

	if !s.Verify(acc) {
		t.Fatal("expected untouched account to verify")
	}

	acc.Available = acc.Available.Add(decimal.RequireFromString("0.01"))
	if s.Verify(acc) {
		t.Fatal("expected tampered account to fail verification")
	}
}
