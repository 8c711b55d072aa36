package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/switchbank/switch-ledger/internal/account"
)

// Signer computes the tamper-evidence fingerprint over an account's sensitive
// fields. The fingerprint is an HMAC-SHA256 over the 2-decimal available
// balance, the 2-decimal blocked funds and the BIC, keyed with a secret
// supplied by configuration. It detects direct edits of stored balances; it is
// not a hash chain and cannot detect substitution by a stale-but-consistent
// snapshot.
type Signer struct {
	secret []byte
}

// NewSigner builds a signer keyed with the injected secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the fingerprint for the account's current state.
func (s *Signer) Sign(acc account.Account) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(acc.Available.StringFixed(2)))
	mac.Write([]byte(acc.Blocked.StringFixed(2)))
	mac.Write([]byte(acc.BIC))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the stored signature matches the freshly computed
// fingerprint.
func (s *Signer) Verify(acc account.Account) bool {
	return hmac.Equal([]byte(s.Sign(acc)), []byte(acc.IntegritySignature))
}
