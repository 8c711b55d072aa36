package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/integrity"
	"github.com/switchbank/switch-ledger/internal/logging"
	"github.com/switchbank/switch-ledger/internal/movement"
	"github.com/switchbank/switch-ledger/internal/store"
)

// DefaultReversalWindow bounds how old a movement may be and still be
// reversed.
const DefaultReversalWindow = 48 * time.Hour

// Service is the transition engine for technical accounts. Every mutating
// operation runs as one critical section per account:
// read, verify signature, mutate, append movement, resign, persist.
// Operations against different accounts never block each other.
type Service struct {
	store          store.Store
	accounts       account.Repository
	journal        movement.Journal
	signer         *integrity.Signer
	logger         *slog.Logger
	reversalWindow time.Duration
	now            func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds the ledger engine over a backing store. A non-positive
// reversalWindow falls back to DefaultReversalWindow.
func NewService(st store.Store, signer *integrity.Signer, logger *slog.Logger, reversalWindow time.Duration) *Service {
	if reversalWindow <= 0 {
		reversalWindow = DefaultReversalWindow
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		store:          st,
		accounts:       st.Accounts(),
		journal:        st.Journal(),
		signer:         signer,
		logger:         logger,
		reversalWindow: reversalWindow,
		now:            func() time.Time { return time.Now().UTC() },
		locks:          make(map[string]*sync.Mutex),
	}
}

// lockAccount serializes operations touching one BIC and returns the unlock
// function.
func (s *Service) lockAccount(bic string) func() {
	s.mu.Lock()
	l, ok := s.locks[bic]
	if !ok {
		l = &sync.Mutex{}
		s.locks[bic] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// scale normalizes a monetary value to 2-decimal fixed point, half-up.
func scale(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func (s *Service) load(ctx context.Context, bic string) (account.Account, error) {
	acc, err := s.accounts.FindByBIC(ctx, bic)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, fmt.Errorf("bic %s: %w", bic, ErrAccountNotFound)
		}
		return account.Account{}, err
	}
	return acc, nil
}

func (s *Service) loadVerified(ctx context.Context, bic string) (account.Account, error) {
	acc, err := s.load(ctx, bic)
	if err != nil {
		return account.Account{}, err
	}
	if !s.signer.Verify(acc) {
		s.logger.Error("stored balance does not match its fingerprint", "bic", acc.BIC, "account_id", acc.ID)
		return account.Account{}, fmt.Errorf("account %s: %w", acc.BIC, ErrIntegrityViolation)
	}
	return acc, nil
}

// CreateAccount registers a technical account for a BIC with zero balances and
// the initial signature.
func (s *Service) CreateAccount(ctx context.Context, bic string) (account.Account, error) {
	if bic == "" {
		return account.Account{}, fmt.Errorf("bic is required: %w", ErrInvalidRequest)
	}

	unlock := s.lockAccount(bic)
	defer unlock()

	if _, err := s.accounts.FindByBIC(ctx, bic); err == nil {
		return account.Account{}, fmt.Errorf("bic %s: %w", bic, ErrAccountAlreadyExists)
	} else if !errors.Is(err, account.ErrNotFound) {
		return account.Account{}, err
	}

	acc := account.Account{
		ID:        uuid.NewString(),
		BIC:       bic,
		Available: scale(decimal.Zero),
		Blocked:   scale(decimal.Zero),
	}
	acc.IntegritySignature = s.signer.Sign(acc)

	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrExists) {
			return account.Account{}, fmt.Errorf("bic %s: %w", bic, ErrAccountAlreadyExists)
		}
		return account.Account{}, err
	}

	s.logger.Info("technical account created", "bic", bic, "account_id", acc.ID)
	return acc, nil
}

// GetAccount returns the stored snapshot for a BIC.
func (s *Service) GetAccount(ctx context.Context, bic string) (account.Account, error) {
	return s.load(ctx, bic)
}

// HasAvailable reports whether the account can cover the amount. An unknown
// BIC yields false rather than an error.
func (s *Service) HasAvailable(ctx context.Context, bic string, amount decimal.Decimal) (bool, error) {
	acc, err := s.accounts.FindByBIC(ctx, bic)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return acc.Available.Cmp(scale(amount)) >= 0, nil
}

// MovementInput describes a DEBIT or CREDIT to book against an account.
type MovementInput struct {
	BIC           string
	InstructionID string
	Type          movement.Type
	Amount        decimal.Decimal
}

// RegisterMovement debits or credits the account and journals the movement.
func (s *Service) RegisterMovement(ctx context.Context, in MovementInput) (account.Account, error) {
	if in.BIC == "" || in.InstructionID == "" {
		return account.Account{}, fmt.Errorf("bic and instruction id are required: %w", ErrInvalidRequest)
	}
	if in.Type != movement.TypeDebit && in.Type != movement.TypeCredit {
		return account.Account{}, fmt.Errorf("type %s: %w", in.Type, ErrInvalidMovementType)
	}
	amount := scale(in.Amount)
	if amount.IsNegative() {
		return account.Account{}, fmt.Errorf("amount must not be negative: %w", ErrInvalidRequest)
	}

	unlock := s.lockAccount(in.BIC)
	defer unlock()

	acc, err := s.loadVerified(ctx, in.BIC)
	if err != nil {
		return account.Account{}, err
	}

	switch in.Type {
	case movement.TypeDebit:
		if acc.Available.Cmp(amount) < 0 {
			return account.Account{}, fmt.Errorf("bic %s: %w", in.BIC, ErrInsufficientFunds)
		}
		acc.Available = scale(acc.Available.Sub(amount))
	case movement.TypeCredit:
		acc.Available = scale(acc.Available.Add(amount))
	}

	mov := movement.Movement{
		AccountID:        acc.ID,
		InstructionID:    in.InstructionID,
		Type:             in.Type,
		Amount:           amount,
		ResultingBalance: acc.Available,
		Timestamp:        s.now(),
	}
	acc.IntegritySignature = s.signer.Sign(acc)

	saved, _, err := s.store.ApplyMovement(ctx, acc, mov)
	return saved, err
}

// ReserveFunds moves the amount from available balance into blocked funds as a
// pre-authorization hold. A reservation is provisional, not booked, so no
// movement is journaled.
func (s *Service) ReserveFunds(ctx context.Context, bic, instructionID string, amount decimal.Decimal) (account.Account, error) {
	if bic == "" || instructionID == "" {
		return account.Account{}, fmt.Errorf("bic and instruction id are required: %w", ErrInvalidRequest)
	}
	amount = scale(amount)
	if amount.IsNegative() {
		return account.Account{}, fmt.Errorf("amount must not be negative: %w", ErrInvalidRequest)
	}

	unlock := s.lockAccount(bic)
	defer unlock()

	acc, err := s.loadVerified(ctx, bic)
	if err != nil {
		return account.Account{}, err
	}

	if acc.Available.Cmp(amount) < 0 {
		return account.Account{}, fmt.Errorf("bic %s: %w", bic, ErrInsufficientFunds)
	}
	acc.Available = scale(acc.Available.Sub(amount))
	acc.Blocked = scale(acc.Blocked.Add(amount))

	acc.IntegritySignature = s.signer.Sign(acc)
	return s.accounts.Save(ctx, acc)
}

// RechargeFunds injects liquidity into the account. The instruction id acts as
// an idempotency key: if any movement already exists under it, the call is a
// no-op returning the current snapshot.
func (s *Service) RechargeFunds(ctx context.Context, bic, instructionID string, amount decimal.Decimal) (account.Account, error) {
	if bic == "" || instructionID == "" {
		return account.Account{}, fmt.Errorf("bic and instruction id are required: %w", ErrInvalidRequest)
	}
	amount = scale(amount)
	if amount.IsNegative() {
		return account.Account{}, fmt.Errorf("amount must not be negative: %w", ErrInvalidRequest)
	}

	unlock := s.lockAccount(bic)
	defer unlock()

	existing, err := s.journal.FindByInstructionID(ctx, instructionID)
	if err != nil {
		return account.Account{}, err
	}
	if len(existing) > 0 {
		s.logger.Info("recharge skipped, instruction already journaled", "bic", bic, "instruction_id", instructionID)
		return s.load(ctx, bic)
	}

	acc, err := s.loadVerified(ctx, bic)
	if err != nil {
		return account.Account{}, err
	}

	acc.Available = scale(acc.Available.Add(amount))

	mov := movement.Movement{
		AccountID:        acc.ID,
		InstructionID:    instructionID,
		Type:             movement.TypeRecharge,
		Amount:           amount,
		ResultingBalance: acc.Available,
		Timestamp:        s.now(),
	}
	acc.IntegritySignature = s.signer.Sign(acc)

	saved, _, err := s.store.ApplyMovement(ctx, acc, mov)
	return saved, err
}

// ReversalInput describes a compensating movement request.
type ReversalInput struct {
	OriginalInstructionID string
	// ReturnInstructionID is optional; when empty or colliding with an
	// existing instruction id, a fresh identifier is generated.
	ReturnInstructionID string
	Amount              decimal.Decimal
}

// ReverseMovement undoes a prior DEBIT or CREDIT, linking the compensating
// REVERSAL to the original instruction id.
func (s *Service) ReverseMovement(ctx context.Context, in ReversalInput) (account.Account, error) {
	if in.OriginalInstructionID == "" {
		return account.Account{}, fmt.Errorf("original instruction id is required: %w", ErrInvalidRequest)
	}

	originals, err := s.journal.FindByInstructionID(ctx, in.OriginalInstructionID)
	if err != nil {
		return account.Account{}, err
	}
	if len(originals) == 0 {
		return account.Account{}, fmt.Errorf("instruction %s: %w", in.OriginalInstructionID, ErrMovementNotFound)
	}
	original := originals[0]

	owner, err := s.accounts.FindByID(ctx, original.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, fmt.Errorf("account %s: %w", original.AccountID, ErrAccountNotFound)
		}
		return account.Account{}, err
	}

	unlock := s.lockAccount(owner.BIC)
	defer unlock()

	// The duplicate guard and the other replay checks run inside the
	// critical section; two concurrent reversals of the same instruction
	// serialize here and the second one sees the first one's REVERSAL.
	if original.Timestamp.Before(s.now().Add(-s.reversalWindow)) {
		return account.Account{}, fmt.Errorf("instruction %s: %w", in.OriginalInstructionID, ErrReversalWindowExpired)
	}

	reversed, err := s.journal.ExistsByTypeAndReference(ctx, movement.TypeReversal, in.OriginalInstructionID)
	if err != nil {
		return account.Account{}, err
	}
	if reversed {
		return account.Account{}, fmt.Errorf("instruction %s: %w", in.OriginalInstructionID, ErrDuplicateReversal)
	}

	amount := scale(in.Amount)
	if !amount.Equal(original.Amount) {
		return account.Account{}, fmt.Errorf("declared %s, original %s: %w", amount.StringFixed(2), original.Amount.StringFixed(2), ErrAmountMismatch)
	}

	acc, err := s.loadVerified(ctx, owner.BIC)
	if err != nil {
		return account.Account{}, err
	}

	if original.Type == movement.TypeReversal {
		return account.Account{}, fmt.Errorf("cannot reverse a reversal: %w", ErrInvalidMovementType)
	}

	if original.Type == movement.TypeDebit {
		acc.Available = scale(acc.Available.Add(amount))
	} else {
		if acc.Available.Cmp(amount) < 0 {
			return account.Account{}, fmt.Errorf("bic %s: %w", acc.BIC, ErrInsufficientFunds)
		}
		acc.Available = scale(acc.Available.Sub(amount))
	}

	returnID := in.ReturnInstructionID
	if returnID == "" {
		returnID = uuid.NewString()
	}
	if returnID == in.OriginalInstructionID {
		returnID = uuid.NewString()
	} else if taken, err := s.journal.FindByInstructionID(ctx, returnID); err != nil {
		return account.Account{}, err
	} else if len(taken) > 0 {
		returnID = uuid.NewString()
	}

	mov := movement.Movement{
		AccountID:        acc.ID,
		InstructionID:    returnID,
		Type:             movement.TypeReversal,
		Amount:           amount,
		ResultingBalance: acc.Available,
		Timestamp:        s.now(),
		ReferenceID:      in.OriginalInstructionID,
	}
	acc.IntegritySignature = s.signer.Sign(acc)

	saved, _, err := s.store.ApplyMovement(ctx, acc, mov)
	return saved, err
}

// SettlementPosition is one participant's netted outcome for a cycle.
type SettlementPosition struct {
	BIC          string
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	NetPosition  decimal.Decimal
}

// SettlementBatch closes a netting cycle across participants.
type SettlementBatch struct {
	CycleID   int64
	Positions []SettlementPosition
}

// PositionResult reports the per-position outcome of a batch.
type PositionResult struct {
	BIC     string
	Account account.Account
	Err     error
}

// ApplySettlementBatch releases each participant's reserved debits back into
// available balance and applies the net position, which may be negative and is
// not floored at zero. Positions are processed sequentially and independently;
// a failed position does not stop the batch.
func (s *Service) ApplySettlementBatch(ctx context.Context, batch SettlementBatch) ([]PositionResult, error) {
	if len(batch.Positions) == 0 {
		return nil, fmt.Errorf("batch has no positions: %w", ErrInvalidRequest)
	}

	residual := decimal.Zero
	for _, pos := range batch.Positions {
		residual = residual.Add(pos.NetPosition)
	}
	if !residual.IsZero() {
		s.logger.Warn("settlement batch does not net to zero", "cycle_id", batch.CycleID, "residual", residual.StringFixed(2))
	}

	results := make([]PositionResult, 0, len(batch.Positions))
	for _, pos := range batch.Positions {
		acc, err := s.settlePosition(ctx, batch.CycleID, pos)
		if err != nil {
			s.logger.Error("settlement position failed", "cycle_id", batch.CycleID, "bic", pos.BIC, "error", err)
		}
		results = append(results, PositionResult{BIC: pos.BIC, Account: acc, Err: err})
	}
	return results, nil
}

func (s *Service) settlePosition(ctx context.Context, cycleID int64, pos SettlementPosition) (account.Account, error) {
	unlock := s.lockAccount(pos.BIC)
	defer unlock()

	acc, err := s.loadVerified(ctx, pos.BIC)
	if err != nil {
		return account.Account{}, err
	}

	totalDebits := scale(pos.TotalDebits)
	net := scale(pos.NetPosition)

	// Release the cycle's reservation, then book the netted outcome.
	acc.Blocked = scale(acc.Blocked.Sub(totalDebits))
	acc.Available = scale(acc.Available.Add(totalDebits))
	acc.Available = scale(acc.Available.Add(net))

	mov := movement.Movement{
		AccountID:        acc.ID,
		InstructionID:    uuid.NewString(),
		Type:             movement.TypeSettlement,
		Amount:           net.Abs(),
		ResultingBalance: acc.Available,
		Timestamp:        s.now(),
	}
	acc.IntegritySignature = s.signer.Sign(acc)

	saved, _, err := s.store.ApplyMovement(ctx, acc, mov)
	if err != nil {
		return account.Account{}, err
	}

	s.logger.Info("settlement position applied", "cycle_id", cycleID, "bic", pos.BIC, "net", net.StringFixed(2))
	return saved, nil
}

// MovementsByRange returns journaled movements with timestamps in
// [start, end], ordered by timestamp. Pure read, no signature verification.
func (s *Service) MovementsByRange(ctx context.Context, start, end time.Time) ([]movement.Movement, error) {
	return s.journal.FindByTimeRange(ctx, start, end)
}

// MovementsByAccount returns the journaled history for one BIC.
func (s *Service) MovementsByAccount(ctx context.Context, bic string) ([]movement.Movement, error) {
	acc, err := s.load(ctx, bic)
	if err != nil {
		return nil, err
	}
	return s.journal.FindByAccountID(ctx, acc.ID)
}
