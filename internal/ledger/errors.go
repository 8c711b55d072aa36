package ledger

import "errors"

var (
	// ErrAccountAlreadyExists occurs when a BIC is registered twice.
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrAccountNotFound indicates no technical account holds the BIC.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMovementNotFound indicates no movement was recorded under the
	// instruction identifier.
	ErrMovementNotFound = errors.New("movement not found")

	// ErrInsufficientFunds occurs when a debit, reservation or credit
	// reversal exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrIntegrityViolation signals that a stored balance no longer matches
	// its fingerprint. It is a security-relevant fault, not a business
	// error; the enclosing operation aborts with no state change.
	ErrIntegrityViolation = errors.New("account integrity violation")

	// ErrInvalidMovementType occurs when a movement type is outside the
	// set an operation accepts, including reversing a reversal.
	ErrInvalidMovementType = errors.New("invalid movement type")

	// ErrDuplicateReversal indicates the original movement was already
	// reversed.
	ErrDuplicateReversal = errors.New("movement already reversed")

	// ErrReversalWindowExpired indicates the original movement is older
	// than the reversal window.
	ErrReversalWindowExpired = errors.New("reversal window expired")

	// ErrAmountMismatch indicates the declared reversal amount differs
	// from the original movement amount.
	ErrAmountMismatch = errors.New("amount does not match original movement")

	// ErrInvalidRequest indicates a missing or malformed required field.
	ErrInvalidRequest = errors.New("invalid request")
)
