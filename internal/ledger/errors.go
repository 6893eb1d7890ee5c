package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain validation failures, rejected before the Engine is invoked.
var (
	// ErrInvalidAmount rejects deposit/withdrawal amounts that are not
	// strictly positive with at most two fractional digits.
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

	// ErrInvalidOpeningBalance rejects negative or mis-scaled opening balances.
	ErrInvalidOpeningBalance = errors.New("opening balance must be non-negative with at most two decimal places")

	// ErrInvalidTransactionType rejects transaction types outside the closed set.
	ErrInvalidTransactionType = errors.New("transaction type must be DEPOSIT or WITHDRAWAL")

	// ErrMissingUsername rejects account creation without an owner.
	ErrMissingUsername = errors.New("account owner username is required")
)

// ErrTransactionNotFound reports a reference to a non-existent transaction
// record.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrConcurrentModification is returned by the store when a commit loses a
// race on the account version. Safe to retry: the caller re-loads and re-runs
// the whole apply step against fresh state.
var ErrConcurrentModification = errors.New("account was modified concurrently")

// AccountNotFoundError reports a reference to a non-existent account.
// Terminal: never retried.
type AccountNotFoundError struct {
	AccountID uuid.UUID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

// InsufficientFundsError reports a withdrawal exceeding the available
// balance. Terminal: no mutation occurred and the request is never retried.
type InsufficientFundsError struct {
	AccountID uuid.UUID
	Requested decimal.Decimal
	Balance   decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: requested %s, balance %s",
		e.AccountID, e.Requested, e.Balance)
}

// PersistenceError reports a storage write that did not durably complete or
// did not generate an expected identifier. Fatal infrastructure failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persistence failure during %s", e.Op)
	}
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
