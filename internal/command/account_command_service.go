package command

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahShtayeh/axis/internal/cqrs"
	"github.com/mahShtayeh/axis/internal/events"
	"github.com/mahShtayeh/axis/internal/ledger"
)

// maxCommitAttempts bounds the internal retry loop for commits rejected with
// ErrConcurrentModification. Each attempt re-loads fresh state, so retrying
// is safe; insufficient funds and not-found are terminal and never retried.
const maxCommitAttempts = 3

// Store is the durable persistence contract the command service sequences
// against. Implemented by repository.LedgerStore.
type Store interface {
	CreateAccount(ctx context.Context, username string, openingBalance decimal.Decimal) (*ledger.Account, error)
	LoadAccount(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error)
	Commit(ctx context.Context, account *ledger.Account, txn *ledger.Transaction) error
}

// EventPublisher emits domain events after a successful commit.
// Implemented by events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService sequences load → engine → commit for each mutating
// intent and publishes events for the read-model projector. The engine
// decides, the store commits atomically; this service only orchestrates and
// retries lost-update conflicts.
type AccountCommandService struct {
	store     Store
	engine    *ledger.Engine
	publisher EventPublisher
}

func NewAccountCommandService(store Store, engine *ledger.Engine, publisher EventPublisher) *AccountCommandService {
	return &AccountCommandService{
		store:     store,
		engine:    engine,
		publisher: publisher,
	}
}

// OpenAccount creates an account with the given non-negative opening balance.
// The opening balance is not modeled as a transaction record.
func (s *AccountCommandService) OpenAccount(ctx context.Context, cmd cqrs.OpenAccountCommand) (uuid.UUID, error) {
	if cmd.Username == "" {
		return uuid.Nil, ledger.ErrMissingUsername
	}
	if err := ledger.ValidateOpeningBalance(cmd.OpeningBalance); err != nil {
		return uuid.Nil, err
	}

	account, err := s.store.CreateAccount(ctx, cmd.Username, cmd.OpeningBalance)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountOpened, events.AccountOpenedEvent{
		AccountID:      account.ID.String(),
		Username:       account.Username,
		OpeningBalance: account.Balance.String(),
	}); err != nil {
		log.Printf("Failed to publish account.opened event: %v", err)
	}

	return account.ID, nil
}

// Deposit credits the account and returns the new transaction's identifier.
func (s *AccountCommandService) Deposit(ctx context.Context, cmd cqrs.DepositCommand) (uuid.UUID, error) {
	return s.applyTransaction(ctx, cmd.AccountID, cmd.RequestingUsername, cmd.Amount, ledger.Deposit)
}

// Withdraw debits the account and returns the new transaction's identifier.
// Fails with ledger.InsufficientFundsError when the balance cannot cover the
// amount; the account is left untouched.
func (s *AccountCommandService) Withdraw(ctx context.Context, cmd cqrs.WithdrawCommand) (uuid.UUID, error) {
	return s.applyTransaction(ctx, cmd.AccountID, cmd.RequestingUsername, cmd.Amount, ledger.Withdrawal)
}

func (s *AccountCommandService) applyTransaction(
	ctx context.Context,
	accountID uuid.UUID,
	requestingUsername string,
	amount decimal.Decimal,
	txType ledger.TransactionType,
) (uuid.UUID, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return uuid.Nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		account, err := s.store.LoadAccount(ctx, accountID)
		if err != nil {
			return uuid.Nil, err
		}
		if account.Username != requestingUsername {
			return uuid.Nil, cqrs.ErrForbidden
		}

		txn, err := s.engine.Apply(account, amount, txType)
		if err != nil {
			return uuid.Nil, err
		}

		if err := s.store.Commit(ctx, account, txn); err != nil {
			if errors.Is(err, ledger.ErrConcurrentModification) {
				lastErr = err
				continue
			}
			return uuid.Nil, err
		}

		s.publishCommitted(ctx, account, txn)
		return txn.ID, nil
	}
	return uuid.Nil, lastErr
}

// publishCommitted emits transaction.created and balance.updated after a
// durable commit. Publish failures are logged, never surfaced: the ledger is
// already consistent and the projector re-warms cold reads from PostgreSQL.
func (s *AccountCommandService) publishCommitted(ctx context.Context, account *ledger.Account, txn *ledger.Transaction) {
	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID: txn.ID.String(),
		AccountID:     account.ID.String(),
		Username:      account.Username,
		Amount:        txn.Amount.String(),
		Type:          string(txn.Type),
		NewBalance:    account.Balance.String(),
		CreatedAt:     txn.CreatedAt.Format(time.RFC3339Nano),
	}); err != nil {
		log.Printf("Failed to publish transaction.created event: %v", err)
	}

	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountID:  account.ID.String(),
		NewBalance: account.Balance.String(),
		Change:     txn.Amount.String(),
		Type:       string(txn.Type),
	}); err != nil {
		log.Printf("Failed to publish balance.updated event: %v", err)
	}
}
