package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahShtayeh/axis/internal/ledger"
)

// LedgerStore is the durable write store for accounts and transactions. It is
// the only component that touches PostgreSQL for mutations, and it owns the
// two guarantees the engine depends on: the balance update and the
// transaction insert commit atomically, and a commit racing a concurrent
// mutation of the same account is rejected via the version column rather than
// silently losing an update.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// EnsureSchema creates the accounts and transactions tables if they do not
// exist. Identifiers are generated by PostgreSQL so they are assigned inside
// the same transaction that persists the row.
func (s *LedgerStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE EXTENSION IF NOT EXISTS pgcrypto;

		CREATE TABLE IF NOT EXISTS accounts (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   TEXT NOT NULL,
			balance    NUMERIC(19, 4) NOT NULL CHECK (balance >= 0),
			version    BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL REFERENCES accounts (id),
			amount     NUMERIC(19, 4) NOT NULL CHECK (amount > 0),
			type       TEXT NOT NULL CHECK (type IN ('DEPOSIT', 'WITHDRAWAL')),
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_account_id
			ON transactions (account_id, created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateAccount persists a new account with the given owner and opening
// balance. Audit stamps are assigned here, at the storage boundary.
func (s *LedgerStore) CreateAccount(ctx context.Context, username string, openingBalance decimal.Decimal) (*ledger.Account, error) {
	now := time.Now().UTC()
	account := &ledger.Account{
		Username:  username,
		Balance:   openingBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO accounts (username, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		account.Username, account.Balance, account.Version,
		account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		return nil, &ledger.PersistenceError{Op: "create account", Err: err}
	}
	if account.ID == uuid.Nil {
		return nil, &ledger.PersistenceError{Op: "create account: no identifier generated"}
	}
	return account, nil
}

// LoadAccount fetches the account working copy, version included, for one
// load→apply→commit round.
func (s *LedgerStore) LoadAccount(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error) {
	query := `
		SELECT id, username, balance, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var account ledger.Account
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&account.ID, &account.Username, &account.Balance,
		&account.Version, &account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &ledger.AccountNotFoundError{AccountID: accountID}
	}
	if err != nil {
		return nil, &ledger.PersistenceError{Op: "load account", Err: err}
	}
	return &account, nil
}

// Commit persists the account's new balance and appends the transaction
// record as one atomic unit. The balance update is predicated on the version
// observed at load time; zero affected rows means another commit won the race
// and the caller must re-load and retry. On success the working copy's
// version and stamps are advanced and the transaction carries its generated
// identifier.
func (s *LedgerStore) Commit(ctx context.Context, account *ledger.Account, txn *ledger.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ledger.PersistenceError{Op: "begin commit", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4
	`, account.ID, account.Balance, now, account.Version)
	if err != nil {
		return &ledger.PersistenceError{Op: "update balance", Err: err}
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return &ledger.PersistenceError{Op: "update balance", Err: err}
	}
	if rows == 0 {
		// Accounts are never deleted, so a missed predicate can only mean
		// the version moved since load.
		return ledger.ErrConcurrentModification
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (account_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, txn.AccountID, txn.Amount, txn.Type, now).Scan(&txn.ID)
	if err != nil {
		return &ledger.PersistenceError{Op: "append transaction", Err: err}
	}
	if txn.ID == uuid.Nil {
		return &ledger.PersistenceError{Op: "append transaction: no identifier generated"}
	}

	if err := tx.Commit(); err != nil {
		return &ledger.PersistenceError{Op: "commit", Err: err}
	}

	account.Version++
	account.UpdatedAt = now
	txn.CreatedAt = now
	return nil
}
