package query

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahShtayeh/axis/internal/cqrs"
	"github.com/mahShtayeh/axis/internal/ledger"
	"github.com/mahShtayeh/axis/internal/models"
)

// AccountLoader reads the account working copy from the durable write store.
// Balance checks go through here, not the cache: a balance read must reflect
// exactly the transactions committed before it.
type AccountLoader interface {
	LoadAccount(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error)
}

// ReadModel serves projection views (Redis first, PostgreSQL fallback).
// Implemented by repository.AccountReadRepository.
type ReadModel interface {
	GetAccountView(ctx context.Context, accountID uuid.UUID) (*models.AccountView, error)
	GetTransactionView(ctx context.Context, accountID, transactionID uuid.UUID) (*models.TransactionView, error)
	ListTransactionViews(ctx context.Context, accountID uuid.UUID) ([]models.TransactionView, error)
}

// AccountQueryService serves account reads. Ownership is enforced on every
// query: the account's owner username must match the requesting user.
type AccountQueryService struct {
	loader    AccountLoader
	readModel ReadModel
}

func NewAccountQueryService(loader AccountLoader, readModel ReadModel) *AccountQueryService {
	return &AccountQueryService{loader: loader, readModel: readModel}
}

// GetBalance returns the current balance from the write store.
func (s *AccountQueryService) GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (decimal.Decimal, error) {
	account, err := s.loader.LoadAccount(ctx, q.AccountID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if account.Username != q.RequestingUsername {
		return decimal.Decimal{}, cqrs.ErrForbidden
	}
	return account.Balance, nil
}

// GetAccount returns the account view from the read model.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	view, err := s.readModel.GetAccountView(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}
	if view.Username != q.RequestingUsername {
		return nil, cqrs.ErrForbidden
	}
	return view, nil
}

// GetTransaction returns one transaction view, after checking the requesting
// user owns the account it belongs to.
func (s *AccountQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	view, err := s.readModel.GetAccountView(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}
	if view.Username != q.RequestingUsername {
		return nil, cqrs.ErrForbidden
	}
	return s.readModel.GetTransactionView(ctx, q.AccountID, q.TransactionID)
}

// ListTransactions returns the account's transaction history, newest first.
// The account view is fetched first so ownership is checked before any
// transaction data is read.
func (s *AccountQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error) {
	view, err := s.readModel.GetAccountView(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}
	if view.Username != q.RequestingUsername {
		return nil, cqrs.ErrForbidden
	}
	return s.readModel.ListTransactionViews(ctx, q.AccountID)
}
