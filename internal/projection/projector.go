package projection

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahShtayeh/axis/internal/events"
	"github.com/mahShtayeh/axis/internal/models"
)

// ReadModel is the slice of the read repository the projector writes through.
// Implemented by repository.AccountReadRepository.
type ReadModel interface {
	IsTransactionProcessed(ctx context.Context, transactionID string) bool
	MarkTransactionProcessed(ctx context.Context, transactionID string)
	CacheTransactionView(ctx context.Context, view *models.TransactionView)
	CacheAccountView(ctx context.Context, view *models.AccountView)
	GetAccountView(ctx context.Context, accountID uuid.UUID) (*models.AccountView, error)
}

// Projector keeps the Redis read model in step with the committed ledger by
// consuming the transaction event stream. The durable store is always the
// source of truth; the projector only refreshes views that cold reads would
// otherwise rebuild from PostgreSQL.
type Projector struct {
	readRepo ReadModel
}

func NewProjector(readRepo ReadModel) *Projector {
	return &Projector{readRepo: readRepo}
}

// HandleTransactionEvent projects transaction.created events into the
// transaction and account view caches. Idempotent: duplicate delivery of the
// same transaction ID is detected via Redis and skipped.
func (p *Projector) HandleTransactionEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.TransactionCreated {
		return nil
	}

	var data events.TransactionCreatedEvent
	if err := events.DecodeData(event, &data); err != nil {
		return err
	}

	if p.readRepo.IsTransactionProcessed(ctx, data.TransactionID) {
		log.Printf("Transaction %s already projected, skipping duplicate event", data.TransactionID)
		return nil
	}

	txnView, newBalance, err := transactionViewFromEvent(data)
	if err != nil {
		return err
	}

	// Mark before caching so a redelivery between the writes is still
	// detected and skipped.
	p.readRepo.MarkTransactionProcessed(ctx, data.TransactionID)
	p.readRepo.CacheTransactionView(ctx, txnView)

	// Read-through fetch keeps the creation stamp; only the balance and the
	// modification stamp move.
	accountView, err := p.readRepo.GetAccountView(ctx, txnView.AccountID)
	if err != nil {
		return fmt.Errorf("failed to refresh account view: %w", err)
	}
	accountView.Balance = newBalance
	accountView.UpdatedAt = txnView.CreatedAt
	p.readRepo.CacheAccountView(ctx, accountView)
	return nil
}

func transactionViewFromEvent(data events.TransactionCreatedEvent) (*models.TransactionView, decimal.Decimal, error) {
	transactionID, err := uuid.Parse(data.TransactionID)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("malformed transaction ID %q: %w", data.TransactionID, err)
	}
	accountID, err := uuid.Parse(data.AccountID)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("malformed account ID %q: %w", data.AccountID, err)
	}
	amount, err := decimal.NewFromString(data.Amount)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("malformed amount %q: %w", data.Amount, err)
	}
	newBalance, err := decimal.NewFromString(data.NewBalance)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("malformed balance %q: %w", data.NewBalance, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, data.CreatedAt)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("malformed timestamp %q: %w", data.CreatedAt, err)
	}

	return &models.TransactionView{
		ID:        transactionID,
		AccountID: accountID,
		Amount:    amount,
		Type:      data.Type,
		CreatedAt: createdAt,
	}, newBalance, nil
}
