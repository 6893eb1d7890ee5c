package projection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahShtayeh/axis/internal/events"
	"github.com/mahShtayeh/axis/internal/ledger"
	"github.com/mahShtayeh/axis/internal/models"
)

type fakeReadModel struct {
	processed    map[string]bool
	accountViews map[uuid.UUID]*models.AccountView
	txnViews     []*models.TransactionView
}

func newFakeReadModel() *fakeReadModel {
	return &fakeReadModel{
		processed:    make(map[string]bool),
		accountViews: make(map[uuid.UUID]*models.AccountView),
	}
}

func (f *fakeReadModel) IsTransactionProcessed(_ context.Context, transactionID string) bool {
	return f.processed[transactionID]
}

func (f *fakeReadModel) MarkTransactionProcessed(_ context.Context, transactionID string) {
	f.processed[transactionID] = true
}

func (f *fakeReadModel) CacheTransactionView(_ context.Context, view *models.TransactionView) {
	f.txnViews = append(f.txnViews, view)
}

func (f *fakeReadModel) CacheAccountView(_ context.Context, view *models.AccountView) {
	f.accountViews[view.ID] = view
}

func (f *fakeReadModel) GetAccountView(_ context.Context, accountID uuid.UUID) (*models.AccountView, error) {
	view, ok := f.accountViews[accountID]
	if !ok {
		return nil, &ledger.AccountNotFoundError{AccountID: accountID}
	}
	copied := *view
	return &copied, nil
}

func aTransactionEvent(transactionID, accountID uuid.UUID) events.Event {
	return events.Event{
		Type:      events.TransactionCreated,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"transactionId":    transactionID.String(),
			"accountId":        accountID.String(),
			"username":         "owner@axis.com",
			"amount":           "250.50",
			"type":             "DEPOSIT",
			"newBalance":       "1250.50",
			"createdTimestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
}

func TestHandleTransactionEvent(t *testing.T) {
	readModel := newFakeReadModel()
	accountID := uuid.New()
	transactionID := uuid.New()
	readModel.accountViews[accountID] = &models.AccountView{
		ID:       accountID,
		Username: "owner@axis.com",
		Balance:  decimal.RequireFromString("1000.00"),
	}
	projector := NewProjector(readModel)

	err := projector.HandleTransactionEvent(context.Background(), aTransactionEvent(transactionID, accountID))

	require.NoError(t, err)
	require.Len(t, readModel.txnViews, 1)
	assert.Equal(t, transactionID, readModel.txnViews[0].ID)
	assert.True(t, readModel.txnViews[0].Amount.Equal(decimal.RequireFromString("250.50")))
	assert.True(t, readModel.accountViews[accountID].Balance.Equal(decimal.RequireFromString("1250.50")))
	assert.True(t, readModel.processed[transactionID.String()])
}

func TestHandleTransactionEventSkipsDuplicates(t *testing.T) {
	readModel := newFakeReadModel()
	accountID := uuid.New()
	transactionID := uuid.New()
	readModel.accountViews[accountID] = &models.AccountView{
		ID:       accountID,
		Username: "owner@axis.com",
		Balance:  decimal.RequireFromString("1000.00"),
	}
	projector := NewProjector(readModel)
	event := aTransactionEvent(transactionID, accountID)

	require.NoError(t, projector.HandleTransactionEvent(context.Background(), event))
	require.NoError(t, projector.HandleTransactionEvent(context.Background(), event))

	assert.Len(t, readModel.txnViews, 1, "redelivered event must not project twice")
}

func TestHandleTransactionEventIgnoresOtherTypes(t *testing.T) {
	readModel := newFakeReadModel()
	projector := NewProjector(readModel)

	err := projector.HandleTransactionEvent(context.Background(), events.Event{Type: events.AccountOpened})

	require.NoError(t, err)
	assert.Empty(t, readModel.txnViews)
}

func TestHandleTransactionEventRejectsMalformedPayload(t *testing.T) {
	readModel := newFakeReadModel()
	projector := NewProjector(readModel)

	err := projector.HandleTransactionEvent(context.Background(), events.Event{
		Type: events.TransactionCreated,
		Data: map[string]any{"transactionId": "garbage"},
	})

	assert.Error(t, err)
	assert.Empty(t, readModel.txnViews)
}
