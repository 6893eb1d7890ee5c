package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testAccount(balance string) *Account {
	return &Account{
		ID:       uuid.New(),
		Username: "owner@axis.com",
		Balance:  decimal.RequireFromString(balance),
		Version:  1,
	}
}

func TestApplyDeposit(t *testing.T) {
	engine := NewEngine()
	account := testAccount("1000.00")

	txn, err := engine.Apply(account, decimal.RequireFromString("250.50"), Deposit)

	assert.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, account.ID, txn.AccountID)
	assert.Equal(t, Deposit, txn.Type)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("250.50")))
	assert.Equal(t, uuid.Nil, txn.ID, "transaction ID is assigned by the store, not the engine")
}

func TestApplyWithdrawal(t *testing.T) {
	engine := NewEngine()
	account := testAccount("1000.00")

	txn, err := engine.Apply(account, decimal.RequireFromString("100.00"), Withdrawal)

	assert.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("900.00")))
	assert.Equal(t, Withdrawal, txn.Type)
}

func TestApplyWithdrawalInsufficientFunds(t *testing.T) {
	engine := NewEngine()
	account := testAccount("1000.00")

	txn, err := engine.Apply(account, decimal.RequireFromString("1000.01"), Withdrawal)

	assert.Nil(t, txn)
	var insufficientErr *InsufficientFundsError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, account.ID, insufficientErr.AccountID)
	assert.True(t, insufficientErr.Requested.Equal(decimal.RequireFromString("1000.01")))
	assert.True(t, insufficientErr.Balance.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")),
		"a rejected withdrawal must not touch the balance")
}

func TestApplyWithdrawalExactBalance(t *testing.T) {
	engine := NewEngine()
	account := testAccount("50.00")

	_, err := engine.Apply(account, decimal.RequireFromString("50.00"), Withdrawal)

	assert.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestApplyRejectsInvalidAmounts(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name   string
		amount string
	}{
		{"zero amount", "0"},
		{"negative amount", "-10.00"},
		{"more than two decimal places", "10.001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := testAccount("1000.00")
			txn, err := engine.Apply(account, decimal.RequireFromString(tt.amount), Deposit)
			assert.Nil(t, txn)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")))
		})
	}
}

func TestApplyRejectsUnknownTransactionType(t *testing.T) {
	engine := NewEngine()
	account := testAccount("1000.00")

	txn, err := engine.Apply(account, decimal.RequireFromString("10.00"), TransactionType("TRANSFER"))

	assert.Nil(t, txn)
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestValidateOpeningBalance(t *testing.T) {
	assert.NoError(t, ValidateOpeningBalance(decimal.Zero))
	assert.NoError(t, ValidateOpeningBalance(decimal.RequireFromString("1000.00")))
	assert.ErrorIs(t, ValidateOpeningBalance(decimal.RequireFromString("-0.01")), ErrInvalidOpeningBalance)
	assert.ErrorIs(t, ValidateOpeningBalance(decimal.RequireFromString("0.001")), ErrInvalidOpeningBalance)
}
