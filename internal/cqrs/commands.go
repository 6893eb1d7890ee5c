package cqrs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OpenAccountCommand struct {
	Username       string
	OpeningBalance decimal.Decimal
}

type DepositCommand struct {
	AccountID          uuid.UUID
	RequestingUsername string
	Amount             decimal.Decimal
}

type WithdrawCommand struct {
	AccountID          uuid.UUID
	RequestingUsername string
	Amount             decimal.Decimal
}
