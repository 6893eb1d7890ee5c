package cqrs

import "github.com/google/uuid"

type GetBalanceQuery struct {
	AccountID          uuid.UUID
	RequestingUsername string
}

type GetAccountQuery struct {
	AccountID          uuid.UUID
	RequestingUsername string
}

type GetTransactionQuery struct {
	AccountID          uuid.UUID
	TransactionID      uuid.UUID
	RequestingUsername string
}

type ListTransactionsQuery struct {
	AccountID          uuid.UUID
	RequestingUsername string
}
