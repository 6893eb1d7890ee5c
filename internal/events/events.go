package events

import "time"

// Event types
const (
	AccountOpened      = "account.opened"
	TransactionCreated = "transaction.created"
	BalanceUpdated     = "balance.updated"
)

// Stream names
const (
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Event is the envelope written to a Redis stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Monetary fields are decimal strings, never floats: events feed the read
// model and must round-trip exactly.

type AccountOpenedEvent struct {
	AccountID      string `json:"accountId"`
	Username       string `json:"username"`
	OpeningBalance string `json:"openingBalance"`
}

type TransactionCreatedEvent struct {
	TransactionID string `json:"transactionId"`
	AccountID     string `json:"accountId"`
	Username      string `json:"username"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	NewBalance    string `json:"newBalance"`
	CreatedAt     string `json:"createdTimestamp"`
}

type BalanceUpdatedEvent struct {
	AccountID  string `json:"accountId"`
	NewBalance string `json:"newBalance"`
	Change     string `json:"change"`
	Type       string `json:"type"`
}
