package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mahShtayeh/axis/internal/ledger"
	"github.com/mahShtayeh/axis/internal/models"
	axisredis "github.com/mahShtayeh/axis/internal/redis"
)

const (
	accountViewKeyPrefix     = "account:view:"
	transactionViewKeyPrefix = "transaction:view:"
	processedTxnKeyPrefix    = "processed:txn:"
)

// AccountReadRepository serves the read model. Redis is the primary read
// store, warmed by the projector after every commit; PostgreSQL is the
// transparent fallback for cold reads, which re-warm the cache.
type AccountReadRepository struct {
	db           *sql.DB
	redis        *goredis.Client
	accountCache *axisredis.ViewCache[models.AccountView]
	txnCache     *axisredis.ViewCache[models.TransactionView]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:           db,
		redis:        redisClient,
		accountCache: axisredis.NewViewCache[models.AccountView](redisClient, 0),
		txnCache:     axisredis.NewViewCache[models.TransactionView](redisClient, 0),
	}
}

// GetAccountView returns the account view, trying Redis first then PostgreSQL.
// The view carries Username so callers can enforce ownership from the cache.
func (r *AccountReadRepository) GetAccountView(ctx context.Context, accountID uuid.UUID) (*models.AccountView, error) {
	cacheKey := accountViewKeyPrefix + accountID.String()

	if view, ok := r.accountCache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `
		SELECT id, username, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var view models.AccountView
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&view.ID, &view.Username, &view.Balance,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &ledger.AccountNotFoundError{AccountID: accountID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account view: %w", err)
	}

	// Warm the cache
	r.CacheAccountView(ctx, &view)
	return &view, nil
}

// GetTransactionView returns one transaction view, Redis first then PostgreSQL.
func (r *AccountReadRepository) GetTransactionView(ctx context.Context, accountID, transactionID uuid.UUID) (*models.TransactionView, error) {
	cacheKey := fmt.Sprintf("%s%s:%s", transactionViewKeyPrefix, accountID, transactionID)

	if view, ok := r.txnCache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `
		SELECT id, account_id, amount, type, created_at
		FROM transactions
		WHERE id = $1 AND account_id = $2
	`
	var view models.TransactionView
	err := r.db.QueryRowContext(ctx, query, transactionID, accountID).Scan(
		&view.ID, &view.AccountID, &view.Amount, &view.Type, &view.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction view: %w", err)
	}

	r.CacheTransactionView(ctx, &view)
	return &view, nil
}

// ListTransactionViews returns the account's transaction history from
// PostgreSQL, newest first.
func (r *AccountReadRepository) ListTransactionViews(ctx context.Context, accountID uuid.UUID) ([]models.TransactionView, error) {
	query := `
		SELECT id, account_id, amount, type, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var views []models.TransactionView
	for rows.Next() {
		var view models.TransactionView
		if err := rows.Scan(&view.ID, &view.AccountID, &view.Amount, &view.Type, &view.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return views, nil
}

// CacheAccountView stores or refreshes the Redis read model for an account.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	r.accountCache.Set(ctx, accountViewKeyPrefix+view.ID.String(), view)
}

// CacheTransactionView stores the read model for a committed transaction.
func (r *AccountReadRepository) CacheTransactionView(ctx context.Context, view *models.TransactionView) {
	cacheKey := fmt.Sprintf("%s%s:%s", transactionViewKeyPrefix, view.AccountID, view.ID)
	r.txnCache.Set(ctx, cacheKey, view)
}

// IsTransactionProcessed reports whether this transaction ID has already been
// projected. Guards against duplicate delivery under at-least-once Redis
// Streams semantics.
func (r *AccountReadRepository) IsTransactionProcessed(ctx context.Context, transactionID string) bool {
	val, err := r.redis.Exists(ctx, processedTxnKeyPrefix+transactionID).Result()
	return err == nil && val > 0
}

// MarkTransactionProcessed records that a transaction has been projected.
// The key expires after 72 hours, long enough to cover any realistic
// redelivery window from a consumer group.
func (r *AccountReadRepository) MarkTransactionProcessed(ctx context.Context, transactionID string) {
	key := processedTxnKeyPrefix + transactionID
	if err := r.redis.Set(ctx, key, "1", 72*time.Hour).Err(); err != nil {
		log.Printf("Failed to mark transaction %s as processed: %v", transactionID, err)
	}
}
