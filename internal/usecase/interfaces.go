package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// LedgerRepository defines data access for the ledger row.
type LedgerRepository interface {
	Create(ctx context.Context, tx Transaction, ledger *domain.Ledger) error
	GetByID(ctx context.Context, id string) (*domain.Ledger, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Ledger, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetPendingPayout(ctx context.Context, tx Transaction, id, payoutID string, updatedAt time.Time) error
	CheckConsistency(ctx context.Context, id string) (heldBalance, totalContributions decimal.Decimal, err error)
}

// ContributionRepository defines data access for per-funder balances.
// Get returns zero for a funder that never contributed.
type ContributionRepository interface {
	Get(ctx context.Context, ledgerID, funder string) (decimal.Decimal, error)
	Add(ctx context.Context, tx Transaction, ledgerID, funder string, amount decimal.Decimal, updatedAt time.Time) (decimal.Decimal, error)
	Reset(ctx context.Context, tx Transaction, ledgerID, funder string, updatedAt time.Time) error
}

// FunderRepository defines data access for the ordered funder list.
// GetAt returns domain.ErrIndexOutOfRange past the end of the list.
type FunderRepository interface {
	Append(ctx context.Context, tx Transaction, ledgerID, funder string) (int, error)
	Count(ctx context.Context, ledgerID string) (int, error)
	CountTx(ctx context.Context, tx Transaction, ledgerID string) (int, error)
	GetAt(ctx context.Context, ledgerID string, index int) (string, error)
	GetAtTx(ctx context.Context, tx Transaction, ledgerID string, index int) (string, error)
	List(ctx context.Context, ledgerID string, limit, offset int) ([]string, error)
	ListTx(ctx context.Context, tx Transaction, ledgerID string) ([]string, error)
	Clear(ctx context.Context, tx Transaction, ledgerID string) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// PriceFeed is the read-only price oracle.
type PriceFeed interface {
	LatestQuote(ctx context.Context) (domain.PriceQuote, error)
	Address() string
}

// Transferer moves native value out of custody. Implementations must pay a
// given payoutID at most once.
type Transferer interface {
	Transfer(ctx context.Context, payoutID, to string, amount decimal.Decimal) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete successfully.
	Release(ctx context.Context, key string) error
}
