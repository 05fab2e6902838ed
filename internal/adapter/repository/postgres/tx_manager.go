package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundledger/internal/usecase"
)

// TxConfig tunes every ledger transaction.
//
// Fund and withdraw both start with SELECT ... FOR UPDATE on the ledger row,
// so READ COMMITTED is enough to serialize them. A withdraw holds that lock
// across the custody call; LockTimeout makes queued writers fail instead of
// waiting on it indefinitely.
type TxConfig struct {
	IsoLevel    pgx.TxIsoLevel
	LockTimeout time.Duration
}

type pgxPool interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
	cfg  TxConfig
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool, cfg TxConfig) *TxManager {
	return newTxManagerWithPool(pool, cfg)
}

func newTxManagerWithPool(pool pgxPool, cfg TxConfig) *TxManager {
	if cfg.IsoLevel == "" {
		cfg.IsoLevel = pgx.ReadCommitted
	}

	return &TxManager{pool: pool, cfg: cfg}
}

// Begin starts a ledger transaction and applies the lock timeout to it.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: m.cfg.IsoLevel})
	if err != nil {
		return nil, err
	}

	if m.cfg.LockTimeout > 0 {
		// SET does not take bind parameters; set_config(..., true) is the
		// transaction-local equivalent.
		timeout := fmt.Sprintf("%dms", m.cfg.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", timeout); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
