package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultLockWait bounds how long a state change waits for the one before it
	DefaultLockWait = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultLedgerID identifies the ledger when none is configured.
	DefaultLedgerID = "fundme"
)
