package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Create stores a new ledger.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	st := workState(tx)
	if _, ok := st.ledgers[ledger.ID]; ok {
		return domain.ErrLedgerAlreadyDeployed
	}

	st.ledgers[ledger.ID] = *ledger

	return nil
}

// GetByID retrieves a committed ledger.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.Ledger, error) {
	var (
		ledger domain.Ledger
		ok     bool
	)
	r.store.read(func(st *state) { ledger, ok = st.ledgers[id] })

	if !ok {
		return nil, domain.ErrLedgerNotFound
	}

	return &ledger, nil
}

// GetByIDForUpdate retrieves a ledger inside tx.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Ledger, error) {
	ledger, ok := workState(tx).ledgers[id]
	if !ok {
		return nil, domain.ErrLedgerNotFound
	}

	return &ledger, nil
}

// UpdateBalance sets the held balance.
func (r *LedgerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	st := workState(tx)

	ledger, ok := st.ledgers[id]
	if !ok {
		return domain.ErrLedgerNotFound
	}

	ledger.Balance = balance
	ledger.UpdatedAt = updatedAt
	st.ledgers[id] = ledger

	return nil
}

// SetPendingPayout records or clears the reserved payout instruction id.
func (r *LedgerRepository) SetPendingPayout(ctx context.Context, tx usecase.Transaction, id, payoutID string, updatedAt time.Time) error {
	st := workState(tx)

	ledger, ok := st.ledgers[id]
	if !ok {
		return domain.ErrLedgerNotFound
	}

	ledger.PendingPayout = payoutID
	ledger.UpdatedAt = updatedAt
	st.ledgers[id] = ledger

	return nil
}

// CheckConsistency returns the held balance and the sum of contributions.
func (r *LedgerRepository) CheckConsistency(ctx context.Context, id string) (decimal.Decimal, decimal.Decimal, error) {
	var (
		held  decimal.Decimal
		total = decimal.Zero
		ok    bool
	)

	r.store.read(func(st *state) {
		var ledger domain.Ledger
		ledger, ok = st.ledgers[id]
		held = ledger.Balance
		for _, amount := range st.contributions[id] {
			total = total.Add(amount)
		}
	})

	if !ok {
		return decimal.Zero, decimal.Zero, domain.ErrLedgerNotFound
	}

	return held, total, nil
}
