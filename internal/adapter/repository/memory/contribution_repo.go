package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/usecase"
)

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	store *Store
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(store *Store) *ContributionRepository {
	return &ContributionRepository{store: store}
}

// Get returns the committed contribution, zero when absent.
func (r *ContributionRepository) Get(ctx context.Context, ledgerID, funder string) (decimal.Decimal, error) {
	amount := decimal.Zero
	r.store.read(func(st *state) {
		if v, ok := st.contributions[ledgerID][funder]; ok {
			amount = v
		}
	})

	return amount, nil
}

// Add increments the contribution of funder and returns the new total.
func (r *ContributionRepository) Add(ctx context.Context, tx usecase.Transaction, ledgerID, funder string, amount decimal.Decimal, updatedAt time.Time) (decimal.Decimal, error) {
	st := workState(tx)

	m, ok := st.contributions[ledgerID]
	if !ok {
		m = make(map[string]decimal.Decimal)
		st.contributions[ledgerID] = m
	}

	total := m[funder].Add(amount)
	m[funder] = total

	return total, nil
}

// Reset zeroes the contribution of funder.
func (r *ContributionRepository) Reset(ctx context.Context, tx usecase.Transaction, ledgerID, funder string, updatedAt time.Time) error {
	if m, ok := workState(tx).contributions[ledgerID]; ok {
		m[funder] = decimal.Zero
	}

	return nil
}
