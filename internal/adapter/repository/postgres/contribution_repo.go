package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fundledger/internal/usecase"
)

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	queries *generated.Queries
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(pool *pgxpool.Pool) *ContributionRepository {
	return newContributionRepository(pool)
}

func newContributionRepository(db generated.DBTX) *ContributionRepository {
	return &ContributionRepository{queries: generated.New(db)}
}

// Get returns the recorded contribution of funder, zero when absent.
func (r *ContributionRepository) Get(ctx context.Context, ledgerID, funder string) (decimal.Decimal, error) {
	amount, err := r.queries.GetContribution(ctx, generated.GetContributionParams{
		LedgerID: ledgerID,
		Funder:   funder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}

		return decimal.Zero, err
	}

	return numericToDecimal(amount), nil
}

// Add increases the contribution of funder by amount and returns the new total.
func (r *ContributionRepository) Add(ctx context.Context, tx usecase.Transaction, ledgerID, funder string, amount decimal.Decimal, updatedAt time.Time) (decimal.Decimal, error) {
	total, err := txQueries(tx).AddContribution(ctx, generated.AddContributionParams{
		LedgerID:  ledgerID,
		Funder:    funder,
		Amount:    decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// Reset zeroes the contribution of funder.
func (r *ContributionRepository) Reset(ctx context.Context, tx usecase.Transaction, ledgerID, funder string, updatedAt time.Time) error {
	return txQueries(tx).ResetContribution(ctx, generated.ResetContributionParams{
		LedgerID:  ledgerID,
		Funder:    funder,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}
