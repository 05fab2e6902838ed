package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fundledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Create inserts the ledger row.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	_, err := txQueries(tx).CreateLedger(ctx, generated.CreateLedgerParams{
		ID:        ledger.ID,
		Owner:     ledger.Owner,
		PriceFeed: ledger.PriceFeed,
		Balance:   decimalToNumeric(ledger.Balance),
		CreatedAt: timeToPgTimestamptz(ledger.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(ledger.UpdatedAt),
	})

	return err
}

// GetByID retrieves a ledger by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.Ledger, error) {
	row, err := r.queries.GetLedgerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}

		return nil, err
	}

	return rowToLedger(row), nil
}

// GetByIDForUpdate retrieves a ledger by ID with a FOR UPDATE lock.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Ledger, error) {
	row, err := txQueries(tx).GetLedgerByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}

		return nil, err
	}

	return rowToLedger(row), nil
}

// UpdateBalance sets the held balance of a ledger.
func (r *LedgerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	return txQueries(tx).UpdateLedgerBalance(ctx, generated.UpdateLedgerBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// SetPendingPayout records the payout instruction reserved by a withdraw.
// An empty payoutID clears it.
func (r *LedgerRepository) SetPendingPayout(ctx context.Context, tx usecase.Transaction, id, payoutID string, updatedAt time.Time) error {
	return txQueries(tx).SetLedgerPendingPayout(ctx, generated.SetLedgerPendingPayoutParams{
		ID:            id,
		PendingPayout: payoutID,
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})
}

// CheckConsistency returns the held balance and the sum of recorded contributions.
func (r *LedgerRepository) CheckConsistency(ctx context.Context, id string) (decimal.Decimal, decimal.Decimal, error) {
	result, err := r.queries.CheckLedgerConsistency(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrLedgerNotFound
		}

		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.HeldBalance), numericToDecimal(result.TotalContributions), nil
}

func rowToLedger(row generated.Ledger) *domain.Ledger {
	return &domain.Ledger{
		ID:            row.ID,
		Owner:         row.Owner,
		PriceFeed:     row.PriceFeed,
		Balance:       numericToDecimal(row.Balance),
		PendingPayout: row.PendingPayout,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
