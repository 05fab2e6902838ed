package postgres

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fundledger/internal/usecase"
)

// FunderRepository implements usecase.FunderRepository.
// Positions are dense and zero based; Clear removes every row of a ledger.
type FunderRepository struct {
	queries *generated.Queries
}

// NewFunderRepository creates a new FunderRepository.
func NewFunderRepository(pool *pgxpool.Pool) *FunderRepository {
	return newFunderRepository(pool)
}

func newFunderRepository(db generated.DBTX) *FunderRepository {
	return &FunderRepository{queries: generated.New(db)}
}

// Append adds funder at the end of the list and returns its index.
func (r *FunderRepository) Append(ctx context.Context, tx usecase.Transaction, ledgerID, funder string) (int, error) {
	position, err := txQueries(tx).AppendFunder(ctx, generated.AppendFunderParams{
		LedgerID: ledgerID,
		Funder:   funder,
	})
	if err != nil {
		return 0, err
	}

	return int(position), nil
}

// Count returns the list length.
func (r *FunderRepository) Count(ctx context.Context, ledgerID string) (int, error) {
	return countFunders(ctx, r.queries, ledgerID)
}

// CountTx returns the list length as seen by tx.
func (r *FunderRepository) CountTx(ctx context.Context, tx usecase.Transaction, ledgerID string) (int, error) {
	return countFunders(ctx, txQueries(tx), ledgerID)
}

// GetAt returns the funder at index.
func (r *FunderRepository) GetAt(ctx context.Context, ledgerID string, index int) (string, error) {
	return funderAt(ctx, r.queries, ledgerID, index)
}

// GetAtTx returns the funder at index as seen by tx.
func (r *FunderRepository) GetAtTx(ctx context.Context, tx usecase.Transaction, ledgerID string, index int) (string, error) {
	return funderAt(ctx, txQueries(tx), ledgerID, index)
}

// List returns a page of the list in insertion order. Pages past the
// addressable range are empty.
func (r *FunderRepository) List(ctx context.Context, ledgerID string, limit, offset int) ([]string, error) {
	if offset > math.MaxInt32 {
		return []string{}, nil
	}
	limit = min(limit, math.MaxInt32)

	funders, err := r.queries.ListFunders(ctx, generated.ListFundersParams{
		LedgerID: ledgerID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}
	if funders == nil {
		funders = []string{}
	}

	return funders, nil
}

// ListTx returns the whole list as seen by tx.
func (r *FunderRepository) ListTx(ctx context.Context, tx usecase.Transaction, ledgerID string) ([]string, error) {
	funders, err := txQueries(tx).ListAllFunders(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if funders == nil {
		funders = []string{}
	}

	return funders, nil
}

// Clear empties the list.
func (r *FunderRepository) Clear(ctx context.Context, tx usecase.Transaction, ledgerID string) error {
	return txQueries(tx).ClearFunders(ctx, ledgerID)
}

func countFunders(ctx context.Context, q *generated.Queries, ledgerID string) (int, error) {
	count, err := q.CountFunders(ctx, ledgerID)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func funderAt(ctx context.Context, q *generated.Queries, ledgerID string, index int) (string, error) {
	if index < 0 || index > math.MaxInt32 {
		return "", domain.ErrIndexOutOfRange
	}

	funder, err := q.GetFunderAt(ctx, generated.GetFunderAtParams{
		LedgerID: ledgerID,
		Position: int32(index),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrIndexOutOfRange
		}

		return "", err
	}

	return funder, nil
}
