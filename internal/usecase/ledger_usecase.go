package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when the held balance differs from the recorded contributions.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: held balance does not equal recorded contributions")
)

// LedgerUseCase handles ledger-wide checks.
type LedgerUseCase struct {
	ledgerID   string
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerID string, ledgerRepo LedgerRepository) *LedgerUseCase {
	if ledgerID == "" {
		ledgerID = DefaultLedgerID
	}

	return &LedgerUseCase{
		ledgerID:   ledgerID,
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport is the outcome of a consistency check.
type ConsistencyReport struct {
	LedgerID           string
	HeldBalance        decimal.Decimal
	TotalContributions decimal.Decimal
	Difference         decimal.Decimal
	Consistent         bool
	CheckedAt          time.Time
}

// CheckConsistency verifies that the held balance equals the sum of all
// recorded contributions.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return false, err
	}

	if !report.Consistent {
		return false, ErrInconsistentLedger
	}

	return true, nil
}

// Report returns the full consistency report.
func (uc *LedgerUseCase) Report(ctx context.Context) (*ConsistencyReport, error) {
	held, total, err := uc.ledgerRepo.CheckConsistency(ctx, uc.ledgerID)
	if err != nil {
		return nil, err
	}

	return &ConsistencyReport{
		LedgerID:           uc.ledgerID,
		HeldBalance:        held,
		TotalContributions: total,
		Difference:         held.Sub(total),
		Consistent:         held.Equal(total),
		CheckedAt:          time.Now().UTC(),
	}, nil
}
