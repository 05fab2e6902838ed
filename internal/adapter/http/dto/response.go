package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// LedgerResponse represents the ledger snapshot in API responses.
// PendingPayout is set while a withdraw has reserved but not completed a payout.
type LedgerResponse struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner"`
	PriceFeed     string          `json:"price_feed"`
	Balance       decimal.Decimal `json:"balance"`
	PendingPayout string          `json:"pending_payout,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LedgerFromDomain converts domain ledger to response.
func LedgerFromDomain(l *domain.Ledger) *LedgerResponse {
	return &LedgerResponse{
		ID:            l.ID,
		Owner:         l.Owner,
		PriceFeed:     l.PriceFeed,
		Balance:       l.Balance,
		PendingPayout: l.PendingPayout,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// DepositResponse represents an accepted deposit.
type DepositResponse struct {
	LedgerID        string          `json:"ledger_id"`
	Funder          string          `json:"funder"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceAmount decimal.Decimal `json:"reference_amount"`
	Contribution    decimal.Decimal `json:"contribution"`
	FunderIndex     int             `json:"funder_index"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DepositFromDomain converts a domain deposit to response.
func DepositFromDomain(d *domain.Deposit) *DepositResponse {
	return &DepositResponse{
		LedgerID:        d.LedgerID,
		Funder:          d.Funder,
		Amount:          d.Amount,
		ReferenceAmount: d.ReferenceAmount,
		Contribution:    d.Contribution,
		FunderIndex:     d.FunderIndex,
		CreatedAt:       d.CreatedAt,
	}
}

// WithdrawalResponse represents a completed withdrawal.
type WithdrawalResponse struct {
	LedgerID     string          `json:"ledger_id"`
	Owner        string          `json:"owner"`
	Amount       decimal.Decimal `json:"amount"`
	PayoutID     string          `json:"payout_id"`
	Contributors []string        `json:"contributors"`
	WithdrawnAt  time.Time       `json:"withdrawn_at"`
}

// WithdrawalFromDomain converts a domain withdrawal to response.
func WithdrawalFromDomain(w *domain.Withdrawal) *WithdrawalResponse {
	contributors := w.Contributors
	if contributors == nil {
		contributors = []string{}
	}

	return &WithdrawalResponse{
		LedgerID:     w.LedgerID,
		Owner:        w.Owner,
		Amount:       w.Amount,
		PayoutID:     w.PayoutID,
		Contributors: contributors,
		WithdrawnAt:  w.WithdrawnAt,
	}
}

// AddressResponse wraps a single address, such as the owner or price feed.
type AddressResponse struct {
	Address string `json:"address"`
}

// FunderResponse is one entry of the funder list.
type FunderResponse struct {
	Index  int    `json:"index"`
	Funder string `json:"funder"`
}

// FundersResponse is a page of the funder list.
type FundersResponse struct {
	Funders []string `json:"funders"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// CountResponse wraps the funder list length.
type CountResponse struct {
	Count int `json:"count"`
}

// ContributionResponse is the recorded balance of one funder.
type ContributionResponse struct {
	Funder string          `json:"funder"`
	Amount decimal.Decimal `json:"amount"`
}

// ConversionResponse is the reference value of a native amount.
type ConversionResponse struct {
	Amount          decimal.Decimal `json:"amount"`
	ReferenceAmount decimal.Decimal `json:"reference_amount"`
	Price           decimal.Decimal `json:"price"`
	Decimals        int32           `json:"decimals"`
	Minimum         decimal.Decimal `json:"minimum"`
	MeetsMinimum    bool            `json:"meets_minimum"`
}

// ConsistencyResponse is the outcome of a consistency check.
type ConsistencyResponse struct {
	Status             string          `json:"status"`
	Consistent         bool            `json:"consistent"`
	HeldBalance        decimal.Decimal `json:"held_balance"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	Difference         decimal.Decimal `json:"difference"`
	CheckedAt          time.Time       `json:"checked_at"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}

	return &ConsistencyResponse{
		Status:             status,
		Consistent:         r.Consistent,
		HeldBalance:        r.HeldBalance,
		TotalContributions: r.TotalContributions,
		Difference:         r.Difference,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
