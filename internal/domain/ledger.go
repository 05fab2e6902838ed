package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the funding pool: an immutable owner and price feed plus the
// native balance currently held in custody.
//
// PendingPayout holds the instruction id reserved by a withdraw that has not
// committed yet. A retried withdraw reuses it so custody pays at most once.
type Ledger struct {
	ID            string
	Owner         string
	PriceFeed     string
	Balance       decimal.Decimal
	PendingPayout string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOwner reports whether caller may withdraw.
func (l *Ledger) IsOwner(caller string) bool {
	return NormalizeAddress(caller) == l.Owner
}

// Credit returns the held balance after a deposit of amount.
func (l *Ledger) Credit(amount decimal.Decimal) decimal.Decimal {
	return l.Balance.Add(amount)
}

// Contribution is the accumulated deposit of one funder.
type Contribution struct {
	LedgerID  string
	Funder    string
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// Withdrawal describes a completed withdraw: what left custody and whose
// balances were reset.
type Withdrawal struct {
	LedgerID     string
	Owner        string
	Amount       decimal.Decimal
	PayoutID     string
	Contributors []string
	WithdrawnAt  time.Time
}

// Deposit is the outcome of a successful fund call.
type Deposit struct {
	LedgerID        string
	Funder          string
	Amount          decimal.Decimal
	ReferenceAmount decimal.Decimal
	Contribution    decimal.Decimal
	FunderIndex     int
	CreatedAt       time.Time
}
