package domain

import "time"

// Event types
const (
	EventTypeLedgerDeployed  = "ledger.deployed"
	EventTypeLedgerFunded    = "ledger.funded"
	EventTypeLedgerWithdrawn = "ledger.withdrawn"
)

// Aggregate types
const (
	AggregateTypeLedger = "ledger"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LedgerFundedEvent payload
type LedgerFundedEvent struct {
	LedgerID        string `json:"ledger_id"`
	Funder          string `json:"funder"`
	Amount          string `json:"amount"`
	ReferenceAmount string `json:"reference_amount"`
}

// LedgerWithdrawnEvent payload
type LedgerWithdrawnEvent struct {
	LedgerID     string `json:"ledger_id"`
	Owner        string `json:"owner"`
	Amount       string `json:"amount"`
	PayoutID     string `json:"payout_id"`
	Contributors int    `json:"contributors"`
}

// ToPayload flattens the event for the outbox.
func (e LedgerFundedEvent) ToPayload() map[string]any {
	return map[string]any{
		"ledger_id":        e.LedgerID,
		"funder":           e.Funder,
		"amount":           e.Amount,
		"reference_amount": e.ReferenceAmount,
	}
}

// ToPayload flattens the event for the outbox.
func (e LedgerWithdrawnEvent) ToPayload() map[string]any {
	return map[string]any{
		"ledger_id":    e.LedgerID,
		"owner":        e.Owner,
		"amount":       e.Amount,
		"payout_id":    e.PayoutID,
		"contributors": e.Contributors,
	}
}
