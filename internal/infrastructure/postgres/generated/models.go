package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Contribution struct {
	LedgerID  string             `json:"ledger_id"`
	Funder    string             `json:"funder"`
	Amount    pgtype.Numeric     `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Funder struct {
	LedgerID string `json:"ledger_id"`
	Position int32  `json:"position"`
	Funder   string `json:"funder"`
}

type Ledger struct {
	ID            string             `json:"id"`
	Owner         string             `json:"owner"`
	PriceFeed     string             `json:"price_feed"`
	Balance       pgtype.Numeric     `json:"balance"`
	PendingPayout string             `json:"pending_payout"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}
