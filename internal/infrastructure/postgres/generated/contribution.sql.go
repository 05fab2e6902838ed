package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getContribution = `-- name: GetContribution :one
SELECT amount FROM contributions WHERE ledger_id = $1 AND funder = $2
`

type GetContributionParams struct {
	LedgerID string `json:"ledger_id"`
	Funder   string `json:"funder"`
}

func (q *Queries) GetContribution(ctx context.Context, arg GetContributionParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getContribution, arg.LedgerID, arg.Funder)
	var amount pgtype.Numeric
	err := row.Scan(&amount)
	return amount, err
}

const addContribution = `-- name: AddContribution :one
INSERT INTO contributions (ledger_id, funder, amount, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (ledger_id, funder)
DO UPDATE SET amount = contributions.amount + EXCLUDED.amount, updated_at = EXCLUDED.updated_at
RETURNING amount
`

type AddContributionParams struct {
	LedgerID  string             `json:"ledger_id"`
	Funder    string             `json:"funder"`
	Amount    pgtype.Numeric     `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) AddContribution(ctx context.Context, arg AddContributionParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, addContribution,
		arg.LedgerID,
		arg.Funder,
		arg.Amount,
		arg.UpdatedAt,
	)
	var amount pgtype.Numeric
	err := row.Scan(&amount)
	return amount, err
}

const resetContribution = `-- name: ResetContribution :exec
UPDATE contributions SET amount = 0, updated_at = $3 WHERE ledger_id = $1 AND funder = $2
`

type ResetContributionParams struct {
	LedgerID  string             `json:"ledger_id"`
	Funder    string             `json:"funder"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) ResetContribution(ctx context.Context, arg ResetContributionParams) error {
	_, err := q.db.Exec(ctx, resetContribution, arg.LedgerID, arg.Funder, arg.UpdatedAt)
	return err
}
