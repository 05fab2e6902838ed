package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedger = `-- name: CreateLedger :one
INSERT INTO ledgers (id, owner, price_feed, balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, owner, price_feed, balance, pending_payout, created_at, updated_at
`

type CreateLedgerParams struct {
	ID        string             `json:"id"`
	Owner     string             `json:"owner"`
	PriceFeed string             `json:"price_feed"`
	Balance   pgtype.Numeric     `json:"balance"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLedger(ctx context.Context, arg CreateLedgerParams) (Ledger, error) {
	row := q.db.QueryRow(ctx, createLedger,
		arg.ID,
		arg.Owner,
		arg.PriceFeed,
		arg.Balance,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Ledger
	err := row.Scan(
		&i.ID,
		&i.Owner,
		&i.PriceFeed,
		&i.Balance,
		&i.PendingPayout,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLedgerByID = `-- name: GetLedgerByID :one
SELECT id, owner, price_feed, balance, pending_payout, created_at, updated_at FROM ledgers WHERE id = $1
`

func (q *Queries) GetLedgerByID(ctx context.Context, id string) (Ledger, error) {
	row := q.db.QueryRow(ctx, getLedgerByID, id)
	var i Ledger
	err := row.Scan(
		&i.ID,
		&i.Owner,
		&i.PriceFeed,
		&i.Balance,
		&i.PendingPayout,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLedgerByIDForUpdate = `-- name: GetLedgerByIDForUpdate :one
SELECT id, owner, price_feed, balance, pending_payout, created_at, updated_at FROM ledgers WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLedgerByIDForUpdate(ctx context.Context, id string) (Ledger, error) {
	row := q.db.QueryRow(ctx, getLedgerByIDForUpdate, id)
	var i Ledger
	err := row.Scan(
		&i.ID,
		&i.Owner,
		&i.PriceFeed,
		&i.Balance,
		&i.PendingPayout,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateLedgerBalance = `-- name: UpdateLedgerBalance :exec
UPDATE ledgers SET balance = $2, updated_at = $3 WHERE id = $1
`

type UpdateLedgerBalanceParams struct {
	ID        string             `json:"id"`
	Balance   pgtype.Numeric     `json:"balance"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLedgerBalance(ctx context.Context, arg UpdateLedgerBalanceParams) error {
	_, err := q.db.Exec(ctx, updateLedgerBalance, arg.ID, arg.Balance, arg.UpdatedAt)
	return err
}

const setLedgerPendingPayout = `-- name: SetLedgerPendingPayout :exec
UPDATE ledgers SET pending_payout = $2, updated_at = $3 WHERE id = $1
`

type SetLedgerPendingPayoutParams struct {
	ID            string             `json:"id"`
	PendingPayout string             `json:"pending_payout"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) SetLedgerPendingPayout(ctx context.Context, arg SetLedgerPendingPayoutParams) error {
	_, err := q.db.Exec(ctx, setLedgerPendingPayout, arg.ID, arg.PendingPayout, arg.UpdatedAt)
	return err
}

const checkLedgerConsistency = `-- name: CheckLedgerConsistency :one
SELECT
    l.balance::NUMERIC AS held_balance,
    COALESCE(SUM(c.amount), 0)::NUMERIC AS total_contributions
FROM ledgers l
LEFT JOIN contributions c ON c.ledger_id = l.id
WHERE l.id = $1
GROUP BY l.balance
`

type CheckLedgerConsistencyRow struct {
	HeldBalance        pgtype.Numeric `json:"held_balance"`
	TotalContributions pgtype.Numeric `json:"total_contributions"`
}

func (q *Queries) CheckLedgerConsistency(ctx context.Context, id string) (CheckLedgerConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkLedgerConsistency, id)
	var i CheckLedgerConsistencyRow
	err := row.Scan(&i.HeldBalance, &i.TotalContributions)
	return i, err
}
