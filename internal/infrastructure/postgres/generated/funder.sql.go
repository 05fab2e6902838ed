package generated

import (
	"context"
)

const appendFunder = `-- name: AppendFunder :one
INSERT INTO funders (ledger_id, position, funder)
SELECT $1, COALESCE(MAX(position) + 1, 0), $2 FROM funders WHERE ledger_id = $1
RETURNING position
`

type AppendFunderParams struct {
	LedgerID string `json:"ledger_id"`
	Funder   string `json:"funder"`
}

func (q *Queries) AppendFunder(ctx context.Context, arg AppendFunderParams) (int32, error) {
	row := q.db.QueryRow(ctx, appendFunder, arg.LedgerID, arg.Funder)
	var position int32
	err := row.Scan(&position)
	return position, err
}

const countFunders = `-- name: CountFunders :one
SELECT COUNT(*) FROM funders WHERE ledger_id = $1
`

func (q *Queries) CountFunders(ctx context.Context, ledgerID string) (int64, error) {
	row := q.db.QueryRow(ctx, countFunders, ledgerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getFunderAt = `-- name: GetFunderAt :one
SELECT funder FROM funders WHERE ledger_id = $1 AND position = $2
`

type GetFunderAtParams struct {
	LedgerID string `json:"ledger_id"`
	Position int32  `json:"position"`
}

func (q *Queries) GetFunderAt(ctx context.Context, arg GetFunderAtParams) (string, error) {
	row := q.db.QueryRow(ctx, getFunderAt, arg.LedgerID, arg.Position)
	var funder string
	err := row.Scan(&funder)
	return funder, err
}

const listFunders = `-- name: ListFunders :many
SELECT funder FROM funders WHERE ledger_id = $1 ORDER BY position LIMIT $2 OFFSET $3
`

type ListFundersParams struct {
	LedgerID string `json:"ledger_id"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListFunders(ctx context.Context, arg ListFundersParams) ([]string, error) {
	rows, err := q.db.Query(ctx, listFunders, arg.LedgerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var funder string
		if err := rows.Scan(&funder); err != nil {
			return nil, err
		}
		items = append(items, funder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAllFunders = `-- name: ListAllFunders :many
SELECT funder FROM funders WHERE ledger_id = $1 ORDER BY position
`

func (q *Queries) ListAllFunders(ctx context.Context, ledgerID string) ([]string, error) {
	rows, err := q.db.Query(ctx, listAllFunders, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var funder string
		if err := rows.Scan(&funder); err != nil {
			return nil, err
		}
		items = append(items, funder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const clearFunders = `-- name: ClearFunders :exec
DELETE FROM funders WHERE ledger_id = $1
`

func (q *Queries) ClearFunders(ctx context.Context, ledgerID string) error {
	_, err := q.db.Exec(ctx, clearFunders, ledgerID)
	return err
}
