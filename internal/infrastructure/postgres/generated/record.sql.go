package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createRecord = `-- name: CreateRecord :one
INSERT INTO records (id, from_account_id, to_account_id, amount, charge, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, from_account_id, to_account_id, amount, charge, created_at
`

type CreateRecordParams struct {
	ID            string             `json:"id"`
	FromAccountID string             `json:"from_account_id"`
	ToAccountID   string             `json:"to_account_id"`
	Amount        pgtype.Numeric     `json:"amount"`
	Charge        pgtype.Numeric     `json:"charge"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) (Record, error) {
	row := q.db.QueryRow(ctx, createRecord,
		arg.ID,
		arg.FromAccountID,
		arg.ToAccountID,
		arg.Amount,
		arg.Charge,
		arg.CreatedAt,
	)
	var i Record
	err := row.Scan(
		&i.ID,
		&i.FromAccountID,
		&i.ToAccountID,
		&i.Amount,
		&i.Charge,
		&i.CreatedAt,
	)
	return i, err
}

const listRecordsByAccount = `-- name: ListRecordsByAccount :many
SELECT id, from_account_id, to_account_id, amount, charge, created_at FROM records
WHERE from_account_id = $1 OR to_account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListRecordsByAccountParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

func (q *Queries) ListRecordsByAccount(ctx context.Context, arg ListRecordsByAccountParams) ([]Record, error) {
	rows, err := q.db.Query(ctx, listRecordsByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Record
	for rows.Next() {
		var i Record
		if err := rows.Scan(
			&i.ID,
			&i.FromAccountID,
			&i.ToAccountID,
			&i.Amount,
			&i.Charge,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumSentBetween = `-- name: SumSentBetween :one
SELECT COALESCE(SUM(amount), 0)::NUMERIC(20, 2) AS total FROM records
WHERE from_account_id = $1 AND created_at >= $2 AND created_at < $3
`

type SumSentBetweenParams struct {
	FromAccountID string             `json:"from_account_id"`
	WindowStart   pgtype.Timestamptz `json:"window_start"`
	WindowEnd     pgtype.Timestamptz `json:"window_end"`
}

func (q *Queries) SumSentBetween(ctx context.Context, arg SumSentBetweenParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumSentBetween, arg.FromAccountID, arg.WindowStart, arg.WindowEnd)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
