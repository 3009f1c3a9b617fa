package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (id, owner_id, balance, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, owner_id, balance, active, created_at, updated_at
`

type CreateAccountParams struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	Balance   pgtype.Numeric     `json:"balance"`
	Active    bool               `json:"active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, createAccount,
		arg.ID,
		arg.OwnerID,
		arg.Balance,
		arg.Active,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Balance,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const creditAccount = `-- name: CreditAccount :execrows
UPDATE accounts
SET balance = balance + $2, updated_at = $3
WHERE id = $1 AND active
`

type CreditAccountParams struct {
	ID        string             `json:"id"`
	Amount    pgtype.Numeric     `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreditAccount(ctx context.Context, arg CreditAccountParams) (int64, error) {
	result, err := q.db.Exec(ctx, creditAccount, arg.ID, arg.Amount, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deactivateAccount = `-- name: DeactivateAccount :exec
UPDATE accounts
SET active = FALSE, updated_at = $2
WHERE id = $1 AND active
`

type DeactivateAccountParams struct {
	ID        string             `json:"id"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) DeactivateAccount(ctx context.Context, arg DeactivateAccountParams) error {
	_, err := q.db.Exec(ctx, deactivateAccount, arg.ID, arg.UpdatedAt)
	return err
}

const debitAccount = `-- name: DebitAccount :execrows
UPDATE accounts
SET balance = balance - $2, updated_at = $3
WHERE id = $1 AND active AND balance >= $2
`

type DebitAccountParams struct {
	ID        string             `json:"id"`
	Amount    pgtype.Numeric     `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) DebitAccount(ctx context.Context, arg DebitAccountParams) (int64, error) {
	result, err := q.db.Exec(ctx, debitAccount, arg.ID, arg.Amount, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getActiveAccountByID = `-- name: GetActiveAccountByID :one
SELECT id, owner_id, balance, active, created_at, updated_at FROM accounts
WHERE id = $1 AND active
`

func (q *Queries) GetActiveAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRow(ctx, getActiveAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Balance,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
