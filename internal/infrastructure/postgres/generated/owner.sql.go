package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOwner = `-- name: CreateOwner :one
INSERT INTO owners (id, name, created_at)
VALUES ($1, $2, $3)
RETURNING id, name, created_at
`

type CreateOwnerParams struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateOwner(ctx context.Context, arg CreateOwnerParams) (Owner, error) {
	row := q.db.QueryRow(ctx, createOwner, arg.ID, arg.Name, arg.CreatedAt)
	var i Owner
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const getOwnerByID = `-- name: GetOwnerByID :one
SELECT id, name, created_at FROM owners WHERE id = $1
`

func (q *Queries) GetOwnerByID(ctx context.Context, id string) (Owner, error) {
	row := q.db.QueryRow(ctx, getOwnerByID, id)
	var i Owner
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}
