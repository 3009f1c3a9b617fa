package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
)

// OwnerRepository implements usecase.OwnerRepository.
type OwnerRepository struct {
	queries *generated.Queries
}

// NewOwnerRepository creates a new OwnerRepository.
func NewOwnerRepository(db generated.DBTX) *OwnerRepository {
	return &OwnerRepository{queries: generated.New(db)}
}

// Create creates a new owner.
func (r *OwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	_, err := r.queries.CreateOwner(ctx, generated.CreateOwnerParams{
		ID:        owner.ID,
		Name:      owner.Name,
		CreatedAt: timeToPgTimestamptz(owner.CreatedAt),
	})

	return err
}

// GetByID retrieves an owner by ID.
func (r *OwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	row, err := r.queries.GetOwnerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOwnerNotFound
		}

		return nil, err
	}

	return &domain.Owner{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}
