package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
	"github.com/iho/gobank/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		OwnerID:   account.OwnerID,
		Balance:   decimalToNumeric(account.Balance),
		Active:    account.Active,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})

	return err
}

// GetActiveByID retrieves an active account by ID.
func (r *AccountRepository) GetActiveByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetActiveAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// Deactivate marks an account inactive. Missing or inactive accounts are
// left untouched.
func (r *AccountRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	return r.queries.DeactivateAccount(ctx, generated.DeactivateAccountParams{
		ID:        id,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// ConditionalDebit subtracts amount in a single UPDATE guarded by the
// balance and active checks. It reports false when no row qualified.
func (r *AccountRepository) ConditionalDebit(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) (bool, error) {
	n, err := queriesFor(r.queries, tx).DebitAccount(ctx, generated.DebitAccountParams{
		ID:        id,
		Amount:    decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

// Credit adds amount to an active account.
func (r *AccountRepository) Credit(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) (bool, error) {
	n, err := queriesFor(r.queries, tx).CreditAccount(ctx, generated.CreditAccountParams{
		ID:        id,
		Amount:    decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Balance:   numericToDecimal(row.Balance),
		Active:    row.Active,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
