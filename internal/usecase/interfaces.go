package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// AccountRepository is the account store. Balance mutations are single
// conditional updates; a false result means no row matched the condition.
// A nil tx runs the statement outside any transaction.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetActiveByID(ctx context.Context, id string) (*domain.Account, error)
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	ConditionalDebit(ctx context.Context, tx Transaction, id string, amount decimal.Decimal, updatedAt time.Time) (bool, error)
	Credit(ctx context.Context, tx Transaction, id string, amount decimal.Decimal, updatedAt time.Time) (bool, error)
}

// OwnerRepository defines data access for owners.
type OwnerRepository interface {
	Create(ctx context.Context, owner *domain.Owner) error
	GetByID(ctx context.Context, id string) (*domain.Owner, error)
}

// RecordRepository defines data access for the append-only transfer records.
type RecordRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.Record) error
	// SumSent returns the total amount (charges excluded) sent by accountID
	// in [from, to). A nil tx reads outside any transaction.
	SumSent(ctx context.Context, tx Transaction, accountID string, from, to time.Time) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Record, error)
}

// ApprovalGateway is the external yes/no gate every transfer must pass.
// An error means the gateway could not be asked, not that it said no.
type ApprovalGateway interface {
	Approve(ctx context.Context) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AccountCache holds read-through copies of active accounts.
// Get returns (nil, nil) on a miss. Every Invalidate bumps the account's
// version, and Set stores nothing when the version differs from the one
// read before the store lookup.
type AccountCache interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	Version(ctx context.Context, id string) (int64, error)
	Set(ctx context.Context, account *domain.Account, version int64) error
	Invalidate(ctx context.Context, ids ...string) error
}

// MetricsRecorder receives operation outcomes.
type MetricsRecorder interface {
	RecordTransfer(state domain.TransferState, reason string, elapsed time.Duration)
	RecordApproval(approved bool, elapsed time.Duration)
	RecordAccountOperation(operation string, ok bool)
}
