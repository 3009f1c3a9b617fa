package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultDailyTransferLimit caps both a single transfer and the sum sent per day.
	DefaultDailyTransferLimit = "10000"

	// DefaultCrossOwnerCharge is the flat fee for transfers between different owners.
	DefaultCrossOwnerCharge = "100"

	// CacheInvalidationTimeout bounds dropping cached accounts after a
	// committed change.
	CacheInvalidationTimeout = 2 * time.Second
)

// TransferConfig holds the business rules for the transfer engine.
type TransferConfig struct {
	DailyLimit         decimal.Decimal
	CrossOwnerCharge   decimal.Decimal
	Location           *time.Location // day boundaries; server local time when nil
	TransactionTimeout time.Duration
}

// DefaultTransferConfig returns the reference limits.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		DailyLimit:         decimal.RequireFromString(DefaultDailyTransferLimit),
		CrossOwnerCharge:   decimal.RequireFromString(DefaultCrossOwnerCharge),
		Location:           time.Local,
		TransactionTimeout: DefaultTransactionTimeout,
	}
}

func (c TransferConfig) withDefaults() TransferConfig {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.TransactionTimeout <= 0 {
		c.TransactionTimeout = DefaultTransactionTimeout
	}
	return c
}

// dayWindow returns today's [start, end) in the configured location.
func (c TransferConfig) dayWindow(now time.Time) (time.Time, time.Time) {
	return domain.DayWindow(now.In(c.Location))
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type noMetrics struct{}

func (noMetrics) RecordTransfer(domain.TransferState, string, time.Duration) {}
func (noMetrics) RecordApproval(bool, time.Duration)                         {}
func (noMetrics) RecordAccountOperation(string, bool)                        {}
