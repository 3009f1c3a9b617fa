package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// LedgerUseCase exposes read-only views over transfer records.
type LedgerUseCase struct {
	cfg         TransferConfig
	accountRepo AccountRepository
	recordRepo  RecordRepository
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg TransferConfig, accountRepo AccountRepository, recordRepo RecordRepository) *LedgerUseCase {
	return &LedgerUseCase{
		cfg:         cfg.withDefaults(),
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		now:         time.Now,
	}
}

// ListRecordsInput represents input for listing records.
type ListRecordsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListRecords lists records sent or received by an account, newest first.
func (uc *LedgerUseCase) ListRecords(ctx context.Context, input ListRecordsInput) ([]*domain.Record, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.recordRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// DailyUsage describes how much of the daily limit an account has used.
type DailyUsage struct {
	AccountID   string
	DailyLimit  decimal.Decimal
	SentToday   decimal.Decimal
	Remaining   decimal.Decimal
	WindowStart time.Time
	WindowEnd   time.Time
}

// GetDailyUsage reports today's sent total for an active account.
func (uc *LedgerUseCase) GetDailyUsage(ctx context.Context, accountID string) (*DailyUsage, error) {
	if _, err := uc.accountRepo.GetActiveByID(ctx, accountID); err != nil {
		return nil, err
	}

	start, end := uc.cfg.dayWindow(uc.now())

	sent, err := uc.recordRepo.SumSent(ctx, nil, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum sent today: %w", err)
	}

	remaining := uc.cfg.DailyLimit.Sub(sent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &DailyUsage{
		AccountID:   accountID,
		DailyLimit:  uc.cfg.DailyLimit,
		SentToday:   sent,
		Remaining:   remaining,
		WindowStart: start,
		WindowEnd:   end,
	}, nil
}
