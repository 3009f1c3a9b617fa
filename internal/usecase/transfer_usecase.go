package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// TransferUseCase moves money between accounts under the daily limit,
// cross-owner charge and approval rules.
type TransferUseCase struct {
	cfg         TransferConfig
	txManager   TransactionManager
	accountRepo AccountRepository
	recordRepo  RecordRepository
	approval    ApprovalGateway
	idGen       IDGenerator
	retrier     Retrier
	cache       AccountCache
	metrics     MetricsRecorder
	now         func() time.Time
}

// TransferOption configures optional TransferUseCase collaborators.
type TransferOption func(*TransferUseCase)

// WithRetrier re-runs the transactional part on retryable database errors.
func WithRetrier(r Retrier) TransferOption {
	return func(uc *TransferUseCase) { uc.retrier = r }
}

// WithTransferCache invalidates cached accounts after each committed transfer.
func WithTransferCache(c AccountCache) TransferOption {
	return func(uc *TransferUseCase) { uc.cache = c }
}

// WithTransferMetrics reports transfer and approval outcomes.
func WithTransferMetrics(m MetricsRecorder) TransferOption {
	return func(uc *TransferUseCase) { uc.metrics = m }
}

// WithTransferClock overrides the clock used for records and day windows.
func WithTransferClock(now func() time.Time) TransferOption {
	return func(uc *TransferUseCase) { uc.now = now }
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	cfg TransferConfig,
	txManager TransactionManager,
	accountRepo AccountRepository,
	recordRepo RecordRepository,
	approval ApprovalGateway,
	idGen IDGenerator,
	opts ...TransferOption,
) *TransferUseCase {
	uc := &TransferUseCase{
		cfg:         cfg.withDefaults(),
		txManager:   txManager,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		approval:    approval,
		idGen:       idGen,
		retrier:     noRetry{},
		metrics:     noMetrics{},
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// TransferResult is the outcome of a transfer that did not fail.
// A rejected result carries the reason to show the caller.
type TransferResult struct {
	State  domain.TransferState
	Kind   domain.RejectionKind
	Reason string
	Charge decimal.Decimal
	Record *domain.Record
}

// Success reports whether the transfer was committed.
func (r *TransferResult) Success() bool {
	return r.State == domain.TransferCommitted
}

func rejected(rej *domain.Rejection, charge decimal.Decimal) *TransferResult {
	return &TransferResult{
		State:  domain.TransferRejected,
		Kind:   rej.Kind,
		Reason: rej.Reason,
		Charge: charge,
	}
}

// Transfer executes one transfer. Business rejections and approval denials
// come back as a rejected TransferResult with a nil error. Any returned error
// is an infrastructure failure and nothing was committed.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	started := time.Now()

	logger := zerolog.Ctx(ctx).With().
		Str("from_account_id", input.FromAccountID).
		Str("to_account_id", input.ToAccountID).
		Str("amount", input.Amount.String()).
		Logger()
	ctx = logger.WithContext(ctx)

	result, err := uc.transfer(ctx, input)

	switch {
	case err != nil:
		if !errors.Is(err, domain.ErrInvalidAmount) {
			logger.Error().Err(err).Str("state", string(domain.TransferFailed)).Msg("transfer failed")
		}
		uc.metrics.RecordTransfer(domain.TransferFailed, "", time.Since(started))
	case result.Success():
		logger.Info().Str("record_id", result.Record.ID).Str("charge", result.Charge.String()).Msg("transfer committed")
		uc.metrics.RecordTransfer(domain.TransferCommitted, "", time.Since(started))
	default:
		logger.Info().Str("kind", string(result.Kind)).Str("reason", result.Reason).Msg("transfer rejected")
		uc.metrics.RecordTransfer(domain.TransferRejected, result.Reason, time.Since(started))
	}

	return result, err
}

func (uc *TransferUseCase) transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	logger := zerolog.Ctx(ctx)

	logger.Debug().Str("state", string(domain.TransferValidating)).Msg("transfer state")

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(uc.cfg.DailyLimit) {
		return rejected(domain.ErrDailyLimitExceeded, decimal.Zero), nil
	}

	from, err := uc.accountRepo.GetActiveByID(ctx, input.FromAccountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return rejected(domain.ErrSenderNotFound, decimal.Zero), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup sender: %w", err)
	}

	to, err := uc.accountRepo.GetActiveByID(ctx, input.ToAccountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return rejected(domain.ErrRecipientNotFound, decimal.Zero), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}

	logger.Debug().Str("state", string(domain.TransferLimitChecking)).Msg("transfer state")

	charge := domain.ComputeCharge(from, to, uc.cfg.CrossOwnerCharge)

	logger.Debug().Str("state", string(domain.TransferAwaitingApproval)).Msg("transfer state")

	approvalStarted := time.Now()
	approved, err := uc.approval.Approve(ctx)
	if err != nil {
		return nil, fmt.Errorf("approval gateway: %w", err)
	}
	uc.metrics.RecordApproval(approved, time.Since(approvalStarted))

	if !approved {
		return rejected(domain.ErrNotApproved, charge), nil
	}

	logger.Debug().Str("state", string(domain.TransferInTransaction)).Msg("transfer state")

	record, err := uc.execute(ctx, from.ID, to.ID, input.Amount, charge)
	if err != nil {
		if rej, ok := domain.AsRejection(err); ok {
			return rejected(rej, charge), nil
		}
		return nil, err
	}

	invalidateAccounts(ctx, uc.cache, from.ID, to.ID)

	return &TransferResult{
		State:  domain.TransferCommitted,
		Charge: charge,
		Record: record,
	}, nil
}

// execute runs the atomic unit. It is detached from the caller's
// cancellation: once started it runs to commit or rollback.
func (uc *TransferUseCase) execute(ctx context.Context, fromID, toID string, amount, charge decimal.Decimal) (*domain.Record, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.TransactionTimeout)
	defer cancel()

	var record *domain.Record

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		record, err = uc.executeOnce(ctx, fromID, toID, amount, charge)
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (uc *TransferUseCase) executeOnce(ctx context.Context, fromID, toID string, amount, charge decimal.Decimal) (*domain.Record, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := uc.now()

	// Plain read, not locked: concurrent transfers from one sender can both
	// pass this check under read committed isolation.
	dayStart, dayEnd := uc.cfg.dayWindow(now)

	sent, err := uc.recordRepo.SumSent(ctx, tx, fromID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("sum sent today: %w", err)
	}

	if sent.Add(amount).GreaterThan(uc.cfg.DailyLimit) {
		return nil, domain.ErrDailyLimitExceeded
	}

	debited, err := uc.accountRepo.ConditionalDebit(ctx, tx, fromID, amount.Add(charge), now)
	if err != nil {
		return nil, fmt.Errorf("debit sender: %w", err)
	}
	if !debited {
		return nil, domain.ErrInsufficientDeposit
	}

	credited, err := uc.accountRepo.Credit(ctx, tx, toID, amount, now)
	if err != nil {
		return nil, fmt.Errorf("credit recipient: %w", err)
	}
	if !credited {
		return nil, domain.ErrRecipientNotFound
	}

	record := &domain.Record{
		ID:            uc.idGen.Generate(),
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		Charge:        charge,
		CreatedAt:     now,
	}

	if err := uc.recordRepo.Create(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("append record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	return record, nil
}
