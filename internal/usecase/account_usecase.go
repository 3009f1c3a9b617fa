package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	ownerRepo   OwnerRepository
	idGen       IDGenerator
	cache       AccountCache
	metrics     MetricsRecorder
	now         func() time.Time
}

// AccountOption configures optional AccountUseCase collaborators.
type AccountOption func(*AccountUseCase)

// WithAccountCache serves GetAccount from c and invalidates it on mutation.
func WithAccountCache(c AccountCache) AccountOption {
	return func(uc *AccountUseCase) { uc.cache = c }
}

// WithAccountMetrics reports account operation outcomes.
func WithAccountMetrics(m MetricsRecorder) AccountOption {
	return func(uc *AccountUseCase) { uc.metrics = m }
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, ownerRepo OwnerRepository, idGen IDGenerator, opts ...AccountOption) *AccountUseCase {
	uc := &AccountUseCase{
		accountRepo: accountRepo,
		ownerRepo:   ownerRepo,
		idGen:       idGen,
		metrics:     noMetrics{},
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateAccountInput represents input for creating an account. OwnerID
// selects an existing owner; otherwise a new owner named OwnerName is created.
type CreateAccountInput struct {
	OwnerID   string
	OwnerName string
}

// CreateAccount creates a new, empty, active account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	ownerID, err := uc.resolveOwner(ctx, input)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		OwnerID:   ownerID,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	uc.metrics.RecordAccountOperation("create", true)

	return account, nil
}

func (uc *AccountUseCase) resolveOwner(ctx context.Context, input CreateAccountInput) (string, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID != "" {
		owner, err := uc.ownerRepo.GetByID(ctx, ownerID)
		if errors.Is(err, domain.ErrOwnerNotFound) {
			return "", fmt.Errorf("%w: %w", domain.ErrInvalidOwner, err)
		}
		if err != nil {
			return "", fmt.Errorf("lookup owner: %w", err)
		}
		return owner.ID, nil
	}

	if strings.TrimSpace(input.OwnerName) == "" {
		return "", domain.ErrInvalidOwner
	}

	if err := domain.ValidateOwnerName(input.OwnerName); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidOwner, err)
	}

	owner := &domain.Owner{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.OwnerName),
		CreatedAt: uc.now().UTC(),
	}

	if err := uc.ownerRepo.Create(ctx, owner); err != nil {
		return "", fmt.Errorf("create owner: %w", err)
	}

	return owner.ID, nil
}

// GetAccount retrieves an active account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	var version int64
	fill := uc.cache != nil

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", id).Msg("account cache read failed")
		}
		if cached != nil {
			return cached, nil
		}

		// Read before the store so a change committed during the lookup
		// keeps this copy out of the cache.
		version, err = uc.cache.Version(ctx, id)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", id).Msg("account cache version read failed")
			fill = false
		}
	}

	account, err := uc.accountRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := uc.cache.Set(ctx, account, version); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", id).Msg("account cache write failed")
		}
	}

	return account, nil
}

// DeactivateAccount soft-deletes an account. Deactivating a missing or
// already inactive account succeeds.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id string) error {
	if err := uc.accountRepo.Deactivate(ctx, id, uc.now().UTC()); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}

	invalidateAccounts(ctx, uc.cache, id)
	uc.metrics.RecordAccountOperation("deactivate", true)

	return nil
}

// Deposit adds amount to an active account.
func (uc *AccountUseCase) Deposit(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	ok, err := uc.accountRepo.Credit(ctx, nil, id, amount, uc.now().UTC())
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	uc.metrics.RecordAccountOperation("deposit", ok)

	if !ok {
		return domain.ErrAccountNotFound
	}

	invalidateAccounts(ctx, uc.cache, id)

	return nil
}

// Withdraw takes amount from an active account that holds at least amount.
func (uc *AccountUseCase) Withdraw(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	ok, err := uc.accountRepo.ConditionalDebit(ctx, nil, id, amount, uc.now().UTC())
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}

	uc.metrics.RecordAccountOperation("withdraw", ok)

	if !ok {
		return domain.ErrInsufficientFunds
	}

	invalidateAccounts(ctx, uc.cache, id)

	return nil
}

// invalidateAccounts drops cached copies after a committed change. It runs
// detached from the caller's cancellation since the change is already durable.
func invalidateAccounts(ctx context.Context, cache AccountCache, ids ...string) {
	if cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CacheInvalidationTimeout)
	defer cancel()

	if err := cache.Invalidate(ctx, ids...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Strs("account_ids", ids).Msg("account cache invalidation failed")
	}
}
