package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobank/internal/adapter/repository/postgres"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/testutil"
	"github.com/iho/gobank/internal/usecase"
	"github.com/iho/gobank/internal/usecase/mocks"
)

type bankHarness struct {
	db       *testutil.TestDB
	accounts *postgres.AccountRepository
	records  *postgres.RecordRepository
	uc       *usecase.TransferUseCase
}

func newBankHarness(t *testing.T, isolation pgx.TxIsoLevel) *bankHarness {
	t.Helper()

	db := testutil.NewTestDB(t)
	db.TruncateAll(context.Background())

	accounts := postgres.NewAccountRepository(db.Pool)
	records := postgres.NewRecordRepository(db.Pool)

	cfg := usecase.DefaultTransferConfig()
	cfg.Location = time.UTC

	uc := usecase.NewTransferUseCase(
		cfg,
		postgres.NewTxManager(db.Pool, isolation),
		accounts,
		records,
		&mocks.StaticApproval{Approved: true},
		postgres.NewULIDGenerator(),
		usecase.WithRetrier(postgres.NewRetrier(20)),
	)

	return &bankHarness{db: db, accounts: accounts, records: records, uc: uc}
}

func (h *bankHarness) transfer(t *testing.T, from, to string, amount int64) *usecase.TransferResult {
	t.Helper()

	result, err := h.uc.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        decimal.NewFromInt(amount),
	})
	require.NoError(t, err)

	return result
}

func (h *bankHarness) requireBalance(t *testing.T, id string, want int64) {
	t.Helper()

	got := h.db.Balance(context.Background(), id)
	require.Truef(t, got.Equal(decimal.NewFromInt(want)), "balance: got %s, want %d", got, want)
}

func TestIntegrationSameOwnerTransfer(t *testing.T) {
	h := newBankHarness(t, pgx.ReadCommitted)
	ctx := context.Background()

	owner := h.db.CreateTestOwner(ctx, "alice")
	sender := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.NewFromInt(1_000_000))
	recipient := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)

	result := h.transfer(t, sender.ID, recipient.ID, 8_000)

	require.True(t, result.Success())
	h.requireBalance(t, sender.ID, 992_000)
	h.requireBalance(t, recipient.ID, 8_000)

	records, err := h.records.ListByAccount(ctx, sender.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Charge.IsZero())
}

func TestIntegrationInsufficientDeposit(t *testing.T) {
	h := newBankHarness(t, pgx.ReadCommitted)
	ctx := context.Background()

	owner := h.db.CreateTestOwner(ctx, "alice")
	sender := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.NewFromInt(5_000))
	recipient := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)

	result := h.transfer(t, sender.ID, recipient.ID, 6_000)

	require.False(t, result.Success())
	assert.Equal(t, domain.ReasonInsufficientDeposit, result.Reason)
	h.requireBalance(t, sender.ID, 5_000)
	h.requireBalance(t, recipient.ID, 0)
}

func TestIntegrationCrossOwnerExactBalance(t *testing.T) {
	h := newBankHarness(t, pgx.ReadCommitted)
	ctx := context.Background()

	alice := h.db.CreateTestOwner(ctx, "alice")
	bob := h.db.CreateTestOwner(ctx, "bob")
	sender := h.db.CreateTestAccountWithBalance(ctx, alice.ID, decimal.NewFromInt(4_000))
	recipient := h.db.CreateTestAccountWithBalance(ctx, bob.ID, decimal.Zero)

	result := h.transfer(t, sender.ID, recipient.ID, 4_000)

	require.False(t, result.Success())
	h.requireBalance(t, sender.ID, 4_000)
	h.requireBalance(t, recipient.ID, 0)

	result = h.transfer(t, sender.ID, recipient.ID, 3_900)
	require.True(t, result.Success())
	h.requireBalance(t, sender.ID, 0)
	h.requireBalance(t, recipient.ID, 3_900)
}

func TestIntegrationConcurrentOverdraft(t *testing.T) {
	h := newBankHarness(t, pgx.ReadCommitted)
	ctx := context.Background()

	owner := h.db.CreateTestOwner(ctx, "alice")
	sender := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.NewFromInt(8_000))
	recipient := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)

	amounts := []int64{5_000, 4_000}
	results := make([]*usecase.TransferResult, len(amounts))
	errs := make([]error, len(amounts))

	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = h.uc.Transfer(ctx, usecase.TransferInput{
				FromAccountID: sender.ID,
				ToAccountID:   recipient.ID,
				Amount:        decimal.NewFromInt(amount),
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	var moved int64
	for i, r := range results {
		require.NoError(t, errs[i])
		if r.Success() {
			succeeded++
			moved = amounts[i]
		}
	}

	require.Equal(t, 1, succeeded)
	h.requireBalance(t, sender.ID, 8_000-moved)
	h.requireBalance(t, recipient.ID, moved)
}

func TestIntegrationDailyLimitWithBackdating(t *testing.T) {
	h := newBankHarness(t, pgx.ReadCommitted)
	ctx := context.Background()

	owner := h.db.CreateTestOwner(ctx, "alice")
	sender := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)
	recipient := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)

	ok, err := h.accounts.Credit(ctx, nil, sender.ID, decimal.NewFromInt(20_000), time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	first := h.transfer(t, sender.ID, recipient.ID, 6_000)
	require.True(t, first.Success())

	second := h.transfer(t, sender.ID, recipient.ID, 5_000)
	require.False(t, second.Success())
	assert.Equal(t, domain.ReasonDailyLimitExceeded, second.Reason)

	h.db.BackdateRecord(ctx, first.Record.ID, 24*time.Hour)

	third := h.transfer(t, sender.ID, recipient.ID, 5_000)
	require.True(t, third.Success())
	h.requireBalance(t, sender.ID, 9_000)
}

func TestIntegrationDeactivatedRecipient(t *testing.T) {
	h := newBankHarness(t, pgx.ReadCommitted)
	ctx := context.Background()

	owner := h.db.CreateTestOwner(ctx, "alice")
	sender := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.NewFromInt(1_000))
	recipient := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)

	require.NoError(t, h.accounts.Deactivate(ctx, recipient.ID, time.Now()))
	require.NoError(t, h.accounts.Deactivate(ctx, recipient.ID, time.Now()))

	result := h.transfer(t, sender.ID, recipient.ID, 100)

	require.False(t, result.Success())
	assert.Equal(t, domain.ReasonRecipientNotFound, result.Reason)
	h.requireBalance(t, sender.ID, 1_000)
}

func TestIntegrationSerializableClosesDailyLimitRace(t *testing.T) {
	h := newBankHarness(t, pgx.Serializable)
	ctx := context.Background()

	owner := h.db.CreateTestOwner(ctx, "alice")
	sender := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.NewFromInt(50_000))
	recipient := h.db.CreateTestAccountWithBalance(ctx, owner.ID, decimal.Zero)

	const workers = 8

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Retries can be exhausted under heavy contention; that is a
			// failed transfer, not a limit breach.
			_, _ = h.uc.Transfer(ctx, usecase.TransferInput{
				FromAccountID: sender.ID,
				ToAccountID:   recipient.ID,
				Amount:        decimal.NewFromInt(3_000),
			})
		}()
	}
	wg.Wait()

	sent, err := h.records.SumSent(ctx, nil, sender.ID, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, sent.LessThanOrEqual(decimal.NewFromInt(10_000)), "sent %s exceeds the daily limit", sent)

	received := h.db.Balance(ctx, recipient.ID)
	assert.True(t, received.Equal(sent))
	assert.True(t, h.db.Balance(ctx, sender.ID).Equal(decimal.NewFromInt(50_000).Sub(sent)))
}
