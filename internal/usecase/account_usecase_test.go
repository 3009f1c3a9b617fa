package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
	"github.com/iho/gobank/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateAccountInput
		setupMocks  func(*mocks.MockAccountRepository, *mocks.MockOwnerRepository, *mocks.MockIDGenerator)
		wantOwner   string
		expectError error
	}{
		{
			name:  "existing owner",
			input: usecase.CreateAccountInput{OwnerID: "owner-1"},
			setupMocks: func(accRepo *mocks.MockAccountRepository, ownerRepo *mocks.MockOwnerRepository, idGen *mocks.MockIDGenerator) {
				ownerRepo.EXPECT().GetByID(gomock.Any(), "owner-1").Return(&domain.Owner{ID: "owner-1", Name: "Alice"}, nil)
				idGen.EXPECT().Generate().Return("acc-1")
				accRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantOwner: "owner-1",
		},
		{
			name:  "new owner by name",
			input: usecase.CreateAccountInput{OwnerName: "  Bob  "},
			setupMocks: func(accRepo *mocks.MockAccountRepository, ownerRepo *mocks.MockOwnerRepository, idGen *mocks.MockIDGenerator) {
				gomock.InOrder(
					idGen.EXPECT().Generate().Return("owner-2"),
					idGen.EXPECT().Generate().Return("acc-2"),
				)
				ownerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, owner *domain.Owner) error {
					if owner.Name != "Bob" {
						t.Errorf("expected trimmed owner name, got %q", owner.Name)
					}
					return nil
				})
				accRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantOwner: "owner-2",
		},
		{
			name:  "unknown owner id",
			input: usecase.CreateAccountInput{OwnerID: "missing"},
			setupMocks: func(accRepo *mocks.MockAccountRepository, ownerRepo *mocks.MockOwnerRepository, idGen *mocks.MockIDGenerator) {
				ownerRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrOwnerNotFound)
			},
			expectError: domain.ErrInvalidOwner,
		},
		{
			name:        "no owner information",
			input:       usecase.CreateAccountInput{},
			setupMocks:  func(*mocks.MockAccountRepository, *mocks.MockOwnerRepository, *mocks.MockIDGenerator) {},
			expectError: domain.ErrInvalidOwner,
		},
		{
			name:  "repository error",
			input: usecase.CreateAccountInput{OwnerID: "owner-1"},
			setupMocks: func(accRepo *mocks.MockAccountRepository, ownerRepo *mocks.MockOwnerRepository, idGen *mocks.MockIDGenerator) {
				ownerRepo.EXPECT().GetByID(gomock.Any(), "owner-1").Return(&domain.Owner{ID: "owner-1"}, nil)
				idGen.EXPECT().Generate().Return("acc-1")
				accRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			expectError: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			accRepo := mocks.NewMockAccountRepository(ctrl)
			ownerRepo := mocks.NewMockOwnerRepository(ctrl)
			idGen := mocks.NewMockIDGenerator(ctrl)
			tt.setupMocks(accRepo, ownerRepo, idGen)

			uc := usecase.NewAccountUseCase(accRepo, ownerRepo, idGen)
			account, err := uc.CreateAccount(context.Background(), tt.input)

			if tt.expectError != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if errors.Is(tt.expectError, domain.ErrInvalidOwner) && !errors.Is(err, domain.ErrInvalidOwner) {
					t.Errorf("expected %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.OwnerID != tt.wantOwner {
				t.Errorf("expected owner %q, got %q", tt.wantOwner, account.OwnerID)
			}
			if !account.Balance.IsZero() || !account.Active {
				t.Errorf("expected empty active account, got %+v", account)
			}
		})
	}
}

func TestAccountUseCase_GetAccount(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accRepo := mocks.NewMockAccountRepository(ctrl)
		cache := mocks.NewMockAccountCache(ctrl)

		cached := &domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(10), Active: true}
		cache.EXPECT().Get(gomock.Any(), "acc-1").Return(cached, nil)

		uc := usecase.NewAccountUseCase(accRepo, nil, nil, usecase.WithAccountCache(cache))
		got, err := uc.GetAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != cached {
			t.Errorf("expected cached account")
		}
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accRepo := mocks.NewMockAccountRepository(ctrl)
		cache := mocks.NewMockAccountCache(ctrl)

		stored := &domain.Account{ID: "acc-1", Active: true}
		gomock.InOrder(
			cache.EXPECT().Get(gomock.Any(), "acc-1").Return(nil, nil),
			cache.EXPECT().Version(gomock.Any(), "acc-1").Return(int64(7), nil),
			accRepo.EXPECT().GetActiveByID(gomock.Any(), "acc-1").Return(stored, nil),
			cache.EXPECT().Set(gomock.Any(), stored, int64(7)).Return(nil),
		)

		uc := usecase.NewAccountUseCase(accRepo, nil, nil, usecase.WithAccountCache(cache))
		if _, err := uc.GetAccount(context.Background(), "acc-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accRepo := mocks.NewMockAccountRepository(ctrl)
		cache := mocks.NewMockAccountCache(ctrl)

		stored := &domain.Account{ID: "acc-1", Active: true}
		cache.EXPECT().Get(gomock.Any(), "acc-1").Return(nil, errors.New("redis down"))
		cache.EXPECT().Version(gomock.Any(), "acc-1").Return(int64(0), nil)
		accRepo.EXPECT().GetActiveByID(gomock.Any(), "acc-1").Return(stored, nil)
		cache.EXPECT().Set(gomock.Any(), stored, int64(0)).Return(errors.New("redis down"))

		uc := usecase.NewAccountUseCase(accRepo, nil, nil, usecase.WithAccountCache(cache))
		got, err := uc.GetAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "acc-1" {
			t.Errorf("expected acc-1, got %s", got.ID)
		}
	})

	t.Run("version read failure skips fill", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accRepo := mocks.NewMockAccountRepository(ctrl)
		cache := mocks.NewMockAccountCache(ctrl)

		stored := &domain.Account{ID: "acc-1", Active: true}
		cache.EXPECT().Get(gomock.Any(), "acc-1").Return(nil, nil)
		cache.EXPECT().Version(gomock.Any(), "acc-1").Return(int64(0), errors.New("redis down"))
		accRepo.EXPECT().GetActiveByID(gomock.Any(), "acc-1").Return(stored, nil)

		uc := usecase.NewAccountUseCase(accRepo, nil, nil, usecase.WithAccountCache(cache))
		if _, err := uc.GetAccount(context.Background(), "acc-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accRepo := mocks.NewMockAccountRepository(ctrl)
		accRepo.EXPECT().GetActiveByID(gomock.Any(), "missing").Return(nil, domain.ErrAccountNotFound)

		uc := usecase.NewAccountUseCase(accRepo, nil, nil)
		if _, err := uc.GetAccount(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})
}

func TestAccountUseCase_GetAccountRepeatable(t *testing.T) {
	bank := mocks.NewBank()
	bank.AddAccount("acc-1", "alice", decimal.NewFromInt(42))

	uc := usecase.NewAccountUseCase(mocks.NewFakeAccountRepository(bank), mocks.NewFakeOwnerRepository(bank), &mocks.FakeIDGenerator{})

	first, err := uc.GetAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := uc.GetAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first != *second {
		t.Errorf("repeated reads differ: %+v vs %+v", first, second)
	}
}

func TestAccountUseCase_DeactivateAccount(t *testing.T) {
	bank := mocks.NewBank()
	bank.AddAccount("acc-1", "alice", decimal.NewFromInt(42))

	uc := usecase.NewAccountUseCase(mocks.NewFakeAccountRepository(bank), mocks.NewFakeOwnerRepository(bank), &mocks.FakeIDGenerator{})

	for i := range 2 {
		if err := uc.DeactivateAccount(context.Background(), "acc-1"); err != nil {
			t.Fatalf("deactivate #%d: unexpected error: %v", i+1, err)
		}
	}

	if err := uc.DeactivateAccount(context.Background(), "never-existed"); err != nil {
		t.Errorf("deactivating a missing account should succeed, got %v", err)
	}

	if _, err := uc.GetAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected inactive account to be hidden, got %v", err)
	}

	if !bank.Balance("acc-1").Equal(decimal.NewFromInt(42)) {
		t.Errorf("deactivation must not touch the balance")
	}
}

func TestAccountUseCase_DeactivateInvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	accRepo := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockAccountCache(ctrl)

	accRepo.EXPECT().Deactivate(gomock.Any(), "acc-1", gomock.Any()).Return(nil)
	cache.EXPECT().Invalidate(gomock.Any(), "acc-1").Return(nil)

	uc := usecase.NewAccountUseCase(accRepo, nil, nil, usecase.WithAccountCache(cache))
	if err := uc.DeactivateAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountUseCase_Deposit(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		amount      decimal.Decimal
		wantBalance int64
		expectError error
	}{
		{name: "credits active account", id: "acc-1", amount: decimal.NewFromInt(20_000), wantBalance: 20_100},
		{name: "zero amount", id: "acc-1", amount: decimal.Zero, wantBalance: 100, expectError: domain.ErrInvalidAmount},
		{name: "negative amount", id: "acc-1", amount: decimal.NewFromInt(-1), wantBalance: 100, expectError: domain.ErrInvalidAmount},
		{name: "missing account", id: "missing", amount: decimal.NewFromInt(5), wantBalance: 100, expectError: domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := mocks.NewBank()
			bank.AddAccount("acc-1", "alice", decimal.NewFromInt(100))

			uc := usecase.NewAccountUseCase(mocks.NewFakeAccountRepository(bank), mocks.NewFakeOwnerRepository(bank), &mocks.FakeIDGenerator{})
			err := uc.Deposit(context.Background(), tt.id, tt.amount)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := bank.Balance("acc-1"); !got.Equal(decimal.NewFromInt(tt.wantBalance)) {
				t.Errorf("expected balance %d, got %s", tt.wantBalance, got)
			}
		})
	}
}

func TestAccountUseCase_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		wantBalance int64
		expectError error
	}{
		{name: "partial withdrawal", amount: decimal.NewFromInt(40), wantBalance: 60},
		{name: "whole balance", amount: decimal.NewFromInt(100), wantBalance: 0},
		{name: "overdraft", amount: decimal.NewFromInt(101), wantBalance: 100, expectError: domain.ErrInsufficientFunds},
		{name: "zero amount", amount: decimal.Zero, wantBalance: 100, expectError: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := mocks.NewBank()
			bank.AddAccount("acc-1", "alice", decimal.NewFromInt(100))

			uc := usecase.NewAccountUseCase(mocks.NewFakeAccountRepository(bank), mocks.NewFakeOwnerRepository(bank), &mocks.FakeIDGenerator{})
			err := uc.Withdraw(context.Background(), "acc-1", tt.amount)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := bank.Balance("acc-1"); !got.Equal(decimal.NewFromInt(tt.wantBalance)) {
				t.Errorf("expected balance %d, got %s", tt.wantBalance, got)
			}
		})
	}
}

func TestAccountUseCase_WithdrawInvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	accRepo := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockAccountCache(ctrl)

	amount := decimal.NewFromInt(5)
	accRepo.EXPECT().ConditionalDebit(gomock.Any(), nil, "acc-1", amount, gomock.AssignableToTypeOf(time.Time{})).Return(true, nil)
	cache.EXPECT().Invalidate(gomock.Any(), "acc-1").Return(nil)

	uc := usecase.NewAccountUseCase(accRepo, nil, nil, usecase.WithAccountCache(cache))
	if err := uc.Withdraw(context.Background(), "acc-1", amount); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
