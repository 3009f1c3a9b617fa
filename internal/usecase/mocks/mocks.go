package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// ErrTxClosed mirrors pgx.ErrTxClosed for the in-memory transaction.
var ErrTxClosed = errors.New("tx is closed")

// Bank is an in-memory account store and ledger shared by the fake
// repositories. Every balance mutation runs under one mutex, so conditional
// debits are atomic the way a single-row UPDATE is.
type Bank struct {
	mu       sync.Mutex
	owners   map[string]*domain.Owner
	accounts map[string]*domain.Account
	records  []*domain.Record
}

// NewBank creates an empty Bank.
func NewBank() *Bank {
	return &Bank{
		owners:   make(map[string]*domain.Owner),
		accounts: make(map[string]*domain.Account),
	}
}

// AddAccount seeds an active account.
func (b *Bank) AddAccount(id, ownerID string, balance decimal.Decimal) *domain.Account {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.owners[ownerID]; !ok {
		b.owners[ownerID] = &domain.Owner{ID: ownerID, Name: ownerID}
	}

	acc := &domain.Account{ID: id, OwnerID: ownerID, Balance: balance, Active: true}
	b.accounts[id] = acc

	return cloneAccount(acc)
}

// Balance returns the stored balance of id regardless of its active flag.
func (b *Bank) Balance(id string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()

	if acc, ok := b.accounts[id]; ok {
		return acc.Balance
	}

	return decimal.Zero
}

// Records returns a snapshot of all records in insertion order.
func (b *Bank) Records() []*domain.Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*domain.Record, len(b.records))
	for i, r := range b.records {
		c := *r
		out[i] = &c
	}

	return out
}

// Backdate shifts a record's creation time by d.
func (b *Bank) Backdate(recordID string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.records {
		if r.ID == recordID {
			r.CreatedAt = r.CreatedAt.Add(-d)
		}
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

// FakeAccountRepository implements usecase.AccountRepository over a Bank.
type FakeAccountRepository struct {
	bank *Bank

	GetActiveByIDErr error
	CreditErr        error
}

// NewFakeAccountRepository creates a FakeAccountRepository.
func NewFakeAccountRepository(bank *Bank) *FakeAccountRepository {
	return &FakeAccountRepository{bank: bank}
}

func (r *FakeAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	if _, ok := r.bank.owners[account.OwnerID]; !ok {
		return fmt.Errorf("owner %s violates foreign key", account.OwnerID)
	}

	r.bank.accounts[account.ID] = cloneAccount(account)

	return nil
}

func (r *FakeAccountRepository) GetActiveByID(ctx context.Context, id string) (*domain.Account, error) {
	if r.GetActiveByIDErr != nil {
		return nil, r.GetActiveByIDErr
	}

	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	acc, ok := r.bank.accounts[id]
	if !ok || !acc.Active {
		return nil, domain.ErrAccountNotFound
	}

	return cloneAccount(acc), nil
}

func (r *FakeAccountRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	if acc, ok := r.bank.accounts[id]; ok && acc.Active {
		acc.Active = false
		acc.UpdatedAt = updatedAt
	}

	return nil
}

func (r *FakeAccountRepository) ConditionalDebit(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) (bool, error) {
	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	acc, ok := r.bank.accounts[id]
	if !ok || !acc.CanDebit(amount) {
		return false, nil
	}

	acc.Balance = acc.Balance.Sub(amount)
	acc.UpdatedAt = updatedAt
	undoable(tx, r.bank, func() { acc.Balance = acc.Balance.Add(amount) })

	return true, nil
}

func (r *FakeAccountRepository) Credit(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) (bool, error) {
	if r.CreditErr != nil {
		return false, r.CreditErr
	}

	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	acc, ok := r.bank.accounts[id]
	if !ok || !acc.Active {
		return false, nil
	}

	acc.Balance = acc.Balance.Add(amount)
	acc.UpdatedAt = updatedAt
	undoable(tx, r.bank, func() { acc.Balance = acc.Balance.Sub(amount) })

	return true, nil
}

// FakeOwnerRepository implements usecase.OwnerRepository over a Bank.
type FakeOwnerRepository struct {
	bank *Bank
}

// NewFakeOwnerRepository creates a FakeOwnerRepository.
func NewFakeOwnerRepository(bank *Bank) *FakeOwnerRepository {
	return &FakeOwnerRepository{bank: bank}
}

func (r *FakeOwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	c := *owner
	r.bank.owners[owner.ID] = &c

	return nil
}

func (r *FakeOwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	owner, ok := r.bank.owners[id]
	if !ok {
		return nil, domain.ErrOwnerNotFound
	}

	c := *owner
	return &c, nil
}

// FakeRecordRepository implements usecase.RecordRepository over a Bank.
type FakeRecordRepository struct {
	bank *Bank

	CreateErr error
	SumErr    error
}

// NewFakeRecordRepository creates a FakeRecordRepository.
func NewFakeRecordRepository(bank *Bank) *FakeRecordRepository {
	return &FakeRecordRepository{bank: bank}
}

func (r *FakeRecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Record) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}

	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	c := *record
	r.bank.records = append(r.bank.records, &c)

	undoable(tx, r.bank, func() {
		for i, existing := range r.bank.records {
			if existing.ID == c.ID {
				r.bank.records = append(r.bank.records[:i], r.bank.records[i+1:]...)
				return
			}
		}
	})

	return nil
}

func (r *FakeRecordRepository) SumSent(ctx context.Context, tx usecase.Transaction, accountID string, from, to time.Time) (decimal.Decimal, error) {
	if r.SumErr != nil {
		return decimal.Zero, r.SumErr
	}

	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	sum := decimal.Zero
	for _, rec := range r.bank.records {
		if rec.FromAccountID != accountID {
			continue
		}
		if rec.CreatedAt.Before(from) || !rec.CreatedAt.Before(to) {
			continue
		}
		sum = sum.Add(rec.Amount)
	}

	return sum, nil
}

func (r *FakeRecordRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Record, error) {
	r.bank.mu.Lock()
	defer r.bank.mu.Unlock()

	var matched []*domain.Record
	for _, rec := range r.bank.records {
		if rec.FromAccountID == accountID || rec.ToAccountID == accountID {
			c := *rec
			matched = append(matched, &c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []*domain.Record{}, nil
	}

	end := min(offset+limit, len(matched))

	return matched[offset:end], nil
}

// FakeTxManager hands out FakeTx values and counts how each one ended.
type FakeTxManager struct {
	BeginErr  error
	CommitErr error

	Begun      atomic.Int32
	Committed  atomic.Int32
	RolledBack atomic.Int32
}

// NewFakeTxManager creates a FakeTxManager.
func NewFakeTxManager() *FakeTxManager {
	return &FakeTxManager{}
}

func (m *FakeTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}

	m.Begun.Add(1)

	return &FakeTx{manager: m}, nil
}

// Released returns how many transactions were committed or rolled back.
func (m *FakeTxManager) Released() int32 {
	return m.Committed.Load() + m.RolledBack.Load()
}

// FakeTx undoes its staged mutations on rollback.
type FakeTx struct {
	manager *FakeTxManager
	mu      sync.Mutex
	undo    []func()
	closed  bool
}

func (t *FakeTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxClosed
	}

	if t.manager.CommitErr != nil {
		return t.manager.CommitErr
	}

	t.closed = true
	t.undo = nil
	t.manager.Committed.Add(1)

	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	undo := t.undo
	if t.closed {
		t.mu.Unlock()
		return ErrTxClosed
	}
	t.closed = true
	t.undo = nil
	t.mu.Unlock()

	t.manager.RolledBack.Add(1)

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}

	return nil
}

// undoable registers fn on tx when tx is a FakeTx. Mutations made with a nil
// tx are applied immediately and cannot be undone.
func undoable(tx usecase.Transaction, bank *Bank, fn func()) {
	ft, ok := tx.(*FakeTx)
	if !ok || ft == nil {
		return
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()

	ft.undo = append(ft.undo, func() {
		bank.mu.Lock()
		defer bank.mu.Unlock()
		fn()
	})
}

// FakeIDGenerator returns sequential IDs with a prefix.
type FakeIDGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *FakeIDGenerator) Generate() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}

	return fmt.Sprintf("%s-%d", prefix, g.n.Add(1))
}

// StaticApproval answers every approval request the same way.
type StaticApproval struct {
	Approved bool
	Err      error
	Calls    atomic.Int32
}

func (a *StaticApproval) Approve(ctx context.Context) (bool, error) {
	a.Calls.Add(1)
	return a.Approved, a.Err
}
