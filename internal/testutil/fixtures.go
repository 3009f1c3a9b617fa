package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
)

// TestDB provides a migrated database for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// MigrationsPath locates the migrations directory from this source file,
// so tests work from any package directory.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.NewMigrator(dbURL, MigrationsPath(), zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 10})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE records, accounts, owners CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestOwner creates an owner with the given name.
func (db *TestDB) CreateTestOwner(ctx context.Context, name string) *domain.Owner {
	db.t.Helper()

	now := time.Now().UTC()
	row, err := db.Queries.CreateOwner(ctx, generated.CreateOwnerParams{
		ID:        GenerateID(),
		Name:      name,
		CreatedAt: pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		db.t.Fatalf("failed to create test owner: %v", err)
	}

	return &domain.Owner{ID: row.ID, Name: row.Name, CreatedAt: now}
}

// CreateTestAccountWithBalance creates an active account for ownerID.
func (db *TestDB) CreateTestAccountWithBalance(ctx context.Context, ownerID string, balance decimal.Decimal) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	id := GenerateID()

	var numericBalance pgtype.Numeric

	_ = numericBalance.Scan(balance.String())

	ts := pgtype.Timestamptz{Time: now, Valid: true}

	_, err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        id,
		OwnerID:   ownerID,
		Balance:   numericBalance,
		Active:    true,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return &domain.Account{
		ID:        id,
		OwnerID:   ownerID,
		Balance:   balance,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Balance reads the stored balance of an account, active or not.
func (db *TestDB) Balance(ctx context.Context, accountID string) decimal.Decimal {
	db.t.Helper()

	var balance decimal.Decimal
	if err := db.Pool.QueryRow(ctx, `SELECT balance::TEXT FROM accounts WHERE id = $1`, accountID).Scan(&balance); err != nil {
		db.t.Fatalf("failed to read balance: %v", err)
	}

	return balance
}

// BackdateRecord moves a record's creation time into the past.
func (db *TestDB) BackdateRecord(ctx context.Context, recordID string, d time.Duration) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `UPDATE records SET created_at = created_at - $2::BIGINT * INTERVAL '1 second' WHERE id = $1`, recordID, int64(d.Seconds()))
	if err != nil {
		db.t.Fatalf("failed to backdate record: %v", err)
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
