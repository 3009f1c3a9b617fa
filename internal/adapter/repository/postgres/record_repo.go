package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
	"github.com/iho/gobank/internal/usecase"
)

// RecordRepository implements usecase.RecordRepository.
type RecordRepository struct {
	queries *generated.Queries
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db generated.DBTX) *RecordRepository {
	return &RecordRepository{queries: generated.New(db)}
}

// Create appends a record.
func (r *RecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Record) error {
	_, err := queriesFor(r.queries, tx).CreateRecord(ctx, generated.CreateRecordParams{
		ID:            record.ID,
		FromAccountID: record.FromAccountID,
		ToAccountID:   record.ToAccountID,
		Amount:        decimalToNumeric(record.Amount),
		Charge:        decimalToNumeric(record.Charge),
		CreatedAt:     timeToPgTimestamptz(record.CreatedAt),
	})

	return err
}

// SumSent returns the total amount sent by accountID in [from, to).
func (r *RecordRepository) SumSent(ctx context.Context, tx usecase.Transaction, accountID string, from, to time.Time) (decimal.Decimal, error) {
	total, err := queriesFor(r.queries, tx).SumSentBetween(ctx, generated.SumSentBetweenParams{
		FromAccountID: accountID,
		WindowStart:   timeToPgTimestamptz(from),
		WindowEnd:     timeToPgTimestamptz(to),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// ListByAccount lists records sent or received by accountID, newest first.
func (r *RecordRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Record, error) {
	rows, err := r.queries.ListRecordsByAccount(ctx, generated.ListRecordsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	records := make([]*domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}

	return records, nil
}

func rowToRecord(row generated.Record) *domain.Record {
	return &domain.Record{
		ID:            row.ID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        numericToDecimal(row.Amount),
		Charge:        numericToDecimal(row.Charge),
		CreatedAt:     row.CreatedAt.Time,
	}
}
