package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is an immutable ledger entry for a completed transfer.
type Record struct {
	CreatedAt     time.Time
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Charge        decimal.Decimal
}

// Debited returns the total taken from the sender: amount plus charge.
func (r *Record) Debited() decimal.Decimal {
	return r.Amount.Add(r.Charge)
}
