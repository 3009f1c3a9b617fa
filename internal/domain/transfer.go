package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferState is a step of a single transfer attempt.
type TransferState string

const (
	TransferValidating       TransferState = "validating"
	TransferLimitChecking    TransferState = "limit_checking"
	TransferAwaitingApproval TransferState = "awaiting_approval"
	TransferInTransaction    TransferState = "in_transaction"
	TransferCommitted        TransferState = "committed"
	TransferRejected         TransferState = "rejected"
	TransferFailed           TransferState = "failed"
)

// Terminal reports whether no further transition can happen from s.
func (s TransferState) Terminal() bool {
	return s == TransferCommitted || s == TransferRejected || s == TransferFailed
}

// ComputeCharge returns the service charge for moving money between from and
// to: nothing between accounts of one owner, the flat fee otherwise.
func ComputeCharge(from, to *Account, crossOwnerFee decimal.Decimal) decimal.Decimal {
	if from.SameOwner(to) {
		return decimal.Zero
	}

	return crossOwnerFee
}

// DayWindow returns [start of now's day, start + 24h) in now's location.
func DayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(24 * time.Hour)
}
