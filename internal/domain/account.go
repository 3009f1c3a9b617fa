package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents an owner's account that can hold a balance.
type Account struct {
	ID        string
	OwnerID   string
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanDebit reports whether the account could be debited by amount without
// going negative. The store enforces the same rule atomically.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Active && a.Balance.GreaterThanOrEqual(amount)
}

// SameOwner reports whether both accounts belong to the same owner.
func (a *Account) SameOwner(other *Account) bool {
	return a.OwnerID == other.OwnerID
}
