package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"ownerId"`
	Balance        decimal.Decimal `json:"balance"`
	BalanceDisplay string          `json:"balanceDisplay"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		OwnerID:        a.OwnerID,
		Balance:        a.Balance.Round(domain.MoneyScale),
		BalanceDisplay: domain.FormatMoney(a.Balance),
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountEnvelope wraps a single account.
type AccountEnvelope struct {
	Account *AccountResponse `json:"account"`
}

// RecordResponse represents a transfer record in API responses.
type RecordResponse struct {
	ID            string          `json:"id"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Charge        decimal.Decimal `json:"charge"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// RecordFromDomain converts a domain record to response.
func RecordFromDomain(r *domain.Record) *RecordResponse {
	return &RecordResponse{
		ID:            r.ID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Charge:        r.Charge,
		CreatedAt:     r.CreatedAt,
	}
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []*domain.Record) []*RecordResponse {
	result := make([]*RecordResponse, len(records))
	for i, r := range records {
		result[i] = RecordFromDomain(r)
	}

	return result
}

// RecordEnvelope wraps the record of a committed transfer.
type RecordEnvelope struct {
	Record *RecordResponse `json:"record"`
}

// ListRecordsResponse represents a page of records.
type ListRecordsResponse struct {
	Records []*RecordResponse `json:"records"`
}

// DailyUsageResponse reports daily limit consumption.
type DailyUsageResponse struct {
	AccountID   string          `json:"accountId"`
	DailyLimit  decimal.Decimal `json:"dailyLimit"`
	SentToday   decimal.Decimal `json:"sentToday"`
	Remaining   decimal.Decimal `json:"remaining"`
	WindowStart time.Time       `json:"windowStart"`
	WindowEnd   time.Time       `json:"windowEnd"`
}

// DailyUsageFromUseCase converts the usage view to response.
func DailyUsageFromUseCase(u *usecase.DailyUsage) *DailyUsageResponse {
	return &DailyUsageResponse{
		AccountID:   u.AccountID,
		DailyLimit:  u.DailyLimit,
		SentToday:   u.SentToday,
		Remaining:   u.Remaining,
		WindowStart: u.WindowStart,
		WindowEnd:   u.WindowEnd,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
