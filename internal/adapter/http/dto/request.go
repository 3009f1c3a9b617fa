package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// Amount is a monetary value as sent by clients: a JSON number, a decimal
// string or currency-formatted text such as "$1,000.00".
type Amount string

// UnmarshalJSON accepts both quoted and bare values.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}

	*a = Amount(b)

	return nil
}

// Decimal parses the amount losslessly.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return domain.ParseMoney(string(a))
}

// OwnerRef selects an existing owner by ID or names a new one.
type OwnerRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Owner *OwnerRef `json:"owner"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	if r.Owner == nil {
		return usecase.CreateAccountInput{}, domain.ErrInvalidOwner
	}

	input := usecase.CreateAccountInput{
		OwnerID:   strings.TrimSpace(r.Owner.ID),
		OwnerName: r.Owner.Name,
	}
	if input.OwnerID == "" && strings.TrimSpace(input.OwnerName) == "" {
		return usecase.CreateAccountInput{}, domain.ErrInvalidOwner
	}

	return input, nil
}

// AmountRequest is the body of deposit and withdraw requests.
type AmountRequest struct {
	Amount Amount `json:"amount"`
}

// ToDecimal returns the positive amount of the request.
func (r *AmountRequest) ToDecimal() (decimal.Decimal, error) {
	amount, err := r.Amount.Decimal()
	if err != nil {
		return decimal.Zero, err
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// TransferRequest represents a request to move money from the account in the URL.
type TransferRequest struct {
	ToAccountID string `json:"toAccountId"`
	Amount      Amount `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(fromAccountID string) (usecase.TransferInput, error) {
	if strings.TrimSpace(r.ToAccountID) == "" {
		return usecase.TransferInput{}, domain.ErrInvalidAccountID
	}

	amount, err := r.Amount.Decimal()
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		FromAccountID: fromAccountID,
		ToAccountID:   strings.TrimSpace(r.ToAccountID),
		Amount:        amount,
	}, nil
}
