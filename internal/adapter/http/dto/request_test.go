package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "bare number", body: `{"amount": 12.5}`, want: "12.5"},
		{name: "decimal string", body: `{"amount": "8000"}`, want: "8000"},
		{name: "formatted", body: `{"amount": "$1,000.25"}`, want: "1000.25"},
		{name: "missing", body: `{}`, wantErr: true},
		{name: "null", body: `{"amount": null}`, wantErr: true},
		{name: "garbage", body: `{"amount": "ten"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AmountRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got, err := req.Amount.Decimal()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAmountRequest_ToDecimal(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		wantErr error
	}{
		{name: "positive", amount: "100"},
		{name: "zero", amount: "0", wantErr: domain.ErrInvalidAmount},
		{name: "negative", amount: "-5", wantErr: domain.ErrInvalidAmount},
		{name: "sub cent", amount: "0.001", wantErr: domain.ErrInvalidAmount},
		{name: "unparseable", amount: "abc", wantErr: domain.ErrInvalidMoney},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := AmountRequest{Amount: tt.amount}

			_, err := req.ToDecimal()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    usecase.CreateAccountInput
		wantErr bool
	}{
		{name: "existing owner", body: `{"owner":{"id":" own-1 "}}`, want: usecase.CreateAccountInput{OwnerID: "own-1"}},
		{name: "new owner", body: `{"owner":{"name":"Alice"}}`, want: usecase.CreateAccountInput{OwnerName: "Alice"}},
		{name: "no owner", body: `{}`, wantErr: true},
		{name: "empty owner", body: `{"owner":{}}`, wantErr: true},
		{name: "blank name", body: `{"owner":{"name":"   "}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateAccountRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got, err := req.ToUseCaseInput()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidOwner) {
					t.Fatalf("expected ErrInvalidOwner, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransferRequest_ToUseCaseInput(t *testing.T) {
	req := TransferRequest{ToAccountID: " acc-2 ", Amount: "8,000.00"}

	got, err := req.ToUseCaseInput("acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.FromAccountID != "acc-1" || got.ToAccountID != "acc-2" {
		t.Fatalf("unexpected accounts: %+v", got)
	}
	if !got.Amount.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("expected 8000, got %s", got.Amount)
	}

	bad := TransferRequest{ToAccountID: "acc-2", Amount: "eight"}
	if _, err := bad.ToUseCaseInput("acc-1"); err == nil {
		t.Fatalf("expected error for unparseable amount")
	}

	noRecipient := TransferRequest{ToAccountID: "  ", Amount: "eight"}
	if _, err := noRecipient.ToUseCaseInput("acc-1"); !errors.Is(err, domain.ErrInvalidAccountID) {
		t.Fatalf("expected ErrInvalidAccountID before amount parsing, got %v", err)
	}
}
