package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, id string) error
	Deposit(ctx context.Context, id string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, id string, amount decimal.Decimal) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account for an existing or new owner.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidOwner)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidOwner)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), input)
	if errors.Is(err, domain.ErrInvalidOwner) {
		writeText(w, http.StatusBadRequest, msgInvalidOwner)
		return
	}
	if err != nil {
		writeInternal(w, r, "create account failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountEnvelope{Account: dto.AccountFromDomain(account)})
}

// Get retrieves an active account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "account not found", "")
		return
	}
	if err != nil {
		writeInternal(w, r, "get account failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountEnvelope{Account: dto.AccountFromDomain(account)})
}

// Delete deactivates an account. Repeated deletes succeed.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if err := h.accountUC.DeactivateAccount(r.Context(), id); err != nil {
		writeInternal(w, r, "deactivate account failed", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Deposit credits an active account.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	amount, ok := decodeAmount(w, r, msgInvalidDeposit)
	if !ok {
		return
	}

	err := h.accountUC.Deposit(r.Context(), id, amount)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found", "")
	case errors.Is(err, domain.ErrInvalidAmount):
		writeText(w, http.StatusBadRequest, msgInvalidDeposit)
	default:
		writeInternal(w, r, "deposit failed", err)
	}
}

// Withdraw debits an active account holding at least the amount.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	amount, ok := decodeAmount(w, r, msgInvalidWithdraw)
	if !ok {
		return
	}

	err := h.accountUC.Withdraw(r.Context(), id, amount)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeText(w, http.StatusBadRequest, "Account does not exist or without sufficient deposit.")
	case errors.Is(err, domain.ErrInvalidAmount):
		writeText(w, http.StatusBadRequest, msgInvalidWithdraw)
	default:
		writeInternal(w, r, "withdraw failed", err)
	}
}

func decodeAmount(w http.ResponseWriter, r *http.Request, invalidMsg string) (decimal.Decimal, bool) {
	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, invalidMsg)
		return decimal.Zero, false
	}

	amount, err := req.ToDecimal()
	if err != nil {
		writeText(w, http.StatusBadRequest, invalidMsg)
		return decimal.Zero, false
	}

	return amount, true
}
