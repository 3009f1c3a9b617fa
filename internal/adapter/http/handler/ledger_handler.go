package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	ListRecords(ctx context.Context, input usecase.ListRecordsInput) ([]*domain.Record, error)
	GetDailyUsage(ctx context.Context, accountID string) (*usecase.DailyUsage, error)
}

// LedgerHandler serves read-only views of transfer records.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// ListRecords lists records sent or received by an account, newest first.
func (h *LedgerHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	records, err := h.ledgerUC.ListRecords(r.Context(), usecase.ListRecordsInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeInternal(w, r, "list records failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRecordsResponse{Records: dto.RecordsFromDomain(records)})
}

// Limits reports how much of today's limit the account has used.
func (h *LedgerHandler) Limits(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	usage, err := h.ledgerUC.GetDailyUsage(r.Context(), accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "account not found", "")
		return
	}
	if err != nil {
		writeInternal(w, r, "daily usage failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DailyUsageFromUseCase(usage))
}
