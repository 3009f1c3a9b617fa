package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
}

// TransferHandler handles transfer requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create moves money from the account in the URL. Rejections answer 400
// with the reason as plain text; failures answer 500 with no body.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	fromID := chi.URLParam(r, "id")

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "toAccountId" {
			writeText(w, http.StatusBadRequest, msgInvalidAccount)
			return
		}
		writeText(w, http.StatusBadRequest, msgInvalidTransfer)
		return
	}

	input, err := req.ToUseCaseInput(fromID)
	if errors.Is(err, domain.ErrInvalidAccountID) {
		writeText(w, http.StatusBadRequest, msgInvalidAccount)
		return
	}
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidTransfer)
		return
	}

	result, err := h.transferUC.Transfer(r.Context(), input)
	if errors.Is(err, domain.ErrInvalidAmount) {
		writeText(w, http.StatusBadRequest, msgInvalidTransfer)
		return
	}
	if err != nil {
		// already logged by the engine
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !result.Success() {
		writeText(w, http.StatusBadRequest, result.Reason)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecordEnvelope{Record: dto.RecordFromDomain(result.Record)})
}
