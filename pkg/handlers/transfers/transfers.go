package transfers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/finbridge/ledger-transfers/pkg/api"
	"github.com/finbridge/ledger-transfers/pkg/mapping"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/saga"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/go-chi/chi/v5"
)

// TransfersHandler exposes the transfer orchestrator over HTTP.
type TransfersHandler struct {
	Orchestrator *saga.Orchestrator
	Log          storage.TransferLog
}

// NewTransfersHandler creates a new TransfersHandler.
func NewTransfersHandler(orchestrator *saga.Orchestrator, transferLog storage.TransferLog) *TransfersHandler {
	return &TransfersHandler{Orchestrator: orchestrator, Log: transferLog}
}

// Routes mounts the transfer endpoints on a chi router.
func (h *TransfersHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/transfers", h.CreateTransfer)
	r.Get("/transfers/{transferID}", h.GetTransferById)
	return r
}

// CreateTransfer runs a transfer saga to a terminal state and reports the
// outcome. The saga itself never returns a transport error to this layer;
// an error here means the transfer was refused before any money moved.
func (h *TransfersHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var newTransfer api.NewTransfer
	if err := json.NewDecoder(r.Body).Decode(&newTransfer); err != nil {
		respondError(w, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := h.Orchestrator.Transfer(r.Context(), mapping.ToDomainTransferRequest(&newTransfer))
	if err != nil {
		if errors.Is(err, saga.ErrInvalidRequest) || errors.Is(err, saga.ErrUnknownLedger) {
			respondError(w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, "internal", fmt.Sprintf("failed to start transfer: %v", err))
		}
		return
	}

	apiResult := mapping.ToApiTransferResult(result)
	if result.Outcome == models.OutcomeCompensationFailed {
		apiResult.OperatorAlert = &api.OperatorAlert{
			TransferId:        result.TransferID,
			State:             string(models.COMPENSATION_FAILED),
			Reason:            result.FailureReason,
			CompensationError: result.CompensationErr,
			FlaggedAt:         time.Now(),
		}
	}

	respondJSON(w, http.StatusOK, apiResult)
}

// GetTransferById retrieves the persisted saga record for a transfer.
func (h *TransfersHandler) GetTransferById(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")

	transfer, err := h.Log.GetTransfer(r.Context(), transferID)
	if err != nil {
		if errors.Is(err, storage.ErrTransferNotFound) {
			respondError(w, http.StatusNotFound, api.CodeNotFound, fmt.Sprintf("transfer %s not found", transferID))
		} else {
			respondError(w, http.StatusInternalServerError, "internal", fmt.Sprintf("failed to retrieve transfer: %v", err))
		}
		return
	}

	respondJSON(w, http.StatusOK, mapping.ToApiTransfer(transfer))
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, fmt.Sprintf("failed to write response: %v", err), http.StatusInternalServerError)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, api.Error{Code: code, Message: message})
}
