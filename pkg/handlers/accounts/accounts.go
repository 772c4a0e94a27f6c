package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/finbridge/ledger-transfers/pkg/api"
	"github.com/finbridge/ledger-transfers/pkg/mapping"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AccountsHandler exposes one ledger's account operations over HTTP.
type AccountsHandler struct {
	Store storage.AccountStore
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(store storage.AccountStore) *AccountsHandler {
	return &AccountsHandler{Store: store}
}

// Routes mounts the account endpoints on a chi router.
func (h *AccountsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts", h.ListAccountsByOwner)
	r.Get("/accounts/{accountID}", h.GetAccount)
	r.Post("/accounts/{accountID}/debit", h.Debit)
	r.Post("/accounts/{accountID}/credit", h.Credit)
	return r
}

// CreateAccount handles the logic for opening a new account.
func (h *AccountsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var newAccount api.NewAccount
	if err := json.NewDecoder(r.Body).Decode(&newAccount); err != nil {
		respondError(w, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if newAccount.AccountId == "" || newAccount.OwnerId == "" {
		respondError(w, http.StatusBadRequest, api.CodeInvalidRequest, "account_id and owner_id are required")
		return
	}
	if newAccount.InitialBalance.IsNegative() {
		respondError(w, http.StatusBadRequest, api.CodeInvalidAmount, "initial balance must not be negative")
		return
	}

	created, err := h.Store.CreateAccount(r.Context(), mapping.ToDomainNewAccount(&newAccount))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateAccount) {
			respondError(w, http.StatusConflict, api.CodeDuplicateAccount, fmt.Sprintf("account %s already exists", newAccount.AccountId))
		} else {
			respondError(w, http.StatusInternalServerError, "internal", fmt.Sprintf("failed to create account: %v", err))
		}
		return
	}

	respondJSON(w, http.StatusOK, mapping.ToApiAccount(created))
}

// GetAccount handles the logic for retrieving an account by its ID.
func (h *AccountsHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	account, err := h.Store.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			respondError(w, http.StatusNotFound, api.CodeNotFound, fmt.Sprintf("account %s not found", accountID))
		} else {
			respondError(w, http.StatusInternalServerError, "internal", fmt.Sprintf("failed to retrieve account: %v", err))
		}
		return
	}

	respondJSON(w, http.StatusOK, mapping.ToApiAccount(account))
}

// ListAccountsByOwner handles the logic for retrieving all accounts held by one owner.
func (h *AccountsHandler) ListAccountsByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, api.CodeInvalidRequest, "owner_id query parameter is required")
		return
	}

	accounts, err := h.Store.ListAccountsByOwner(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", fmt.Sprintf("failed to retrieve accounts: %v", err))
		return
	}

	apiAccounts := make([]*api.Account, len(accounts))
	for i := range accounts {
		apiAccounts[i] = mapping.ToApiAccount(&accounts[i])
	}

	respondJSON(w, http.StatusOK, apiAccounts)
}

// Debit handles the logic for subtracting funds from an account.
func (h *AccountsHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.applyChange(w, r, h.Store.Debit)
}

// Credit handles the logic for adding funds to an account.
func (h *AccountsHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.applyChange(w, r, h.Store.Credit)
}

// applyChange decodes a balance-change request, applies the store
// operation, and maps sentinel errors to their HTTP statuses.
func (h *AccountsHandler) applyChange(w http.ResponseWriter, r *http.Request, op func(context.Context, string, decimal.Decimal) (decimal.Decimal, error)) {
	accountID := chi.URLParam(r, "accountID")

	var change api.BalanceChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		respondError(w, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	newBalance, err := op(r.Context(), accountID, change.Amount)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, api.CodeInvalidAmount, "amount must be positive")
		case errors.Is(err, storage.ErrInsufficientFunds):
			respondError(w, http.StatusBadRequest, api.CodeInsufficientFunds, fmt.Sprintf("account %s has insufficient funds", accountID))
		case errors.Is(err, storage.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, api.CodeNotFound, fmt.Sprintf("account %s not found", accountID))
		default:
			respondError(w, http.StatusInternalServerError, "internal", fmt.Sprintf("failed to update balance: %v", err))
		}
		return
	}

	respondJSON(w, http.StatusOK, api.Balance{AccountId: accountID, Balance: newBalance})
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
