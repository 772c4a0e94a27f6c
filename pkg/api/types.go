// Package api defines the wire types for the ledger and transfer HTTP APIs.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Machine-readable error codes carried in error responses. The transfer
// orchestrator relies on these to tell a business rejection apart from
// anything else.
const (
	CodeInvalidAmount     = "invalid_amount"
	CodeInvalidRequest    = "invalid_request"
	CodeNotFound          = "not_found"
	CodeDuplicateAccount  = "duplicate_account"
	CodeInsufficientFunds = "insufficient_funds"
)

// Error is the error body returned by every endpoint.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAccount is the request body for creating an account.
type NewAccount struct {
	AccountId      string          `json:"account_id"`
	OwnerId        string          `json:"owner_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// Account is the API representation of a ledger account.
type Account struct {
	AccountId string          `json:"account_id"`
	OwnerId   string          `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceChange is the request body for debit and credit operations.
type BalanceChange struct {
	Amount decimal.Decimal `json:"amount"`
}

// Balance is the response body for debit and credit operations.
type Balance struct {
	AccountId string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// NewTransfer is the request body for starting a transfer saga.
type NewTransfer struct {
	SourceAccountId string          `json:"source_account_id"`
	SourceLedger    string          `json:"source_ledger"`
	DestAccountId   string          `json:"dest_account_id"`
	DestLedger      string          `json:"dest_ledger"`
	Amount          decimal.Decimal `json:"amount"`
	FaultInjected   bool            `json:"fault_injected,omitempty"`
}

// OperatorAlert is attached to a transfer result when the saga ended in a
// state that requires manual intervention.
type OperatorAlert struct {
	TransferId        string    `json:"transfer_id"`
	State             string    `json:"state"`
	Reason            string    `json:"reason"`
	CompensationError string    `json:"compensation_error,omitempty"`
	FlaggedAt         time.Time `json:"flagged_at"`
}

// TransferResult is the response body for a finished transfer saga.
type TransferResult struct {
	TransferId      string           `json:"transfer_id"`
	Outcome         string           `json:"outcome"`
	FailureReason   string           `json:"failure_reason,omitempty"`
	SourceUncertain bool             `json:"source_uncertain,omitempty"`
	SourceBalance   *decimal.Decimal `json:"source_balance,omitempty"`
	DestBalance     *decimal.Decimal `json:"dest_balance,omitempty"`
	OperatorAlert   *OperatorAlert   `json:"operator_alert,omitempty"`
}

// Transfer is the API representation of a persisted saga record.
type Transfer struct {
	Id              string          `json:"id"`
	SourceAccountId string          `json:"source_account_id"`
	SourceLedger    string          `json:"source_ledger"`
	DestAccountId   string          `json:"dest_account_id"`
	DestLedger      string          `json:"dest_ledger"`
	Amount          decimal.Decimal `json:"amount"`
	State           string          `json:"state"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	SourceUncertain bool            `json:"source_uncertain,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
