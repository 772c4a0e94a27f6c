package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerID identifies one of the two independently owned ledgers.
type LedgerID string

const (
	CheckingLedger LedgerID = "checking"
	SavingsLedger  LedgerID = "savings"
)

// Valid reports whether the ledger ID names a known ledger.
func (l LedgerID) Valid() bool {
	return l == CheckingLedger || l == SavingsLedger
}

// Account is the domain model for a single ledger account.
// The balance is an exact decimal and is never negative.
type Account struct {
	AccountID string
	OwnerID   string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransferState defines the saga states of a transfer.
type TransferState string

const (
	// DEBITING is the persisted state before the debit call is sent, so a
	// crash mid-debit leaves evidence of the attempt.
	DEBITING TransferState = "DEBITING"
	// DEBITED means the source debit is confirmed; funds are in motion.
	DEBITED TransferState = "DEBITED"
	// DEBIT_FAILED is terminal: the debit was rejected or its outcome is
	// unknown. No funds are confirmed to have moved, nothing to undo.
	DEBIT_FAILED TransferState = "DEBIT_FAILED"
	// COMPENSATION_PENDING means the credit leg failed and a compensating
	// credit on the source ledger is about to be attempted.
	COMPENSATION_PENDING TransferState = "COMPENSATION_PENDING"
	// COMPLETED is the terminal happy-path state.
	COMPLETED TransferState = "COMPLETED"
	// COMPENSATED is terminal: the transfer failed and the debited funds
	// were returned to the source account.
	COMPENSATED TransferState = "COMPENSATED"
	// COMPENSATION_FAILED is terminal and unrecoverable by the system:
	// funds left the source but could not be returned. Operator required.
	COMPENSATION_FAILED TransferState = "COMPENSATION_FAILED"
)

// Terminal reports whether the saga takes no further automatic action
// from this state.
func (s TransferState) Terminal() bool {
	switch s {
	case DEBIT_FAILED, COMPLETED, COMPENSATED, COMPENSATION_FAILED:
		return true
	}
	return false
}

// TransferOutcome is the caller-facing summary of a finished transfer.
type TransferOutcome string

const (
	OutcomeCompleted          TransferOutcome = "Completed"
	OutcomeDebitFailed        TransferOutcome = "DebitFailed"
	OutcomeCompensated        TransferOutcome = "Compensated"
	OutcomeCompensationFailed TransferOutcome = "CompensationFailed"
)

// OutcomeForState maps a terminal saga state to its outcome.
func OutcomeForState(s TransferState) TransferOutcome {
	switch s {
	case COMPLETED:
		return OutcomeCompleted
	case COMPENSATED:
		return OutcomeCompensated
	case COMPENSATION_FAILED:
		return OutcomeCompensationFailed
	default:
		return OutcomeDebitFailed
	}
}

// TransferRequest is the orchestrator's input for one transfer saga.
type TransferRequest struct {
	SourceLedger    LedgerID
	SourceAccountID string
	DestLedger      LedgerID
	DestAccountID   string
	Amount          decimal.Decimal

	// FaultInjected synthesizes a credit-leg failure after a successful
	// debit. Used to exercise the compensation path deterministically.
	FaultInjected bool
}

// Transfer is the durable saga record, one row per transfer attempt.
type Transfer struct {
	ID              string
	SourceLedger    LedgerID
	SourceAccountID string
	DestLedger      LedgerID
	DestAccountID   string
	Amount          decimal.Decimal
	State           TransferState
	FailureReason   string

	// SourceUncertain is set when the debit outcome is unknown (transport
	// failure). Such transfers need manual reconciliation against the
	// source ledger and are never auto-compensated.
	SourceUncertain bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TransferResult is what the orchestrator returns to its caller once the
// saga reaches a terminal state.
type TransferResult struct {
	TransferID      string
	Outcome         TransferOutcome
	FailureReason   string
	CompensationErr string
	SourceUncertain bool

	// New balances are only known for legs that confirmed success.
	SourceBalance *decimal.Decimal
	DestBalance   *decimal.Decimal
}
