package storage

import (
	"context"
	"time"

	"github.com/finbridge/ledger-transfers/pkg/models"
)

// TransferUpdate describes one saga state transition. From is the
// precondition: the update only applies if the record is currently in
// that state.
type TransferUpdate struct {
	From   models.TransferState
	To     models.TransferState
	Reason string

	// SourceUncertain marks the transfer as needing manual reconciliation
	// because the debit outcome is unknown.
	SourceUncertain bool
}

// TransferLog is the durable saga log. Every state transition is persisted
// before the orchestrator takes the next step, so a crashed saga always
// leaves a row the recovery sweep can act on.
type TransferLog interface {
	// CreateTransfer persists the initial saga record. The record must be
	// in state DEBITING.
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error

	// AdvanceTransfer atomically moves a transfer from upd.From to upd.To.
	// Returns ErrStateConflict if the record is not in upd.From.
	AdvanceTransfer(ctx context.Context, transferID string, upd TransferUpdate) error

	// GetTransfer retrieves a saga record by transfer ID.
	GetTransfer(ctx context.Context, transferID string) (*models.Transfer, error)

	// GetStuckTransfers retrieves sagas that have sat in a non-terminal
	// post-debit state (DEBITED or COMPENSATION_PENDING) for longer than
	// maxAge. These are the orphans a crashed orchestrator leaves behind.
	GetStuckTransfers(ctx context.Context, maxAge time.Duration) ([]models.Transfer, error)
}
