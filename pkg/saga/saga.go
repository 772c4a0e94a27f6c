// Package saga coordinates the two-leg transfer between the checking and
// savings ledgers. The flow is an explicit finite-state machine persisted
// through a durable transfer log: debit the source, credit the
// destination, and issue a compensating credit on the source when the
// second leg cannot complete.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbridge/ledger-transfers/pkg/alerts"
	"github.com/finbridge/ledger-transfers/pkg/ledgerclient"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidRequest is returned when a transfer request fails validation
// before any remote call is made.
var ErrInvalidRequest = errors.New("invalid transfer request")

// ErrUnknownLedger is returned when a transfer names a ledger the
// orchestrator has no client for.
var ErrUnknownLedger = errors.New("unknown ledger")

// LedgerCaller is the orchestrator's view of one remote ledger. Only
// ledgerclient.Result's Rejected status may be treated as "the operation
// did not happen"; Unreachable means the outcome is unknown.
type LedgerCaller interface {
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) ledgerclient.Result
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) ledgerclient.Result
}

// Orchestrator runs transfer sagas. It holds no mutable state between
// transfers; per-account atomicity is the ledgers' job.
type Orchestrator struct {
	ledgers map[models.LedgerID]LedgerCaller
	log     storage.TransferLog
	alerter alerts.Alerter
	logger  *slog.Logger
}

// New creates an Orchestrator. Both ledger clients are passed in fully
// configured; there is no runtime lookup.
func New(ledgers map[models.LedgerID]LedgerCaller, transferLog storage.TransferLog, alerter alerts.Alerter, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		ledgers: ledgers,
		log:     transferLog,
		alerter: alerter,
		logger:  logger,
	}
}

// Transfer runs one saga to a terminal state and reports the outcome.
// Once the debit has committed the saga always runs to completion; there
// is no cancellation hook while funds are in motion.
func (o *Orchestrator) Transfer(ctx context.Context, req *models.TransferRequest) (*models.TransferResult, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}
	source := o.ledgers[req.SourceLedger]
	dest := o.ledgers[req.DestLedger]

	record := &models.Transfer{
		ID:              uuid.New().String(),
		SourceLedger:    req.SourceLedger,
		SourceAccountID: req.SourceAccountID,
		DestLedger:      req.DestLedger,
		DestAccountID:   req.DestAccountID,
		Amount:          req.Amount,
		State:           models.DEBITING,
	}

	// The saga record is durable before any money moves. If this write
	// fails the transfer is refused outright; nothing needs undoing yet.
	if err := o.log.CreateTransfer(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist transfer record: %w", err)
	}

	logger := o.logger.With(
		slog.String("transfer_id", record.ID),
		slog.String("source", fmt.Sprintf("%s/%s", req.SourceLedger, req.SourceAccountID)),
		slog.String("dest", fmt.Sprintf("%s/%s", req.DestLedger, req.DestAccountID)),
		slog.String("amount", req.Amount.String()),
	)

	// Leg 1: debit the source ledger.
	debit := source.Debit(ctx, req.SourceAccountID, req.Amount)
	switch debit.Status {
	case ledgerclient.StatusRejected:
		o.advance(ctx, logger, record.ID, storage.TransferUpdate{
			From: models.DEBITING, To: models.DEBIT_FAILED, Reason: debit.Reason,
		})
		logger.Info("transfer refused at debit", slog.String("reason", debit.Reason))
		return &models.TransferResult{
			TransferID:    record.ID,
			Outcome:       models.OutcomeDebitFailed,
			FailureReason: debit.Reason,
		}, nil

	case ledgerclient.StatusUnreachable:
		// The debit may have silently applied. Do not compensate: a
		// credit against an unconfirmed debit could mint money. Flag the
		// transfer for manual reconciliation instead.
		reason := failureReason(debit)
		o.advance(ctx, logger, record.ID, storage.TransferUpdate{
			From: models.DEBITING, To: models.DEBIT_FAILED, Reason: reason, SourceUncertain: true,
		})
		logger.Warn("debit outcome unknown, manual reconciliation may be required", slog.String("reason", reason))
		return &models.TransferResult{
			TransferID:      record.ID,
			Outcome:         models.OutcomeDebitFailed,
			FailureReason:   reason,
			SourceUncertain: true,
		}, nil
	}

	// Funds are out of the source account. From here the saga must reach
	// a terminal state before returning.
	o.advance(ctx, logger, record.ID, storage.TransferUpdate{
		From: models.DEBITING, To: models.DEBITED,
	})

	// Leg 2: credit the destination ledger.
	var credit ledgerclient.Result
	if req.FaultInjected {
		credit = ledgerclient.Result{Status: ledgerclient.StatusRejected, Reason: "fault_injected"}
	} else {
		credit = dest.Credit(ctx, req.DestAccountID, req.Amount)
	}

	if credit.Status == ledgerclient.StatusOK {
		o.advance(ctx, logger, record.ID, storage.TransferUpdate{
			From: models.DEBITED, To: models.COMPLETED,
		})
		logger.Info("transfer completed")
		return &models.TransferResult{
			TransferID:    record.ID,
			Outcome:       models.OutcomeCompleted,
			SourceBalance: &debit.NewBalance,
			DestBalance:   &credit.NewBalance,
		}, nil
	}

	// The credit leg failed. Undo the debit with a compensating credit on
	// the source ledger, attempted exactly once.
	reason := failureReason(credit)
	o.advance(ctx, logger, record.ID, storage.TransferUpdate{
		From: models.DEBITED, To: models.COMPENSATION_PENDING, Reason: reason,
	})

	comp := source.Credit(ctx, req.SourceAccountID, req.Amount)
	if comp.Status == ledgerclient.StatusOK {
		o.advance(ctx, logger, record.ID, storage.TransferUpdate{
			From: models.COMPENSATION_PENDING, To: models.COMPENSATED,
		})
		logger.Info("transfer failed, funds returned to source", slog.String("reason", reason))
		return &models.TransferResult{
			TransferID:    record.ID,
			Outcome:       models.OutcomeCompensated,
			FailureReason: reason,
			SourceBalance: &comp.NewBalance,
		}, nil
	}

	// Compensation itself failed: funds left the source and could not be
	// returned. This is the one unrecoverable outcome and must never be
	// swallowed.
	compErr := failureReason(comp)
	o.advance(ctx, logger, record.ID, storage.TransferUpdate{
		From: models.COMPENSATION_PENDING, To: models.COMPENSATION_FAILED, Reason: reason,
	})
	logger.Error("compensation failed, manual intervention required",
		slog.String("reason", reason),
		slog.String("compensation_error", compErr),
	)
	if err := o.alerter.Alert(ctx, alerts.OperatorAlert{
		TransferID:        record.ID,
		State:             string(models.COMPENSATION_FAILED),
		Reason:            reason,
		CompensationError: compErr,
		FlaggedAt:         time.Now(),
	}); err != nil {
		logger.Error("failed to raise operator alert", slog.String("error", err.Error()))
	}
	return &models.TransferResult{
		TransferID:      record.ID,
		Outcome:         models.OutcomeCompensationFailed,
		FailureReason:   reason,
		CompensationErr: compErr,
	}, nil
}

func (o *Orchestrator) validate(req *models.TransferRequest) error {
	if req.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if req.SourceAccountID == "" || req.DestAccountID == "" {
		return fmt.Errorf("%w: source and destination accounts are required", ErrInvalidRequest)
	}
	if req.SourceLedger == req.DestLedger {
		return fmt.Errorf("%w: source and destination must be different ledgers", ErrInvalidRequest)
	}
	if _, ok := o.ledgers[req.SourceLedger]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLedger, req.SourceLedger)
	}
	if _, ok := o.ledgers[req.DestLedger]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLedger, req.DestLedger)
	}
	return nil
}

// advance persists one state transition. A log failure is reported but
// never interrupts the money path: the remote calls, not the log, decide
// where the funds are.
func (o *Orchestrator) advance(ctx context.Context, logger *slog.Logger, transferID string, upd storage.TransferUpdate) {
	if err := o.log.AdvanceTransfer(ctx, transferID, upd); err != nil {
		logger.Error("failed to persist state transition",
			slog.String("from", string(upd.From)),
			slog.String("to", string(upd.To)),
			slog.String("error", err.Error()),
		)
	}
}

// failureReason renders a non-OK result as a stable reason string.
func failureReason(res ledgerclient.Result) string {
	if res.Status == ledgerclient.StatusRejected {
		return res.Reason
	}
	if res.Cause != nil {
		return fmt.Sprintf("unreachable: %v", res.Cause)
	}
	return "unreachable"
}
