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
)

// Sweeper compensates sagas a crashed orchestrator left behind. A stuck
// transfer is one sitting in DEBITED or COMPENSATION_PENDING: the source
// debit is confirmed, so returning the funds is always safe (re-crediting
// an already-compensated transfer is the accepted risk; re-debiting never
// is). Transfers whose debit outcome is unknown are never touched.
type Sweeper struct {
	ledgers map[models.LedgerID]LedgerCaller
	log     storage.TransferLog
	alerter alerts.Alerter
	logger  *slog.Logger
}

// NewSweeper creates a Sweeper over the same ledger clients and transfer
// log the orchestrator uses.
func NewSweeper(ledgers map[models.LedgerID]LedgerCaller, transferLog storage.TransferLog, alerter alerts.Alerter, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		ledgers: ledgers,
		log:     transferLog,
		alerter: alerter,
		logger:  logger,
	}
}

// Sweep finds transfers stuck for longer than maxAge and drives each to a
// terminal state. One failing transfer does not stop the batch. Returns
// the number of transfers compensated.
func (s *Sweeper) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	stuck, err := s.log.GetStuckTransfers(ctx, maxAge)
	if err != nil {
		return 0, fmt.Errorf("failed to get stuck transfers: %w", err)
	}

	compensated := 0
	for i := range stuck {
		transfer := &stuck[i]
		logger := s.logger.With(
			slog.String("transfer_id", transfer.ID),
			slog.String("state", string(transfer.State)),
		)

		if err := s.claim(ctx, transfer); err != nil {
			if errors.Is(err, storage.ErrStateConflict) {
				// Another process already advanced this saga.
				logger.Info("skipping transfer claimed elsewhere")
				continue
			}
			logger.Error("failed to claim stuck transfer", slog.String("error", err.Error()))
			continue
		}

		if s.compensate(ctx, logger, transfer) {
			compensated++
		}
	}

	return compensated, nil
}

// claim moves the transfer into COMPENSATION_PENDING. For a transfer
// already in that state the compare-and-set bumps updated_at, which keeps
// the next sweep from re-picking it immediately.
func (s *Sweeper) claim(ctx context.Context, transfer *models.Transfer) error {
	return s.log.AdvanceTransfer(ctx, transfer.ID, storage.TransferUpdate{
		From:   transfer.State,
		To:     models.COMPENSATION_PENDING,
		Reason: "orphaned by orchestrator, recovered by sweep",
	})
}

func (s *Sweeper) compensate(ctx context.Context, logger *slog.Logger, transfer *models.Transfer) bool {
	source, ok := s.ledgers[transfer.SourceLedger]
	if !ok {
		logger.Error("no client for source ledger", slog.String("ledger", string(transfer.SourceLedger)))
		return false
	}

	comp := source.Credit(ctx, transfer.SourceAccountID, transfer.Amount)
	if comp.Status == ledgerclient.StatusOK {
		if err := s.log.AdvanceTransfer(ctx, transfer.ID, storage.TransferUpdate{
			From: models.COMPENSATION_PENDING, To: models.COMPENSATED,
		}); err != nil {
			logger.Error("compensated but failed to persist state", slog.String("error", err.Error()))
		}
		logger.Info("stuck transfer compensated")
		return true
	}

	compErr := failureReason(comp)
	if err := s.log.AdvanceTransfer(ctx, transfer.ID, storage.TransferUpdate{
		From: models.COMPENSATION_PENDING, To: models.COMPENSATION_FAILED, Reason: compErr,
	}); err != nil {
		logger.Error("failed to persist compensation failure", slog.String("error", err.Error()))
	}
	logger.Error("sweep compensation failed, manual intervention required", slog.String("error", compErr))

	if err := s.alerter.Alert(ctx, alerts.OperatorAlert{
		TransferID:        transfer.ID,
		State:             string(models.COMPENSATION_FAILED),
		Reason:            transfer.FailureReason,
		CompensationError: compErr,
		FlaggedAt:         time.Now(),
	}); err != nil {
		logger.Error("failed to raise operator alert", slog.String("error", err.Error()))
	}
	return false
}
