package saga_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/finbridge/ledger-transfers/pkg/alerts"
	alertmocks "github.com/finbridge/ledger-transfers/pkg/alerts/mocks"
	"github.com/finbridge/ledger-transfers/pkg/ledgerclient"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/saga"
	"github.com/finbridge/ledger-transfers/pkg/saga/mocks"
	storagemocks "github.com/finbridge/ledger-transfers/pkg/storage/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(amount string) *models.TransferRequest {
	return &models.TransferRequest{
		SourceLedger:    models.CheckingLedger,
		SourceAccountID: "CHK001",
		DestLedger:      models.SavingsLedger,
		DestAccountID:   "SAV001",
		Amount:          decimal.RequireFromString(amount),
	}
}

func newTransferLog() *storagemocks.TransferLog {
	transferLog := new(storagemocks.TransferLog)
	transferLog.On("CreateTransfer", mock.Anything, mock.Anything).Return(nil)
	transferLog.On("AdvanceTransfer", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return transferLog
}

func newOrchestrator(source, dest *mocks.LedgerCaller, transferLog *storagemocks.TransferLog, alerter alerts.Alerter) *saga.Orchestrator {
	ledgers := map[models.LedgerID]saga.LedgerCaller{
		models.CheckingLedger: source,
		models.SavingsLedger:  dest,
	}
	return saga.New(ledgers, transferLog, alerter, discardLogger())
}

func TestTransferCompleted(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := newTransferLog()

	source.On("Debit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("800.00")})
	dest.On("Credit", mock.Anything, "SAV001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("700.00")})

	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})
	result, err := o.Transfer(context.Background(), newRequest("200.00"))

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeCompleted, result.Outcome)
	assert.NotEmpty(t, result.TransferID)
	assert.True(t, result.SourceBalance.Equal(decimal.RequireFromString("800.00")))
	assert.True(t, result.DestBalance.Equal(decimal.RequireFromString("700.00")))
	source.AssertExpectations(t)
	dest.AssertExpectations(t)
	transferLog.AssertExpectations(t)
}

func TestTransferDebitRejected(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := newTransferLog()

	source.On("Debit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusRejected, Reason: "insufficient_funds"})

	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})
	result, err := o.Transfer(context.Background(), newRequest("10000.00"))

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeDebitFailed, result.Outcome)
	assert.Equal(t, "insufficient_funds", result.FailureReason)
	assert.False(t, result.SourceUncertain)
	// Nothing to undo: no credit and no compensation may be attempted.
	dest.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	source.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferDebitUnreachable(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := newTransferLog()

	source.On("Debit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusUnreachable, Cause: errors.New("connection refused")})

	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})
	result, err := o.Transfer(context.Background(), newRequest("200.00"))

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeDebitFailed, result.Outcome)
	assert.True(t, result.SourceUncertain)
	assert.Contains(t, result.FailureReason, "unreachable")
	// The debit may have silently applied; crediting the source here
	// could mint money, so no compensation is attempted.
	source.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	dest.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferCreditFailsCompensated(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := newTransferLog()

	source.On("Debit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("800.00")})
	dest.On("Credit", mock.Anything, "SAV001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusRejected, Reason: "not_found"})
	source.On("Credit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("1000.00")})

	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})
	result, err := o.Transfer(context.Background(), newRequest("200.00"))

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeCompensated, result.Outcome)
	assert.Equal(t, "not_found", result.FailureReason)
	assert.True(t, result.SourceBalance.Equal(decimal.RequireFromString("1000.00")))
	source.AssertExpectations(t)
	dest.AssertExpectations(t)
}

func TestTransferFaultInjectedCompensated(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := newTransferLog()

	source.On("Debit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("700.00")})
	source.On("Credit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("800.00")})

	req := newRequest("100.00")
	req.FaultInjected = true

	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})
	result, err := o.Transfer(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeCompensated, result.Outcome)
	assert.Equal(t, "fault_injected", result.FailureReason)
	// The injected fault replaces the credit attempt entirely.
	dest.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	source.AssertExpectations(t)
}

func TestTransferCompensationFailed(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := newTransferLog()
	alerter := new(alertmocks.Alerter)

	source.On("Debit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusOK, NewBalance: decimal.RequireFromString("800.00")})
	dest.On("Credit", mock.Anything, "SAV001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusUnreachable, Cause: errors.New("timeout")})
	source.On("Credit", mock.Anything, "CHK001", mock.Anything).Once().
		Return(ledgerclient.Result{Status: ledgerclient.StatusUnreachable, Cause: errors.New("timeout")})
	alerter.On("Alert", mock.Anything, mock.MatchedBy(func(alert alerts.OperatorAlert) bool {
		return alert.State == string(models.COMPENSATION_FAILED) && alert.CompensationError != ""
	})).Once().Return(nil)

	o := newOrchestrator(source, dest, transferLog, alerter)
	result, err := o.Transfer(context.Background(), newRequest("200.00"))

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeCompensationFailed, result.Outcome)
	assert.Contains(t, result.FailureReason, "unreachable")
	assert.Contains(t, result.CompensationErr, "unreachable")
	alerter.AssertExpectations(t)
	source.AssertExpectations(t)
	dest.AssertExpectations(t)
}

func TestTransferValidation(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := new(storagemocks.TransferLog)
	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})

	t.Run("Zero Amount", func(t *testing.T) {
		req := newRequest("0")
		_, err := o.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, saga.ErrInvalidRequest)
	})

	t.Run("Negative Amount", func(t *testing.T) {
		req := newRequest("-5.00")
		_, err := o.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, saga.ErrInvalidRequest)
	})

	t.Run("Same Ledger", func(t *testing.T) {
		req := newRequest("10.00")
		req.DestLedger = models.CheckingLedger
		_, err := o.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, saga.ErrInvalidRequest)
	})

	t.Run("Missing Account", func(t *testing.T) {
		req := newRequest("10.00")
		req.DestAccountID = ""
		_, err := o.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, saga.ErrInvalidRequest)
	})

	t.Run("Unknown Ledger", func(t *testing.T) {
		req := newRequest("10.00")
		req.DestLedger = models.LedgerID("brokerage")
		_, err := o.Transfer(context.Background(), req)
		assert.ErrorIs(t, err, saga.ErrUnknownLedger)
	})

	// No saga record is created and no remote call is made for a request
	// that fails validation.
	transferLog.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
	source.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferLogCreateFails(t *testing.T) {
	source := new(mocks.LedgerCaller)
	dest := new(mocks.LedgerCaller)
	transferLog := new(storagemocks.TransferLog)
	transferLog.On("CreateTransfer", mock.Anything, mock.Anything).Return(errors.New("dynamodb down"))

	o := newOrchestrator(source, dest, transferLog, alerts.NopAlerter{})
	_, err := o.Transfer(context.Background(), newRequest("200.00"))

	assert.Error(t, err)
	// No money moves without a durable saga record.
	source.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
}
