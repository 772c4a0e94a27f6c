package alerts

import (
	"context"
	"time"
)

// OperatorAlert is the payload raised when a saga ends in a state that
// needs a human: funds left the source account and could not be returned.
type OperatorAlert struct {
	TransferID        string    `json:"transfer_id"`
	State             string    `json:"state"`
	Reason            string    `json:"reason"`
	CompensationError string    `json:"compensation_error,omitempty"`
	FlaggedAt         time.Time `json:"flagged_at"`
}

// Alerter defines the interface for a component that raises operator alerts.
type Alerter interface {
	// Alert publishes an operator alert for manual reconciliation.
	Alert(ctx context.Context, alert OperatorAlert) error
}

// NopAlerter discards alerts. Used when no alert queue is configured.
type NopAlerter struct{}

// Make sure we conform to the interface
var _ Alerter = (*NopAlerter)(nil)

// Alert does nothing.
func (NopAlerter) Alert(context.Context, OperatorAlert) error { return nil }
