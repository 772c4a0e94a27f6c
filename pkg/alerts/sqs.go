package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI captures the subset of the SQS client used by the SQSAlerter, so
// tests can substitute a mock.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSAlerter implements the Alerter interface using AWS SQS. The queue is
// drained by the on-call tooling, not by this system.
type SQSAlerter struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSAlerter creates a new SQSAlerter.
func NewSQSAlerter(client SQSAPI, queueURL string) *SQSAlerter {
	return &SQSAlerter{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Alerter = (*SQSAlerter)(nil)

// Alert sends the operator alert to the SQS queue.
func (a *SQSAlerter) Alert(ctx context.Context, alert OperatorAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal operator alert: %w", err)
	}

	_, err = a.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(a.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send operator alert to SQS: %w", err)
	}

	return nil
}
