package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/shopspring/decimal"
)

const stuckTransferGSI = "state-updated_at-index"

// timeFormat is second-precision RFC3339 so the GSI sort key orders
// lexicographically in chronological order.
const timeFormat = time.RFC3339

// transferItem is the DynamoDB representation of a saga record.
type transferItem struct {
	ID              string                `dynamodbav:"id"`
	SourceLedger    string                `dynamodbav:"source_ledger"`
	SourceAccountID string                `dynamodbav:"source_account_id"`
	DestLedger      string                `dynamodbav:"dest_ledger"`
	DestAccountID   string                `dynamodbav:"dest_account_id"`
	Amount          attributevalue.Number `dynamodbav:"amount"`
	State           string                `dynamodbav:"state"`
	FailureReason   string                `dynamodbav:"failure_reason,omitempty"`
	SourceUncertain bool                  `dynamodbav:"source_uncertain"`
	CreatedAt       string                `dynamodbav:"created_at"`
	UpdatedAt       string                `dynamodbav:"updated_at"`
}

func (i *transferItem) toTransfer() (*models.Transfer, error) {
	amount, err := decimal.NewFromString(string(i.Amount))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", i.Amount, err)
	}
	createdAt, err := time.Parse(timeFormat, i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(timeFormat, i.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &models.Transfer{
		ID:              i.ID,
		SourceLedger:    models.LedgerID(i.SourceLedger),
		SourceAccountID: i.SourceAccountID,
		DestLedger:      models.LedgerID(i.DestLedger),
		DestAccountID:   i.DestAccountID,
		Amount:          amount,
		State:           models.TransferState(i.State),
		FailureReason:   i.FailureReason,
		SourceUncertain: i.SourceUncertain,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// CreateTransfer persists the initial saga record.
func (s *Store) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	now := time.Now().UTC()
	transfer.CreatedAt = now
	transfer.UpdatedAt = now

	item := transferItem{
		ID:              transfer.ID,
		SourceLedger:    string(transfer.SourceLedger),
		SourceAccountID: transfer.SourceAccountID,
		DestLedger:      string(transfer.DestLedger),
		DestAccountID:   transfer.DestAccountID,
		Amount:          attributevalue.Number(transfer.Amount.String()),
		State:           string(transfer.State),
		SourceUncertain: transfer.SourceUncertain,
		CreatedAt:       now.Format(timeFormat),
		UpdatedAt:       now.Format(timeFormat),
	}
	transferAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.TransfersTableName),
		Item:                transferAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to create transfer in DynamoDB: %w", err)
	}

	return nil
}

// AdvanceTransfer atomically moves the saga from upd.From to upd.To. The
// condition on the current state makes the transition a compare-and-set,
// so a concurrent sweep and orchestrator cannot both win the same step.
func (s *Store) AdvanceTransfer(ctx context.Context, transferID string, upd storage.TransferUpdate) error {
	updateExpr := "SET #state = :to, updated_at = :now"
	values := map[string]types.AttributeValue{
		":to":   &types.AttributeValueMemberS{Value: string(upd.To)},
		":from": &types.AttributeValueMemberS{Value: string(upd.From)},
		":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(timeFormat)},
	}
	if upd.Reason != "" {
		updateExpr += ", failure_reason = :reason"
		values[":reason"] = &types.AttributeValueMemberS{Value: upd.Reason}
	}
	if upd.SourceUncertain {
		updateExpr += ", source_uncertain = :uncertain"
		values[":uncertain"] = &types.AttributeValueMemberBOOL{Value: true}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransfersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: transferID},
		},
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("#state = :from"),
		ExpressionAttributeNames:  map[string]string{"#state": "state"},
		ExpressionAttributeValues: values,
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrStateConflict
		}
		return fmt.Errorf("failed to advance transfer state: %w", err)
	}

	return nil
}

// GetTransfer retrieves a saga record from DynamoDB by its ID.
func (s *Store) GetTransfer(ctx context.Context, transferID string) (*models.Transfer, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.TransfersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: transferID},
		},
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrTransferNotFound
	}

	var item transferItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transfer: %w", err)
	}

	return item.toTransfer()
}

// stuckStates are the non-terminal post-debit states a crashed
// orchestrator can strand a saga in. DEBIT_FAILED with an uncertain
// outcome is deliberately not swept: compensating an unconfirmed debit
// could mint money.
var stuckStates = []models.TransferState{models.DEBITED, models.COMPENSATION_PENDING}

// GetStuckTransfers retrieves sagas sitting in a stuck state for longer than maxAge.
func (s *Store) GetStuckTransfers(ctx context.Context, maxAge time.Duration) ([]models.Transfer, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(timeFormat)

	var transfers []models.Transfer
	for _, state := range stuckStates {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.TransfersTableName),
			IndexName:              aws.String(stuckTransferGSI),
			KeyConditionExpression: aws.String("#state = :state AND updated_at < :cutoff"),
			ExpressionAttributeNames: map[string]string{
				"#state": "state",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":state":  &types.AttributeValueMemberS{Value: string(state)},
				":cutoff": &types.AttributeValueMemberS{Value: cutoff},
			},
		}

		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for stuck transfers: %w", err)
		}

		var items []transferItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stuck transfers: %w", err)
		}

		for i := range items {
			transfer, err := items[i].toTransfer()
			if err != nil {
				return nil, err
			}
			transfers = append(transfers, *transfer)
		}
	}

	return transfers, nil
}
