package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/finbridge/ledger-transfers/pkg/storage"
)

// DynamoDBAPI captures the subset of the DynamoDB client used by the
// Store, so tests can substitute a mock.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store implements the AccountStore and TransferLog interfaces using AWS DynamoDB.
type Store struct {
	Client             DynamoDBAPI
	AccountsTableName  string
	TransfersTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, accountsTable, transfersTable string) *Store {
	return &Store{
		Client:             client,
		AccountsTableName:  accountsTable,
		TransfersTableName: transfersTable,
	}
}

// Make sure we conform to the interfaces
var _ storage.AccountStore = (*Store)(nil)
var _ storage.TransferLog = (*Store)(nil)
