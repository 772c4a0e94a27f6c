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

const ownerGSI = "owner_id-index"

// accountItem is the DynamoDB representation of an account. The balance is
// stored as a native Number attribute so condition expressions compare it
// numerically and exactly.
type accountItem struct {
	AccountID string                `dynamodbav:"account_id"`
	OwnerID   string                `dynamodbav:"owner_id"`
	Balance   attributevalue.Number `dynamodbav:"balance"`
	CreatedAt time.Time             `dynamodbav:"created_at"`
	UpdatedAt time.Time             `dynamodbav:"updated_at"`
}

func (i *accountItem) toAccount() (*models.Account, error) {
	balance, err := decimal.NewFromString(string(i.Balance))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored balance %q: %w", i.Balance, err)
	}
	return &models.Account{
		AccountID: i.AccountID,
		OwnerID:   i.OwnerID,
		Balance:   balance,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}, nil
}

// CreateAccount creates a new account record in DynamoDB.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.Balance.IsNegative() {
		return nil, storage.ErrInvalidAmount
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	item := accountItem{
		AccountID: account.AccountID,
		OwnerID:   account.OwnerID,
		Balance:   attributevalue.Number(account.Balance.String()),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	accountAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.AccountsTableName),
		Item:                accountAV,
		ConditionExpression: aws.String("attribute_not_exists(account_id)"),
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, storage.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create account in DynamoDB: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account from DynamoDB by its ID.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrAccountNotFound
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return item.toAccount()
}

// ListAccountsByOwner retrieves all accounts held by an owner via the owner GSI.
func (s *Store) ListAccountsByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.AccountsTableName),
		IndexName:              aws.String(ownerGSI),
		KeyConditionExpression: aws.String("owner_id = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by owner: %w", err)
	}

	var items []accountItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}

	accounts := make([]models.Account, 0, len(items))
	for i := range items {
		account, err := items[i].toAccount()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	return accounts, nil
}

// Debit atomically subtracts amount from the account balance. The condition
// expression enforces the non-negative balance invariant server-side, so
// concurrent debits are linearized by DynamoDB and neither can overdraw.
func (s *Store) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, storage.ErrInvalidAmount
	}

	// Existence is checked up front so a conditional failure on the update
	// can be attributed to insufficient funds.
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	newBalance, err := s.applyDelta(ctx, accountID, "SET balance = balance - :amount, updated_at = :now", "balance >= :amount", amount)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return decimal.Zero, storage.ErrInsufficientFunds
		}
		return decimal.Zero, fmt.Errorf("failed to debit account: %w", err)
	}

	return newBalance, nil
}

// Credit atomically adds amount to the account balance.
func (s *Store) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, storage.ErrInvalidAmount
	}

	newBalance, err := s.applyDelta(ctx, accountID, "SET balance = balance + :amount, updated_at = :now", "attribute_exists(account_id)", amount)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return decimal.Zero, storage.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to credit account: %w", err)
	}

	return newBalance, nil
}

// applyDelta runs a single conditional arithmetic update against one
// account and returns the new balance.
func (s *Store) applyDelta(ctx context.Context, accountID, updateExpr, conditionExpr string, amount decimal.Decimal) (decimal.Decimal, error) {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key: map[string]types.AttributeValue{
			"account_id": &types.AttributeValueMemberS{Value: accountID},
		},
		UpdateExpression:    aws.String(updateExpr),
		ConditionExpression: aws.String(conditionExpr),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount": &types.AttributeValueMemberN{Value: amount.String()},
			":now":    nowAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		return decimal.Zero, err
	}

	balanceAttr, ok := result.Attributes["balance"].(*types.AttributeValueMemberN)
	if !ok {
		return decimal.Zero, fmt.Errorf("updated account %s has no numeric balance attribute", accountID)
	}

	newBalance, err := decimal.NewFromString(balanceAttr.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse updated balance %q: %w", balanceAttr.Value, err)
	}

	return newBalance, nil
}
