package storage

import (
	"context"

	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/shopspring/decimal"
)

// AccountStore defines the interface a single ledger exposes over its
// accounts. Each mutating operation is atomic with respect to concurrent
// operations on the same account: no lost updates, and no transient
// negative balance is ever observable.
type AccountStore interface {
	// CreateAccount creates a new account with the given opening balance.
	// Returns ErrDuplicateAccount if the account ID is already taken.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetAccount retrieves an account by its ID.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// ListAccountsByOwner retrieves all accounts held by one owner.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]models.Account, error)

	// Debit subtracts amount from the account balance and returns the new
	// balance. Returns ErrInsufficientFunds if the balance would go
	// negative, ErrInvalidAmount if amount is not strictly positive.
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Credit adds amount to the account balance and returns the new
	// balance. Credit never fails for insufficient funds.
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
}
