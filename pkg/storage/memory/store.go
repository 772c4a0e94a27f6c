package memory

import (
	"context"
	"sync"
	"time"

	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/shopspring/decimal"
)

// Store is an in-memory AccountStore used for local runs and tests. A
// single mutex serializes every mutation, which gives the same per-account
// linearization guarantee the DynamoDB store gets from conditional writes.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

// New creates an empty Store.
func New() *Store {
	return &Store{accounts: make(map[string]*models.Account)}
}

// Make sure we conform to the interface
var _ storage.AccountStore = (*Store)(nil)

// CreateAccount creates a new account.
func (s *Store) CreateAccount(_ context.Context, account *models.Account) (*models.Account, error) {
	if account.Balance.IsNegative() {
		return nil, storage.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return nil, storage.ErrDuplicateAccount
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	copied := *account
	s.accounts[account.AccountID] = &copied
	return account, nil
}

// GetAccount retrieves an account by its ID.
func (s *Store) GetAccount(_ context.Context, accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return nil, storage.ErrAccountNotFound
	}

	copied := *account
	return &copied, nil
}

// ListAccountsByOwner retrieves all accounts held by one owner.
func (s *Store) ListAccountsByOwner(_ context.Context, ownerID string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]models.Account, 0)
	for _, account := range s.accounts {
		if account.OwnerID == ownerID {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

// Debit subtracts amount from the account balance and returns the new balance.
func (s *Store) Debit(_ context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, storage.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return decimal.Zero, storage.ErrAccountNotFound
	}
	if account.Balance.LessThan(amount) {
		return decimal.Zero, storage.ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(amount)
	account.UpdatedAt = time.Now()
	return account.Balance, nil
}

// Credit adds amount to the account balance and returns the new balance.
func (s *Store) Credit(_ context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, storage.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return decimal.Zero, storage.ErrAccountNotFound
	}

	account.Balance = account.Balance.Add(amount)
	account.UpdatedAt = time.Now()
	return account.Balance, nil
}
