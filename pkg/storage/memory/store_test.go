package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/finbridge/ledger-transfers/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, store *memory.Store, accountID, balance string) {
	t.Helper()
	_, err := store.CreateAccount(context.Background(), &models.Account{
		AccountID: accountID,
		OwnerID:   "alice",
		Balance:   decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
}

func TestCreateAccount(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "CHK001", "1000.00")

	t.Run("Duplicate", func(t *testing.T) {
		_, err := store.CreateAccount(context.Background(), &models.Account{
			AccountID: "CHK001",
			OwnerID:   "alice",
			Balance:   decimal.Zero,
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateAccount)
	})

	t.Run("Negative Opening Balance", func(t *testing.T) {
		_, err := store.CreateAccount(context.Background(), &models.Account{
			AccountID: "CHK002",
			OwnerID:   "alice",
			Balance:   decimal.RequireFromString("-1.00"),
		})
		assert.ErrorIs(t, err, storage.ErrInvalidAmount)
	})
}

func TestGetAccount(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "CHK001", "1000.00")

	account, err := store.GetAccount(context.Background(), "CHK001")
	require.NoError(t, err)
	assert.Equal(t, "CHK001", account.AccountID)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")))

	// Reads do not mutate: asking again reports the same balance.
	again, err := store.GetAccount(context.Background(), "CHK001")
	require.NoError(t, err)
	assert.True(t, again.Balance.Equal(account.Balance))

	_, err = store.GetAccount(context.Background(), "CHK999")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestListAccountsByOwner(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "CHK001", "1000.00")
	seedAccount(t, store, "CHK002", "50.00")

	accounts, err := store.ListAccountsByOwner(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	accounts, err = store.ListAccountsByOwner(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestDebit(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "CHK001", "1000.00")

	t.Run("Success", func(t *testing.T) {
		balance, err := store.Debit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("800.00")))
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		_, err := store.Debit(context.Background(), "CHK001", decimal.RequireFromString("10000.00"))
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

		// A refused debit leaves the balance untouched.
		account, err := store.GetAccount(context.Background(), "CHK001")
		require.NoError(t, err)
		assert.True(t, account.Balance.Equal(decimal.RequireFromString("800.00")))
	})

	t.Run("Exact Balance", func(t *testing.T) {
		balance, err := store.Debit(context.Background(), "CHK001", decimal.RequireFromString("800.00"))
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		_, err := store.Debit(context.Background(), "CHK001", decimal.Zero)
		assert.ErrorIs(t, err, storage.ErrInvalidAmount)

		_, err = store.Debit(context.Background(), "CHK001", decimal.RequireFromString("-5.00"))
		assert.ErrorIs(t, err, storage.ErrInvalidAmount)
	})

	t.Run("Unknown Account", func(t *testing.T) {
		_, err := store.Debit(context.Background(), "CHK999", decimal.RequireFromString("1.00"))
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	})
}

func TestCredit(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "SAV001", "500.00")

	balance, err := store.Credit(context.Background(), "SAV001", decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("500.01")))

	_, err = store.Credit(context.Background(), "SAV999", decimal.RequireFromString("1.00"))
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	_, err = store.Credit(context.Background(), "SAV001", decimal.Zero)
	assert.ErrorIs(t, err, storage.ErrInvalidAmount)
}

// Concurrent debits against one account must never overdraw it and every
// accepted debit must be reflected in the final balance.
func TestConcurrentDebits(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "CHK001", "100.00")

	const workers = 50
	amount := decimal.RequireFromString("3.00")

	var wg sync.WaitGroup
	accepted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Debit(context.Background(), "CHK001", amount)
			if err == nil {
				accepted <- struct{}{}
			} else {
				assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()
	close(accepted)

	succeeded := 0
	for range accepted {
		succeeded++
	}

	// 100.00 admits exactly 33 debits of 3.00.
	assert.Equal(t, 33, succeeded)

	account, err := store.GetAccount(context.Background(), "CHK001")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1.00")))
	assert.False(t, account.Balance.IsNegative())
}
