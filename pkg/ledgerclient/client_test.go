package ledgerclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finbridge/ledger-transfers/pkg/api"
	"github.com/finbridge/ledger-transfers/pkg/ledgerclient"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitConfirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/CHK001/debit", r.URL.Path)

		var change api.BalanceChange
		require.NoError(t, json.NewDecoder(r.Body).Decode(&change))
		assert.True(t, change.Amount.Equal(decimal.RequireFromString("200.00")))

		json.NewEncoder(w).Encode(api.Balance{AccountId: "CHK001", Balance: decimal.RequireFromString("800.00")})
	}))
	defer server.Close()

	client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
	res := client.Debit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))

	assert.Equal(t, ledgerclient.StatusOK, res.Status)
	assert.True(t, res.NewBalance.Equal(decimal.RequireFromString("800.00")))
}

func TestCreditRejectedWithCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/SAV001/credit", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.Error{Code: api.CodeNotFound, Message: "account SAV001 not found"})
	}))
	defer server.Close()

	client := ledgerclient.New(models.SavingsLedger, server.URL, time.Second)
	res := client.Credit(context.Background(), "SAV001", decimal.RequireFromString("50.00"))

	assert.Equal(t, ledgerclient.StatusRejected, res.Status)
	assert.Equal(t, api.CodeNotFound, res.Reason)
}

func TestDebitRejectedWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
	res := client.Debit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))

	// An unreadable 4xx is still a definitive refusal.
	assert.Equal(t, ledgerclient.StatusRejected, res.Status)
	assert.Equal(t, "http_400", res.Reason)
}

func TestServerErrorIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
	res := client.Debit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))

	assert.Equal(t, ledgerclient.StatusUnreachable, res.Status)
	assert.Error(t, res.Cause)
}

func TestConnectionRefusedIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
	res := client.Debit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))

	assert.Equal(t, ledgerclient.StatusUnreachable, res.Status)
	assert.Error(t, res.Cause)
}

func TestTimeoutIsUnreachable(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := ledgerclient.New(models.CheckingLedger, server.URL, 50*time.Millisecond)
	res := client.Debit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))

	assert.Equal(t, ledgerclient.StatusUnreachable, res.Status)
	assert.Error(t, res.Cause)
}

func TestCreateAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/accounts", r.URL.Path)

			var newAccount api.NewAccount
			require.NoError(t, json.NewDecoder(r.Body).Decode(&newAccount))
			assert.Equal(t, "CHK001", newAccount.AccountId)

			json.NewEncoder(w).Encode(api.Account{
				AccountId: newAccount.AccountId,
				OwnerId:   newAccount.OwnerId,
				Balance:   newAccount.InitialBalance,
			})
		}))
		defer server.Close()

		client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
		account, err := client.CreateAccount(context.Background(), api.NewAccount{
			AccountId:      "CHK001",
			OwnerId:        "alice",
			InitialBalance: decimal.RequireFromString("1000.00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "CHK001", account.AccountID)
		assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")))
	})

	t.Run("Duplicate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(api.Error{Code: api.CodeDuplicateAccount, Message: "account CHK001 already exists"})
		}))
		defer server.Close()

		client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
		_, err := client.CreateAccount(context.Background(), api.NewAccount{AccountId: "CHK001", OwnerId: "alice"})

		assert.ErrorIs(t, err, storage.ErrDuplicateAccount)
	})
}

func TestGetAccount(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/accounts/CHK001", r.URL.Path)
			json.NewEncoder(w).Encode(api.Account{AccountId: "CHK001", OwnerId: "alice", Balance: decimal.RequireFromString("800.00")})
		}))
		defer server.Close()

		client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
		account, err := client.GetAccount(context.Background(), "CHK001")

		require.NoError(t, err)
		assert.Equal(t, "alice", account.OwnerID)
		assert.True(t, account.Balance.Equal(decimal.RequireFromString("800.00")))
	})

	t.Run("Not Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(api.Error{Code: api.CodeNotFound, Message: "account CHK999 not found"})
		}))
		defer server.Close()

		client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
		_, err := client.GetAccount(context.Background(), "CHK999")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	})
}

func TestMalformedSuccessBodyIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := ledgerclient.New(models.CheckingLedger, server.URL, time.Second)
	res := client.Credit(context.Background(), "CHK001", decimal.RequireFromString("200.00"))

	// A confirmation that cannot be read is as ambiguous as no reply.
	assert.Equal(t, ledgerclient.StatusUnreachable, res.Status)
	assert.Error(t, res.Cause)
}
