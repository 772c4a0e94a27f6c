// Package ledgerclient is the orchestrator's remote proxy for one ledger
// service. It normalizes every debit/credit call to a closed three-way
// result so transport ambiguity can never be mistaken for a confirmed
// business rejection.
package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finbridge/ledger-transfers/pkg/api"
	"github.com/finbridge/ledger-transfers/pkg/mapping"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	"github.com/shopspring/decimal"
)

// Status classifies the outcome of a remote ledger call.
type Status int

const (
	// StatusOK means the ledger confirmed the operation.
	StatusOK Status = iota
	// StatusRejected means the ledger refused the operation at the
	// business level. The operation definitively did not happen.
	StatusRejected
	// StatusUnreachable means the call failed at the transport level. The
	// operation may or may not have taken effect on the remote side, so
	// callers must treat it as "assume it happened" for undo purposes.
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRejected:
		return "rejected"
	default:
		return "unreachable"
	}
}

// Result is the normalized outcome of one debit or credit call.
type Result struct {
	Status Status

	// NewBalance is only meaningful when Status is StatusOK.
	NewBalance decimal.Decimal

	// Reason carries the ledger's machine-readable rejection code when
	// Status is StatusRejected.
	Reason string

	// Cause carries the underlying transport error when Status is
	// StatusUnreachable.
	Cause error
}

// Client calls one ledger service over HTTP.
type Client struct {
	Ledger     models.LedgerID
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a Client for the ledger at baseURL. Every call carries the
// given bounded timeout; a timeout classifies as unreachable, not rejected.
func New(ledger models.LedgerID, baseURL string, timeout time.Duration) *Client {
	return &Client{
		Ledger:     ledger,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Debit asks the ledger to subtract amount from the account.
func (c *Client) Debit(ctx context.Context, accountID string, amount decimal.Decimal) Result {
	return c.post(ctx, fmt.Sprintf("%s/accounts/%s/debit", c.BaseURL, accountID), amount)
}

// Credit asks the ledger to add amount to the account.
func (c *Client) Credit(ctx context.Context, accountID string, amount decimal.Decimal) Result {
	return c.post(ctx, fmt.Sprintf("%s/accounts/%s/credit", c.BaseURL, accountID), amount)
}

// CreateAccount opens an account on the ledger. Account management is
// tooling, not part of a saga, so this returns a plain error instead of
// the three-way Result: the ledger's refusal codes map to the storage
// sentinels.
func (c *Client) CreateAccount(ctx context.Context, newAccount api.NewAccount) (*models.Account, error) {
	body, err := json.Marshal(newAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/accounts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger %s unreachable: %w", c.Ledger, err)
	}
	defer resp.Body.Close()

	return c.decodeAccount(resp)
}

// GetAccount retrieves an account from the ledger.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	url := fmt.Sprintf("%s/accounts/%s", c.BaseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger %s unreachable: %w", c.Ledger, err)
	}
	defer resp.Body.Close()

	return c.decodeAccount(resp)
}

func (c *Client) decodeAccount(resp *http.Response) (*models.Account, error) {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var account api.Account
		if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account response: %w", err)
		}
		return mapping.ToDomainAccount(&account), nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var apiErr api.Error
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return nil, fmt.Errorf("ledger %s returned status %d", c.Ledger, resp.StatusCode)
		}
		switch apiErr.Code {
		case api.CodeNotFound:
			return nil, storage.ErrAccountNotFound
		case api.CodeDuplicateAccount:
			return nil, storage.ErrDuplicateAccount
		case api.CodeInvalidAmount:
			return nil, storage.ErrInvalidAmount
		}
		return nil, fmt.Errorf("ledger %s refused: %s: %s", c.Ledger, apiErr.Code, apiErr.Message)

	default:
		return nil, fmt.Errorf("ledger %s returned status %d", c.Ledger, resp.StatusCode)
	}
}

func (c *Client) post(ctx context.Context, url string, amount decimal.Decimal) Result {
	body, err := json.Marshal(api.BalanceChange{Amount: amount})
	if err != nil {
		return Result{Status: StatusUnreachable, Cause: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Status: StatusUnreachable, Cause: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{Status: StatusUnreachable, Cause: fmt.Errorf("ledger %s unreachable: %w", c.Ledger, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var balance api.Balance
		if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
			// The operation was confirmed but the confirmation is
			// unreadable. Same ambiguity class as a transport failure.
			return Result{Status: StatusUnreachable, Cause: fmt.Errorf("failed to decode balance response: %w", err)}
		}
		return Result{Status: StatusOK, NewBalance: balance.Balance}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var apiErr api.Error
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
			// A 4xx without a readable code is still a definitive refusal.
			return Result{Status: StatusRejected, Reason: fmt.Sprintf("http_%d", resp.StatusCode)}
		}
		return Result{Status: StatusRejected, Reason: apiErr.Code}

	default:
		// 5xx: the ledger may have applied the operation before failing.
		return Result{Status: StatusUnreachable, Cause: fmt.Errorf("ledger %s returned status %d", c.Ledger, resp.StatusCode)}
	}
}
