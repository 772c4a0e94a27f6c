package mapping

import (
	"github.com/finbridge/ledger-transfers/pkg/api"
	"github.com/finbridge/ledger-transfers/pkg/models"
)

// ToApiAccount converts a domain Account model to an API Account model.
func ToApiAccount(account *models.Account) *api.Account {
	return &api.Account{
		AccountId: account.AccountID,
		OwnerId:   account.OwnerID,
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// ToDomainAccount converts an API Account model back to its domain model.
func ToDomainAccount(account *api.Account) *models.Account {
	return &models.Account{
		AccountID: account.AccountId,
		OwnerID:   account.OwnerId,
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// ToDomainNewAccount converts an API NewAccount model to a domain Account model.
func ToDomainNewAccount(newAccount *api.NewAccount) *models.Account {
	return &models.Account{
		AccountID: newAccount.AccountId,
		OwnerID:   newAccount.OwnerId,
		Balance:   newAccount.InitialBalance,
	}
}

// ToDomainTransferRequest converts an API NewTransfer model to a domain TransferRequest.
func ToDomainTransferRequest(newTransfer *api.NewTransfer) *models.TransferRequest {
	return &models.TransferRequest{
		SourceLedger:    models.LedgerID(newTransfer.SourceLedger),
		SourceAccountID: newTransfer.SourceAccountId,
		DestLedger:      models.LedgerID(newTransfer.DestLedger),
		DestAccountID:   newTransfer.DestAccountId,
		Amount:          newTransfer.Amount,
		FaultInjected:   newTransfer.FaultInjected,
	}
}

// ToApiTransferResult converts a domain TransferResult to its API model.
func ToApiTransferResult(result *models.TransferResult) *api.TransferResult {
	return &api.TransferResult{
		TransferId:      result.TransferID,
		Outcome:         string(result.Outcome),
		FailureReason:   result.FailureReason,
		SourceUncertain: result.SourceUncertain,
		SourceBalance:   result.SourceBalance,
		DestBalance:     result.DestBalance,
	}
}

// ToApiTransfer converts a domain Transfer record to its API model.
func ToApiTransfer(transfer *models.Transfer) *api.Transfer {
	return &api.Transfer{
		Id:              transfer.ID,
		SourceAccountId: transfer.SourceAccountID,
		SourceLedger:    string(transfer.SourceLedger),
		DestAccountId:   transfer.DestAccountID,
		DestLedger:      string(transfer.DestLedger),
		Amount:          transfer.Amount,
		State:           string(transfer.State),
		FailureReason:   transfer.FailureReason,
		SourceUncertain: transfer.SourceUncertain,
		CreatedAt:       transfer.CreatedAt,
		UpdatedAt:       transfer.UpdatedAt,
	}
}
