package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/finbridge/ledger-transfers/pkg/alerts"
	"github.com/finbridge/ledger-transfers/pkg/ledgerclient"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/saga"
	dydbstore "github.com/finbridge/ledger-transfers/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var sweeper *saga.Sweeper

// Sagas younger than this are likely still being driven by a live
// orchestrator; the sweep leaves them alone.
const stuckTransferThreshold = 20 * time.Minute

const ledgerTimeout = 5 * time.Second

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	transfersTable := os.Getenv("DYNAMODB_TRANSFERS_TABLE_NAME")
	if transfersTable == "" {
		log.Fatal("DYNAMODB_TRANSFERS_TABLE_NAME environment variable not set")
	}
	transferLog := dydbstore.New(awsdynamodb.NewFromConfig(cfg), "", transfersTable)

	checkingURL := os.Getenv("CHECKING_LEDGER_URL")
	savingsURL := os.Getenv("SAVINGS_LEDGER_URL")
	if checkingURL == "" || savingsURL == "" {
		log.Fatal("CHECKING_LEDGER_URL and SAVINGS_LEDGER_URL environment variables must be set")
	}
	ledgers := map[models.LedgerID]saga.LedgerCaller{
		models.CheckingLedger: ledgerclient.New(models.CheckingLedger, checkingURL, ledgerTimeout),
		models.SavingsLedger:  ledgerclient.New(models.SavingsLedger, savingsURL, ledgerTimeout),
	}

	var alerter alerts.Alerter = alerts.NopAlerter{}
	if queueURL := os.Getenv("ALERTS_QUEUE_URL"); queueURL != "" {
		alerter = alerts.NewSQSAlerter(sqs.NewFromConfig(cfg), queueURL)
	}

	sweeper = saga.NewSweeper(ledgers, transferLog, alerter, logger)
}

// HandleRequest is triggered by an EventBridge Schedule. It compensates
// transfers a crashed orchestrator left with confirmed debits and no
// terminal state.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting reconciliation sweep for stuck transfers...")

	compensated, err := sweeper.Sweep(ctx, stuckTransferThreshold)
	if err != nil {
		log.Printf("ERROR: reconciliation sweep failed: %v", err)
		return err
	}

	log.Printf("Reconciliation sweep finished, %d transfers compensated.", compensated)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
