package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/finbridge/ledger-transfers/pkg/alerts"
	"github.com/finbridge/ledger-transfers/pkg/handlers/transfers"
	"github.com/finbridge/ledger-transfers/pkg/ledgerclient"
	appmiddleware "github.com/finbridge/ledger-transfers/pkg/middleware"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/saga"
	dydbstore "github.com/finbridge/ledger-transfers/pkg/storage/dynamodb"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const defaultLedgerTimeout = 5 * time.Second

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	checkingURL := os.Getenv("CHECKING_LEDGER_URL")
	savingsURL := os.Getenv("SAVINGS_LEDGER_URL")
	if checkingURL == "" || savingsURL == "" {
		log.Fatal("CHECKING_LEDGER_URL and SAVINGS_LEDGER_URL environment variables must be set")
	}

	timeout := defaultLedgerTimeout
	if v := os.Getenv("LEDGER_TIMEOUT"); v != "" {
		timeout, err = time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid LEDGER_TIMEOUT: %v", err)
		}
	}

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	transfersTable := os.Getenv("DYNAMODB_TRANSFERS_TABLE_NAME")
	if transfersTable == "" {
		log.Fatal("DYNAMODB_TRANSFERS_TABLE_NAME environment variable not set")
	}
	transferLog := dydbstore.New(awsdynamodb.NewFromConfig(cfg), "", transfersTable)

	var alerter alerts.Alerter = alerts.NopAlerter{}
	if queueURL := os.Getenv("ALERTS_QUEUE_URL"); queueURL != "" {
		alerter = alerts.NewSQSAlerter(sqs.NewFromConfig(cfg), queueURL)
	} else {
		logger.Warn("ALERTS_QUEUE_URL not set, operator alerts will only be logged")
	}

	// Both ledger clients are constructed here and handed to the
	// orchestrator; nothing is resolved at request time.
	ledgers := map[models.LedgerID]saga.LedgerCaller{
		models.CheckingLedger: ledgerclient.New(models.CheckingLedger, checkingURL, timeout),
		models.SavingsLedger:  ledgerclient.New(models.SavingsLedger, savingsURL, timeout),
	}

	orchestrator := saga.New(ledgers, transferLog, alerter, logger)
	handler := transfers.NewTransfersHandler(orchestrator, transferLog)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(appmiddleware.NewStructuredLogger(logger))
	router.Mount("/", handler.Routes())

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8090"
	}

	logger.Info("starting transfer orchestrator", slog.String("port", port))

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
