package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/finbridge/ledger-transfers/pkg/handlers/accounts"
	appmiddleware "github.com/finbridge/ledger-transfers/pkg/middleware"
	"github.com/finbridge/ledger-transfers/pkg/models"
	"github.com/finbridge/ledger-transfers/pkg/storage"
	dydbstore "github.com/finbridge/ledger-transfers/pkg/storage/dynamodb"
	memstore "github.com/finbridge/ledger-transfers/pkg/storage/memory"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ledgerName := models.LedgerID(os.Getenv("LEDGER_NAME"))
	if !ledgerName.Valid() {
		log.Fatalf("LEDGER_NAME must be %q or %q", models.CheckingLedger, models.SavingsLedger)
	}
	logger = logger.With(slog.String("ledger", string(ledgerName)))

	var store storage.AccountStore
	switch backend := os.Getenv("LEDGER_BACKEND"); backend {
	case "", "dynamodb":
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatalf("unable to load SDK config, %v", err)
		}
		accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
		if accountsTable == "" {
			log.Fatal("DYNAMODB_ACCOUNTS_TABLE_NAME environment variable not set")
		}
		store = dydbstore.New(awsdynamodb.NewFromConfig(cfg), accountsTable, "")
	case "memory":
		store = memstore.New()
	default:
		log.Fatalf("unknown LEDGER_BACKEND %q", backend)
	}

	handler := accounts.NewAccountsHandler(store)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(appmiddleware.NewStructuredLogger(logger))
	router.Mount("/", handler.Routes())

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting ledger service", slog.String("port", port))

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
