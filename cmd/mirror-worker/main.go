package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bukocash/internal/amqp"
	"bukocash/internal/config"
	"bukocash/internal/export"
	applog "bukocash/internal/log"
	"bukocash/internal/mirror/sheets"
	"bukocash/internal/storage"
)

// errSnapshotBehind requeues a notification that raced the persist it
// refers to.
var errSnapshotBehind = errors.New("stored snapshot behind sync notification")

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting mirror-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Read side of the snapshot: the worker never mutates it
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := sheets.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	handler := func(msg *amqp.SnapshotSyncMessage) error {
		handleCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()

		snapshot, err := repo.LoadSnapshot(handleCtx)
		if err != nil {
			return err
		}
		if snapshot.Version < msg.Version {
			// The notifying write has not landed yet; requeue and retry.
			logger.Warn("Snapshot behind notification, requeueing",
				"stored_version", snapshot.Version, "notified_version", msg.Version)
			return errSnapshotBehind
		}

		doc := export.CSV(snapshot.Transactions, snapshot.Wallets, snapshot.Categories)
		if err := sheetsClient.ReplaceCSV(handleCtx, doc); err != nil {
			return err
		}

		logger.Info("Snapshot mirrored",
			"version", snapshot.Version, "transactions", len(snapshot.Transactions))
		return nil
	}

	logger.Info("Consuming snapshot sync notifications", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeSnapshotSync(ctx, handler); err != nil && err != context.Canceled {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Mirror worker stopped gracefully")
}
