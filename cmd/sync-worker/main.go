package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	memmirror "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent("sync-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting sync worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var mirror sheets.Mirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		// Without a spreadsheet the worker still drains the queue, so
		// messages are not redelivered forever.
		mirror = memmirror.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID set, using in-memory mirror")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)

	// Drain rows that went pending while the worker was down.
	logger.Info("Performing startup sync check")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	go func() {
		handler := func(msg *amqp.TransactionSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeTransactionSync(ctx, handler); err != nil && err != context.Canceled {
			logger.Error("Message consumption stopped", "error", err)
		}
	}()

	// Periodic re-scan covers messages lost between publisher and broker.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.ProcessPendingTransactions(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Sync worker stopped gracefully")
}
