package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fiado/internal/amqp"
	"fiado/internal/config"
	"fiado/internal/log"
	"fiado/internal/sheets"
	gsheet "fiado/internal/sheets/google"
	mem "fiado/internal/sheets/memory"
	"fiado/internal/storage"
	"fiado/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting fiado-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a spreadsheet ID the worker mirrors into memory, which keeps
	// local development useful and the pending scan exercised.
	var (
		writer  sheets.DebtWriter
		remover sheets.DebtRemover
	)
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.BackupSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, remover = cli, cli
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.BackupSheetName)
	} else {
		store := mem.New()
		writer, remover = store, store
		logger.Info("Google Sheets disabled - backing up to memory sheet")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backupWorker := worker.NewBackupWorker(repo, writer, remover, cfg.BackupBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, back up any debts whose events were missed while down.
	if err := backupWorker.StartupBackupCheck(ctx); err != nil {
		logger.Error("Startup backup check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	// Event-driven path: mirror debts as their events arrive.
	g.Go(func() error {
		return amqpClient.ConsumeDebtEvents(gctx, backupWorker.HandleDebtEvent)
	})

	// Recovery path: periodically sweep debts still marked pending.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.BackupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := backupWorker.ProcessPendingDebts(gctx); err != nil {
					logger.Error("Periodic backup failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
