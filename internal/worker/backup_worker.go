// Package worker mirrors the SQLite debt ledger to a Google Sheets backup.
// AMQP events drive the happy path; a periodic pending scan recovers debts
// whose events were lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fiado/internal/amqp"
	"fiado/internal/core"
	"fiado/internal/log"
	"fiado/internal/sheets"
	"fiado/internal/storage"
)

// BackupWorker copies debts marked sync_status='pending' to the backup sheet.
type BackupWorker struct {
	storage   storage.BackupStore
	writer    sheets.DebtWriter
	remover   sheets.DebtRemover
	batchSize int
}

func NewBackupWorker(storage storage.BackupStore, writer sheets.DebtWriter, remover sheets.DebtRemover, batchSize int) *BackupWorker {
	return &BackupWorker{
		storage:   storage,
		writer:    writer,
		remover:   remover,
		batchSize: batchSize,
	}
}

// HandleDebtEvent processes a single debt event from AMQP.
func (w *BackupWorker) HandleDebtEvent(ctx context.Context, msg *amqp.DebtEventMessage) error {
	slog.InfoContext(ctx, "Processing debt event",
		"debt_id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionDeleted:
		return w.removeFromSheet(ctx, msg.ID)
	case amqp.ActionCreated, amqp.ActionPaid:
		debt, err := w.storage.GetDebt(ctx, msg.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Deleted between event and processing; nothing to back up.
				slog.WarnContext(ctx, "Debt no longer exists, skipping backup", "debt_id", msg.ID)
				return nil
			}
			return fmt.Errorf("get debt from storage: %w", err)
		}
		return w.backupToSheet(ctx, debt.ID, debt)
	default:
		slog.WarnContext(ctx, "Unknown debt event action", "debt_id", msg.ID, "action", msg.Action)
		return nil
	}
}

// ProcessPendingDebts backs up any debts that have not been mirrored yet.
// This is the recovery mechanism in case AMQP messages are lost.
func (w *BackupWorker) ProcessPendingDebts(ctx context.Context) error {
	pending, err := w.storage.ListPendingBackup(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending debts: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending debts", "count", len(pending))

	for _, debt := range pending {
		if err := w.backupToSheet(ctx, debt.ID, debt); err != nil {
			slog.ErrorContext(ctx, "Failed to back up debt", "debt_id", debt.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupBackupCheck drains pending debts at worker startup to recover from
// missed AMQP messages or worker downtime.
func (w *BackupWorker) StartupBackupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingBackup(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending debts for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending debts found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending debts on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, debt := range pending {
		if err := w.backupToSheet(ctx, debt.ID, debt); err != nil {
			slog.ErrorContext(ctx, "Failed to back up debt during startup",
				"debt_id", debt.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup backup completed",
		"total", len(pending),
		"backed_up", successCount,
		"errors", errorCount)

	return nil
}

func (w *BackupWorker) backupToSheet(ctx context.Context, id string, debt core.Debt) error {
	ref, err := w.writer.Append(ctx, debt)
	if err != nil {
		if markErr := w.storage.MarkBackupError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark backup error", "debt_id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkBackedUp(ctx, id); err != nil {
		// Don't return an error here, the backup actually worked.
		slog.ErrorContext(ctx, "Failed to mark as backed up", "debt_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Backed up debt",
		log.FieldDebtID, id,
		log.FieldComponent, log.ComponentBackup,
		"sheet_ref", ref,
		log.FieldAmountCents, debt.Amount.Cents)

	return nil
}

func (w *BackupWorker) removeFromSheet(ctx context.Context, id string) error {
	if w.remover == nil {
		slog.WarnContext(ctx, "No sheet remover configured, skipping removal", "debt_id", id)
		return nil
	}
	if err := w.remover.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove from sheet: %w", err)
	}
	slog.InfoContext(ctx, "Removed debt from backup sheet", "debt_id", id)
	return nil
}
