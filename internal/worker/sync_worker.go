// Package worker synchronizes the SQLite ledger into the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

// SyncWorker drains sync messages and keeps the mirror consistent with the
// ledger. It also re-scans for pending rows as a backup for lost messages.
// It talks to the concrete repository rather than a port: the sync
// bookkeeping columns exist only in the SQLite backend.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.Mirror
	batchSize int
}

func NewSyncWorker(repo *storage.SQLiteRepository, mirror sheets.Mirror, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   repo,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	return w.syncTransaction(ctx, msg.ID)
}

// ProcessPendingTransactions syncs rows that never made it to the mirror.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog at worker startup, recovering
// from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending sync: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		if err := w.syncTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

// syncTransaction pushes one ledger row to the mirror: live rows are
// appended, soft-deleted rows are removed.
func (w *SyncWorker) syncTransaction(ctx context.Context, id int64) error {
	tx, deleted, err := w.storage.GetForSync(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Hard-deleted or never committed; nothing to mirror.
			slog.WarnContext(ctx, "Transaction vanished before sync", "id", id)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if deleted {
		if err := w.mirror.RemoveTransaction(ctx, id); err != nil {
			w.markError(ctx, id)
			return fmt.Errorf("remove from mirror: %w", err)
		}
	} else {
		ref, err := w.mirror.AppendTransaction(ctx, tx)
		if err != nil {
			w.markError(ctx, id)
			return fmt.Errorf("append to mirror: %w", err)
		}
		slog.InfoContext(ctx, "Transaction mirrored",
			"id", id,
			"mirror_ref", ref,
			"amount_cents", tx.Amount.Cents)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The mirror write succeeded; the row will just be retried.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.storage.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}
