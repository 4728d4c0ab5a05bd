package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"giro/internal/amqp"
	"giro/internal/sheets"
	"giro/internal/storage"
)

// EntryStore is the slice of the repository the worker needs.
type EntryStore interface {
	GetEntryForSync(ctx context.Context, id string) (storage.PendingEntry, error)
	ListPendingEntries(ctx context.Context, limit int) ([]storage.PendingEntry, error)
	MarkEntrySynced(ctx context.Context, id string, version int64) error
	MarkEntrySyncError(ctx context.Context, id string) error
}

// SyncWorker mirrors ledger entries from SQLite to the backup sheet. It is
// driven two ways: AMQP messages for near-real-time sync, and a periodic
// catch-up sweep over rows still marked pending, which covers messages lost
// while the broker or worker was down.
type SyncWorker struct {
	storage   EntryStore
	writer    sheets.EntryWriter
	deleter   sheets.EntryDeleter
	batchSize int
}

func NewSyncWorker(storage EntryStore, writer sheets.EntryWriter, deleter sheets.EntryDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one sync message from AMQP. The message only
// names the entry; the current row is always fetched fresh, so replaying an
// old message can never resurrect stale data.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	pending, err := w.storage.GetEntryForSync(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.sync(ctx, pending); err != nil {
		return err
	}

	if err := w.storage.MarkEntrySynced(ctx, msg.ID, pending.Version); err != nil {
		slog.WarnContext(ctx, "Failed to mark entry as synced",
			"id", msg.ID, "error", err)
		// The mirror write succeeded; the catch-up sweep will retry the mark.
	}
	return nil
}

func (w *SyncWorker) sync(ctx context.Context, pending storage.PendingEntry) error {
	if pending.Deleted {
		if w.deleter == nil {
			slog.WarnContext(ctx, "No deleter configured, skipping sheet deletion",
				"id", pending.Entry.ID)
			return nil
		}
		if err := w.deleter.Delete(ctx, pending.Entry.ID); err != nil {
			return fmt.Errorf("delete entry from sheet: %w", err)
		}
		slog.InfoContext(ctx, "Deleted entry from sheet", "id", pending.Entry.ID)
		return nil
	}

	if err := w.writer.Upsert(ctx, pending.Entry); err != nil {
		return fmt.Errorf("upsert entry to sheet: %w", err)
	}
	slog.InfoContext(ctx, "Synced entry to sheet",
		"id", pending.Entry.ID,
		"version", pending.Version)
	return nil
}

// CatchUp sweeps one batch of rows still marked pending and returns how many
// it processed. Rows that fail are flagged so they surface in logs instead
// of being retried forever.
func (w *SyncWorker) CatchUp(ctx context.Context) (int, error) {
	pending, err := w.storage.ListPendingEntries(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending entries: %w", err)
	}

	processed := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		if err := w.sync(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Catch-up sync failed",
				"id", p.Entry.ID, "error", err)
			if markErr := w.storage.MarkEntrySyncError(ctx, p.Entry.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error",
					"id", p.Entry.ID, "error", markErr)
			}
			continue
		}

		if err := w.storage.MarkEntrySynced(ctx, p.Entry.ID, p.Version); err != nil {
			slog.WarnContext(ctx, "Failed to mark entry as synced",
				"id", p.Entry.ID, "error", err)
		}
		processed++
	}
	return processed, nil
}

// RunCatchUp sweeps at the given interval until the context is cancelled.
// The first sweep runs immediately so a restart drains its backlog without
// waiting.
func (w *SyncWorker) RunCatchUp(ctx context.Context, interval time.Duration) error {
	if _, err := w.CatchUp(ctx); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Initial catch-up sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.CatchUp(ctx)
			if err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Catch-up sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "Catch-up sweep completed", "processed", n)
			}
		}
	}
}
