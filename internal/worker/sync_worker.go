// Package worker mirrors stored expenses to the spreadsheet, driven by
// expense-created messages and a periodic sweep for anything missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"budgettracker/internal/amqp"
	"budgettracker/internal/gateway"
	"budgettracker/internal/sheets"

	"github.com/robfig/cron/v3"
)

// SyncWorker handles synchronization of stored expenses to the sheet mirror
type SyncWorker struct {
	store     gateway.SyncStore
	sheet     sheets.RowAppender
	batchSize int
	logger    *slog.Logger

	// sweep guards against overlapping ProcessPending runs
	sweep sync.Mutex
}

func NewSyncWorker(store gateway.SyncStore, sheet sheets.RowAppender, batchSize int, logger *slog.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{
		store:     store,
		sheet:     sheet,
		batchSize: batchSize,
		logger:    logger,
	}
}

// HandleExpenseCreated mirrors the expense named by msg. Unknown IDs are
// acknowledged without error since retrying cannot make them appear.
func (w *SyncWorker) HandleExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	w.logger.InfoContext(ctx, "Processing expense created message",
		"id", msg.ID,
		"amount_cents", msg.AmountCents,
		"month", msg.Month)

	expense, err := w.store.GetExpense(ctx, msg.ID)
	if errors.Is(err, gateway.ErrNotFound) {
		w.logger.WarnContext(ctx, "Expense from message not found, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	return w.mirror(ctx, expense)
}

// ProcessPending mirrors up to one batch of unsynced expenses. Individual
// failures are logged and left for the next sweep.
func (w *SyncWorker) ProcessPending(ctx context.Context) (synced int, err error) {
	if !w.sweep.TryLock() {
		w.logger.DebugContext(ctx, "Previous sweep still running, skipping")
		return 0, nil
	}
	defer w.sweep.Unlock()

	pending, err := w.store.PendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	var errs []error
	for _, e := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.mirror(ctx, e); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync expense", "id", e.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Sweep completed",
		"total", len(pending),
		"synced", synced,
		"errors", len(errs))
	return synced, errors.Join(errs...)
}

// Schedule registers ProcessPending on c with the given spec. The cron must
// be created with second-level precision when spec has six fields.
func (w *SyncWorker) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := w.ProcessPending(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("register sync sweep %q: %w", spec, err)
	}
	return id, nil
}

func (w *SyncWorker) mirror(ctx context.Context, e gateway.StoredExpense) error {
	ref, err := w.sheet.AppendExpense(ctx, e)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	// The row exists now; a failed mark only means a duplicate row on the
	// next sweep.
	if err := w.store.MarkSynced(ctx, e.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", "id", e.ID, "error", err)
	}

	w.logger.InfoContext(ctx, "Successfully synced expense",
		"id", e.ID,
		"sheets_ref", ref,
		"amount_cents", e.Amount.Cents)
	return nil
}
