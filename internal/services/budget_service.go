package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
	applog "budgettracker/internal/log"
)

// BudgetService owns the single server-side tracking session. The tracker
// is not safe for concurrent use, so every transition runs under mu; store
// calls happen after the lock is released.
type BudgetService struct {
	mu      sync.Mutex
	tracker *core.Tracker

	expenses *ExpenseService
	budgets  gateway.BudgetStore
	logger   *slog.Logger
	now      func() time.Time
}

// AddResult is the outcome of a session expense. PersistErr is set when the
// expense was applied to the session but could not be stored.
type AddResult struct {
	Expense    core.Expense
	Stored     *gateway.StoredExpense
	View       core.View
	PersistErr error
}

// BudgetResult reports which submitted fields were ignored.
type BudgetResult struct {
	View       core.View
	Ignored    []string
	PersistErr error
}

// Field names reported in BudgetResult.Ignored.
const (
	FieldBudget      = "budget"
	FieldSavingsGoal = "savingsGoal"
)

// NewBudgetService creates an empty session. budgets may be nil.
func NewBudgetService(expenses *ExpenseService, budgets gateway.BudgetStore, logger *slog.Logger) *BudgetService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BudgetService{
		expenses: expenses,
		budgets:  budgets,
		logger:   logger,
		now:      time.Now,
	}
	s.tracker = s.newTracker()
	return s
}

func (s *BudgetService) newTracker() *core.Tracker {
	return core.NewTracker().WithClock(s.now)
}

// Hydrate rebuilds the session from stored expenses and the saved budget.
// Records the tracker refuses are skipped with a warning.
func (s *BudgetService) Hydrate(ctx context.Context) error {
	items, err := s.expenses.List(ctx)
	if err != nil {
		return fmt.Errorf("list stored expenses: %w", err)
	}

	// Stores list by date; replay in the order expenses were added so that
	// LastExpense survives a restart.
	slices.SortStableFunc(items, func(a, b gateway.StoredExpense) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	fresh := s.newTracker()
	skipped := 0
	for _, item := range items {
		if err := fresh.Record(item.Expense); err != nil {
			skipped++
			s.logger.WarnContext(ctx, "Skipping stored expense", "id", item.ID, "error", err)
		}
	}

	if s.budgets != nil {
		cfg, ok, err := s.budgets.LoadBudget(ctx)
		if err != nil {
			return fmt.Errorf("load budget: %w", err)
		}
		if ok {
			fresh.Restore(cfg)
		}
	}

	s.mu.Lock()
	s.tracker = fresh
	view := fresh.View()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Session hydrated",
		applog.NewFields().
			WithOperation(applog.OpHydrate).
			WithBudget(view.Budget.Cents, view.SavingsGoal.Cents, view.Actual.Cents, view.Advice).
			ToSlice()...)
	if skipped > 0 {
		s.logger.WarnContext(ctx, "Some stored expenses were not replayed", "skipped", skipped, "total", len(items))
	}
	return nil
}

// AddExpense applies raw to the session and then stores it. A validation
// error leaves the session unchanged. A store error does not undo the
// session change; it is reported in AddResult.PersistErr.
func (s *BudgetService) AddExpense(ctx context.Context, raw core.RawExpense) (AddResult, error) {
	s.mu.Lock()
	e, err := s.tracker.AddExpense(raw)
	if err != nil {
		s.mu.Unlock()
		return AddResult{}, err
	}
	view := s.tracker.View()
	s.mu.Unlock()

	res := AddResult{Expense: e, View: view}
	fields := applog.NewFields().
		WithOperation(applog.OpAddExpense).
		WithExpense("", e.Amount.Cents, e.Category, int(e.Date.Month())).
		WithBudget(view.Budget.Cents, view.SavingsGoal.Cents, view.Actual.Cents, view.Advice)

	stored, err := s.expenses.Store(ctx, e)
	if err != nil {
		res.PersistErr = err
		s.logger.ErrorContext(ctx, "Expense applied but not stored", fields.WithError(err).ToSlice()...)
		return res, nil
	}
	res.Stored = &stored
	s.logger.InfoContext(ctx, "Expense added", fields.WithExpense(stored.ID, e.Amount.Cents, e.Category, int(e.Date.Month())).ToSlice()...)
	return res, nil
}

// SetBudgetAndGoal applies whichever fields are valid, saves the resulting
// configuration and lists the ignored fields.
func (s *BudgetService) SetBudgetAndGoal(ctx context.Context, rawBudget, rawGoal string) BudgetResult {
	s.mu.Lock()
	err := s.tracker.SetBudgetAndGoal(rawBudget, rawGoal)
	cfg := s.tracker.Config()
	view := s.tracker.View()
	s.mu.Unlock()

	res := BudgetResult{View: view, Ignored: []string{}}
	if errors.Is(err, core.ErrInvalidBudget) {
		res.Ignored = append(res.Ignored, FieldBudget)
	}
	if errors.Is(err, core.ErrInvalidGoal) {
		res.Ignored = append(res.Ignored, FieldSavingsGoal)
	}

	if s.budgets != nil && len(res.Ignored) < 2 {
		if perr := s.budgets.SaveBudget(ctx, cfg); perr != nil {
			res.PersistErr = perr
			s.logger.ErrorContext(ctx, "Failed to save budget", "error", perr)
		}
	}

	s.logger.InfoContext(ctx, "Budget updated",
		applog.NewFields().
			WithOperation(applog.OpSetBudget).
			WithBudget(cfg.Budget.Cents, cfg.SavingsGoal.Cents, view.Actual.Cents, view.Advice).
			ToSlice()...)
	return res
}

func (s *BudgetService) View() core.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.View()
}

func (s *BudgetService) Chart() core.Chart {
	return s.View().Chart
}
