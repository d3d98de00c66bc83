// Package gateway defines the persistence ports the budget tracker writes
// expenses to. The tracker never depends on a gateway for the correctness of
// its own computations; stores are a best-effort sink.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"budgettracker/internal/core"

	"github.com/google/uuid"
)

// StoredExpense is an expense as kept by a store: the record plus a
// generated identifier and the time it was stored.
type StoredExpense struct {
	ID string `json:"id"`
	core.Expense
	CreatedAt time.Time `json:"createdAt"`
}

// Ports for outbound adapters.
type (
	ExpenseCreator interface {
		CreateExpense(ctx context.Context, e core.Expense) (StoredExpense, error)
	}

	// ExpenseLister returns every stored expense ordered by date.
	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]StoredExpense, error)
	}

	// BudgetStore keeps the last budget configuration between sessions.
	// LoadBudget reports false when nothing was saved yet.
	BudgetStore interface {
		SaveBudget(ctx context.Context, cfg core.BudgetConfig) error
		LoadBudget(ctx context.Context) (core.BudgetConfig, bool, error)
	}

	// SyncStore is used by the sheets mirror worker to find records that were
	// not mirrored yet.
	SyncStore interface {
		GetExpense(ctx context.Context, id string) (StoredExpense, error)
		PendingSync(ctx context.Context, limit int) ([]StoredExpense, error)
		MarkSynced(ctx context.Context, id string) error
	}

	Gateway interface {
		ExpenseCreator
		ExpenseLister
	}
)

var (
	// ErrUnavailable marks failures to reach the backing store at all.
	ErrUnavailable = errors.New("persistence gateway unavailable")
	ErrNotFound    = errors.New("expense not found")
)

// Error is the opaque failure returned by every gateway operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with the failing operation. Nil stays nil and errors that are
// already gateway errors are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Prepare validates e and turns it into a StoredExpense with a fresh ID. A
// missing date gets the server time.
func Prepare(e core.Expense, now time.Time) (StoredExpense, error) {
	if e.Date.IsZero() {
		e.Date = now
	}
	e.Date = e.Date.UTC()
	if err := e.Validate(); err != nil {
		return StoredExpense{}, err
	}
	return StoredExpense{
		ID:        uuid.NewString(),
		Expense:   e,
		CreatedAt: now.UTC(),
	}, nil
}

// SortByDate orders expenses by date, then by storage time.
func SortByDate(items []StoredExpense) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
