package core

import (
	"errors"
	"time"
)

// Tracker holds one session's budget state. Budget and goal are set by
// explicit actions; actual spend and advice are always derived.
//
// A Tracker is not safe for concurrent use. It has a single owner, and
// every transition runs to completion before the next one starts.
type Tracker struct {
	expenses    []Expense
	budget      Money
	savingsGoal Money
	actual      Money
	advice      *string
	now         func() time.Time
}

// NewTracker returns an empty tracker using the wall clock for default dates.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// WithClock replaces the clock used to date expenses submitted without a date.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// AddExpense normalizes raw and appends it. On a validation error the
// tracker is left untouched and the error is returned.
func (t *Tracker) AddExpense(raw RawExpense) (Expense, error) {
	e, err := NormalizeExpense(raw, t.now())
	if err != nil {
		return Expense{}, err
	}
	t.apply(e)
	return e, nil
}

// Record appends an already normalized expense, e.g. one replayed from the
// persistence gateway.
func (t *Tracker) Record(e Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Date = e.Date.UTC()
	t.apply(e)
	return nil
}

func (t *Tracker) apply(e Expense) {
	t.expenses = append(t.expenses, e)
	t.actual = t.actual.Add(e.Amount)
	t.refreshAdvice()
}

// SetBudgetAndGoal parses both fields independently. A field is assigned
// only when it parses to a positive amount; a bad budget never blocks a good
// goal and vice versa. The returned error joins ErrInvalidBudget and/or
// ErrInvalidGoal for the fields that were ignored.
func (t *Tracker) SetBudgetAndGoal(rawBudget, rawGoal string) error {
	var errs []error
	if budget, err := ParseAmount(rawBudget); err == nil {
		t.budget = budget
	} else {
		errs = append(errs, ErrInvalidBudget)
	}
	if goal, err := ParseAmount(rawGoal); err == nil {
		t.savingsGoal = goal
	} else {
		errs = append(errs, ErrInvalidGoal)
	}
	t.refreshAdvice()
	return errors.Join(errs...)
}

// Restore applies a previously saved budget configuration as-is.
func (t *Tracker) Restore(cfg BudgetConfig) {
	if cfg.Budget.Cents >= 0 {
		t.budget = cfg.Budget
	}
	if cfg.SavingsGoal.Cents >= 0 {
		t.savingsGoal = cfg.SavingsGoal
	}
	t.refreshAdvice()
}

func (t *Tracker) refreshAdvice() {
	if msg, ok := Advise(t.actual, t.budget); ok {
		t.advice = &msg
		return
	}
	t.advice = nil
}

// Config returns the current budget configuration.
func (t *Tracker) Config() BudgetConfig {
	return BudgetConfig{Budget: t.budget, SavingsGoal: t.savingsGoal}
}

// Len returns the number of recorded expenses.
func (t *Tracker) Len() int {
	return len(t.expenses)
}

// View returns a snapshot of the state with every derived value recomputed.
func (t *Tracker) View() View {
	expenses := make([]Expense, len(t.expenses))
	copy(expenses, t.expenses)

	v := View{
		Expenses:            expenses,
		Budget:              t.budget,
		SavingsGoal:         t.savingsGoal,
		Actual:              t.actual,
		MonthlyTotals:       MonthlyTotals(expenses),
		RemainingForSavings: RemainingForSavings(t.budget, t.actual, t.savingsGoal),
		Shortfall:           SavingsShortfall(t.budget, t.actual, t.savingsGoal),
		SpentPercent:        SpentPercent(t.actual, t.budget),
	}
	if t.advice != nil {
		msg := *t.advice
		v.Advice = &msg
	}
	if n := len(expenses); n > 0 {
		last := expenses[n-1]
		v.LastExpense = &last
	}
	v.Chart = BuildChart(v)
	return v
}
