package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Expense is a single monetary outflow. Values are immutable once built by
	// NormalizeExpense; the tracker only ever appends them.
	Expense struct {
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
	}

	// RawExpense is an expense submission as it arrives from a form, a JSON
	// body or command line flags.
	RawExpense struct {
		Amount      string
		Category    string
		Description string
		Date        string
	}

	// BudgetConfig is replaced wholesale by every budget action.
	BudgetConfig struct {
		Budget      Money `json:"budget"`
		SavingsGoal Money `json:"savingsGoal"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidBudget = errors.New("invalid budget")
	ErrInvalidGoal   = errors.New("invalid savings goal")
	ErrZeroDate      = errors.New("date cannot be zero")
	ErrDateRange     = errors.New("date out of supported range")
)

// Dates must fall within [MinYear, MaxYear] so that every store can keep
// them exactly; SQLite keeps unix nanoseconds.
const (
	MinYear = 1700
	MaxYear = 2199
)

// dateLayouts are tried in order when reading a submitted date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeExpense validates a raw submission and builds a canonical Expense.
//
// Only the amount can fail. Category and description are free-form (empty is
// allowed) and an absent or unreadable date falls back to now. Dates are kept
// in UTC so that month bucketing does not depend on the host zone.
func NormalizeExpense(raw RawExpense, now time.Time) (Expense, error) {
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		Amount:      amount,
		Category:    CleanText(raw.Category),
		Description: CleanText(raw.Description),
		Date:        ParseDateOr(raw.Date, now),
	}, nil
}

// ParseDateOr parses s with the accepted layouts and returns it in UTC.
// Zone-less inputs are read as UTC. Anything unreadable, or outside the
// supported years, yields fallback.
func ParseDateOr(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				if t = t.UTC(); inRange(t) {
					return t
				}
				break
			}
		}
	}
	return fallback.UTC()
}

func inRange(t time.Time) bool {
	y := t.UTC().Year()
	return y >= MinYear && y <= MaxYear
}

// CleanText removes control characters except tab, newline and carriage
// return, and trims surrounding whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if !inRange(e.Date) {
		return ErrDateRange
	}
	return nil
}
