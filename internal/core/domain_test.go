package core

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestNormalizeExpense(t *testing.T) {
	e, err := NormalizeExpense(RawExpense{
		Amount:      "12,50",
		Category:    "  Food\x00 ",
		Description: "",
		Date:        "2024-01-15",
	}, fixedNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.Amount.Cents != 1250 {
		t.Fatalf("amount = %d", e.Amount.Cents)
	}
	if e.Category != "Food" {
		t.Fatalf("category = %q", e.Category)
	}
	if e.Description != "" {
		t.Fatalf("empty description should be kept, got %q", e.Description)
	}
	if !e.Date.Equal(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", e.Date)
	}
}

func TestNormalizeExpenseRejectsBadAmount(t *testing.T) {
	for _, amt := range []string{"", "-5", "0", "ten"} {
		if _, err := NormalizeExpense(RawExpense{Amount: amt}, fixedNow); err != ErrInvalidAmount {
			t.Fatalf("%q: expected ErrInvalidAmount, got %v", amt, err)
		}
	}
}

func TestParseDateOrIsLenient(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"", fixedNow},
		{"not a date", fixedNow},
		{"2024-13-45", fixedNow},
		{"2024-02-03", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"2024-02-03T10:30", time.Date(2024, 2, 3, 10, 30, 0, 0, time.UTC)},
		{"2024-02-03T10:30:15", time.Date(2024, 2, 3, 10, 30, 15, 0, time.UTC)},
		// Offset dates are kept as the same instant, expressed in UTC.
		{"2024-03-01T01:00:00+02:00", time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)},
		// Years no store can keep exactly fall back like unreadable input.
		{"1500-03-10", fixedNow},
		{"2300-03-10", fixedNow},
		{"1700-01-01", time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2199-12-31", time.Date(2199, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := ParseDateOr(tc.in, fixedNow)
		if !got.Equal(tc.want) || got.Location() != time.UTC {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Amount: Money{Cents: 1}, Date: fixedNow}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Expense{Amount: Money{Cents: 0}, Date: fixedNow}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := (Expense{Amount: Money{Cents: 1}}).Validate(); err != ErrZeroDate {
		t.Fatalf("expected ErrZeroDate, got %v", err)
	}
	for _, y := range []int{1500, 2300} {
		e := Expense{Amount: Money{Cents: 1}, Date: time.Date(y, 3, 10, 0, 0, 0, 0, time.UTC)}
		if err := e.Validate(); err != ErrDateRange {
			t.Fatalf("year %d: expected ErrDateRange, got %v", y, err)
		}
	}
}
