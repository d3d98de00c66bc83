package memory

import (
	"context"
	"testing"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
)

func TestSheetAppend(t *testing.T) {
	s := New()
	e := gateway.StoredExpense{ID: "x", Expense: core.Expense{
		Amount:   core.Money{Cents: 700},
		Category: "Fun",
		Date:     time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	}}
	ref, err := s.AppendExpense(context.Background(), e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("ref=%q err=%v", ref, err)
	}
	rows := s.Rows()
	if len(rows) != 1 || rows[0][0] != "2024-01-09" || rows[0][3] != "7.00" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if _, err := s.AppendExpense(context.Background(), gateway.StoredExpense{}); err == nil {
		t.Fatal("expected validation error")
	}
}
