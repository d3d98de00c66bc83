package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
)

// These tests need a disposable database; set TEST_DATABASE_URL to run them.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := NewRepository(ctx, url)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	if _, err := repo.pool.Exec(ctx, `TRUNCATE expenses, budget_config`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db"},
		{"postgresql://localhost/db?sslmode=disable", "pgx5://localhost/db?sslmode=disable"},
		{"pgx5://localhost/db", "pgx5://localhost/db"},
	}
	for _, tt := range tests {
		if got := migrateURL(tt.in); got != tt.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostgresCreateListAndSync(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stored, err := repo.CreateExpense(ctx, core.Expense{
		Amount:   core.Money{Cents: 2500},
		Category: "Transport",
		Date:     time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := repo.ListExpenses(ctx)
	if err != nil || len(items) != 1 || items[0].ID != stored.ID {
		t.Fatalf("list = %+v err=%v", items, err)
	}

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %d err=%v", len(pending), err)
	}
	if err := repo.MarkSynced(ctx, stored.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if pending, _ = repo.PendingSync(ctx, 10); len(pending) != 0 {
		t.Fatalf("expected no pending, got %d", len(pending))
	}
	if err := repo.MarkSynced(ctx, "missing"); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresBudget(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.LoadBudget(ctx); err != nil || ok {
		t.Fatalf("expected no budget, ok=%v err=%v", ok, err)
	}
	want := core.BudgetConfig{Budget: core.Money{Cents: 120000}, SavingsGoal: core.Money{Cents: 30000}}
	if err := repo.SaveBudget(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := repo.LoadBudget(ctx)
	if err != nil || !ok || got != want {
		t.Fatalf("load = %+v ok=%v err=%v", got, ok, err)
	}
}
