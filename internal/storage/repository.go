package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Ensure interface conformance
var (
	_ gateway.Gateway     = (*SQLiteRepository)(nil)
	_ gateway.BudgetStore = (*SQLiteRepository)(nil)
	_ gateway.SyncStore   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// WAL lets the worker read while the server writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// Ping checks that the database file is still usable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense implements gateway.ExpenseCreator
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (gateway.StoredExpense, error) {
	stored, err := gateway.Prepare(e, r.now())
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("create", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, amount_cents, category, description, spent_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.Amount.Cents,
		stored.Category,
		stored.Description,
		stored.Date.UnixNano(),
		stored.CreatedAt.UnixNano())
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("create", fmt.Errorf("insert expense: %w", err))
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", stored.ID,
		"amount_cents", stored.Amount.Cents,
		"category", stored.Category,
		"month", int(stored.Date.Month()))

	return stored, nil
}

// ListExpenses implements gateway.ExpenseLister
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]gateway.StoredExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, description, spent_at, created_at
		 FROM expenses ORDER BY spent_at, created_at`)
	if err != nil {
		return nil, gateway.Wrap("list", fmt.Errorf("query expenses: %w", err))
	}
	defer rows.Close()

	items, err := scanExpenses(rows)
	if err != nil {
		return nil, gateway.Wrap("list", err)
	}
	return items, nil
}

// GetExpense returns a single expense by ID
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (gateway.StoredExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, description, spent_at, created_at
		 FROM expenses WHERE id = ?`, id)
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("get", fmt.Errorf("query expense %s: %w", id, err))
	}
	defer rows.Close()

	items, err := scanExpenses(rows)
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("get", err)
	}
	if len(items) == 0 {
		return gateway.StoredExpense{}, gateway.Wrap("get", fmt.Errorf("%w: %s", gateway.ErrNotFound, id))
	}
	return items[0], nil
}

// PendingSync returns up to limit expenses not yet mirrored, oldest first
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]gateway.StoredExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, description, spent_at, created_at
		 FROM expenses WHERE synced_at IS NULL
		 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, gateway.Wrap("pending", fmt.Errorf("query pending expenses: %w", err))
	}
	defer rows.Close()

	items, err := scanExpenses(rows)
	if err != nil {
		return nil, gateway.Wrap("pending", err)
	}
	return items, nil
}

// MarkSynced marks an expense as successfully mirrored
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET synced_at = ? WHERE id = ?`, r.now().UTC().UnixNano(), id)
	if err != nil {
		return gateway.Wrap("mark_synced", fmt.Errorf("update expense %s: %w", id, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.Wrap("mark_synced", fmt.Errorf("%w: %s", gateway.ErrNotFound, id))
	}
	slog.DebugContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// SaveBudget implements gateway.BudgetStore
func (r *SQLiteRepository) SaveBudget(ctx context.Context, cfg core.BudgetConfig) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_config (id, budget_cents, savings_goal_cents, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   budget_cents = excluded.budget_cents,
		   savings_goal_cents = excluded.savings_goal_cents,
		   updated_at = excluded.updated_at`,
		cfg.Budget.Cents, cfg.SavingsGoal.Cents, r.now().UTC().UnixNano())
	if err != nil {
		return gateway.Wrap("save_budget", fmt.Errorf("upsert budget: %w", err))
	}
	return nil
}

// LoadBudget implements gateway.BudgetStore
func (r *SQLiteRepository) LoadBudget(ctx context.Context) (core.BudgetConfig, bool, error) {
	var cfg core.BudgetConfig
	err := r.db.QueryRowContext(ctx,
		`SELECT budget_cents, savings_goal_cents FROM budget_config WHERE id = 1`).
		Scan(&cfg.Budget.Cents, &cfg.SavingsGoal.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetConfig{}, false, nil
	}
	if err != nil {
		return core.BudgetConfig{}, false, gateway.Wrap("load_budget", fmt.Errorf("select budget: %w", err))
	}
	return cfg, true, nil
}

func scanExpenses(rows *sql.Rows) ([]gateway.StoredExpense, error) {
	var out []gateway.StoredExpense
	for rows.Next() {
		var (
			s                 gateway.StoredExpense
			spentAt, storedAt int64
		)
		if err := rows.Scan(&s.ID, &s.Amount.Cents, &s.Category, &s.Description, &spentAt, &storedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		s.Date = time.Unix(0, spentAt).UTC()
		s.CreatedAt = time.Unix(0, storedAt).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
