// Package postgres implements the persistence gateway on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var (
	_ gateway.Gateway     = (*Repository)(nil)
	_ gateway.BudgetStore = (*Repository)(nil)
	_ gateway.SyncStore   = (*Repository)(nil)
)

// NewRepository connects to databaseURL, migrates the schema and returns a
// ready repository.
func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", gateway.ErrUnavailable, err)
	}

	return &Repository{pool: pool, now: time.Now}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

const selectExpense = `SELECT id, amount_cents, category, description, spent_at, created_at FROM expenses`

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (gateway.StoredExpense, error) {
	stored, err := gateway.Prepare(e, r.now())
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("create", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO expenses (id, amount_cents, category, description, spent_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		stored.ID,
		stored.Amount.Cents,
		stored.Category,
		stored.Description,
		stored.Date,
		stored.CreatedAt)
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("create", fmt.Errorf("insert expense: %w", err))
	}

	slog.InfoContext(ctx, "Expense saved to Postgres", "id", stored.ID, "amount_cents", stored.Amount.Cents)
	return stored, nil
}

func (r *Repository) ListExpenses(ctx context.Context) ([]gateway.StoredExpense, error) {
	rows, err := r.pool.Query(ctx, selectExpense+` ORDER BY spent_at, created_at`)
	if err != nil {
		return nil, gateway.Wrap("list", fmt.Errorf("query expenses: %w", err))
	}
	items, err := collect(rows)
	if err != nil {
		return nil, gateway.Wrap("list", err)
	}
	return items, nil
}

func (r *Repository) GetExpense(ctx context.Context, id string) (gateway.StoredExpense, error) {
	rows, err := r.pool.Query(ctx, selectExpense+` WHERE id = $1`, id)
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("get", fmt.Errorf("query expense %s: %w", id, err))
	}
	items, err := collect(rows)
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("get", err)
	}
	if len(items) == 0 {
		return gateway.StoredExpense{}, gateway.Wrap("get", fmt.Errorf("%w: %s", gateway.ErrNotFound, id))
	}
	return items[0], nil
}

func (r *Repository) PendingSync(ctx context.Context, limit int) ([]gateway.StoredExpense, error) {
	rows, err := r.pool.Query(ctx,
		selectExpense+` WHERE synced_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, gateway.Wrap("pending", fmt.Errorf("query pending expenses: %w", err))
	}
	items, err := collect(rows)
	if err != nil {
		return nil, gateway.Wrap("pending", err)
	}
	return items, nil
}

func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET synced_at = $1 WHERE id = $2`, r.now().UTC(), id)
	if err != nil {
		return gateway.Wrap("mark_synced", fmt.Errorf("update expense %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return gateway.Wrap("mark_synced", fmt.Errorf("%w: %s", gateway.ErrNotFound, id))
	}
	return nil
}

func (r *Repository) SaveBudget(ctx context.Context, cfg core.BudgetConfig) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO budget_config (id, budget_cents, savings_goal_cents, updated_at)
		 VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET
		   budget_cents = EXCLUDED.budget_cents,
		   savings_goal_cents = EXCLUDED.savings_goal_cents,
		   updated_at = EXCLUDED.updated_at`,
		cfg.Budget.Cents, cfg.SavingsGoal.Cents, r.now().UTC())
	if err != nil {
		return gateway.Wrap("save_budget", fmt.Errorf("upsert budget: %w", err))
	}
	return nil
}

func (r *Repository) LoadBudget(ctx context.Context) (core.BudgetConfig, bool, error) {
	var cfg core.BudgetConfig
	err := r.pool.QueryRow(ctx,
		`SELECT budget_cents, savings_goal_cents FROM budget_config WHERE id = 1`).
		Scan(&cfg.Budget.Cents, &cfg.SavingsGoal.Cents)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.BudgetConfig{}, false, nil
	}
	if err != nil {
		return core.BudgetConfig{}, false, gateway.Wrap("load_budget", fmt.Errorf("select budget: %w", err))
	}
	return cfg, true, nil
}

func collect(rows pgx.Rows) ([]gateway.StoredExpense, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (gateway.StoredExpense, error) {
		var s gateway.StoredExpense
		err := row.Scan(&s.ID, &s.Amount.Cents, &s.Category, &s.Description, &s.Date, &s.CreatedAt)
		s.Date = s.Date.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan expenses: %w", err)
	}
	return items, nil
}
