package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgettracker/internal/gateway/memory"
	"budgettracker/internal/storage"
	"budgettracker/internal/storage/postgres"
)

func openMemory(cfg Config, logger *slog.Logger) *Result {
	store := memory.New()
	if cfg.MemorySeedDir != "" {
		store = memory.NewFromFiles(cfg.MemorySeedDir)
	}
	logger.Info("Initialized memory backend", "seed_directory", cfg.MemorySeedDir)

	return &Result{
		Type:    Memory,
		Gateway: store,
		Budgets: store,
		Ping:    func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}
}

func openSQLite(cfg Config, logger *slog.Logger) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Type:    SQLite,
		Gateway: repo,
		Budgets: repo,
		Sync:    repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	repo, err := postgres.NewRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
	}
	logger.Info("Initialized postgres backend")

	return &Result{
		Type:    Postgres,
		Gateway: repo,
		Budgets: repo,
		Sync:    repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}
