// Package backend builds the persistence gateway selected by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"budgettracker/internal/config"
	"budgettracker/internal/gateway"
)

// Type names a persistence backend.
type Type string

const (
	Memory   Type = config.BackendMemory
	SQLite   Type = config.BackendSQLite
	Postgres Type = config.BackendPostgres
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	return slices.Contains(Types(), t)
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{Memory, SQLite, Postgres}
}

// Config holds the settings needed to open a backend.
type Config struct {
	Type Type

	SQLiteDBPath string
	DatabaseURL  string

	// MemorySeedDir is read for seed expenses; empty disables seeding.
	MemorySeedDir string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	cfg := Config{
		Type:          Type(appConfig.DataBackend),
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		DatabaseURL:   appConfig.DatabaseURL,
		MemorySeedDir: appConfig.MemorySeedDir,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Type {
	case Memory:
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Postgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres backend")
		}
	default:
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}
	return nil
}

// Result is an opened backend. Sync is nil for stores that do not track
// mirroring; Ping and Cleanup are never nil.
type Result struct {
	Type    Type
	Gateway gateway.Gateway
	Budgets gateway.BudgetStore
	Sync    gateway.SyncStore
	Ping    func(context.Context) error
	Cleanup func() error
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case SQLite:
		return openSQLite(cfg, logger)
	case Postgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return openMemory(cfg, logger), nil
	}
}
