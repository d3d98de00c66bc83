package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"budgettracker/internal/amqp"
	"budgettracker/internal/backend"
	"budgettracker/internal/cli"
	apphttp "budgettracker/internal/http"
	applog "budgettracker/internal/log"
	"budgettracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store, err := backend.Open(ctx, backendCfg, logger.WithComponent(applog.ComponentStorage).Logger)
	if err != nil {
		logger.Error("Failed to open backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	sessionLogger := logger.WithComponent(applog.ComponentSession).Logger
	expenses := services.NewExpenseService(store.Gateway, publisher, sessionLogger)
	session := services.NewBudgetService(expenses, store.Budgets, sessionLogger)
	if err := session.Hydrate(ctx); err != nil {
		logger.Warn("Starting with an empty session", "error", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, expenses, session, apphttp.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              store.Ping,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		// Closes the backend and the publisher.
		if err := expenses.Close(); err != nil {
			logger.Error("Failed to release resources", "error", err)
		}
	})

	logger.Info("Starting budget server", "port", cfg.Port, "backend", backendCfg.Type, "events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
