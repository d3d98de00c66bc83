package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"budgettracker/internal/amqp"
	"budgettracker/internal/backend"
	"budgettracker/internal/cli"
	"budgettracker/internal/config"
	applog "budgettracker/internal/log"
	"budgettracker/internal/sheets"
	gsheet "budgettracker/internal/sheets/google"
	memsheet "budgettracker/internal/sheets/memory"
	"budgettracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting budget-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	defer store.Cleanup()

	if store.Sync == nil {
		logger.Error("Backend does not track sync state; use sqlite or postgres", "backend", backendCfg.Type)
		os.Exit(1)
	}

	var sheet sheets.RowAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sheet = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		sheet = memsheet.New()
		logger.Info("Google Sheets disabled - mirroring to memory")
	}

	syncWorker := worker.NewSyncWorker(store.Sync, sheet, cfg.SyncBatchSize, logger.WithComponent(applog.ComponentWorker).Logger)

	// Catch up on anything stored while the worker was down.
	if n, err := syncWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err, "synced", n)
	}

	scheduler := cron.New(config.CronOptions()...)
	if _, err := syncWorker.Schedule(ctx, scheduler, cfg.SyncSchedule); err != nil {
		logger.Error("Failed to schedule sync sweep", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		logger.Info("Sync sweep scheduled", "schedule", cfg.SyncSchedule)
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeExpenseCreated(gctx, syncWorker.HandleExpenseCreated)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled - relying on scheduled sweeps")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
