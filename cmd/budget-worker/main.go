// Command budget-worker watches repository changes and raises budget usage
// alerts and subscription reminders.
package main

import (
	"context"
	"os"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cache"
	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	applog "budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/usage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, config.Load().LogLevel, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting budget-worker",
		"backend", cfg.DataBackend,
		"amqp_enabled", cfg.AMQPEnabled(),
		"scan_interval", cfg.ScanInterval,
		"reminder_horizon_days", cfg.ReminderHorizonDays)

	baseCtx := applog.WithLogger(context.Background(), logger)

	result, err := cli.OpenBackend(baseCtx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", "error", err)
		os.Exit(1)
	}

	// Seen alerts and reminders expire so a long-running worker re-notifies
	// conditions that persist past the TTL.
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	alertCache := cache.NewLRUCache[struct{}](cfg.AlertCacheSize, cfg.AlertCacheTTL)
	reminderCache := cache.NewLRUCache[struct{}](cfg.AlertCacheSize, cfg.AlertCacheTTL)
	cacheManager.Register(alertCache)
	cacheManager.Register(reminderCache)
	cacheManager.StartCleanup(10 * time.Minute)

	notifier := services.LogNotifier{Logger: logger.WithComponent("notify")}
	alerts := services.NewBudgetAlertProcessor(result.Repository,
		usage.NewTracker(usage.NewCacheAlertStore(alertCache)), notifier)
	reminders := services.NewReminderProcessor(result.Repository,
		usage.NewCacheAlertStore(reminderCache), notifier, cfg.ReminderHorizonDays)

	var consumer *amqp.Client
	if cfg.AMQPEnabled() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP consumer, falling back to periodic scans only", "error", err)
			consumer = nil
		}
	} else {
		logger.Info("AMQP disabled - relying on periodic scans")
	}

	// A nil *amqp.Client must not become a non-nil ChangeSource.
	var source services.ChangeSource
	if consumer != nil {
		source = consumer
	}
	worker := services.NewChangeWorker(source, alerts, reminders)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		logger.Info("Shutting down worker...")
		if err := worker.Stop(shutdownCtx); err != nil {
			logger.Warn("Change worker did not stop cleanly", "error", err)
		}
		cacheManager.Stop()
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.Warn("AMQP consumer close failed", "error", err)
			}
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", "error", err)
		}
	})
	ctx = applog.WithLogger(ctx, logger)

	// Start runs the startup scan itself; without a consumer scan directly.
	if consumer != nil {
		if err := worker.Start(ctx); err != nil {
			logger.Error("Failed to start change worker", "error", err)
			os.Exit(1)
		}
	} else {
		worker.Scan(ctx)
	}

	// Reminders depend on the calendar, so rescan even when nothing changes.
	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Debug("Running periodic scan")
				worker.Scan(ctx)
				logger.Debug("Periodic scan complete",
					"next_check", now.Add(cfg.ScanInterval).Format("15:04:05"))
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Budget-worker shutdown complete")
}
