package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency_backoffice/internal/events"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/notification"
	"agency_backoffice/internal/scheduler"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/db"
	"agency_backoffice/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadToolServer()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the reminder worker")
	}
	log.Info("starting reminder worker",
		"env", cfg.Env,
		"queue", cfg.GetAsynqQueueName(),
		"concurrency", cfg.GetAsynqConcurrency(),
		"timezone", cfg.GetAgencyLocation().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	notification.New(log).RegisterHandlers(eventBus)

	// Reminders only read tasks; the activity log is the sole subscriber.
	worker, err := scheduler.NewWorker(cfg, gateway.New(pool), eventBus, log)
	if err != nil {
		log.Error("failed to initialize reminder worker", "error", err)
		panic("failed to initialize reminder worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
	log.Info("reminder worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt*attempt) * baseDelay):
			}
		}
	}
	if lastErr == nil {
		return errors.New(name + ": no attempts made")
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
