package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency_backoffice/internal/agent"
	"agency_backoffice/internal/assistant"
	"agency_backoffice/internal/events"
	apphttp "agency_backoffice/internal/http"
	"agency_backoffice/internal/http/router"
	"agency_backoffice/internal/notification"
	"agency_backoffice/internal/scheduler"
	"agency_backoffice/internal/toolserver"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/migrations"
	"agency_backoffice/platform/ai/chatmodel"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/db"
	"agency_backoffice/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 3, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)
	notification.New(log).RegisterHandlers(eventBus)

	reminders, closeReminders := initReminderScheduler(cfg, cfg.GetAgencyLocation(), log)
	if closeReminders != nil {
		defer closeReminders()
	}

	// ========================================================================
	// Agent Core (Composition Root)
	// ========================================================================

	registry, err := toolserver.NewRegistry(cfg, toolserver.Deps{
		Pool:      pool,
		Bus:       eventBus,
		Reminders: reminders,
		Log:       log,
	})
	if err != nil {
		log.Error("failed to initialize tool registry", "error", err)
		panic("failed to initialize tool registry: " + err.Error())
	}

	var asker agent.Asker
	if cfg.IsAssistantEnabled() {
		llm := chatmodel.New(chatmodel.Config{
			APIKey:  cfg.GetAssistantAPIKey(),
			BaseURL: cfg.GetAssistantBaseURL(),
			Model:   cfg.GetAssistantModel(),
		})
		a, err := assistant.New(registry, llm, log)
		if err != nil {
			log.Error("failed to initialize assistant", "error", err)
			panic("failed to initialize assistant: " + err.Error())
		}
		asker = a
		log.Info("assistant enabled", "model", llm.Name())
	} else {
		log.Warn("ASSISTANT_API_KEY not configured; assistant endpoint disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			agent.NewModule(registry, asker, log),
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, location *time.Location, log *logger.Logger) (workflow.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; task reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg, location)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
