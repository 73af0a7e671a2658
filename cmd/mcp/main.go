// Command mcp serves the back-office tools to MCP clients over stdio.
// stdout carries the protocol stream; logs go to stderr.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"agency_backoffice/internal/events"
	"agency_backoffice/internal/notification"
	"agency_backoffice/internal/scheduler"
	"agency_backoffice/internal/toolserver"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/db"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	cfg, err := config.LoadToolServer()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	// MCP_AGENCY_ID pins the server to one agency. Without it every call
	// must name its agencyId.
	var tenant uuid.UUID
	if raw := strings.TrimSpace(os.Getenv("MCP_AGENCY_ID")); raw != "" {
		tenant, err = uuid.Parse(raw)
		if err != nil {
			panic("MCP_AGENCY_ID must be a UUID: " + err.Error())
		}
	}
	log.Info("starting mcp tool server", "env", cfg.Env, "agencyPinned", tenant != uuid.Nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	notification.New(log).RegisterHandlers(eventBus)

	var reminders workflow.ReminderScheduler
	if cfg.GetRedisURL() != "" {
		client, err := scheduler.NewClient(cfg, cfg.GetAgencyLocation())
		if err != nil {
			log.Error("failed to initialize reminder scheduler client", "error", err)
		} else {
			defer func() { _ = client.Close() }()
			reminders = client
		}
	}

	registry, err := toolserver.NewRegistry(cfg, toolserver.Deps{
		Pool:      pool,
		Bus:       eventBus,
		Reminders: reminders,
		Log:       log,
		Tenant:    tenant,
	})
	if err != nil {
		log.Error("failed to initialize tool registry", "error", err)
		panic("failed to initialize tool registry: " + err.Error())
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "agency-backoffice", Version: version}, nil)
	registry.RegisterMCP(server)

	runErr := server.Run(ctx, &mcp.StdioTransport{})
	eventBus.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("mcp server stopped", "error", runErr)
		panic("mcp server stopped: " + runErr.Error())
	}
	log.Info("mcp tool server stopped")
}
