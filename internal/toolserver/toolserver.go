// Package toolserver assembles the tool registry over the Postgres store.
// The HTTP API and the MCP binary share it so both expose identical tools.
package toolserver

import (
	"agency_backoffice/internal/dates"
	"agency_backoffice/internal/events"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/resolver"
	"agency_backoffice/internal/tools"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the runtime collaborators. Bus and Reminders are optional.
type Deps struct {
	Pool      *pgxpool.Pool
	Bus       events.Bus
	Reminders workflow.ReminderScheduler
	Log       *logger.Logger
	// Tenant pins every call to one agency (see tools.Config).
	Tenant uuid.UUID
}

// NewRegistry wires gateway, resolver, date service and workflows into a
// tool registry tuned by cfg.
func NewRegistry(cfg config.AgentConfig, deps Deps) (*tools.Registry, error) {
	return NewRegistryWithGateway(cfg, gateway.New(deps.Pool), deps)
}

// NewRegistryWithGateway is NewRegistry over an arbitrary store.
func NewRegistryWithGateway(cfg config.AgentConfig, store gateway.Gateway, deps Deps) (*tools.Registry, error) {
	templates, err := workflow.LoadTemplates(workflow.Language(cfg.GetDefaultLanguage()))
	if err != nil {
		return nil, err
	}

	location := cfg.GetAgencyLocation()
	svc := workflow.New(workflow.Deps{
		Gateway: store,
		Resolver: resolver.New(store, store, resolver.Options{
			Threshold:       cfg.GetFuzzyThreshold(),
			CandidateLimit:  cfg.GetCandidateLimit(),
			SuggestionLimit: cfg.GetSuggestionLimit(),
		}, deps.Log),
		Dates:     dates.NewService(location),
		Reminders: deps.Reminders,
		Bus:       deps.Bus,
		Templates: templates,
		Location:  location,
		Log:       deps.Log,
	})
	return tools.New(svc, tools.Config{Timeout: cfg.GetToolTimeout(), Tenant: deps.Tenant}, deps.Log)
}
