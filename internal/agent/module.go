// Package agent exposes the back-office tools and the assistant over HTTP.
package agent

import (
	"context"

	"agency_backoffice/internal/assistant"
	apphttp "agency_backoffice/internal/http"
	"agency_backoffice/internal/tools"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
)

// Asker answers free-text requests for an agency.
type Asker interface {
	Ask(ctx context.Context, agencyID uuid.UUID, text string) (assistant.Reply, error)
}

// Module wires the agent HTTP routes.
type Module struct {
	handler *Handler
}

// NewModule builds the module. asker may be nil when no model is configured;
// the assistant endpoint then answers 503.
func NewModule(registry *tools.Registry, asker Asker, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(registry, asker, log)}
}

func (m *Module) Name() string {
	return "agent"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/agent")
	group.GET("/tools", m.handler.ListTools)

	limited := group.Group("")
	if ctx.AgencyRateLimiter != nil {
		limited.Use(ctx.AgencyRateLimiter.RateLimit())
	}
	limited.POST("/tools/:name", m.handler.InvokeTool)
	limited.POST("/assistant", m.handler.Ask)
}

var _ apphttp.Module = (*Module)(nil)
