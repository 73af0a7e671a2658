// Package notification turns agency domain events into a structured activity
// log that back-office dashboards and alerting can consume.
package notification

import (
	"context"

	"agency_backoffice/internal/events"
	"agency_backoffice/platform/logger"
)

// Module subscribes to agency events. Handlers never fail the publisher.
type Module struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Module {
	if log == nil {
		log = logger.Nop()
	}
	return &Module{log: log}
}

// RegisterHandlers subscribes the module to every agency event it reports on.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ContractPrepared{}.EventName(), m)
	bus.Subscribe(events.ContractStatusChanged{}.EventName(), m)
	bus.Subscribe(events.VisitScheduled{}.EventName(), m)
	bus.Subscribe(events.TaskReminderDue{}.EventName(), m)
}

// Handle routes events to the typed handlers.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ContractPrepared:
		m.handleContractPrepared(ctx, e)
	case events.ContractStatusChanged:
		m.handleContractStatusChanged(ctx, e)
	case events.VisitScheduled:
		m.handleVisitScheduled(ctx, e)
	case events.TaskReminderDue:
		m.handleTaskReminderDue(ctx, e)
	default:
		m.log.WithContext(ctx).Debug("unhandled event", "event", event.EventName())
	}
	return nil
}

func (m *Module) activity(ctx context.Context, e events.Event) *logger.Logger {
	log := m.log.WithContext(ctx)
	if _, scoped := ctx.Value(logger.TenantIDKey).(string); !scoped {
		log = log.WithTenantID(e.Tenant().String())
	}
	return &logger.Logger{Logger: log.With("eventId", e.EventID().String())}
}

func (m *Module) handleContractPrepared(ctx context.Context, e events.ContractPrepared) {
	log := m.activity(ctx, e)
	if e.Warnings > 0 {
		log.Warn("activity: contract prepared with warnings",
			"contractId", e.ContractID, "type", e.ContractType, "warnings", e.Warnings)
		return
	}
	log.Info("activity: contract prepared",
		"contractId", e.ContractID,
		"type", e.ContractType,
		"propertyId", e.PropertyID,
		"contactId", e.ContactID,
		"contactCreated", e.ContactNew,
	)
}

func (m *Module) handleContractStatusChanged(ctx context.Context, e events.ContractStatusChanged) {
	m.activity(ctx, e).Info("activity: contract status changed",
		"contractId", e.ContractID, "from", e.OldStatus, "to", e.NewStatus)
}

func (m *Module) handleVisitScheduled(ctx context.Context, e events.VisitScheduled) {
	m.activity(ctx, e).Info("activity: visit scheduled",
		"visitId", e.VisitID, "propertyId", e.PropertyID, "contactId", e.ContactID, "at", e.ScheduledAt)
}

func (m *Module) handleTaskReminderDue(ctx context.Context, e events.TaskReminderDue) {
	log := m.activity(ctx, e)
	if e.Priority == "urgent" || e.Priority == "high" {
		log.Warn("activity: task due", "taskId", e.TaskID, "title", e.Title, "dueDate", e.DueDate, "priority", e.Priority)
		return
	}
	log.Info("activity: task due", "taskId", e.TaskID, "title", e.Title, "dueDate", e.DueDate, "priority", e.Priority)
}

var _ events.Handler = (*Module)(nil)
