// Package workflow runs the agency's multi-step business operations:
// resolving the entities named in a request, writing in order, and reporting
// what happened in a transcript.
//
// The store offers no cross-entity transaction. Operations are therefore
// modelled as ordered steps, each either fatal or best-effort; a best-effort
// failure after a primary write leaves that write in place and shows up as a
// transcript warning.
package workflow

import (
	"context"
	"errors"
	"time"

	"agency_backoffice/internal/dates"
	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/events"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/resolver"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
)

// EntityResolver resolves free-text references to contacts and properties.
type EntityResolver interface {
	ResolveContact(ctx context.Context, agencyID uuid.UUID, query string) (resolver.Outcome[domain.Contact], error)
	ResolveProperty(ctx context.Context, agencyID uuid.UUID, query string, filter gateway.PropertyFilter) (resolver.Outcome[domain.Property], error)
}

// ReminderScheduler queues a reminder for a task's due date.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, task domain.Task) error
}

// Deps bundles the collaborators of a Service.
type Deps struct {
	Gateway   gateway.Gateway
	Resolver  EntityResolver
	Dates     dates.Parser
	Reminders ReminderScheduler
	Bus       events.Bus
	Templates *TemplateCatalog
	Location  *time.Location
	Now       func() time.Time
	Log       *logger.Logger
}

// Service runs workflow operations.
type Service struct {
	gw        gateway.Gateway
	resolver  EntityResolver
	dates     dates.Parser
	reminders ReminderScheduler
	bus       events.Bus
	templates *TemplateCatalog
	loc       *time.Location
	now       func() time.Time
	log       *logger.Logger
}

// New creates a workflow service. Reminders, Bus and Log are optional.
func New(deps Deps) *Service {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		gw:        deps.Gateway,
		resolver:  deps.Resolver,
		dates:     deps.Dates,
		reminders: deps.Reminders,
		bus:       deps.Bus,
		templates: deps.Templates,
		loc:       loc,
		now:       now,
		log:       log,
	}
}

// today is midnight of the current day in the agency's timezone.
func (s *Service) today() time.Time {
	return dates.StartOfDay(s.now().In(s.loc))
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

// writeErr classifies a failed primary write. Not-found and timeout kinds
// from the gateway are kept as they are.
func writeErr(message string, err error) error {
	switch apperr.GetKind(err) {
	case apperr.KindNotFound, apperr.KindTimeout, apperr.KindValidation:
		return err
	default:
		return apperr.Write(message, err)
	}
}

// parseDate runs the date service and maps parse failures to validation errors.
func (s *Service) parseDate(ctx context.Context, field, text string) (time.Time, error) {
	t, err := s.dates.Parse(ctx, text, s.now().In(s.loc))
	if err == nil {
		return t, nil
	}
	var perr *dates.ParseError
	if errors.As(err, &perr) {
		return time.Time{}, apperr.Validation(field + ": " + perr.Error()).WithDetails(map[string]string{
			"input":  perr.Input,
			"reason": perr.Reason,
		})
	}
	return time.Time{}, apperr.Wrap(apperr.KindInternal, "date parsing failed", err)
}

// requireAgency rejects the nil tenant before any store call.
func requireAgency(agencyID uuid.UUID) error {
	if agencyID == uuid.Nil {
		return apperr.Validation("agencyId is required")
	}
	return nil
}
