package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agency_backoffice/internal/dates"
	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/events"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
)

// ScheduleVisitParams are the inputs of ScheduleVisit.
type ScheduleVisitParams struct {
	AgencyID        uuid.UUID
	PropertyQuery   string
	ContactQuery    string
	When            string
	DurationMinutes int
	CreateTask      bool
}

// ScheduleVisitResult reports what ScheduleVisit did.
type ScheduleVisitResult struct {
	Visit      domain.Visit
	Property   domain.Property
	Contact    domain.Contact
	Task       *domain.Task
	Transcript *Transcript
}

// ScheduleVisit books a viewing at a free-text date. The confirmation task
// is best-effort.
func (s *Service) ScheduleVisit(ctx context.Context, params ScheduleVisitParams) (ScheduleVisitResult, error) {
	if err := requireAgency(params.AgencyID); err != nil {
		return ScheduleVisitResult{}, err
	}
	at, err := s.parseDate(ctx, "when", params.When)
	if err != nil {
		return ScheduleVisitResult{}, err
	}
	if at.Before(s.now()) {
		return ScheduleVisitResult{}, apperr.Validation(fmt.Sprintf("visit date %s is in the past", at.Format(time.RFC3339)))
	}

	property, contactOutcome, err := s.resolvePair(ctx, params.AgencyID, params.PropertyQuery, params.ContactQuery)
	if err != nil {
		return ScheduleVisitResult{}, err
	}
	if !contactOutcome.Resolved() {
		return ScheduleVisitResult{}, contactOutcome.Err("contact", params.ContactQuery)
	}
	contact := contactOutcome.Record

	result := ScheduleVisitResult{Property: property, Contact: contact, Transcript: newTranscript()}
	tr := result.Transcript
	tr.action("Resolved property %s and contact %s", property.Label(), contact.Label())

	steps := []Step{
		{Name: "create visit", Policy: Fatal, Run: func(ctx context.Context) (string, error) {
			visit, err := s.gw.InsertVisit(ctx, params.AgencyID, gateway.NewVisit{
				PropertyID:      property.ID,
				ContactID:       contact.ID,
				ScheduledAt:     at,
				DurationMinutes: params.DurationMinutes,
				Status:          domain.VisitScheduled,
			})
			if err != nil {
				return "", writeErr("could not schedule visit", err)
			}
			result.Visit = visit
			tr.created("visit", visit.ID)
			return fmt.Sprintf("Scheduled visit of %s with %s at %s", property.Reference, contact.FullName(),
				visit.ScheduledAt.In(s.loc).Format("2006-01-02 15:04")), nil
		}},
	}
	var tasks []domain.Task
	if params.CreateTask {
		due := dates.StartOfDay(at.In(s.loc)).AddDate(0, 0, -1)
		if today := s.today(); due.Before(today) {
			due = today
		}
		steps = append(steps, s.taskStep(params.AgencyID, &tasks, tr, func() gateway.NewTask {
			return gateway.NewTask{
				Title:     fmt.Sprintf("Confirm visit of %s with %s", property.Reference, contact.FullName()),
				DueDate:   due,
				Priority:  domain.PriorityMedium,
				RelatedTo: &domain.TaskRelation{Type: "visit", ID: result.Visit.ID},
			}
		}))
	}

	if err := s.runSteps(ctx, "schedule_visit", tr, steps); err != nil {
		return ScheduleVisitResult{}, err
	}
	if len(tasks) > 0 {
		result.Task = &tasks[0]
	}
	tr.NextSteps = append(tr.NextSteps, "Send the visit confirmation email (draft_email type visit_confirmation)")

	s.log.WithContext(ctx).Info("visit scheduled", "visitId", result.Visit.ID, "propertyId", property.ID)
	s.publish(ctx, events.VisitScheduled{
		BaseEvent:   events.NewBaseEvent(params.AgencyID),
		VisitID:     result.Visit.ID,
		PropertyID:  property.ID,
		ContactID:   contact.ID,
		ScheduledAt: result.Visit.ScheduledAt.Format(time.RFC3339),
	})
	return result, nil
}

// CreateTaskParams are the inputs of CreateTask.
type CreateTaskParams struct {
	AgencyID    uuid.UUID
	Title       string
	Description *string
	Due         string
	Priority    domain.TaskPriority
	RelatedTo   *domain.TaskRelation
}

// CreateTaskResult reports what CreateTask did.
type CreateTaskResult struct {
	Task       domain.Task
	Transcript *Transcript
}

// CreateTask adds a task due at a free-text date and queues its reminder.
func (s *Service) CreateTask(ctx context.Context, params CreateTaskParams) (CreateTaskResult, error) {
	if err := requireAgency(params.AgencyID); err != nil {
		return CreateTaskResult{}, err
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return CreateTaskResult{}, apperr.Validation("title is required")
	}
	due, err := s.parseDate(ctx, "due", params.Due)
	if err != nil {
		return CreateTaskResult{}, err
	}

	tr := newTranscript()
	task, err := s.gw.InsertTask(ctx, params.AgencyID, gateway.NewTask{
		Title:       title,
		Description: params.Description,
		DueDate:     due.In(s.loc),
		Priority:    params.Priority,
		Status:      domain.TaskTodo,
		RelatedTo:   params.RelatedTo,
	})
	if err != nil {
		return CreateTaskResult{}, writeErr("could not create task", err)
	}
	tr.created("task", task.ID)
	tr.action("Created task %q due %s", task.Title, task.DueDate.Format("2006-01-02"))
	s.scheduleReminder(ctx, "create_task", task, tr)

	return CreateTaskResult{Task: task, Transcript: tr}, nil
}
