// Package events defines the back-office domain events and re-exports the
// platform bus so modules only import this package.
package events

import (
	"agency_backoffice/platform/events"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Contract Domain Events
// =============================================================================

// ContractPrepared is published once prepare_contract has created a draft.
type ContractPrepared struct {
	BaseEvent
	ContractID   uuid.UUID `json:"contractId"`
	ContractType string    `json:"contractType"`
	PropertyID   uuid.UUID `json:"propertyId"`
	ContactID    uuid.UUID `json:"contactId"`
	ContactNew   bool      `json:"contactNew"`
	Warnings     int       `json:"warnings"`
}

func (e ContractPrepared) EventName() string { return "contracts.contract.prepared" }

// ContractStatusChanged is published after an explicit status update.
type ContractStatusChanged struct {
	BaseEvent
	ContractID uuid.UUID `json:"contractId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
}

func (e ContractStatusChanged) EventName() string { return "contracts.contract.status_changed" }

// =============================================================================
// Visit Domain Events
// =============================================================================

// VisitScheduled is published when a property visit is booked.
type VisitScheduled struct {
	BaseEvent
	VisitID     uuid.UUID `json:"visitId"`
	PropertyID  uuid.UUID `json:"propertyId"`
	ContactID   uuid.UUID `json:"contactId"`
	ScheduledAt string    `json:"scheduledAt"`
}

func (e VisitScheduled) EventName() string { return "visits.visit.scheduled" }

// =============================================================================
// Task Domain Events
// =============================================================================

// TaskReminderDue is published by the reminder worker when a queued reminder
// fires for a task that is still open.
type TaskReminderDue struct {
	BaseEvent
	TaskID   uuid.UUID `json:"taskId"`
	Title    string    `json:"title"`
	DueDate  string    `json:"dueDate"`
	Priority string    `json:"priority"`
}

func (e TaskReminderDue) EventName() string { return "tasks.task.reminder_due" }
