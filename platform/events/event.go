// Package events is the in-process event bus. Publishers never learn
// whether a subscriber failed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is anything published on the bus. Every event belongs to one agency.
type Event interface {
	EventName() string
	EventID() uuid.UUID
	Tenant() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields shared by every event.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	AgencyID  uuid.UUID `json:"agencyId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventID() uuid.UUID    { return e.ID }
func (e BaseEvent) Tenant() uuid.UUID     { return e.AgencyID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a fresh id and the current time for agencyID.
func NewBaseEvent(agencyID uuid.UUID) BaseEvent {
	return BaseEvent{ID: uuid.New(), AgencyID: agencyID, Timestamp: time.Now().UTC()}
}

// Handler processes one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribers keyed by EventName.
type Bus interface {
	// Publish hands the event to every subscriber asynchronously.
	// Handler failures are logged and never reach the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync runs every subscriber inline and returns the first error.
	PublishSync(ctx context.Context, event Event) error

	Subscribe(eventName string, handler Handler)
}
