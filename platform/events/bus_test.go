package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
)

type pingEvent struct{ BaseEvent }

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishRunsEverySubscriber(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
			calls.Add(1)
			return nil
		}))
	}

	bus.Publish(context.Background(), pingEvent{NewBaseEvent(uuid.New())})
	bus.Wait()

	if calls.Load() != 3 {
		t.Fatalf("expected 3 handler calls, got %d", calls.Load())
	}
}

func TestPublishSurvivesFailingHandler(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	var reached atomic.Bool
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		reached.Store(true)
		return errors.New("still fails")
	}))

	bus.Publish(context.Background(), pingEvent{NewBaseEvent(uuid.New())})
	bus.Wait()

	if !reached.Load() {
		t.Fatal("expected second handler to run despite the first panicking")
	}
}

func TestPublishSyncReturnsHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		return errors.New("nope")
	}))

	if err := bus.PublishSync(context.Background(), pingEvent{NewBaseEvent(uuid.New())}); err == nil {
		t.Fatal("expected error from synchronous publish")
	}
}

func TestNewBaseEventStampsEnvelope(t *testing.T) {
	agency := uuid.New()
	e := pingEvent{NewBaseEvent(agency)}
	if e.Tenant() != agency || e.EventID() == uuid.Nil || e.OccurredAt().IsZero() {
		t.Fatalf("unexpected envelope %+v", e.BaseEvent)
	}
}
