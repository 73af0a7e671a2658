package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"agency_backoffice/internal/events"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
)

func TestActivityIsLoggedPerAgency(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewInMemoryBus(logger.Nop())
	New(logger.NewWithWriter("production", &buf)).RegisterHandlers(bus)

	agency := uuid.New()
	err := bus.PublishSync(context.Background(), events.ContractStatusChanged{
		BaseEvent:  events.NewBaseEvent(agency),
		ContractID: uuid.New(),
		OldStatus:  "draft",
		NewStatus:  "pending",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "activity: contract status changed") || !strings.Contains(out, agency.String()) {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestUrgentRemindersAreWarnings(t *testing.T) {
	var buf bytes.Buffer
	m := New(logger.NewWithWriter("production", &buf))

	if err := m.Handle(context.Background(), events.TaskReminderDue{BaseEvent: events.NewBaseEvent(uuid.New()), Title: "Signer", Priority: "urgent"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Fatalf("expected a warning, got %q", buf.String())
	}
}
