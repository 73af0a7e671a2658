package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/events"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/gateway/gatewaytest"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

var paris = time.FixedZone("CET", 3600)

func newTestClient(t *testing.T, now time.Time) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), AsynqQueueName: "reminders"}
	client, err := NewClient(cfg, paris)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.now = func() time.Time { return now }
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestScheduleReminderQueuesAtNineOnTheDueDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, paris)
	client, mr := newTestClient(t, now)

	task := domain.Task{
		ID:       uuid.New(),
		AgencyID: uuid.New(),
		Title:    "Relancer Jean Dupont",
		DueDate:  time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	}
	if err := client.ScheduleReminder(context.Background(), task); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	key := "asynq:{reminders}:scheduled"
	members, err := mr.ZMembers(key)
	if err != nil {
		t.Fatalf("read scheduled set: %v", err)
	}
	if len(members) != 1 || members[0] != "reminder:"+task.ID.String() {
		t.Fatalf("unexpected scheduled members %v", members)
	}
	score, err := mr.ZScore(key, members[0])
	if err != nil {
		t.Fatalf("read score: %v", err)
	}
	want := time.Date(2026, 3, 13, ReminderHour, 0, 0, 0, paris).Unix()
	if int64(score) != want {
		t.Fatalf("reminder at %v, want %v", time.Unix(int64(score), 0).In(paris), time.Unix(want, 0).In(paris))
	}

	// Same task again is accepted without a second job.
	if err := client.ScheduleReminder(context.Background(), task); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	members, _ = mr.ZMembers(key)
	if len(members) != 1 {
		t.Fatalf("expected one scheduled job, got %d", len(members))
	}
}

func TestReminderTimeNeverInThePast(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, paris)
	client, _ := newTestClient(t, now)

	if got := client.reminderTime(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)); !got.Equal(now) {
		t.Fatalf("same-day reminder after nine should fire now, got %v", got)
	}
	if got := client.reminderTime(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)); got.Hour() != ReminderHour || got.Day() != 11 {
		t.Fatalf("unexpected reminder time %v", got)
	}
}

func TestNewClientRequiresRedis(t *testing.T) {
	if _, err := NewClient(&config.Config{}, nil); err == nil {
		t.Fatal("expected an error without REDIS_URL")
	}
}

func TestNilClientIsANoop(t *testing.T) {
	var client *Client
	if err := client.ScheduleReminder(context.Background(), domain.Task{}); err != nil {
		t.Fatalf("nil client should ignore reminders, got %v", err)
	}
}

type handlerFixture struct {
	handler *ReminderHandler
	store   *gatewaytest.Memory
	due     []events.TaskReminderDue
	agency  uuid.UUID
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{store: gatewaytest.New(), agency: uuid.New()}
	bus := events.NewInMemoryBus(logger.Nop())
	bus.Subscribe(events.TaskReminderDue{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		f.due = append(f.due, e.(events.TaskReminderDue))
		return nil
	}))
	f.handler = NewReminderHandler(f.store, bus, logger.Nop())
	return f
}

func (f *handlerFixture) job(t *testing.T, taskID uuid.UUID) *asynq.Task {
	t.Helper()
	job, err := NewReminderTask(ReminderPayload{
		TaskID: taskID.String(), AgencyID: f.agency.String(), Title: "Relancer", DueDate: "2026-03-13",
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}
	return job
}

func TestReminderHandlerPublishesForOpenTasks(t *testing.T) {
	f := newHandlerFixture(t)
	task, err := f.store.InsertTask(context.Background(), f.agency, gateway.NewTask{
		Title: "Relancer Jean Dupont", DueDate: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), Priority: domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	if err := f.handler.Handle(context.Background(), f.job(t, task.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(f.due) != 1 {
		t.Fatalf("expected one event, got %d", len(f.due))
	}
	if f.due[0].TaskID != task.ID || f.due[0].Title != "Relancer Jean Dupont" || f.due[0].Priority != "high" {
		t.Fatalf("unexpected event %+v", f.due[0])
	}
}

func TestReminderHandlerDropsClosedOrMissingTasks(t *testing.T) {
	f := newHandlerFixture(t)
	done, err := f.store.InsertTask(context.Background(), f.agency, gateway.NewTask{
		Title: "Déjà fait", DueDate: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), Status: domain.TaskCompleted,
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	for _, id := range []uuid.UUID{done.ID, uuid.New()} {
		if err := f.handler.Handle(context.Background(), f.job(t, id)); err != nil {
			t.Fatalf("handle %s: %v", id, err)
		}
	}
	if len(f.due) != 0 {
		t.Fatalf("expected no events, got %+v", f.due)
	}
}

func TestReminderHandlerSkipsRetryOnBadPayload(t *testing.T) {
	f := newHandlerFixture(t)
	bad := asynq.NewTask(TaskReminder, []byte(`{"taskId":"nope","agencyId":"`+f.agency.String()+`"}`))
	if err := f.handler.Handle(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	garbage := asynq.NewTask(TaskReminder, []byte(`{`))
	if err := f.handler.Handle(context.Background(), garbage); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
