package scheduler

import (
	"context"
	"fmt"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/events"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskReader loads the task a reminder points at.
type TaskReader interface {
	GetTask(ctx context.Context, agencyID, id uuid.UUID) (domain.Task, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler *ReminderHandler
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, tasks TaskReader, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	handler := NewReminderHandler(tasks, bus, log)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReminder, handler.Handle)

	return &Worker{server: server, mux: mux, handler: handler, log: log}, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// ReminderHandler processes tasks.reminder jobs.
type ReminderHandler struct {
	tasks TaskReader
	bus   events.Bus
	log   *logger.Logger
}

func NewReminderHandler(tasks TaskReader, bus events.Bus, log *logger.Logger) *ReminderHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReminderHandler{tasks: tasks, bus: bus, log: log}
}

// Handle logs the reminder and publishes TaskReminderDue. Reminders for tasks
// that were deleted, completed or cancelled are dropped.
func (h *ReminderHandler) Handle(ctx context.Context, job *asynq.Task) error {
	payload, err := ParseReminderPayload(job)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	taskID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		return fmt.Errorf("invalid task id %q: %w", payload.TaskID, asynq.SkipRetry)
	}
	agencyID, err := uuid.Parse(payload.AgencyID)
	if err != nil {
		return fmt.Errorf("invalid agency id %q: %w", payload.AgencyID, asynq.SkipRetry)
	}

	log := h.log.WithTenantID(agencyID.String())

	task := domain.Task{ID: taskID, AgencyID: agencyID, Title: payload.Title}
	if h.tasks != nil {
		task, err = h.tasks.GetTask(ctx, agencyID, taskID)
		if apperr.Is(err, apperr.KindNotFound) {
			log.Info("reminder dropped: task no longer exists", "taskId", taskID)
			return nil
		}
		if err != nil {
			return err
		}
		if task.Status == domain.TaskCompleted || task.Status == domain.TaskCancelled {
			log.Info("reminder dropped: task closed", "taskId", taskID, "status", task.Status)
			return nil
		}
	}

	log.Info("task reminder due", "taskId", taskID, "title", task.Title, "dueDate", payload.DueDate)

	if h.bus == nil {
		return nil
	}
	return h.bus.PublishSync(ctx, events.TaskReminderDue{
		BaseEvent: events.NewBaseEvent(agencyID),
		TaskID:    taskID,
		Title:     task.Title,
		DueDate:   payload.DueDate,
		Priority:  string(task.Priority),
	})
}
