package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// ReminderHour is the local hour at which a task reminder fires on its due date.
const ReminderHour = 9

type Client struct {
	client   *asynq.Client
	queue    string
	location *time.Location
	now      func() time.Time
}

var _ workflow.ReminderScheduler = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig, location *time.Location) (*Client, error) {
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
	if location == nil {
		location = time.UTC
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		location: location,
		now:      time.Now,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleReminder queues one reminder per task. Scheduling the same task
// twice is a no-op.
func (c *Client) ScheduleReminder(ctx context.Context, task domain.Task) error {
	if c == nil || c.client == nil {
		return nil
	}

	job, err := NewReminderTask(ReminderPayload{
		TaskID:   task.ID.String(),
		AgencyID: task.AgencyID.String(),
		Title:    task.Title,
		DueDate:  task.DueDate.Format("2006-01-02"),
	})
	if err != nil {
		return err
	}

	runAt := c.reminderTime(task.DueDate)
	_, err = c.client.EnqueueContext(ctx, job,
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.TaskID("reminder:"+task.ID.String()),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// reminderTime is ReminderHour on the due date in the agency timezone, or now
// when that moment has already passed.
func (c *Client) reminderTime(due time.Time) time.Time {
	at := time.Date(due.Year(), due.Month(), due.Day(), ReminderHour, 0, 0, 0, c.location)
	if now := c.now(); at.Before(now) {
		return now
	}
	return at
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
