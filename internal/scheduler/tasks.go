package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReminder = "tasks.reminder"

type ReminderPayload struct {
	TaskID   string `json:"taskId"`
	AgencyID string `json:"agencyId"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
}

func NewReminderTask(payload ReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReminder, data), nil
}

func ParseReminderPayload(task *asynq.Task) (ReminderPayload, error) {
	var payload ReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReminderPayload{}, err
	}
	return payload, nil
}
