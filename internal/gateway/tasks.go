package gateway

import (
	"context"
	"errors"
	"fmt"

	"agency_backoffice/internal/domain"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, agency_id, title, description, due_date, priority, status, related_type, related_id, created_at, updated_at`

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	var priority, status string
	var relatedType *string
	var relatedID *uuid.UUID
	if err := row.Scan(
		&t.ID, &t.AgencyID, &t.Title, &t.Description, &t.DueDate, &priority, &status,
		&relatedType, &relatedID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return domain.Task{}, err
	}
	t.Priority = domain.TaskPriority(priority)
	t.Status = domain.TaskStatus(status)
	if relatedType != nil && relatedID != nil {
		t.RelatedTo = &domain.TaskRelation{Type: *relatedType, ID: *relatedID}
	}
	return t, nil
}

// GetTask retrieves a task by id.
func (r *Repo) GetTask(ctx context.Context, agencyID, id uuid.UUID) (domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 AND agency_id = $2`, taskColumns)
	t, err := scanTask(r.pool.QueryRow(ctx, query, id, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, apperr.NotFound("task not found")
		}
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// InsertTask creates a task. Only the calendar date of DueDate is stored.
func (r *Repo) InsertTask(ctx context.Context, agencyID uuid.UUID, params NewTask) (domain.Task, error) {
	priority := params.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	status := params.Status
	if status == "" {
		status = domain.TaskTodo
	}
	var relatedType *string
	var relatedID *uuid.UUID
	if params.RelatedTo != nil {
		relatedType = &params.RelatedTo.Type
		relatedID = &params.RelatedTo.ID
	}

	query := fmt.Sprintf(`
		INSERT INTO tasks (agency_id, title, description, due_date, priority, status, related_type, related_id)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
		RETURNING %s`, taskColumns)
	t, err := scanTask(r.pool.QueryRow(ctx, query,
		agencyID, params.Title, params.Description, params.DueDate.Format("2006-01-02"),
		string(priority), string(status), relatedType, relatedID,
	))
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func buildTaskWhere(agencyID uuid.UUID, filter TaskFilter) *whereBuilder {
	where := newWhere("", agencyID)
	if filter.Status != nil {
		where.add("status = ?", string(*filter.Status))
	}
	if filter.RelatedTo != nil {
		where.add("related_type = ?", filter.RelatedTo.Type)
		where.add("related_id = ?", filter.RelatedTo.ID)
	}
	if filter.DueBefore != nil {
		where.add("due_date <= ?::date", filter.DueBefore.Format("2006-01-02"))
	}
	return where
}

// ListTasks returns one page of tasks ordered by due date.
func (r *Repo) ListTasks(ctx context.Context, agencyID uuid.UUID, filter TaskFilter) ([]domain.Task, int, error) {
	where := buildTaskWhere(agencyID, filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tasks WHERE %s`, where.sql())
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	page := filter.Page.normalized()
	idx := where.next()
	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE %s
		ORDER BY due_date ASC, created_at ASC
		LIMIT $%d OFFSET $%d`, taskColumns, where.sql(), idx, idx+1)
	rows, err := r.pool.Query(ctx, query, append(where.args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

const visitColumns = `id, agency_id, property_id, contact_id, scheduled_at, duration_min, status, feedback, created_at, updated_at`

func scanVisit(row pgx.Row) (domain.Visit, error) {
	var v domain.Visit
	var status string
	if err := row.Scan(
		&v.ID, &v.AgencyID, &v.PropertyID, &v.ContactID, &v.ScheduledAt, &v.DurationMinutes,
		&status, &v.Feedback, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return domain.Visit{}, err
	}
	v.Status = domain.VisitStatus(status)
	return v, nil
}

// GetVisit retrieves a visit by id.
func (r *Repo) GetVisit(ctx context.Context, agencyID, id uuid.UUID) (domain.Visit, error) {
	query := fmt.Sprintf(`SELECT %s FROM visits WHERE id = $1 AND agency_id = $2`, visitColumns)
	v, err := scanVisit(r.pool.QueryRow(ctx, query, id, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Visit{}, apperr.NotFound("visit not found")
		}
		return domain.Visit{}, fmt.Errorf("get visit: %w", err)
	}
	return v, nil
}

// InsertVisit schedules a visit.
func (r *Repo) InsertVisit(ctx context.Context, agencyID uuid.UUID, params NewVisit) (domain.Visit, error) {
	duration := params.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	status := params.Status
	if status == "" {
		status = domain.VisitScheduled
	}

	query := fmt.Sprintf(`
		INSERT INTO visits (agency_id, property_id, contact_id, scheduled_at, duration_min, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, visitColumns)
	v, err := scanVisit(r.pool.QueryRow(ctx, query,
		agencyID, params.PropertyID, params.ContactID, params.ScheduledAt, duration, string(status),
	))
	if err != nil {
		return domain.Visit{}, fmt.Errorf("insert visit: %w", err)
	}
	return v, nil
}
