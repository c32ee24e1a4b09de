package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence"
)

// TaskRepository handles human task storage.
type TaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB, logger *slog.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// CreateTask persists a new pending task for a user node actor.
func (tr *TaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	if task.Status == "" {
		task.Status = models.TaskStatusProcessing
	}

	if task.StartDate.IsZero() {
		task.StartDate = time.Now()
	}

	query := `
		INSERT INTO workflow_tasks (id, instance_id, node_id, outcome_id, user_id, comment, status, cancel_trigger, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tr.db.ExecContext(ctx, query,
		task.ID, task.InstanceID, task.NodeID, task.OutcomeID,
		task.UserID, task.Comment, task.Status,
		string(models.CancelTriggerUser), task.StartDate, task.EndDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create task %s: %w", task.ID, err)
	}

	return nil
}

// TasksByInstance lists all tasks of an instance, oldest first.
func (tr *TaskRepository) TasksByInstance(ctx context.Context, instanceID string) ([]*models.Task, error) {
	query := `
		SELECT id, instance_id, node_id, outcome_id, user_id, comment, status, cancel_trigger, start_date, end_date
		FROM workflow_tasks
		WHERE instance_id = $1
		ORDER BY start_date, id
	`

	rows, err := tr.db.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	defer closeRows(ctx, tr.logger, rows)

	var tasks []*models.Task

	for rows.Next() {
		var task models.Task

		err := rows.Scan(
			&task.ID, &task.InstanceID, &task.NodeID, &task.OutcomeID,
			&task.UserID, &task.Comment, &task.Status, &task.CancelTrigger,
			&task.StartDate, &task.EndDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// CompleteTask marks a processing task completed with the chosen outcome. The
// end date it stamps is what outcome resolution orders by, so completion time
// is recorded server-side in one statement.
func (tr *TaskRepository) CompleteTask(ctx context.Context, taskID, outcomeID, comment string) error {
	query := `
		UPDATE workflow_tasks
		SET status = $2, outcome_id = $3, comment = $4, end_date = NOW()
		WHERE id = $1 AND status = $5
	`

	result, err := tr.db.ExecContext(ctx, query,
		taskID, models.TaskStatusCompleted, outcomeID, comment, models.TaskStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete task %s: %w", taskID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check task completion: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("task %s: %w", taskID, persistence.ErrTaskNotFound)
	}

	return nil
}

// CancelTask marks a processing task cancelled, recording who triggered it.
func (tr *TaskRepository) CancelTask(ctx context.Context, taskID string, trigger models.CancelTrigger) error {
	query := `
		UPDATE workflow_tasks
		SET status = $2, cancel_trigger = $3, end_date = NOW()
		WHERE id = $1 AND status = $4
	`

	result, err := tr.db.ExecContext(ctx, query,
		taskID, models.TaskStatusCancelled, trigger, models.TaskStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel task %s: %w", taskID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check task cancellation: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("task %s: %w", taskID, persistence.ErrTaskNotFound)
	}

	return nil
}
