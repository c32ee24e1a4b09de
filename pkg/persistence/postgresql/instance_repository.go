package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence"
)

// InstanceRepository handles running instance storage.
type InstanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInstanceRepository creates a new instance repository.
func NewInstanceRepository(db *sql.DB, logger *slog.Logger) *InstanceRepository {
	return &InstanceRepository{db: db, logger: logger}
}

// InstanceByID retrieves a workflow instance.
func (ir *InstanceRepository) InstanceByID(ctx context.Context, id string) (*models.Instance, error) {
	query := `
		SELECT id, workflow_id, entity_id, entity_name, entity_detail, comment, status, user_id, start_date, end_date
		FROM workflow_instances
		WHERE id = $1
	`

	var instance models.Instance

	err := ir.db.QueryRowContext(ctx, query, id).Scan(
		&instance.ID, &instance.WorkflowID,
		&instance.EntityID, &instance.EntityName, &instance.EntityDetail,
		&instance.Comment, &instance.Status, &instance.UserID,
		&instance.StartDate, &instance.EndDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instance %s: %w", id, persistence.ErrInstanceNotFound)
		}

		return nil, fmt.Errorf("failed to scan instance: %w", err)
	}

	return &instance, nil
}

// SaveInstance inserts or updates an instance row.
func (ir *InstanceRepository) SaveInstance(ctx context.Context, instance *models.Instance) error {
	if instance.ID == "" {
		instance.ID = uuid.New().String()
	}

	if instance.StartDate.IsZero() {
		instance.StartDate = time.Now()
	}

	query := `
		INSERT INTO workflow_instances (id, workflow_id, entity_id, entity_name, entity_detail, comment, status, user_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			entity_detail = EXCLUDED.entity_detail,
			comment = EXCLUDED.comment,
			status = EXCLUDED.status,
			user_id = EXCLUDED.user_id,
			end_date = EXCLUDED.end_date
	`

	_, err := ir.db.ExecContext(ctx, query,
		instance.ID, instance.WorkflowID,
		instance.EntityID, instance.EntityName, instance.EntityDetail,
		instance.Comment, instance.Status, instance.UserID,
		instance.StartDate, instance.EndDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save instance %s: %w", instance.ID, err)
	}

	return nil
}

// UpdateInstanceStatus transitions an instance's lifecycle state. Terminal
// states also stamp the end date.
func (ir *InstanceRepository) UpdateInstanceStatus(ctx context.Context, id string, status models.InstanceStatus) error {
	query := `
		UPDATE workflow_instances
		SET status = $2,
		    end_date = CASE WHEN $2 IN ('completed', 'cancelled') THEN NOW() ELSE end_date END
		WHERE id = $1
	`

	result, err := ir.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update instance status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check instance update: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("instance %s: %w", id, persistence.ErrInstanceNotFound)
	}

	return nil
}
