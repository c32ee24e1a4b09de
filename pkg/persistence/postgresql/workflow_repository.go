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

// WorkflowRepository handles workflow definition storage.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// WorkflowByID retrieves a workflow definition without its graph rows.
func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT id, name, description, status, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	var workflow models.Workflow

	err := wr.db.QueryRowContext(ctx, query, id).Scan(
		&workflow.ID, &workflow.Name, &workflow.Description, &workflow.Status,
		&workflow.CreatedAt, &workflow.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return &workflow, nil
}

// Workflows lists all workflow definitions.
func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT id, name, description, status, created_at, updated_at
		FROM workflows
		ORDER BY created_at
	`

	rows, err := wr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer closeRows(ctx, wr.logger, rows)

	var workflows []*models.Workflow

	for rows.Next() {
		var workflow models.Workflow

		err := rows.Scan(
			&workflow.ID, &workflow.Name, &workflow.Description, &workflow.Status,
			&workflow.CreatedAt, &workflow.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, &workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// SaveWorkflow inserts or updates a workflow definition row.
func (wr *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	now := time.Now()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	query := `
		INSERT INTO workflows (id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := wr.db.ExecContext(ctx, query,
		workflow.ID, workflow.Name, workflow.Description, workflow.Status,
		workflow.CreatedAt, workflow.UpdatedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

// SaveNode inserts or updates a node row.
func (wr *WorkflowRepository) SaveNode(ctx context.Context, node *models.Node) error {
	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	now := time.Now()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}

	node.UpdatedAt = now

	query := `
		INSERT INTO workflow_nodes (id, workflow_id, role_id, name, type, task_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			role_id = EXCLUDED.role_id,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			task_type = EXCLUDED.task_type,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := wr.db.ExecContext(ctx, query,
		node.ID, node.WorkflowID, node.RoleID, node.Name,
		node.Type, node.TaskType, node.Status,
		node.CreatedAt, node.UpdatedAt,
	)
	if err != nil {
		return persistence.NewNodeError("SaveNode", node.WorkflowID, node.ID, err)
	}

	return nil
}

// SavePath inserts or updates an edge row.
func (wr *WorkflowRepository) SavePath(ctx context.Context, path *models.NodePath) error {
	if path.ID == "" {
		path.ID = uuid.New().String()
	}

	now := time.Now()
	if path.CreatedAt.IsZero() {
		path.CreatedAt = now
	}

	path.UpdatedAt = now

	query := `
		INSERT INTO workflow_node_paths (id, workflow_id, source_node_id, target_node_id, name, is_default, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_default = EXCLUDED.is_default,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`

	_, err := wr.db.ExecContext(ctx, query,
		path.ID, path.WorkflowID, path.SourceNodeID, path.TargetNodeID,
		path.Name, path.IsDefault, path.SortOrder,
		path.CreatedAt, path.UpdatedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("SavePath", path.WorkflowID, err)
	}

	return nil
}
