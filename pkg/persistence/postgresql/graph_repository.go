package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence"
)

// GraphRepository answers structural queries over stored node graphs.
type GraphRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(db *sql.DB, logger *slog.Logger) *GraphRepository {
	return &GraphRepository{db: db, logger: logger}
}

const nodeColumns = `id, workflow_id, role_id, name, type, task_type, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*models.Node, error) {
	var (
		node   models.Node
		roleID sql.NullString
	)

	err := row.Scan(
		&node.ID, &node.WorkflowID, &roleID, &node.Name,
		&node.Type, &node.TaskType, &node.Status,
		&node.CreatedAt, &node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if roleID.Valid {
		node.RoleID = &roleID.String
	}

	return &node, nil
}

// StartNode returns the workflow's start node.
func (gr *GraphRepository) StartNode(ctx context.Context, workflowID string) (*models.Node, error) {
	return gr.nodeByType(ctx, workflowID, models.NodeTypeStart)
}

// EndNode returns the workflow's end node.
func (gr *GraphRepository) EndNode(ctx context.Context, workflowID string) (*models.Node, error) {
	return gr.nodeByType(ctx, workflowID, models.NodeTypeEnd)
}

func (gr *GraphRepository) nodeByType(ctx context.Context, workflowID string, nodeType models.NodeType) (*models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM workflow_nodes
		WHERE workflow_id = $1 AND type = $2
		ORDER BY created_at
		LIMIT 1
	`

	node, err := scanNode(gr.db.QueryRowContext(ctx, query, workflowID, nodeType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("nodeByType", workflowID, persistence.ErrNodeNotFound)
		}

		return nil, fmt.Errorf("failed to scan %s node: %w", nodeType, err)
	}

	return node, nil
}

// NextNode returns the target of the source node's outgoing edge. Several
// outgoing edges resolve deterministically to the lowest sort order.
func (gr *GraphRepository) NextNode(ctx context.Context, workflowID, sourceNodeID string) (*models.Node, error) {
	query := `
		SELECT n.id, n.workflow_id, n.role_id, n.name, n.type, n.task_type, n.status, n.created_at, n.updated_at
		FROM workflow_node_paths p
		JOIN workflow_nodes n ON n.id = p.target_node_id
		WHERE p.workflow_id = $1 AND p.source_node_id = $2
		ORDER BY p.sort_order, p.id
		LIMIT 1
	`

	node, err := scanNode(gr.db.QueryRowContext(ctx, query, workflowID, sourceNodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewNodeError("NextNode", workflowID, sourceNodeID, persistence.ErrNodeNotFound)
		}

		return nil, fmt.Errorf("failed to scan next node: %w", err)
	}

	return node, nil
}

// DecisionBranches returns the outgoing paths of a decision node with target
// nodes populated, ordered by sort order ascending. The ordering drives
// first-match-wins branch selection and is business-relevant.
func (gr *GraphRepository) DecisionBranches(ctx context.Context, workflowID, decisionNodeID string) ([]*models.NodePath, error) {
	query := `
		SELECT p.id, p.workflow_id, p.source_node_id, p.target_node_id, p.name, p.is_default, p.sort_order,
		       p.created_at, p.updated_at,
		       n.id, n.workflow_id, n.role_id, n.name, n.type, n.task_type, n.status, n.created_at, n.updated_at
		FROM workflow_node_paths p
		JOIN workflow_nodes n ON n.id = p.target_node_id
		WHERE p.workflow_id = $1 AND p.source_node_id = $2
		ORDER BY p.sort_order, p.id
	`

	rows, err := gr.db.QueryContext(ctx, query, workflowID, decisionNodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision branches: %w", err)
	}

	defer closeRows(ctx, gr.logger, rows)

	var paths []*models.NodePath

	for rows.Next() {
		path, err := scanPathWithTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision branch: %w", err)
		}

		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision branches: %w", err)
	}

	return paths, nil
}

func scanPathWithTarget(rows *sql.Rows) (*models.NodePath, error) {
	var (
		path   models.NodePath
		target models.Node
		roleID sql.NullString
	)

	err := rows.Scan(
		&path.ID, &path.WorkflowID, &path.SourceNodeID, &path.TargetNodeID,
		&path.Name, &path.IsDefault, &path.SortOrder,
		&path.CreatedAt, &path.UpdatedAt,
		&target.ID, &target.WorkflowID, &roleID, &target.Name,
		&target.Type, &target.TaskType, &target.Status,
		&target.CreatedAt, &target.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if roleID.Valid {
		target.RoleID = &roleID.String
	}

	path.TargetNode = &target

	return &path, nil
}

// Paths returns every edge of the workflow with both endpoint nodes
// populated, for the diagram renderer.
func (gr *GraphRepository) Paths(ctx context.Context, workflowID string) ([]*models.NodePath, error) {
	query := `
		SELECT p.id, p.workflow_id, p.source_node_id, p.target_node_id, p.name, p.is_default, p.sort_order,
		       p.created_at, p.updated_at,
		       s.id, s.workflow_id, s.role_id, s.name, s.type, s.task_type, s.status, s.created_at, s.updated_at,
		       t.id, t.workflow_id, t.role_id, t.name, t.type, t.task_type, t.status, t.created_at, t.updated_at
		FROM workflow_node_paths p
		JOIN workflow_nodes s ON s.id = p.source_node_id
		JOIN workflow_nodes t ON t.id = p.target_node_id
		WHERE p.workflow_id = $1
		ORDER BY p.sort_order, p.id
	`

	rows, err := gr.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow paths: %w", err)
	}

	defer closeRows(ctx, gr.logger, rows)

	var paths []*models.NodePath

	for rows.Next() {
		var (
			path         models.NodePath
			source       models.Node
			target       models.Node
			sourceRoleID sql.NullString
			targetRoleID sql.NullString
		)

		err := rows.Scan(
			&path.ID, &path.WorkflowID, &path.SourceNodeID, &path.TargetNodeID,
			&path.Name, &path.IsDefault, &path.SortOrder,
			&path.CreatedAt, &path.UpdatedAt,
			&source.ID, &source.WorkflowID, &sourceRoleID, &source.Name,
			&source.Type, &source.TaskType, &source.Status,
			&source.CreatedAt, &source.UpdatedAt,
			&target.ID, &target.WorkflowID, &targetRoleID, &target.Name,
			&target.Type, &target.TaskType, &target.Status,
			&target.CreatedAt, &target.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow path: %w", err)
		}

		if sourceRoleID.Valid {
			source.RoleID = &sourceRoleID.String
		}

		if targetRoleID.Valid {
			target.RoleID = &targetRoleID.String
		}

		path.SourceNode = &source
		path.TargetNode = &target
		paths = append(paths, &path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow paths: %w", err)
	}

	return paths, nil
}
