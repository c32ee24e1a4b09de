package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/models"
)

// ConditionRepository handles condition group storage.
type ConditionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConditionRepository creates a new condition repository.
func NewConditionRepository(db *sql.DB, logger *slog.Logger) *ConditionRepository {
	return &ConditionRepository{db: db, logger: logger}
}

// ConditionGroups returns the condition groups of a node with their conditions
// populated. Groups come back in sort order, conditions inside each group in
// sort order too. Both orderings drive expression rendering and must hold.
func (cr *ConditionRepository) ConditionGroups(ctx context.Context, nodeID string) ([]*models.ConditionGroup, error) {
	query := `
		SELECT g.id, g.node_id, g.sort_order, g.created_at, g.updated_at,
		       c.id, c.group_id, c.operand1, c.operator, c.operand2, c.sort_order, c.created_at, c.updated_at
		FROM workflow_condition_groups g
		LEFT JOIN workflow_conditions c ON c.group_id = g.id
		WHERE g.node_id = $1
		ORDER BY g.sort_order, g.id, c.sort_order, c.id
	`

	rows, err := cr.db.QueryContext(ctx, query, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query condition groups: %w", err)
	}

	defer closeRows(ctx, cr.logger, rows)

	var (
		groups  []*models.ConditionGroup
		current *models.ConditionGroup
	)

	for rows.Next() {
		var (
			group models.ConditionGroup
			condID, condGroupID, operand1, operator, operand2 sql.NullString
			condSortOrder                                     sql.NullInt64
			condCreatedAt, condUpdatedAt                      sql.NullTime
		)

		err := rows.Scan(
			&group.ID, &group.NodeID, &group.SortOrder, &group.CreatedAt, &group.UpdatedAt,
			&condID, &condGroupID, &operand1, &operator, &operand2, &condSortOrder, &condCreatedAt, &condUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan condition group: %w", err)
		}

		if current == nil || current.ID != group.ID {
			current = &group
			groups = append(groups, current)
		}

		if condID.Valid {
			current.Conditions = append(current.Conditions, &models.Condition{
				ID:        condID.String,
				GroupID:   condGroupID.String,
				Operand1:  operand1.String,
				Operator:  operator.String,
				Operand2:  operand2.String,
				SortOrder: int(condSortOrder.Int64),
				CreatedAt: condCreatedAt.Time,
				UpdatedAt: condUpdatedAt.Time,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating condition groups: %w", err)
	}

	return groups, nil
}

// SaveConditionGroup inserts or updates a condition group row.
func (cr *ConditionRepository) SaveConditionGroup(ctx context.Context, group *models.ConditionGroup) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	now := time.Now()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}

	group.UpdatedAt = now

	query := `
		INSERT INTO workflow_condition_groups (id, node_id, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`

	_, err := cr.db.ExecContext(ctx, query,
		group.ID, group.NodeID, group.SortOrder, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save condition group %s: %w", group.ID, err)
	}

	return nil
}

// SaveCondition inserts or updates a condition row.
func (cr *ConditionRepository) SaveCondition(ctx context.Context, condition *models.Condition) error {
	if condition.ID == "" {
		condition.ID = uuid.New().String()
	}

	now := time.Now()
	if condition.CreatedAt.IsZero() {
		condition.CreatedAt = now
	}

	condition.UpdatedAt = now

	query := `
		INSERT INTO workflow_conditions (id, group_id, operand1, operator, operand2, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			operand1 = EXCLUDED.operand1,
			operator = EXCLUDED.operator,
			operand2 = EXCLUDED.operand2,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`

	_, err := cr.db.ExecContext(ctx, query,
		condition.ID, condition.GroupID,
		condition.Operand1, condition.Operator, condition.Operand2,
		condition.SortOrder, condition.CreatedAt, condition.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save condition %s: %w", condition.ID, err)
	}

	return nil
}
