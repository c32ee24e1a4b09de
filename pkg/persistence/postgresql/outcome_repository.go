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

// OutcomeRepository handles node outcome storage and resolution.
type OutcomeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewOutcomeRepository creates a new outcome repository.
func NewOutcomeRepository(db *sql.DB, logger *slog.Logger) *OutcomeRepository {
	return &OutcomeRepository{db: db, logger: logger}
}

// NodeOutcome resolves the outcome code of the most recently completed task of
// a node within an instance. The end-date-descending order is what makes the
// latest completion win when several actors acted on the same node.
func (or *OutcomeRepository) NodeOutcome(ctx context.Context, instanceID, nodeID string) (string, error) {
	query := `
		SELECT o.code
		FROM workflow_tasks t
		JOIN workflow_outcomes o ON o.id = t.outcome_id
		WHERE t.instance_id = $1 AND t.node_id = $2 AND t.status = $3
		ORDER BY t.end_date DESC
		LIMIT 1
	`

	var code string

	err := or.db.QueryRowContext(ctx, query, instanceID, nodeID, models.TaskStatusCompleted).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("instance %s node %s: %w", instanceID, nodeID, persistence.ErrOutcomeNotFound)
		}

		return "", fmt.Errorf("failed to resolve node outcome: %w", err)
	}

	return code, nil
}

// SaveOutcome inserts or updates an outcome definition row.
func (or *OutcomeRepository) SaveOutcome(ctx context.Context, outcome *models.Outcome) error {
	if outcome.ID == "" {
		outcome.ID = uuid.New().String()
	}

	now := time.Now()
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = now
	}

	outcome.UpdatedAt = now

	query := `
		INSERT INTO workflow_outcomes (id, node_id, code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`

	_, err := or.db.ExecContext(ctx, query,
		outcome.ID, outcome.NodeID, outcome.Code, outcome.Name,
		outcome.CreatedAt, outcome.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome %s: %w", outcome.ID, err)
	}

	return nil
}
