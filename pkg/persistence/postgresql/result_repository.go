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

// ResultRepository records and reads back node execution results.
type ResultRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sql.DB, logger *slog.Logger) *ResultRepository {
	return &ResultRepository{db: db, logger: logger}
}

// SaveResult records a value produced by a node execution.
func (rr *ResultRepository) SaveResult(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}

	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO workflow_results (id, instance_id, node_id, result, datatype, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := rr.db.ExecContext(ctx, query,
		result.ID, result.InstanceID, result.NodeID,
		result.Value, result.DataType, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", result.ID, err)
	}

	return nil
}

// LastResult returns the most recent recorded result of a node within an
// instance.
func (rr *ResultRepository) LastResult(ctx context.Context, instanceID, nodeID string) (*models.Result, error) {
	query := `
		SELECT id, instance_id, node_id, result, datatype, created_at
		FROM workflow_results
		WHERE instance_id = $1 AND node_id = $2
		ORDER BY created_at DESC, id
		LIMIT 1
	`

	var result models.Result

	err := rr.db.QueryRowContext(ctx, query, instanceID, nodeID).Scan(
		&result.ID, &result.InstanceID, &result.NodeID,
		&result.Value, &result.DataType, &result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instance %s node %s: %w", instanceID, nodeID, persistence.ErrResultNotFound)
		}

		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	return &result, nil
}
