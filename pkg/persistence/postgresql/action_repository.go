package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/models"
)

// ActionRepository handles stored node action storage.
type ActionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewActionRepository creates a new action repository.
func NewActionRepository(db *sql.DB, logger *slog.Logger) *ActionRepository {
	return &ActionRepository{db: db, logger: logger}
}

// NodeActions returns the stored actions of a node in execution order.
func (ar *ActionRepository) NodeActions(ctx context.Context, nodeID string) ([]*models.Action, error) {
	query := `
		SELECT id, node_id, name, type, config, sort_order, created_at, updated_at
		FROM workflow_actions
		WHERE node_id = $1
		ORDER BY sort_order, id
	`

	rows, err := ar.db.QueryContext(ctx, query, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}

	defer closeRows(ctx, ar.logger, rows)

	var actions []*models.Action

	for rows.Next() {
		var (
			action    models.Action
			configRaw []byte
		)

		err := rows.Scan(
			&action.ID, &action.NodeID, &action.Name, &action.Type,
			&configRaw, &action.SortOrder, &action.CreatedAt, &action.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		if err := json.Unmarshal(configRaw, &action.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action config for %s: %w", action.ID, err)
		}

		actions = append(actions, &action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

// SaveAction inserts or updates an action row.
func (ar *ActionRepository) SaveAction(ctx context.Context, action *models.Action) error {
	if action.ID == "" {
		action.ID = uuid.New().String()
	}

	now := time.Now()
	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}

	action.UpdatedAt = now

	config := action.Config
	if config == nil {
		config = map[string]any{}
	}

	configRaw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal action config for %s: %w", action.ID, err)
	}

	query := `
		INSERT INTO workflow_actions (id, node_id, name, type, config, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			config = EXCLUDED.config,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`

	_, err = ar.db.ExecContext(ctx, query,
		action.ID, action.NodeID, action.Name, action.Type,
		configRaw, action.SortOrder, action.CreatedAt, action.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save action %s: %w", action.ID, err)
	}

	return nil
}
