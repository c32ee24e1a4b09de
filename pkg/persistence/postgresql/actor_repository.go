package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/models"
)

// ActorRepository resolves role-to-user bindings for running instances.
type ActorRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewActorRepository creates a new actor repository.
func NewActorRepository(db *sql.DB, logger *slog.Logger) *ActorRepository {
	return &ActorRepository{db: db, logger: logger}
}

// RoleActors returns the users bound to a role for an instance. An empty
// result is valid and means the user node has nobody to assign work to.
func (ar *ActorRepository) RoleActors(ctx context.Context, instanceID, roleID string) ([]*models.RoleUser, error) {
	query := `
		SELECT id, instance_id, role_id, user_id
		FROM workflow_roles_users
		WHERE instance_id = $1 AND role_id = $2
		ORDER BY user_id
	`

	rows, err := ar.db.QueryContext(ctx, query, instanceID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role actors: %w", err)
	}

	defer closeRows(ctx, ar.logger, rows)

	var actors []*models.RoleUser

	for rows.Next() {
		var actor models.RoleUser

		err := rows.Scan(&actor.ID, &actor.InstanceID, &actor.RoleID, &actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role actor: %w", err)
		}

		actors = append(actors, &actor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role actors: %w", err)
	}

	return actors, nil
}

// AssignActor binds a user to a workflow role for an instance.
func (ar *ActorRepository) AssignActor(ctx context.Context, roleUser *models.RoleUser) error {
	if roleUser.ID == "" {
		roleUser.ID = uuid.New().String()
	}

	query := `
		INSERT INTO workflow_roles_users (id, instance_id, role_id, user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := ar.db.ExecContext(ctx, query,
		roleUser.ID, roleUser.InstanceID, roleUser.RoleID, roleUser.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign actor %s: %w", roleUser.UserID, err)
	}

	return nil
}
