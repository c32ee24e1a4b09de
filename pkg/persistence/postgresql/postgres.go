// Package postgresql provides the PostgreSQL persistence implementation for
// workflow definitions, instances and tasks.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/platine-go/workflow/pkg/persistence"
	"github.com/platine-go/workflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	workflows  *WorkflowRepository
	graph      *GraphRepository
	conditions *ConditionRepository
	actions    *ActionRepository
	instances  *InstanceRepository
	tasks      *TaskRepository
	actors     *ActorRepository
	outcomes   *OutcomeRepository
	results    *ResultRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence connects to PostgreSQL, runs pending migrations and returns
// the persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:         database,
		logger:     logger,
		workflows:  NewWorkflowRepository(database, logger),
		graph:      NewGraphRepository(database, logger),
		conditions: NewConditionRepository(database, logger),
		actions:    NewActionRepository(database, logger),
		instances:  NewInstanceRepository(database, logger),
		tasks:      NewTaskRepository(database, logger),
		actors:     NewActorRepository(database, logger),
		outcomes:   NewOutcomeRepository(database, logger),
		results:    NewResultRepository(database, logger),
	}, nil
}

func (p *Persistence) Workflows() persistence.WorkflowRepository { return p.workflows }

func (p *Persistence) Graph() persistence.GraphReader { return p.graph }

func (p *Persistence) Conditions() persistence.ConditionRepository { return p.conditions }

func (p *Persistence) Actions() persistence.ActionRepository { return p.actions }

func (p *Persistence) Instances() persistence.InstanceRepository { return p.instances }

func (p *Persistence) Tasks() persistence.TaskRepository { return p.tasks }

func (p *Persistence) Actors() persistence.ActorRepository { return p.actors }

func (p *Persistence) Outcomes() persistence.OutcomeRepository { return p.outcomes }

func (p *Persistence) Results() persistence.ResultRepository { return p.results }

// HealthCheck verifies the database connection is alive.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// closeRows closes a result set and logs a failure instead of masking the
// original query error.
func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if closeErr := rows.Close(); closeErr != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
	}
}
