package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"

	"github.com/platine-go/workflow/pkg/actions"
	log_action "github.com/platine-go/workflow/pkg/actions/log"
	script_action "github.com/platine-go/workflow/pkg/actions/script"
	"github.com/platine-go/workflow/pkg/lock"
	"github.com/platine-go/workflow/pkg/log"
	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence/postgresql"
	"github.com/platine-go/workflow/pkg/workflow"
)

const lockTTL = 5 * time.Minute

func ExecuteCommand() *cli.Command {
	return &cli.Command{
		Name:    "execute",
		Aliases: []string{"e"},
		Usage:   "Run or resume one workflow instance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "instance-id",
				Usage:    "Instance to execute",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "current-node-id",
				Usage: "Node to resume from (defaults to the start node)",
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for distributed instance locking (in-process locking when unset)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("execute")

			store, err := postgresql.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.Error("failed to close persistence", "error", err)
				}
			}()

			instance, err := store.Instances().InstanceByID(ctx, command.String("instance-id"))
			if err != nil {
				return err
			}

			wf, err := store.Workflows().WorkflowByID(ctx, instance.WorkflowID)
			if err != nil {
				return err
			}

			locker, err := newLocker(command.String("redis-url"))
			if err != nil {
				return err
			}

			release, err := locker.Acquire(ctx, lock.InstanceKey(instance.ID), lockTTL)
			if err != nil {
				return fmt.Errorf("instance %s is already being executed: %w", instance.ID, err)
			}

			defer func() {
				if err := release(ctx); err != nil {
					logger.Error("failed to release instance lock", "error", err)
				}
			}()

			registry := actions.NewRegistry(logger)
			registry.Register(log_action.NewLogActionFactory())
			registry.Register(script_action.NewScriptActionFactory())

			executor, err := workflow.NewExecutor(workflow.Dependencies{
				Graph:      store.Graph(),
				Conditions: store.Conditions(),
				Actions:    store.Actions(),
				Actors:     store.Actors(),
				Tasks:      store.Tasks(),
				Outcomes:   store.Outcomes(),
				Results:    store.Results(),
				Registry:   registry,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			var currentNode *models.Node
			// Resumption from an explicit node, e.g. after a task completion.
			if nodeID := command.String("current-node-id"); nodeID != "" {
				currentNode, err = store.Graph().NextNode(ctx, wf.ID, nodeID)
				if err != nil {
					return fmt.Errorf("failed to resolve resume node after %s: %w", nodeID, err)
				}
			}

			result, err := executor.Execute(ctx, wf, instance, currentNode)
			if err != nil {
				return err
			}

			if result.EndReached {
				if err := store.Instances().UpdateInstanceStatus(ctx, instance.ID, models.InstanceStatusCompleted); err != nil {
					return err
				}
			}

			logger.Info("execution finished",
				"state", result.State,
				"halt_reason", result.HaltReason,
				"end_reached", result.EndReached,
				"steps", result.Steps,
				"tasks_created", len(result.Tasks),
			)

			return nil
		},
	}
}

func newLocker(redisURL string) (lock.Locker, error) {
	if redisURL == "" {
		return lock.NewLocalLocker(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return lock.NewRedisLocker(redis.NewClient(opts)), nil
}
