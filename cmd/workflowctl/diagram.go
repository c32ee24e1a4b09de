package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/platine-go/workflow/pkg/diagram"
	"github.com/platine-go/workflow/pkg/log"
	"github.com/platine-go/workflow/pkg/persistence/postgresql"
)

func DiagramCommand() *cli.Command {
	return &cli.Command{
		Name:    "diagram",
		Aliases: []string{"d"},
		Usage:   "Print a workflow's graph as a mermaid flowchart",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "workflow-id",
				Usage:    "Workflow to render",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("diagram")

			store, err := postgresql.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.Error("failed to close persistence", "error", err)
				}
			}()

			paths, err := store.Graph().Paths(ctx, command.String("workflow-id"))
			if err != nil {
				return err
			}

			fmt.Print(diagram.RenderMermaid(diagram.Build(paths)))

			return nil
		},
	}
}
