package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "workflowctl",
		Usage:                 "Manage and execute workflow instances",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			MigrateCommand(),
			ExecuteCommand(),
			DiagramCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
