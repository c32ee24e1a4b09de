// Package log logs a configurable message when its node executes.
package log

import (
	"context"
	"log/slog"

	"github.com/platine-go/workflow/pkg/actions"
)

type LogAction struct {
	message string
	level   string
}

func NewLogAction(config map[string]any) *LogAction {
	message, _ := config["message"].(string)
	level, _ := config["level"].(string)

	if message == "" {
		message = "node executed"
	}

	return &LogAction{message: message, level: level}
}

func (a *LogAction) Execute(_ context.Context, executionCtx actions.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With(
		"action_type", "log",
		"workflow_id", executionCtx.WorkflowID,
		"instance_id", executionCtx.InstanceID,
		"node_id", executionCtx.NodeID,
	)

	switch a.level {
	case "debug":
		logger.Debug(a.message)
	case "warn":
		logger.Warn(a.message)
	case "error":
		logger.Error(a.message)
	default:
		logger.Info(a.message)
	}

	return nil, nil
}
