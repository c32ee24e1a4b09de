// Package actions defines the pluggable side effects attached to workflow
// nodes and the registry that instantiates them from stored configuration.
package actions

import (
	"context"
	"log/slog"
)

// ExecutionContext carries the engine state an action is allowed to see.
type ExecutionContext struct {
	WorkflowID string
	InstanceID string
	NodeID     string

	// EntityID and EntityName identify the business entity the instance
	// runs against.
	EntityID   string
	EntityName string

	// Variables are the evaluator bindings in effect when the node ran.
	Variables map[string]any
}

// Action is one executable side effect. The returned value, when non-nil, is
// recorded as a node result.
type Action interface {
	Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (any, error)
}

// Factory builds an action from its stored configuration.
type Factory interface {
	// ID is the registry key stored actions reference by type.
	ID() string

	Create(config map[string]any) (Action, error)
}
