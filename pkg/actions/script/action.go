// Package script runs a stored JavaScript snippet when its node
// executes. The execution context is exposed to the script as the `$`
// variable; the script's final expression value becomes the node result.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/platine-go/workflow/pkg/actions"
)

type ScriptAction struct {
	script string
}

func NewScriptAction(script string) *ScriptAction {
	return &ScriptAction{script: script}
}

func (a *ScriptAction) Execute(_ context.Context, executionCtx actions.ExecutionContext, logger *slog.Logger) (any, error) {
	binding := map[string]any{
		"workflowId": executionCtx.WorkflowID,
		"instanceId": executionCtx.InstanceID,
		"nodeId":     executionCtx.NodeID,
		"entityId":   executionCtx.EntityID,
		"entityName": executionCtx.EntityName,
		"variables":  executionCtx.Variables,
	}

	data, err := json.Marshal(binding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script context: %w", err)
	}

	vm := goja.New()

	value, err := vm.RunString("var $ = " + string(data) + ";\n" + a.script)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	logger.Debug("script action executed",
		"action_type", "script",
		"node_id", executionCtx.NodeID,
	)

	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}

	return value.Export(), nil
}
