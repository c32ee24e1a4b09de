package script

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platine-go/workflow/pkg/actions"
)

func TestScriptActionFactory_Create(t *testing.T) {
	factory := NewScriptActionFactory()
	assert.Equal(t, "script", factory.ID())

	_, err := factory.Create(map[string]any{})
	assert.ErrorIs(t, err, ErrMissingScript)

	action, err := factory.Create(map[string]any{"script": "1 + 1"})
	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestScriptAction_Execute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	tests := []struct {
		name     string
		script   string
		expected any
	}{
		{
			name:     "arithmetic result",
			script:   "2 * 21",
			expected: int64(42),
		},
		{
			name:     "reads execution context",
			script:   "$.entityId + ':' + $.nodeId",
			expected: "e-1:n-1",
		},
		{
			name:     "reads bound variables",
			script:   "$.variables.amount * 2",
			expected: int64(200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := NewScriptAction(tt.script)

			result, err := action.Execute(ctx, actions.ExecutionContext{
				EntityID:  "e-1",
				NodeID:    "n-1",
				Variables: map[string]any{"amount": 100},
			}, logger)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestScriptAction_ExecuteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	action := NewScriptAction("nonsense(")

	_, err := action.Execute(context.Background(), actions.ExecutionContext{}, logger)
	assert.Error(t, err)
}

func TestScriptAction_UndefinedResultIsNil(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	action := NewScriptAction("var unused = 1;")

	result, err := action.Execute(context.Background(), actions.ExecutionContext{}, logger)
	require.NoError(t, err)
	assert.Nil(t, result)
}
