package log

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platine-go/workflow/pkg/actions"
)

func TestNewLogActionFactory(t *testing.T) {
	factory := NewLogActionFactory()
	assert.NotNil(t, factory)
	assert.Equal(t, "log", factory.ID())
}

func TestLogActionFactory_Create(t *testing.T) {
	factory := NewLogActionFactory()

	tests := []struct {
		name   string
		config map[string]any
	}{
		{
			name:   "nil config",
			config: nil,
		},
		{
			name:   "empty config",
			config: map[string]any{},
		},
		{
			name:   "with message and level",
			config: map[string]any{"message": "approved", "level": "warn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := factory.Create(tt.config)
			require.NoError(t, err)
			assert.NotNil(t, action)
		})
	}
}

func TestLogAction_Execute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	action := NewLogAction(map[string]any{"message": "request approved"})

	result, err := action.Execute(context.Background(), actions.ExecutionContext{
		WorkflowID: "wf-1",
		InstanceID: "i-1",
		NodeID:     "n-1",
	}, logger)

	require.NoError(t, err)
	assert.Nil(t, result)
}
