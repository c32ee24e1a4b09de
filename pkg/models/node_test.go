package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestNodePredicates(t *testing.T) {
	tests := []struct {
		name            string
		node            Node
		isStart         bool
		isEnd           bool
		isUser          bool
		isDecision      bool
		isScriptService bool
	}{
		{
			name:    "start node with user task",
			node:    Node{Type: NodeTypeStart, TaskType: NodeTaskTypeUser},
			isStart: true,
			isUser:  true,
		},
		{
			name:  "end node with script task",
			node:  Node{Type: NodeTypeEnd, TaskType: NodeTaskTypeScriptService},
			isEnd: true,
			isScriptService: true,
		},
		{
			name:       "intermediate decision node",
			node:       Node{Type: NodeTypeIntermediate, TaskType: NodeTaskTypeDecision},
			isDecision: true,
		},
		{
			name:   "intermediate user node",
			node:   Node{Type: NodeTypeIntermediate, TaskType: NodeTaskTypeUser},
			isUser: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isStart, tt.node.IsStart())
			assert.Equal(t, tt.isEnd, tt.node.IsEnd())
			assert.Equal(t, tt.isUser, tt.node.IsUser())
			assert.Equal(t, tt.isDecision, tt.node.IsDecision())
			assert.Equal(t, tt.isScriptService, tt.node.IsScriptService())
		})
	}
}

func TestNodeTaskTypeIsExclusive(t *testing.T) {
	// Every task type must match exactly one predicate.
	for _, taskType := range []NodeTaskType{
		NodeTaskTypeUser,
		NodeTaskTypeDecision,
		NodeTaskTypeScriptService,
	} {
		node := Node{Type: NodeTypeIntermediate, TaskType: taskType}

		matches := 0
		for _, match := range []bool{node.IsUser(), node.IsDecision(), node.IsScriptService()} {
			if match {
				matches++
			}
		}

		assert.Equal(t, 1, matches, "task type %s", taskType)
	}
}

func TestNodeIsActive(t *testing.T) {
	active := Node{Status: NodeStatusActive}
	disabled := Node{Status: NodeStatusDisabled}

	assert.True(t, active.IsActive())
	assert.False(t, disabled.IsActive())
}

func TestNodeFieldValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	valid := Node{
		ID:         "n1",
		WorkflowID: "wf1",
		Name:       "Review",
		Type:       NodeTypeIntermediate,
		TaskType:   NodeTaskTypeUser,
		Status:     NodeStatusActive,
	}
	assert.NoError(t, validate.Struct(valid))

	invalidType := valid
	invalidType.Type = "loop"
	assert.Error(t, validate.Struct(invalidType))

	invalidTaskType := valid
	invalidTaskType.TaskType = "robot"
	assert.Error(t, validate.Struct(invalidTaskType))
}
