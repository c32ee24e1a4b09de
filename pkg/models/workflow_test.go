package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validWorkflow() *Workflow {
	return &Workflow{
		ID:     "wf1",
		Name:   "Expense approval",
		Status: WorkflowStatusActive,
		Nodes: []*Node{
			{ID: "start", WorkflowID: "wf1", Name: "Start", Type: NodeTypeStart, TaskType: NodeTaskTypeScriptService, Status: NodeStatusActive},
			{ID: "review", WorkflowID: "wf1", Name: "Review", Type: NodeTypeIntermediate, TaskType: NodeTaskTypeUser, Status: NodeStatusActive, RoleID: strPtr("approvers")},
			{ID: "end", WorkflowID: "wf1", Name: "End", Type: NodeTypeEnd, TaskType: NodeTaskTypeScriptService, Status: NodeStatusActive},
		},
		Paths: []*NodePath{
			{ID: "p1", WorkflowID: "wf1", SourceNodeID: "start", TargetNodeID: "review"},
			{ID: "p2", WorkflowID: "wf1", SourceNodeID: "review", TargetNodeID: "end"},
		},
	}
}

func TestWorkflowValidateAccepts(t *testing.T) {
	require.NoError(t, validWorkflow().Validate())
}

func TestWorkflowValidateRejectsMissingStartNode(t *testing.T) {
	w := validWorkflow()
	w.Nodes[0].Type = NodeTypeIntermediate

	assert.ErrorIs(t, w.Validate(), ErrNoStartNode)
}

func TestWorkflowValidateRejectsMultipleStartNodes(t *testing.T) {
	w := validWorkflow()
	w.Nodes[1].Type = NodeTypeStart

	assert.ErrorIs(t, w.Validate(), ErrMultipleStartNodes)
}

func TestWorkflowValidateRejectsMissingEndNode(t *testing.T) {
	w := validWorkflow()
	w.Nodes[2].Type = NodeTypeIntermediate

	assert.ErrorIs(t, w.Validate(), ErrNoEndNode)
}

func TestWorkflowValidateRejectsDuplicateDefaultPaths(t *testing.T) {
	w := validWorkflow()
	w.Nodes[0].TaskType = NodeTaskTypeDecision
	w.Paths = []*NodePath{
		{ID: "p1", WorkflowID: "wf1", SourceNodeID: "start", TargetNodeID: "review", IsDefault: true},
		{ID: "p2", WorkflowID: "wf1", SourceNodeID: "start", TargetNodeID: "end", IsDefault: true},
	}

	assert.ErrorIs(t, w.Validate(), ErrDuplicateDefaultPath)
}

func TestWorkflowValidateRejectsDanglingPath(t *testing.T) {
	w := validWorkflow()
	w.Paths = append(w.Paths, &NodePath{ID: "p3", WorkflowID: "wf1", SourceNodeID: "review", TargetNodeID: "ghost"})

	assert.ErrorIs(t, w.Validate(), ErrDanglingPath)
}

func TestWorkflowValidateRejectsUserNodeWithoutRole(t *testing.T) {
	w := validWorkflow()
	w.Nodes[1].RoleID = nil

	assert.ErrorIs(t, w.Validate(), ErrUserNodeMissingRole)
}

func TestWorkflowValidateRejectsShortName(t *testing.T) {
	w := validWorkflow()
	w.Name = "ab"

	assert.Error(t, w.Validate())
}
