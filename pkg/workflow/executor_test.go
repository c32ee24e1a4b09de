package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platine-go/workflow/pkg/actions"
	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence/memory"
	"github.com/platine-go/workflow/pkg/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Persistence
	wf    *models.Workflow
	inst  *models.Instance
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewPersistence()

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "expense approval",
		Status: models.WorkflowStatusActive,
	}
	require.NoError(t, store.Workflows().SaveWorkflow(ctx, wf))

	inst := &models.Instance{
		ID:         "i-1",
		WorkflowID: wf.ID,
		EntityID:   "e-1",
		EntityName: "expense",
		UserID:     "u-owner",
		Status:     models.InstanceStatusProcessing,
	}
	require.NoError(t, store.Instances().SaveInstance(ctx, inst))

	return &fixture{t: t, ctx: ctx, store: store, wf: wf, inst: inst}
}

func (f *fixture) deps() workflow.Dependencies {
	return workflow.Dependencies{
		Graph:      f.store.Graph(),
		Conditions: f.store.Conditions(),
		Actions:    f.store.Actions(),
		Actors:     f.store.Actors(),
		Tasks:      f.store.Tasks(),
		Outcomes:   f.store.Outcomes(),
		Results:    f.store.Results(),
		Logger:     testLogger(),
	}
}

func (f *fixture) executor(opts ...workflow.Option) *workflow.Executor {
	f.t.Helper()

	executor, err := workflow.NewExecutor(f.deps(), opts...)
	require.NoError(f.t, err)

	return executor
}

func (f *fixture) execute(opts ...workflow.Option) *workflow.WorkflowResult {
	f.t.Helper()

	result, err := f.executor(opts...).Execute(f.ctx, f.wf, f.inst, nil)
	require.NoError(f.t, err)

	return result
}

func (f *fixture) addNode(id string, nodeType models.NodeType, taskType models.NodeTaskType) *models.Node {
	return f.addNodeWithStatus(id, nodeType, taskType, models.NodeStatusActive)
}

func (f *fixture) addNodeWithStatus(id string, nodeType models.NodeType, taskType models.NodeTaskType, status models.NodeStatus) *models.Node {
	f.t.Helper()

	node := &models.Node{
		ID:         id,
		WorkflowID: f.wf.ID,
		Name:       id,
		Type:       nodeType,
		TaskType:   taskType,
		Status:     status,
	}
	require.NoError(f.t, f.store.Workflows().SaveNode(f.ctx, node))

	return node
}

func (f *fixture) addUserNode(id, roleID string) *models.Node {
	f.t.Helper()

	node := &models.Node{
		ID:         id,
		WorkflowID: f.wf.ID,
		RoleID:     &roleID,
		Name:       id,
		Type:       models.NodeTypeIntermediate,
		TaskType:   models.NodeTaskTypeUser,
		Status:     models.NodeStatusActive,
	}
	require.NoError(f.t, f.store.Workflows().SaveNode(f.ctx, node))

	return node
}

func (f *fixture) addPath(source, target string, sortOrder int, isDefault bool) {
	f.t.Helper()

	require.NoError(f.t, f.store.Workflows().SavePath(f.ctx, &models.NodePath{
		ID:           "p-" + source + "-" + target,
		WorkflowID:   f.wf.ID,
		SourceNodeID: source,
		TargetNodeID: target,
		SortOrder:    sortOrder,
		IsDefault:    isDefault,
	}))
}

func (f *fixture) addCondition(nodeID, groupID string, groupOrder int, operand1, operator, operand2 string) {
	f.t.Helper()

	require.NoError(f.t, f.store.Conditions().SaveConditionGroup(f.ctx, &models.ConditionGroup{
		ID:        groupID,
		NodeID:    nodeID,
		SortOrder: groupOrder,
	}))
	require.NoError(f.t, f.store.Conditions().SaveCondition(f.ctx, &models.Condition{
		ID:        groupID + "-c",
		GroupID:   groupID,
		Operand1:  operand1,
		Operator:  operator,
		Operand2:  operand2,
		SortOrder: 1,
	}))
}

func (f *fixture) addActor(roleID, userID string) {
	f.t.Helper()

	require.NoError(f.t, f.store.Actors().AssignActor(f.ctx, &models.RoleUser{
		ID:         "ru-" + roleID + "-" + userID,
		InstanceID: f.inst.ID,
		RoleID:     roleID,
		UserID:     userID,
	}))
}

// linearGraph wires start -> script -> end.
func (f *fixture) linearGraph() {
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addNode("n-script", models.NodeTypeIntermediate, models.NodeTaskTypeScriptService)
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-script", 1, false)
	f.addPath("n-script", "n-end", 1, false)
}

func TestNewExecutor_MissingDependency(t *testing.T) {
	_, err := workflow.NewExecutor(workflow.Dependencies{})
	assert.ErrorIs(t, err, workflow.ErrMissingDependency)
}

func TestExecute_NoStartNode(t *testing.T) {
	f := newFixture(t)

	result := f.execute()

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltNoStartNode, result.HaltReason)
	assert.False(t, result.EndReached)
}

func TestExecute_LinearCompletion(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
	require.NotNil(t, result.LastNode)
	assert.Equal(t, "n-end", result.LastNode.ID)
	assert.Equal(t, 3, result.Steps)
}

func TestExecute_InactiveNodeIsTransparent(t *testing.T) {
	f := newFixture(t)
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addNodeWithStatus("n-disabled", models.NodeTypeIntermediate, models.NodeTaskTypeScriptService, models.NodeStatusDisabled)
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-disabled", 1, false)
	f.addPath("n-disabled", "n-end", 1, false)

	// The disabled node would halt the traversal if it were evaluated.
	f.addCondition("n-disabled", "g-1", 1, "1", "==", "2")

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_StartNodeConditionFailureDoesNotHalt(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()
	f.addCondition("n-start", "g-start", 1, "1", "==", "2")

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_ScriptNodeConditionFailureHalts(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()
	f.addCondition("n-script", "g-1", 1, "10", ">", "20")

	result := f.execute()

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltConditionsFailed, result.HaltReason)
	assert.False(t, result.EndReached)
	require.NotNil(t, result.LastNode)
	assert.Equal(t, "n-script", result.LastNode.ID)
}

func TestExecute_ConditionGroupsCombineAndAcrossOrWithin(t *testing.T) {
	tests := []struct {
		name       string
		conditions func(f *fixture)
		completed  bool
	}{
		{
			name: "false or true within one group passes",
			conditions: func(f *fixture) {
				require.NoError(f.t, f.store.Conditions().SaveConditionGroup(f.ctx, &models.ConditionGroup{
					ID: "g-1", NodeID: "n-script", SortOrder: 1,
				}))
				require.NoError(f.t, f.store.Conditions().SaveCondition(f.ctx, &models.Condition{
					ID: "c-1", GroupID: "g-1", Operand1: "1", Operator: "==", Operand2: "2", SortOrder: 1,
				}))
				require.NoError(f.t, f.store.Conditions().SaveCondition(f.ctx, &models.Condition{
					ID: "c-2", GroupID: "g-1", Operand1: "3", Operator: "==", Operand2: "3", SortOrder: 2,
				}))
			},
			completed: true,
		},
		{
			name: "one failing group fails the whole node",
			conditions: func(f *fixture) {
				f.addCondition("n-script", "g-1", 1, "3", "==", "3")
				f.addCondition("n-script", "g-2", 2, "1", "==", "2")
			},
			completed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.linearGraph()
			tt.conditions(f)

			result := f.execute()

			if tt.completed {
				assert.Equal(t, workflow.StateCompleted, result.State)
			} else {
				assert.Equal(t, workflow.StateHalted, result.State)
				assert.Equal(t, workflow.HaltConditionsFailed, result.HaltReason)
			}
		})
	}
}

func TestExecute_UserNodeCreatesOneTaskPerActor(t *testing.T) {
	f := newFixture(t)
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addUserNode("n-review", "r-reviewers")
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-review", 1, false)
	f.addPath("n-review", "n-end", 1, false)
	f.addActor("r-reviewers", "u-alice")
	f.addActor("r-reviewers", "u-bob")

	result := f.execute()

	assert.Equal(t, workflow.StateAwaitingUser, result.State)
	assert.False(t, result.EndReached)
	require.Len(t, result.Tasks, 2)

	persisted, err := f.store.Tasks().TasksByInstance(f.ctx, f.inst.ID)
	require.NoError(t, err)
	require.Len(t, persisted, 2)

	for _, task := range persisted {
		assert.Equal(t, "n-review", task.NodeID)
		assert.Equal(t, models.TaskStatusProcessing, task.Status)
		assert.False(t, task.StartDate.IsZero())
	}
}

func TestExecute_UserNodeWithoutActorsHalts(t *testing.T) {
	f := newFixture(t)
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addUserNode("n-review", "r-empty")
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-review", 1, false)
	f.addPath("n-review", "n-end", 1, false)

	result := f.execute()

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltNoActors, result.HaltReason)
	assert.Empty(t, result.Tasks)

	persisted, err := f.store.Tasks().TasksByInstance(f.ctx, f.inst.ID)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

// decisionGraph wires start -> decision with the given branch targets, each
// target wired onward to a shared end node.
func decisionGraph(f *fixture, targets ...string) {
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addNode("n-decision", models.NodeTypeIntermediate, models.NodeTaskTypeDecision)
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-decision", 1, false)

	for _, target := range targets {
		f.addNode(target, models.NodeTypeIntermediate, models.NodeTaskTypeScriptService)
		f.addPath(target, "n-end", 1, false)
	}
}

func TestExecute_DecisionFirstTrueBranchWins(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f, "n-a", "n-b", "n-c")

	// b is flagged default but also matches; the first true condition in
	// sort order wins before c is even looked at.
	f.addPath("n-decision", "n-a", 1, false)
	f.addPath("n-decision", "n-b", 2, true)
	f.addPath("n-decision", "n-c", 3, false)
	f.addCondition("n-a", "g-a", 1, "1", "==", "2")
	f.addCondition("n-b", "g-b", 1, "1", "==", "1")
	f.addCondition("n-c", "g-c", 1, "1", "==", "1")

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_DecisionDefaultFallback(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f, "n-a", "n-b")

	f.addPath("n-decision", "n-a", 1, false)
	f.addPath("n-decision", "n-b", 2, true)
	f.addCondition("n-a", "g-a", 1, "1", "==", "2")
	f.addCondition("n-b", "g-b", 1, "1", "==", "2")

	result := f.execute()

	// Both conditions fail but b is the default branch.
	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_DecisionNoMatchNoDefaultHalts(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f, "n-a", "n-b")

	f.addPath("n-decision", "n-a", 1, false)
	f.addPath("n-decision", "n-b", 2, false)
	f.addCondition("n-a", "g-a", 1, "1", "==", "2")
	f.addCondition("n-b", "g-b", 1, "1", "==", "2")

	result := f.execute()

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltNoMatchingBranch, result.HaltReason)
	require.NotNil(t, result.LastNode)
	assert.Equal(t, "n-decision", result.LastNode.ID)
}

func TestExecute_DecisionZeroBranchesHalts(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f)

	result := f.execute()

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltNoMatchingBranch, result.HaltReason)
}

func TestExecute_DecisionSingleBranchBypassesConditions(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f, "n-a")

	f.addPath("n-decision", "n-a", 1, false)

	// The single branch is taken even though its condition is false.
	f.addCondition("n-a", "g-a", 1, "1", "==", "2")

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_DecisionSkipsInactiveTargets(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f, "n-b")
	f.addNodeWithStatus("n-a", models.NodeTypeIntermediate, models.NodeTaskTypeScriptService, models.NodeStatusDisabled)
	f.addPath("n-a", "n-end", 1, false)

	f.addPath("n-decision", "n-a", 1, false)
	f.addPath("n-decision", "n-b", 2, false)
	f.addCondition("n-a", "g-a", 1, "1", "==", "1")
	f.addCondition("n-b", "g-b", 1, "1", "==", "1")

	result := f.execute()

	// a matches but is disabled, so b wins.
	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_StepBudgetBreaksCycles(t *testing.T) {
	f := newFixture(t)
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addNode("n-a", models.NodeTypeIntermediate, models.NodeTaskTypeScriptService)
	f.addNode("n-b", models.NodeTypeIntermediate, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-a", 1, false)
	f.addPath("n-a", "n-b", 1, false)
	f.addPath("n-b", "n-a", 1, false)

	result := f.execute(workflow.WithStepBudget(10))

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltStepBudget, result.HaltReason)
	assert.Equal(t, 11, result.Steps)
}

func TestExecute_DeadEndHalts(t *testing.T) {
	f := newFixture(t)
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addNode("n-script", models.NodeTypeIntermediate, models.NodeTaskTypeScriptService)
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-script", 1, false)

	result := f.execute()

	assert.Equal(t, workflow.StateHalted, result.State)
	assert.Equal(t, workflow.HaltDeadEnd, result.HaltReason)
	assert.False(t, result.EndReached)
}

func TestExecute_MalformedConditionPropagatesError(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()
	f.addCondition("n-script", "g-1", 1, "(1", "==", "1")

	_, err := f.executor().Execute(f.ctx, f.wf, f.inst, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n-script")
}

func TestExecute_ResumesFromExplicitCurrentNode(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()

	// A failing start condition would be irrelevant: resumption skips it.
	script, err := f.store.Graph().NextNode(f.ctx, f.wf.ID, "n-start")
	require.NoError(t, err)

	result, err := f.executor().Execute(f.ctx, f.wf, f.inst, script)
	require.NoError(t, err)

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.Equal(t, 2, result.Steps)
}

func TestExecute_OutcomeFunctionSelectsBranch(t *testing.T) {
	f := newFixture(t)
	decisionGraph(f, "n-approved", "n-rejected")

	f.addPath("n-decision", "n-approved", 1, false)
	f.addPath("n-decision", "n-rejected", 2, true)
	f.addCondition("n-approved", "g-a", 1, "outcome('n-review')", "==", "'approve'")

	require.NoError(t, f.store.Outcomes().SaveOutcome(f.ctx, &models.Outcome{
		ID: "o-approve", NodeID: "n-review", Code: "approve",
	}))
	require.NoError(t, f.store.Tasks().CreateTask(f.ctx, &models.Task{
		ID: "t-1", InstanceID: f.inst.ID, NodeID: "n-review", UserID: "u-alice",
	}))
	require.NoError(t, f.store.Tasks().CompleteTask(f.ctx, "t-1", "o-approve", "fine"))

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
	assert.True(t, result.EndReached)
}

func TestExecute_EntityVariablesBoundInConditions(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()
	f.addCondition("n-script", "g-1", 1, "entity_name", "==", "'expense'")

	result := f.execute()

	assert.Equal(t, workflow.StateCompleted, result.State)
}

type recordingAction struct {
	value any
	seen  []actions.ExecutionContext
}

func (a *recordingAction) Execute(_ context.Context, executionCtx actions.ExecutionContext, _ *slog.Logger) (any, error) {
	a.seen = append(a.seen, executionCtx)

	return a.value, nil
}

type recordingFactory struct {
	action *recordingAction
}

func (*recordingFactory) ID() string { return "recording" }

func (f *recordingFactory) Create(_ map[string]any) (actions.Action, error) {
	return f.action, nil
}

func TestExecute_NodeActionsRunAndRecordResults(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()

	require.NoError(t, f.store.Actions().SaveAction(f.ctx, &models.Action{
		ID: "a-1", NodeID: "n-script", Name: "notify", Type: "recording", SortOrder: 1,
	}))

	action := &recordingAction{value: float64(42)}
	registry := actions.NewRegistry(testLogger())
	registry.Register(&recordingFactory{action: action})

	deps := f.deps()
	deps.Registry = registry

	executor, err := workflow.NewExecutor(deps)
	require.NoError(t, err)

	result, err := executor.Execute(f.ctx, f.wf, f.inst, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateCompleted, result.State)

	require.Len(t, action.seen, 1)
	assert.Equal(t, f.inst.ID, action.seen[0].InstanceID)
	assert.Equal(t, "n-script", action.seen[0].NodeID)
	assert.Equal(t, "e-1", action.seen[0].EntityID)

	recorded, err := f.store.Results().LastResult(f.ctx, f.inst.ID, "n-script")
	require.NoError(t, err)
	assert.Equal(t, "42", recorded.Value)
	assert.Equal(t, "double", recorded.DataType)
}

func TestExecute_ContextCancellation(t *testing.T) {
	f := newFixture(t)
	f.linearGraph()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.executor().Execute(ctx, f.wf, f.inst, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_TasksHaveRecentStartDate(t *testing.T) {
	f := newFixture(t)
	f.addNode("n-start", models.NodeTypeStart, models.NodeTaskTypeScriptService)
	f.addUserNode("n-review", "r-1")
	f.addNode("n-end", models.NodeTypeEnd, models.NodeTaskTypeScriptService)
	f.addPath("n-start", "n-review", 1, false)
	f.addPath("n-review", "n-end", 1, false)
	f.addActor("r-1", "u-alice")

	before := time.Now()
	result := f.execute()

	require.Len(t, result.Tasks, 1)
	assert.False(t, result.Tasks[0].StartDate.Before(before.Add(-time.Second)))
}
