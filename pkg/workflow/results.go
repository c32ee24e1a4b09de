package workflow

import "github.com/platine-go/workflow/pkg/models"

// State is the lifecycle state of one traversal call.
type State string

const (
	StateIdle         State = "idle"
	StateRunning      State = "running"
	StateAwaitingUser State = "awaiting_user"
	StateCompleted    State = "completed"
	StateHalted       State = "halted"
)

// HaltReason says why a traversal stopped without reaching an end node.
// Halts are business-logic termination, not errors: missing graph data and
// failed guard conditions are expected outcomes the caller inspects.
type HaltReason string

const (
	HaltNone             HaltReason = ""
	HaltNoStartNode      HaltReason = "no_start_node"
	HaltNoActors         HaltReason = "no_actors"
	HaltNoMatchingBranch HaltReason = "no_matching_branch"
	HaltConditionsFailed HaltReason = "conditions_failed"
	HaltDeadEnd          HaltReason = "dead_end"
	HaltStepBudget       HaltReason = "step_budget_exceeded"
)

// WorkflowResult is the outcome of one top-level traversal call.
type WorkflowResult struct {
	State      State
	HaltReason HaltReason

	// EndReached reports whether an end node finished the traversal.
	// A halted or suspended instance leaves it false.
	EndReached bool

	// Tasks are the pending tasks created when the traversal suspended on a
	// user node, one per resolved actor.
	Tasks []*models.Task

	// LastNode is the node the traversal stopped on, when any.
	LastNode *models.Node

	// Steps counts the node visits the traversal consumed.
	Steps int
}

// UserNodeResult reports the outcome of executing one user node.
type UserNodeResult struct {
	EndReached bool
	Tasks      []*models.Task
}

// DecisionResult reports the branch a decision node resolved to, nil when no
// branch matched and no default existed.
type DecisionResult struct {
	NextNode *models.Node
}

// ScriptServiceResult reports the outcome of executing one script node.
type ScriptServiceResult struct {
	EndReached bool
	Success    bool
}
