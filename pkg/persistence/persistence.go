// Package persistence defines the storage contracts the workflow engine
// consumes. The execution engine never touches a concrete store: it is
// composed from the narrow read and write interfaces below, so a backend only
// has to implement what a given component actually uses.
package persistence

import (
	"context"

	"github.com/platine-go/workflow/pkg/models"
)

// GraphReader answers structural queries over a workflow's node graph.
type GraphReader interface {
	// StartNode returns the workflow's start node, or ErrNodeNotFound.
	StartNode(ctx context.Context, workflowID string) (*models.Node, error)

	// EndNode returns the workflow's end node, or ErrNodeNotFound.
	EndNode(ctx context.Context, workflowID string) (*models.Node, error)

	// NextNode returns the target of the source node's outgoing edge, or
	// ErrNodeNotFound when the node is a dead end. When several edges exist
	// the one with the lowest sort order wins.
	NextNode(ctx context.Context, workflowID, sourceNodeID string) (*models.Node, error)

	// DecisionBranches returns the outgoing paths of a decision node with
	// their target nodes populated, ordered by sort order ascending.
	DecisionBranches(ctx context.Context, workflowID, decisionNodeID string) ([]*models.NodePath, error)

	// Paths returns every edge of the workflow with source and target nodes
	// populated. Used by the diagram renderer.
	Paths(ctx context.Context, workflowID string) ([]*models.NodePath, error)
}

// ConditionReader loads the stored condition groups of a node, groups ordered
// by sort order and conditions inside each group ordered by sort order.
type ConditionReader interface {
	ConditionGroups(ctx context.Context, nodeID string) ([]*models.ConditionGroup, error)
}

// ActionReader loads the stored actions of a node, ordered by sort order.
type ActionReader interface {
	NodeActions(ctx context.Context, nodeID string) ([]*models.Action, error)
}

// ActorReader resolves the users bound to a workflow role for an instance.
type ActorReader interface {
	RoleActors(ctx context.Context, instanceID, roleID string) ([]*models.RoleUser, error)
}

// TaskWriter persists new pending tasks for user nodes.
type TaskWriter interface {
	CreateTask(ctx context.Context, task *models.Task) error
}

// OutcomeReader resolves the outcome code of the most recently completed task
// for a node within an instance. The completion-time-descending ordering is
// load-bearing: concurrent completions must resolve to the latest one.
type OutcomeReader interface {
	// NodeOutcome returns the outcome code, or ErrOutcomeNotFound when the
	// node has no completed task with a recorded outcome.
	NodeOutcome(ctx context.Context, instanceID, nodeID string) (string, error)
}

// ResultWriter records values produced by node executions.
type ResultWriter interface {
	SaveResult(ctx context.Context, result *models.Result) error
}

// ResultReader reads back recorded node results.
type ResultReader interface {
	// LastResult returns the most recent result of a node within an
	// instance, or ErrResultNotFound.
	LastResult(ctx context.Context, instanceID, nodeID string) (*models.Result, error)
}

// WorkflowRepository manages workflow definitions and their graphs.
type WorkflowRepository interface {
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	SaveNode(ctx context.Context, node *models.Node) error
	SavePath(ctx context.Context, path *models.NodePath) error
}

// ConditionRepository extends ConditionReader with authoring operations.
type ConditionRepository interface {
	ConditionReader

	SaveConditionGroup(ctx context.Context, group *models.ConditionGroup) error
	SaveCondition(ctx context.Context, condition *models.Condition) error
}

// ActionRepository extends ActionReader with authoring operations.
type ActionRepository interface {
	ActionReader

	SaveAction(ctx context.Context, action *models.Action) error
}

// InstanceRepository manages running instances.
type InstanceRepository interface {
	InstanceByID(ctx context.Context, id string) (*models.Instance, error)
	SaveInstance(ctx context.Context, instance *models.Instance) error
	UpdateInstanceStatus(ctx context.Context, id string, status models.InstanceStatus) error
}

// TaskRepository extends TaskWriter with task lifecycle operations driven by
// the surrounding application (human completion, cancellation).
type TaskRepository interface {
	TaskWriter

	TasksByInstance(ctx context.Context, instanceID string) ([]*models.Task, error)
	CompleteTask(ctx context.Context, taskID, outcomeID, comment string) error
	CancelTask(ctx context.Context, taskID string, trigger models.CancelTrigger) error
}

// ActorRepository extends ActorReader with role binding.
type ActorRepository interface {
	ActorReader

	AssignActor(ctx context.Context, roleUser *models.RoleUser) error
}

// OutcomeRepository extends OutcomeReader with authoring operations.
type OutcomeRepository interface {
	OutcomeReader

	SaveOutcome(ctx context.Context, outcome *models.Outcome) error
}

// ResultRepository combines result reads and writes.
type ResultRepository interface {
	ResultReader
	ResultWriter
}

// Persistence aggregates the repositories of one backend.
type Persistence interface {
	Workflows() WorkflowRepository
	Graph() GraphReader
	Conditions() ConditionRepository
	Actions() ActionRepository
	Instances() InstanceRepository
	Tasks() TaskRepository
	Actors() ActorRepository
	Outcomes() OutcomeRepository
	Results() ResultRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
