// Package workflow implements the traversal engine: it walks a running
// instance over its workflow's node graph, evaluating branch conditions,
// dispatching node actions and suspending on human tasks.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/actions"
	"github.com/platine-go/workflow/pkg/expression"
	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence"
)

// DefaultStepBudget bounds the node visits of one traversal call. The data
// model does not prevent path cycles, so a runaway graph halts instead of
// looping forever.
const DefaultStepBudget = 1000

var (
	ErrMissingDependency = errors.New("missing required dependency")
	ErrUnknownTaskType   = errors.New("node has an unknown task type")
)

// Dependencies are the collaborators one executor is composed from. Graph,
// Conditions, Actors, Tasks and Logger are required; the rest degrade
// gracefully when absent (no actions dispatched, no results recorded, no
// outcome lookups in expressions).
type Dependencies struct {
	Graph      persistence.GraphReader
	Conditions persistence.ConditionReader
	Actions    persistence.ActionReader
	Actors     persistence.ActorReader
	Tasks      persistence.TaskWriter
	Outcomes   persistence.OutcomeReader
	Results    persistence.ResultWriter
	Registry   *actions.Registry
	Logger     *slog.Logger
}

func (d Dependencies) validate() error {
	switch {
	case d.Graph == nil:
		return fmt.Errorf("graph reader: %w", ErrMissingDependency)
	case d.Conditions == nil:
		return fmt.Errorf("condition reader: %w", ErrMissingDependency)
	case d.Actors == nil:
		return fmt.Errorf("actor reader: %w", ErrMissingDependency)
	case d.Tasks == nil:
		return fmt.Errorf("task writer: %w", ErrMissingDependency)
	case d.Logger == nil:
		return fmt.Errorf("logger: %w", ErrMissingDependency)
	}

	return nil
}

// Executor drives workflow instances through their node graphs. It is
// stateless across calls; all per-call state lives in the execution.
type Executor struct {
	deps       Dependencies
	stepBudget int
}

type Option func(*Executor)

// WithStepBudget overrides the traversal step budget.
func WithStepBudget(budget int) Option {
	return func(e *Executor) {
		e.stepBudget = budget
	}
}

// NewExecutor creates an executor over the given collaborators.
func NewExecutor(deps Dependencies, opts ...Option) (*Executor, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	executor := &Executor{
		deps:       deps,
		stepBudget: DefaultStepBudget,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor, nil
}

// execution is the per-call traversal state.
type execution struct {
	workflow  *models.Workflow
	instance  *models.Instance
	current   *models.Node
	evaluator *expression.Evaluator
	logger    *slog.Logger
}

// Execute walks the instance through the workflow graph starting from
// currentNode, or from the workflow's start node when currentNode is nil
// (fresh start). It returns when an end node finishes the traversal, when a
// user node suspends it, or when missing graph data or failed conditions
// halt it. Halts are reported in the result, never as errors; errors are
// reserved for malformed expressions, failing actions and storage failures.
func (e *Executor) Execute(
	ctx context.Context,
	wf *models.Workflow,
	instance *models.Instance,
	currentNode *models.Node,
) (*WorkflowResult, error) {
	logger := e.deps.Logger.With(
		"workflow_id", wf.ID,
		"instance_id", instance.ID,
	)
	logger.Info("starting workflow execution", "workflow", wf.Name)

	exec := &execution{
		workflow:  wf,
		instance:  instance,
		current:   currentNode,
		evaluator: e.newEvaluator(ctx, instance),
		logger:    logger,
	}

	if exec.current == nil {
		start, err := e.deps.Graph.StartNode(ctx, wf.ID)
		if err != nil {
			if persistence.IsNotFound(err) {
				logger.Warn("workflow has no start node")

				return &WorkflowResult{State: StateHalted, HaltReason: HaltNoStartNode}, nil
			}

			return nil, fmt.Errorf("failed to resolve start node: %w", err)
		}

		exec.current = start
	}

	return e.run(ctx, exec)
}

func (e *Executor) run(ctx context.Context, exec *execution) (*WorkflowResult, error) {
	result := &WorkflowResult{State: StateRunning}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node := exec.current
		if node == nil {
			// A dead end: some node had no outgoing path.
			exec.logger.Info("no next node, traversal halted")
			result.State = StateHalted
			result.HaltReason = HaltDeadEnd

			return result, nil
		}

		result.Steps++
		result.LastNode = node

		if result.Steps > e.stepBudget {
			exec.logger.Error("step budget exceeded, possible cycle",
				"node_id", node.ID, "steps", result.Steps)
			result.State = StateHalted
			result.HaltReason = HaltStepBudget

			return result, nil
		}

		exec.logger.Info("executing node",
			"node", node.Name,
			"node_id", node.ID,
			"type", node.Type,
			"task_type", node.TaskType,
			"status", node.Status,
		)

		if !node.IsActive() {
			exec.logger.Info("node is not active, skipping", "node", node.Name)

			if err := e.advance(ctx, exec); err != nil {
				return nil, err
			}

			continue
		}

		switch {
		case node.IsStart():
			if err := e.executeStartNode(ctx, exec, node); err != nil {
				return nil, err
			}

			continue

		case node.IsEnd():
			if err := e.executeEndNode(ctx, exec, node); err != nil {
				return nil, err
			}

			result.State = StateCompleted
			result.EndReached = true

			return result, nil

		case node.IsUser():
			userResult, err := e.executeUserNode(ctx, exec, node)
			if err != nil {
				return nil, err
			}

			if len(userResult.Tasks) == 0 {
				result.State = StateHalted
				result.HaltReason = HaltNoActors

				return result, nil
			}

			result.State = StateAwaitingUser
			result.Tasks = userResult.Tasks

			return result, nil

		case node.IsDecision():
			decision, err := e.executeDecisionNode(ctx, exec, node)
			if err != nil {
				return nil, err
			}

			if decision.NextNode == nil {
				result.State = StateHalted
				result.HaltReason = HaltNoMatchingBranch

				return result, nil
			}

			if err := e.runNodeActions(ctx, exec, decision.NextNode); err != nil {
				return nil, err
			}

			// The winning branch counts as already executed; traversal
			// resumes from whatever follows it.
			exec.current = decision.NextNode

			if err := e.advance(ctx, exec); err != nil {
				return nil, err
			}

			continue

		case node.IsScriptService():
			scriptResult, err := e.executeScriptServiceNode(ctx, exec, node)
			if err != nil {
				return nil, err
			}

			if !scriptResult.Success {
				result.State = StateHalted
				result.HaltReason = HaltConditionsFailed

				return result, nil
			}

			continue

		default:
			return nil, fmt.Errorf("node %s task type %q: %w", node.ID, node.TaskType, ErrUnknownTaskType)
		}
	}
}

// executeStartNode runs the start node's conditions and actions, then
// advances. Failed conditions skip the actions but never stop a start node.
func (e *Executor) executeStartNode(ctx context.Context, exec *execution, node *models.Node) error {
	pass, err := e.nodeConditions(ctx, exec, node)
	if err != nil {
		return err
	}

	if pass {
		if err := e.runNodeActions(ctx, exec, node); err != nil {
			return err
		}
	} else {
		exec.logger.Info("conditions for node did not match", "node", node.Name)
	}

	return e.advance(ctx, exec)
}

// executeEndNode runs the end node's conditions and actions and finalizes the
// traversal.
func (e *Executor) executeEndNode(ctx context.Context, exec *execution, node *models.Node) error {
	pass, err := e.nodeConditions(ctx, exec, node)
	if err != nil {
		return err
	}

	if pass {
		if err := e.runNodeActions(ctx, exec, node); err != nil {
			return err
		}
	} else {
		exec.logger.Info("conditions for node did not match", "node", node.Name)
	}

	exec.logger.Info("end node reached", "node", node.Name)
	exec.current = nil

	return nil
}

// executeUserNode resolves the node's actors and creates one pending task
// per actor. Zero actors is an anomaly reported to the caller as a halt.
func (e *Executor) executeUserNode(ctx context.Context, exec *execution, node *models.Node) (*UserNodeResult, error) {
	exec.current = nil

	if node.RoleID == nil {
		exec.logger.Warn("user node has no role, no actors to assign", "node", node.Name)

		return &UserNodeResult{}, nil
	}

	actors, err := e.deps.Actors.RoleActors(ctx, exec.instance.ID, *node.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actors for node %s: %w", node.ID, err)
	}

	if len(actors) == 0 {
		exec.logger.Warn("no actors for user node", "node", node.Name)

		return &UserNodeResult{}, nil
	}

	tasks := make([]*models.Task, 0, len(actors))

	for _, actor := range actors {
		task := &models.Task{
			ID:         uuid.New().String(),
			InstanceID: exec.instance.ID,
			NodeID:     node.ID,
			UserID:     actor.UserID,
			Status:     models.TaskStatusProcessing,
			StartDate:  time.Now(),
		}

		if err := e.deps.Tasks.CreateTask(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to create task for user %s: %w", actor.UserID, err)
		}

		tasks = append(tasks, task)
	}

	exec.logger.Info("user node suspended awaiting completion",
		"node", node.Name, "tasks", len(tasks))

	return &UserNodeResult{Tasks: tasks}, nil
}

// executeDecisionNode resolves which branch of a decision node wins. A single
// branch is taken unconditionally. With several branches, inactive targets
// are skipped and the first branch whose target's conditions evaluate true
// wins; when none match, the first branch flagged default wins instead.
func (e *Executor) executeDecisionNode(ctx context.Context, exec *execution, node *models.Node) (*DecisionResult, error) {
	branches, err := e.deps.Graph.DecisionBranches(ctx, exec.workflow.ID, node.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches for node %s: %w", node.ID, err)
	}

	switch len(branches) {
	case 0:
		exec.logger.Info("no branches for decision node, traversal terminated", "node", node.Name)

		return &DecisionResult{}, nil

	case 1:
		exec.logger.Info("single branch for decision node, taking it", "node", node.Name)

		return &DecisionResult{NextNode: branches[0].TargetNode}, nil
	}

	var defaultNode *models.Node

	for _, branch := range branches {
		target := branch.TargetNode
		if target == nil {
			continue
		}

		if !target.IsActive() {
			exec.logger.Info("branch target is not active, skipping", "node", target.Name)

			continue
		}

		if defaultNode == nil && branch.IsDefault {
			defaultNode = target
		}

		pass, err := e.nodeConditions(ctx, exec, target)
		if err != nil {
			return nil, err
		}

		if pass {
			exec.logger.Info("branch conditions matched", "node", target.Name)

			return &DecisionResult{NextNode: target}, nil
		}

		exec.logger.Info("branch conditions did not match", "node", target.Name)
	}

	if defaultNode != nil {
		exec.logger.Info("no branch matched, using default",
			"node", node.Name, "default", defaultNode.Name)

		return &DecisionResult{NextNode: defaultNode}, nil
	}

	return &DecisionResult{}, nil
}

// executeScriptServiceNode gates the node's actions on its conditions; a
// failed guard halts the branch.
func (e *Executor) executeScriptServiceNode(ctx context.Context, exec *execution, node *models.Node) (*ScriptServiceResult, error) {
	pass, err := e.nodeConditions(ctx, exec, node)
	if err != nil {
		return nil, err
	}

	if !pass {
		exec.logger.Info("conditions for node did not match", "node", node.Name)
		exec.current = nil

		return &ScriptServiceResult{Success: false}, nil
	}

	if err := e.runNodeActions(ctx, exec, node); err != nil {
		return nil, err
	}

	if err := e.advance(ctx, exec); err != nil {
		return nil, err
	}

	return &ScriptServiceResult{Success: true}, nil
}

// advance moves the traversal pointer to the current node's next node. A
// missing next node clears the pointer; the main loop reports the dead end.
func (e *Executor) advance(ctx context.Context, exec *execution) error {
	if exec.current == nil {
		return nil
	}

	next, err := e.deps.Graph.NextNode(ctx, exec.workflow.ID, exec.current.ID)
	if err != nil {
		if persistence.IsNotFound(err) {
			exec.current = nil

			return nil
		}

		return fmt.Errorf("failed to resolve next node after %s: %w", exec.current.ID, err)
	}

	exec.current = next

	return nil
}

// nodeConditions loads and evaluates the stored condition groups of a node.
// A node without conditions passes. Groups combine with AND, conditions
// inside a group with OR. Evaluation errors are hard failures the caller
// must not swallow.
func (e *Executor) nodeConditions(ctx context.Context, exec *execution, node *models.Node) (bool, error) {
	groups, err := e.deps.Conditions.ConditionGroups(ctx, node.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load conditions for node %s: %w", node.ID, err)
	}

	expr := models.RenderConditionExpression(groups)
	if expr == "" {
		exec.logger.Info("no conditions for node, passing", "node", node.Name)

		return true, nil
	}

	pass, err := exec.evaluator.EvaluateBool(expr)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate conditions for node %s (%q): %w", node.ID, expr, err)
	}

	exec.logger.Info("evaluated node conditions",
		"node", node.Name, "expression", expr, "result", pass)

	return pass, nil
}

// runNodeActions dispatches the node's stored actions through the registry in
// sort order. A failing action aborts the traversal. Non-nil action return
// values are recorded as node results when a result writer is configured.
func (e *Executor) runNodeActions(ctx context.Context, exec *execution, node *models.Node) error {
	if e.deps.Actions == nil || e.deps.Registry == nil {
		return nil
	}

	stored, err := e.deps.Actions.NodeActions(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("failed to load actions for node %s: %w", node.ID, err)
	}

	for _, item := range stored {
		action, err := e.deps.Registry.Create(item.Type, item.Config)
		if err != nil {
			return fmt.Errorf("failed to create action %s: %w", item.ID, err)
		}

		executionCtx := actions.ExecutionContext{
			WorkflowID: exec.workflow.ID,
			InstanceID: exec.instance.ID,
			NodeID:     node.ID,
			EntityID:   exec.instance.EntityID,
			EntityName: exec.instance.EntityName,
			Variables: map[string]any{
				"entity_id":   exec.instance.EntityID,
				"entity_name": exec.instance.EntityName,
			},
		}

		value, err := action.Execute(ctx, executionCtx, exec.logger)
		if err != nil {
			return fmt.Errorf("action %s on node %s failed: %w", item.Name, node.ID, err)
		}

		if value != nil && e.deps.Results != nil {
			if err := e.recordResult(ctx, exec, node, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Executor) recordResult(ctx context.Context, exec *execution, node *models.Node, value any) error {
	serialized, datatype, err := serializeResult(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result of node %s: %w", node.ID, err)
	}

	result := &models.Result{
		ID:         uuid.New().String(),
		InstanceID: exec.instance.ID,
		NodeID:     node.ID,
		Value:      serialized,
		DataType:   datatype,
		CreatedAt:  time.Now(),
	}

	if err := e.deps.Results.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("failed to record result of node %s: %w", node.ID, err)
	}

	return nil
}

// serializeResult flattens an action return value to its stored string form
// and datatype tag.
func serializeResult(value any) (string, string, error) {
	switch v := value.(type) {
	case string:
		return v, "string", nil
	case bool:
		return strconv.FormatBool(v), "boolean", nil
	case int:
		return strconv.Itoa(v), "integer", nil
	case int64:
		return strconv.FormatInt(v, 10), "integer", nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), "double", nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", "", err
		}

		return string(raw), "json", nil
	}
}

// newEvaluator builds the per-call expression evaluator: instance attributes
// are bound as variables and the outcome function resolves the latest task
// outcome of a node, e.g. `outcome(approval_node) == approve`.
func (e *Executor) newEvaluator(ctx context.Context, instance *models.Instance) *expression.Evaluator {
	evaluator := expression.New()
	evaluator.SetVariable("entity_id", instance.EntityID)
	evaluator.SetVariable("entity_name", instance.EntityName)

	if e.deps.Outcomes != nil {
		evaluator.RegisterFunction("outcome", 1, func(args []any) (any, error) {
			nodeID, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("outcome expects a node id, got %T", args[0])
			}

			code, err := e.deps.Outcomes.NodeOutcome(ctx, instance.ID, nodeID)
			if err != nil {
				if persistence.IsNotFound(err) {
					return "", nil
				}

				return nil, err
			}

			return code, nil
		})
	}

	return evaluator
}
