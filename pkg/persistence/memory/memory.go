// Package memory provides an in-process Persistence backend. It backs unit
// tests and the demo command; data lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platine-go/workflow/pkg/models"
	"github.com/platine-go/workflow/pkg/persistence"
)

// Persistence holds every repository over one shared mutable store.
type Persistence struct {
	mu sync.RWMutex

	workflows map[string]*models.Workflow
	nodes     map[string]*models.Node
	paths     map[string]*models.NodePath
	groups    map[string]*models.ConditionGroup
	actions   map[string]*models.Action
	outcomes  map[string]*models.Outcome
	instances map[string]*models.Instance
	tasks     map[string]*models.Task
	actors    map[string]*models.RoleUser
	results   map[string]*models.Result
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence creates an empty in-memory backend.
func NewPersistence() *Persistence {
	return &Persistence{
		workflows: make(map[string]*models.Workflow),
		nodes:     make(map[string]*models.Node),
		paths:     make(map[string]*models.NodePath),
		groups:    make(map[string]*models.ConditionGroup),
		actions:   make(map[string]*models.Action),
		outcomes:  make(map[string]*models.Outcome),
		instances: make(map[string]*models.Instance),
		tasks:     make(map[string]*models.Task),
		actors:    make(map[string]*models.RoleUser),
		results:   make(map[string]*models.Result),
	}
}

func (p *Persistence) Workflows() persistence.WorkflowRepository { return (*workflowRepo)(p) }
func (p *Persistence) Graph() persistence.GraphReader            { return (*graphRepo)(p) }
func (p *Persistence) Conditions() persistence.ConditionRepository {
	return (*conditionRepo)(p)
}
func (p *Persistence) Actions() persistence.ActionRepository   { return (*actionRepo)(p) }
func (p *Persistence) Instances() persistence.InstanceRepository {
	return (*instanceRepo)(p)
}
func (p *Persistence) Tasks() persistence.TaskRepository     { return (*taskRepo)(p) }
func (p *Persistence) Actors() persistence.ActorRepository   { return (*actorRepo)(p) }
func (p *Persistence) Outcomes() persistence.OutcomeRepository {
	return (*outcomeRepo)(p)
}
func (p *Persistence) Results() persistence.ResultRepository { return (*resultRepo)(p) }

// HealthCheck always succeeds for the in-memory backend.
func (p *Persistence) HealthCheck(_ context.Context) error { return nil }

// Close discards all stored data.
func (p *Persistence) Close(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.workflows = make(map[string]*models.Workflow)
	p.nodes = make(map[string]*models.Node)
	p.paths = make(map[string]*models.NodePath)
	p.groups = make(map[string]*models.ConditionGroup)
	p.actions = make(map[string]*models.Action)
	p.outcomes = make(map[string]*models.Outcome)
	p.instances = make(map[string]*models.Instance)
	p.tasks = make(map[string]*models.Task)
	p.actors = make(map[string]*models.RoleUser)
	p.results = make(map[string]*models.Result)

	return nil
}

type workflowRepo Persistence

func (r *workflowRepo) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflow, ok := r.workflows[id]
	if !ok {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	copied := *workflow

	return &copied, nil
}

func (r *workflowRepo) Workflows(_ context.Context) ([]*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(r.workflows))
	for _, workflow := range r.workflows {
		copied := *workflow
		workflows = append(workflows, &copied)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *workflowRepo) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	now := time.Now()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	copied := *workflow
	r.workflows[workflow.ID] = &copied

	return nil
}

func (r *workflowRepo) SaveNode(_ context.Context, node *models.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	now := time.Now()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}

	node.UpdatedAt = now

	copied := *node
	r.nodes[node.ID] = &copied

	return nil
}

func (r *workflowRepo) SavePath(_ context.Context, path *models.NodePath) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if path.ID == "" {
		path.ID = uuid.New().String()
	}

	now := time.Now()
	if path.CreatedAt.IsZero() {
		path.CreatedAt = now
	}

	path.UpdatedAt = now

	copied := *path
	copied.SourceNode = nil
	copied.TargetNode = nil
	r.paths[path.ID] = &copied

	return nil
}

type graphRepo Persistence

func (r *graphRepo) StartNode(_ context.Context, workflowID string) (*models.Node, error) {
	return r.nodeByType(workflowID, models.NodeTypeStart, "StartNode")
}

func (r *graphRepo) EndNode(_ context.Context, workflowID string) (*models.Node, error) {
	return r.nodeByType(workflowID, models.NodeTypeEnd, "EndNode")
}

func (r *graphRepo) nodeByType(workflowID string, nodeType models.NodeType, op string) (*models.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Node

	for _, node := range r.nodes {
		if node.WorkflowID != workflowID || node.Type != nodeType {
			continue
		}

		if found == nil || node.CreatedAt.Before(found.CreatedAt) {
			found = node
		}
	}

	if found == nil {
		return nil, persistence.NewWorkflowError(op, workflowID, persistence.ErrNodeNotFound)
	}

	copied := *found

	return &copied, nil
}

func (r *graphRepo) NextNode(_ context.Context, workflowID, sourceNodeID string) (*models.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	outgoing := r.outgoingLocked(workflowID, sourceNodeID)
	if len(outgoing) == 0 {
		return nil, persistence.NewNodeError("NextNode", workflowID, sourceNodeID, persistence.ErrNodeNotFound)
	}

	target, ok := r.nodes[outgoing[0].TargetNodeID]
	if !ok {
		return nil, persistence.NewNodeError("NextNode", workflowID, sourceNodeID, persistence.ErrNodeNotFound)
	}

	copied := *target

	return &copied, nil
}

func (r *graphRepo) DecisionBranches(_ context.Context, workflowID, decisionNodeID string) ([]*models.NodePath, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	outgoing := r.outgoingLocked(workflowID, decisionNodeID)

	branches := make([]*models.NodePath, 0, len(outgoing))

	for _, path := range outgoing {
		copied := *path

		if target, ok := r.nodes[path.TargetNodeID]; ok {
			targetCopy := *target
			copied.TargetNode = &targetCopy
		}

		branches = append(branches, &copied)
	}

	return branches, nil
}

func (r *graphRepo) Paths(_ context.Context, workflowID string) ([]*models.NodePath, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var paths []*models.NodePath

	for _, path := range r.paths {
		if path.WorkflowID != workflowID {
			continue
		}

		copied := *path

		if source, ok := r.nodes[path.SourceNodeID]; ok {
			sourceCopy := *source
			copied.SourceNode = &sourceCopy
		}

		if target, ok := r.nodes[path.TargetNodeID]; ok {
			targetCopy := *target
			copied.TargetNode = &targetCopy
		}

		paths = append(paths, &copied)
	}

	sortPaths(paths)

	return paths, nil
}

// outgoingLocked returns the outgoing edges of a node sorted the way branch
// evaluation expects. Callers must hold at least a read lock.
func (r *graphRepo) outgoingLocked(workflowID, sourceNodeID string) []*models.NodePath {
	var outgoing []*models.NodePath

	for _, path := range r.paths {
		if path.WorkflowID == workflowID && path.SourceNodeID == sourceNodeID {
			outgoing = append(outgoing, path)
		}
	}

	sortPaths(outgoing)

	return outgoing
}

// sortPaths orders edges by sort order, then ID for a stable tiebreak.
func sortPaths(paths []*models.NodePath) {
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].SortOrder != paths[j].SortOrder {
			return paths[i].SortOrder < paths[j].SortOrder
		}

		return paths[i].ID < paths[j].ID
	})
}

type conditionRepo Persistence

func (r *conditionRepo) ConditionGroups(_ context.Context, nodeID string) ([]*models.ConditionGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups []*models.ConditionGroup

	for _, group := range r.groups {
		if group.NodeID != nodeID {
			continue
		}

		copied := *group
		copied.Conditions = make([]*models.Condition, len(group.Conditions))

		for i, condition := range group.Conditions {
			conditionCopy := *condition
			copied.Conditions[i] = &conditionCopy
		}

		sort.Slice(copied.Conditions, func(i, j int) bool {
			if copied.Conditions[i].SortOrder != copied.Conditions[j].SortOrder {
				return copied.Conditions[i].SortOrder < copied.Conditions[j].SortOrder
			}

			return copied.Conditions[i].ID < copied.Conditions[j].ID
		})

		groups = append(groups, &copied)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SortOrder != groups[j].SortOrder {
			return groups[i].SortOrder < groups[j].SortOrder
		}

		return groups[i].ID < groups[j].ID
	})

	return groups, nil
}

func (r *conditionRepo) SaveConditionGroup(_ context.Context, group *models.ConditionGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	now := time.Now()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}

	group.UpdatedAt = now

	copied := *group
	copied.Conditions = make([]*models.Condition, len(group.Conditions))

	for i, condition := range group.Conditions {
		conditionCopy := *condition
		copied.Conditions[i] = &conditionCopy
	}

	r.groups[group.ID] = &copied

	return nil
}

func (r *conditionRepo) SaveCondition(_ context.Context, condition *models.Condition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if condition.ID == "" {
		condition.ID = uuid.New().String()
	}

	group, ok := r.groups[condition.GroupID]
	if !ok {
		return fmt.Errorf("condition group %s does not exist", condition.GroupID)
	}

	now := time.Now()
	if condition.CreatedAt.IsZero() {
		condition.CreatedAt = now
	}

	condition.UpdatedAt = now

	copied := *condition

	for i, existing := range group.Conditions {
		if existing.ID == condition.ID {
			group.Conditions[i] = &copied

			return nil
		}
	}

	group.Conditions = append(group.Conditions, &copied)

	return nil
}

type actionRepo Persistence

func (r *actionRepo) NodeActions(_ context.Context, nodeID string) ([]*models.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var actions []*models.Action

	for _, action := range r.actions {
		if action.NodeID != nodeID {
			continue
		}

		copied := *action
		actions = append(actions, &copied)
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].SortOrder != actions[j].SortOrder {
			return actions[i].SortOrder < actions[j].SortOrder
		}

		return actions[i].ID < actions[j].ID
	})

	return actions, nil
}

func (r *actionRepo) SaveAction(_ context.Context, action *models.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if action.ID == "" {
		action.ID = uuid.New().String()
	}

	now := time.Now()
	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}

	action.UpdatedAt = now

	copied := *action
	r.actions[action.ID] = &copied

	return nil
}

type instanceRepo Persistence

func (r *instanceRepo) InstanceByID(_ context.Context, id string) (*models.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("instance %s: %w", id, persistence.ErrInstanceNotFound)
	}

	copied := *instance

	return &copied, nil
}

func (r *instanceRepo) SaveInstance(_ context.Context, instance *models.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if instance.ID == "" {
		instance.ID = uuid.New().String()
	}

	if instance.StartDate.IsZero() {
		instance.StartDate = time.Now()
	}

	copied := *instance
	r.instances[instance.ID] = &copied

	return nil
}

func (r *instanceRepo) UpdateInstanceStatus(_ context.Context, id string, status models.InstanceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, ok := r.instances[id]
	if !ok {
		return fmt.Errorf("instance %s: %w", id, persistence.ErrInstanceNotFound)
	}

	instance.Status = status

	if status == models.InstanceStatusCompleted || status == models.InstanceStatusCancelled {
		now := time.Now()
		instance.EndDate = &now
	}

	return nil
}

type taskRepo Persistence

func (r *taskRepo) CreateTask(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	if task.Status == "" {
		task.Status = models.TaskStatusProcessing
	}

	if task.StartDate.IsZero() {
		task.StartDate = time.Now()
	}

	copied := *task
	r.tasks[task.ID] = &copied

	return nil
}

func (r *taskRepo) TasksByInstance(_ context.Context, instanceID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []*models.Task

	for _, task := range r.tasks {
		if task.InstanceID != instanceID {
			continue
		}

		copied := *task
		tasks = append(tasks, &copied)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].StartDate.Equal(tasks[j].StartDate) {
			return tasks[i].StartDate.Before(tasks[j].StartDate)
		}

		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

func (r *taskRepo) CompleteTask(_ context.Context, taskID, outcomeID, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.Status != models.TaskStatusProcessing {
		return fmt.Errorf("task %s: %w", taskID, persistence.ErrTaskNotFound)
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.OutcomeID = &outcomeID
	task.Comment = comment
	task.EndDate = &now

	return nil
}

func (r *taskRepo) CancelTask(_ context.Context, taskID string, trigger models.CancelTrigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.Status != models.TaskStatusProcessing {
		return fmt.Errorf("task %s: %w", taskID, persistence.ErrTaskNotFound)
	}

	now := time.Now()
	task.Status = models.TaskStatusCancelled
	task.CancelTrigger = trigger
	task.EndDate = &now

	return nil
}

type actorRepo Persistence

func (r *actorRepo) RoleActors(_ context.Context, instanceID, roleID string) ([]*models.RoleUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var actors []*models.RoleUser

	for _, actor := range r.actors {
		if actor.InstanceID != instanceID || actor.RoleID != roleID {
			continue
		}

		copied := *actor
		actors = append(actors, &copied)
	}

	sort.Slice(actors, func(i, j int) bool {
		return actors[i].UserID < actors[j].UserID
	})

	return actors, nil
}

func (r *actorRepo) AssignActor(_ context.Context, roleUser *models.RoleUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if roleUser.ID == "" {
		roleUser.ID = uuid.New().String()
	}

	copied := *roleUser
	r.actors[roleUser.ID] = &copied

	return nil
}

type outcomeRepo Persistence

func (r *outcomeRepo) NodeOutcome(_ context.Context, instanceID, nodeID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Task

	for _, task := range r.tasks {
		if task.InstanceID != instanceID || task.NodeID != nodeID {
			continue
		}

		if task.Status != models.TaskStatusCompleted || task.OutcomeID == nil || task.EndDate == nil {
			continue
		}

		if latest == nil || task.EndDate.After(*latest.EndDate) {
			latest = task
		}
	}

	if latest == nil {
		return "", fmt.Errorf("instance %s node %s: %w", instanceID, nodeID, persistence.ErrOutcomeNotFound)
	}

	outcome, ok := r.outcomes[*latest.OutcomeID]
	if !ok {
		return "", fmt.Errorf("instance %s node %s: %w", instanceID, nodeID, persistence.ErrOutcomeNotFound)
	}

	return outcome.Code, nil
}

func (r *outcomeRepo) SaveOutcome(_ context.Context, outcome *models.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if outcome.ID == "" {
		outcome.ID = uuid.New().String()
	}

	now := time.Now()
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = now
	}

	outcome.UpdatedAt = now

	copied := *outcome
	r.outcomes[outcome.ID] = &copied

	return nil
}

type resultRepo Persistence

func (r *resultRepo) SaveResult(_ context.Context, result *models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.ID == "" {
		result.ID = uuid.New().String()
	}

	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	copied := *result
	r.results[result.ID] = &copied

	return nil
}

func (r *resultRepo) LastResult(_ context.Context, instanceID, nodeID string) (*models.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Result

	for _, result := range r.results {
		if result.InstanceID != instanceID || result.NodeID != nodeID {
			continue
		}

		if latest == nil || result.CreatedAt.After(latest.CreatedAt) {
			latest = result
		}
	}

	if latest == nil {
		return nil, fmt.Errorf("instance %s node %s: %w", instanceID, nodeID, persistence.ErrResultNotFound)
	}

	copied := *latest

	return &copied, nil
}
