package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// WorkflowStatus represents the lifecycle state of a workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"
	WorkflowStatusDisabled WorkflowStatus = "disabled"
)

// Workflow is the root of a node graph.
type Workflow struct {
	ID          string         `json:"id"          validate:"required"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"      validate:"required,oneof=active disabled"`
	Nodes       []*Node        `json:"nodes"`
	Paths       []*NodePath    `json:"paths"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Authoring validation errors.
var (
	ErrNoStartNode          = errors.New("workflow has no start node")
	ErrMultipleStartNodes   = errors.New("workflow has more than one start node")
	ErrNoEndNode            = errors.New("workflow has no end node")
	ErrDuplicateDefaultPath = errors.New("decision node has more than one default path")
	ErrDanglingPath         = errors.New("path references a node outside the workflow")
	ErrUserNodeMissingRole  = errors.New("user node has no role")
)

// Validate checks the structural invariants of a workflow definition: field
// constraints, exactly one start node, at least one end node, at most one
// default path per source node, no dangling edges, and a role on every user
// node. The engine assumes these hold at execution time and does not re-check
// them per traversal.
func (w *Workflow) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("workflow %s failed field validation: %w", w.ID, err)
	}

	nodesByID := make(map[string]*Node, len(w.Nodes))
	starts, ends := 0, 0

	for _, n := range w.Nodes {
		if err := validate.Struct(n); err != nil {
			return fmt.Errorf("node %s failed field validation: %w", n.ID, err)
		}

		nodesByID[n.ID] = n

		if n.IsStart() {
			starts++
		}

		if n.IsEnd() {
			ends++
		}

		if n.IsUser() && !n.IsStart() && !n.IsEnd() && n.RoleID == nil {
			return fmt.Errorf("node %s: %w", n.ID, ErrUserNodeMissingRole)
		}
	}

	switch {
	case starts == 0:
		return fmt.Errorf("workflow %s: %w", w.ID, ErrNoStartNode)
	case starts > 1:
		return fmt.Errorf("workflow %s: %w", w.ID, ErrMultipleStartNodes)
	case ends == 0:
		return fmt.Errorf("workflow %s: %w", w.ID, ErrNoEndNode)
	}

	defaults := make(map[string]int)

	for _, p := range w.Paths {
		if _, ok := nodesByID[p.SourceNodeID]; !ok {
			return fmt.Errorf("path %s source %s: %w", p.ID, p.SourceNodeID, ErrDanglingPath)
		}

		if _, ok := nodesByID[p.TargetNodeID]; !ok {
			return fmt.Errorf("path %s target %s: %w", p.ID, p.TargetNodeID, ErrDanglingPath)
		}

		if p.IsDefault {
			defaults[p.SourceNodeID]++
			if defaults[p.SourceNodeID] > 1 {
				return fmt.Errorf("node %s: %w", p.SourceNodeID, ErrDuplicateDefaultPath)
			}
		}
	}

	return nil
}
