// Package models defines the core domain models for graph-based workflow execution
package models

import "time"

// NodeType represents the structural position of a node in the workflow graph.
type NodeType string

const (
	NodeTypeStart        NodeType = "start"
	NodeTypeIntermediate NodeType = "intermediate"
	NodeTypeEnd          NodeType = "end"
)

// NodeTaskType represents the kind of work a node performs. It is an axis
// independent of NodeType: a start node may still carry a script task type.
type NodeTaskType string

const (
	NodeTaskTypeUser          NodeTaskType = "user"
	NodeTaskTypeDecision      NodeTaskType = "decision"
	NodeTaskTypeScriptService NodeTaskType = "script-service"
)

// NodeStatus defines whether a node participates in traversal.
type NodeStatus string

const (
	NodeStatusActive   NodeStatus = "active"
	NodeStatusDisabled NodeStatus = "disabled"
)

// Node represents a vertex in a workflow graph.
type Node struct {
	ID         string       `json:"id"                validate:"required"`
	WorkflowID string       `json:"workflow_id"       validate:"required"`
	RoleID     *string      `json:"role_id,omitempty"` // actor role, user nodes only
	Name       string       `json:"name"              validate:"required,min=1"`
	Type       NodeType     `json:"type"              validate:"required,oneof=start intermediate end"`
	TaskType   NodeTaskType `json:"task_type"         validate:"required,oneof=user decision script-service"`
	Status     NodeStatus   `json:"status"            validate:"required,oneof=active disabled"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Helper predicates used by the execution engine's dispatch.
func (n *Node) IsStart() bool {
	return n.Type == NodeTypeStart
}

func (n *Node) IsEnd() bool {
	return n.Type == NodeTypeEnd
}

func (n *Node) IsUser() bool {
	return n.TaskType == NodeTaskTypeUser
}

func (n *Node) IsDecision() bool {
	return n.TaskType == NodeTaskTypeDecision
}

func (n *Node) IsScriptService() bool {
	return n.TaskType == NodeTaskTypeScriptService
}

func (n *Node) IsActive() bool {
	return n.Status == NodeStatusActive
}
