package models

import "time"

// NodePath is a directed edge between two nodes of a workflow.
//
// For decision nodes the outgoing paths are the candidate branches: they are
// evaluated in SortOrder ascending and at most one of them should carry
// IsDefault. The ordering is business-relevant, not cosmetic.
type NodePath struct {
	ID           string    `json:"id"             validate:"required"`
	WorkflowID   string    `json:"workflow_id"    validate:"required"`
	SourceNodeID string    `json:"source_node_id" validate:"required"`
	TargetNodeID string    `json:"target_node_id" validate:"required"`
	Name         string    `json:"name"` // transition label, used by diagrams
	IsDefault    bool      `json:"is_default"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// SourceNode and TargetNode are populated by graph queries that join the
	// node table; they are nil on bare edge rows.
	SourceNode *Node `json:"source_node,omitempty"`
	TargetNode *Node `json:"target_node,omitempty"`
}
