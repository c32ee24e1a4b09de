package models

import "time"

// Action is a stored side effect attached to a node, executed through the
// action registry when the node runs successfully. Actions of a node run in
// SortOrder ascending.
type Action struct {
	ID        string         `json:"id"      validate:"required"`
	NodeID    string         `json:"node_id" validate:"required"`
	Name      string         `json:"name"    validate:"required"`
	Type      string         `json:"type"    validate:"required"` // registry key, e.g. "log", "script"
	Config    map[string]any `json:"config"`
	SortOrder int            `json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
