package models

import "time"

// Role is a workflow-scoped actor role referenced by user nodes.
type Role struct {
	ID          string    `json:"id"          validate:"required"`
	WorkflowID  string    `json:"workflow_id" validate:"required"`
	Name        string    `json:"name"        validate:"required"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleUser binds a user to a workflow role for a given instance. It is the
// actor-resolution mechanism for user nodes: one task is created per bound
// user when a user node is reached.
type RoleUser struct {
	ID         string `json:"id"          validate:"required"`
	InstanceID string `json:"instance_id" validate:"required"`
	RoleID     string `json:"role_id"     validate:"required"`
	UserID     string `json:"user_id"     validate:"required"`
}
