package models

import "time"

// Result is a recorded value produced by a node's execution, scoped to
// node + instance. Non-string values are stored in serialized form.
type Result struct {
	ID         string    `json:"id"          validate:"required"`
	InstanceID string    `json:"instance_id" validate:"required"`
	NodeID     string    `json:"node_id"     validate:"required"`
	Value      string    `json:"value"`
	DataType   string    `json:"datatype"    validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
}
