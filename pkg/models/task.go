package models

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// CancelTrigger records who cancelled a task.
type CancelTrigger string

const (
	CancelTriggerUser   CancelTrigger = "user"
	CancelTriggerSystem CancelTrigger = "system"
)

// Task is a unit of pending human work created for a user node within an
// instance. A processing task is the engine's suspension marker: the instance
// resumes only after an external actor completes (or cancels) it.
type Task struct {
	ID            string        `json:"id"            validate:"required"`
	InstanceID    string        `json:"instance_id"   validate:"required"`
	NodeID        string        `json:"node_id"       validate:"required"`
	UserID        string        `json:"user_id"       validate:"required"` // assigned actor
	OutcomeID     *string       `json:"outcome_id,omitempty"`              // chosen outcome, set on completion
	Comment       string        `json:"comment"`
	Status        TaskStatus    `json:"status"        validate:"required,oneof=processing completed cancelled"`
	CancelTrigger CancelTrigger `json:"cancel_trigger"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       *time.Time    `json:"end_date,omitempty"`
}

// Outcome is a named terminal choice that can be recorded against a completed
// task, scoped to a node (e.g. "approve"/"reject").
type Outcome struct {
	ID        string    `json:"id"      validate:"required"`
	NodeID    string    `json:"node_id" validate:"required"`
	Code      string    `json:"code"    validate:"required"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
