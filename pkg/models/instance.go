package models

import "time"

// InstanceStatus represents the lifecycle state of a running instance.
type InstanceStatus string

const (
	InstanceStatusProcessing InstanceStatus = "processing"
	InstanceStatusCompleted  InstanceStatus = "completed"
	InstanceStatusCancelled  InstanceStatus = "cancelled"
)

// Instance is one running execution of a workflow against a business entity.
type Instance struct {
	ID           string         `json:"id"           validate:"required"`
	WorkflowID   string         `json:"workflow_id"  validate:"required"`
	EntityID     string         `json:"entity_id"    validate:"required"`
	EntityName   string         `json:"entity_name"`
	EntityDetail string         `json:"entity_detail"` // displayed detail to help validators
	Comment      string         `json:"comment"`
	Status       InstanceStatus `json:"status"       validate:"required,oneof=processing completed cancelled"`
	UserID       string         `json:"user_id"      validate:"required"` // user who started or updated the instance
	StartDate    time.Time      `json:"start_date"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
}
