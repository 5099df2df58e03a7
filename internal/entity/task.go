package entity

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses and priorities.
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task is a unit of follow-up work, optionally tied to a lead.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	Category  *string    `json:"category,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	LeadID    *uuid.UUID `json:"lead_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
