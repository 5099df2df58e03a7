package dto

import "time"

// CreateTaskRequest captures task creation payloads.
type CreateTaskRequest struct {
	Title    string     `json:"title"`
	Priority string     `json:"priority"`
	Category string     `json:"category"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	LeadID   string     `json:"lead_id"`
}

// UpdateTaskRequest captures partial task updates.
type UpdateTaskRequest struct {
	Title    *string    `json:"title,omitempty"`
	Status   *string    `json:"status,omitempty"`
	Priority *string    `json:"priority,omitempty"`
	Category *string    `json:"category,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}
