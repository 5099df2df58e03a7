package dto

import "time"

// CreateLeadRequest captures lead intake payloads.
type CreateLeadRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Source    string `json:"source"`
	Industry  string `json:"industry"`
	Notes     string `json:"notes"`
}

// UpdateLeadRequest captures partial lead updates. Score is intentionally
// absent: it is always derived by the scoring engine.
type UpdateLeadRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Company    *string `json:"company,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Source     *string `json:"source,omitempty"`
	Industry   *string `json:"industry,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Status     *string `json:"status,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	Version    *int64  `json:"version,omitempty"`
}

// LeadFilter contains query parameters for lead listing endpoints.
type LeadFilter struct {
	Q             string
	Statuses      []string
	Unassigned    bool
	AssignedTo    string
	UpdatedBefore *time.Time
	Page          int
	PerPage       int
}
