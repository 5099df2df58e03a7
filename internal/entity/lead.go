package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lead statuses used by the qualification funnel. The column is plain text so
// values outside this set survive round-trips.
const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusQualified = "QUALIFIED"
	LeadStatusWon       = "WON"
	LeadStatusLost      = "LOST"
)

// Lead represents a sales prospect tracked through the funnel.
type Lead struct {
	ID             uuid.UUID  `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Company        *string    `json:"company,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Industry       *string    `json:"industry,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Status         string     `json:"status"`
	Score          int        `json:"score"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	LastFollowUpAt *time.Time `json:"last_follow_up_at,omitempty"`
	EscalatedAt    *time.Time `json:"escalated_at,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Resolved reports whether the lead reached a terminal status.
func (l *Lead) Resolved() bool {
	return l.Status == LeadStatusWon || l.Status == LeadStatusLost
}

// FullName joins the name parts, tolerating either being empty.
func (l *Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	default:
		return l.FirstName + " " + l.LastName
	}
}
