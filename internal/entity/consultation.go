package entity

import (
	"time"

	"github.com/google/uuid"
)

// Consultation statuses.
const (
	ConsultationStatusPending   = "pending"
	ConsultationStatusConfirmed = "confirmed"
	ConsultationStatusCancelled = "cancelled"
	ConsultationStatusCompleted = "completed"
)

// Consultation is an intake record from the public booking form.
type Consultation struct {
	ID            uuid.UUID  `json:"id"`
	Reference     string     `json:"reference"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	RequestedSlot *time.Time `json:"requested_slot,omitempty"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
