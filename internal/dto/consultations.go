package dto

import "time"

// CreateConsultationRequest captures the public booking form payload.
type CreateConsultationRequest struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	RequestedSlot *time.Time `json:"requested_slot,omitempty"`
	Message       string     `json:"message"`
}

// UpdateConsultationStatusRequest moves a consultation through its lifecycle.
type UpdateConsultationStatusRequest struct {
	Status string `json:"status"`
}
