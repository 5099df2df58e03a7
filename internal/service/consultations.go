package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
)

var consultationStatuses = map[string]struct{}{
	entity.ConsultationStatusPending:   {},
	entity.ConsultationStatusConfirmed: {},
	entity.ConsultationStatusCancelled: {},
	entity.ConsultationStatusCompleted: {},
}

// ConsultationService owns the public booking flow.
type ConsultationService struct {
	repo        repository.ConsultationsRepository
	phoneRegion string
}

// NewConsultationService builds a ConsultationService.
func NewConsultationService(repo repository.ConsultationsRepository, phoneRegion string) *ConsultationService {
	return &ConsultationService{repo: repo, phoneRegion: phoneRegion}
}

// Create validates the booking form and persists the request. The repository
// assigns the quotable reference.
func (s *ConsultationService) Create(ctx context.Context, req dto.CreateConsultationRequest) (*entity.Consultation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidField("name", "is required")
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(req.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	consultation := &entity.Consultation{
		Name:          name,
		Email:         email,
		Phone:         optional(phone),
		RequestedSlot: req.RequestedSlot,
		Message:       strings.TrimSpace(req.Message),
		Status:        entity.ConsultationStatusPending,
	}

	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, err
	}
	return consultation, nil
}

// List returns consultations, optionally narrowed to one status.
func (s *ConsultationService) List(ctx context.Context, status string) ([]entity.Consultation, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" {
		if _, ok := consultationStatuses[status]; !ok {
			return nil, invalidField("status", "is not a known booking status")
		}
	}
	return s.repo.List(ctx, status)
}

// UpdateStatus moves a consultation through its lifecycle.
func (s *ConsultationService) UpdateStatus(ctx context.Context, id string, status string) (*entity.Consultation, error) {
	consultationID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrConsultationNotFound
	}

	status = strings.ToLower(strings.TrimSpace(status))
	if _, ok := consultationStatuses[status]; !ok {
		return nil, invalidField("status", "is not a known booking status")
	}

	return s.repo.UpdateStatus(ctx, consultationID, status)
}
