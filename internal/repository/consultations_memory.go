package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/entity"
)

// MemoryConsultationsRepository is the in-memory ConsultationsRepository adapter.
type MemoryConsultationsRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.Consultation
	order []uuid.UUID
}

// NewMemoryConsultationsRepository builds an empty in-memory consultation store.
func NewMemoryConsultationsRepository() *MemoryConsultationsRepository {
	return &MemoryConsultationsRepository{items: make(map[uuid.UUID]*entity.Consultation)}
}

// Create assigns an id plus reference and stores the consultation.
func (r *MemoryConsultationsRepository) Create(ctx context.Context, consultation *entity.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	consultation.ID = uuid.New()
	consultation.Reference = newConsultationReference(now)
	if consultation.Status == "" {
		consultation.Status = entity.ConsultationStatusPending
	}
	consultation.CreatedAt = now
	consultation.UpdatedAt = now

	stored := *consultation
	r.items[consultation.ID] = &stored
	r.order = append(r.order, consultation.ID)
	return nil
}

// List returns consultations in insertion order, optionally filtered by status.
func (r *MemoryConsultationsRepository) List(ctx context.Context, status string) ([]entity.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []entity.Consultation
	for _, id := range r.order {
		item := r.items[id]
		if status != "" && item.Status != status {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

// UpdateStatus moves a consultation to a new lifecycle status.
func (r *MemoryConsultationsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrConsultationNotFound
	}
	item.Status = status
	item.UpdatedAt = time.Now()

	copied := *item
	return &copied, nil
}

// Count returns the number of consultations, optionally narrowed to one status.
func (r *MemoryConsultationsRepository) Count(ctx context.Context, status string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if status == "" {
		return len(r.items), nil
	}
	count := 0
	for _, item := range r.items {
		if item.Status == status {
			count++
		}
	}
	return count, nil
}

var _ ConsultationsRepository = (*MemoryConsultationsRepository)(nil)
