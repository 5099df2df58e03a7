package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
)

// MemoryLeadsRepository is a mutex-guarded in-memory lead store. It backs the
// service when no DATABASE_URL is configured and doubles as the test fixture.
type MemoryLeadsRepository struct {
	mu    sync.RWMutex
	leads map[uuid.UUID]*entity.Lead
	order []uuid.UUID
	now   func() time.Time
}

// NewMemoryLeadsRepository builds an empty in-memory store.
func NewMemoryLeadsRepository() *MemoryLeadsRepository {
	return &MemoryLeadsRepository{
		leads: make(map[uuid.UUID]*entity.Lead),
		now:   time.Now,
	}
}

// SetClock overrides the time source. Tests use this to age leads
// deterministically.
func (r *MemoryLeadsRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Create assigns an id, stamps timestamps and stores the lead.
func (r *MemoryLeadsRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	lead.ID = uuid.New()
	if lead.Status == "" {
		lead.Status = entity.LeadStatusNew
	}
	lead.Version = 1
	lead.CreatedAt = now
	lead.UpdatedAt = now

	stored := *lead
	r.leads[lead.ID] = &stored
	r.order = append(r.order, lead.ID)
	return nil
}

// FindByID returns a copy of the stored lead.
func (r *MemoryLeadsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// List returns matching leads in insertion order with the same pagination
// defaults as the Postgres adapter.
func (r *MemoryLeadsRepository) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []entity.Lead
	for _, id := range r.order {
		lead := r.leads[id]
		if leadMatches(lead, filter) {
			matched = append(matched, *lead)
		}
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	offset := (page - 1) * perPage
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// Update merges the patch and bumps the version. updated_at is refreshed
// unless the patch is score-only.
func (r *MemoryLeadsRepository) Update(ctx context.Context, id uuid.UUID, patch LeadPatch, expectedVersion *int64) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if expectedVersion != nil && lead.Version != *expectedVersion {
		return nil, ErrVersionConflict
	}
	if patch.Empty() {
		copied := *lead
		return &copied, nil
	}

	if patch.FirstName != nil {
		lead.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		lead.LastName = *patch.LastName
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Company != nil {
		lead.Company = patch.Company
	}
	if patch.Phone != nil {
		lead.Phone = patch.Phone
	}
	if patch.Source != nil {
		lead.Source = patch.Source
	}
	if patch.Industry != nil {
		lead.Industry = patch.Industry
	}
	if patch.Notes != nil {
		lead.Notes = patch.Notes
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	if patch.Score != nil {
		lead.Score = *patch.Score
	}
	if patch.AssignedTo != nil {
		lead.AssignedTo = patch.AssignedTo
	}
	if patch.LastFollowUpAt != nil {
		ts := *patch.LastFollowUpAt
		lead.LastFollowUpAt = &ts
	}
	if patch.EscalatedAt != nil {
		ts := *patch.EscalatedAt
		lead.EscalatedAt = &ts
	}

	lead.Version++
	if !patch.ScoreOnly() {
		updated := r.now()
		if !updated.After(lead.UpdatedAt) {
			// Clock granularity guard: updated_at must move forward on every write.
			updated = lead.UpdatedAt.Add(time.Nanosecond)
		}
		lead.UpdatedAt = updated
	}

	copied := *lead
	return &copied, nil
}

// Count returns the number of leads matching the filter.
func (r *MemoryLeadsRepository) Count(ctx context.Context, filter dto.LeadFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, lead := range r.leads {
		if leadMatches(lead, filter) {
			count++
		}
	}
	return count, nil
}

// DeleteAll clears the store.
func (r *MemoryLeadsRepository) DeleteAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.leads)
	r.leads = make(map[uuid.UUID]*entity.Lead)
	r.order = nil
	return removed, nil
}

func leadMatches(lead *entity.Lead, filter dto.LeadFilter) bool {
	if filter.Q != "" {
		q := strings.ToLower(filter.Q)
		company := ""
		if lead.Company != nil {
			company = *lead.Company
		}
		haystack := strings.ToLower(strings.Join([]string{lead.FirstName, lead.LastName, lead.Email, company}, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if strings.EqualFold(strings.TrimSpace(status), lead.Status) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Unassigned {
		if lead.AssignedTo != nil && *lead.AssignedTo != "" {
			return false
		}
	} else if filter.AssignedTo != "" {
		if lead.AssignedTo == nil || *lead.AssignedTo != filter.AssignedTo {
			return false
		}
	}
	if filter.UpdatedBefore != nil && !lead.UpdatedAt.Before(*filter.UpdatedBefore) {
		return false
	}
	return true
}

var _ LeadsRepository = (*MemoryLeadsRepository)(nil)
