package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/service/scoring"
)

var leadStatuses = map[string]struct{}{
	entity.LeadStatusNew:       {},
	entity.LeadStatusContacted: {},
	entity.LeadStatusQualified: {},
	entity.LeadStatusWon:       {},
	entity.LeadStatusLost:      {},
}

// LeadService owns lead intake, lookup and mutation rules.
type LeadService struct {
	repo        repository.LeadsRepository
	phoneRegion string
	now         func() time.Time
}

// NewLeadService builds a LeadService. phoneRegion is the default region used
// to parse national-format phone numbers.
func NewLeadService(repo repository.LeadsRepository, phoneRegion string) *LeadService {
	return &LeadService{repo: repo, phoneRegion: phoneRegion, now: time.Now}
}

// SetClock overrides the wall clock. Test helper.
func (s *LeadService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates the intake payload, normalizes contact fields, scores the
// lead and persists it.
func (s *LeadService) Create(ctx context.Context, req dto.CreateLeadRequest) (*entity.Lead, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" && lastName == "" {
		return nil, invalidField("first_name", "a name is required")
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(req.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	lead := &entity.Lead{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Company:   optional(req.Company),
		Phone:     optional(phone),
		Source:    optional(req.Source),
		Industry:  optional(req.Industry),
		Notes:     optional(req.Notes),
		Status:    entity.LeadStatusNew,
	}

	now := s.now()
	lead.Score = scoreLead(lead, now, now)

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Get fetches a single lead by its string id.
func (s *LeadService) Get(ctx context.Context, id string) (*entity.Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrLeadNotFound
	}
	return s.repo.FindByID(ctx, leadID)
}

// List returns the matching page of leads plus the total match count.
func (s *LeadService) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, int, error) {
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Update applies a partial mutation. Contact fields are re-validated, the
// score is recomputed from the merged attributes, and the stored version must
// match req.Version when one is supplied.
func (s *LeadService) Update(ctx context.Context, id string, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrLeadNotFound
	}

	current, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	patch := repository.LeadPatch{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Company:    req.Company,
		Source:     req.Source,
		Industry:   req.Industry,
		Notes:      req.Notes,
		AssignedTo: req.AssignedTo,
	}

	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone, s.phoneRegion)
		if err != nil {
			return nil, err
		}
		patch.Phone = &phone
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if _, ok := leadStatuses[status]; !ok {
			return nil, invalidField("status", "is not a known lifecycle status")
		}
		patch.Status = &status
	}

	if patch.Empty() {
		return current, nil
	}

	// Score follows the merged attributes, never client input.
	merged := mergeLead(*current, patch)
	now := s.now()
	score := scoreLead(&merged, now, now)
	patch.Score = &score

	expected := req.Version
	if expected == nil {
		version := current.Version
		expected = &version
	}

	updated, err := s.repo.Update(ctx, leadID, patch, expected)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ClearAll wipes every lead. Admin escape hatch.
func (s *LeadService) ClearAll(ctx context.Context) (int, error) {
	return s.repo.DeleteAll(ctx)
}

// ImportSummary reports the outcome of a bulk intake run.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// Import creates leads in bulk. Invalid rows are reported and skipped, never
// aborting the batch.
func (s *LeadService) Import(ctx context.Context, rows []dto.CreateLeadRequest) (ImportSummary, error) {
	summary := ImportSummary{}
	for i, row := range rows {
		if _, err := s.Create(ctx, row); err != nil {
			if IsValidationError(err) {
				summary.Rejected++
				summary.Errors = append(summary.Errors, rowError(i, err))
				continue
			}
			return summary, err
		}
		summary.Imported++
	}
	return summary, nil
}

func rowError(index int, err error) string {
	return fmt.Sprintf("row %d: %v", index+1, err)
}

// scoreLead maps lead attributes onto scoring signals.
func scoreLead(lead *entity.Lead, lastActivity, now time.Time) int {
	return scoring.ComputeScore(scoring.LeadSignals{
		Company:        deref(lead.Company),
		Industry:       deref(lead.Industry),
		Source:         deref(lead.Source),
		Phone:          deref(lead.Phone),
		Notes:          deref(lead.Notes),
		LastActivityAt: lastActivity,
		Now:            now,
	}).Total
}

func mergeLead(lead entity.Lead, patch repository.LeadPatch) entity.Lead {
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
	if patch.AssignedTo != nil {
		lead.AssignedTo = patch.AssignedTo
	}
	return lead
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
