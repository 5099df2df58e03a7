package automation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/config"
	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/mailer"
	"github.com/octobees/crm-automations/api/internal/notifier"
	"github.com/octobees/crm-automations/api/internal/repository"
	"github.com/octobees/crm-automations/api/internal/service/scoring"
)

const sweepPageSize = 100

// Sweep actions reported in LeadOutcome.
const (
	ActionScoreRefreshed = "score_refreshed"
	ActionFollowUpSent   = "follow_up_sent"
	ActionEscalated      = "escalated"
	ActionOwnerAssigned  = "owner_assigned"
)

// LeadOutcome records what a sweep did to one lead.
type LeadOutcome struct {
	LeadID uuid.UUID `json:"lead_id"`
	Action string    `json:"action"`
	Err    string    `json:"error,omitempty"`
}

// SweepResult summarises one sweep run. Skipped covers leads another writer
// got to first; failures land in Outcomes with Err set.
type SweepResult struct {
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Outcomes  []LeadOutcome `json:"outcomes,omitempty"`
}

func (r *SweepResult) succeed(id uuid.UUID, action string) {
	r.Succeeded++
	r.Outcomes = append(r.Outcomes, LeadOutcome{LeadID: id, Action: action})
}

func (r *SweepResult) fail(id uuid.UUID, action string, err error) {
	r.Outcomes = append(r.Outcomes, LeadOutcome{LeadID: id, Action: action, Err: err.Error()})
}

// Runner executes the lifecycle sweeps. All collaborators are injected so the
// sweeps stay deterministic under test.
type Runner struct {
	leads repository.LeadsRepository
	mail  mailer.Sender
	ops   notifier.Poster
	cfg   config.AutomationConfig
	now   func() time.Time
}

// NewRunner builds a Runner. ops may be nil when no webhook is configured.
func NewRunner(leads repository.LeadsRepository, mail mailer.Sender, ops notifier.Poster, cfg config.AutomationConfig) *Runner {
	return &Runner{leads: leads, mail: mail, ops: ops, cfg: cfg, now: time.Now}
}

// SetClock overrides the wall clock. Test helper.
func (r *Runner) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// RefreshScores recomputes every lead's score and persists only changes.
// The writes are score-only patches, so updated_at stays put and a lead
// keeps aging toward the follow-up and escalation cutoffs between runs.
func (r *Runner) RefreshScores(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	now := r.now()

	leads, err := r.collect(ctx, dto.LeadFilter{})
	if err != nil {
		return nil, err
	}

	for i := range leads {
		lead := leads[i]
		result.Processed++

		score := scoring.ComputeScore(scoring.LeadSignals{
			Company:        deref(lead.Company),
			Industry:       deref(lead.Industry),
			Source:         deref(lead.Source),
			Phone:          deref(lead.Phone),
			Notes:          deref(lead.Notes),
			LastActivityAt: lead.UpdatedAt,
			Now:            now,
		}).Total
		if score == lead.Score {
			continue
		}

		version := lead.Version
		if _, err := r.leads.Update(ctx, lead.ID, repository.LeadPatch{Score: &score}, &version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				result.Skipped++
				continue
			}
			result.fail(lead.ID, ActionScoreRefreshed, err)
			continue
		}
		result.succeed(lead.ID, ActionScoreRefreshed)
	}

	log.Printf("sweep=refresh_scores processed=%d succeeded=%d skipped=%d", result.Processed, result.Succeeded, result.Skipped)
	return result, nil
}

// RunFollowUps emails leads that went quiet and stamps last_follow_up_at.
// The stamp is written first under a version check so overlapping sweeps
// cannot double-send. The flip side: a send that fails after the stamp is
// not retried until the next full window elapses.
func (r *Runner) RunFollowUps(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	now := r.now()
	cutoff := now.Add(-r.cfg.FollowUpAfter)

	leads, err := r.collect(ctx, dto.LeadFilter{
		Statuses:      []string{entity.LeadStatusNew, entity.LeadStatusContacted},
		UpdatedBefore: &cutoff,
	})
	if err != nil {
		return nil, err
	}

	for i := range leads {
		lead := leads[i]
		if lead.LastFollowUpAt != nil && lead.LastFollowUpAt.After(cutoff) {
			continue
		}
		result.Processed++

		stamp := now
		version := lead.Version
		if _, err := r.leads.Update(ctx, lead.ID, repository.LeadPatch{LastFollowUpAt: &stamp}, &version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				result.Skipped++
				continue
			}
			result.fail(lead.ID, ActionFollowUpSent, err)
			continue
		}

		subject, body, err := mailer.FollowUpEmail(&lead)
		if err != nil {
			result.fail(lead.ID, ActionFollowUpSent, err)
			continue
		}
		if err := r.mail.Send(lead.Email, subject, body); err != nil {
			result.fail(lead.ID, ActionFollowUpSent, err)
			continue
		}
		result.succeed(lead.ID, ActionFollowUpSent)
	}

	log.Printf("sweep=follow_ups processed=%d succeeded=%d skipped=%d", result.Processed, result.Succeeded, result.Skipped)
	return result, nil
}

// RunEscalations alerts the admin about unresolved leads stuck beyond the
// escalation threshold, once per lead.
func (r *Runner) RunEscalations(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	now := r.now()
	cutoff := now.Add(-r.cfg.EscalateAfter)

	leads, err := r.collect(ctx, dto.LeadFilter{UpdatedBefore: &cutoff})
	if err != nil {
		return nil, err
	}

	for i := range leads {
		lead := leads[i]
		if lead.Resolved() || lead.EscalatedAt != nil {
			continue
		}
		result.Processed++

		stamp := now
		version := lead.Version
		if _, err := r.leads.Update(ctx, lead.ID, repository.LeadPatch{EscalatedAt: &stamp}, &version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				result.Skipped++
				continue
			}
			result.fail(lead.ID, ActionEscalated, err)
			continue
		}

		if err := r.notifyEscalation(ctx, &lead); err != nil {
			result.fail(lead.ID, ActionEscalated, err)
			continue
		}
		result.succeed(lead.ID, ActionEscalated)
	}

	log.Printf("sweep=escalations processed=%d succeeded=%d skipped=%d", result.Processed, result.Succeeded, result.Skipped)
	return result, nil
}

func (r *Runner) notifyEscalation(ctx context.Context, lead *entity.Lead) error {
	subject, body, err := mailer.EscalationEmail(lead)
	if err != nil {
		return err
	}
	if err := r.mail.Send(r.cfg.AdminEmail, subject, body); err != nil {
		return fmt.Errorf("escalation mail: %w", err)
	}

	if r.ops == nil {
		return nil
	}
	payload := map[string]any{
		"lead_id": lead.ID.String(),
		"email":   lead.Email,
		"status":  lead.Status,
		"score":   lead.Score,
	}
	if err := r.ops.PostJSON(ctx, "/alerts/stale-lead", payload, ""); err != nil {
		return fmt.Errorf("escalation webhook: %w", err)
	}
	return nil
}

// AssignOwners distributes unowned leads across the configured owners,
// always handing the next lead to the least loaded owner. Ties go to the
// owner listed first.
func (r *Runner) AssignOwners(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	if len(r.cfg.Owners) == 0 {
		return result, nil
	}

	loads := make(map[string]int, len(r.cfg.Owners))
	for _, owner := range r.cfg.Owners {
		count, err := r.leads.Count(ctx, dto.LeadFilter{AssignedTo: owner})
		if err != nil {
			return nil, err
		}
		loads[owner] = count
	}

	leads, err := r.collect(ctx, dto.LeadFilter{Unassigned: true})
	if err != nil {
		return nil, err
	}

	for i := range leads {
		lead := leads[i]
		result.Processed++

		owner := r.pickOwner(loads)
		version := lead.Version
		if _, err := r.leads.Update(ctx, lead.ID, repository.LeadPatch{AssignedTo: &owner}, &version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				result.Skipped++
				continue
			}
			result.fail(lead.ID, ActionOwnerAssigned, err)
			continue
		}
		loads[owner]++
		result.succeed(lead.ID, ActionOwnerAssigned)
	}

	log.Printf("sweep=assign_owners processed=%d succeeded=%d skipped=%d", result.Processed, result.Succeeded, result.Skipped)
	return result, nil
}

func (r *Runner) pickOwner(loads map[string]int) string {
	owners := make([]string, len(r.cfg.Owners))
	copy(owners, r.cfg.Owners)
	sort.SliceStable(owners, func(i, j int) bool {
		return loads[owners[i]] < loads[owners[j]]
	})
	return owners[0]
}

// collect pages through the lead table so sweeps see every match.
func (r *Runner) collect(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	var all []entity.Lead
	filter.PerPage = sweepPageSize
	for page := 1; ; page++ {
		filter.Page = page
		leads, err := r.leads.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list leads for sweep: %w", err)
		}
		all = append(all, leads...)
		if len(leads) < sweepPageSize {
			return all, nil
		}
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
