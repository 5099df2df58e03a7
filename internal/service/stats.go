package service

import (
	"context"
	"fmt"
	"math"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
)

const statsPageSize = 100

// StatsService computes dashboard aggregates. Nothing is cached; every call
// reflects the store at that moment.
type StatsService struct {
	leads         repository.LeadsRepository
	tasks         repository.TasksRepository
	consultations repository.ConsultationsRepository
}

// NewStatsService builds a StatsService.
func NewStatsService(leads repository.LeadsRepository, tasks repository.TasksRepository, consultations repository.ConsultationsRepository) *StatsService {
	return &StatsService{leads: leads, tasks: tasks, consultations: consultations}
}

// Snapshot assembles the dashboard aggregates.
func (s *StatsService) Snapshot(ctx context.Context) (*dto.DashboardStats, error) {
	total, err := s.leads.Count(ctx, dto.LeadFilter{})
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	byStatus := make(map[string]int)
	for _, status := range []string{
		entity.LeadStatusNew,
		entity.LeadStatusContacted,
		entity.LeadStatusQualified,
		entity.LeadStatusWon,
		entity.LeadStatusLost,
	} {
		count, err := s.leads.Count(ctx, dto.LeadFilter{Statuses: []string{status}})
		if err != nil {
			return nil, fmt.Errorf("count leads by status: %w", err)
		}
		byStatus[status] = count
	}

	unassigned, err := s.leads.Count(ctx, dto.LeadFilter{Unassigned: true})
	if err != nil {
		return nil, fmt.Errorf("count unassigned leads: %w", err)
	}

	averageScore, err := s.averageScore(ctx, total)
	if err != nil {
		return nil, err
	}

	totalTasks, err := s.tasks.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	openTasks, err := s.tasks.Count(ctx, entity.TaskStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("count open tasks: %w", err)
	}

	pending, err := s.consultations.Count(ctx, entity.ConsultationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("count pending consultations: %w", err)
	}

	conversionRate := 0
	if total > 0 {
		conversionRate = int(math.Round(float64(byStatus[entity.LeadStatusWon]) * 100 / float64(total)))
	}

	return &dto.DashboardStats{
		TotalLeads:           total,
		LeadsByStatus:        byStatus,
		UnassignedLeads:      unassigned,
		TotalTasks:           totalTasks,
		OpenTasks:            openTasks,
		PendingConsultations: pending,
		ConversionRate:       conversionRate,
		AverageScore:         averageScore,
	}, nil
}

// averageScore pages through the lead table summing scores. total bounds the
// loop so a store growing mid-snapshot cannot spin it forever.
func (s *StatsService) averageScore(ctx context.Context, total int) (int, error) {
	if total <= 0 {
		return 0, nil
	}

	sum := 0
	counted := 0
	for page := 1; counted < total; page++ {
		leads, err := s.leads.List(ctx, dto.LeadFilter{Page: page, PerPage: statsPageSize})
		if err != nil {
			return 0, fmt.Errorf("list leads for stats: %w", err)
		}
		if len(leads) == 0 {
			break
		}
		for _, lead := range leads {
			sum += lead.Score
			counted++
		}
	}
	if counted == 0 {
		return 0, nil
	}
	return int(math.Round(float64(sum) / float64(counted))), nil
}
