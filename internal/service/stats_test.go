package service

import (
	"context"
	"testing"

	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
)

func newStatsFixture() (*StatsService, *repository.MemoryLeadsRepository, *repository.MemoryTasksRepository, *repository.MemoryConsultationsRepository) {
	leads := repository.NewMemoryLeadsRepository()
	tasks := repository.NewMemoryTasksRepository()
	consultations := repository.NewMemoryConsultationsRepository()
	return NewStatsService(leads, tasks, consultations), leads, tasks, consultations
}

func TestStatsService_Snapshot_EmptyStore(t *testing.T) {
	svc, _, _, _ := newStatsFixture()

	stats, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalLeads != 0 || stats.ConversionRate != 0 || stats.AverageScore != 0 {
		t.Fatalf("expected zeroed stats for empty store, got %+v", stats)
	}
}

func TestStatsService_Snapshot(t *testing.T) {
	svc, leads, tasks, consultations := newStatsFixture()
	ctx := context.Background()

	owner := "ana@octobees.com"
	seed := []*entity.Lead{
		{FirstName: "A", Email: "a@x.com", Status: entity.LeadStatusNew, Score: 20},
		{FirstName: "B", Email: "b@x.com", Status: entity.LeadStatusWon, Score: 80, AssignedTo: &owner},
		{FirstName: "C", Email: "c@x.com", Status: entity.LeadStatusContacted, Score: 50},
		{FirstName: "D", Email: "d@x.com", Status: entity.LeadStatusLost, Score: 10},
	}
	for _, lead := range seed {
		if err := leads.Create(ctx, lead); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := tasks.Create(ctx, &entity.Task{Title: "open one"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	done := &entity.Task{Title: "done one", Status: entity.TaskStatusDone}
	if err := tasks.Create(ctx, done); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := consultations.Create(ctx, &entity.Consultation{Name: "Ada", Email: "a@b.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalLeads != 4 {
		t.Fatalf("expected 4 leads, got %d", stats.TotalLeads)
	}
	if stats.LeadsByStatus[entity.LeadStatusWon] != 1 || stats.LeadsByStatus[entity.LeadStatusNew] != 1 {
		t.Fatalf("unexpected status counts: %+v", stats.LeadsByStatus)
	}
	if stats.UnassignedLeads != 3 {
		t.Fatalf("expected 3 unassigned, got %d", stats.UnassignedLeads)
	}
	if stats.ConversionRate != 25 {
		t.Fatalf("expected conversion rate 25, got %d", stats.ConversionRate)
	}
	if stats.AverageScore != 40 {
		t.Fatalf("expected average score 40, got %d", stats.AverageScore)
	}
	if stats.TotalTasks != 2 || stats.OpenTasks != 1 {
		t.Fatalf("unexpected task counts: %+v", stats)
	}
	if stats.PendingConsultations != 1 {
		t.Fatalf("expected 1 pending consultation, got %d", stats.PendingConsultations)
	}
}
