package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
	"github.com/octobees/crm-automations/api/internal/repository"
)

var taskStatuses = map[string]struct{}{
	entity.TaskStatusOpen: {},
	entity.TaskStatusDone: {},
}

var taskPriorities = map[string]struct{}{
	entity.TaskPriorityLow:    {},
	entity.TaskPriorityMedium: {},
	entity.TaskPriorityHigh:   {},
}

// TaskService owns follow-up task rules.
type TaskService struct {
	repo  repository.TasksRepository
	leads repository.LeadsRepository
}

// NewTaskService builds a TaskService. The leads repository is used to verify
// lead references on creation.
func NewTaskService(repo repository.TasksRepository, leads repository.LeadsRepository) *TaskService {
	return &TaskService{repo: repo, leads: leads}
}

// Create validates and persists a new task.
func (s *TaskService) Create(ctx context.Context, req dto.CreateTaskRequest) (*entity.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidField("title", "is required")
	}

	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = entity.TaskPriorityMedium
	}
	if _, ok := taskPriorities[priority]; !ok {
		return nil, invalidField("priority", "must be low, medium or high")
	}

	task := &entity.Task{
		Title:    title,
		Status:   entity.TaskStatusOpen,
		Priority: priority,
		Category: optional(req.Category),
		DueDate:  req.DueDate,
	}

	if strings.TrimSpace(req.LeadID) != "" {
		leadID, err := uuid.Parse(req.LeadID)
		if err != nil {
			return nil, invalidField("lead_id", "is not a valid id")
		}
		if _, err := s.leads.FindByID(ctx, leadID); err != nil {
			return nil, invalidField("lead_id", "references an unknown lead")
		}
		task.LeadID = &leadID
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns tasks, optionally narrowed to one status.
func (s *TaskService) List(ctx context.Context, status string) ([]entity.Task, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" {
		if _, ok := taskStatuses[status]; !ok {
			return nil, invalidField("status", "must be open or done")
		}
	}
	return s.repo.List(ctx, status)
}

// Update applies a partial mutation to a task.
func (s *TaskService) Update(ctx context.Context, id string, req dto.UpdateTaskRequest) (*entity.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrTaskNotFound
	}

	patch := repository.TaskPatch{
		Category: req.Category,
		DueDate:  req.DueDate,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalidField("title", "must not be empty")
		}
		patch.Title = &title
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if _, ok := taskStatuses[status]; !ok {
			return nil, invalidField("status", "must be open or done")
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*req.Priority))
		if _, ok := taskPriorities[priority]; !ok {
			return nil, invalidField("priority", "must be low, medium or high")
		}
		patch.Priority = &priority
	}

	return s.repo.Update(ctx, taskID, patch)
}

// Delete removes a task by string id.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrTaskNotFound
	}
	return s.repo.Delete(ctx, taskID)
}
