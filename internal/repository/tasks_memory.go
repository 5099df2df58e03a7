package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/entity"
)

// MemoryTasksRepository is the in-memory TasksRepository adapter.
type MemoryTasksRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*entity.Task
	order []uuid.UUID
}

// NewMemoryTasksRepository builds an empty in-memory task store.
func NewMemoryTasksRepository() *MemoryTasksRepository {
	return &MemoryTasksRepository{tasks: make(map[uuid.UUID]*entity.Task)}
}

// Create assigns an id and stores the task.
func (r *MemoryTasksRepository) Create(ctx context.Context, task *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	task.ID = uuid.New()
	if task.Status == "" {
		task.Status = entity.TaskStatusOpen
	}
	if task.Priority == "" {
		task.Priority = entity.TaskPriorityMedium
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	stored := *task
	r.tasks[task.ID] = &stored
	r.order = append(r.order, task.ID)
	return nil
}

// List returns tasks in insertion order, optionally filtered by status.
func (r *MemoryTasksRepository) List(ctx context.Context, status string) ([]entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []entity.Task
	for _, id := range r.order {
		task := r.tasks[id]
		if status != "" && task.Status != status {
			continue
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// Update merges the patch into the stored task.
func (r *MemoryTasksRepository) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Category != nil {
		task.Category = patch.Category
	}
	if patch.DueDate != nil {
		ts := *patch.DueDate
		task.DueDate = &ts
	}
	task.UpdatedAt = time.Now()

	copied := *task
	return &copied, nil
}

// Delete removes a task by id.
func (r *MemoryTasksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored tasks, optionally narrowed to one status.
func (r *MemoryTasksRepository) Count(ctx context.Context, status string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if status == "" {
		return len(r.tasks), nil
	}
	count := 0
	for _, task := range r.tasks {
		if task.Status == status {
			count++
		}
	}
	return count, nil
}

var _ TasksRepository = (*MemoryTasksRepository)(nil)
