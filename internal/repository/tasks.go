package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/crm-automations/api/internal/entity"
)

// ErrTaskNotFound is returned when no task matches the lookup criteria.
var ErrTaskNotFound = errors.New("task not found")

// TaskPatch describes a partial task mutation. Nil fields are left untouched.
type TaskPatch struct {
	Title    *string
	Status   *string
	Priority *string
	Category *string
	DueDate  *time.Time
}

// TasksRepository declares persistence operations for follow-up tasks.
type TasksRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	List(ctx context.Context, status string) ([]entity.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, status string) (int, error)
}

// PGXTasksRepository implements TasksRepository with pgx.
type PGXTasksRepository struct {
	pool pgxPool
}

// NewPGXTasksRepository instantiates a Postgres-backed tasks repository.
func NewPGXTasksRepository(pool *pgxpool.Pool) *PGXTasksRepository {
	return &PGXTasksRepository{pool: pool}
}

// Create inserts a new task row.
func (r *PGXTasksRepository) Create(ctx context.Context, task *entity.Task) error {
	if task == nil {
		return fmt.Errorf("task payload is nil")
	}

	status := task.Status
	if status == "" {
		status = entity.TaskStatusOpen
	}
	priority := task.Priority
	if priority == "" {
		priority = entity.TaskPriorityMedium
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO tasks (title, status, priority, category, due_date, lead_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, status, priority, created_at, updated_at
    `, task.Title, status, priority, task.Category, task.DueDate, task.LeadID)

	if err := row.Scan(&task.ID, &task.Status, &task.Priority, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// List returns tasks, optionally filtered by status, oldest first.
func (r *PGXTasksRepository) List(ctx context.Context, status string) ([]entity.Task, error) {
	query := `SELECT id, title, status, priority, category, due_date, lead_id, created_at, updated_at FROM tasks`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		var task entity.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Status, &task.Priority, &task.Category, &task.DueDate, &task.LeadID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update patches task attributes and refreshes updated_at.
func (r *PGXTasksRepository) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*entity.Task, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.Priority != nil {
		appendSet("priority", *patch.Priority)
	}
	if patch.Category != nil {
		appendSet("category", *patch.Category)
	}
	if patch.DueDate != nil {
		appendSet("due_date", *patch.DueDate)
	}

	if len(setClauses) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`
        UPDATE tasks SET %s WHERE id = $%d
        RETURNING id, title, status, priority, category, due_date, lead_id, created_at, updated_at
    `, strings.Join(setClauses, ", "), idx)
	args = append(args, id)

	var task entity.Task
	err := r.pool.QueryRow(ctx, query, args...).Scan(&task.ID, &task.Title, &task.Status, &task.Priority, &task.Category, &task.DueDate, &task.LeadID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

// Delete removes a task by id.
func (r *PGXTasksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Count returns the number of tasks, optionally narrowed to one status.
func (r *PGXTasksRepository) Count(ctx context.Context, status string) (int, error) {
	query := "SELECT COUNT(*) FROM tasks"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}
