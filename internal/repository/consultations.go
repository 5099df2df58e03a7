package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/crm-automations/api/internal/entity"
)

// ErrConsultationNotFound is returned when no consultation matches the lookup.
var ErrConsultationNotFound = errors.New("consultation not found")

// ConsultationsRepository declares persistence operations for booking requests.
type ConsultationsRepository interface {
	Create(ctx context.Context, consultation *entity.Consultation) error
	List(ctx context.Context, status string) ([]entity.Consultation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Consultation, error)
	Count(ctx context.Context, status string) (int, error)
}

// newConsultationReference builds a human-quotable booking reference from the
// insert timestamp plus a random suffix. Uniqueness is probabilistic only.
func newConsultationReference(now time.Time) string {
	return fmt.Sprintf("CONS-%d-%04d", now.UnixMilli(), rand.Intn(10000))
}

// PGXConsultationsRepository implements ConsultationsRepository with pgx.
type PGXConsultationsRepository struct {
	pool pgxPool
}

// NewPGXConsultationsRepository instantiates a Postgres-backed consultations repository.
func NewPGXConsultationsRepository(pool *pgxpool.Pool) *PGXConsultationsRepository {
	return &PGXConsultationsRepository{pool: pool}
}

// Create inserts a new consultation and generates its reference.
func (r *PGXConsultationsRepository) Create(ctx context.Context, consultation *entity.Consultation) error {
	if consultation == nil {
		return fmt.Errorf("consultation payload is nil")
	}

	consultation.Reference = newConsultationReference(time.Now())
	status := consultation.Status
	if status == "" {
		status = entity.ConsultationStatusPending
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO consultations (reference, name, email, phone, requested_slot, message, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, status, created_at, updated_at
    `, consultation.Reference, consultation.Name, consultation.Email, consultation.Phone, consultation.RequestedSlot, consultation.Message, status)

	if err := row.Scan(&consultation.ID, &consultation.Status, &consultation.CreatedAt, &consultation.UpdatedAt); err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

// List returns consultations, optionally filtered by status, oldest first.
func (r *PGXConsultationsRepository) List(ctx context.Context, status string) ([]entity.Consultation, error) {
	query := `SELECT id, reference, name, email, phone, requested_slot, message, status, created_at, updated_at FROM consultations`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	defer rows.Close()

	var consultations []entity.Consultation
	for rows.Next() {
		var item entity.Consultation
		if err := rows.Scan(&item.ID, &item.Reference, &item.Name, &item.Email, &item.Phone, &item.RequestedSlot, &item.Message, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan consultation row: %w", err)
		}
		consultations = append(consultations, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consultations: %w", err)
	}
	return consultations, nil
}

// UpdateStatus moves a consultation to a new lifecycle status.
func (r *PGXConsultationsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Consultation, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE consultations SET status = $1, updated_at = NOW() WHERE id = $2
        RETURNING id, reference, name, email, phone, requested_slot, message, status, created_at, updated_at
    `, status, id)

	var item entity.Consultation
	if err := row.Scan(&item.ID, &item.Reference, &item.Name, &item.Email, &item.Phone, &item.RequestedSlot, &item.Message, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsultationNotFound
		}
		return nil, fmt.Errorf("update consultation status: %w", err)
	}
	return &item, nil
}

// Count returns the number of consultations, optionally narrowed to one status.
func (r *PGXConsultationsRepository) Count(ctx context.Context, status string) (int, error) {
	query := "SELECT COUNT(*) FROM consultations"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count consultations: %w", err)
	}
	return count, nil
}
