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

	"github.com/octobees/crm-automations/api/internal/dto"
	"github.com/octobees/crm-automations/api/internal/entity"
)

var (
	// ErrLeadNotFound is returned when no lead matches the lookup criteria.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrVersionConflict is returned when an update carries a stale version.
	// Two overlapping sweeps touching the same lead surface as this error.
	ErrVersionConflict = errors.New("lead version conflict")
)

// LeadPatch describes a partial lead mutation. Nil fields are left untouched.
type LeadPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Company        *string
	Phone          *string
	Source         *string
	Industry       *string
	Notes          *string
	Status         *string
	Score          *int
	AssignedTo     *string
	LastFollowUpAt *time.Time
	EscalatedAt    *time.Time
}

// Empty reports whether the patch would change nothing.
func (p LeadPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Company == nil && p.Phone == nil && p.Source == nil &&
		p.Industry == nil && p.Notes == nil && p.Status == nil &&
		p.Score == nil && p.AssignedTo == nil &&
		p.LastFollowUpAt == nil && p.EscalatedAt == nil
}

// ScoreOnly reports whether the patch carries nothing but a recomputed score.
// Score refreshes are bookkeeping, not activity: they must leave updated_at
// alone, otherwise a periodic refresh would keep every idle lead looking
// fresh and the staleness sweeps would never fire.
func (p LeadPatch) ScoreOnly() bool {
	return p.Score != nil &&
		p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Company == nil && p.Phone == nil && p.Source == nil &&
		p.Industry == nil && p.Notes == nil && p.Status == nil &&
		p.AssignedTo == nil && p.LastFollowUpAt == nil && p.EscalatedAt == nil
}

// LeadsRepository declares persistence operations for leads.
//
// Update takes the version the caller last observed; passing nil skips the
// check and applies last-write-wins semantics (manual admin edits only).
type LeadsRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error)
	Update(ctx context.Context, id uuid.UUID, patch LeadPatch, expectedVersion *int64) (*entity.Lead, error)
	Count(ctx context.Context, filter dto.LeadFilter) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

const leadColumns = `id, first_name, last_name, email, company, phone, source, industry, notes,
            status, score, assigned_to, last_follow_up_at, escalated_at, version, created_at, updated_at`

// PGXLeadsRepository implements LeadsRepository with pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository instantiates a Postgres-backed leads repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

// Create inserts a new lead row and fills the generated fields.
func (r *PGXLeadsRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if lead == nil {
		return fmt.Errorf("lead payload is nil")
	}

	status := lead.Status
	if status == "" {
		status = entity.LeadStatusNew
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO leads (first_name, last_name, email, company, phone, source, industry, notes, status, score, assigned_to)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, status, version, created_at, updated_at
    `,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Company,
		lead.Phone,
		lead.Source,
		lead.Industry,
		lead.Notes,
		status,
		lead.Score,
		lead.AssignedTo,
	)

	if err := row.Scan(&lead.ID, &lead.Status, &lead.Version, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// FindByID retrieves a lead by identifier.
func (r *PGXLeadsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead by id: %w", err)
	}
	return lead, nil
}

// List retrieves leads matching the provided filter in insertion order.
func (r *PGXLeadsRepository) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + leadColumns + ` FROM leads`)

	clauses, args, idx := buildLeadClauses(filter)
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}
	query.WriteString(" ORDER BY created_at ASC, id ASC")

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
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// Update applies the patch and bumps the version. updated_at is refreshed
// unless the patch is score-only.
func (r *PGXLeadsRepository) Update(ctx context.Context, id uuid.UUID, patch LeadPatch, expectedVersion *int64) (*entity.Lead, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.FirstName != nil {
		appendSet("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		appendSet("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		appendSet("email", *patch.Email)
	}
	if patch.Company != nil {
		appendSet("company", *patch.Company)
	}
	if patch.Phone != nil {
		appendSet("phone", *patch.Phone)
	}
	if patch.Source != nil {
		appendSet("source", *patch.Source)
	}
	if patch.Industry != nil {
		appendSet("industry", *patch.Industry)
	}
	if patch.Notes != nil {
		appendSet("notes", *patch.Notes)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.Score != nil {
		appendSet("score", *patch.Score)
	}
	if patch.AssignedTo != nil {
		appendSet("assigned_to", *patch.AssignedTo)
	}
	if patch.LastFollowUpAt != nil {
		appendSet("last_follow_up_at", *patch.LastFollowUpAt)
	}
	if patch.EscalatedAt != nil {
		appendSet("escalated_at", *patch.EscalatedAt)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "version = version + 1")
	if !patch.ScoreOnly() {
		setClauses = append(setClauses, "updated_at = NOW()")
	}

	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d", strings.Join(setClauses, ", "), idx)
	args = append(args, id)
	idx++

	if expectedVersion != nil {
		query += fmt.Sprintf(" AND version = $%d", idx)
		args = append(args, *expectedVersion)
	}
	query += " RETURNING " + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if expectedVersion == nil {
				return nil, ErrLeadNotFound
			}
			// Disambiguate a missing row from a lost version race.
			if _, findErr := r.FindByID(ctx, id); findErr != nil {
				return nil, findErr
			}
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// Count returns the number of leads matching the filter.
func (r *PGXLeadsRepository) Count(ctx context.Context, filter dto.LeadFilter) (int, error) {
	query := strings.Builder{}
	query.WriteString("SELECT COUNT(*) FROM leads")

	clauses, args, _ := buildLeadClauses(filter)
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	var count int
	if err := r.pool.QueryRow(ctx, query.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// DeleteAll wipes the lead table and returns how many rows were removed.
func (r *PGXLeadsRepository) DeleteAll(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM leads")
	if err != nil {
		return 0, fmt.Errorf("delete leads: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func buildLeadClauses(filter dto.LeadFilter) ([]string, []any, int) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", idx, idx+1, idx+2, idx+3))
		args = append(args, pattern, pattern, pattern, pattern)
		idx += 4
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", idx))
			args = append(args, strings.ToUpper(strings.TrimSpace(status)))
			idx++
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	} else if filter.AssignedTo != "" {
		clauses = append(clauses, fmt.Sprintf("assigned_to = $%d", idx))
		args = append(args, filter.AssignedTo)
		idx++
	}
	if filter.UpdatedBefore != nil {
		clauses = append(clauses, fmt.Sprintf("updated_at < $%d", idx))
		args = append(args, *filter.UpdatedBefore)
		idx++
	}

	return clauses, args, idx
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var lead entity.Lead
	err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Company,
		&lead.Phone,
		&lead.Source,
		&lead.Industry,
		&lead.Notes,
		&lead.Status,
		&lead.Score,
		&lead.AssignedTo,
		&lead.LastFollowUpAt,
		&lead.EscalatedAt,
		&lead.Version,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
