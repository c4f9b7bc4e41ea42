package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead statuses form a small fixed set; "open" is the default on creation.
const (
	LeadStatusOpen      = "open"
	LeadStatusContacted = "contacted"
	LeadStatusClosed    = "closed"
)

type Lead struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Phone      string
	Status     string
	AssignedTo uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LeadUpdate carries a partial update; nil fields are left unchanged.
type LeadUpdate struct {
	Name       *string
	Email      *string
	Phone      *string
	Status     *string
	AssignedTo *uuid.UUID
}

type LeadRepository struct {
	db *DB
}

func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead and fills in the server-assigned timestamps.
func (r *LeadRepository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, status, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Status, lead.AssignedTo,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := `
		SELECT id, name, email, phone, status, assigned_to, created_at, updated_at
		FROM leads
		WHERE id = $1
	`

	lead := &Lead{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Status,
		&lead.AssignedTo, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	return lead, nil
}

// List returns leads newest-first along with the total count.
func (r *LeadRepository) List(ctx context.Context, limit, offset int) ([]Lead, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, email, phone, status, assigned_to, created_at, updated_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status,
			&l.AssignedTo, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// Update applies a partial update and returns the resulting row.
// COALESCE keeps columns whose update field is nil.
func (r *LeadRepository) Update(ctx context.Context, id uuid.UUID, update *LeadUpdate) (*Lead, error) {
	query := `
		UPDATE leads
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    status = COALESCE($5, status),
		    assigned_to = COALESCE($6, assigned_to),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, email, phone, status, assigned_to, created_at, updated_at
	`

	lead := &Lead{}
	err := r.db.QueryRowContext(ctx, query,
		id, update.Name, update.Email, update.Phone, update.Status, update.AssignedTo,
	).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Status,
		&lead.AssignedTo, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	return lead, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrLeadNotFound
	}

	return nil
}
