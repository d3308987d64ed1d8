package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
)

// ScholarshipRepository provides database access for the scholarship catalog.
type ScholarshipRepository struct {
	db *sqlx.DB
}

// NewScholarshipRepository creates a new instance of ScholarshipRepository.
func NewScholarshipRepository(db *sqlx.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db: db}
}

// ListActive returns all active scholarships ordered by creation time.
func (r *ScholarshipRepository) ListActive(ctx context.Context) ([]models.Scholarship, error) {
	const query = `SELECT id, title, description, eligibility, amount, deadline, category, active, created_at, updated_at FROM scholarships WHERE active = TRUE ORDER BY created_at ASC`
	var scholarships []models.Scholarship
	if err := r.db.SelectContext(ctx, &scholarships, query); err != nil {
		return nil, fmt.Errorf("list active scholarships: %w", err)
	}
	return scholarships, nil
}

// FindByID returns a scholarship by identifier, active or not.
func (r *ScholarshipRepository) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	const query = `SELECT id, title, description, eligibility, amount, deadline, category, active, created_at, updated_at FROM scholarships WHERE id = $1 LIMIT 1`
	var scholarship models.Scholarship
	if err := r.db.GetContext(ctx, &scholarship, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find scholarship by id: %w", err)
	}
	return &scholarship, nil
}

// Create inserts a new scholarship.
func (r *ScholarshipRepository) Create(ctx context.Context, scholarship *models.Scholarship) error {
	if scholarship.ID == "" {
		scholarship.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if scholarship.CreatedAt.IsZero() {
		scholarship.CreatedAt = now
	}
	scholarship.UpdatedAt = now

	const query = `INSERT INTO scholarships (id, title, description, eligibility, amount, deadline, category, active, created_at, updated_at) VALUES (:id, :title, :description, :eligibility, :amount, :deadline, :category, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, scholarship); err != nil {
		return fmt.Errorf("create scholarship: %w", err)
	}
	return nil
}

// CountActive returns the number of active catalog entries.
func (r *ScholarshipRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM scholarships WHERE active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count active scholarships: %w", err)
	}
	return count, nil
}

// Count returns the total number of catalog entries regardless of the
// active flag, used to decide whether startup seeding is needed.
func (r *ScholarshipRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM scholarships`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count scholarships: %w", err)
	}
	return count, nil
}
