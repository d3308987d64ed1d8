package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/scholarship-portal-api/internal/dto"
	"github.com/noah-isme/scholarship-portal-api/internal/models"
)

// applicationColumns lists the ledger columns plus the live scholarship join.
// The scholarship is resolved against the current catalog row on every read.
const applicationColumns = `
	a.id, a.urn, a.user_id, a.scholarship_id, a.details, a.status, a.remarks,
	a.transfer_amount, a.reviewed_at, a.reviewed_by, a.funding_decided_at,
	a.funding_decided_by, a.created_at, a.updated_at,
	s.id AS "sch_id", s.title AS "sch_title", s.description AS "sch_description",
	s.eligibility AS "sch_eligibility", s.amount AS "sch_amount",
	s.deadline AS "sch_deadline", s.category AS "sch_category",
	s.active AS "sch_active", s.created_at AS "sch_created_at",
	s.updated_at AS "sch_updated_at"`

const applicationFrom = ` FROM applications a JOIN scholarships s ON s.id = a.scholarship_id`

type applicationRow struct {
	models.Application
	SchID          string    `db:"sch_id"`
	SchTitle       string    `db:"sch_title"`
	SchDescription string    `db:"sch_description"`
	SchEligibility string    `db:"sch_eligibility"`
	SchAmount      int64     `db:"sch_amount"`
	SchDeadline    time.Time `db:"sch_deadline"`
	SchCategory    string    `db:"sch_category"`
	SchActive      bool      `db:"sch_active"`
	SchCreatedAt   time.Time `db:"sch_created_at"`
	SchUpdatedAt   time.Time `db:"sch_updated_at"`
}

func (r applicationRow) toModel() models.Application {
	app := r.Application
	app.Scholarship = &models.Scholarship{
		ID:          r.SchID,
		Title:       r.SchTitle,
		Description: r.SchDescription,
		Eligibility: r.SchEligibility,
		Amount:      r.SchAmount,
		Deadline:    r.SchDeadline,
		Category:    r.SchCategory,
		Active:      r.SchActive,
		CreatedAt:   r.SchCreatedAt,
		UpdatedAt:   r.SchUpdatedAt,
	}
	return app
}

// StatusUpdate captures a single compare-and-swap transition of the ledger.
type StatusUpdate struct {
	ID               string
	From             models.ApplicationStatus
	To               models.ApplicationStatus
	Remarks          string
	TransferAmount   *int64
	ReviewedAt       *time.Time
	ReviewedBy       *string
	FundingDecidedAt *time.Time
	FundingDecidedBy *string
	UpdatedAt        time.Time
}

// ApplicationRepository provides database access for the application ledger.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application, allocating its URN from the per-year
// sequence inside the same transaction so URNs stay unique and monotonic.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = app.CreatedAt

	const seqQuery = `INSERT INTO urn_sequences (year, counter) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET counter = urn_sequences.counter + 1
		RETURNING counter`
	var counter int
	if err := tx.GetContext(ctx, &counter, seqQuery, app.CreatedAt.Year()); err != nil {
		return fmt.Errorf("allocate urn sequence: %w", err)
	}
	app.URN = fmt.Sprintf("SCH-%d-%04d", app.CreatedAt.Year(), counter)

	const insertQuery = `INSERT INTO applications (id, urn, user_id, scholarship_id, details, status, remarks, created_at, updated_at)
		VALUES (:id, :urn, :user_id, :scholarship_id, :details, :status, :remarks, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit tx: %w", err)
	}
	return nil
}

// FindByID returns an application with its current scholarship attached.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT` + applicationColumns + applicationFrom + ` WHERE a.id = $1 LIMIT 1`
	var row applicationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	app := row.toModel()
	return &app, nil
}

// ListByUser returns a user's applications in insertion order.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	query := `SELECT` + applicationColumns + applicationFrom + ` WHERE a.user_id = $1 ORDER BY a.created_at ASC`
	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list applications by user: %w", err)
	}
	return toModels(rows), nil
}

// ListByStatus returns applications in a given lifecycle state in insertion order.
func (r *ApplicationRepository) ListByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.Application, error) {
	query := `SELECT` + applicationColumns + applicationFrom + ` WHERE a.status = $1 ORDER BY a.created_at ASC`
	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, status); err != nil {
		return nil, fmt.Errorf("list applications by status: %w", err)
	}
	return toModels(rows), nil
}

// UpdateStatus applies a transition as a compare-and-swap on the expected
// current status. It returns false when no row matched, meaning either the
// application vanished or a concurrent transition won the race.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, update StatusUpdate) (bool, error) {
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE applications SET
		status = $3,
		remarks = $4,
		transfer_amount = COALESCE($5, transfer_amount),
		reviewed_at = COALESCE($6, reviewed_at),
		reviewed_by = COALESCE($7, reviewed_by),
		funding_decided_at = COALESCE($8, funding_decided_at),
		funding_decided_by = COALESCE($9, funding_decided_by),
		updated_at = $10
		WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query,
		update.ID, update.From, update.To, update.Remarks,
		update.TransferAmount, update.ReviewedAt, update.ReviewedBy,
		update.FundingDecidedAt, update.FundingDecidedBy, update.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update application status rows: %w", err)
	}
	return affected > 0, nil
}

// Stats aggregates the ledger, optionally scoped to one user. The active
// scholarship count is always catalog-wide.
func (r *ApplicationRepository) Stats(ctx context.Context, userID string) (*dto.DashboardStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'FUNDING_APPROVED') AS approved,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
		COALESCE(SUM(transfer_amount) FILTER (WHERE status = 'FUNDING_APPROVED'), 0) AS total_amount
		FROM applications`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}

	var agg struct {
		Total       int   `db:"total"`
		Pending     int   `db:"pending"`
		Approved    int   `db:"approved"`
		Rejected    int   `db:"rejected"`
		TotalAmount int64 `db:"total_amount"`
	}
	if err := r.db.GetContext(ctx, &agg, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate application stats: %w", err)
	}

	return &dto.DashboardStats{
		TotalApplications:    agg.Total,
		PendingApplications:  agg.Pending,
		ApprovedApplications: agg.Approved,
		RejectedApplications: agg.Rejected,
		TotalAmount:          agg.TotalAmount,
	}, nil
}

func toModels(rows []applicationRow) []models.Application {
	apps := make([]models.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toModel())
	}
	return apps
}
