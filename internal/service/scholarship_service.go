package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
)

type scholarshipRepository interface {
	ListActive(ctx context.Context) ([]models.Scholarship, error)
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
	Create(ctx context.Context, scholarship *models.Scholarship) error
	Count(ctx context.Context) (int, error)
}

// ScholarshipService exposes the scholarship catalog.
type ScholarshipService struct {
	repo   scholarshipRepository
	logger *zap.Logger
}

// NewScholarshipService constructs a ScholarshipService.
func NewScholarshipService(repo scholarshipRepository, logger *zap.Logger) *ScholarshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScholarshipService{repo: repo, logger: logger}
}

// List returns all active scholarships.
func (s *ScholarshipService) List(ctx context.Context) ([]models.Scholarship, error) {
	scholarships, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scholarships")
	}
	return scholarships, nil
}

// Get returns a scholarship by id.
func (s *ScholarshipService) Get(ctx context.Context, id string) (*models.Scholarship, error) {
	scholarship, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship")
	}
	return scholarship, nil
}

// Seed inserts the default catalog when the table is empty. It is safe to
// call on every startup.
func (s *ScholarshipService) Seed(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect catalog")
	}
	if count > 0 {
		return nil
	}

	for i := range defaultCatalog {
		entry := defaultCatalog[i]
		if err := s.repo.Create(ctx, &entry); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed catalog")
		}
		s.logger.Info("seeded scholarship", zap.String("title", entry.Title))
	}
	return nil
}

var defaultCatalog = []models.Scholarship{
	{
		Title:       "National Merit Scholarship",
		Description: "Scholarship for academically excellent students with financial need",
		Eligibility: "Above 75% marks, Annual family income below ₹5 lakhs",
		Amount:      50000,
		Deadline:    time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		Category:    "Merit-based",
		Active:      true,
	},
	{
		Title:       "Minority Community Scholarship",
		Description: "Support for students from minority communities",
		Eligibility: "Above 60% marks, Belong to minority community",
		Amount:      30000,
		Deadline:    time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
		Category:    "Community-based",
		Active:      true,
	},
	{
		Title:       "Sports Excellence Scholarship",
		Description: "For students excelling in sports at state/national level",
		Eligibility: "State/National level sports achievement, Above 50% marks",
		Amount:      75000,
		Deadline:    time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		Category:    "Sports",
		Active:      true,
	},
}
