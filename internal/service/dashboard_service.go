package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scholarship-portal-api/internal/dto"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
)

type statsRepository interface {
	Stats(ctx context.Context, userID string) (*dto.DashboardStats, error)
}

type activeCatalogCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// DashboardService computes aggregate portal statistics.
type DashboardService struct {
	applications statsRepository
	scholarships activeCatalogCounter
	cache        *CacheService
	logger       *zap.Logger
	cacheTTL     time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(applications statsRepository, scholarships activeCatalogCounter, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		applications: applications,
		scholarships: scholarships,
		cache:        cache,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

// Stats returns ledger aggregates, optionally scoped to one user, and
// indicates whether the cache served the result. The active scholarship
// count is catalog-wide regardless of scope.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*dto.DashboardStats, bool, error) {
	cacheKey := "dash:stats:all"
	if userID != "" {
		cacheKey = fmt.Sprintf("dash:stats:user:%s", userID)
	}

	if s.cache != nil {
		var cached dto.DashboardStats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.applications.Stats(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}

	active, err := s.scholarships.CountActive(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count scholarships")
	}
	stats.ActiveScholarships = active

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return stats, false, nil
}
