package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
	"github.com/noah-isme/scholarship-portal-api/internal/repository"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
)

type applicationRepositoryIface interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]models.Application, error)
	ListByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.Application, error)
	UpdateStatus(ctx context.Context, update repository.StatusUpdate) (bool, error)
}

type scholarshipFinder interface {
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type statusNotifier interface {
	NotifyStatusChange(app *models.Application, previous models.ApplicationStatus)
}

// TransitionRequest carries everything needed to move an application through
// the state machine. Actor fields come from the authenticated bureau user.
type TransitionRequest struct {
	ApplicationID  string
	Target         models.ApplicationStatus
	Remarks        string
	TransferAmount *int64
	ActorID        string
	ActorName      string
	ActorRole      models.UserRole
	IP             string
	UserAgent      string
}

// ApplicationService enforces the application lifecycle.
type ApplicationService struct {
	repo         applicationRepositoryIface
	scholarships scholarshipFinder
	users        userFinder
	cache        *CacheService
	notifier     statusNotifier
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// ApplicationServiceParams groups constructor dependencies.
type ApplicationServiceParams struct {
	Repo         applicationRepositoryIface
	Scholarships scholarshipFinder
	Users        userFinder
	Cache        *CacheService
	Notifier     statusNotifier
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(params ApplicationServiceParams) *ApplicationService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{
		repo:         params.Repo,
		scholarships: params.Scholarships,
		users:        params.Users,
		cache:        params.Cache,
		notifier:     params.Notifier,
		metrics:      params.Metrics,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit creates a PENDING application for an active scholarship.
func (s *ApplicationService) Submit(ctx context.Context, userID, scholarshipID string, details models.ApplicantDetails) (*models.Application, error) {
	if err := s.validator.Struct(details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid applicant details")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify user")
	}

	scholarship, err := s.scholarships.FindByID(ctx, scholarshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship")
	}
	if !scholarship.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
	}

	now := s.now().UTC()
	app := &models.Application{
		UserID:        userID,
		ScholarshipID: scholarship.ID,
		Details:       details,
		Status:        models.StatusPending,
		Remarks:       "",
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	app.Scholarship = scholarship

	s.audit(ctx, &userID, models.AuditActionApplicationSubmit, app.ID, map[string]interface{}{
		"urn":            app.URN,
		"scholarship_id": scholarship.ID,
	}, "", "")
	s.invalidateStats(ctx)
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(app, "")
	}

	return app, nil
}

// Transition moves an application through the state machine, enforcing the
// transition table, actor role gating, and per-transition validation.
func (s *ApplicationService) Transition(ctx context.Context, req TransitionRequest) (*models.Application, error) {
	if !req.Target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Target))
	}

	app, err := s.repo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}

	requiredRole, permitted := models.TransitionRole(app.Status, req.Target)
	if !permitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", app.Status, req.Target))
	}
	if req.ActorRole != requiredRole {
		return nil, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("transition to %s requires role %s", req.Target, requiredRole))
	}

	if req.Target == models.StatusRejected && req.Remarks == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remarks are required when rejecting an application")
	}

	now := s.now().UTC()
	update := repository.StatusUpdate{
		ID:        app.ID,
		From:      app.Status,
		To:        req.Target,
		Remarks:   req.Remarks,
		UpdatedAt: now,
	}

	switch req.Target {
	case models.StatusReviewApproved:
		update.ReviewedAt = &now
		update.ReviewedBy = &req.ActorName
	case models.StatusFundingApproved:
		if req.TransferAmount == nil || *req.TransferAmount <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a positive transfer amount is required for funding approval")
		}
		update.TransferAmount = req.TransferAmount
		update.FundingDecidedAt = &now
		update.FundingDecidedBy = &req.ActorName
	case models.StatusRejected:
		// Remarks already checked; reviewer stamp depends on the stage.
		if app.Status == models.StatusPending {
			update.ReviewedAt = &now
			update.ReviewedBy = &req.ActorName
		} else {
			update.FundingDecidedAt = &now
			update.FundingDecidedBy = &req.ActorName
		}
	}

	applied, err := s.repo.UpdateStatus(ctx, update)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	if !applied {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "application status changed concurrently")
	}

	updated, err := s.repo.FindByID(ctx, app.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload application")
	}

	s.audit(ctx, &req.ActorID, models.AuditActionStatusTransition, app.ID, map[string]interface{}{
		"urn":  app.URN,
		"from": app.Status,
		"to":   req.Target,
	}, req.IP, req.UserAgent)
	if s.metrics != nil {
		s.metrics.RecordTransition(string(req.Target))
	}
	s.invalidateStats(ctx)
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(updated, app.Status)
	}

	return updated, nil
}

// ListByUser returns a user's applications in submission order.
func (s *ApplicationService) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	apps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// ListPendingForReview returns the review bureau queue.
func (s *ApplicationService) ListPendingForReview(ctx context.Context) ([]models.Application, error) {
	apps, err := s.repo.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending applications")
	}
	return apps, nil
}

// ListApprovedForFunding returns the funding bureau queue.
func (s *ApplicationService) ListApprovedForFunding(ctx context.Context) ([]models.Application, error) {
	apps, err := s.repo.ListByStatus(ctx, models.StatusReviewApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved applications")
	}
	return apps, nil
}

// Get returns a single application by id.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	return app, nil
}

func (s *ApplicationService) audit(ctx context.Context, userID *string, action, resourceID string, values map[string]interface{}, ip, agent string) {
	payload, _ := json.Marshal(values)
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "application",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  ip,
		UserAgent:  agent,
	}); err != nil {
		s.logger.Warn("failed to record application audit log", zap.Error(err))
	}
}

func (s *ApplicationService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
