package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
	"github.com/noah-isme/scholarship-portal-api/pkg/jobs"
)

// StatusChangeEvent is the payload: one per submission or transition.
type StatusChangeEvent struct {
	ApplicationID string                   `json:"application_id"`
	URN           string                   `json:"urn"`
	UserID        string                   `json:"user_id"`
	From          models.ApplicationStatus `json:"from,omitempty"`
	To            models.ApplicationStatus `json:"to"`
	Scholarship   string                   `json:"scholarship"`
}

// NotificationService fans application status changes out to an in-process
// worker queue. The current handler records the event; a mail or SMS gateway
// would hang off the same queue.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the notifier and its queue.
func NewNotificationService(cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{logger: logger}
	s.queue = jobs.NewQueue("status-notifications", s.handle, cfg)
	return s
}

// Start begins queue consumption.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyStatusChange enqueues a notification for the given application.
// previous is empty for fresh submissions.
func (s *NotificationService) NotifyStatusChange(app *models.Application, previous models.ApplicationStatus) {
	if app == nil {
		return
	}
	event := StatusChangeEvent{
		ApplicationID: app.ID,
		URN:           app.URN,
		UserID:        app.UserID,
		From:          previous,
		To:            app.Status,
	}
	if app.Scholarship != nil {
		event.Scholarship = app.Scholarship.Title
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "status-change",
		Payload: event,
	}); err != nil {
		s.logger.Warn("failed to enqueue status notification", zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(StatusChangeEvent)
	if !ok {
		s.logger.Warn("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	s.logger.Info("application status changed",
		zap.String("urn", event.URN),
		zap.String("user_id", event.UserID),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)),
		zap.String("scholarship", event.Scholarship),
	)
	return nil
}
