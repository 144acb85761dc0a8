package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/notification"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// NotificationService raises notices and lets operators review them
type NotificationService struct {
	repo           notification.Repository
	readingRepo    metering.ReadingRepository
	paymentRepo    billing.PaymentRepository
	guard          *appidentity.AccessGuard
	metrics        *telemetry.Metrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	repo notification.Repository,
	readingRepo metering.ReadingRepository,
	paymentRepo billing.PaymentRepository,
	guard *appidentity.AccessGuard,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *NotificationService {
	if metrics == nil {
		metrics = telemetry.NewNopMetrics()
	}
	return &NotificationService{
		repo:        repo,
		readingRepo: readingRepo,
		paymentRepo: paymentRepo,
		guard:       guard,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher for notification events
func (s *NotificationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Raise creates an unreviewed notice about a reading or a payment. The
// referenced record must exist. Used by the event handlers; operators go
// through Create.
func (s *NotificationService) Raise(ctx context.Context, kind notification.Kind, refID uuid.UUID, note string) (*NotificationResponse, error) {
	if err := s.checkReference(ctx, kind, refID); err != nil {
		return nil, err
	}

	n, err := notification.New(kind, refID, note)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, err
	}

	s.metrics.NotificationsRaised.WithLabelValues(string(kind)).Inc()
	s.logger.Info("Notification raised",
		zap.String("notification_id", n.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("reference_id", refID.String()))
	s.publishDomainEvents(ctx, n)

	response := ToNotificationResponse(n)
	return &response, nil
}

// Create raises a notice on behalf of an operator
func (s *NotificationService) Create(ctx context.Context, actor identity.Actor, req CreateNotificationRequest) (*NotificationResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleNotifications, appidentity.ActionWrite); err != nil {
		return nil, err
	}
	kind, err := notification.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	return s.Raise(ctx, kind, req.ReferenceID, req.Note)
}

// Get retrieves a notice
func (s *NotificationService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*NotificationResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleNotifications, appidentity.ActionRead); err != nil {
		return nil, err
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToNotificationResponse(n)
	return &response, nil
}

// List lists notices, newest first
func (s *NotificationService) List(ctx context.Context, actor identity.Actor, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleNotifications, appidentity.ActionRead); err != nil {
		return nil, 0, err
	}

	listFilter := notification.ListFilter{Filter: shared.DefaultFilter(), Reviewed: filter.Reviewed}
	if filter.Page > 0 {
		listFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		listFilter.PageSize = filter.PageSize
	}
	if filter.Kind != "" {
		kind, err := notification.ParseKind(filter.Kind)
		if err != nil {
			return nil, 0, err
		}
		listFilter.Kind = &kind
	}

	notices, err := s.repo.FindAll(ctx, listFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, listFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]NotificationResponse, len(notices))
	for i := range notices {
		responses[i] = ToNotificationResponse(&notices[i])
	}
	return responses, total, nil
}

// MarkReviewed acknowledges a notice. The actor needs the notifications
// module and a role allowed to review the notice's kind. Reviewing a notice
// twice returns it unchanged.
func (s *NotificationService) MarkReviewed(ctx context.Context, actor identity.Actor, id uuid.UUID) (*NotificationResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleNotifications, appidentity.ActionRead); err != nil {
		return nil, err
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeReview(ctx, actor, n.Kind); err != nil {
		return nil, err
	}

	changed, err := n.MarkReviewed(actor, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.repo.Save(ctx, n); err != nil {
			return nil, err
		}
		s.logger.Info("Notification reviewed",
			zap.String("notification_id", n.ID.String()),
			zap.String("user_id", actor.UserID.String()))
		s.publishDomainEvents(ctx, n)
	}

	response := ToNotificationResponse(n)
	return &response, nil
}

// Delete removes a notice
func (s *NotificationService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleNotifications, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Notification deleted", zap.String("notification_id", id.String()))
	return nil
}

func (s *NotificationService) checkReference(ctx context.Context, kind notification.Kind, refID uuid.UUID) error {
	switch kind {
	case notification.KindReading:
		_, err := s.readingRepo.FindByID(ctx, refID)
		return err
	case notification.KindPayment:
		_, err := s.paymentRepo.FindByID(ctx, refID)
		return err
	}
	return shared.NewValidationError("kind", "must be READING or PAYMENT")
}

func (s *NotificationService) publishDomainEvents(ctx context.Context, n *notification.Notification) {
	events := n.GetDomainEvents()
	n.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish notification events",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err))
	}
}
