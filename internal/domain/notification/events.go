package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeNotification = "Notification"

// Event type constants
const (
	EventTypeNotificationRaised   = "NotificationRaised"
	EventTypeNotificationReviewed = "NotificationReviewed"
)

// NotificationRaisedEvent is published when a notice is created
type NotificationRaisedEvent struct {
	shared.BaseDomainEvent
	Kind        Kind      `json:"kind"`
	ReferenceID uuid.UUID `json:"reference_id"`
}

// NewNotificationRaisedEvent creates a new NotificationRaisedEvent
func NewNotificationRaisedEvent(n *Notification) *NotificationRaisedEvent {
	return &NotificationRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotificationRaised, AggregateTypeNotification, n.ID),
		Kind:            n.Kind,
		ReferenceID:     n.ReferenceID(),
	}
}

// NotificationReviewedEvent is published when a notice is acknowledged
type NotificationReviewedEvent struct {
	shared.BaseDomainEvent
	Kind       Kind       `json:"kind"`
	ReviewedAt time.Time  `json:"reviewed_at"`
	ReviewedBy *uuid.UUID `json:"reviewed_by,omitempty"`
}

// NewNotificationReviewedEvent creates a new NotificationReviewedEvent
func NewNotificationReviewedEvent(n *Notification) *NotificationReviewedEvent {
	e := &NotificationReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotificationReviewed, AggregateTypeNotification, n.ID),
		Kind:            n.Kind,
		ReviewedBy:      n.ReviewedBy,
	}
	if n.ReviewedAt != nil {
		e.ReviewedAt = *n.ReviewedAt
	}
	return e
}
