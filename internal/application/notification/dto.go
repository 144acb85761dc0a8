package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/notification"
)

// CreateNotificationRequest is the payload to raise a notice by hand
type CreateNotificationRequest struct {
	Kind        string    `json:"kind" binding:"required,oneof=READING PAYMENT"`
	ReferenceID uuid.UUID `json:"reference_id" binding:"required"`
	Note        string    `json:"note" binding:"required,max=500"`
}

// NotificationListFilter narrows a notification listing
type NotificationListFilter struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=READING PAYMENT"`
	Reviewed *bool  `form:"reviewed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// NotificationResponse is a notice in API responses
type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	ReadingID  *uuid.UUID `json:"reading_id,omitempty"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	Note       string     `json:"note"`
	Reviewed   bool       `json:"reviewed"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy *uuid.UUID `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notice to a response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Kind:       string(n.Kind),
		ReadingID:  n.ReadingID,
		PaymentID:  n.PaymentID,
		Note:       n.Note,
		Reviewed:   n.Reviewed,
		ReviewedAt: n.ReviewedAt,
		ReviewedBy: n.ReviewedBy,
		CreatedAt:  n.CreatedAt,
	}
}
