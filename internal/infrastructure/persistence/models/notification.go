package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/notification"
)

// NotificationModel is the persistence model for the Notification domain entity.
// Exactly one of ReadingID and PaymentID is set, matching Kind.
type NotificationModel struct {
	AggregateModel
	Kind       notification.Kind `gorm:"type:varchar(20);not null;index"`
	ReadingID  *uuid.UUID        `gorm:"type:uuid;index"`
	Reading    *ReadingModel     `gorm:"foreignKey:ReadingID;constraint:OnDelete:CASCADE"`
	PaymentID  *uuid.UUID        `gorm:"type:uuid;index"`
	Payment    *PaymentModel     `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	Note       string            `gorm:"type:varchar(500);not null"`
	Reviewed   bool              `gorm:"not null;default:false;index"`
	ReviewedAt *time.Time
	ReviewedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Kind:              m.Kind,
		ReadingID:         m.ReadingID,
		PaymentID:         m.PaymentID,
		Note:              m.Note,
		Reviewed:          m.Reviewed,
		ReviewedAt:        m.ReviewedAt,
		ReviewedBy:        m.ReviewedBy,
	}
}

// FromDomain populates the persistence model from a domain Notification.
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainAggregateRoot(n.BaseAggregateRoot)
	m.Kind = n.Kind
	m.ReadingID = n.ReadingID
	m.PaymentID = n.PaymentID
	m.Note = n.Note
	m.Reviewed = n.Reviewed
	m.ReviewedAt = n.ReviewedAt
	m.ReviewedBy = n.ReviewedBy
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{}
	m.FromDomain(n)
	return m
}
