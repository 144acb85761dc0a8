package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// ListFilter narrows a notification listing
type ListFilter struct {
	shared.Filter
	Kind     *Kind
	Reviewed *bool
}

// Repository defines the interface for notification persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindAll lists notifications, newest first
	FindAll(ctx context.Context, filter ListFilter) ([]Notification, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Save(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id uuid.UUID) error
}
