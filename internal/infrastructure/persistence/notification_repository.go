package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/notification"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notice by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "notification")
	}
	return model.ToDomain(), nil
}

// FindAll lists notices, newest first unless told otherwise
func (r *GormNotificationRepository) FindAll(ctx context.Context, filter notification.ListFilter) ([]notification.Notification, error) {
	var rows []models.NotificationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.NotificationModel{}), filter)
	query = paginate(notificationSort.order(query, filter.Filter), filter.Filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	notices := make([]notification.Notification, len(rows))
	for i := range rows {
		notices[i] = *rows[i].ToDomain()
	}
	return notices, nil
}

// Count counts notices matching the filter
func (r *GormNotificationRepository) Count(ctx context.Context, filter notification.ListFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.NotificationModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a notice
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n)).Error
}

// Delete deletes a notice
func (r *GormNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.NotificationModel{}, id, "notification")
}

func (r *GormNotificationRepository) applyFilter(query *gorm.DB, filter notification.ListFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Reviewed != nil {
		query = query.Where("reviewed = ?", *filter.Reviewed)
	}
	return query
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
