package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReadingRepository implements ReadingRepository using GORM
type GormReadingRepository struct {
	db *gorm.DB
}

// NewGormReadingRepository creates a new GormReadingRepository
func NewGormReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

// FindByID finds a reading by its ID
func (r *GormReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "reading")
	}
	return model.ToDomain(), nil
}

// FindAll lists readings matching the filter
func (r *GormReadingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]metering.Reading, error) {
	var rows []models.ReadingModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReadingModel{}), filter)
	query = paginate(readingSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReadings(rows), nil
}

// Count counts readings matching the filter
func (r *GormReadingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReadingModel{}), filter).Count(&count).Error
	return count, err
}

// FindHistory returns up to limit earlier readings of the meter, newest first
func (r *GormReadingRepository) FindHistory(ctx context.Context, meterID uuid.UUID, before time.Time, excludeID uuid.UUID, limit int) ([]metering.Reading, error) {
	var rows []models.ReadingModel
	err := r.db.WithContext(ctx).
		Where("meter_id = ? AND reading_date < ? AND id <> ?", meterID, before, excludeID).
		Order("reading_date DESC").Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReadings(rows), nil
}

// FindPrevious returns the latest reading on or before date, nil when none
func (r *GormReadingRepository) FindPrevious(ctx context.Context, meterID uuid.UUID, date time.Time, excludeID uuid.UUID) (*metering.Reading, error) {
	return r.findNeighbour(ctx,
		r.db.WithContext(ctx).
			Where("meter_id = ? AND reading_date <= ? AND id <> ?", meterID, date, excludeID).
			Order("reading_date DESC").Order("current_value DESC"))
}

// FindNext returns the earliest reading after date, nil when none
func (r *GormReadingRepository) FindNext(ctx context.Context, meterID uuid.UUID, date time.Time, excludeID uuid.UUID) (*metering.Reading, error) {
	return r.findNeighbour(ctx,
		r.db.WithContext(ctx).
			Where("meter_id = ? AND reading_date > ? AND id <> ?", meterID, date, excludeID).
			Order("reading_date ASC").Order("current_value ASC"))
}

func (r *GormReadingRepository) findNeighbour(_ context.Context, query *gorm.DB) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := query.Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a reading
func (r *GormReadingRepository) Save(ctx context.Context, reading *metering.Reading) error {
	return r.db.WithContext(ctx).Save(models.ReadingModelFromDomain(reading)).Error
}

// Delete deletes a reading; its invoice and notifications cascade
func (r *GormReadingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ReadingModel{}, id, "reading")
}

func (r *GormReadingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "meter_id":
			query = query.Where("meter_id = ?", value)
		case "kind":
			query = query.Where("kind = ?", value)
		case "from":
			query = query.Where("reading_date >= ?", value)
		case "to":
			query = query.Where("reading_date <= ?", value)
		}
	}
	return query
}

func toReadings(rows []models.ReadingModel) []metering.Reading {
	readings := make([]metering.Reading, len(rows))
	for i := range rows {
		readings[i] = *rows[i].ToDomain()
	}
	return readings
}

var _ metering.ReadingRepository = (*GormReadingRepository)(nil)
