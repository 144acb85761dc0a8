package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMeterRepository implements MeterRepository using GORM
type GormMeterRepository struct {
	db *gorm.DB
}

// NewGormMeterRepository creates a new GormMeterRepository
func NewGormMeterRepository(db *gorm.DB) *GormMeterRepository {
	return &GormMeterRepository{db: db}
}

// FindByID finds a meter by its ID
func (r *GormMeterRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Meter, error) {
	var model models.MeterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "meter")
	}
	return model.ToDomain(), nil
}

// FindAll lists meters matching the filter
func (r *GormMeterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]metering.Meter, error) {
	var rows []models.MeterModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeterModel{}), filter)
	query = paginate(meterSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	meters := make([]metering.Meter, len(rows))
	for i := range rows {
		meters[i] = *rows[i].ToDomain()
	}
	return meters, nil
}

// Count counts meters matching the filter
func (r *GormMeterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeterModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByMeterNumber checks if a meter number is taken
func (r *GormMeterRepository) ExistsByMeterNumber(ctx context.Context, meterNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MeterModel{}).
		Where("meter_number = ?", meterNumber).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a meter
func (r *GormMeterRepository) Save(ctx context.Context, meter *metering.Meter) error {
	if err := r.db.WithContext(ctx).Save(models.MeterModelFromDomain(meter)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewAlreadyExistsError("meter", meter.MeterNumber)
		}
		return err
	}
	return nil
}

// Delete deletes a meter; its readings cascade
func (r *GormMeterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.MeterModel{}, id, "meter")
}

func (r *GormMeterRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		p := searchPattern(filter.Search)
		query = query.Where("LOWER(meter_number) LIKE ? OR LOWER(location) LIKE ?", p, p)
	}
	for key, value := range filter.Filters {
		switch key {
		case "contract_id":
			query = query.Where("contract_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

var _ metering.MeterRepository = (*GormMeterRepository)(nil)
