package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTariffRepository implements TariffRepository using GORM
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// FindByID finds a tariff by its ID
func (r *GormTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*tariff.Tariff, error) {
	var model models.TariffModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "tariff")
	}
	return model.ToDomain(), nil
}

// FindAll lists tariffs matching the filter
func (r *GormTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tariff.Tariff, error) {
	var rows []models.TariffModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TariffModel{}), filter)
	query = paginate(tariffSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	tariffs := make([]tariff.Tariff, len(rows))
	for i := range rows {
		tariffs[i] = *rows[i].ToDomain()
	}
	return tariffs, nil
}

// Count counts tariffs matching the filter
func (r *GormTariffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TariffModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a tariff
func (r *GormTariffRepository) Save(ctx context.Context, t *tariff.Tariff) error {
	return r.db.WithContext(ctx).Save(models.TariffModelFromDomain(t)).Error
}

// Delete deletes a tariff; assignments referencing it cascade
func (r *GormTariffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.TariffModel{}, id, "tariff")
}

func (r *GormTariffRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "season":
			query = query.Where("season = ?", value)
		case "client_class":
			query = query.Where("client_class = ?", value)
		}
	}
	return query
}

var _ tariff.TariffRepository = (*GormTariffRepository)(nil)
