package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "contract")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a contract and locks its row until the transaction ends
func (r *GormContractRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*customer.Contract, error) {
	var model models.ContractModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "contract")
	}
	return model.ToDomain(), nil
}

// FindAll lists contracts matching the filter
func (r *GormContractRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Contract, error) {
	var rows []models.ContractModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)
	query = paginate(contractSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	contracts := make([]customer.Contract, len(rows))
	for i := range rows {
		contracts[i] = *rows[i].ToDomain()
	}
	return contracts, nil
}

// Count counts contracts matching the filter
func (r *GormContractRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByContractNumber checks if a contract number is taken
func (r *GormContractRepository) ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("contract_number = ?", contractNumber).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *customer.Contract) error {
	if err := r.db.WithContext(ctx).Save(models.ContractModelFromDomain(contract)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewAlreadyExistsError("contract", contract.ContractNumber)
		}
		return err
	}
	return nil
}

// Delete deletes a contract; meters, readings and assignments cascade
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ContractModel{}, id, "contract")
}

func (r *GormContractRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(contract_number) LIKE ?", searchPattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

var _ customer.ContractRepository = (*GormContractRepository)(nil)
