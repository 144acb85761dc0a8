package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository implements AssignmentRepository using GORM.
// The unique index on contract_id backs the one-tariff-per-contract rule.
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// FindByContract returns the contract's assignment, nil when it has none
func (r *GormAssignmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) (*tariff.Assignment, error) {
	var model models.TariffAssignmentModel
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("assigned_on DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByContract counts the contract's assignments
func (r *GormAssignmentRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TariffAssignmentModel{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	return count, err
}

// Create inserts an assignment. A unique key collision means the contract
// was assigned concurrently.
func (r *GormAssignmentRepository) Create(ctx context.Context, a *tariff.Assignment) error {
	if err := r.db.WithContext(ctx).Create(models.TariffAssignmentModelFromDomain(a)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeDuplicateAssignment, "Contract already has a tariff assigned")
		}
		return err
	}
	return nil
}

// DeleteByContract removes every assignment of the contract
func (r *GormAssignmentRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&models.TariffAssignmentModel{})
	return result.RowsAffected, result.Error
}

var _ tariff.AssignmentRepository = (*GormAssignmentRepository)(nil)
