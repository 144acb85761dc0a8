package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "client")
	}
	return model.ToDomain(), nil
}

// FindAll lists clients matching the filter
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Client, error) {
	var rows []models.ClientModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}), filter)
	query = paginate(clientSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	clients := make([]customer.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

// Count counts clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByClientNumber checks if a client number is taken
func (r *GormClientRepository) ExistsByClientNumber(ctx context.Context, clientNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("client_number = ?", clientNumber).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if another client already uses the email
func (r *GormClientRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("email = ?", lower(email))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *customer.Client) error {
	if err := r.db.WithContext(ctx).Save(models.ClientModelFromDomain(client)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewAlreadyExistsError("client", client.ClientNumber)
		}
		return err
	}
	return nil
}

// Delete deletes a client; the database cascades to everything it owns
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ClientModel{}, id, "client")
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		p := searchPattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(client_number) LIKE ? OR email LIKE ?", p, p, p)
	}
	return query
}

var _ customer.ClientRepository = (*GormClientRepository)(nil)
