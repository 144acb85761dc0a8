package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "payment")
	}
	return model.ToDomain(), nil
}

// FindAll lists payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Payment, error) {
	var rows []models.PaymentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentModel{}), filter)
	query = paginate(paymentSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentModel{}), filter).Count(&count).Error
	return count, err
}

// FindByInvoice lists an invoice's payments, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	if err := r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(p)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewAlreadyExistsError("payment reference", p.ReferenceNumber)
		}
		return err
	}
	return nil
}

// Update rewrites a payment's fields
func (r *GormPaymentRepository) Update(ctx context.Context, p *billing.Payment) error {
	result := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"payment_date":     p.PaymentDate,
			"amount_paid":      p.AmountPaid,
			"method":           p.Method,
			"reference_number": p.ReferenceNumber,
			"status":           p.Status,
			"updated_at":       p.UpdatedAt,
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return shared.NewAlreadyExistsError("payment reference", p.ReferenceNumber)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("payment")
	}
	return nil
}

// Delete deletes a payment; its debt notices cascade
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.PaymentModel{}, id, "payment")
}

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		case "method":
			query = query.Where("method = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

func toPayments(rows []models.PaymentModel) []billing.Payment {
	payments := make([]billing.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
