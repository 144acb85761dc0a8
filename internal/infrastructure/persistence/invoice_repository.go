package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID without its payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "invoice")
	}
	return model.ToDomain(), nil
}

// FindByIDWithPayments finds an invoice by ID with its payments loaded
func (r *GormInvoiceRepository) FindByIDWithPayments(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return r.findWithPayments(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads an invoice with its payments and locks the invoice
// row until the surrounding transaction ends. Payment writers serialize on it.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return r.findWithPayments(ctx, forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormInvoiceRepository) findWithPayments(ctx context.Context, query *gorm.DB, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, "invoice")
	}

	var payments []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("payment_date ASC").Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return model.ToDomain(payments...), nil
}

// FindByReading finds the invoice issued for a reading
func (r *GormInvoiceRepository) FindByReading(ctx context.Context, readingID uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("reading_id = ?", readingID).First(&model).Error; err != nil {
		return nil, translateNotFound(err, "invoice")
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	query = paginate(invoiceSort.order(query, filter), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByReading checks if a reading was already billed
func (r *GormInvoiceRepository) ExistsByReading(ctx context.Context, readingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("reading_id = ?", readingID).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates an invoice header. Payments are written through
// the payment repository.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	if err := r.db.WithContext(ctx).Save(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewAlreadyExistsError("invoice for reading", inv.ReadingID.String())
		}
		return err
	}
	return nil
}

// SaveWithLock updates an invoice only if nobody else changed it since it was
// loaded. The aggregate has already bumped its version once.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Updates(map[string]any{
			"issue_date":         inv.IssueDate,
			"due_date":           inv.DueDate,
			"total_amount":       inv.TotalAmount,
			"consumption_kwh":    inv.ConsumptionKWh,
			"status":             inv.Status,
			"paid_amount":        inv.PaidAmount,
			"outstanding_amount": inv.OutstandingAmount,
			"version":            inv.Version,
			"updated_at":         inv.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"invoice was modified by another request, please retry")
	}
	return nil
}

// Delete deletes an invoice; its payments and their notices cascade
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.InvoiceModel{}, id, "invoice")
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "reading_id":
			query = query.Where("reading_id = ?", value)
		case "due_before":
			query = query.Where("due_date < ?", value)
		case "overdue_on":
			if today, ok := value.(time.Time); ok {
				query = query.Where("status <> ? AND due_date < ?", billing.InvoiceStatusPaid, billing.OverdueCutoff(today))
			}
		}
	}
	return query
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
