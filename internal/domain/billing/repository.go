package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID, payments not loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDWithPayments finds an invoice and loads its payments
	FindByIDWithPayments(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate row-locks the invoice for the rest of the
	// transaction and loads its payments
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByReading finds the invoice issued for a reading
	FindByReading(ctx context.Context, readingID uuid.UUID) (*Invoice, error)

	// FindAll lists invoices, latest issue date first
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByReading(ctx context.Context, readingID uuid.UUID) (bool, error)

	// Save creates or updates an invoice without a version check
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock updates the invoice only if the stored version is the one
	// it was loaded with. Returns CONCURRENCY_CONFLICT otherwise.
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete removes the invoice; payments cascade
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindAll lists payments, latest payment date first
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
