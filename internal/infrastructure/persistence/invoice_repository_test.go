package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordPayment(t *testing.T, repo *GormInvoiceRepository, payments *GormPaymentRepository, invoiceID uuid.UUID, amount, ref string) *billing.Invoice {
	t.Helper()
	ctx := context.Background()

	inv, err := repo.FindByIDForUpdate(ctx, invoiceID)
	require.NoError(t, err)
	p, err := billing.NewPayment(inv.ID, billing.PaymentDetails{
		PaymentDate:     testToday,
		AmountPaid:      dec(amount),
		Method:          billing.PaymentMethodCash,
		ReferenceNumber: ref,
	}, testToday)
	require.NoError(t, err)
	require.NoError(t, inv.AddPayment(p))
	require.NoError(t, payments.Create(ctx, p))
	require.NoError(t, repo.SaveWithLock(ctx, inv))
	return inv
}

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "001")
	repo := NewGormInvoiceRepository(db)

	inv := seedInvoice(t, db, fx.reading.ID, "100.00")

	found, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(found.TotalAmount))
	assert.Equal(t, billing.InvoiceStatusPending, found.Status)
	assert.Equal(t, 1, found.Version)

	byReading, err := repo.FindByReading(ctx, fx.reading.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byReading.ID)

	exists, err := repo.ExistsByReading(ctx, fx.reading.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormInvoiceRepository_OneInvoicePerReading(t *testing.T) {
	db := newTestDB(t)
	fx := seedChain(t, db, "002")
	seedInvoice(t, db, fx.reading.ID, "100.00")

	second, err := billing.NewInvoice(fx.reading.ID, testToday, testToday.AddDate(0, 0, 15), dec("50"), 10)
	require.NoError(t, err)

	err = NewGormInvoiceRepository(db).Save(context.Background(), second)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestGormInvoiceRepository_PaymentsReconcile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "003")
	repo := NewGormInvoiceRepository(db)
	payments := NewGormPaymentRepository(db)
	inv := seedInvoice(t, db, fx.reading.ID, "100.00")

	recordPayment(t, repo, payments, inv.ID, "40", "REF-1")

	loaded, err := repo.FindByIDWithPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, loaded.Status)
	assert.True(t, dec("40").Equal(loaded.PaidAmount))
	assert.True(t, dec("60").Equal(loaded.OutstandingAmount))
	require.Len(t, loaded.Payments, 1)
	assert.Equal(t, billing.PaymentStatusNotFullyPaid, loaded.Payments[0].Status)

	recordPayment(t, repo, payments, inv.ID, "60", "REF-2")

	loaded, err = repo.FindByIDWithPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, loaded.Status)
	assert.True(t, loaded.OutstandingAmount.IsZero())
	assert.Len(t, loaded.Payments, 2)
	assert.Equal(t, 3, loaded.Version)
}

func TestGormInvoiceRepository_SaveWithLockConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "004")
	repo := NewGormInvoiceRepository(db)
	inv := seedInvoice(t, db, fx.reading.ID, "100.00")

	first, err := repo.FindByIDWithPayments(ctx, inv.ID)
	require.NoError(t, err)
	stale, err := repo.FindByIDWithPayments(ctx, inv.ID)
	require.NoError(t, err)

	require.NoError(t, first.Revise(first.IssueDate, first.DueDate, dec("120"), 120))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, stale.Revise(stale.IssueDate, stale.DueDate, dec("90"), 90))
	err = repo.SaveWithLock(ctx, stale)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	current, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("120").Equal(current.TotalAmount))
}

func TestGormInvoiceRepository_List(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGormInvoiceRepository(db)

	a := seedChain(t, db, "005")
	b := seedChain(t, db, "006")
	seedInvoice(t, db, a.reading.ID, "100.00")
	paid := seedInvoice(t, db, b.reading.ID, "10.00")
	recordPayment(t, repo, NewGormPaymentRepository(db), paid.ID, "10", "REF-PAID")

	filter := shared.DefaultFilter()
	filter.Filters["status"] = string(billing.InvoiceStatusPaid)

	list, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, paid.ID, list[0].ID)

	total, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Both fall due 15 days after testToday; only the unpaid one is overdue
	overdue := shared.DefaultFilter()
	overdue.Filters["overdue_on"] = testToday.AddDate(0, 0, 16)
	list, err = repo.FindAll(ctx, overdue)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, paid.ID, list[0].ID)

	overdue.Filters["overdue_on"] = testToday.AddDate(0, 0, 15)
	total, err = repo.Count(ctx, overdue)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGormPaymentRepository_DuplicateReference(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "007")
	inv := seedInvoice(t, db, fx.reading.ID, "100.00")
	repo := NewGormPaymentRepository(db)

	details := billing.PaymentDetails{
		PaymentDate:     testToday,
		AmountPaid:      dec("10"),
		Method:          billing.PaymentMethodCard,
		ReferenceNumber: "DUP",
	}
	p1, err := billing.NewPayment(inv.ID, details, testToday)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p1))

	p2, err := billing.NewPayment(inv.ID, details, testToday)
	require.NoError(t, err)
	err = repo.Create(ctx, p2)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestGormPaymentRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "008")
	inv := seedInvoice(t, db, fx.reading.ID, "100.00")
	repo := NewGormPaymentRepository(db)

	p, err := billing.NewPayment(inv.ID, billing.PaymentDetails{
		PaymentDate:     testToday,
		AmountPaid:      dec("10"),
		Method:          billing.PaymentMethodTransfer,
		ReferenceNumber: "TR-1",
	}, testToday)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	p.AmountPaid = dec("25")
	p.Status = billing.PaymentStatusPaid
	require.NoError(t, repo.Update(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(found.AmountPaid))
	assert.Equal(t, billing.PaymentStatusPaid, found.Status)

	byInvoice, err := repo.FindByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, byInvoice, 1)

	require.NoError(t, repo.Delete(ctx, p.ID))
	err = repo.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	missing := *p
	missing.ID = uuid.New()
	assert.True(t, errors.Is(repo.Update(ctx, &missing), shared.ErrNotFound))
}
