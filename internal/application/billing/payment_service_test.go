package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var paymentToday = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

type paymentFixture struct {
	svc       *PaymentService
	invoices  *MockInvoiceRepository
	payments  *MockPaymentRepository
	publisher *MockEventPublisher
	metrics   *telemetry.Metrics
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		invoices:  new(MockInvoiceRepository),
		payments:  new(MockPaymentRepository),
		publisher: &MockEventPublisher{},
		metrics:   telemetry.NewNopMetrics(),
	}
	scope := NewNoOpTransactionScope(f.invoices, f.payments)
	f.svc = NewPaymentService(f.payments, scope, newGuard(), f.metrics,
		config.BillingConfig{PaymentMaxRetries: 3}, zap.NewNop())
	f.svc.now = func() time.Time { return paymentToday }
	f.svc.SetEventPublisher(f.publisher)
	return f
}

// pendingInvoice returns a fresh invoice of total as it would be loaded from storage
func pendingInvoice(t *testing.T, id uuid.UUID, total int64) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(uuid.New(), paymentToday.AddDate(0, 0, -20), paymentToday.AddDate(0, 0, -5),
		decimal.NewFromInt(total), 100)
	require.NoError(t, err)
	inv.ID = id
	inv.ClearDomainEvents()
	return inv
}

func withPayment(t *testing.T, inv *billing.Invoice, amount int64, ref string) *billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(inv.ID, billing.PaymentDetails{
		PaymentDate:     paymentToday.AddDate(0, 0, -3),
		AmountPaid:      decimal.NewFromInt(amount),
		Method:          billing.PaymentMethodTransfer,
		ReferenceNumber: ref,
	}, paymentToday)
	require.NoError(t, err)
	require.NoError(t, inv.AddPayment(p))
	inv.ClearDomainEvents()
	return p
}

func cashPayment(amount int64, ref string) RecordPaymentRequest {
	return RecordPaymentRequest{
		PaymentDate:     paymentToday.AddDate(0, 0, -1),
		AmountPaid:      decimal.NewFromInt(amount),
		Method:          "CASH",
		ReferenceNumber: ref,
	}
}

func TestPaymentService_RecordPayment_Partial(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(pendingInvoice(t, id, 100), nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	f.invoices.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleFinance), id, cashPayment(40, "R-1"))

	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_PAID", resp.Status)
	assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(40)))
	assert.True(t, resp.OutstandingAmount.Equal(decimal.NewFromInt(60)))
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "NOT_FULLY_PAID", resp.Payments[0].Status)

	assert.ElementsMatch(t,
		[]string{billing.EventTypeInvoiceStatusChanged, billing.EventTypePaymentRecorded},
		f.publisher.EventTypes())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsRecorded.WithLabelValues("CASH", "PARTIALLY_PAID")))
}

func TestPaymentService_RecordPayment_SettlesInvoice(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	inv := pendingInvoice(t, id, 100)
	withPayment(t, inv, 30, "R-1")
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(inv, nil)
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
		return p.Status == billing.PaymentStatusPaid
	})).Return(nil)
	f.invoices.On("SaveWithLock", mock.Anything, inv).Return(nil)

	resp, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleAdmin), id, cashPayment(70, "R-2"))

	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.OutstandingAmount.IsZero())
	f.payments.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_Overpayment(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(pendingInvoice(t, id, 100), nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.invoices.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleAdmin), id, cashPayment(130, "R-1"))

	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.OutstandingAmount.IsZero(), "display outstanding is clamped at zero")
}

func TestPaymentService_RecordPayment_RetriesOnConflict(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	first, second := pendingInvoice(t, id, 100), pendingInvoice(t, id, 100)
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(first, nil).Once()
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(second, nil).Once()
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()
	f.invoices.On("SaveWithLock", mock.Anything, first).
		Return(shared.NewDomainError(shared.CodeConcurrencyConflict, "stale")).Once()
	f.invoices.On("SaveWithLock", mock.Anything, second).Return(nil).Once()

	resp, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleFinance), id, cashPayment(100, "R-1"))

	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentConflicts))
	f.invoices.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_GivesUpAfterMaxRetries(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	for i := 0; i < 3; i++ {
		f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(pendingInvoice(t, id, 100), nil).Once()
	}
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.invoices.On("SaveWithLock", mock.Anything, mock.Anything).
		Return(shared.NewDomainError(shared.CodeConcurrencyConflict, "stale"))

	_, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleFinance), id, cashPayment(10, "R-1"))

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.PaymentConflicts))
	assert.Empty(t, f.publisher.EventTypes())
}

func TestPaymentService_RecordPayment_Rejections(t *testing.T) {
	id := uuid.New()

	t.Run("future date", func(t *testing.T) {
		f := newPaymentFixture()
		f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(pendingInvoice(t, id, 100), nil)
		req := cashPayment(10, "R-1")
		req.PaymentDate = paymentToday.AddDate(0, 0, 1)

		_, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleFinance), id, req)

		assert.ErrorIs(t, err, shared.ErrValidation)
		f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("zero amount", func(t *testing.T) {
		f := newPaymentFixture()
		f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(pendingInvoice(t, id, 100), nil)

		_, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleFinance), id, cashPayment(0, "R-1"))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("electrical role", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleElectrical), id, cashPayment(10, "R-1"))

		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
		f.invoices.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		f := newPaymentFixture()
		f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(nil, shared.NewNotFoundError("invoice"))

		_, err := f.svc.RecordPayment(context.Background(), actorWith(identity.RoleFinance), id, cashPayment(10, "R-1"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentService_UpdatePayment(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	inv := pendingInvoice(t, id, 100)
	p := withPayment(t, inv, 40, "R-1")
	f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(inv, nil)
	f.payments.On("Update", mock.Anything, mock.MatchedBy(func(updated *billing.Payment) bool {
		return updated.ID == p.ID && updated.AmountPaid.Equal(decimal.NewFromInt(100)) &&
			updated.ReferenceNumber == "R-1" && updated.Status == billing.PaymentStatusPaid
	})).Return(nil)
	f.invoices.On("SaveWithLock", mock.Anything, inv).Return(nil)

	amount := decimal.NewFromInt(100)
	resp, err := f.svc.UpdatePayment(context.Background(), actorWith(identity.RoleFinance), p.ID, UpdatePaymentRequest{AmountPaid: &amount})

	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.Contains(t, f.publisher.EventTypes(), billing.EventTypePaymentAmended)
	f.payments.AssertExpectations(t)
}

func TestPaymentService_DeletePayment(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	inv := pendingInvoice(t, id, 100)
	p := withPayment(t, inv, 40, "R-1")
	f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.invoices.On("FindByIDForUpdate", mock.Anything, id).Return(inv, nil)
	f.payments.On("Delete", mock.Anything, p.ID).Return(nil)
	f.invoices.On("SaveWithLock", mock.Anything, inv).Return(nil)

	resp, err := f.svc.DeletePayment(context.Background(), actorWith(identity.RoleAdmin), p.ID)

	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, resp.PaidAmount.IsZero())
	assert.Empty(t, resp.Payments)
	assert.Contains(t, f.publisher.EventTypes(), billing.EventTypePaymentRemoved)
}

func TestPaymentService_DeletePayment_Unknown(t *testing.T) {
	f := newPaymentFixture()
	missing := uuid.New()
	f.payments.On("FindByID", mock.Anything, missing).Return(nil, shared.NewNotFoundError("payment"))

	_, err := f.svc.DeletePayment(context.Background(), actorWith(identity.RoleAdmin), missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
