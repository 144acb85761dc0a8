package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultPaymentMaxRetries = 3

// PaymentService records, amends and removes payments. Every write locks
// the invoice row, reconciles the invoice from its payments and saves it
// with a version check, all in one transaction.
type PaymentService struct {
	paymentRepo    billing.PaymentRepository
	txScope        TransactionScope
	guard          *appidentity.AccessGuard
	metrics        *telemetry.Metrics
	maxRetries     int
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	txScope TransactionScope,
	guard *appidentity.AccessGuard,
	metrics *telemetry.Metrics,
	cfg config.BillingConfig,
	logger *zap.Logger,
) *PaymentService {
	if metrics == nil {
		metrics = telemetry.NewNopMetrics()
	}
	maxRetries := cfg.PaymentMaxRetries
	if maxRetries < 1 {
		maxRetries = defaultPaymentMaxRetries
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		txScope:     txScope,
		guard:       guard,
		metrics:     metrics,
		maxRetries:  maxRetries,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher for payment events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordPayment applies a payment to an invoice and returns the reconciled invoice
func (s *PaymentService) RecordPayment(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID, req RecordPaymentRequest) (resp *InvoiceResponse, err error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModulePayments, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.IDAttr(telemetry.SpanAttrInvoiceID, invoiceID))
	defer func() { telemetry.EndSpan(span, err) }()

	var recorded *billing.Payment
	inv, err := s.writeWithRetry(ctx, invoiceID, func(inv *billing.Invoice, repos TransactionalRepositories) error {
		p, err := billing.NewPayment(inv.ID, req.details(), s.now())
		if err != nil {
			return err
		}
		if err := inv.AddPayment(p); err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}
		recorded = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(telemetry.IDAttr(telemetry.SpanAttrPaymentID, recorded.ID))
	s.metrics.PaymentsRecorded.WithLabelValues(string(recorded.Method), string(inv.Status)).Inc()
	s.logger.Info("Payment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_id", recorded.ID.String()),
		zap.String("amount_paid", recorded.AmountPaid.String()),
		zap.String("invoice_status", string(inv.Status)))
	publishInvoiceEvents(ctx, s.eventPublisher, s.logger, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// UpdatePayment amends a payment and returns the reconciled invoice
func (s *PaymentService) UpdatePayment(ctx context.Context, actor identity.Actor, paymentID uuid.UUID, req UpdatePaymentRequest) (resp *InvoiceResponse, err error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModulePayments, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "update",
		telemetry.IDAttr(telemetry.SpanAttrPaymentID, paymentID))
	defer func() { telemetry.EndSpan(span, err) }()

	existing, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	inv, err := s.writeWithRetry(ctx, existing.InvoiceID, func(inv *billing.Invoice, repos TransactionalRepositories) error {
		current := findPayment(inv, paymentID)
		if current == nil {
			return shared.NewNotFoundError("payment")
		}
		amended, err := inv.AmendPayment(paymentID, req.merge(current), s.now())
		if err != nil {
			return err
		}
		return repos.Payments().Update(ctx, amended)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment amended",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("invoice_status", string(inv.Status)))
	publishInvoiceEvents(ctx, s.eventPublisher, s.logger, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// DeletePayment removes a payment and returns the reconciled invoice
func (s *PaymentService) DeletePayment(ctx context.Context, actor identity.Actor, paymentID uuid.UUID) (resp *InvoiceResponse, err error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModulePayments, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete",
		telemetry.IDAttr(telemetry.SpanAttrPaymentID, paymentID))
	defer func() { telemetry.EndSpan(span, err) }()

	existing, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	inv, err := s.writeWithRetry(ctx, existing.InvoiceID, func(inv *billing.Invoice, repos TransactionalRepositories) error {
		if _, err := inv.RemovePayment(paymentID); err != nil {
			return err
		}
		return repos.Payments().Delete(ctx, paymentID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment deleted",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("invoice_status", string(inv.Status)))
	publishInvoiceEvents(ctx, s.eventPublisher, s.logger, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves a payment
func (s *PaymentService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*PaymentResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModulePayments, appidentity.ActionRead); err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// List lists payments, latest payment date first
func (s *PaymentService) List(ctx context.Context, actor identity.Actor, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModulePayments, appidentity.ActionRead); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.InvoiceID != "" {
		domainFilter.Filters["invoice_id"] = filter.InvoiceID
	}
	if filter.Method != "" {
		domainFilter.Filters["method"] = filter.Method
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, total, nil
}

// writeWithRetry runs mutate against the row-locked invoice and saves it with
// the version check. A lost check reloads and retries up to maxRetries times.
func (s *PaymentService) writeWithRetry(
	ctx context.Context,
	invoiceID uuid.UUID,
	mutate func(inv *billing.Invoice, repos TransactionalRepositories) error,
) (*billing.Invoice, error) {
	var (
		inv *billing.Invoice
		err error
	)
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		inv, err = s.writeOnce(ctx, invoiceID, mutate)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		s.metrics.PaymentConflicts.Inc()
		trace.SpanFromContext(ctx).AddEvent("invoice version conflict",
			trace.WithAttributes(attribute.Int(telemetry.SpanAttrAttempt, attempt)))
		s.logger.Warn("Invoice version conflict, retrying payment write",
			zap.String("invoice_id", invoiceID.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxRetries))
	}
	return nil, err
}

func (s *PaymentService) writeOnce(
	ctx context.Context,
	invoiceID uuid.UUID,
	mutate func(inv *billing.Invoice, repos TransactionalRepositories) error,
) (*billing.Invoice, error) {
	var result *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := mutate(inv, repos); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func findPayment(inv *billing.Invoice, id uuid.UUID) *billing.Payment {
	for i := range inv.Payments {
		if inv.Payments[i].ID == id {
			p := inv.Payments[i]
			return &p
		}
	}
	return nil
}
