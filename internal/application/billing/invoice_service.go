package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService handles invoices: issuing them from readings, manual
// entry, revision and the ownership view
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	readingRepo    metering.ReadingRepository
	meterRepo      metering.MeterRepository
	assignmentRepo tariff.AssignmentRepository
	tariffRepo     tariff.TariffRepository
	ownership      *billing.OwnershipResolver
	txScope        TransactionScope
	guard          *appidentity.AccessGuard
	metrics        *telemetry.Metrics
	cfg            config.BillingConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// InvoiceServiceDeps groups the collaborators of InvoiceService
type InvoiceServiceDeps struct {
	Invoices    billing.InvoiceRepository
	Readings    metering.ReadingRepository
	Meters      metering.MeterRepository
	Assignments tariff.AssignmentRepository
	Tariffs     tariff.TariffRepository
	Ownership   *billing.OwnershipResolver
	TxScope     TransactionScope
	Guard       *appidentity.AccessGuard
	Metrics     *telemetry.Metrics
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(deps InvoiceServiceDeps, cfg config.BillingConfig, logger *zap.Logger) *InvoiceService {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NewNopMetrics()
	}
	return &InvoiceService{
		invoiceRepo:    deps.Invoices,
		readingRepo:    deps.Readings,
		meterRepo:      deps.Meters,
		assignmentRepo: deps.Assignments,
		tariffRepo:     deps.Tariffs,
		ownership:      deps.Ownership,
		txScope:        deps.TxScope,
		guard:          deps.Guard,
		metrics:        metrics,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the publisher for invoice events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Issue bills a reading: consumption times the price of the tariff currently
// assigned to the reading's contract, due after the configured grace period.
func (s *InvoiceService) Issue(ctx context.Context, actor identity.Actor, req IssueInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	reading, err := s.readingRepo.FindByID(ctx, req.ReadingID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotBilled(ctx, reading.ID); err != nil {
		return nil, err
	}
	meter, err := s.meterRepo.FindByID(ctx, reading.MeterID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.assignmentRepo.FindByContract(ctx, meter.ContractID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, shared.NewValidationError("reading_id", "the reading's contract has no tariff assigned")
	}
	t, err := s.tariffRepo.FindByID(ctx, assignment.TariffID)
	if err != nil {
		return nil, err
	}

	issueDate := s.now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	inv, err := billing.IssueForReading(reading.ID, reading.ConsumptionKWh, t.PricePerKWh, issueDate, s.cfg.GracePeriodDays)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.metrics.InvoicesIssued.Inc()
	s.logger.Info("Invoice issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reading_id", reading.ID.String()),
		zap.String("tariff_id", t.ID.String()),
		zap.String("total_amount", inv.TotalAmount.String()))
	s.publishDomainEvents(ctx, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Create enters an invoice with an explicit total
func (s *InvoiceService) Create(ctx context.Context, actor identity.Actor, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	if _, err := s.readingRepo.FindByID(ctx, req.ReadingID); err != nil {
		return nil, err
	}
	if err := s.ensureNotBilled(ctx, req.ReadingID); err != nil {
		return nil, err
	}
	inv, err := billing.NewInvoice(req.ReadingID, req.IssueDate, req.DueDate, req.TotalAmount, req.ConsumptionKWh)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.metrics.InvoicesIssued.Inc()
	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reading_id", inv.ReadingID.String()))
	s.publishDomainEvents(ctx, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves an invoice with its payments
func (s *InvoiceService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionRead); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByIDWithPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List lists invoices, latest issue date first
func (s *InvoiceService) List(ctx context.Context, actor identity.Actor, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionRead); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ReadingID != "" {
		domainFilter.Filters["reading_id"] = filter.ReadingID
	}
	if filter.DueBefore != nil {
		domainFilter.Filters["due_before"] = *filter.DueBefore
	}
	if filter.Overdue {
		domainFilter.Filters["overdue_on"] = s.now()
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// Update revises dates, total or consumption. The status is recomputed from
// the payments under the invoice row lock; asking for a status fails.
func (s *InvoiceService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	var updated *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != nil {
			return inv.OverrideStatus(billing.InvoiceStatus(*req.Status))
		}

		issue, due, total, consumption := inv.IssueDate, inv.DueDate, inv.TotalAmount, inv.ConsumptionKWh
		if req.IssueDate != nil {
			issue = *req.IssueDate
		}
		if req.DueDate != nil {
			due = *req.DueDate
		}
		if req.TotalAmount != nil {
			total = *req.TotalAmount
		}
		if req.ConsumptionKWh != nil {
			consumption = *req.ConsumptionKWh
		}
		if err := inv.Revise(issue, due, total, consumption); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice revised",
		zap.String("invoice_id", updated.ID.String()),
		zap.String("status", string(updated.Status)))
	s.publishDomainEvents(ctx, updated)

	response := ToInvoiceResponse(updated)
	return &response, nil
}

// Delete removes an invoice and its payments
func (s *InvoiceService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// Ownership resolves Invoice -> Reading -> Meter -> Contract -> Client
func (s *InvoiceService) Ownership(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID) (*OwnershipResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleInvoices, appidentity.ActionRead); err != nil {
		return nil, err
	}
	chain, err := s.ownership.ForInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToOwnershipResponse(chain)
	return &response, nil
}

func (s *InvoiceService) ensureNotBilled(ctx context.Context, readingID uuid.UUID) error {
	exists, err := s.invoiceRepo.ExistsByReading(ctx, readingID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewAlreadyExistsError("invoice for reading", readingID.String())
	}
	return nil
}

func (s *InvoiceService) publishDomainEvents(ctx context.Context, inv *billing.Invoice) {
	publishInvoiceEvents(ctx, s.eventPublisher, s.logger, inv)
}

// publishInvoiceEvents hands the aggregate's events to the bus after commit.
// Handler failures are logged and never undo the write.
func publishInvoiceEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, inv *billing.Invoice) {
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	}
}
