package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) invoice(args mock.Arguments) (*billing.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *MockInvoiceRepository) FindByIDWithPayments(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *MockInvoiceRepository) FindByReading(ctx context.Context, readingID uuid.UUID) (*billing.Invoice, error) {
	return m.invoice(m.Called(ctx, readingID))
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByReading(ctx context.Context, readingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, readingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *billing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockReadingRepository is a mock implementation of metering.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]metering.Reading, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReadingRepository) FindHistory(ctx context.Context, meterID uuid.UUID, before time.Time, excludeID uuid.UUID, limit int) ([]metering.Reading, error) {
	args := m.Called(ctx, meterID, before, excludeID, limit)
	return args.Get(0).([]metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) FindPrevious(ctx context.Context, meterID uuid.UUID, date time.Time, excludeID uuid.UUID) (*metering.Reading, error) {
	args := m.Called(ctx, meterID, date, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) FindNext(ctx context.Context, meterID uuid.UUID, date time.Time, excludeID uuid.UUID) (*metering.Reading, error) {
	args := m.Called(ctx, meterID, date, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Reading), args.Error(1)
}

func (m *MockReadingRepository) Save(ctx context.Context, reading *metering.Reading) error {
	return m.Called(ctx, reading).Error(0)
}

func (m *MockReadingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockMeterRepository is a mock implementation of metering.MeterRepository
type MockMeterRepository struct {
	mock.Mock
}

func (m *MockMeterRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Meter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Meter), args.Error(1)
}

func (m *MockMeterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]metering.Meter, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]metering.Meter), args.Error(1)
}

func (m *MockMeterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeterRepository) ExistsByMeterNumber(ctx context.Context, meterNumber string) (bool, error) {
	args := m.Called(ctx, meterNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeterRepository) Save(ctx context.Context, meter *metering.Meter) error {
	return m.Called(ctx, meter).Error(0)
}

func (m *MockMeterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockAssignmentRepository is a mock implementation of tariff.AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) (*tariff.Assignment, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariff.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a *tariff.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAssignmentRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTariffRepository is a mock implementation of tariff.TariffRepository
type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*tariff.Tariff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariff.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tariff.Tariff, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]tariff.Tariff), args.Error(1)
}

func (m *MockTariffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTariffRepository) Save(ctx context.Context, t *tariff.Tariff) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTariffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.EventType()
	}
	return types
}

func newGuard() *appidentity.AccessGuard {
	return appidentity.NewAccessGuard(zap.NewNop(), nil)
}

func actorWith(role identity.Role) identity.Actor {
	return identity.NewActor(uuid.New(), "op", role)
}
