package persistence

import (
	"context"

	appbilling "github.com/gridledger/billing/internal/application/billing"
	apptariff "github.com/gridledger/billing/internal/application/tariff"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/tariff"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope using GORM transactions
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

type gormBillingRepositories struct {
	tx *gorm.DB
}

func (r *gormBillingRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormBillingRepositories) Payments() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// GormTariffTransactionScope implements the tariff TransactionScope using GORM transactions
type GormTariffTransactionScope struct {
	db *gorm.DB
}

// NewGormTariffTransactionScope creates a new GormTariffTransactionScope
func NewGormTariffTransactionScope(db *gorm.DB) *GormTariffTransactionScope {
	return &GormTariffTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTariffTransactionScope) Execute(ctx context.Context, fn func(repos apptariff.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTariffRepositories{tx: tx})
	})
}

type gormTariffRepositories struct {
	tx *gorm.DB
}

func (r *gormTariffRepositories) Contracts() customer.ContractRepository {
	return NewGormContractRepository(r.tx)
}

func (r *gormTariffRepositories) Tariffs() tariff.TariffRepository {
	return NewGormTariffRepository(r.tx)
}

func (r *gormTariffRepositories) Assignments() tariff.AssignmentRepository {
	return NewGormAssignmentRepository(r.tx)
}

var (
	_ appbilling.TransactionScope          = (*GormBillingTransactionScope)(nil)
	_ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
	_ apptariff.TransactionScope           = (*GormTariffTransactionScope)(nil)
	_ apptariff.TransactionalRepositories  = (*gormTariffRepositories)(nil)
)
