package billing

import (
	"context"

	"github.com/gridledger/billing/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// Every repository handed to fn shares one database transaction that is
// committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to billing repositories within a transaction.
//
// Payments are children of the Invoice aggregate but are stored in their own
// table, so they are written through Payments() while the invoice header goes
// through Invoices().SaveWithLock.
type TransactionalRepositories interface {
	Invoices() billing.InvoiceRepository
	Payments() billing.PaymentRepository
}

// NoOpTransactionScope runs fn against plain repositories. Used in tests.
type NoOpTransactionScope struct {
	invoices billing.InvoiceRepository
	payments billing.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(invoices billing.InvoiceRepository, payments billing.PaymentRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{invoices: invoices, payments: payments}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Invoices returns the invoice repository
func (s *NoOpTransactionScope) Invoices() billing.InvoiceRepository {
	return s.invoices
}

// Payments returns the payment repository
func (s *NoOpTransactionScope) Payments() billing.PaymentRepository {
	return s.payments
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
