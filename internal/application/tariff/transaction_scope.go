package tariff

import (
	"context"

	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/tariff"
)

// TransactionScope provides transactional access to the repositories an
// assignment change touches.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories shares one transaction between the contract row
// lock and the assignment writes, so assign and reassign serialize per contract.
type TransactionalRepositories interface {
	Contracts() customer.ContractRepository
	Tariffs() tariff.TariffRepository
	Assignments() tariff.AssignmentRepository
}

// NoOpTransactionScope runs fn against plain repositories. Used in tests.
type NoOpTransactionScope struct {
	contracts   customer.ContractRepository
	tariffs     tariff.TariffRepository
	assignments tariff.AssignmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	contracts customer.ContractRepository,
	tariffs tariff.TariffRepository,
	assignments tariff.AssignmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{contracts: contracts, tariffs: tariffs, assignments: assignments}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Contracts returns the contract repository
func (s *NoOpTransactionScope) Contracts() customer.ContractRepository { return s.contracts }

// Tariffs returns the tariff repository
func (s *NoOpTransactionScope) Tariffs() tariff.TariffRepository { return s.tariffs }

// Assignments returns the assignment repository
func (s *NoOpTransactionScope) Assignments() tariff.AssignmentRepository { return s.assignments }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
