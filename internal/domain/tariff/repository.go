package tariff

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// TariffRepository defines the interface for tariff persistence
type TariffRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tariff, error)
	// FindAll lists tariffs, latest effective date first
	FindAll(ctx context.Context, filter shared.Filter) ([]Tariff, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, tariff *Tariff) error
	// Delete removes the tariff; its assignments cascade
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssignmentRepository defines the interface for tariff assignment persistence
type AssignmentRepository interface {
	// FindByContract returns the contract's assignment, nil when it has none
	FindByContract(ctx context.Context, contractID uuid.UUID) (*Assignment, error)

	// CountByContract counts assignment rows of the contract
	CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error)

	// Create inserts a new assignment. A (tariff, contract) or contract
	// collision fails with DUPLICATE_ASSIGNMENT.
	Create(ctx context.Context, assignment *Assignment) error

	// DeleteByContract removes every assignment of the contract and returns
	// how many rows were removed
	DeleteByContract(ctx context.Context, contractID uuid.UUID) (int64, error)
}
