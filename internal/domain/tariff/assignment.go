package tariff

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// Assignment binds a tariff to a contract. A contract has at most one
// assignment; replacing it goes through a reassign, never an append.
type Assignment struct {
	shared.BaseEntity
	TariffID   uuid.UUID
	ContractID uuid.UUID
	AssignedOn time.Time
}

// NewAssignment creates an assignment stamped at now
func NewAssignment(contractID, tariffID uuid.UUID, now time.Time) (*Assignment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewValidationError("contract_id", "cannot be empty")
	}
	if tariffID == uuid.Nil {
		return nil, shared.NewValidationError("tariff_id", "cannot be empty")
	}
	entity := shared.NewBaseEntity()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	return &Assignment{
		BaseEntity: entity,
		TariffID:   tariffID,
		ContractID: contractID,
		AssignedOn: now,
	}, nil
}

// CheckAssignable decides whether a plain assign may proceed given the
// contract's current assignment (nil when it has none).
func CheckAssignable(current *Assignment, tariffID uuid.UUID) error {
	if current == nil {
		return nil
	}
	if current.TariffID == tariffID {
		return shared.NewDomainError(shared.CodeDuplicateAssignment, "Tariff is already assigned to this contract")
	}
	return shared.NewDomainError(shared.CodeDuplicateAssignment, "Contract already has a tariff assigned, use reassign to replace it")
}
