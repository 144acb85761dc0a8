package tariff

import (
	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeContractTariff = "ContractTariff"

// Event type constants
const (
	EventTypeTariffAssigned   = "TariffAssigned"
	EventTypeTariffReassigned = "TariffReassigned"
	EventTypeTariffUnassigned = "TariffUnassigned"
)

// AssignmentChangedEvent is published whenever a contract's tariff changes.
// PreviousTariffID is nil for a first assignment and NewTariffID is nil
// after an unassign.
type AssignmentChangedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID  `json:"contract_id"`
	PreviousTariffID *uuid.UUID `json:"previous_tariff_id,omitempty"`
	NewTariffID      *uuid.UUID `json:"new_tariff_id,omitempty"`
}

// NewAssignmentChangedEvent creates a new AssignmentChangedEvent
func NewAssignmentChangedEvent(eventType string, contractID uuid.UUID, previous, next *uuid.UUID) *AssignmentChangedEvent {
	return &AssignmentChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypeContractTariff, contractID),
		ContractID:       contractID,
		PreviousTariffID: previous,
		NewTariffID:      next,
	}
}
