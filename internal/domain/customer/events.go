package customer

import (
	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeClient   = "Client"
	AggregateTypeContract = "Contract"
)

// Event type constants
const (
	EventTypeClientCreated         = "ClientCreated"
	EventTypeContractCreated       = "ContractCreated"
	EventTypeContractStatusChanged = "ContractStatusChanged"
)

// ClientCreatedEvent is published when a new client is registered
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientNumber string `json:"client_number"`
	Name         string `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID),
		ClientNumber:    c.ClientNumber,
		Name:            c.Name,
	}
}

// ContractCreatedEvent is published when a new contract is signed
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string    `json:"contract_number"`
	ClientID       uuid.UUID `json:"client_id"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID),
		ContractNumber:  c.ContractNumber,
		ClientID:        c.ClientID,
	}
}

// ContractStatusChangedEvent is published when a contract is activated or deactivated
type ContractStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus ContractStatus `json:"old_status"`
	NewStatus ContractStatus `json:"new_status"`
}

// NewContractStatusChangedEvent creates a new ContractStatusChangedEvent
func NewContractStatusChangedEvent(c *Contract, old ContractStatus) *ContractStatusChangedEvent {
	return &ContractStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractStatusChanged, AggregateTypeContract, c.ID),
		OldStatus:       old,
		NewStatus:       c.Status,
	}
}
