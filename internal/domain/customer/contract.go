package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// ContractStatus represents the status of a supply contract
type ContractStatus string

const (
	ContractStatusActive   ContractStatus = "ACTIVE"
	ContractStatusInactive ContractStatus = "INACTIVE"
)

// IsValid reports whether the status is known
func (s ContractStatus) IsValid() bool {
	return s == ContractStatusActive || s == ContractStatusInactive
}

// Contract binds a client to the supply of electricity for a period
type Contract struct {
	shared.BaseAggregateRoot
	ContractNumber string
	ClientID       uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	Status         ContractStatus
}

// NewContract creates a new contract. An ACTIVE contract must not have
// ended before today.
func NewContract(contractNumber string, clientID uuid.UUID, startDate, endDate time.Time, status ContractStatus, today time.Time) (*Contract, error) {
	contractNumber = strings.TrimSpace(contractNumber)
	if contractNumber == "" {
		return nil, shared.NewValidationError("contract_number", "cannot be empty")
	}
	if len(contractNumber) > 45 {
		return nil, shared.NewValidationError("contract_number", "cannot exceed 45 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client_id", "cannot be empty")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("status", "must be ACTIVE or INACTIVE")
	}
	if err := validatePeriod(startDate, endDate); err != nil {
		return nil, err
	}
	if status == ContractStatusActive {
		if err := validateActivation(endDate, today); err != nil {
			return nil, err
		}
	}

	contract := &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNumber:    contractNumber,
		ClientID:          clientID,
		StartDate:         truncateDay(startDate),
		EndDate:           truncateDay(endDate),
		Status:            status,
	}

	contract.AddDomainEvent(NewContractCreatedEvent(contract))

	return contract, nil
}

// Reschedule changes the contract period
func (c *Contract) Reschedule(startDate, endDate time.Time, today time.Time) error {
	if err := validatePeriod(startDate, endDate); err != nil {
		return err
	}
	if c.Status == ContractStatusActive {
		if err := validateActivation(endDate, today); err != nil {
			return err
		}
	}

	c.StartDate = truncateDay(startDate)
	c.EndDate = truncateDay(endDate)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate transitions the contract to ACTIVE
func (c *Contract) Activate(today time.Time) error {
	if c.Status == ContractStatusActive {
		return nil
	}
	if err := validateActivation(c.EndDate, today); err != nil {
		return err
	}
	c.setStatus(ContractStatusActive)
	return nil
}

// Deactivate transitions the contract to INACTIVE
func (c *Contract) Deactivate() {
	if c.Status == ContractStatusInactive {
		return
	}
	c.setStatus(ContractStatusInactive)
}

// ChangeStatus dispatches to Activate or Deactivate
func (c *Contract) ChangeStatus(status ContractStatus, today time.Time) error {
	switch status {
	case ContractStatusActive:
		return c.Activate(today)
	case ContractStatusInactive:
		c.Deactivate()
		return nil
	default:
		return shared.NewValidationError("status", "must be ACTIVE or INACTIVE")
	}
}

// IsActive returns true if the contract is active
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

func (c *Contract) setStatus(status ContractStatus) {
	old := c.Status
	c.Status = status
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractStatusChangedEvent(c, old))
}

func validatePeriod(startDate, endDate time.Time) error {
	if startDate.IsZero() {
		return shared.NewValidationError("start_date", "is required")
	}
	if endDate.IsZero() {
		return shared.NewValidationError("end_date", "is required")
	}
	if !truncateDay(endDate).After(truncateDay(startDate)) {
		return shared.NewValidationError("end_date", "must be after start_date")
	}
	return nil
}

func validateActivation(endDate, today time.Time) error {
	if truncateDay(endDate).Before(truncateDay(today)) {
		return shared.NewValidationError("end_date", "an active contract cannot have ended")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
