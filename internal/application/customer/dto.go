package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/customer"
)

// CreateClientRequest is the payload to register a client
type CreateClientRequest struct {
	ClientNumber string `json:"client_number" binding:"required,min=1,max=45"`
	Name         string `json:"name" binding:"required,min=1,max=45"`
	Email        string `json:"email" binding:"required,email,max=45"`
	Phone        string `json:"phone" binding:"max=15"`
}

// UpdateClientRequest is the payload to update a client. The client number is immutable.
type UpdateClientRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=45"`
	Email *string `json:"email" binding:"omitempty,email,max=45"`
	Phone *string `json:"phone" binding:"omitempty,max=15"`
}

// ClientListFilter narrows a client listing
type ClientListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ClientResponse is a client in API responses
type ClientResponse struct {
	ID           uuid.UUID `json:"id"`
	ClientNumber string    `json:"client_number"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToClientResponse converts a domain client to a response
func ToClientResponse(c *customer.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		ClientNumber: c.ClientNumber,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CreateContractRequest is the payload to sign a contract
type CreateContractRequest struct {
	ContractNumber string    `json:"contract_number" binding:"required,min=1,max=45"`
	ClientID       uuid.UUID `json:"client_id" binding:"required"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
	Status         string    `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// UpdateContractRequest is the payload to update a contract
type UpdateContractRequest struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Status    *string    `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// ContractListFilter narrows a contract listing
type ContractListFilter struct {
	Search   string `form:"search"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ContractResponse is a contract in API responses
type ContractResponse struct {
	ID             uuid.UUID `json:"id"`
	ContractNumber string    `json:"contract_number"`
	ClientID       uuid.UUID `json:"client_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToContractResponse converts a domain contract to a response
func ToContractResponse(c *customer.Contract) ContractResponse {
	return ContractResponse{
		ID:             c.ID,
		ContractNumber: c.ContractNumber,
		ClientID:       c.ClientID,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
