package tariff

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/tariff"
)

// CreateTariffRequest is the payload to publish a tariff
type CreateTariffRequest struct {
	Season        string    `json:"season" binding:"required,oneof=SUMMER WINTER"`
	ClientClass   string    `json:"client_class" binding:"required,oneof=RESIDENTIAL COMMERCIAL INDUSTRIAL"`
	PricePerKWh   int64     `json:"price_per_kwh" binding:"min=0"`
	EffectiveDate time.Time `json:"effective_date" binding:"required"`
}

// UpdateTariffRequest is the payload to revise a tariff
type UpdateTariffRequest struct {
	Season        *string    `json:"season" binding:"omitempty,oneof=SUMMER WINTER"`
	ClientClass   *string    `json:"client_class" binding:"omitempty,oneof=RESIDENTIAL COMMERCIAL INDUSTRIAL"`
	PricePerKWh   *int64     `json:"price_per_kwh" binding:"omitempty,min=0"`
	EffectiveDate *time.Time `json:"effective_date"`
}

// TariffListFilter narrows a tariff listing
type TariffListFilter struct {
	Season      string `form:"season" binding:"omitempty,oneof=SUMMER WINTER"`
	ClientClass string `form:"client_class" binding:"omitempty,oneof=RESIDENTIAL COMMERCIAL INDUSTRIAL"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TariffResponse is a tariff in API responses
type TariffResponse struct {
	ID            uuid.UUID `json:"id"`
	Season        string    `json:"season"`
	ClientClass   string    `json:"client_class"`
	PricePerKWh   int64     `json:"price_per_kwh"`
	EffectiveDate time.Time `json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToTariffResponse converts a domain tariff to a response
func ToTariffResponse(t *tariff.Tariff) TariffResponse {
	return TariffResponse{
		ID:            t.ID,
		Season:        string(t.Season),
		ClientClass:   string(t.ClientClass),
		PricePerKWh:   t.PricePerKWh,
		EffectiveDate: t.EffectiveDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// AssignTariffRequest selects the tariff for a contract
type AssignTariffRequest struct {
	TariffID uuid.UUID `json:"tariff_id" binding:"required"`
}

// AssignmentResponse is a contract's tariff assignment
type AssignmentResponse struct {
	ID         uuid.UUID      `json:"id"`
	ContractID uuid.UUID      `json:"contract_id"`
	TariffID   uuid.UUID      `json:"tariff_id"`
	AssignedOn time.Time      `json:"assigned_on"`
	Tariff     TariffResponse `json:"tariff"`
}

// ToAssignmentResponse converts an assignment and its tariff to a response
func ToAssignmentResponse(a *tariff.Assignment, t *tariff.Tariff) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID,
		ContractID: a.ContractID,
		TariffID:   a.TariffID,
		AssignedOn: a.AssignedOn,
		Tariff:     ToTariffResponse(t),
	}
}
