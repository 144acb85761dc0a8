package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/tariff"
)

// TariffModel is the persistence model for the Tariff domain entity.
type TariffModel struct {
	AggregateModel
	Season        tariff.Season      `gorm:"type:varchar(20);not null"`
	ClientClass   tariff.ClientClass `gorm:"type:varchar(20);not null"`
	PricePerKWh   int64              `gorm:"column:price_per_kwh;not null;default:0"`
	EffectiveDate time.Time          `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (TariffModel) TableName() string {
	return "tariffs"
}

// ToDomain converts the persistence model to a domain Tariff entity.
func (m *TariffModel) ToDomain() *tariff.Tariff {
	return &tariff.Tariff{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Season:            m.Season,
		ClientClass:       m.ClientClass,
		PricePerKWh:       m.PricePerKWh,
		EffectiveDate:     m.EffectiveDate.UTC(),
	}
}

// FromDomain populates the persistence model from a domain Tariff entity.
func (m *TariffModel) FromDomain(t *tariff.Tariff) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Season = t.Season
	m.ClientClass = t.ClientClass
	m.PricePerKWh = t.PricePerKWh
	m.EffectiveDate = t.EffectiveDate
}

// TariffModelFromDomain creates a new persistence model from a domain Tariff entity.
func TariffModelFromDomain(t *tariff.Tariff) *TariffModel {
	m := &TariffModel{}
	m.FromDomain(t)
	return m
}

// TariffAssignmentModel is the persistence model for a tariff assignment.
// contract_id is unique on its own: a contract has one current tariff.
type TariffAssignmentModel struct {
	BaseModel
	TariffID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_tariff_contract,priority:1"`
	Tariff     *TariffModel   `gorm:"foreignKey:TariffID;constraint:OnDelete:CASCADE"`
	ContractID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_tariff_contract,priority:2;uniqueIndex:idx_assignment_contract"`
	Contract   *ContractModel `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	AssignedOn time.Time      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TariffAssignmentModel) TableName() string {
	return "tariff_assignments"
}

// ToDomain converts the persistence model to a domain Assignment.
func (m *TariffAssignmentModel) ToDomain() *tariff.Assignment {
	return &tariff.Assignment{
		BaseEntity: m.BaseModel.ToDomain(),
		TariffID:   m.TariffID,
		ContractID: m.ContractID,
		AssignedOn: m.AssignedOn,
	}
}

// TariffAssignmentModelFromDomain creates a new persistence model from a domain Assignment.
func TariffAssignmentModelFromDomain(a *tariff.Assignment) *TariffAssignmentModel {
	m := &TariffAssignmentModel{
		TariffID:   a.TariffID,
		ContractID: a.ContractID,
		AssignedOn: a.AssignedOn,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
