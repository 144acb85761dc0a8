package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/metering"
)

// MeterModel is the persistence model for the Meter domain entity.
type MeterModel struct {
	AggregateModel
	MeterNumber      string               `gorm:"type:varchar(45);not null;uniqueIndex"`
	ContractID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Contract         *ContractModel       `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	InstalledOn      time.Time            `gorm:"type:date;not null;index"`
	Location         string               `gorm:"type:varchar(45);not null"`
	Status           metering.MeterStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	LocationImageURL string               `gorm:"type:varchar(200)"`
	PhotoURL         string               `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (MeterModel) TableName() string {
	return "meters"
}

// ToDomain converts the persistence model to a domain Meter entity.
func (m *MeterModel) ToDomain() *metering.Meter {
	return &metering.Meter{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		MeterNumber:       m.MeterNumber,
		ContractID:        m.ContractID,
		InstalledOn:       m.InstalledOn.UTC(),
		Location:          m.Location,
		Status:            m.Status,
		LocationImageURL:  m.LocationImageURL,
		PhotoURL:          m.PhotoURL,
	}
}

// FromDomain populates the persistence model from a domain Meter entity.
func (m *MeterModel) FromDomain(meter *metering.Meter) {
	m.FromDomainAggregateRoot(meter.BaseAggregateRoot)
	m.MeterNumber = meter.MeterNumber
	m.ContractID = meter.ContractID
	m.InstalledOn = meter.InstalledOn
	m.Location = meter.Location
	m.Status = meter.Status
	m.LocationImageURL = meter.LocationImageURL
	m.PhotoURL = meter.PhotoURL
}

// MeterModelFromDomain creates a new persistence model from a domain Meter entity.
func MeterModelFromDomain(meter *metering.Meter) *MeterModel {
	m := &MeterModel{}
	m.FromDomain(meter)
	return m
}

// ReadingModel is the persistence model for the Reading domain entity.
type ReadingModel struct {
	AggregateModel
	MeterID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_reading_meter_date,priority:1"`
	Meter          *MeterModel          `gorm:"foreignKey:MeterID;constraint:OnDelete:CASCADE"`
	ReadingDate    time.Time            `gorm:"type:date;not null;index:idx_reading_meter_date,priority:2"`
	ConsumptionKWh int64                `gorm:"column:consumption_kwh;not null;default:0"`
	Kind           metering.ReadingKind `gorm:"type:varchar(20);not null"`
	CurrentValue   int64                `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ReadingModel) TableName() string {
	return "readings"
}

// ToDomain converts the persistence model to a domain Reading entity.
func (m *ReadingModel) ToDomain() *metering.Reading {
	return &metering.Reading{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		MeterID:           m.MeterID,
		ReadingDate:       m.ReadingDate.UTC(),
		ConsumptionKWh:    m.ConsumptionKWh,
		Kind:              m.Kind,
		CurrentValue:      m.CurrentValue,
	}
}

// FromDomain populates the persistence model from a domain Reading entity.
func (m *ReadingModel) FromDomain(r *metering.Reading) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.MeterID = r.MeterID
	m.ReadingDate = r.ReadingDate
	m.ConsumptionKWh = r.ConsumptionKWh
	m.Kind = r.Kind
	m.CurrentValue = r.CurrentValue
}

// ReadingModelFromDomain creates a new persistence model from a domain Reading entity.
func ReadingModelFromDomain(r *metering.Reading) *ReadingModel {
	m := &ReadingModel{}
	m.FromDomain(r)
	return m
}
