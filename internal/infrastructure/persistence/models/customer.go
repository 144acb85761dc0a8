package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/customer"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	AggregateModel
	ClientNumber string `gorm:"type:varchar(45);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(45);not null;index"`
	Email        string `gorm:"type:varchar(45);not null;uniqueIndex"`
	Phone        string `gorm:"type:varchar(15)"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *customer.Client {
	return &customer.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ClientNumber:      m.ClientNumber,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *customer.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ClientNumber = c.ClientNumber
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *customer.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// ContractModel is the persistence model for the Contract domain entity.
type ContractModel struct {
	AggregateModel
	ContractNumber string                  `gorm:"type:varchar(45);not null;uniqueIndex"`
	ClientID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Client         *ClientModel            `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	StartDate      time.Time               `gorm:"type:date;not null;index"`
	EndDate        time.Time               `gorm:"type:date;not null"`
	Status         customer.ContractStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract entity.
func (m *ContractModel) ToDomain() *customer.Contract {
	return &customer.Contract{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ContractNumber:    m.ContractNumber,
		ClientID:          m.ClientID,
		StartDate:         m.StartDate.UTC(),
		EndDate:           m.EndDate.UTC(),
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Contract entity.
func (m *ContractModel) FromDomain(c *customer.Contract) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.ClientID = c.ClientID
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Status = c.Status
}

// ContractModelFromDomain creates a new persistence model from a domain Contract entity.
func ContractModelFromDomain(c *customer.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
