package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	ReadingID         uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	Reading           *ReadingModel         `gorm:"foreignKey:ReadingID;constraint:OnDelete:CASCADE"`
	IssueDate         time.Time             `gorm:"type:date;not null;index"`
	DueDate           time.Time             `gorm:"type:date;not null"`
	TotalAmount       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	ConsumptionKWh    int64                 `gorm:"column:consumption_kwh;not null;default:0"`
	Status            billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAmount        decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	OutstandingAmount decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice carrying
// the given payments.
func (m *InvoiceModel) ToDomain(payments ...PaymentModel) *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ReadingID:         m.ReadingID,
		IssueDate:         m.IssueDate.UTC(),
		DueDate:           m.DueDate.UTC(),
		TotalAmount:       m.TotalAmount,
		ConsumptionKWh:    m.ConsumptionKWh,
		Status:            m.Status,
		PaidAmount:        m.PaidAmount,
		OutstandingAmount: m.OutstandingAmount,
		Payments:          make([]billing.Payment, len(payments)),
	}
	for i := range payments {
		inv.Payments[i] = *payments[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
// Payments are persisted through the payment repository.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.ReadingID = inv.ReadingID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.TotalAmount = inv.TotalAmount
	m.ConsumptionKWh = inv.ConsumptionKWh
	m.Status = inv.Status
	m.PaidAmount = inv.PaidAmount
	m.OutstandingAmount = inv.OutstandingAmount
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	BaseModel
	InvoiceID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_payment_invoice_reference,priority:1"`
	Invoice         *InvoiceModel         `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	PaymentDate     time.Time             `gorm:"type:date;not null;index"`
	AmountPaid      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method          billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	ReferenceNumber string                `gorm:"type:varchar(45);not null;uniqueIndex:idx_payment_invoice_reference,priority:2"`
	Status          billing.PaymentStatus `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		InvoiceID:       m.InvoiceID,
		PaymentDate:     m.PaymentDate.UTC(),
		AmountPaid:      m.AmountPaid,
		Method:          m.Method,
		ReferenceNumber: m.ReferenceNumber,
		Status:          m.Status,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:       p.InvoiceID,
		PaymentDate:     p.PaymentDate,
		AmountPaid:      p.AmountPaid,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		Status:          p.Status,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
