package billing

import (
	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceIssued        = "InvoiceIssued"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypePaymentRecorded      = "PaymentRecorded"
	EventTypePaymentAmended       = "PaymentAmended"
	EventTypePaymentRemoved       = "PaymentRemoved"
)

// InvoiceIssuedEvent is published when an invoice is created
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	ReadingID   uuid.UUID       `json:"reading_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.ID),
		ReadingID:       inv.ReadingID,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceStatusChangedEvent is published when reconciliation moves the status
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus InvoiceStatus `json:"old_status"`
	NewStatus InvoiceStatus `json:"new_status"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, old InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, inv.ID),
		OldStatus:       old,
		NewStatus:       inv.Status,
	}
}

// PaymentRecordedEvent is published when a payment is recorded or amended.
// Outstanding is the exact balance after reconciliation.
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	InvoiceStatus InvoiceStatus   `json:"invoice_status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent of the given type
func NewPaymentRecordedEvent(inv *Invoice, p *Payment, eventType string) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		AmountPaid:      p.AmountPaid,
		Outstanding:     inv.OutstandingAmount,
		InvoiceStatus:   inv.Status,
	}
}

// PaymentRemovedEvent is published when a payment is deleted
type PaymentRemovedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID     `json:"invoice_id"`
	PaymentID     uuid.UUID     `json:"payment_id"`
	InvoiceStatus InvoiceStatus `json:"invoice_status"`
}

// NewPaymentRemovedEvent creates a new PaymentRemovedEvent
func NewPaymentRemovedEvent(inv *Invoice, p *Payment) *PaymentRemovedEvent {
	return &PaymentRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRemoved, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		InvoiceStatus:   inv.Status,
	}
}
