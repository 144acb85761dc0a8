package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the client paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodDebit    PaymentMethod = "DEBIT"
)

// IsValid reports whether the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodDebit:
		return true
	}
	return false
}

// PaymentStatus records whether the invoice was settled once the payment applied
type PaymentStatus string

const (
	PaymentStatusPaid         PaymentStatus = "PAID"
	PaymentStatusNotFullyPaid PaymentStatus = "NOT_FULLY_PAID"
)

// Payment is an amount paid against an invoice
type Payment struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID
	PaymentDate     time.Time
	AmountPaid      decimal.Decimal
	Method          PaymentMethod
	ReferenceNumber string
	Status          PaymentStatus
}

// PaymentDetails carries the user-supplied fields of a payment
type PaymentDetails struct {
	PaymentDate     time.Time
	AmountPaid      decimal.Decimal
	Method          PaymentMethod
	ReferenceNumber string
}

// NewPayment creates a payment; payments dated after today are rejected
func NewPayment(invoiceID uuid.UUID, details PaymentDetails, today time.Time) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("invoice_id", "cannot be empty")
	}
	p := &Payment{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		Status:     PaymentStatusNotFullyPaid,
	}
	if err := p.apply(details, today); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Payment) apply(d PaymentDetails, today time.Time) error {
	if err := validateAmount("amount_paid", d.AmountPaid); err != nil {
		return err
	}
	if d.PaymentDate.IsZero() {
		return shared.NewValidationError("payment_date", "is required")
	}
	if dayOf(d.PaymentDate).After(dayOf(today)) {
		return shared.NewValidationError("payment_date", "cannot be in the future")
	}
	if !d.Method.IsValid() {
		return shared.NewValidationError("method", "must be CASH, TRANSFER, CARD or DEBIT")
	}
	ref := strings.TrimSpace(d.ReferenceNumber)
	if ref == "" {
		return shared.NewValidationError("reference_number", "cannot be empty")
	}
	if len(ref) > 45 {
		return shared.NewValidationError("reference_number", "cannot exceed 45 characters")
	}

	p.PaymentDate = d.PaymentDate
	p.AmountPaid = d.AmountPaid
	p.Method = d.Method
	p.ReferenceNumber = ref
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
