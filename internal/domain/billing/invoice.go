package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is derived from the payments against an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// IsValid reports whether the status is known
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// DefaultGracePeriodDays is the minimum gap between issue and due date by convention
const DefaultGracePeriodDays = 15

// Invoice is the billing statement for one reading
// It is the aggregate root for invoices and their payments
type Invoice struct {
	shared.BaseAggregateRoot
	ReadingID         uuid.UUID
	IssueDate         time.Time
	DueDate           time.Time
	TotalAmount       decimal.Decimal
	ConsumptionKWh    int64
	Status            InvoiceStatus
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Payments          []Payment // Loaded by the repository for reconciliation
}

// NewInvoice creates a pending invoice with no payments
func NewInvoice(readingID uuid.UUID, issueDate, dueDate time.Time, totalAmount decimal.Decimal, consumptionKWh int64) (*Invoice, error) {
	if readingID == uuid.Nil {
		return nil, shared.NewValidationError("reading_id", "cannot be empty")
	}
	if consumptionKWh < 0 {
		return nil, shared.NewValidationError("consumption_kwh", "cannot be negative")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReadingID:         readingID,
		ConsumptionKWh:    consumptionKWh,
		Payments:          make([]Payment, 0),
	}
	if err := inv.applySchedule(issueDate, dueDate); err != nil {
		return nil, err
	}
	if err := inv.applyTotal(totalAmount); err != nil {
		return nil, err
	}
	inv.PaidAmount = decimal.Zero
	inv.OutstandingAmount = totalAmount
	inv.Status = InvoiceStatusPending

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

// IssueForReading prices a reading's consumption at pricePerKWh and
// creates its invoice, due graceDays after issueDate.
func IssueForReading(readingID uuid.UUID, consumptionKWh, pricePerKWh int64, issueDate time.Time, graceDays int) (*Invoice, error) {
	if graceDays < 1 {
		graceDays = DefaultGracePeriodDays
	}
	total := decimal.NewFromInt(consumptionKWh).Mul(decimal.NewFromInt(pricePerKWh))
	return NewInvoice(readingID, issueDate, issueDate.AddDate(0, 0, graceDays), total, consumptionKWh)
}

// Reschedule changes issue and due dates
func (i *Invoice) Reschedule(issueDate, dueDate time.Time) error {
	if err := i.applySchedule(issueDate, dueDate); err != nil {
		return err
	}
	i.touch()
	return nil
}

// Revise changes schedule, total and consumption in one step
func (i *Invoice) Revise(issueDate, dueDate time.Time, totalAmount decimal.Decimal, consumptionKWh int64) error {
	if consumptionKWh < 0 {
		return shared.NewValidationError("consumption_kwh", "cannot be negative")
	}
	if err := i.applySchedule(issueDate, dueDate); err != nil {
		return err
	}
	if err := i.applyTotal(totalAmount); err != nil {
		return err
	}
	i.ConsumptionKWh = consumptionKWh
	i.reconcile()
	i.touch()
	return nil
}

// OverrideStatus always fails: the status is derived from payments
func (i *Invoice) OverrideStatus(status InvoiceStatus) error {
	return shared.NewInvariantViolationError(
		fmt.Sprintf("invoice status is derived from its payments and cannot be set to %q", status))
}

// AddPayment applies a new payment and reconciles the invoice. The payment's
// status is stamped from the invoice state after it applies.
func (i *Invoice) AddPayment(p *Payment) error {
	if p.InvoiceID != i.ID {
		return shared.NewValidationError("invoice_id", "payment belongs to another invoice")
	}
	if err := i.checkReference(p.ReferenceNumber, p.ID); err != nil {
		return err
	}

	i.Payments = append(i.Payments, *p)
	i.settle(p)

	i.AddDomainEvent(NewPaymentRecordedEvent(i, p, EventTypePaymentRecorded))

	return nil
}

// AmendPayment changes a payment already applied and reconciles the invoice
func (i *Invoice) AmendPayment(paymentID uuid.UUID, details PaymentDetails, today time.Time) (*Payment, error) {
	idx := i.paymentIndex(paymentID)
	if idx < 0 {
		return nil, shared.NewNotFoundError("payment")
	}
	if err := i.checkReference(details.ReferenceNumber, paymentID); err != nil {
		return nil, err
	}

	p := i.Payments[idx]
	if err := p.apply(details, today); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	i.Payments[idx] = p
	i.settle(&i.Payments[idx])

	amended := i.Payments[idx]
	i.AddDomainEvent(NewPaymentRecordedEvent(i, &amended, EventTypePaymentAmended))

	return &amended, nil
}

// RemovePayment deletes a payment and reconciles the invoice
func (i *Invoice) RemovePayment(paymentID uuid.UUID) (*Payment, error) {
	idx := i.paymentIndex(paymentID)
	if idx < 0 {
		return nil, shared.NewNotFoundError("payment")
	}

	removed := i.Payments[idx]
	i.Payments = append(i.Payments[:idx], i.Payments[idx+1:]...)
	i.reconcile()
	i.touch()

	i.AddDomainEvent(NewPaymentRemovedEvent(i, &removed))

	return &removed, nil
}

// DisplayOutstanding returns the outstanding balance clamped at zero
func (i *Invoice) DisplayOutstanding() decimal.Decimal {
	return DisplayOutstanding(i.OutstandingAmount)
}

// IsOverdue reports whether the invoice is unpaid past its due date
func (i *Invoice) IsOverdue(today time.Time) bool {
	return i.Status != InvoiceStatusPaid && dayOf(today).After(dayOf(i.DueDate))
}

// OverdueCutoff is the due date before which an unpaid invoice is overdue on today
func OverdueCutoff(today time.Time) time.Time {
	return dayOf(today)
}

// settle reconciles after p was applied and stamps p's status
func (i *Invoice) settle(p *Payment) {
	i.reconcile()
	if i.Status == InvoiceStatusPaid {
		p.Status = PaymentStatusPaid
	} else {
		p.Status = PaymentStatusNotFullyPaid
	}
	if idx := i.paymentIndex(p.ID); idx >= 0 {
		i.Payments[idx].Status = p.Status
	}
	i.touch()
}

// reconcile reports whether the status changed
func (i *Invoice) reconcile() bool {
	paid := PaidTotal(i.Payments)
	i.PaidAmount = paid
	i.OutstandingAmount = Outstanding(i.TotalAmount, paid)

	status := DeriveStatus(i.TotalAmount, paid)
	if status == i.Status {
		return false
	}
	old := i.Status
	i.Status = status
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, old))
	return true
}

func (i *Invoice) checkReference(ref string, selfID uuid.UUID) error {
	for _, existing := range i.Payments {
		if existing.ID != selfID && existing.ReferenceNumber == ref {
			return shared.NewAlreadyExistsError("payment reference", ref)
		}
	}
	return nil
}

func (i *Invoice) paymentIndex(id uuid.UUID) int {
	for idx := range i.Payments {
		if i.Payments[idx].ID == id {
			return idx
		}
	}
	return -1
}

func (i *Invoice) applySchedule(issueDate, dueDate time.Time) error {
	if issueDate.IsZero() {
		return shared.NewValidationError("issue_date", "is required")
	}
	if dueDate.IsZero() {
		return shared.NewValidationError("due_date", "is required")
	}
	if !dayOf(dueDate).After(dayOf(issueDate)) {
		return shared.NewValidationError("due_date", "must be after issue_date")
	}
	i.IssueDate = issueDate
	i.DueDate = dueDate
	return nil
}

func (i *Invoice) applyTotal(totalAmount decimal.Decimal) error {
	if err := validateAmount("total_amount", totalAmount); err != nil {
		return err
	}
	i.TotalAmount = totalAmount
	return nil
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
