package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest is the payload to enter an invoice by hand
type CreateInvoiceRequest struct {
	ReadingID      uuid.UUID       `json:"reading_id" binding:"required"`
	IssueDate      time.Time       `json:"issue_date" binding:"required"`
	DueDate        time.Time       `json:"due_date" binding:"required"`
	TotalAmount    decimal.Decimal `json:"total_amount" binding:"required"`
	ConsumptionKWh int64           `json:"consumption_kwh" binding:"min=0"`
}

// IssueInvoiceRequest bills a reading at its contract's current tariff.
// IssueDate defaults to today.
type IssueInvoiceRequest struct {
	ReadingID uuid.UUID  `json:"reading_id" binding:"required"`
	IssueDate *time.Time `json:"issue_date"`
}

// UpdateInvoiceRequest is the payload to revise an invoice. Status is
// accepted only to be rejected: it is derived from payments.
type UpdateInvoiceRequest struct {
	IssueDate      *time.Time       `json:"issue_date"`
	DueDate        *time.Time       `json:"due_date"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	ConsumptionKWh *int64           `json:"consumption_kwh" binding:"omitempty,min=0"`
	Status         *string          `json:"status"`
}

// InvoiceListFilter narrows an invoice listing
type InvoiceListFilter struct {
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING PARTIALLY_PAID PAID"`
	ReadingID string     `form:"reading_id" binding:"omitempty,uuid"`
	DueBefore *time.Time `form:"due_before" time_format:"2006-01-02"`
	Overdue   bool       `form:"overdue"` // Only unpaid invoices past their due date
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// InvoiceResponse is an invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID         `json:"id"`
	ReadingID         uuid.UUID         `json:"reading_id"`
	IssueDate         time.Time         `json:"issue_date"`
	DueDate           time.Time         `json:"due_date"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	ConsumptionKWh    int64             `json:"consumption_kwh"`
	Status            string            `json:"status"`
	PaidAmount        decimal.Decimal   `json:"paid_amount"`
	OutstandingAmount decimal.Decimal   `json:"outstanding_amount"`
	Overdue           bool              `json:"overdue"`
	Payments          []PaymentResponse `json:"payments,omitempty"`
	Version           int               `json:"version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice to a response. The outstanding
// amount is clamped at zero for display.
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                inv.ID,
		ReadingID:         inv.ReadingID,
		IssueDate:         inv.IssueDate,
		DueDate:           inv.DueDate,
		TotalAmount:       inv.TotalAmount,
		ConsumptionKWh:    inv.ConsumptionKWh,
		Status:            string(inv.Status),
		PaidAmount:        inv.PaidAmount,
		OutstandingAmount: inv.DisplayOutstanding(),
		Overdue:           inv.IsOverdue(time.Now()),
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
	if len(inv.Payments) > 0 {
		resp.Payments = make([]PaymentResponse, len(inv.Payments))
		for i := range inv.Payments {
			resp.Payments[i] = ToPaymentResponse(&inv.Payments[i])
		}
	}
	return resp
}

// RecordPaymentRequest is the payload to pay against an invoice
type RecordPaymentRequest struct {
	PaymentDate     time.Time       `json:"payment_date" binding:"required"`
	AmountPaid      decimal.Decimal `json:"amount_paid" binding:"required"`
	Method          string          `json:"method" binding:"required,oneof=CASH TRANSFER CARD DEBIT"`
	ReferenceNumber string          `json:"reference_number" binding:"required,max=45"`
}

func (r RecordPaymentRequest) details() billing.PaymentDetails {
	return billing.PaymentDetails{
		PaymentDate:     r.PaymentDate,
		AmountPaid:      r.AmountPaid,
		Method:          billing.PaymentMethod(r.Method),
		ReferenceNumber: r.ReferenceNumber,
	}
}

// UpdatePaymentRequest is the payload to amend a payment
type UpdatePaymentRequest struct {
	PaymentDate     *time.Time       `json:"payment_date"`
	AmountPaid      *decimal.Decimal `json:"amount_paid"`
	Method          *string          `json:"method" binding:"omitempty,oneof=CASH TRANSFER CARD DEBIT"`
	ReferenceNumber *string          `json:"reference_number" binding:"omitempty,max=45"`
}

func (r UpdatePaymentRequest) merge(p *billing.Payment) billing.PaymentDetails {
	d := billing.PaymentDetails{
		PaymentDate:     p.PaymentDate,
		AmountPaid:      p.AmountPaid,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
	}
	if r.PaymentDate != nil {
		d.PaymentDate = *r.PaymentDate
	}
	if r.AmountPaid != nil {
		d.AmountPaid = *r.AmountPaid
	}
	if r.Method != nil {
		d.Method = billing.PaymentMethod(*r.Method)
	}
	if r.ReferenceNumber != nil {
		d.ReferenceNumber = *r.ReferenceNumber
	}
	return d
}

// PaymentListFilter narrows a payment listing
type PaymentListFilter struct {
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
	Method    string `form:"method" binding:"omitempty,oneof=CASH TRANSFER CARD DEBIT"`
	Status    string `form:"status" binding:"omitempty,oneof=PAID NOT_FULLY_PAID"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PaymentResponse is a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	PaymentDate     time.Time       `json:"payment_date"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		PaymentDate:     p.PaymentDate,
		AmountPaid:      p.AmountPaid,
		Method:          string(p.Method),
		ReferenceNumber: p.ReferenceNumber,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
	}
}

// OwnershipResponse is the invoice's path up to the client that owes it
type OwnershipResponse struct {
	InvoiceID      uuid.UUID `json:"invoice_id"`
	ReadingID      uuid.UUID `json:"reading_id"`
	MeterID        uuid.UUID `json:"meter_id"`
	MeterNumber    string    `json:"meter_number"`
	MeterLocation  string    `json:"meter_location"`
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	ClientID       uuid.UUID `json:"client_id"`
	ClientNumber   string    `json:"client_number"`
	ClientName     string    `json:"client_name"`
	ClientEmail    string    `json:"client_email"`
}

// ToOwnershipResponse flattens a resolved chain
func ToOwnershipResponse(chain *billing.OwnershipChain) OwnershipResponse {
	return OwnershipResponse{
		InvoiceID:      chain.Invoice.ID,
		ReadingID:      chain.Reading.ID,
		MeterID:        chain.Meter.ID,
		MeterNumber:    chain.Meter.MeterNumber,
		MeterLocation:  chain.Meter.Location,
		ContractID:     chain.Contract.ID,
		ContractNumber: chain.Contract.ContractNumber,
		ClientID:       chain.Client.ID,
		ClientNumber:   chain.Client.ClientNumber,
		ClientName:     chain.Client.Name,
		ClientEmail:    chain.Client.Email,
	}
}
