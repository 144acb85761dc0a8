package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
)

// OwnershipChain is the full path from an invoice up to the client that owes it
type OwnershipChain struct {
	Invoice  *Invoice
	Reading  *metering.Reading
	Meter    *metering.Meter
	Contract *customer.Contract
	Client   *customer.Client
}

// OwnershipResolver walks Invoice -> Reading -> Meter -> Contract -> Client.
// Every link must exist; a missing one is reported as NOT_FOUND naming it.
type OwnershipResolver struct {
	invoices  InvoiceRepository
	payments  PaymentRepository
	readings  metering.ReadingRepository
	meters    metering.MeterRepository
	contracts customer.ContractRepository
	clients   customer.ClientRepository
}

// NewOwnershipResolver creates a new OwnershipResolver
func NewOwnershipResolver(
	invoices InvoiceRepository,
	payments PaymentRepository,
	readings metering.ReadingRepository,
	meters metering.MeterRepository,
	contracts customer.ContractRepository,
	clients customer.ClientRepository,
) *OwnershipResolver {
	return &OwnershipResolver{
		invoices:  invoices,
		payments:  payments,
		readings:  readings,
		meters:    meters,
		contracts: contracts,
		clients:   clients,
	}
}

// ForInvoice resolves the chain of an invoice
func (r *OwnershipResolver) ForInvoice(ctx context.Context, invoiceID uuid.UUID) (*OwnershipChain, error) {
	inv, err := r.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, missingLink(err, "invoice", invoiceID)
	}
	return r.fromInvoice(ctx, inv)
}

// ForPayment resolves the chain of the invoice a payment was made against
func (r *OwnershipResolver) ForPayment(ctx context.Context, paymentID uuid.UUID) (*OwnershipChain, error) {
	p, err := r.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, missingLink(err, "payment", paymentID)
	}
	return r.ForInvoice(ctx, p.InvoiceID)
}

// ForReading resolves the chain above a reading. Invoice is nil when the
// reading has not been billed yet.
func (r *OwnershipResolver) ForReading(ctx context.Context, readingID uuid.UUID) (*OwnershipChain, error) {
	reading, err := r.readings.FindByID(ctx, readingID)
	if err != nil {
		return nil, missingLink(err, "reading", readingID)
	}
	chain := &OwnershipChain{Reading: reading}
	if err := r.fillFromMeter(ctx, chain, reading.MeterID); err != nil {
		return nil, err
	}
	inv, err := r.invoices.FindByReading(ctx, readingID)
	switch {
	case err == nil:
		chain.Invoice = inv
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	return chain, nil
}

func (r *OwnershipResolver) fromInvoice(ctx context.Context, inv *Invoice) (*OwnershipChain, error) {
	chain := &OwnershipChain{Invoice: inv}

	reading, err := r.readings.FindByID(ctx, inv.ReadingID)
	if err != nil {
		return nil, missingLink(err, "reading", inv.ReadingID)
	}
	chain.Reading = reading

	if err := r.fillFromMeter(ctx, chain, reading.MeterID); err != nil {
		return nil, err
	}
	return chain, nil
}

func (r *OwnershipResolver) fillFromMeter(ctx context.Context, chain *OwnershipChain, meterID uuid.UUID) error {
	meter, err := r.meters.FindByID(ctx, meterID)
	if err != nil {
		return missingLink(err, "meter", meterID)
	}
	chain.Meter = meter

	contract, err := r.contracts.FindByID(ctx, meter.ContractID)
	if err != nil {
		return missingLink(err, "contract", meter.ContractID)
	}
	chain.Contract = contract

	client, err := r.clients.FindByID(ctx, contract.ClientID)
	if err != nil {
		return missingLink(err, "client", contract.ClientID)
	}
	chain.Client = client
	return nil
}

func missingLink(err error, link string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("%s %s not found in ownership chain", link, id))
	}
	return fmt.Errorf("failed to load %s %s: %w", link, id, err)
}
