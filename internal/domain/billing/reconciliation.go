package billing

import (
	"fmt"

	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places amounts are stored with
const AmountScale = 2

// validateAmount accepts positive amounts representable at AmountScale.
// Finer amounts would be rounded by storage and disagree with the derived status.
func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError(field, "must be greater than zero")
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return shared.NewValidationError(field, fmt.Sprintf("cannot have more than %d decimal places", AmountScale))
	}
	return nil
}

// PaidTotal sums the amounts of payments. No payments sum to zero.
func PaidTotal(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.AmountPaid)
	}
	return total
}

// Outstanding is the exact balance still owed. It is negative when the
// invoice has been overpaid.
func Outstanding(totalAmount, paidTotal decimal.Decimal) decimal.Decimal {
	return totalAmount.Sub(paidTotal)
}

// DisplayOutstanding clamps a balance at zero for presentation
func DisplayOutstanding(outstanding decimal.Decimal) decimal.Decimal {
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// DeriveStatus computes the invoice status from its total and paid total
func DeriveStatus(totalAmount, paidTotal decimal.Decimal) InvoiceStatus {
	if !Outstanding(totalAmount, paidTotal).IsPositive() {
		return InvoiceStatusPaid
	}
	if paidTotal.IsZero() {
		return InvoiceStatusPending
	}
	return InvoiceStatusPartiallyPaid
}
