package notification

import (
	"context"
	"fmt"

	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/notification"
	"github.com/gridledger/billing/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentDebtHandler raises a PAYMENT notice when a payment leaves its
// invoice with an outstanding balance
type PaymentDebtHandler struct {
	raiser Raiser
	logger *zap.Logger
}

// NewPaymentDebtHandler creates a new PaymentDebtHandler
func NewPaymentDebtHandler(raiser Raiser, logger *zap.Logger) *PaymentDebtHandler {
	return &PaymentDebtHandler{raiser: raiser, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentDebtHandler) EventTypes() []string {
	return []string{billing.EventTypePaymentRecorded, billing.EventTypePaymentAmended}
}

// Handle raises the notice when the balance is still positive
func (h *PaymentDebtHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*billing.PaymentRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypePaymentRecorded, event.EventType())
	}
	if !paid.Outstanding.IsPositive() {
		return nil
	}

	h.logger.Info("Payment left outstanding debt",
		zap.String("invoice_id", paid.InvoiceID.String()),
		zap.String("payment_id", paid.PaymentID.String()),
		zap.String("outstanding", paid.Outstanding.String()))

	note := fmt.Sprintf("Invoice %s still owes %s after payment of %s",
		paid.InvoiceID, paid.Outstanding.StringFixed(2), paid.AmountPaid.StringFixed(2))
	_, err := h.raiser.Raise(ctx, notification.KindPayment, paid.PaymentID, note)
	return err
}

var _ shared.EventHandler = (*PaymentDebtHandler)(nil)
