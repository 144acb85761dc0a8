package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/notification"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Raiser creates notices. Implemented by NotificationService.
type Raiser interface {
	Raise(ctx context.Context, kind notification.Kind, refID uuid.UUID, note string) (*NotificationResponse, error)
}

// ReadingAnomalyHandler raises a READING notice when a new reading looks
// abnormal against the recent history of its meter
type ReadingAnomalyHandler struct {
	readingRepo metering.ReadingRepository
	meterRepo   metering.MeterRepository
	raiser      Raiser
	policy      metering.AnomalyPolicy
	logger      *zap.Logger
}

// NewReadingAnomalyHandler creates a new ReadingAnomalyHandler
func NewReadingAnomalyHandler(
	readingRepo metering.ReadingRepository,
	meterRepo metering.MeterRepository,
	raiser Raiser,
	cfg config.NotificationConfig,
	logger *zap.Logger,
) *ReadingAnomalyHandler {
	return &ReadingAnomalyHandler{
		readingRepo: readingRepo,
		meterRepo:   meterRepo,
		raiser:      raiser,
		policy:      PolicyFromConfig(cfg),
		logger:      logger,
	}
}

// PolicyFromConfig builds the anomaly policy, falling back to the defaults
// for unset values
func PolicyFromConfig(cfg config.NotificationConfig) metering.AnomalyPolicy {
	policy := metering.DefaultAnomalyPolicy()
	if cfg.AnomalyFactor > 0 {
		policy.Factor = decimal.NewFromFloat(cfg.AnomalyFactor)
	}
	if cfg.AnomalyWindow > 0 {
		policy.Window = cfg.AnomalyWindow
	}
	if cfg.AnomalyMinHistory > 0 {
		policy.MinHistory = cfg.AnomalyMinHistory
	}
	return policy
}

// EventTypes returns the event types this handler is interested in
func (h *ReadingAnomalyHandler) EventTypes() []string {
	return []string{metering.EventTypeReadingRecorded}
}

// Handle evaluates the recorded reading
func (h *ReadingAnomalyHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*metering.ReadingRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			metering.EventTypeReadingRecorded, event.EventType())
	}

	reading, err := h.readingRepo.FindByID(ctx, recorded.ReadingID)
	if err != nil {
		return fmt.Errorf("load reading %s: %w", recorded.ReadingID, err)
	}
	meter, err := h.meterRepo.FindByID(ctx, reading.MeterID)
	if err != nil {
		return fmt.Errorf("load meter %s: %w", reading.MeterID, err)
	}
	history, err := h.readingRepo.FindHistory(ctx, reading.MeterID, reading.ReadingDate, reading.ID, h.policy.Window)
	if err != nil {
		return fmt.Errorf("load history of meter %s: %w", reading.MeterID, err)
	}

	anomaly := h.policy.Evaluate(reading, history, meter.Status)
	if anomaly == nil {
		return nil
	}

	h.logger.Info("Abnormal reading detected",
		zap.String("reading_id", reading.ID.String()),
		zap.String("meter_id", meter.ID.String()),
		zap.String("reason", anomaly.Reason))

	note := fmt.Sprintf("Meter %s on %s: %s", meter.MeterNumber, reading.ReadingDate.Format("2006-01-02"), anomaly.Reason)
	_, err = h.raiser.Raise(ctx, notification.KindReading, reading.ID, note)
	return err
}

var _ shared.EventHandler = (*ReadingAnomalyHandler)(nil)
