package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeReading = "Reading"

// Event type constants
const (
	EventTypeReadingRecorded = "ReadingRecorded"
)

// ReadingRecordedEvent is published when a new reading is stored
type ReadingRecordedEvent struct {
	shared.BaseDomainEvent
	ReadingID      uuid.UUID `json:"reading_id"`
	MeterID        uuid.UUID `json:"meter_id"`
	ReadingDate    time.Time `json:"reading_date"`
	ConsumptionKWh int64     `json:"consumption_kwh"`
	CurrentValue   int64     `json:"current_value"`
}

// NewReadingRecordedEvent creates a new ReadingRecordedEvent
func NewReadingRecordedEvent(r *Reading) *ReadingRecordedEvent {
	return &ReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReadingRecorded, AggregateTypeReading, r.ID),
		ReadingID:       r.ID,
		MeterID:         r.MeterID,
		ReadingDate:     r.ReadingDate,
		ConsumptionKWh:  r.ConsumptionKWh,
		CurrentValue:    r.CurrentValue,
	}
}
