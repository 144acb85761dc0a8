package metering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// ReadingKind represents how a reading was taken
type ReadingKind string

const (
	ReadingKindDigital ReadingKind = "DIGITAL"
	ReadingKindAnalog  ReadingKind = "ANALOG"
)

// IsValid reports whether the kind is known
func (k ReadingKind) IsValid() bool {
	return k == ReadingKindDigital || k == ReadingKindAnalog
}

// Reading is one measurement taken from a meter
type Reading struct {
	shared.BaseAggregateRoot
	MeterID        uuid.UUID
	ReadingDate    time.Time
	ConsumptionKWh int64
	Kind           ReadingKind
	CurrentValue   int64 // Register value shown on the meter
}

// NewReading records a new measurement
func NewReading(meterID uuid.UUID, readingDate time.Time, consumptionKWh int64, kind ReadingKind, currentValue int64) (*Reading, error) {
	if meterID == uuid.Nil {
		return nil, shared.NewValidationError("meter_id", "cannot be empty")
	}
	reading := &Reading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MeterID:           meterID,
	}
	if err := reading.apply(readingDate, consumptionKWh, kind, currentValue); err != nil {
		return nil, err
	}

	reading.AddDomainEvent(NewReadingRecordedEvent(reading))

	return reading, nil
}

// Correct amends a reading that was entered wrongly
func (r *Reading) Correct(readingDate time.Time, consumptionKWh int64, kind ReadingKind, currentValue int64) error {
	if err := r.apply(readingDate, consumptionKWh, kind, currentValue); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// CheckProgression verifies that the register value does not go backwards
// relative to the readings taken immediately before and after this one.
// Either neighbour may be nil.
func (r *Reading) CheckProgression(previous, next *Reading) error {
	if previous != nil && r.CurrentValue < previous.CurrentValue {
		return shared.NewValidationError("current_value",
			fmt.Sprintf("must not be lower than the previous reading (%d)", previous.CurrentValue))
	}
	if next != nil && r.CurrentValue > next.CurrentValue {
		return shared.NewValidationError("current_value",
			fmt.Sprintf("must not exceed the following reading (%d)", next.CurrentValue))
	}
	return nil
}

func (r *Reading) apply(readingDate time.Time, consumptionKWh int64, kind ReadingKind, currentValue int64) error {
	if readingDate.IsZero() {
		return shared.NewValidationError("reading_date", "is required")
	}
	if consumptionKWh < 0 {
		return shared.NewValidationError("consumption_kwh", "cannot be negative")
	}
	if currentValue < 0 {
		return shared.NewValidationError("current_value", "cannot be negative")
	}
	if !kind.IsValid() {
		return shared.NewValidationError("kind", "must be DIGITAL or ANALOG")
	}
	r.ReadingDate = readingDate
	r.ConsumptionKWh = consumptionKWh
	r.Kind = kind
	r.CurrentValue = currentValue
	return nil
}
