package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// MeterRepository defines the interface for meter persistence
type MeterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Meter, error)
	// FindAll lists meters, most recently installed first
	FindAll(ctx context.Context, filter shared.Filter) ([]Meter, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByMeterNumber(ctx context.Context, meterNumber string) (bool, error)
	Save(ctx context.Context, meter *Meter) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReadingRepository defines the interface for reading persistence
type ReadingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reading, error)

	// FindAll lists readings, most recent reading date first
	FindAll(ctx context.Context, filter shared.Filter) ([]Reading, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindHistory returns up to limit readings of the meter taken before
	// the given date, newest first, excluding excludeID
	FindHistory(ctx context.Context, meterID uuid.UUID, before time.Time, excludeID uuid.UUID, limit int) ([]Reading, error)

	// FindPrevious returns the latest reading of the meter on or before date,
	// excluding excludeID; nil when there is none
	FindPrevious(ctx context.Context, meterID uuid.UUID, date time.Time, excludeID uuid.UUID) (*Reading, error)

	// FindNext returns the earliest reading of the meter after date,
	// excluding excludeID; nil when there is none
	FindNext(ctx context.Context, meterID uuid.UUID, date time.Time, excludeID uuid.UUID) (*Reading, error)

	Save(ctx context.Context, reading *Reading) error
	Delete(ctx context.Context, id uuid.UUID) error
}
