package metering

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// MeterStatus represents the operating status of a meter
type MeterStatus string

const (
	MeterStatusActive      MeterStatus = "ACTIVE"
	MeterStatusInactive    MeterStatus = "INACTIVE"
	MeterStatusMaintenance MeterStatus = "MAINTENANCE"
	MeterStatusDamaged     MeterStatus = "DAMAGED"
)

// IsValid reports whether the status is known
func (s MeterStatus) IsValid() bool {
	switch s {
	case MeterStatusActive, MeterStatusInactive, MeterStatusMaintenance, MeterStatusDamaged:
		return true
	}
	return false
}

// Meter is an installed electricity meter attached to a contract
type Meter struct {
	shared.BaseAggregateRoot
	MeterNumber      string
	ContractID       uuid.UUID
	InstalledOn      time.Time
	Location         string
	Status           MeterStatus
	LocationImageURL string // Map or plan of the installation site
	PhotoURL         string // Photo of the physical device
}

// NewMeter creates a new meter
func NewMeter(meterNumber string, contractID uuid.UUID, installedOn time.Time, location string, status MeterStatus) (*Meter, error) {
	meterNumber = strings.TrimSpace(meterNumber)
	if meterNumber == "" {
		return nil, shared.NewValidationError("meter_number", "cannot be empty")
	}
	if len(meterNumber) > 45 {
		return nil, shared.NewValidationError("meter_number", "cannot exceed 45 characters")
	}
	if contractID == uuid.Nil {
		return nil, shared.NewValidationError("contract_id", "cannot be empty")
	}
	if installedOn.IsZero() {
		return nil, shared.NewValidationError("installed_on", "is required")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("status", "must be ACTIVE, INACTIVE, MAINTENANCE or DAMAGED")
	}

	meter := &Meter{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MeterNumber:       meterNumber,
		ContractID:        contractID,
		InstalledOn:       installedOn,
		Status:            status,
	}
	if err := meter.setLocation(location); err != nil {
		return nil, err
	}

	return meter, nil
}

// Relocate changes the installation location text
func (m *Meter) Relocate(location string) error {
	if err := m.setLocation(location); err != nil {
		return err
	}
	m.touch()
	return nil
}

// SetImages sets the location map and device photo URLs. Empty clears.
func (m *Meter) SetImages(locationImageURL, photoURL string) error {
	if err := validateImageURL("location_image_url", locationImageURL); err != nil {
		return err
	}
	if err := validateImageURL("photo_url", photoURL); err != nil {
		return err
	}
	m.LocationImageURL = locationImageURL
	m.PhotoURL = photoURL
	m.touch()
	return nil
}

// ChangeStatus moves the meter to another operating status
func (m *Meter) ChangeStatus(status MeterStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", "must be ACTIVE, INACTIVE, MAINTENANCE or DAMAGED")
	}
	if m.Status == status {
		return nil
	}
	m.Status = status
	m.touch()
	return nil
}

// IsActive returns true if the meter is in service
func (m *Meter) IsActive() bool {
	return m.Status == MeterStatusActive
}

func (m *Meter) setLocation(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return shared.NewValidationError("location", "cannot be empty")
	}
	if len(location) > 45 {
		return shared.NewValidationError("location", "cannot exceed 45 characters")
	}
	m.Location = location
	return nil
}

func (m *Meter) touch() {
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

func validateImageURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > 200 {
		return shared.NewValidationError(field, "cannot exceed 200 characters")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return shared.NewValidationError(field, "must be an http(s) URL")
	}
	return nil
}
