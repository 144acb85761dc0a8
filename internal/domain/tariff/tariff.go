package tariff

import (
	"time"

	"github.com/gridledger/billing/internal/domain/shared"
)

// Season is the period of the year a tariff applies to
type Season string

const (
	SeasonSummer Season = "SUMMER"
	SeasonWinter Season = "WINTER"
)

// IsValid reports whether the season is known
func (s Season) IsValid() bool {
	return s == SeasonSummer || s == SeasonWinter
}

// ClientClass is the customer segment a tariff is priced for
type ClientClass string

const (
	ClientClassResidential ClientClass = "RESIDENTIAL"
	ClientClassCommercial  ClientClass = "COMMERCIAL"
	ClientClassIndustrial  ClientClass = "INDUSTRIAL"
)

// IsValid reports whether the class is known
func (c ClientClass) IsValid() bool {
	switch c {
	case ClientClassResidential, ClientClassCommercial, ClientClassIndustrial:
		return true
	}
	return false
}

// Tariff is a price-per-kWh schedule keyed by season and client class
type Tariff struct {
	shared.BaseAggregateRoot
	Season        Season
	ClientClass   ClientClass
	PricePerKWh   int64
	EffectiveDate time.Time
}

// NewTariff creates a new tariff
func NewTariff(season Season, class ClientClass, pricePerKWh int64, effectiveDate time.Time) (*Tariff, error) {
	t := &Tariff{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := t.apply(season, class, pricePerKWh, effectiveDate); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the tariff schedule
func (t *Tariff) Update(season Season, class ClientClass, pricePerKWh int64, effectiveDate time.Time) error {
	if err := t.apply(season, class, pricePerKWh, effectiveDate); err != nil {
		return err
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

func (t *Tariff) apply(season Season, class ClientClass, pricePerKWh int64, effectiveDate time.Time) error {
	if !season.IsValid() {
		return shared.NewValidationError("season", "must be SUMMER or WINTER")
	}
	if !class.IsValid() {
		return shared.NewValidationError("client_class", "must be RESIDENTIAL, COMMERCIAL or INDUSTRIAL")
	}
	if pricePerKWh < 0 {
		return shared.NewValidationError("price_per_kwh", "cannot be negative")
	}
	if effectiveDate.IsZero() {
		return shared.NewValidationError("effective_date", "is required")
	}
	t.Season = season
	t.ClientClass = class
	t.PricePerKWh = pricePerKWh
	t.EffectiveDate = effectiveDate
	return nil
}
