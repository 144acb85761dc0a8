package metering

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AnomalyPolicy decides whether a reading looks abnormal against the
// recent history of its meter
type AnomalyPolicy struct {
	Factor     decimal.Decimal // Consumption above Factor x average is abnormal
	Window     int             // Number of previous readings averaged
	MinHistory int             // Below this many previous readings no spike is reported
}

// DefaultAnomalyPolicy returns the policy used when nothing is configured
func DefaultAnomalyPolicy() AnomalyPolicy {
	return AnomalyPolicy{
		Factor:     decimal.NewFromInt(2),
		Window:     6,
		MinHistory: 3,
	}
}

// Anomaly describes why a reading was flagged
type Anomaly struct {
	Reason  string
	Average decimal.Decimal
}

// Evaluate checks reading against history, the readings of the same meter
// taken before it, newest first. It returns nil when nothing is abnormal.
func (p AnomalyPolicy) Evaluate(reading *Reading, history []Reading, meterStatus MeterStatus) *Anomaly {
	if reading.ConsumptionKWh == 0 && meterStatus == MeterStatusActive {
		return &Anomaly{Reason: "zero consumption on an active meter", Average: decimal.Zero}
	}

	window := history
	if p.Window > 0 && len(window) > p.Window {
		window = window[:p.Window]
	}
	if len(window) == 0 || len(window) < p.MinHistory {
		return nil
	}

	var sum int64
	for _, h := range window {
		sum += h.ConsumptionKWh
	}
	average := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(window))))
	if average.IsZero() {
		return nil
	}

	threshold := average.Mul(p.Factor)
	if decimal.NewFromInt(reading.ConsumptionKWh).GreaterThan(threshold) {
		return &Anomaly{
			Reason:  fmt.Sprintf("consumption %d kWh exceeds %s x average of %s kWh", reading.ConsumptionKWh, p.Factor.String(), average.StringFixed(2)),
			Average: average,
		}
	}
	return nil
}
