package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the billing service.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
	AccessDenied        *prometheus.CounterVec
	PaymentsRecorded    *prometheus.CounterVec
	PaymentConflicts    prometheus.Counter
	InvoicesIssued      prometheus.Counter
	NotificationsRaised *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billing_http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		HTTPInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "billing_http_inflight_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
		AccessDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_access_denied_total",
				Help: "Operations refused by the role permission table or review check",
			},
			[]string{"role", "module", "action"},
		),
		PaymentsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_payments_recorded_total",
				Help: "Payments applied to invoices, by method and resulting invoice status",
			},
			[]string{"method", "invoice_status"},
		),
		PaymentConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_payment_conflicts_total",
				Help: "Payment writes that lost the invoice version check",
			},
		),
		InvoicesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_invoices_issued_total",
				Help: "Invoices created",
			},
		),
		NotificationsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_notifications_raised_total",
				Help: "Notifications raised, by kind",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPInFlight,
		m.AccessDenied,
		m.PaymentsRecorded,
		m.PaymentConflicts,
		m.InvoicesIssued,
		m.NotificationsRaised,
	)
	return m
}

// NewNopMetrics returns collectors registered on a private registry,
// for tests and tools that do not expose /metrics.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
