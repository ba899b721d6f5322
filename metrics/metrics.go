// Package metrics exposes prometheus metrics for the land registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure kinds used as the "kind" label of the failures counter.
const (
	FailureUnauthorized = "not_authorized"
	FailureExists       = "already_exists"
	FailureNotFound     = "not_found"
	FailureBinding      = "binding_failed"
	FailureInternal     = "internal"
)

// RegistryMetrics tracks certificate issuance, updates and account binding.
// A nil *RegistryMetrics is valid and records nothing.
type RegistryMetrics struct {
	CertificatesIssued  prometheus.Counter
	CertificatesUpdated prometheus.Counter
	Failures            *prometheus.CounterVec
	BindDuration        prometheus.Histogram
	EventsEmitted       *prometheus.CounterVec
}

// NewRegistryMetrics creates the registry metrics and registers them with reg.
func NewRegistryMetrics(namespace string, reg prometheus.Registerer) *RegistryMetrics {
	factory := promauto.With(reg)

	return &RegistryMetrics{
		CertificatesIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificates_issued_total",
			Help:      "Total number of certificates issued",
		}),
		CertificatesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificates_updated_total",
			Help:      "Total number of certificate metadata updates",
		}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Failed registry operations by operation and kind",
		}, []string{"operation", "kind"}),
		BindDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_bind_duration_seconds",
			Help:      "Duration of bound account provisioning",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 15, 30, 60},
		}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Registry notifications by kind",
		}, []string{"kind"}),
	}
}

// IncrementIssued records a successful issuance.
func (m *RegistryMetrics) IncrementIssued() {
	if m == nil {
		return
	}
	m.CertificatesIssued.Inc()
}

// IncrementUpdated records a successful update.
func (m *RegistryMetrics) IncrementUpdated() {
	if m == nil {
		return
	}
	m.CertificatesUpdated.Inc()
}

// IncrementFailure records a failed operation.
func (m *RegistryMetrics) IncrementFailure(operation, kind string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(operation, kind).Inc()
}

// ObserveBind records the duration of an account binding.
// Call with time.Now() at the start of the binding.
func (m *RegistryMetrics) ObserveBind(start time.Time) {
	if m == nil {
		return
	}
	m.BindDuration.Observe(time.Since(start).Seconds())
}

// IncrementEvent records an emitted notification.
func (m *RegistryMetrics) IncrementEvent(kind string) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(kind).Inc()
}
