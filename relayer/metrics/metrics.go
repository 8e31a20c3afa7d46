// Package metrics exposes relayer counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "motus_relayer"

// Metrics provides observability for the relay pipeline. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Requests by final status: confirmed, failed, pending, rejected
	Requests *prometheus.CounterVec

	// Rejections by error code
	Rejections *prometheus.CounterVec

	// Submissions by backend and result
	Submissions *prometheus.CounterVec

	// Submit-to-receipt latency
	ConfirmLatency *prometheus.HistogramVec

	// Signers currently leased
	SignersBusy prometheus.Gauge

	// Requests waiting for reconciliation
	PendingRequests prometheus.Gauge
}

// New creates a Metrics instance registered with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Relay requests by final status",
		}, []string{"status"}),

		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected relay requests by error code",
		}, []string{"code"}),

		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Transactions sent by backend and result",
		}, []string{"backend", "result"}),

		ConfirmLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirm_duration_seconds",
			Help:      "Time from submission to receipt",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 15, 30, 60},
		}, []string{"backend"}),

		SignersBusy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signers_busy",
			Help:      "Relayer signers currently leased",
		}),

		PendingRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Requests submitted but not yet resolved",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncRequest records a request reaching status.
func (m *Metrics) IncRequest(status string) {
	if m != nil {
		m.Requests.WithLabelValues(status).Inc()
	}
}

// IncRejection records a rejected request.
func (m *Metrics) IncRejection(code string) {
	if m != nil {
		m.Rejections.WithLabelValues(code).Inc()
	}
}

// IncSubmission records a send attempt.
func (m *Metrics) IncSubmission(backend, result string) {
	if m != nil {
		m.Submissions.WithLabelValues(backend, result).Inc()
	}
}

// ObserveConfirm records how long a transaction took to be mined.
func (m *Metrics) ObserveConfirm(backend string, d time.Duration) {
	if m != nil {
		m.ConfirmLatency.WithLabelValues(backend).Observe(d.Seconds())
	}
}

func (m *Metrics) SignerLeased() {
	if m != nil {
		m.SignersBusy.Inc()
	}
}

func (m *Metrics) SignerReleased() {
	if m != nil {
		m.SignersBusy.Dec()
	}
}

// SetPending sets the number of unresolved requests.
func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.PendingRequests.Set(float64(n))
	}
}
