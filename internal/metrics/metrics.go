// internal/metrics/metrics.go
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Recorder is what the services and HTTP layer report to.
type Recorder interface {
	// RecordActivation counts one activation; strategy is "privileged" or
	// "standard", outcome is "bound", "reused", "bypass" or an error kind.
	RecordActivation(strategy, outcome string)
	RecordLicensesIssued(count int)
	RecordLicensesRemoved(count int)
	RecordBindConflict()
	RecordGatewayCall(operation string, success bool, duration time.Duration)
	RecordHTTPRequest(method, path, status string, duration time.Duration)
}

var _ Recorder = (*Metrics)(nil)

// Metrics holds the Prometheus collectors.
type Metrics struct {
	ActivationsTotal     *prometheus.CounterVec
	LicensesIssuedTotal  prometheus.Counter
	LicensesRemovedTotal prometheus.Counter
	BindConflictsTotal   prometheus.Counter

	GatewayCallsTotal   *prometheus.CounterVec
	GatewayCallDuration *prometheus.HistogramVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns Prometheus-backed metrics when enabled and a no-op recorder
// otherwise. Collectors are registered once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		ActivationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "license_activations_total",
				Help: "Total number of activation requests",
			},
			[]string{"strategy", "outcome"},
		),
		LicensesIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "licenses_issued_total",
				Help: "Total number of license rows issued",
			},
		),
		LicensesRemovedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "licenses_removed_total",
				Help: "Total number of unused license rows removed",
			},
		),
		BindConflictsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "license_bind_conflicts_total",
				Help: "Total number of activation attempts retried after a lost bind",
			},
		),
		GatewayCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licensing_gateway_calls_total",
				Help: "Total number of calls to the external licensing service",
			},
			[]string{"operation", "result"}, // unpack, mint; success, error
		),
		GatewayCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "licensing_gateway_call_duration_seconds",
				Help:    "Latency of calls to the external licensing service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) RecordActivation(strategy, outcome string) {
	m.ActivationsTotal.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) RecordLicensesIssued(count int) {
	m.LicensesIssuedTotal.Add(float64(count))
}

func (m *Metrics) RecordLicensesRemoved(count int) {
	m.LicensesRemovedTotal.Add(float64(count))
}

func (m *Metrics) RecordBindConflict() {
	m.BindConflictsTotal.Inc()
}

func (m *Metrics) RecordGatewayCall(operation string, success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.GatewayCallsTotal.WithLabelValues(operation, result).Inc()
	m.GatewayCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
