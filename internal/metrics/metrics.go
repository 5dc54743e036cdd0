// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Interchange directions and row outcomes used as label values.
const (
	DirectionExport = "export"
	DirectionImport = "import"

	OutcomeWritten   = "written"
	OutcomeImported  = "imported"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// Metrics holds every collector the API records to.
// A nil *Metrics is valid and records nothing, which keeps tests free of registries.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	interchangeRows *prometheus.CounterVec
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vlog_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vlog_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		interchangeRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vlog_interchange_rows_total",
			Help: "CSV interchange rows by direction and outcome.",
		}, []string{"direction", "outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.interchangeRows,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// AddRows adds n interchange rows with the given direction and outcome.
func (m *Metrics) AddRows(direction, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.interchangeRows.WithLabelValues(direction, outcome).Add(float64(n))
}
