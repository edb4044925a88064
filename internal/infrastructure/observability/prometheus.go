package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results used as the "result" label
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultNotFound   = "not_found"
	ResultError      = "error"
)

// StoreMetrics are the Prometheus collectors for the entry store and its HTTP surface
type StoreMetrics struct {
	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	entries      prometheus.Gauge
	httpRequests *prometheus.CounterVec
}

// NewStoreMetrics creates the collectors on a dedicated registry
func NewStoreMetrics() *StoreMetrics {
	m := &StoreMetrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "entry_store_operations_total",
			Help: "Entry store operations by operation and result",
		}, []string{"operation", "result"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "entry_store_entries",
			Help: "Number of entries currently stored",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.entries,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation counts one store operation
func (m *StoreMetrics) ObserveOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// SetEntries sets the stored entry gauge
func (m *StoreMetrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}

// ObserveRequest counts one served HTTP request
func (m *StoreMetrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Registry exposes the underlying registry, mainly for tests
func (m *StoreMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *StoreMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
