package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Store Metrics
	StoreDocumentsTotal    prometheus.Gauge
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Visibility Metrics
	VisibilityQueriesTotal   *prometheus.CounterVec
	VisibilityQueryDuration  *prometheus.HistogramVec
	VisibilityNodesReturned  *prometheus.HistogramVec
	VisibilityAssetsReturned *prometheus.HistogramVec

	// Auth Metrics
	AuthFailuresTotal  prometheus.Counter
	AccessDeniedTotal  *prometheus.CounterVec
	TokensIssuedTotal  prometheus.Counter
	ActiveSessionsOpen prometheus.Gauge

	// Replication Metrics
	ReplicationPublishedTotal *prometheus.CounterVec
	ReplicationAppliedTotal   *prometheus.CounterVec
	ReplicationPayloadBytes   prometheus.Histogram
	ReplicationConnectedPeers prometheus.Gauge

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initStoreMetrics()
	r.initVisibilityMetrics()
	r.initAuthMetrics()
	r.initReplicationMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
