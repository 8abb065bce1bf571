package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreDocumentsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rangecore_store_documents_total",
			Help: "Total number of topology documents stored",
		},
	)

	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangecore_store_operations_total",
			Help: "Total number of topology store operations",
		},
		[]string{"operation", "backend", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rangecore_store_operation_duration_seconds",
			Help:    "Topology store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation", "backend"},
	)
}
