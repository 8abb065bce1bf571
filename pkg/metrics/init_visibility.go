package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initVisibilityMetrics() {
	r.VisibilityQueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangecore_visibility_queries_total",
			Help: "Total number of role-scoped visibility queries",
		},
		[]string{"role", "status"},
	)

	r.VisibilityQueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rangecore_visibility_query_duration_seconds",
			Help:    "Visibility query duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"role"},
	)

	r.VisibilityNodesReturned = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rangecore_visibility_nodes_returned",
			Help:    "Number of topology nodes returned per filtered view",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
		[]string{"role"},
	)

	r.VisibilityAssetsReturned = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rangecore_visibility_assets_returned",
			Help:    "Number of assets returned per filtered view",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
		[]string{"role"},
	)
}
