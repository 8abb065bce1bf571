package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initReplicationMetrics() {
	r.ReplicationPublishedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangecore_replication_published_total",
			Help: "Total number of topology change messages published",
		},
		[]string{"status"},
	)

	r.ReplicationAppliedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangecore_replication_applied_total",
			Help: "Total number of topology change messages applied locally",
		},
		[]string{"status"},
	)

	r.ReplicationPayloadBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rangecore_replication_payload_bytes",
			Help:    "Size of compressed replication payloads in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
	)

	r.ReplicationConnectedPeers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rangecore_replication_connected_peers",
			Help: "Current number of connected replication subscribers",
		},
	)
}
