package metrics

import (
	"runtime"
	"time"

	"github.com/rangeops/rangecore/pkg/team"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordStoreOperation records a topology store operation
func (r *Registry) RecordStoreOperation(operation, backend, status string, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(operation, backend, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// RecordVisibilityQuery records a role-scoped visibility query and the size
// of the view it produced.
func (r *Registry) RecordVisibilityQuery(role team.Role, status string, duration time.Duration, nodesReturned, assetsReturned int) {
	label := role.String()
	r.VisibilityQueriesTotal.WithLabelValues(label, status).Inc()
	r.VisibilityQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	r.VisibilityNodesReturned.WithLabelValues(label).Observe(float64(nodesReturned))
	r.VisibilityAssetsReturned.WithLabelValues(label).Observe(float64(assetsReturned))
}

// RecordAccessDenied records an authorization denial
func (r *Registry) RecordAccessDenied(role team.Role, resource string) {
	r.AccessDeniedTotal.WithLabelValues(role.String(), resource).Inc()
}

// RecordReplicationPublish records a published replication message
func (r *Registry) RecordReplicationPublish(status string, payloadBytes int) {
	r.ReplicationPublishedTotal.WithLabelValues(status).Inc()
	if payloadBytes > 0 {
		r.ReplicationPayloadBytes.Observe(float64(payloadBytes))
	}
}

// RecordReplicationApply records an applied replication message
func (r *Registry) RecordReplicationApply(status string) {
	r.ReplicationAppliedTotal.WithLabelValues(status).Inc()
}

// UpdateSystemMetrics refreshes runtime gauges
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
