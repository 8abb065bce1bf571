package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/rangeops/rangecore/pkg/team"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metric groups are initialized
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration not initialized")
	}
	if r.StoreOperationsTotal == nil {
		t.Error("StoreOperationsTotal not initialized")
	}
	if r.VisibilityQueriesTotal == nil {
		t.Error("VisibilityQueriesTotal not initialized")
	}
	if r.AccessDeniedTotal == nil {
		t.Error("AccessDeniedTotal not initialized")
	}
	if r.ReplicationPublishedTotal == nil {
		t.Error("ReplicationPublishedTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/assets/visible", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/topology/save", "200", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/assets/visible", "403", 50*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/assets/visible", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordStoreOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordStoreOperation("save", "memory", "success", 10*time.Millisecond)
	r.RecordStoreOperation("save", "memory", "success", 20*time.Millisecond)
	r.RecordStoreOperation("save", "memory", "error", 5*time.Millisecond)

	successCounter, err := r.StoreOperationsTotal.GetMetricWithLabelValues("save", "memory", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := successCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Success counter = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordVisibilityQuery(t *testing.T) {
	r := NewRegistry()

	r.RecordVisibilityQuery(team.RoleRed, "success", 2*time.Millisecond, 4, 2)
	r.RecordVisibilityQuery(team.RoleRed, "success", 3*time.Millisecond, 4, 2)
	r.RecordVisibilityQuery(team.RoleBlue, "success", 1*time.Millisecond, 3, 1)

	counter, err := r.VisibilityQueriesTotal.GetMetricWithLabelValues("red", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Red query counter = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordAccessDenied(t *testing.T) {
	r := NewRegistry()

	r.RecordAccessDenied(team.RoleRed, "roster")
	r.RecordAccessDenied(team.RoleRed, "roster")
	r.RecordAccessDenied(team.RoleNone, "topology")

	counter, err := r.AccessDeniedTotal.GetMetricWithLabelValues("red", "roster")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Denied counter = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordReplication(t *testing.T) {
	r := NewRegistry()

	r.RecordReplicationPublish("success", 2048)
	r.RecordReplicationApply("success")
	r.RecordReplicationApply("error")

	applied, err := r.ReplicationAppliedTotal.GetMetricWithLabelValues("success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := applied.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Applied counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()

	start := time.Now().Add(-1 * time.Minute)
	r.UpdateSystemMetrics(start)

	var metric dto.Metric
	if err := r.UptimeSeconds.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Gauge.GetValue() < 59 {
		t.Errorf("UptimeSeconds = %v, want >= 59", metric.Gauge.GetValue())
	}
}

func TestMetricsGathering(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected at least one metric family after recording")
	}
}
