// Package health aggregates component checks for the health endpoints.
// Overall status is the worst individual status: one unhealthy store
// marks the whole instance unhealthy.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check for a specific component
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// HealthChecker manages health checks for the application
type HealthChecker struct {
	checks map[string]CheckFunc
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// Check performs all registered checks
func (hc *HealthChecker) Check() Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check),
	}

	for name, checkFunc := range hc.checks {
		start := time.Now()
		check := checkFunc()
		check.Duration = time.Since(start)
		check.LastChecked = start

		response.Checks[name] = check

		// Worst status wins
		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && response.Status != StatusUnhealthy {
			response.Status = StatusDegraded
		}
	}

	return response
}

// TopologyStoreCheck probes the topology store with a load of a
// nonexistent project. A reachable backend answers not-found cheaply;
// an unreachable one errors.
func TopologyStoreCheck(load func(ctx context.Context, projectID string) error) CheckFunc {
	return func() Check {
		check := Check{Name: "topology_store"}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := load(ctx, "health-probe"); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Reachable"
		}
		return check
	}
}

// RosterCheck reports the roster's user count. An empty roster is
// degraded: the server runs, but nobody can log in.
func RosterCheck(userCount func() int) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "roster",
			Details: make(map[string]any),
		}

		count := userCount()
		check.Details["user_count"] = count

		if count == 0 {
			check.Status = StatusDegraded
			check.Message = "No accounts provisioned"
		} else {
			check.Status = StatusHealthy
		}
		return check
	}
}

// ReplicationCheck reports change feed wiring.
func ReplicationCheck(enabled func() bool) CheckFunc {
	return func() Check {
		check := Check{Name: "replication"}

		if enabled() {
			check.Status = StatusHealthy
			check.Message = "Change feed active"
		} else {
			check.Status = StatusHealthy
			check.Message = "Standalone mode"
		}
		return check
	}
}
